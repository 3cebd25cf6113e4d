package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// LiveCreateRequest carries the fields for a new live room draft.
type LiveCreateRequest struct {
	Title         string    `json:"title" validate:"required,max=255"`
	Intro         string    `json:"intro" validate:"max=4000"`
	PlanStartTime time.Time `json:"planStartTime" validate:"required"`
	PlanEndTime   time.Time `json:"planEndTime" validate:"required"`
}

// LiveAuditRequest decides a single live room review.
type LiveAuditRequest struct {
	Pass   bool   `json:"pass"`
	Reason string `json:"reason" validate:"max=512"`
}

// LiveOfflineRequest takes a live room off the shelf.
type LiveOfflineRequest struct {
	Reason string `json:"reason" validate:"max=512"`
}

// LiveListRequest filters live room listings.
type LiveListRequest struct {
	Status    string `json:"status"`
	CollegeID uint   `json:"collegeId"`
	AnchorID  uint   `json:"anchorId"`
	Title     string `json:"title"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
}

// LiveResponse is the external projection of a live room. The push URL is
// only disclosed to the anchor.
type LiveResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Intro         string     `json:"intro"`
	PlanStartTime time.Time  `json:"planStartTime"`
	PlanEndTime   time.Time  `json:"planEndTime"`
	ActualStart   *time.Time `json:"actualStart"`
	ActualEnd     *time.Time `json:"actualEnd"`
	Status        string     `json:"status"`
	RejectReason  *string    `json:"rejectReason"`
	PushURL       string     `json:"pushUrl,omitempty"`
	PullURL       string     `json:"pullUrl,omitempty"`
	AnchorID      uint       `json:"anchorId"`
	CollegeID     uint       `json:"collegeId"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// LiveListResponse wraps a page of live rooms.
type LiveListResponse struct {
	Items      []LiveResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewLiveResponse maps the model to its response shape. Set includePush only
// for the anchor's own view.
func NewLiveResponse(room models.LiveRoom, includePush bool) LiveResponse {
	resp := LiveResponse{
		ID:            room.ID,
		Title:         room.Title,
		Intro:         room.Intro,
		PlanStartTime: room.PlanStartTime,
		PlanEndTime:   room.PlanEndTime,
		ActualStart:   room.ActualStart,
		ActualEnd:     room.ActualEnd,
		Status:        room.Status,
		RejectReason:  room.RejectReason,
		PullURL:       room.PullURL,
		AnchorID:      room.AnchorID,
		CollegeID:     room.CollegeID,
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
	}
	if includePush {
		resp.PushURL = room.PushURL
	}
	return resp
}
