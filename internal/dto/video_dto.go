package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// VideoCreateRequest carries the fields a volunteer supplies for a new draft.
type VideoCreateRequest struct {
	Title      string `json:"title" validate:"required,max=255"`
	URL        string `json:"url" validate:"required,max=512"`
	Intro      string `json:"intro" validate:"max=4000"`
	CoverURL   string `json:"coverUrl" validate:"omitempty,max=512"`
	Duration   int    `json:"duration" validate:"gte=0"`
	GradeRange string `json:"gradeRange" validate:"max=64"`
	SubjectTag string `json:"subjectTag" validate:"max=64"`
}

// VideoAuditRequest decides a single review. Reason is mandatory when
// Pass is false.
type VideoAuditRequest struct {
	Pass   bool   `json:"pass"`
	Reason string `json:"reason" validate:"max=512"`
}

// VideoBatchAuditRequest applies one decision to several videos.
type VideoBatchAuditRequest struct {
	IDs    []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason" validate:"max=512"`
}

// VideoBatchAuditItem reports the outcome for one id of a batch audit.
type VideoBatchAuditItem struct {
	ID      uint   `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// VideoBatchAuditResponse collects per-item outcomes; partial failure does
// not abort the batch.
type VideoBatchAuditResponse struct {
	Items []VideoBatchAuditItem `json:"items"`
}

// VideoOfflineRequest takes a video off the shelf.
type VideoOfflineRequest struct {
	Reason string `json:"reason" validate:"max=512"`
}

// VideoListRequest filters video listings. Scoping on top of these filters
// is derived from the viewer, not the request.
type VideoListRequest struct {
	Status     string `json:"status"`
	CollegeID  uint   `json:"collegeId"`
	UploaderID uint   `json:"uploaderId"`
	Title      string `json:"title"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// VideoResponse is the external projection of a video.
type VideoResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Intro        string    `json:"intro"`
	CoverURL     string    `json:"coverUrl"`
	Duration     int       `json:"duration"`
	GradeRange   string    `json:"gradeRange"`
	SubjectTag   string    `json:"subjectTag"`
	Status       string    `json:"status"`
	RejectReason *string   `json:"rejectReason"`
	UploaderID   uint      `json:"uploaderId"`
	CollegeID    uint      `json:"collegeId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VideoListResponse wraps a page of videos.
type VideoListResponse struct {
	Items      []VideoResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
	CacheHit   bool            `json:"cacheHit,omitempty"`
}

// NewVideoResponse maps the model to its response shape.
func NewVideoResponse(v models.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID,
		Title:        v.Title,
		URL:          v.URL,
		Intro:        v.Intro,
		CoverURL:     v.CoverURL,
		Duration:     v.Duration,
		GradeRange:   v.GradeRange,
		SubjectTag:   v.SubjectTag,
		Status:       v.Status,
		RejectReason: v.RejectReason,
		UploaderID:   v.UploaderID,
		CollegeID:    v.CollegeID,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
