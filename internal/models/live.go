package models

import "time"

// Live room lifecycle states. DRAFT → REVIEW → PASSED | REJECTED;
// PASSED → PUBLISHED (listed, not yet started) → LIVING → FINISHED;
// OFFLINE is reachable from any post-audit state.
const (
	LiveStatusDraft     = "DRAFT"
	LiveStatusReview    = "REVIEW"
	LiveStatusPassed    = "PASSED"
	LiveStatusRejected  = "REJECTED"
	LiveStatusPublished = "PUBLISHED"
	LiveStatusLiving    = "LIVING"
	LiveStatusFinished  = "FINISHED"
	LiveStatusOffline   = "OFFLINE"
)

// Kinds of messages posted into a live room.
const (
	LiveMessageChat = "CHAT"
	LiveMessageQA   = "QA"
)

// LiveRoom is a scheduled live-stream session anchored by a volunteer.
// CollegeID is fixed at draft creation from the anchor's volunteer profile.
// PlanEndTime must be strictly after PlanStartTime for the lifetime of the
// draft/review states.
type LiveRoom struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"size:255;not null;index" json:"title"`
	Intro         string     `gorm:"type:text" json:"intro"`
	PlanStartTime time.Time  `gorm:"not null" json:"plan_start_time"`
	PlanEndTime   time.Time  `gorm:"not null" json:"plan_end_time"`
	ActualStart   *time.Time `json:"actual_start"`
	ActualEnd     *time.Time `json:"actual_end"`
	Status        string     `gorm:"size:32;not null;default:DRAFT;index" json:"status"`
	RejectReason  *string    `gorm:"size:512" json:"reject_reason"`
	PushURL       string     `gorm:"size:512" json:"push_url"`
	PullURL       string     `gorm:"size:512" json:"pull_url"`
	AnchorID      uint       `gorm:"index;not null" json:"anchor_id"`
	CollegeID     uint       `gorm:"index;not null" json:"college_id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LiveMessage is a chat or Q&A message posted into a living room. Content is
// stored post-moderation.
type LiveMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"room_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Kind      string    `gorm:"size:16;not null;default:CHAT" json:"kind"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
