package models

import "time"

// Video lifecycle states. The canonical path is DRAFT → REVIEW →
// PUBLISHED | REJECTED, with PUBLISHED → OFFLINE as the terminal hop.
// REJECTED videos may be resubmitted for review.
const (
	VideoStatusDraft     = "DRAFT"
	VideoStatusReview    = "REVIEW"
	VideoStatusPublished = "PUBLISHED"
	VideoStatusRejected  = "REJECTED"
	VideoStatusOffline   = "OFFLINE"
)

// Video is a recorded lesson uploaded by a volunteer. CollegeID is fixed at
// creation from the uploader's volunteer profile and never changes.
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null;index" json:"title"`
	URL          string    `gorm:"size:512;not null" json:"url"`
	Intro        string    `gorm:"type:text" json:"intro"`
	CoverURL     string    `gorm:"size:512" json:"cover_url"`
	Duration     int       `gorm:"default:0" json:"duration"`
	GradeRange   string    `gorm:"size:64" json:"grade_range"`
	SubjectTag   string    `gorm:"size:64;index" json:"subject_tag"`
	Status       string    `gorm:"size:32;not null;default:DRAFT;index" json:"status"`
	RejectReason *string   `gorm:"size:512" json:"reject_reason"`
	UploaderID   uint      `gorm:"index;not null" json:"uploader_id"`
	CollegeID    uint      `gorm:"index;not null" json:"college_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VideoComment is viewer feedback under a published video. Content is stored
// post-moderation (masked when the policy says so).
type VideoComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VideoID   uint      `gorm:"index;not null" json:"video_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
