package models

import "time"

// Moderation actions applied when a sensitive word matches.
const (
	ModerationActionReject = "REJECT"
	ModerationActionMask   = "MASK"
)

// PolicySlot is the fixed discriminator value carried by the one global
// policy row. The unique index on it makes the row a database-level
// singleton.
const PolicySlot = "global"

// ContentPolicy is the single global moderation configuration row. Exactly
// one logical row exists; it is created lazily with defaults on first read.
type ContentPolicy struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Slot             string    `gorm:"size:16;uniqueIndex;not null;default:global" json:"-"`
	CommentsEnabled  bool      `gorm:"not null;default:true" json:"comments_enabled"`
	LiveChatEnabled  bool      `gorm:"not null;default:true" json:"live_chat_enabled"`
	ModerationAction string    `gorm:"size:16;not null;default:REJECT" json:"moderation_action"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// SensitiveWord is one entry of the admin-managed block list. Matching is a
// case-sensitive literal substring check; no ordering is persisted.
type SensitiveWord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Word      string    `gorm:"size:100;uniqueIndex;not null" json:"word"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
