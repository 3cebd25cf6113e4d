package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// PolicyResponse is the full moderation policy DTO.
type PolicyResponse struct {
	CommentsEnabled  bool      `json:"commentsEnabled"`
	LiveChatEnabled  bool      `json:"liveChatEnabled"`
	ModerationAction string    `json:"moderationAction"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// PolicyUpdateRequest is a partial patch: nil fields stay unchanged. An
// entirely empty patch is rejected.
type PolicyUpdateRequest struct {
	CommentsEnabled  *bool   `json:"commentsEnabled"`
	LiveChatEnabled  *bool   `json:"liveChatEnabled"`
	ModerationAction *string `json:"moderationAction" validate:"omitempty,oneof=REJECT MASK"`
}

// Empty reports whether the patch carries no fields.
func (r PolicyUpdateRequest) Empty() bool {
	return r.CommentsEnabled == nil && r.LiveChatEnabled == nil && r.ModerationAction == nil
}

// SensitiveWordRequest adds one word to the block list.
type SensitiveWordRequest struct {
	Word     string `json:"word" validate:"required,max=100"`
	IsActive *bool  `json:"isActive"`
}

// SensitiveWordToggleRequest flips the active flag for one word.
type SensitiveWordToggleRequest struct {
	IsActive bool `json:"isActive"`
}

// SensitiveWordResponse is the external projection of a block-list entry.
type SensitiveWordResponse struct {
	ID        uint      `json:"id"`
	Word      string    `json:"word"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewPolicyResponse maps the singleton policy row to its DTO.
func NewPolicyResponse(p models.ContentPolicy) PolicyResponse {
	return PolicyResponse{
		CommentsEnabled:  p.CommentsEnabled,
		LiveChatEnabled:  p.LiveChatEnabled,
		ModerationAction: p.ModerationAction,
		UpdatedAt:        p.UpdatedAt,
	}
}

// NewSensitiveWordResponse maps a block-list row to its DTO.
func NewSensitiveWordResponse(w models.SensitiveWord) SensitiveWordResponse {
	return SensitiveWordResponse{
		ID:        w.ID,
		Word:      w.Word,
		IsActive:  w.IsActive,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
