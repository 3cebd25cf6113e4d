package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// CommentCreateRequest posts one comment under a published video.
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// CommentResponse is the external projection of a video comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	VideoID   uint      `json:"videoId"`
	AuthorID  uint      `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentListResponse wraps a page of comments.
type CommentListResponse struct {
	Items      []CommentResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// LiveMessageCreateRequest posts one chat or Q&A message into a living room.
type LiveMessageCreateRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=CHAT QA"`
	Content string `json:"content" validate:"required,max=1000"`
}

// LiveMessageResponse is the external projection of a live message.
type LiveMessageResponse struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"roomId"`
	AuthorID  uint      `json:"authorId"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// LiveMessageListResponse wraps a page of live messages.
type LiveMessageListResponse struct {
	Items      []LiveMessageResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// NewCommentResponse maps a video comment row to its DTO.
func NewCommentResponse(c models.VideoComment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		VideoID:   c.VideoID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// NewLiveMessageResponse maps a live message row to its DTO.
func NewLiveMessageResponse(m models.LiveMessage) LiveMessageResponse {
	return LiveMessageResponse{
		ID:        m.ID,
		RoomID:    m.RoomID,
		AuthorID:  m.AuthorID,
		Kind:      m.Kind,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
