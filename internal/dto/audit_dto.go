package dto

import (
	"time"

	"github.com/seva-edu/seva-go-api/internal/models"
)

// AuditLogListRequest filters audit log listings.
type AuditLogListRequest struct {
	Action     string `json:"action"`
	TargetType string `json:"targetType"`
	OperatorID uint   `json:"operatorId"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
}

// AuditLogResponse is the external projection of one audit entry.
type AuditLogResponse struct {
	ID         uint                   `json:"id"`
	OperatorID uint                   `json:"operatorId"`
	Action     string                 `json:"action"`
	TargetID   string                 `json:"targetId"`
	TargetType string                 `json:"targetType"`
	Detail     string                 `json:"detail"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ClientIP   string                 `json:"clientIp"`
	CreatedAt  time.Time              `json:"createdAt"`
}

// AuditLogListResponse wraps a page of audit entries.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse maps an audit row to its DTO.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		OperatorID: entry.OperatorID,
		Action:     entry.Action,
		TargetID:   entry.TargetID,
		TargetType: entry.TargetType,
		Detail:     entry.Detail,
		Metadata:   entry.Metadata,
		ClientIP:   entry.ClientIP,
		CreatedAt:  entry.CreatedAt,
	}
}
