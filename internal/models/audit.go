package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded by the sink.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionCreate       = "CREATE"
	AuditActionUpdate       = "UPDATE"
	AuditActionDelete       = "DELETE"
	AuditActionReviewPass   = "REVIEW_PASS"
	AuditActionReviewReject = "REVIEW_REJECT"
	AuditActionPublish      = "PUBLISH"
	AuditActionOffline      = "OFFLINE"
)

// AuditLog is an append-only record of an operator action. Writing it is
// best-effort: persistence failures never block the triggering action.
type AuditLog struct {
	ID         uint               `gorm:"primaryKey" json:"id"`
	OperatorID uint               `gorm:"index;not null" json:"operator_id"`
	Action     string             `gorm:"size:32;not null;index" json:"action"`
	TargetID   string             `gorm:"size:64;index" json:"target_id"`
	TargetType string             `gorm:"size:32;index" json:"target_type"`
	Detail     string             `gorm:"type:text" json:"detail"`
	Metadata   datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata"`
	ClientIP   string             `gorm:"size:64" json:"client_ip"`
	CreatedAt  time.Time          `gorm:"index" json:"created_at"`
}
