package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/models"
	"github.com/seva-edu/seva-go-api/internal/observability"
	"github.com/seva-edu/seva-go-api/internal/repository"
)

// AuditEntry captures one operator action for the append-only log.
type AuditEntry struct {
	OperatorID uint
	Action     string
	TargetID   string
	TargetType string
	Detail     string
	Metadata   map[string]interface{}
	ClientIP   string
}

// AuditRecorder is the best-effort sink the lifecycle engines write to.
// Record has no error return on purpose: audit logging is observability,
// not transactional correctness, and must never fail its caller.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditService is the recorder plus the admin read surface.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
}

type auditService struct {
	repo        repository.AuditLogRepository
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
}

type auditEvent struct {
	OperatorID uint      `json:"operator_id"`
	Action     string    `json:"action"`
	TargetID   string    `json:"target_id"`
	TargetType string    `json:"target_type"`
	Detail     string    `json:"detail,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewAuditService constructs the audit sink. The NATS connection is
// optional; when present every persisted entry is also published for
// downstream consumers, with the same swallow-on-failure contract.
func NewAuditService(repo repository.AuditLogRepository, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:        repo,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	action := strings.ToUpper(strings.TrimSpace(entry.Action))
	if action == "" || entry.OperatorID == 0 {
		s.logger.Warn().Uint("operator_id", entry.OperatorID).Msg("dropping audit entry without action or operator")
		observability.AuditDrops().Inc()
		return
	}

	model := models.AuditLog{
		OperatorID: entry.OperatorID,
		Action:     action,
		TargetID:   strings.TrimSpace(entry.TargetID),
		TargetType: strings.TrimSpace(entry.TargetType),
		Detail:     entry.Detail,
		Metadata:   toJSONMap(entry.Metadata),
		ClientIP:   entry.ClientIP,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		// Swallowed: the triggering action already succeeded.
		s.logger.Error().Err(err).Str("action", action).Str("target", model.TargetID).Msg("failed to persist audit entry")
		observability.AuditDrops().Inc()
		return
	}

	s.publish(model)
}

func (s *auditService) publish(model models.AuditLog) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(auditEvent{
		OperatorID: model.OperatorID,
		Action:     model.Action,
		TargetID:   model.TargetID,
		TargetType: model.TargetType,
		Detail:     model.Detail,
		ClientIP:   model.ClientIP,
		RecordedAt: model.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event")
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish audit event")
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	filter := repository.AuditLogFilter{
		Action:     strings.ToUpper(strings.TrimSpace(req.Action)),
		TargetType: strings.TrimSpace(req.TargetType),
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if req.OperatorID > 0 {
		filter.OperatorID = &req.OperatorID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditLogResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditLogListResponse{Items: responses, Pagination: pagination}, nil
}

func toJSONMap(metadata map[string]interface{}) datatypes.JSONMap {
	if metadata == nil {
		return datatypes.JSONMap{}
	}
	out := datatypes.JSONMap{}
	for key, value := range metadata {
		out[key] = value
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
