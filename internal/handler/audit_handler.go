package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// AuditLogHandler exposes read access to the audit trail.
type AuditLogHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditLogHandler constructs the handler.
func NewAuditLogHandler(service service.AuditService, logger zerolog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register wires audit log routes onto the admin group.
func (h *AuditLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AuditLogHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	operatorID, err := parseQueryInt(c, "operatorId")
	if err != nil || operatorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid operator id")
	}

	req := dto.AuditLogListRequest{
		Action:     c.Query("action"),
		TargetType: c.Query("targetType"),
		OperatorID: uint(operatorID),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list audit logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list audit logs")
	}

	return utils.SendSuccess(c, "audit logs retrieved", result)
}
