package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// CollegeHandler exposes college directory endpoints.
type CollegeHandler struct {
	service service.CollegeService
	logger  zerolog.Logger
}

// NewCollegeHandler constructs the handler.
func NewCollegeHandler(service service.CollegeService, logger zerolog.Logger) *CollegeHandler {
	return &CollegeHandler{
		service: service,
		logger:  logger.With().Str("component", "college_handler").Logger(),
	}
}

// RegisterPublic wires the read-only listing.
func (h *CollegeHandler) RegisterPublic(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterAdmin wires the management routes.
func (h *CollegeHandler) RegisterAdmin(router fiber.Router) {
	router.Post("", h.create)
}

func (h *CollegeHandler) list(c *fiber.Ctx) error {
	colleges, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list colleges")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list colleges")
	}

	return utils.SendSuccess(c, "colleges retrieved", colleges)
}

func (h *CollegeHandler) create(c *fiber.Ctx) error {
	var req dto.CollegeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	college, err := h.service.Create(c.Context(), principalFromContext(c), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create college")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "college created", college)
}
