package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// VideoHandler exposes the video lifecycle endpoints.
type VideoHandler struct {
	service service.VideoService
	logger  zerolog.Logger
}

// NewVideoHandler constructs the handler.
func NewVideoHandler(service service.VideoService, logger zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		service: service,
		logger:  logger.With().Str("component", "video_handler").Logger(),
	}
}

// Register wires video routes onto the router group.
func (h *VideoHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/submit", h.submit)
	router.Post("/:id/audit", h.audit)
	router.Post("/batch-audit", h.batchAudit)
	router.Post("/:id/offline", h.offline)
}

func (h *VideoHandler) create(c *fiber.Ctx) error {
	var req dto.VideoCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	video, err := h.service.Create(c.Context(), principalFromContext(c), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create video")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "video created", video)
}

func (h *VideoHandler) submit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	video, err := h.service.SubmitReview(c.Context(), principalFromContext(c), id)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", id).Msg("failed to submit video for review")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "video submitted for review", video)
}

func (h *VideoHandler) audit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	var req dto.VideoAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	video, err := h.service.Audit(c.Context(), principalFromContext(c), id, req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", id).Msg("failed to audit video")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "video audited", video)
}

func (h *VideoHandler) batchAudit(c *fiber.Ctx) error {
	var req dto.VideoBatchAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.BatchAudit(c.Context(), principalFromContext(c), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to batch audit videos")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "batch audit completed", result)
}

func (h *VideoHandler) offline(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	var req dto.VideoOfflineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	video, err := h.service.Offline(c.Context(), principalFromContext(c), id, req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", id).Msg("failed to offline video")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "video taken offline", video)
}

func (h *VideoHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	video, err := h.service.Get(c.Context(), principalFromContext(c), id)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", id).Msg("failed to load video")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "video retrieved", video)
}

func (h *VideoHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	collegeID, err := parseQueryInt(c, "collegeId")
	if err != nil || collegeID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid college id")
	}
	uploaderID, err := parseQueryInt(c, "uploaderId")
	if err != nil || uploaderID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid uploader id")
	}

	req := dto.VideoListRequest{
		Status:     c.Query("status"),
		CollegeID:  uint(collegeID),
		UploaderID: uint(uploaderID),
		Title:      c.Query("title"),
		Page:       page,
		PageSize:   pageSize,
	}

	result, err := h.service.List(c.Context(), principalFromContext(c), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to list videos")
		}
		return utils.SendError(c, status, message)
	}

	if result.CacheHit {
		c.Set("X-Cache-Hit", "true")
	}

	return utils.SendSuccess(c, "videos retrieved", result)
}
