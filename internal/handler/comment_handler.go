package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/middleware"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// CommentHandler exposes video comments and live message history.
type CommentHandler struct {
	service service.CommentService
	logger  zerolog.Logger
}

// NewCommentHandler constructs the handler.
func NewCommentHandler(service service.CommentService, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		logger:  logger.With().Str("component", "comment_handler").Logger(),
	}
}

// RegisterVideoRoutes wires comment routes under the video group. Posting is
// rate limited per user.
func (h *CommentHandler) RegisterVideoRoutes(router fiber.Router) {
	router.Get("/:id/comments", h.listVideoComments)
	router.Post("/:id/comments", middleware.RateLimit("video_comment", 10, time.Minute), h.postVideoComment)
}

// RegisterLiveRoutes wires message history routes under the live group.
func (h *CommentHandler) RegisterLiveRoutes(router fiber.Router) {
	router.Get("/:id/messages", h.listLiveMessages)
	router.Post("/:id/messages", middleware.RateLimit("live_message", 30, time.Minute), h.postLiveMessage)
}

func (h *CommentHandler) postVideoComment(c *fiber.Ctx) error {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	var req dto.CommentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	comment, err := h.service.PostVideoComment(c.Context(), principalFromContext(c), videoID, req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", videoID).Msg("failed to post video comment")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment posted", comment)
}

func (h *CommentHandler) listVideoComments(c *fiber.Ctx) error {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid video id")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListVideoComments(c.Context(), videoID, page, pageSize)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("video_id", videoID).Msg("failed to list video comments")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "comments retrieved", result)
}

func (h *CommentHandler) postLiveMessage(c *fiber.Ctx) error {
	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	var req dto.LiveMessageCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.PostLiveMessage(c.Context(), principalFromContext(c), roomID, req)
	if err != nil {
		status, errMessage := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("room_id", roomID).Msg("failed to post live message")
		}
		return utils.SendError(c, status, errMessage)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message posted", message)
}

func (h *CommentHandler) listLiveMessages(c *fiber.Ctx) error {
	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListLiveMessages(c.Context(), roomID, c.Query("kind"), page, pageSize)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("room_id", roomID).Msg("failed to list live messages")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "messages retrieved", result)
}
