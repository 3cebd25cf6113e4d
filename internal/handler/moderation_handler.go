package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// ModerationHandler exposes the content policy and sensitive word admin endpoints.
type ModerationHandler struct {
	policies service.PolicyService
	logger   zerolog.Logger
}

// NewModerationHandler constructs the handler.
func NewModerationHandler(policies service.PolicyService, logger zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		policies: policies,
		logger:   logger.With().Str("component", "moderation_handler").Logger(),
	}
}

// Register wires policy and word routes onto the admin group.
func (h *ModerationHandler) Register(router fiber.Router) {
	router.Get("/policy", h.getPolicy)
	router.Put("/policy", h.updatePolicy)
	router.Get("/words", h.listWords)
	router.Post("/words", h.addWord)
	router.Delete("/words/:id", h.removeWord)
	router.Patch("/words/:id", h.toggleWord)
}

func (h *ModerationHandler) getPolicy(c *fiber.Ctx) error {
	policy, err := h.policies.GetPolicy(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load content policy")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load content policy")
	}

	return utils.SendSuccess(c, "policy retrieved", dto.NewPolicyResponse(policy))
}

func (h *ModerationHandler) updatePolicy(c *fiber.Ctx) error {
	var req dto.PolicyUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	policy, err := h.policies.UpdatePolicy(c.Context(), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update content policy")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "policy updated", policy)
}

func (h *ModerationHandler) listWords(c *fiber.Ctx) error {
	words, err := h.policies.ListWords(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list sensitive words")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sensitive words")
	}

	return utils.SendSuccess(c, "words retrieved", words)
}

func (h *ModerationHandler) addWord(c *fiber.Ctx) error {
	var req dto.SensitiveWordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Word = strings.TrimSpace(req.Word)

	word, err := h.policies.AddWord(c.Context(), req)
	if err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to add sensitive word")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "word added", word)
}

func (h *ModerationHandler) removeWord(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid word id")
	}

	if err := h.policies.RemoveWord(c.Context(), id); err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("word_id", id).Msg("failed to remove sensitive word")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "word removed", nil)
}

func (h *ModerationHandler) toggleWord(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid word id")
	}

	var req dto.SensitiveWordToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.policies.SetWordActive(c.Context(), id, req.IsActive); err != nil {
		status, message := statusForError(err)
		if status == fiber.StatusInternalServerError {
			requestLogger(h.logger, c).Error().Err(err).Uint("word_id", id).Msg("failed to toggle sensitive word")
		}
		return utils.SendError(c, status, message)
	}

	return utils.SendSuccess(c, "word updated", nil)
}
