package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/middleware"
	"github.com/seva-edu/seva-go-api/internal/service"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func principalFromContext(c *fiber.Ctx) authz.Principal {
	return authz.Principal{
		UserID:   userIDFromContext(c),
		Role:     userRoleFromContext(c),
		ClientIP: c.IP(),
	}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// statusForError translates service sentinels into HTTP status codes. State
// conflicts surface the entity's current status in the message so callers can
// refresh without an extra read.
func statusForError(err error) (int, string) {
	var conflict *service.StateConflictError
	if errors.As(err, &conflict) {
		return fiber.StatusConflict, conflict.Error()
	}
	if isValidationError(err) {
		return fiber.StatusBadRequest, "validation failed"
	}

	switch {
	case errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrLiveNotFound),
		errors.Is(err, service.ErrWordNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrScopeMismatch),
		errors.Is(err, service.ErrRoleNotAllowed):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrPlanWindow),
		errors.Is(err, service.ErrNoCollege),
		errors.Is(err, service.ErrEmptyPolicyPatch),
		errors.Is(err, service.ErrEmptyContent),
		errors.Is(err, service.ErrSensitiveContent),
		errors.Is(err, service.ErrInvalidTransition):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateWord),
		errors.Is(err, service.ErrDuplicateCollege):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrCommentsDisabled),
		errors.Is(err, service.ErrLiveChatDisabled),
		errors.Is(err, service.ErrContentNotCommentable):
		return fiber.StatusForbidden, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}
