package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/service"
	"github.com/seva-edu/seva-go-api/internal/utils"
)

// LiveHandler exposes the live room lifecycle endpoints.
type LiveHandler struct {
	service service.LiveService
	logger  zerolog.Logger
}

// NewLiveHandler constructs the handler.
func NewLiveHandler(service service.LiveService, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		service: service,
		logger:  logger.With().Str("component", "live_handler").Logger(),
	}
}

// Register wires live room routes onto the router group.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Post("/:id/submit", h.submit)
	router.Post("/:id/audit", h.audit)
	router.Post("/:id/publish", h.publish)
	router.Post("/:id/start", h.start)
	router.Post("/:id/finish", h.finish)
	router.Post("/:id/offline", h.offline)
}

func (h *LiveHandler) create(c *fiber.Ctx) error {
	var req dto.LiveCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.CreateDraft(c.Context(), principalFromContext(c), req)
	if err != nil {
		return h.fail(c, err, 0, "failed to create live room")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "live room created", room)
}

func (h *LiveHandler) submit(c *fiber.Ctx) error {
	return h.transition(c, "live room submitted for review", h.service.SubmitReview)
}

func (h *LiveHandler) publish(c *fiber.Ctx) error {
	return h.transition(c, "live room published", h.service.Publish)
}

func (h *LiveHandler) start(c *fiber.Ctx) error {
	return h.transition(c, "live room started", h.service.Start)
}

func (h *LiveHandler) finish(c *fiber.Ctx) error {
	return h.transition(c, "live room finished", h.service.Finish)
}

func (h *LiveHandler) audit(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	var req dto.LiveAuditRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.Audit(c.Context(), principalFromContext(c), id, req)
	if err != nil {
		return h.fail(c, err, id, "failed to audit live room")
	}

	return utils.SendSuccess(c, "live room audited", room)
}

func (h *LiveHandler) offline(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	var req dto.LiveOfflineRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	room, err := h.service.Offline(c.Context(), principalFromContext(c), id, req)
	if err != nil {
		return h.fail(c, err, id, "failed to offline live room")
	}

	return utils.SendSuccess(c, "live room taken offline", room)
}

func (h *LiveHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	room, err := h.service.Get(c.Context(), principalFromContext(c), id)
	if err != nil {
		return h.fail(c, err, id, "failed to load live room")
	}

	return utils.SendSuccess(c, "live room retrieved", room)
}

func (h *LiveHandler) list(c *fiber.Ctx) error {
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
	anchorID, err := parseQueryInt(c, "anchorId")
	if err != nil || anchorID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid anchor id")
	}

	req := dto.LiveListRequest{
		Status:    c.Query("status"),
		CollegeID: uint(collegeID),
		AnchorID:  uint(anchorID),
		Title:     c.Query("title"),
		Page:      page,
		PageSize:  pageSize,
	}

	result, err := h.service.List(c.Context(), principalFromContext(c), req)
	if err != nil {
		return h.fail(c, err, 0, "failed to list live rooms")
	}

	return utils.SendSuccess(c, "live rooms retrieved", result)
}

// transition handles the body-less lifecycle endpoints that share one shape.
func (h *LiveHandler) transition(c *fiber.Ctx, message string, op func(ctx context.Context, principal authz.Principal, id uint) (dto.LiveResponse, error)) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid live room id")
	}

	room, err := op(c.Context(), principalFromContext(c), id)
	if err != nil {
		return h.fail(c, err, id, "live room transition failed")
	}

	return utils.SendSuccess(c, message, room)
}

func (h *LiveHandler) fail(c *fiber.Ctx, err error, id uint, logMessage string) error {
	status, message := statusForError(err)
	if status == fiber.StatusInternalServerError {
		event := requestLogger(h.logger, c).Error().Err(err)
		if id > 0 {
			event = event.Uint("live_id", id)
		}
		event.Msg(logMessage)
	}
	return utils.SendError(c, status, message)
}
