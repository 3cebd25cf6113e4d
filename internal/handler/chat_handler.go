package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/middleware"
	"github.com/seva-edu/seva-go-api/internal/service"
)

// ChatHandler wires the live chat websocket upgrade.
type ChatHandler struct {
	gateway service.ChatGateway
	logger  zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(gateway service.ChatGateway, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		gateway: gateway,
		logger:  logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			c.Locals("client_ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	userID := websocketUserID(conn)
	if userID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	roomRaw := strings.TrimSpace(conn.Query("room_id"))
	roomID, err := strconv.ParseUint(roomRaw, 10, 64)
	if err != nil || roomID == 0 {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusBadRequest, "room_id required"))
		_ = conn.Close()
		return
	}

	role := strings.ToUpper(strings.TrimSpace(fmt.Sprint(conn.Locals("user_role"))))
	correlation := fmt.Sprint(conn.Locals("correlation_id"))
	clientIP := fmt.Sprint(conn.Locals("client_ip"))
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.ChatConnectionOptions{
		Principal: authz.Principal{
			UserID:   userID,
			Role:     role,
			ClientIP: clientIP,
		},
		RoomID:        uint(roomID),
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("user_id", userID).Uint64("room_id", roomID).Msg("live chat websocket connected")
	h.gateway.ServeConnection(conn, opts)
	h.logger.Info().Uint("user_id", userID).Uint64("room_id", roomID).Msg("live chat websocket disconnected")
}

func websocketUserID(conn *websocket.Conn) uint {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case float64:
			if v > 0 {
				return uint(v)
			}
		case uint:
			return v
		case int:
			if v > 0 {
				return uint(v)
			}
		case string:
			if parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
				return uint(parsed)
			}
		}
	}
	return 0
}
