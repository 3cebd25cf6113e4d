package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
)

const chatSendBufferSize = 32

// ChatConnectionOptions wraps metadata extracted during the HTTP upgrade.
type ChatConnectionOptions struct {
	Principal     authz.Principal
	RoomID        uint
	CorrelationID string
	Context       context.Context
}

// liveChatFrame is the envelope written to websocket clients. Error frames
// go to the offending sender only, never the room.
type liveChatFrame struct {
	Type    string                   `json:"type"`
	Message *dto.LiveMessageResponse `json:"message,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// liveChatEvent is the cross-instance fan-out payload.
type liveChatEvent struct {
	Source  string                  `json:"source"`
	Message dto.LiveMessageResponse `json:"message"`
	SentAt  time.Time               `json:"sent_at"`
}

// ChatGateway manages websocket connections into living rooms. Every
// inbound frame runs the full moderation path before it is stored or
// broadcast.
type ChatGateway interface {
	ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions)
	Start(ctx context.Context)
}

type chatGateway struct {
	comments    CommentService
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	hub         *chatHub
	nodeID      string
}

type chatHub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*chatClient]struct{}
	log   zerolog.Logger
}

type chatClient struct {
	conn    *websocket.Conn
	send    chan liveChatFrame
	options ChatConnectionOptions
	gateway *chatGateway
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

// NewChatGateway constructs the live chat gateway. Redis and NATS are both
// optional; without them broadcast stays within the local process.
func NewChatGateway(comments CommentService, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) ChatGateway {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":livechat"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".livechat"
	}

	return &chatGateway{
		comments:    comments,
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "chat_gateway").Logger(),
		tracer:      otel.Tracer("github.com/seva-edu/seva-go-api/internal/service/chat"),
		hub: &chatHub{
			rooms: make(map[uint]map[*chatClient]struct{}),
			log:   logger.With().Str("component", "chat_hub").Logger(),
		},
		nodeID: uuid.NewString(),
	}
}

func (g *chatGateway) Start(ctx context.Context) {
	if g.redis != nil && g.redisStream != "" {
		go g.consumeRedis(ctx)
	}
	if g.nats != nil && g.natsSubject != "" {
		go g.consumeNATS(ctx)
	}
}

func (g *chatGateway) ServeConnection(conn *websocket.Conn, opts ChatConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &chatClient{
		conn:    conn,
		send:    make(chan liveChatFrame, chatSendBufferSize),
		options: opts,
		gateway: g,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	g.hub.register(client)

	go client.writer()
	client.reader()
}

func (g *chatGateway) processSend(ctx context.Context, client *chatClient, payload dto.LiveMessageCreateRequest) (dto.LiveMessageResponse, error) {
	payload.Kind = strings.ToUpper(strings.TrimSpace(payload.Kind))

	attrs := []attribute.KeyValue{
		attribute.Int64("live.room_id", int64(client.options.RoomID)),
		attribute.Int64("live.sender_id", int64(client.options.Principal.UserID)),
		attribute.String("live.kind", payload.Kind),
	}
	if client.options.CorrelationID != "" {
		attrs = append(attrs, attribute.String("correlation_id", client.options.CorrelationID))
	}

	spanCtx, span := g.tracer.Start(ctx, "livechat.send", trace.WithAttributes(attrs...))
	defer span.End()

	response, err := g.comments.PostLiveMessage(spanCtx, client.options.Principal, client.options.RoomID, payload)
	if err != nil {
		span.RecordError(err)
		return dto.LiveMessageResponse{}, err
	}

	g.hub.broadcast(response.RoomID, liveChatFrame{Type: "message", Message: &response})
	g.publish(spanCtx, response)

	return response, nil
}

func (g *chatGateway) publish(ctx context.Context, message dto.LiveMessageResponse) {
	if (g.redis == nil || g.redisStream == "") && (g.nats == nil || g.natsSubject == "") {
		return
	}

	payload, err := json.Marshal(liveChatEvent{
		Source:  g.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to encode live chat event")
		return
	}

	if g.redis != nil && g.redisStream != "" {
		if err := g.redis.Publish(ctx, g.redisStream, payload).Err(); err != nil {
			g.logger.Warn().Err(err).Msg("failed to publish live chat event to redis")
		}
	}
	if g.nats != nil && g.natsSubject != "" {
		if err := g.nats.Publish(g.natsSubject, payload); err != nil {
			g.logger.Warn().Err(err).Msg("failed to publish live chat event to nats")
		}
	}
}

func (g *chatGateway) consumeRedis(ctx context.Context) {
	pubsub := g.redis.Subscribe(ctx, g.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			g.logger.Error().Err(err).Msg("live chat redis subscription closed")
			return
		}
		g.handleEvent([]byte(msg.Payload))
	}
}

func (g *chatGateway) consumeNATS(ctx context.Context) {
	sub, err := g.nats.QueueSubscribe(g.natsSubject, "seva-livechat", func(msg *nats.Msg) {
		g.handleEvent(msg.Data)
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("failed to subscribe to nats live chat subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			g.logger.Warn().Err(err).Msg("failed to drain live chat nats subscription")
		}
	}()
}

func (g *chatGateway) handleEvent(data []byte) {
	var event liveChatEvent
	if err := json.Unmarshal(data, &event); err != nil {
		g.logger.Warn().Err(err).Msg("invalid live chat event")
		return
	}
	if event.Source == g.nodeID {
		return
	}
	message := event.Message
	g.hub.broadcast(message.RoomID, liveChatFrame{Type: "message", Message: &message})
}

func (h *chatHub) register(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*chatClient]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Uint("room_id", room).Uint("user_id", client.options.Principal.UserID).Msg("live chat client connected")
}

func (h *chatHub) unregister(client *chatClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Uint("room_id", room).Uint("user_id", client.options.Principal.UserID).Msg("live chat client disconnected")
}

func (h *chatHub) broadcast(roomID uint, frame liveChatFrame) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		select {
		case client.send <- frame:
		default:
			h.log.Warn().Uint("room_id", roomID).Uint("user_id", client.options.Principal.UserID).Msg("dropping live chat frame for slow client")
		}
	}
}

func (c *chatClient) reader() {
	defer c.close()

	for {
		var payload dto.LiveMessageCreateRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.gateway.logger.Debug().Err(err).Msg("live chat read loop ended")
			return
		}

		if _, err := c.gateway.processSend(c.baseCtx, c, payload); err != nil {
			// The sender learns why their message bounced; the room
			// sees nothing.
			frame := liveChatFrame{Type: "error", Error: err.Error()}
			select {
			case c.send <- frame:
			default:
			}
		}

		select {
		case <-c.closed:
			return
		default:
		}
	}
}

func (c *chatClient) writer() {
	defer c.close()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.gateway.logger.Debug().Err(err).Msg("live chat write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.gateway.logger.Debug().Err(err).Msg("live chat ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *chatClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.gateway.hub.unregister(c)
		_ = c.conn.Close()
	})
}
