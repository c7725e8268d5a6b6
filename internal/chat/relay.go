package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"minichat/internal/auth"
	"minichat/internal/metrics"
	"minichat/internal/models"
	"minichat/internal/repository"
)

// HistoryLimit is the replay window on room join: the newest messages,
// delivered oldest first.
const HistoryLimit = 50

// Relay routes inbound client events to the store and fans results out to
// room members. All handlers run on the reading goroutine of the
// originating connection, so per-connection events are sequential.
type Relay struct {
	hub      *Hub
	messages repository.MessageRepository
	roles    repository.RoleRepository
	secrets  *auth.SecretAuthorizer

	// now and encode are swappable for tests
	now    func() time.Time
	encode func(event string, data interface{}) ([]byte, error)
}

func NewRelay(hub *Hub, messages repository.MessageRepository, roles repository.RoleRepository, secrets *auth.SecretAuthorizer) *Relay {
	return &Relay{
		hub:      hub,
		messages: messages,
		roles:    roles,
		secrets:  secrets,
		now:      time.Now,
		encode:   Encode,
	}
}

// HandleFrame dispatches one wire frame from a client.
func (r *Relay) HandleFrame(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("client_id", c.ID).Msg("malformed frame")
		return
	}

	ctx := context.Background()
	switch env.Event {
	case EventAttemptLogin:
		r.handleLogin(c, env.Data)
	case EventJoinRoom:
		r.handleJoin(ctx, c, env.Data)
	case EventChatMessage:
		r.handleChat(ctx, c, env.Data)
	case EventDeleteMessage:
		r.handleDelete(ctx, c, env.Data)
	case EventCreateRole:
		r.handleCreateRole(ctx, c, env.Data)
	default:
		r.sendError(c, env.Event, "unknown event")
	}
}

func (r *Relay) handleLogin(c *Client, data json.RawMessage) {
	var req LoginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, EventAttemptLogin, "invalid payload")
		return
	}
	if req.User == "" {
		r.sendError(c, EventAttemptLogin, "display name required")
		return
	}

	session := r.secrets.Resolve(req.User, req.Password)
	c.BindSession(session)
	log.Info().Str("client_id", c.ID).Str("user", session.Name).Str("role", session.Role).Msg("login verified")
	r.reply(c, EventLoginVerified, session)
}

func (r *Relay) handleJoin(ctx context.Context, c *Client, data json.RawMessage) {
	if _, ok := c.Session(); !ok {
		r.sendError(c, EventJoinRoom, auth.ErrNotAuthenticated.Error())
		return
	}
	var req JoinRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Room == "" {
		r.sendError(c, EventJoinRoom, "invalid payload")
		return
	}

	r.hub.Join(c, req.Room)

	messages, err := r.messages.RecentByRoom(ctx, req.Room, HistoryLimit)
	if err != nil {
		log.Error().Err(err).Str("room", req.Room).Msg("load history")
		r.sendError(c, EventJoinRoom, "failed to load history")
		return
	}
	roles, err := r.roles.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("load roles")
		r.sendError(c, EventJoinRoom, "failed to load history")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	if roles == nil {
		roles = []models.Role{}
	}
	r.reply(c, EventLoadHistory, HistoryPayload{Messages: messages, Roles: roles})
}

func (r *Relay) handleChat(ctx context.Context, c *Client, data json.RawMessage) {
	session, ok := c.Session()
	if !ok {
		r.sendError(c, EventChatMessage, auth.ErrNotAuthenticated.Error())
		return
	}
	var req ChatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		r.sendError(c, EventChatMessage, "invalid payload")
		return
	}
	if req.Room == "" || req.Text == "" {
		r.sendError(c, EventChatMessage, "room and text required")
		return
	}

	// Identity fields come from the session, never from the payload.
	msg := &models.ChatMessage{
		User:  session.Name,
		Text:  req.Text,
		Color: session.Color,
		Time:  r.now().Format("15:04"),
		Room:  req.Room,
		Role:  session.Role,
	}

	// Persist first; a message the store never saw must not reach the room.
	if err := r.messages.Create(ctx, msg); err != nil {
		log.Error().Err(err).Str("room", req.Room).Msg("persist message")
		r.sendError(c, EventChatMessage, "failed to send message")
		return
	}

	frame, err := r.encode(EventChatMessage, msg)
	if err != nil {
		log.Error().Err(err).Msg("encode message")
		r.sendError(c, EventChatMessage, "failed to send message")
		return
	}
	metrics.MessagesRelayed.Inc()
	r.hub.BroadcastRoom(req.Room, frame)
}

func (r *Relay) handleDelete(ctx context.Context, c *Client, data json.RawMessage) {
	session, ok := c.Session()
	if !ok {
		r.sendError(c, EventDeleteMessage, auth.ErrNotAuthenticated.Error())
		return
	}
	// Moderation is gated on the server-held role, not anything in the payload.
	if !session.IsAdmin() {
		r.sendError(c, EventDeleteMessage, auth.ErrForbidden.Error())
		return
	}
	var req DeleteRequest
	if err := json.Unmarshal(data, &req); err != nil || req.ID == 0 {
		r.sendError(c, EventDeleteMessage, "invalid payload")
		return
	}

	if err := r.messages.DeleteByID(ctx, req.ID); err != nil {
		log.Error().Err(err).Int64("message_id", req.ID).Msg("delete message")
		r.sendError(c, EventDeleteMessage, "failed to delete message")
		return
	}

	// Tombstone goes to every client: the deleted message may be on screen
	// in any room view.
	frame, err := r.encode(EventMessageDeleted, TombstonePayload{ID: req.ID})
	if err != nil {
		log.Error().Err(err).Msg("encode tombstone")
		r.sendError(c, EventDeleteMessage, "failed to delete message")
		return
	}
	log.Info().Int64("message_id", req.ID).Str("by", session.Name).Msg("message deleted")
	r.hub.BroadcastAll(frame)
}

func (r *Relay) handleCreateRole(ctx context.Context, c *Client, data json.RawMessage) {
	session, ok := c.Session()
	if !ok {
		r.sendError(c, EventCreateRole, auth.ErrNotAuthenticated.Error())
		return
	}
	if !session.IsAdmin() {
		r.sendError(c, EventCreateRole, auth.ErrForbidden.Error())
		return
	}
	var req CreateRoleRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		r.sendError(c, EventCreateRole, "invalid payload")
		return
	}

	role := &models.Role{Name: req.Name, Color: req.Color}
	if err := r.roles.Create(ctx, role); err != nil {
		log.Error().Err(err).Str("role", req.Name).Msg("create role")
		r.sendError(c, EventCreateRole, "failed to create role")
		return
	}

	// Broadcast the store-confirmed copy so clients see the assigned id.
	frame, err := r.encode(EventRoleCreated, role)
	if err != nil {
		log.Error().Err(err).Msg("encode role")
		r.sendError(c, EventCreateRole, "failed to create role")
		return
	}
	log.Info().Str("role", role.Name).Str("by", session.Name).Msg("role created")
	r.hub.BroadcastAll(frame)
}

func (r *Relay) reply(c *Client, event string, data interface{}) {
	frame, err := r.encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("encode reply")
		return
	}
	if !c.trySend(frame) {
		metrics.BroadcastDrops.Inc()
		go r.hub.Unregister(c)
	}
}

func (r *Relay) sendError(c *Client, op, message string) {
	r.reply(c, EventError, ErrorPayload{Op: op, Message: message})
}
