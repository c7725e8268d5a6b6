package chat

import (
	"encoding/json"

	"minichat/internal/models"
)

// Wire protocol: one JSON envelope per text frame.

// Client -> server events
const (
	EventAttemptLogin  = "attempt login"
	EventJoinRoom      = "join room"
	EventChatMessage   = "chat message"
	EventDeleteMessage = "delete message"
	EventCreateRole    = "create role"
)

// Server -> client events
const (
	EventLoginVerified  = "login verified"
	EventLoadHistory    = "load history"
	EventMessageDeleted = "message deleted"
	EventRoleCreated    = "role created"
	EventError          = "error"
)

// Envelope wraps every frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type JoinRequest struct {
	Room string `json:"room"`
}

// ChatRequest is what the client sends. User, color and role fields are
// accepted for compatibility with older clients but ignored; the server
// fills them from the connection's session.
type ChatRequest struct {
	User  string `json:"user"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Room  string `json:"room"`
	Role  string `json:"role"`
}

type DeleteRequest struct {
	ID int64 `json:"id"`
}

type CreateRoleRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type HistoryPayload struct {
	Messages []models.ChatMessage `json:"messages"`
	Roles    []models.Role        `json:"roles"`
}

type TombstonePayload struct {
	ID int64 `json:"id"`
}

type ErrorPayload struct {
	Op      string `json:"op"`
	Message string `json:"message"`
}

// Encode marshals an event and its payload into a wire frame.
func Encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
