package chat

import (
	"sync"

	"github.com/rs/zerolog/log"

	"minichat/internal/metrics"
)

// Hub is the process-wide connection registry: every live client, plus the
// room each one currently occupies. Rooms exist implicitly the moment a
// client references them and vanish when their last member leaves.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // clientID -> client
	rooms   map[string]map[string]*Client // room -> clientID -> client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

// Register adds a connected client to the registry.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	metrics.WsConnections.Inc()
	log.Debug().Str("client_id", c.ID).Msg("client registered")
}

// Unregister removes a client from its room and the registry, and closes
// its send channel. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c.ID]
	if known {
		delete(h.clients, c.ID)
		h.leaveLocked(c)
	}
	h.mu.Unlock()
	if known {
		c.closeSend()
		metrics.WsConnections.Dec()
		log.Debug().Str("client_id", c.ID).Msg("client unregistered")
	}
}

// Join subscribes a client to a room. Clients occupy one room at a time:
// joining a new room leaves the previous one, and re-joining the current
// room is a no-op.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.room == room {
		return
	}
	h.leaveLocked(c)
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	c.room = room
	log.Info().Str("client_id", c.ID).Str("room", room).Msg("client joined room")
}

func (h *Hub) leaveLocked(c *Client) {
	if c.room == "" {
		return
	}
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// BroadcastRoom sends a frame to every member of a room, the sender
// included. Clients with a full send buffer are dropped.
func (h *Hub) BroadcastRoom(room string, frame []byte) {
	h.mu.RLock()
	var slow []*Client
	for _, c := range h.rooms[room] {
		if !c.trySend(frame) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	h.dropSlow(slow)
}

// BroadcastAll sends a frame to every connected client regardless of room.
func (h *Hub) BroadcastAll(frame []byte) {
	h.mu.RLock()
	var slow []*Client
	for _, c := range h.clients {
		if !c.trySend(frame) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	h.dropSlow(slow)
}

func (h *Hub) dropSlow(slow []*Client) {
	for _, c := range slow {
		metrics.BroadcastDrops.Inc()
		log.Warn().Str("client_id", c.ID).Msg("dropping slow client")
		go h.Unregister(c)
	}
}

// Online returns the number of clients currently in a room.
func (h *Hub) Online(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// RoomOf returns the room a client currently occupies, if any.
func (h *Hub) RoomOf(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.room
}
