package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"minichat/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the chat page and the desktop shell load from arbitrary origins
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionResolver tries to pre-bind a session from the HTTP handshake
// (session cookie or socket token). Connections without one start
// unauthenticated and log in over the socket.
type SessionResolver func(c *gin.Context) (auth.Session, bool)

// Handler upgrades HTTP connections to WebSocket and starts the pumps.
func Handler(hub *Hub, relay *Relay, resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := NewClient(uuid.New().String(), conn, hub)
		if resolve != nil {
			if session, ok := resolve(c); ok {
				client.BindSession(session)
			}
		}
		hub.Register(client)

		// a pre-bound session skips the in-band login round trip
		if session, ok := client.Session(); ok {
			relay.reply(client, EventLoginVerified, session)
		}

		go client.writePump()
		go client.readPump(relay)
	}
}
