package chat

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"minichat/internal/auth"
	"minichat/internal/models"
)

func newWsServer(t *testing.T, relay *Relay, hub *Hub, resolve SessionResolver) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", Handler(hub, relay, resolve))
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func writeEvent(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	frame, err := Encode(event, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestWebSocket_LoginJoinSend(t *testing.T) {
	msgs := new(MockMessageRepository)
	roles := new(MockRoleRepository)
	hub := NewHub()
	relay := NewRelay(hub, msgs, roles, auth.NewSecretAuthorizer("1234"))

	msgs.On("RecentByRoom", mock.Anything, "general", HistoryLimit).Return([]models.ChatMessage{}, nil)
	roles.On("GetAll", mock.Anything).Return([]models.Role{}, nil)
	msgs.On("Create", mock.Anything, mock.AnythingOfType("*models.ChatMessage")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.ChatMessage).ID = 1
		}).
		Return(nil)

	srv := newWsServer(t, relay, hub, nil)
	alice := dial(t, srv)
	bob := dial(t, srv)

	for _, conn := range []*websocket.Conn{alice, bob} {
		writeEvent(t, conn, EventAttemptLogin, LoginRequest{User: "someone", Password: "nope"})
		env := readEnvelope(t, conn)
		require.Equal(t, EventLoginVerified, env.Event)

		writeEvent(t, conn, EventJoinRoom, JoinRequest{Room: "general"})
		env = readEnvelope(t, conn)
		require.Equal(t, EventLoadHistory, env.Event)
	}

	writeEvent(t, alice, EventChatMessage, ChatRequest{Text: "hi", Room: "general"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		env := readEnvelope(t, conn)
		require.Equal(t, EventChatMessage, env.Event)
		var msg models.ChatMessage
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		assert.Equal(t, "hi", msg.Text)
		assert.Equal(t, int64(1), msg.ID)
	}
}

func TestWebSocket_PreBoundSession(t *testing.T) {
	hub := NewHub()
	relay := NewRelay(hub, new(MockMessageRepository), new(MockRoleRepository), auth.NewSecretAuthorizer("1234"))

	resolver := func(c *gin.Context) (auth.Session, bool) {
		return auth.Session{Name: "owner", Role: auth.RoleAdmin, Color: auth.AdminColor}, true
	}
	srv := newWsServer(t, relay, hub, resolver)
	conn := dial(t, srv)

	// the handshake-bound session is announced without an attempt login
	env := readEnvelope(t, conn)
	require.Equal(t, EventLoginVerified, env.Event)
	var session auth.Session
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "owner", session.Name)
	assert.Equal(t, auth.RoleAdmin, session.Role)
}

func TestWebSocket_DisconnectLeavesRoom(t *testing.T) {
	msgs := new(MockMessageRepository)
	roles := new(MockRoleRepository)
	hub := NewHub()
	relay := NewRelay(hub, msgs, roles, auth.NewSecretAuthorizer("1234"))

	msgs.On("RecentByRoom", mock.Anything, "general", HistoryLimit).Return([]models.ChatMessage{}, nil)
	roles.On("GetAll", mock.Anything).Return([]models.Role{}, nil)

	srv := newWsServer(t, relay, hub, nil)
	conn := dial(t, srv)

	writeEvent(t, conn, EventAttemptLogin, LoginRequest{User: "alice", Password: "nope"})
	readEnvelope(t, conn)
	writeEvent(t, conn, EventJoinRoom, JoinRequest{Room: "general"})
	readEnvelope(t, conn)

	require.Eventually(t, func() bool {
		return hub.Online("general") == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.Online("general") == 0
	}, time.Second, 10*time.Millisecond)
}
