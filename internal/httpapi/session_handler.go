package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"minichat/internal/auth"
	"minichat/internal/session"
)

// socketTokenTTL bounds how long a minted socket token may sit unused
// before the WebSocket handshake presents it.
const socketTokenTTL = time.Minute

// SessionHandler exposes the cookie-session surface: profile lookup,
// socket-token minting and logout.
type SessionHandler struct {
	sessions  session.Store
	jwtSecret string
}

func NewSessionHandler(sessions session.Store, jwtSecret string) *SessionHandler {
	return &SessionHandler{sessions: sessions, jwtSecret: jwtSecret}
}

func (h *SessionHandler) lookup(c *gin.Context) (auth.Session, bool) {
	sid, err := c.Cookie(sessionCookie)
	if err != nil || sid == "" {
		return auth.Session{}, false
	}
	sess, err := h.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		return auth.Session{}, false
	}
	return sess, true
}

// CurrentUser returns the session profile, or an empty object when there
// is none. Matches what the chat page polls on load.
func (h *SessionHandler) CurrentUser(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// SocketToken mints a short-lived signed token carrying the session, for
// clients that open the WebSocket from a different origin than the one
// holding the cookie.
func (h *SessionHandler) SocketToken(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	token, err := auth.MintSocketToken(sess, h.jwtSecret, socketTokenTTL)
	if err != nil {
		log.Error().Err(err).Msg("mint socket token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout deletes the server-side session and clears the cookie.
func (h *SessionHandler) Logout(c *gin.Context) {
	sid, err := c.Cookie(sessionCookie)
	if err == nil && sid != "" {
		if err := h.sessions.Delete(c.Request.Context(), sid); err != nil {
			log.Error().Err(err).Msg("delete session")
		}
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, "/")
}

// ResolveSession pre-binds a WebSocket connection from the handshake
// request: the session cookie wins, then a socket token in the query
// string. Used as the chat handler's SessionResolver.
func (h *SessionHandler) ResolveSession(c *gin.Context) (auth.Session, bool) {
	if sess, ok := h.lookup(c); ok {
		return sess, true
	}
	if token := c.Query("token"); token != "" {
		sess, err := auth.ParseSocketToken(token, h.jwtSecret)
		if err != nil {
			log.Warn().Err(err).Msg("invalid socket token on handshake")
			return auth.Session{}, false
		}
		return sess, true
	}
	return auth.Session{}, false
}
