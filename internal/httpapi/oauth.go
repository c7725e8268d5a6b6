package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"minichat/internal/auth"
	"minichat/internal/config"
	"minichat/internal/session"
)

const (
	sessionCookie = "chat_session"
	stateCookie   = "oauth_state"

	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// OAuthHandler drives the Google login flow: redirect out, exchange the
// callback code, check the profile email against the allowlist, and park
// the resulting session in the store under a cookie.
type OAuthHandler struct {
	oauth      *oauth2.Config
	authorizer *auth.AllowlistAuthorizer
	sessions   session.Store
	sessionTTL int // seconds, for the cookie

	// userInfoURL is swappable for tests
	userInfoURL string
}

func NewOAuthHandler(cfg *config.Config, authorizer *auth.AllowlistAuthorizer, sessions session.Store) *OAuthHandler {
	return &OAuthHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthCallbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		authorizer:  authorizer,
		sessions:    sessions,
		sessionTTL:  int(cfg.SessionTTL.Seconds()),
		userInfoURL: defaultUserInfoURL,
	}
}

// Begin starts the redirect handshake.
func (h *OAuthHandler) Begin(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie(stateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// Callback completes the handshake. Any failure redirects to the root;
// the UI simply shows the logged-out state.
func (h *OAuthHandler) Callback(c *gin.Context) {
	defer c.Redirect(http.StatusTemporaryRedirect, "/")

	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		log.Warn().Msg("oauth callback with bad state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		log.Warn().Msg("oauth callback without code")
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("oauth code exchange failed")
		return
	}

	profile, err := h.fetchProfile(c.Request.Context(), token)
	if err != nil {
		log.Error().Err(err).Msg("oauth profile fetch failed")
		return
	}

	sess := h.authorizer.Resolve(profile)
	sid := uuid.New().String()
	if err := h.sessions.Save(c.Request.Context(), sid, sess); err != nil {
		log.Error().Err(err).Msg("save session")
		return
	}

	c.SetCookie(sessionCookie, sid, h.sessionTTL, "/", "", false, true)
	log.Info().Str("user", sess.Name).Str("role", sess.Role).Msg("login verified via google")
}

func (h *OAuthHandler) fetchProfile(ctx context.Context, token *oauth2.Token) (auth.Profile, error) {
	client := h.oauth.Client(ctx, token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return auth.Profile{}, fmt.Errorf("userinfo request: status %d", resp.StatusCode)
	}

	var profile auth.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return auth.Profile{}, fmt.Errorf("userinfo decode: %w", err)
	}
	return profile, nil
}
