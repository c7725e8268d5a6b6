package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"minichat/internal/chat"
	"minichat/internal/config"
	"minichat/internal/metrics"
)

// SetupRouter wires the full HTTP surface: static chat page, health and
// metrics, the Google login flow (when configured) and the WebSocket
// endpoint.
func SetupRouter(cfg *config.Config, hub *chat.Hub, relay *chat.Relay, oauthHandler *OAuthHandler, sessionHandler *SessionHandler) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Static("/static", cfg.PublicDir)
	r.StaticFile("/", cfg.PublicDir+"/index.html")

	if oauthHandler != nil {
		r.GET("/auth/google", oauthHandler.Begin)
		r.GET("/auth/google/callback", oauthHandler.Callback)
	}

	api := r.Group("/api")
	api.GET("/current_user", sessionHandler.CurrentUser)
	api.GET("/socket-token", sessionHandler.SocketToken)
	api.GET("/logout", sessionHandler.Logout)

	r.GET("/ws", chat.Handler(hub, relay, sessionHandler.ResolveSession))

	return r
}
