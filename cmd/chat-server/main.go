package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"minichat/internal/auth"
	"minichat/internal/chat"
	"minichat/internal/config"
	"minichat/internal/database"
	"minichat/internal/httpapi"
	"minichat/internal/logging"
	"minichat/internal/repository"
	"minichat/internal/session"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	gdb, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := database.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// Sessions from the Google flow live in Redis so they survive restarts.
	// Without the Google flow the store only backs /api/current_user, so an
	// in-memory fallback is acceptable.
	var sessions session.Store
	redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.SessionTTL)
	if err != nil {
		if cfg.GoogleEnabled() {
			log.Fatal().Err(err).Msg("redis connect")
		}
		log.Warn().Err(err).Msg("redis unavailable, using in-memory session store")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	} else {
		defer redisStore.Close()
		sessions = redisStore
	}

	hub := chat.NewHub()
	relay := chat.NewRelay(
		hub,
		repository.NewMessageRepository(gdb),
		repository.NewRoleRepository(gdb),
		auth.NewSecretAuthorizer(cfg.AdminSecret),
	)

	var oauthHandler *httpapi.OAuthHandler
	if cfg.GoogleEnabled() {
		oauthHandler = httpapi.NewOAuthHandler(cfg, auth.NewAllowlistAuthorizer(cfg.AdminEmail), sessions)
	}
	sessionHandler := httpapi.NewSessionHandler(sessions, cfg.JWTSecret)

	r := httpapi.SetupRouter(cfg, hub, relay, oauthHandler, sessionHandler)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	log.Info().Str("addr", addr).Bool("google_login", cfg.GoogleEnabled()).Msg("server starting")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
