package http

import (
	"context"
	stdhttp "net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
)

// SessionHub is the part of the core hub the transport talks to.
type SessionHub interface {
	RegisterSession(s *core.Session) error
	UnregisterSession(s *core.Session)
	Submit(s *core.Session, cmd *core.Command) error
	Stats(ctx context.Context) (core.Stats, error)
}

// NewServer builds an HTTP server with the chat routes. The WebSocket endpoint
// sits on the plain mux because the upgrade must hijack an unwritten response;
// everything else goes through gin.
func NewServer(hub SessionHub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	api := NewAPIHandlers(hub, logger)
	router.GET("/health", api.Health)
	router.GET("/api/stats", api.Stats)

	if cfg.StaticDir != "" {
		if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
			router.NoRoute(staticHandler(cfg.StaticDir))
		} else {
			logger.Warn().Str("static_dir", cfg.StaticDir).Msg("static directory not found, client files are not served")
		}
	}

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
