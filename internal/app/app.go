package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vovakirdan/chatrelay/internal/archive"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/ice"
	"github.com/vovakirdan/chatrelay/internal/store"
	"github.com/vovakirdan/chatrelay/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/chatrelay/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	tls             config.TLSConfig
	hub             *core.Hub
	ice             *ice.Cache
	archive         *archive.Writer
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		tls:             cfg.TLS,
		log:             logger,
	}

	opts := core.Options{
		SignalingEnabled: cfg.SignalingEnabled,
		CacheSize:        cfg.CacheSize,
		Logger:           logger,
	}

	if cfg.SignalingEnabled {
		cache, err := newICECache(cfg.ICE, logger)
		if err != nil {
			return nil, err
		}
		if cache != nil {
			a.ice = cache
			opts.ICE = cache
		}
	}

	if cfg.ArchivePath != "" {
		st, err := sqlite.New(cfg.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("init archive store: %w", err)
		}
		a.store = st
		a.archive = archive.New(st, archive.DefaultBuffer, logger)
		opts.Archive = a.archive
		logger.Info().Str("archive_path", cfg.ArchivePath).Str("run_id", a.archive.RunID()).Msg("archive enabled")
	}

	a.hub = core.NewHub(opts)

	gin.SetMode(gin.ReleaseMode)
	a.server = transporthttp.NewServer(a.hub, cfg, logger)

	if len(cfg.TLS.AutocertHosts) > 0 {
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLS.AutocertHosts...),
			Cache:      autocert.DirCache(cfg.TLS.AutocertCacheDir),
		}
		a.server.TLSConfig = m.TLSConfig()
	}

	logger.Info().
		Bool("signaling_enabled", cfg.SignalingEnabled).
		Int("cache_size", cfg.CacheSize).
		Int64("max_payload_mb", cfg.MaxPayloadMB).
		Msg("chat relay configured")

	return a, nil
}

func newICECache(cfg config.ICEConfig, logger *zerolog.Logger) (*ice.Cache, error) {
	var providers []ice.Provider
	if len(cfg.Servers) > 0 {
		static, err := ice.NewStatic(cfg.Servers)
		if err != nil {
			return nil, fmt.Errorf("ice servers: %w", err)
		}
		providers = append(providers, static)
	}
	if cfg.CommandFile != "" {
		providers = append(providers, ice.NewCommand(cfg.CommandFile))
	}
	if len(providers) == 0 {
		return nil, nil
	}
	return ice.NewCache(logger, cfg.RefreshInterval, providers...), nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	if a.ice != nil {
		go a.ice.Run(ctx)
	}

	archiveDone := make(chan struct{})
	if a.archive != nil {
		go func() {
			defer close(archiveDone)
			a.archive.Run(ctx)
		}()
	} else {
		close(archiveDone)
	}

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Bool("tls", a.tls.Enabled()).Msg("starting chat relay")
		if err := a.listen(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		stop()
		a.cleanup(archiveDone)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup(archiveDone)
			return err
		}

		a.cleanup(archiveDone)
		return <-serverErr
	}
}

func (a *App) listen() error {
	switch {
	case a.server.TLSConfig != nil:
		// Certificates come from the autocert manager.
		return a.server.ListenAndServeTLS("", "")
	case a.tls.CertFile != "" && a.tls.KeyFile != "":
		return a.server.ListenAndServeTLS(a.tls.CertFile, a.tls.KeyFile)
	default:
		return a.server.ListenAndServe()
	}
}

// cleanup waits for the archive to flush and closes the store.
func (a *App) cleanup(archiveDone <-chan struct{}) {
	if a.store == nil {
		return
	}
	select {
	case <-archiveDone:
	case <-time.After(a.shutdownTimeout):
		a.log.Warn().Msg("archive did not flush in time")
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	} else {
		a.log.Info().Msg("store closed")
	}
}
