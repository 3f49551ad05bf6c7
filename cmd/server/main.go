package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatrelay/internal/app"
	"github.com/vovakirdan/chatrelay/internal/config"
	applog "github.com/vovakirdan/chatrelay/internal/log"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:          "chatrelay [port]",
		Short:        "Real-time chat relay with WebRTC signaling passthrough",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				addr, err := portAddr(args[0])
				if err != nil {
					return err
				}
				overrides.Addr = addr
			}
			return run(cmd.Context(), configPath, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&overrides.SignalingEnabled, "signaling", false, "enable the WebRTC signaling relay")
	flags.IntVar(&overrides.CacheSize, "cache-size", 0, "number of messages replayed to newcomers")
	flags.Int64Var(&overrides.MaxPayloadMB, "max-payload-mb", 0, "maximum inbound frame size in MB")
	flags.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	return cmd
}

func portAddr(arg string) (string, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %q", arg)
	}
	return ":" + strconv.Itoa(port), nil
}

func run(ctx context.Context, configPath string, overrides config.Config) error {
	bootstrap := applog.New("info", "console")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootstrap.Warn().Err(err).Msg("failed to load .env")
	}

	cfg, path, err := config.Load(bootstrap, configPath)
	if err != nil {
		bootstrap.Error().Err(err).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)
	if err := config.Validate(cfg); err != nil {
		bootstrap.Error().Err(err).Str("config", path).Msg("invalid config")
		return err
	}

	logger := applog.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", path).Msg("config loaded")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize app")
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
