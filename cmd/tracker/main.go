package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/coltfox/superdarn-realtime-tracking/internal/adapter/http"
	"github.com/coltfox/superdarn-realtime-tracking/internal/adapter/socketio"
	"github.com/coltfox/superdarn-realtime-tracking/internal/config"
	"github.com/coltfox/superdarn-realtime-tracking/internal/listener"
	"github.com/coltfox/superdarn-realtime-tracking/internal/observability"
	"github.com/coltfox/superdarn-realtime-tracking/internal/trackfile"
)

func main() {
	// Load .env if present; variables already in the environment win.
	godotenv.Load() //nolint:errcheck // a missing .env file is fine

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	if err := run(cfg, logger); err != nil {
		logger.Error("tracker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	if err := checkOutputRoot(cfg.OutputDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := socketio.Dial(ctx, cfg.FeedAddr, logger)
	if err != nil {
		return fmt.Errorf("connect to feed: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("feed close error", "error", err)
		}
	}()

	writer := trackfile.New(cfg.OutputDir, clockwork.NewRealClock(), logger, metrics)
	track := listener.New(client, writer, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, track, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	runErr := track.Run(ctx)

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("shutdown complete")
	return nil
}

// checkOutputRoot fails startup when the output root is missing, before any
// feed connection is made. Day directories are created on demand but the
// root itself never is.
func checkOutputRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %q is not a directory", dir)
	}
	return nil
}
