// Command feedsim serves a synthetic SuperDARN Socket.IO feed for local
// development. Point the tracker's SOCKET_ADDR at it and rows start landing
// without a live radar connection.
//
// Usage:
//
//	go run ./cmd/feedsim -addr :5000 -interval 2s -seed 7
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coltfox/superdarn-realtime-tracking/internal/feedsim"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":5000", "listen address")
	interval := flag.Duration("interval", 2*time.Second, "time between emitted packets")
	seed := flag.Int64("seed", 1, "generator seed; same seed, same stream")
	poison := flag.Int("poison-every", 0, "emit a malformed payload every N packets (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	h := feedsim.NewHandler(*interval, *seed, logger)
	h.PoisonEvery = *poison

	srv := &http.Server{
		Addr:              *addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck // exiting anyway
	}()

	logger.Info("feed simulator listening", "addr", *addr, "interval", *interval, "seed", *seed)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
