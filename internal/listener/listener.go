package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
	"github.com/coltfox/superdarn-realtime-tracking/internal/observability"
)

// PacketSource yields raw event payloads from the real-time feed.
type PacketSource interface {
	ReceivePayload(ctx context.Context) ([]byte, error)
}

// Appender persists one parsed packet.
type Appender interface {
	Append(p domain.RadarPacket) error
}

// Listener drives the receive-parse-append loop.
type Listener struct {
	source   PacketSource
	appender Appender
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// New creates a Listener with the given source, sink, and observability.
func New(source PacketSource, appender Appender, logger *slog.Logger, metrics *observability.Metrics) *Listener {
	return &Listener{
		source:   source,
		appender: appender,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the listener has received at least one
// packet, or an error describing why the service is not yet ready.
func (l *Listener) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("no packets received from the feed yet")
	}
	return nil
}

// Run consumes the feed until ctx is cancelled. Malformed payloads are
// skipped; a failing source or appender ends the run, since neither a dead
// feed nor a broken output tree heals on its own here.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("listener started")
	l.metrics.ListenerRunning.Set(1)
	defer l.metrics.ListenerRunning.Set(0)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("listener stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if err := l.processNext(ctx); err != nil {
			if ctx.Err() != nil {
				l.logger.Info("listener stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}
	}
}

// processNext receives and persists a single packet.
func (l *Listener) processNext(ctx context.Context) error {
	payload, err := l.source.ReceivePayload(ctx)
	if err != nil {
		return fmt.Errorf("receive payload: %w", err)
	}
	l.metrics.PacketsReceived.Inc()
	l.ready.Store(true)

	pkt, err := domain.ParsePacket(payload)
	if err != nil {
		l.logger.Warn("skipping malformed packet", "error", err)
		l.metrics.MalformedPackets.Inc()
		return nil
	}

	l.logger.Info("packet received", "site", pkt.SiteName, "beam", pkt.Beam)

	if !domain.KnownSite(pkt.SiteName) {
		l.logger.Warn("packet from unlisted site", "site", pkt.SiteName)
		l.metrics.UnknownSitePackets.Inc()
	}
	if !pkt.FlagsAligned() {
		l.logger.Warn("scatter flags misaligned with echoes",
			"site", pkt.SiteName,
			"flags", len(pkt.GroundScatter),
			"echoes", len(pkt.Velocity),
		)
		l.metrics.MisalignedPackets.Inc()
	}

	if err := l.appender.Append(pkt); err != nil {
		return fmt.Errorf("append packet: %w", err)
	}
	return nil
}
