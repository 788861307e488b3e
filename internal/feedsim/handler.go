// Package feedsim serves a synthetic SuperDARN-style Socket.IO feed. It
// exists for local development and integration tests, standing in for the
// real-time dmap stream when no radar feed is reachable.
package feedsim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingIntervalMS = 25000
	pingTimeoutMS  = 20000
)

// Handler is an http.Handler that upgrades each request to a websocket,
// performs the Engine.IO open and namespace connect handshakes, and then
// emits one "dmap" event per interval until the client disconnects. Every
// connection gets its own generator, so concurrent clients see identical
// streams.
type Handler struct {
	// PoisonEvery, when positive, replaces every Nth payload with one that
	// is missing required fields. Set it before serving.
	PoisonEvery int

	interval time.Duration
	seed     int64
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a feed handler emitting a packet every interval.
func NewHandler(interval time.Duration, seed int64, logger *slog.Logger) *Handler {
	return &Handler{
		interval: interval,
		seed:     seed,
		logger:   logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.serveConn(conn)
}

func (h *Handler) serveConn(conn *websocket.Conn) {
	defer conn.Close()

	sid := uuid.NewString()
	open := fmt.Sprintf(`0{"sid":%q,"upgrades":[],"pingInterval":%d,"pingTimeout":%d}`,
		sid, pingIntervalMS, pingTimeoutMS)
	if err := writeText(conn, open); err != nil {
		return
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	if len(msg) < 2 || msg[0] != '4' || msg[1] != '0' {
		h.logger.Warn("client sent unexpected first packet", "frame", string(msg))
		return
	}
	if err := writeText(conn, fmt.Sprintf(`40{"sid":%q}`, uuid.NewString())); err != nil {
		return
	}

	h.logger.Info("feed client connected", "sid", sid)

	// Absorb pongs and notice the disconnect. Reads must stay off this
	// goroutine so the emit loop below is the connection's only writer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	gen := NewGenerator(h.seed)
	emit := time.NewTicker(h.interval)
	defer emit.Stop()
	ping := time.NewTicker(pingIntervalMS * time.Millisecond)
	defer ping.Stop()

	var sent int
	for {
		select {
		case <-done:
			h.logger.Info("feed client disconnected", "sid", sid)
			return
		case <-ping.C:
			if err := writeText(conn, "2"); err != nil {
				return
			}
		case <-emit.C:
			sent++
			frame, err := h.eventFrame(gen, sent)
			if err != nil {
				h.logger.Error("encode packet failed", "error", err)
				continue
			}
			if err := writeText(conn, frame); err != nil {
				return
			}
		}
	}
}

// eventFrame builds the next "dmap" event, substituting a field-stripped
// payload when the poison counter comes up.
func (h *Handler) eventFrame(gen *Generator, n int) (string, error) {
	if h.PoisonEvery > 0 && n%h.PoisonEvery == 0 {
		return `42["dmap",{"site_name":"sas"}]`, nil
	}

	data, err := json.Marshal(gen.Next())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`42["dmap",%s]`, data), nil
}

func writeText(conn *websocket.Conn, frame string) error {
	return conn.WriteMessage(websocket.TextMessage, []byte(frame))
}
