// Package socketio implements a minimal Socket.IO v5 client over the
// Engine.IO v4 websocket transport. It covers exactly what a read-only feed
// subscriber needs: the open handshake, the default-namespace connect, server
// pings, and EVENT packets. Polling transport, binary attachments, acks, and
// custom namespaces are out of scope.
package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrDisconnected reports that the server ended the session.
var ErrDisconnected = errors.New("server disconnected")

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second

	// Fallback liveness window if the server's handshake omits ping settings.
	defaultKeepalive = 45 * time.Second
)

// Client is one websocket session with a Socket.IO server. It satisfies
// listener.PacketSource. A Client supports one concurrent reader; writes
// (pongs, disconnect) are serialized internally.
type Client struct {
	conn      *websocket.Conn
	logger    *slog.Logger
	sid       string
	keepalive time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the Socket.IO server at addr (http:// or https://, ws://
// and wss:// also accepted), performs the Engine.IO open and namespace
// connect handshakes, and returns a connected client.
func Dial(ctx context.Context, addr string, logger *slog.Logger) (*Client, error) {
	u, err := feedURL(addr)
	if err != nil {
		return nil, err
	}

	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}

	c := &Client{conn: conn, logger: logger, keepalive: defaultKeepalive}
	if err := c.handshake(ctx); err != nil {
		conn.Close() //nolint:errcheck // handshake error takes precedence
		return nil, err
	}

	logger.Info("feed connected", "addr", addr, "sid", c.sid)
	return c, nil
}

// Receive blocks until the next event arrives. Server pings are answered
// internally; non-event packets are skipped. Returns ErrDisconnected when the
// server ends the session and ctx.Err() when the context is cancelled.
func (c *Client) Receive(ctx context.Context) (Event, error) {
	for {
		data, err := c.readFrame(ctx)
		if err != nil {
			return Event{}, err
		}
		if len(data) == 0 {
			continue
		}

		switch data[0] {
		case framePing:
			if err := c.pong(data[1:]); err != nil {
				return Event{}, err
			}
		case frameClose:
			return Event{}, ErrDisconnected
		case frameMessage:
			if len(data) < 2 {
				continue
			}
			switch data[1] {
			case packetEvent:
				ev, err := parseEvent(data[2:])
				if err != nil {
					c.logger.Warn("dropping undecodable event packet", "error", err)
					continue
				}
				return ev, nil
			case packetDisconnect:
				return Event{}, ErrDisconnected
			default:
				// Acks and binary events are not part of this feed.
			}
		default:
			// Noop and upgrade frames need no reply.
		}
	}
}

// ReceivePayload returns the first argument of the next event as raw JSON,
// regardless of the event's name. Events with no arguments are skipped.
func (c *Client) ReceivePayload(ctx context.Context) ([]byte, error) {
	for {
		ev, err := c.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if len(ev.Args) == 0 {
			c.logger.Warn("event carries no payload", "event", ev.Name)
			continue
		}
		return ev.Args[0], nil
	}
}

// Close tells the server the session is over and tears down the websocket.
// Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(writeTimeout)
		c.writeFrame([]byte{frameMessage, packetDisconnect})                                                                  //nolint:errcheck // session is ending either way
		c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline) //nolint:errcheck // session is ending either way
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// handshake consumes the Engine.IO open frame, then joins the default
// namespace and waits for the server's CONNECT ack.
func (c *Client) handshake(ctx context.Context) error {
	data, err := c.readFrame(ctx)
	if err != nil {
		return fmt.Errorf("read open frame: %w", err)
	}
	if len(data) == 0 || data[0] != frameOpen {
		return fmt.Errorf("expected open frame, got %q", truncate(data))
	}

	var hs handshake
	if err := json.Unmarshal(data[1:], &hs); err != nil {
		return fmt.Errorf("decode handshake: %w", err)
	}
	c.sid = hs.SID
	if hs.PingInterval > 0 && hs.PingTimeout > 0 {
		c.keepalive = time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond
	}

	if err := c.writeFrame([]byte{frameMessage, packetConnect}); err != nil {
		return fmt.Errorf("send namespace connect: %w", err)
	}

	for {
		data, err := c.readFrame(ctx)
		if err != nil {
			return fmt.Errorf("read connect ack: %w", err)
		}
		if len(data) == 0 {
			continue
		}

		switch {
		case data[0] == framePing:
			if err := c.pong(data[1:]); err != nil {
				return err
			}
		case data[0] == frameMessage && len(data) > 1 && data[1] == packetConnect:
			return nil
		case data[0] == frameMessage && len(data) > 1 && data[1] == packetConnectError:
			return fmt.Errorf("namespace connect rejected: %s", data[2:])
		default:
			// Anything else before the ack is irrelevant to the handshake.
		}
	}
}

// readFrame blocks on the websocket until a frame arrives, the keepalive
// window passes with no traffic, or ctx is cancelled.
func (c *Client) readFrame(ctx context.Context) ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.keepalive)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	// Cancelling ctx moves the deadline into the past, which fails the
	// blocked read immediately.
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now()) //nolint:errcheck // best-effort unblock
	})
	defer stop()

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return data, nil
}

func (c *Client) pong(payload []byte) error {
	frame := append([]byte{framePong}, payload...)
	if err := c.writeFrame(frame); err != nil {
		return fmt.Errorf("answer ping: %w", err)
	}
	return nil
}

func (c *Client) writeFrame(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// feedURL rewrites the configured feed address into the Engine.IO websocket
// endpoint, defaulting the path to /socket.io/ when none is given.
func feedURL(addr string) (string, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse feed address: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported feed address scheme %q", u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket.io/"
	}

	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()

	return u.String(), nil
}
