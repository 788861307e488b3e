package socketio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Engine.IO v4 frame types, the first byte of every websocket message.
const (
	frameOpen    = '0'
	frameClose   = '1'
	framePing    = '2'
	framePong    = '3'
	frameMessage = '4'
)

// Socket.IO v5 packet types, the second byte of message frames.
const (
	packetConnect      = '0'
	packetDisconnect   = '1'
	packetEvent        = '2'
	packetConnectError = '4'
)

// handshake is the JSON payload of the Engine.IO open frame. Intervals are in
// milliseconds.
type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// Event is one Socket.IO event: its name plus the emitted arguments, each
// kept as raw JSON for the caller to decode.
type Event struct {
	Name string
	Args []json.RawMessage
}

// parseEvent decodes the JSON array of an EVENT packet. The input is
// everything after the "42" prefix, which may still carry a namespace or ack
// id before the array itself.
func parseEvent(data []byte) (Event, error) {
	start := bytes.IndexByte(data, '[')
	if start < 0 {
		return Event{}, fmt.Errorf("event packet has no argument array: %q", truncate(data))
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data[start:], &parts); err != nil {
		return Event{}, fmt.Errorf("decode event array: %w", err)
	}
	if len(parts) == 0 {
		return Event{}, errors.New("empty event array")
	}

	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return Event{}, fmt.Errorf("decode event name: %w", err)
	}
	return Event{Name: name, Args: parts[1:]}, nil
}

func truncate(b []byte) []byte {
	const max = 64
	if len(b) <= max {
		return b
	}
	return b[:max]
}
