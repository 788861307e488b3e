package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPacket reports a feed payload that is not a JSON object or is
// missing one of the required dmap fields.
var ErrMalformedPacket = errors.New("malformed radar packet")

// RadarPacket is one decoded dmap record received from the real-time feed.
// It lives only for the duration of one receive-append cycle.
type RadarPacket struct {
	SiteName      string    `json:"site_name"`
	Beam          int       `json:"beam"`
	Velocity      []float64 `json:"velocity"`
	GroundScatter []int     `json:"g_scatter"`
}

// EchoCounts holds the per-sounding summary derived from a packet.
type EchoCounts struct {
	Total         int
	Ionospheric   int
	GroundScatter int
}

// ParsePacket decodes an inbound payload into a RadarPacket. Validation is
// field presence only: site_name, beam, velocity and g_scatter must all be
// present; their contents are taken as-is. Errors wrap ErrMalformedPacket.
func ParsePacket(data []byte) (RadarPacket, error) {
	var raw struct {
		SiteName      *string   `json:"site_name"`
		Beam          *int      `json:"beam"`
		Velocity      []float64 `json:"velocity"`
		GroundScatter []int     `json:"g_scatter"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return RadarPacket{}, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}

	switch {
	case raw.SiteName == nil:
		return RadarPacket{}, missingField("site_name")
	case raw.Beam == nil:
		return RadarPacket{}, missingField("beam")
	case raw.Velocity == nil:
		return RadarPacket{}, missingField("velocity")
	case raw.GroundScatter == nil:
		return RadarPacket{}, missingField("g_scatter")
	}

	return RadarPacket{
		SiteName:      *raw.SiteName,
		Beam:          *raw.Beam,
		Velocity:      raw.Velocity,
		GroundScatter: raw.GroundScatter,
	}, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: missing field %q", ErrMalformedPacket, name)
}

// FlagsAligned reports whether the ground-scatter flags are position-aligned
// with the velocity samples. The feed guarantees alignment; a misaligned
// packet still gets best-effort counts and is only flagged by the caller.
func (p RadarPacket) FlagsAligned() bool {
	return len(p.GroundScatter) == len(p.Velocity)
}

// CountEchoes derives the summary counters for one packet. Total is the
// number of velocity samples. Each flag classifies one echo: 1 is ground
// scatter, 0 is ionospheric, and any other value counts toward neither, so
// the split counters need not sum to Total.
func CountEchoes(p RadarPacket) EchoCounts {
	counts := EchoCounts{Total: len(p.Velocity)}
	for _, flag := range p.GroundScatter {
		switch flag {
		case 0:
			counts.Ionospheric++
		case 1:
			counts.GroundScatter++
		}
	}
	return counts
}
