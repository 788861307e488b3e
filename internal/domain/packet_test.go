package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePacket(t *testing.T) {
	t.Run("complete record", func(t *testing.T) {
		data := []byte(`{"site_name":"sas","beam":7,"velocity":[120.5,-340.2,15.0],"g_scatter":[0,1,0],"nrang":75}`)
		p, err := ParsePacket(data)

		require.NoError(t, err)
		assert.Equal(t, "sas", p.SiteName)
		assert.Equal(t, 7, p.Beam)
		assert.Equal(t, []float64{120.5, -340.2, 15.0}, p.Velocity)
		assert.Equal(t, []int{0, 1, 0}, p.GroundScatter)
	})

	t.Run("empty arrays are present", func(t *testing.T) {
		data := []byte(`{"site_name":"rkn","beam":0,"velocity":[],"g_scatter":[]}`)
		p, err := ParsePacket(data)

		require.NoError(t, err)
		assert.NotNil(t, p.Velocity)
		assert.Empty(t, p.Velocity)
	})

	t.Run("unlisted site accepted", func(t *testing.T) {
		data := []byte(`{"site_name":"zzz","beam":3,"velocity":[1],"g_scatter":[0]}`)
		p, err := ParsePacket(data)

		require.NoError(t, err)
		assert.Equal(t, "zzz", p.SiteName)
	})

	t.Run("not JSON", func(t *testing.T) {
		_, err := ParsePacket([]byte("not json{{{"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedPacket)
	})

	missing := []struct {
		name string
		data string
	}{
		{"site_name", `{"beam":7,"velocity":[1],"g_scatter":[0]}`},
		{"beam", `{"site_name":"sas","velocity":[1],"g_scatter":[0]}`},
		{"velocity", `{"site_name":"sas","beam":7,"g_scatter":[0]}`},
		{"g_scatter", `{"site_name":"sas","beam":7,"velocity":[1]}`},
	}
	for _, tt := range missing {
		t.Run("missing "+tt.name, func(t *testing.T) {
			_, err := ParsePacket([]byte(tt.data))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPacket)
			assert.Contains(t, err.Error(), tt.name)
		})
	}

	t.Run("null field is missing", func(t *testing.T) {
		data := []byte(`{"site_name":"sas","beam":7,"velocity":null,"g_scatter":[0]}`)
		_, err := ParsePacket(data)

		assert.ErrorIs(t, err, ErrMalformedPacket)
	})
}

func TestCountEchoes(t *testing.T) {
	tests := []struct {
		name     string
		velocity []float64
		flags    []int
		expected EchoCounts
	}{
		{
			name:     "mixed flags",
			velocity: make([]float64, 10),
			flags:    []int{1, 1, 0, 0, 1, 0, 0, 1, 0, 0},
			expected: EchoCounts{Total: 10, Ionospheric: 6, GroundScatter: 4},
		},
		{
			name:     "all ionospheric",
			velocity: make([]float64, 4),
			flags:    []int{0, 0, 0, 0},
			expected: EchoCounts{Total: 4, Ionospheric: 4, GroundScatter: 0},
		},
		{
			name:     "all ground scatter",
			velocity: make([]float64, 3),
			flags:    []int{1, 1, 1},
			expected: EchoCounts{Total: 3, Ionospheric: 0, GroundScatter: 3},
		},
		{
			name:     "no echoes",
			velocity: nil,
			flags:    nil,
			expected: EchoCounts{},
		},
		{
			// Sentinel flag values belong to neither class, so the split
			// counters fall short of the total.
			name:     "out-of-range flags excluded from both classes",
			velocity: make([]float64, 5),
			flags:    []int{0, 1, 2, -1, 0},
			expected: EchoCounts{Total: 5, Ionospheric: 2, GroundScatter: 1},
		},
		{
			name:     "total follows velocity when flags are short",
			velocity: make([]float64, 6),
			flags:    []int{1, 0},
			expected: EchoCounts{Total: 6, Ionospheric: 1, GroundScatter: 1},
		},
		{
			name:     "split counts follow flags when velocity is short",
			velocity: make([]float64, 2),
			flags:    []int{1, 0, 0, 0},
			expected: EchoCounts{Total: 2, Ionospheric: 3, GroundScatter: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := CountEchoes(RadarPacket{Velocity: tt.velocity, GroundScatter: tt.flags})
			assert.Equal(t, tt.expected, counts)
		})
	}
}

func TestFlagsAligned(t *testing.T) {
	aligned := RadarPacket{Velocity: make([]float64, 3), GroundScatter: []int{0, 1, 0}}
	assert.True(t, aligned.FlagsAligned())

	misaligned := RadarPacket{Velocity: make([]float64, 3), GroundScatter: []int{0, 1}}
	assert.False(t, misaligned.FlagsAligned())

	empty := RadarPacket{}
	assert.True(t, empty.FlagsAligned())
}

func TestKnownSite(t *testing.T) {
	for _, code := range []string{"sas", "rkn", "wal", "hok"} {
		assert.True(t, KnownSite(code), code)
	}
	assert.False(t, KnownSite("zzz"))
	assert.False(t, KnownSite(""))
	assert.False(t, KnownSite("SAS"), "site codes are lowercase on the wire")
}
