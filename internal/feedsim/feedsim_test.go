package feedsim_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coltfox/superdarn-realtime-tracking/internal/adapter/socketio"
	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
	"github.com/coltfox/superdarn-realtime-tracking/internal/feedsim"
)

// --- tests ---

func TestGenerator_DeterministicForSeed(t *testing.T) {
	a := feedsim.NewGenerator(42)
	b := feedsim.NewGenerator(42)

	for i := 0; i < 10; i++ {
		if diff := cmp.Diff(a.Next(), b.Next()); diff != "" {
			t.Fatalf("packet %d differs across same-seed generators (-a +b):\n%s", i, diff)
		}
	}
}

func TestGenerator_PacketShape(t *testing.T) {
	gen := feedsim.NewGenerator(7)

	for i := 0; i < 50; i++ {
		pkt := gen.Next()
		assert.NotEmpty(t, pkt.SiteName)
		assert.GreaterOrEqual(t, pkt.Beam, 0)
		assert.Less(t, pkt.Beam, 16)
		assert.True(t, pkt.FlagsAligned(), "velocity and flags must stay aligned")
	}
}

func TestHandler_ServesEventStream(t *testing.T) {
	const seed = 99
	srv := httptest.NewServer(feedsim.NewHandler(5*time.Millisecond, seed, slog.Default()))
	t.Cleanup(srv.Close)

	client := dialSim(t, srv.URL)

	replay := feedsim.NewGenerator(seed)
	for i := 0; i < 3; i++ {
		payload, err := client.ReceivePayload(context.Background())
		require.NoError(t, err)

		got, err := domain.ParsePacket(payload)
		require.NoError(t, err)
		if diff := cmp.Diff(replay.Next(), got); diff != "" {
			t.Fatalf("packet %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestHandler_PoisonEvery(t *testing.T) {
	const seed = 123
	h := feedsim.NewHandler(5*time.Millisecond, seed, slog.Default())
	h.PoisonEvery = 2
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := dialSim(t, srv.URL)

	replay := feedsim.NewGenerator(seed)
	for i := 1; i <= 4; i++ {
		payload, err := client.ReceivePayload(context.Background())
		require.NoError(t, err)

		pkt, parseErr := domain.ParsePacket(payload)
		if i%2 == 0 {
			assert.ErrorIs(t, parseErr, domain.ErrMalformedPacket, "payload %d should be poisoned", i)
			continue
		}
		require.NoError(t, parseErr)
		if diff := cmp.Diff(replay.Next(), pkt); diff != "" {
			t.Fatalf("payload %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// --- helpers ---

func dialSim(t *testing.T, url string) *socketio.Client {
	t.Helper()

	client, err := socketio.Dial(context.Background(), url, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close() //nolint:errcheck // best-effort teardown
	})
	return client
}
