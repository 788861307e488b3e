package trackfile_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
	"github.com/coltfox/superdarn-realtime-tracking/internal/observability"
	"github.com/coltfox/superdarn-realtime-tracking/internal/trackfile"
)

// --- tests ---

func TestWriter_Append_CreatesDayDirFileAndRow(t *testing.T) {
	root := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 14, 32, 7, 512300000, time.UTC))
	w := newTestWriter(root, clock)

	err := w.Append(domain.RadarPacket{
		SiteName:      "sas",
		Beam:          7,
		Velocity:      make([]float64, 10),
		GroundScatter: []int{1, 1, 0, 0, 1, 0, 0, 1, 0, 0},
	})
	require.NoError(t, err)

	got := readFile(t, filepath.Join(root, "2024-06-01", "sas.csv"))
	want := "Timestamp,Beam_Number,Num_Echoes,Num_Ionosph_Echoes,Num_Gnd_sctr_Echoes\n" +
		"2024-06-01-14:32:07.512300,7,10,6,4\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("file content mismatch (-want +got):\n%s", diff)
	}
}

func TestWriter_Append_HeaderWrittenOnce(t *testing.T) {
	root := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	w := newTestWriter(root, clock)

	require.NoError(t, w.Append(makePacket("sas", 3)))
	clock.Advance(2 * time.Second)
	require.NoError(t, w.Append(makePacket("sas", 4)))

	lines := readLines(t, filepath.Join(root, "2024-06-01", "sas.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(trackfile.Header, ","), lines[0])
	assert.Equal(t, "2024-06-01-10:00:00.000000,3,3,2,1", lines[1])
	assert.Equal(t, "2024-06-01-10:00:02.000000,4,3,2,1", lines[2])
}

func TestWriter_Append_RollsOverAtMidnight(t *testing.T) {
	root := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 23, 59, 59, 0, time.UTC))
	w := newTestWriter(root, clock)

	require.NoError(t, w.Append(makePacket("rkn", 0)))
	clock.Advance(2 * time.Second)
	require.NoError(t, w.Append(makePacket("rkn", 0)))

	before := readLines(t, filepath.Join(root, "2024-06-01", "rkn.csv"))
	after := readLines(t, filepath.Join(root, "2024-06-02", "rkn.csv"))
	require.Len(t, before, 2)
	require.Len(t, after, 2)
	assert.True(t, strings.HasPrefix(after[1], "2024-06-02-00:00:01"), "row %q should carry the new day's date", after[1])
}

func TestWriter_Append_SeparateFilePerSite(t *testing.T) {
	root := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	w := newTestWriter(root, clock)

	require.NoError(t, w.Append(makePacket("sas", 1)))
	require.NoError(t, w.Append(makePacket("rkn", 2)))

	dayDir := filepath.Join(root, "2024-06-01")
	require.Len(t, readLines(t, filepath.Join(dayDir, "sas.csv")), 2)
	require.Len(t, readLines(t, filepath.Join(dayDir, "rkn.csv")), 2)

	entries, err := os.ReadDir(dayDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriter_Append_ResumesExistingFile(t *testing.T) {
	root := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))

	require.NoError(t, newTestWriter(root, clock).Append(makePacket("cly", 5)))

	// A fresh Writer over the same root stands in for a process restart.
	clock.Advance(time.Minute)
	require.NoError(t, newTestWriter(root, clock).Append(makePacket("cly", 6)))

	lines := readLines(t, filepath.Join(root, "2024-06-01", "cly.csv"))
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(trackfile.Header, ","), lines[0])
	assert.NotEqual(t, lines[0], lines[1])
	assert.NotEqual(t, lines[0], lines[2])
}

func TestWriter_Append_MissingRootFails(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC))
	w := newTestWriter(filepath.Join(t.TempDir(), "missing"), clock)

	err := w.Append(makePacket("sas", 1))
	require.Error(t, err)
}

// --- helpers ---

func newTestWriter(root string, clock clockwork.Clock) *trackfile.Writer {
	return trackfile.New(root, clock, slog.Default(), observability.NewMetricsForTesting())
}

func makePacket(site string, beam int) domain.RadarPacket {
	return domain.RadarPacket{
		SiteName:      site,
		Beam:          beam,
		Velocity:      []float64{120.5, -340.2, 88.1},
		GroundScatter: []int{0, 1, 0},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	return strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n")
}
