// Package trackfile writes per-site per-day CSV track files under a fixed
// root directory, one row per beam record.
package trackfile

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
	"github.com/coltfox/superdarn-realtime-tracking/internal/observability"
)

// Header is the column row written once at the top of every track file.
var Header = []string{"Timestamp", "Beam_Number", "Num_Echoes", "Num_Ionosph_Echoes", "Num_Gnd_sctr_Echoes"}

// TimestampLayout formats row timestamps with microsecond precision. The date
// prefix always matches the name of the day directory the row lands in.
const TimestampLayout = "2006-01-02-15:04:05.000000"

const dateLayout = "2006-01-02"

// Writer appends beam records to track files laid out as
// <root>/<YYYY-MM-DD>/<site>.csv. The root directory must already exist;
// day directories and files are created on demand.
type Writer struct {
	root    string
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Writer rooted at the given output directory.
func New(root string, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	return &Writer{
		root:    root,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Append writes one row for the packet to the current day's file for its site,
// creating the day directory and the file (with header) if this is the first
// record for that day or site. Each row is an open-append-close cycle, so a
// partially written day survives restarts without duplicated headers.
func (w *Writer) Append(p domain.RadarPacket) error {
	now := w.clock.Now()
	day := now.Format(dateLayout)

	dayDir := filepath.Join(w.root, day)
	if err := w.ensureDay(dayDir); err != nil {
		return err
	}

	path := filepath.Join(dayDir, p.SiteName+".csv")
	if err := w.ensureFile(path, p.SiteName); err != nil {
		return err
	}

	counts := domain.CountEchoes(p)

	start := time.Now()
	if err := w.appendRow(path, now, p.Beam, counts); err != nil {
		return err
	}
	w.metrics.AppendDuration.Observe(time.Since(start).Seconds())
	w.metrics.RowsWritten.Inc()

	w.logger.Debug("row appended",
		"site", p.SiteName,
		"beam", p.Beam,
		"echoes", counts.Total,
	)
	return nil
}

// ensureDay creates the day directory if it does not exist yet. The parent
// root is never created here; a missing root is an operator error.
func (w *Writer) ensureDay(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat day directory: %w", err)
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("create day directory: %w", err)
	}
	w.metrics.DirsCreated.Inc()
	w.logger.Info("day directory created", "dir", dir)
	return nil
}

// ensureFile creates the site's track file with its header row if it does not
// exist yet.
func (w *Writer) ensureFile(path, site string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat track file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create track file: %w", err)
	}

	if err := writeRecord(f, Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.metrics.FilesCreated.Inc()
	w.logger.Info("track file created", "file", path, "site", site)
	return nil
}

func (w *Writer) appendRow(path string, now time.Time, beam int, counts domain.EchoCounts) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open track file: %w", err)
	}

	row := []string{
		now.Format(TimestampLayout),
		strconv.Itoa(beam),
		strconv.Itoa(counts.Total),
		strconv.Itoa(counts.Ionospheric),
		strconv.Itoa(counts.GroundScatter),
	}
	if err := writeRecord(f, row); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// writeRecord writes one CSV record and closes the file, reporting the first
// error encountered.
func writeRecord(f *os.File, record []string) error {
	cw := csv.NewWriter(f)
	writeErr := cw.Write(record)
	cw.Flush()
	if writeErr == nil {
		writeErr = cw.Error()
	}

	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}
