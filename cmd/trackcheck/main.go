// Command trackcheck validates a tree of track files: day directory naming,
// CSV headers, row shape, timestamp format, and echo-count arithmetic. It is
// read-only and safe to run against a tree the tracker is still writing.
//
// Usage:
//
//	go run ./cmd/trackcheck -root output
//	go run ./cmd/trackcheck -root output -day 2024-06-01
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coltfox/superdarn-realtime-tracking/internal/domain"
	"github.com/coltfox/superdarn-realtime-tracking/internal/trackfile"
)

const dateLayout = "2006-01-02"

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	root := flag.String("root", "output", "track file output root")
	day := flag.String("day", "", "restrict checks to one YYYY-MM-DD directory")
	flag.Parse()

	if code := run(*root, *day); code != 0 {
		os.Exit(code)
	}
}

func run(root, day string) int {
	fmt.Println("=== Track File Integrity Validation ===")
	fmt.Println()

	files, layout, err := loadTree(root, day)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		layout,
		validateHeaders(files),
		validateRows(files),
		validateSites(files),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	days := map[string]bool{}
	rows := 0
	for _, f := range files {
		days[f.day] = true
		rows += dataRows(f)
	}
	fmt.Println()
	fmt.Printf("Records: %d day dirs, %d track files, %d data rows\n", len(days), len(files), rows)

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// trackFile is one loaded CSV with its position in the tree.
type trackFile struct {
	day  string
	site string
	rows [][]string
}

// loadTree walks root and reads every track file, collecting structural
// problems into the layout phase as it goes.
func loadTree(root, day string) ([]trackFile, *phase, error) {
	p := &phase{name: "Phase 1: Tree Layout"}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("read root: %w", err)
	}

	var files []trackFile
	matched := false
	for _, e := range entries {
		if !e.IsDir() {
			p.errorf("root entry %q is not a day directory", e.Name())
			continue
		}
		if _, err := time.Parse(dateLayout, e.Name()); err != nil {
			p.errorf("directory %q is not named YYYY-MM-DD", e.Name())
			continue
		}
		if day != "" && e.Name() != day {
			continue
		}
		matched = true

		dayFiles, err := loadDay(p, root, e.Name())
		if err != nil {
			return nil, nil, err
		}
		files = append(files, dayFiles...)
	}

	if day != "" && !matched {
		return nil, nil, fmt.Errorf("no directory for day %s under %s", day, root)
	}
	return files, p, nil
}

func loadDay(p *phase, root, day string) ([]trackFile, error) {
	dir := filepath.Join(root, day)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read day directory %s: %w", day, err)
	}

	var files []trackFile
	for _, e := range entries {
		if e.IsDir() {
			p.errorf("%s: unexpected subdirectory %q", day, e.Name())
			continue
		}
		site, ok := strings.CutSuffix(e.Name(), ".csv")
		if !ok {
			p.errorf("%s: unexpected file %q", day, e.Name())
			continue
		}
		rows, err := loadCSV(filepath.Join(dir, e.Name()))
		if err != nil {
			p.errorf("%s/%s: %v", day, e.Name(), err)
			continue
		}
		files = append(files, trackFile{day: day, site: site, rows: rows})
	}
	return files, nil
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row-shape problems are reported per line, not as read errors
	return r.ReadAll()
}

// ── Phase 2: Headers ──
// Every track file opens with exactly one copy of the standard header.

func validateHeaders(files []trackFile) *phase {
	p := &phase{name: "Phase 2: Headers"}
	want := strings.Join(trackfile.Header, ",")

	for _, f := range files {
		if len(f.rows) == 0 {
			p.errorf("%s/%s.csv: file is empty", f.day, f.site)
			continue
		}
		if got := strings.Join(f.rows[0], ","); got != want {
			p.errorf("%s/%s.csv: header is %q, want %q", f.day, f.site, got, want)
		}
		for i, row := range f.rows[1:] {
			if strings.Join(row, ",") == want {
				p.errorf("%s/%s.csv line %d: duplicated header row", f.day, f.site, i+2)
			}
		}
	}
	return p
}

// ── Phase 3: Row Integrity ──
// Each data row has five fields, a parseable timestamp whose date matches the
// directory, non-negative counts, and a consistent echo split.

func validateRows(files []trackFile) *phase {
	p := &phase{name: "Phase 3: Row Integrity"}

	for _, f := range files {
		for i, row := range f.rows[1:] {
			checkRow(p, f, i+2, row)
		}
	}
	return p
}

func checkRow(p *phase, f trackFile, line int, row []string) {
	if len(row) != len(trackfile.Header) {
		p.errorf("%s/%s.csv line %d: %d fields, want %d", f.day, f.site, line, len(row), len(trackfile.Header))
		return
	}

	ts, err := time.Parse(trackfile.TimestampLayout, row[0])
	if err != nil {
		p.errorf("%s/%s.csv line %d: bad timestamp %q", f.day, f.site, line, row[0])
	} else if got := ts.Format(dateLayout); got != f.day {
		p.errorf("%s/%s.csv line %d: timestamp date %s does not match directory", f.day, f.site, line, got)
	}

	nums := make([]int, 0, 4)
	for col := 1; col < len(trackfile.Header); col++ {
		n, err := strconv.Atoi(row[col])
		if err != nil || n < 0 {
			p.errorf("%s/%s.csv line %d: %s %q is not a non-negative integer",
				f.day, f.site, line, trackfile.Header[col], row[col])
			return
		}
		nums = append(nums, n)
	}

	total, iono, gnd := nums[1], nums[2], nums[3]
	if iono+gnd > total {
		p.errorf("%s/%s.csv line %d: ionospheric %d + ground %d exceeds total %d",
			f.day, f.site, line, iono, gnd, total)
	}
}

// ── Phase 4: Site Codes ──
// Unlisted sites get track files too, so they are reported, not failed.

func validateSites(files []trackFile) *phase {
	p := &phase{name: "Phase 4: Site Codes"}

	var unlisted int
	for _, f := range files {
		if f.site == "" {
			p.errorf("%s: track file with empty site name", f.day)
			continue
		}
		if !domain.KnownSite(f.site) {
			unlisted++
		}
	}
	if unlisted > 0 {
		fmt.Printf("  Note: %d track file(s) from sites outside the tracked-site table\n", unlisted)
	}
	return p
}

// ── Helpers ──

func dataRows(f trackFile) int {
	if len(f.rows) == 0 {
		return 0
	}
	return len(f.rows) - 1
}
