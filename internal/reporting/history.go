package reporting

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/req2test/internal/types"
)

// DefaultHistoryLimit is the number of runs History returns when no limit is given.
const DefaultHistoryLimit = 10

// HistoryEntry summarizes one JSON report.
type HistoryEntry struct {
	Timestamp string  `json:"timestamp"`
	Success   bool    `json:"success"`
	Total     int     `json:"total"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Skipped   int     `json:"skipped"`
	Duration  float64 `json:"duration"`
	File      string  `json:"file"`
}

// Trends aggregates statistics over every stored run.
type Trends struct {
	Runs            int           `json:"runs"`
	PassRate        float64       `json:"pass_rate"` // passed / total over all runs, 0..1
	AverageDuration float64       `json:"average_duration"`
	SuccessfulRuns  int           `json:"successful_runs"`
	Latest          *HistoryEntry `json:"latest,omitempty"`
	Delta           *TrendDelta   `json:"delta,omitempty"`
}

// TrendDelta compares the latest run with the one before it.
type TrendDelta struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Duration float64 `json:"duration"`
}

// Store reads JSON reports from a reports directory.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a Store over dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the reports directory.
func (s *Store) Dir() string {
	return s.dir
}

// reportFiles lists JSON report paths, newest first. Artifact names embed a sortable stamp.
func (s *Store) reportFiles() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "test_report_*.json"))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// Latest returns the most recent valid report.
func (s *Store) Latest() (*types.JSONReport, error) {
	paths, err := s.reportFiles()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		report, err := ReadJSON(p)
		if err != nil {
			s.logger.Warn("skipping unreadable report", zap.String("path", p), zap.Error(err))
			continue
		}
		return report, nil
	}
	return nil, ErrNoReports
}

// History returns up to limit runs, newest first. A non-positive limit means DefaultHistoryLimit.
func (s *Store) History(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.entries(limit)
}

func (s *Store) entries(limit int) ([]HistoryEntry, error) {
	paths, err := s.reportFiles()
	if err != nil {
		return nil, err
	}

	entries := []HistoryEntry{}
	for _, p := range paths {
		if limit > 0 && len(entries) == limit {
			break
		}
		report, err := ReadJSON(p)
		if err != nil {
			s.logger.Warn("skipping unreadable report", zap.String("path", p), zap.Error(err))
			continue
		}
		entries = append(entries, newHistoryEntry(p, report))
	}
	return entries, nil
}

func newHistoryEntry(path string, report *types.JSONReport) HistoryEntry {
	sum := report.Summary
	return HistoryEntry{
		Timestamp: report.Created,
		Success:   sum.Failed == 0 && report.ExitCode == types.ExitAllPassed,
		Total:     sum.Total,
		Passed:    sum.Passed,
		Failed:    sum.Failed,
		Skipped:   sum.Skipped,
		Duration:  sum.Duration,
		File:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
}

// Trends computes statistics over every stored run.
func (s *Store) Trends() (*Trends, error) {
	entries, err := s.entries(0)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoReports
	}

	t := &Trends{Runs: len(entries)}
	var total, passed int
	var duration float64
	for _, e := range entries {
		total += e.Total
		passed += e.Passed
		duration += e.Duration
		if e.Success {
			t.SuccessfulRuns++
		}
	}
	if total > 0 {
		t.PassRate = float64(passed) / float64(total)
	}
	t.AverageDuration = duration / float64(len(entries))

	latest := entries[0]
	t.Latest = &latest
	if len(entries) > 1 {
		prev := entries[1]
		t.Delta = &TrendDelta{
			Total:    latest.Total - prev.Total,
			Passed:   latest.Passed - prev.Passed,
			Failed:   latest.Failed - prev.Failed,
			Duration: latest.Duration - prev.Duration,
		}
	}
	return t, nil
}

// IsNoReports reports whether err means the store is empty.
func IsNoReports(err error) bool {
	return errors.Is(err, ErrNoReports)
}
