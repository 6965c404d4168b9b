// Package history keeps a per-run index of report summaries so trend
// labels survive across invocations. History failures are never fatal to
// a run; callers log and move on.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"testcycle-reporter/internal/model"
	"testcycle-reporter/internal/trend"
)

const maxEntries = 200

type Index struct {
	Entries []model.RunSummary `json:"entries"`
}

type Trend struct {
	Previous     float64
	Current      float64
	Delta        float64 // percentage points
	DeltaPercent float64 // relative to the previous run
	Label        string  // IMPROVING / DECLINING / SAME / FIRST_RUN
}

// Record copies the run's artifacts into outDir/history with timestamped
// names, appends the summary to the index and returns the trend of
// average completion against the previous run.
func Record(outDir string, s model.RunSummary) (Trend, error) {
	historyDir := filepath.Join(outDir, "history")
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return Trend{}, err
	}

	indexPath := filepath.Join(historyDir, "index.json")
	var idx Index
	if raw, err := os.ReadFile(indexPath); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &idx)
	}

	prev := -1.0
	if len(idx.Entries) > 0 {
		prev = idx.Entries[len(idx.Entries)-1].AverageCompletion
	}

	ts := time.Now().UTC().Format("20060102-150405")
	s.CSVFile = archive(outDir, historyDir, s.CSVFile, fmt.Sprintf("test-cycle-report-%s.csv", ts))
	s.HTMLFile = archive(outDir, historyDir, s.HTMLFile, fmt.Sprintf("test-cycle-report-%s.html", ts))
	s.JSONFile = archive(outDir, historyDir, s.JSONFile, fmt.Sprintf("test-cycle-stats-%s.json", ts))

	idx.Entries = append(idx.Entries, s)
	if len(idx.Entries) > maxEntries {
		idx.Entries = idx.Entries[len(idx.Entries)-maxEntries:]
	}

	raw, _ := json.MarshalIndent(idx, "", "  ")
	if err := os.WriteFile(indexPath, raw, 0o644); err != nil {
		return Trend{}, err
	}

	tr := Trend{Previous: prev, Current: s.AverageCompletion, Label: "FIRST_RUN"}
	if prev >= 0 {
		t := trend.Compute(prev, s.AverageCompletion)
		tr.Delta = t.Delta
		tr.DeltaPercent = t.DeltaPercent
		switch t.Direction {
		case trend.Up:
			tr.Label = "IMPROVING"
		case trend.Down:
			tr.Label = "DECLINING"
		default:
			tr.Label = "SAME"
		}
	}
	return tr, nil
}

// archive copies an artifact into the history dir, returning the
// history-relative path for the index entry. Missing artifacts (e.g. CSV
// disabled) yield an empty entry.
func archive(outDir, historyDir, name, archived string) string {
	if name == "" {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(outDir, name))
	if err != nil {
		return ""
	}
	if err := os.WriteFile(filepath.Join(historyDir, archived), raw, 0o644); err != nil {
		return ""
	}
	return filepath.ToSlash(filepath.Join("history", archived))
}
