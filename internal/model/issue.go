package model

import "time"

// TestCycle is a tracker issue representing a bounded testing effort.
// Immutable once fetched; the source client normalizes wire issues into
// this shape so nothing above it depends on the tracker's representation.
type TestCycle struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Status    string    `json:"status"`
}

// TestCase is a tracker issue representing a single test. Only the status
// is consumed by the aggregator.
type TestCase struct {
	Status string `json:"status"`
}

// CompletionStat is the per-cycle aggregation result. Derived fresh each
// run; the report files are the only durable artifacts.
type CompletionStat struct {
	CycleKey             string         `json:"cycleKey"`
	CycleName            string         `json:"cycleName"`
	CreatedAt            time.Time      `json:"createdAt"`
	CycleStatus          string         `json:"cycleStatus"`
	TotalCases           int            `json:"totalCases"`
	CompletedCases       int            `json:"completedCases"`
	CompletionPercentage float64        `json:"completionPercentage"`
	StatusBreakdown      map[string]int `json:"statusBreakdown"`
}
