// Package aggregate reduces a cycle's test cases to completion statistics.
package aggregate

import (
	"math"
	"strings"

	"testcycle-reporter/internal/model"
)

// StatusSet is the configured set of statuses that count as completed.
// Membership checks are case-insensitive.
type StatusSet map[string]struct{}

// NewStatusSet builds a StatusSet from the configured status names.
func NewStatusSet(names []string) StatusSet {
	s := make(StatusSet, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains reports whether status is a completed status.
func (s StatusSet) Contains(status string) bool {
	_, ok := s[strings.ToLower(status)]
	return ok
}

// Aggregate computes the completion statistic for one cycle. A cycle with
// no cases yields percentage 0 and an empty breakdown; that is a valid
// result, not an error. The breakdown keeps the original status casing,
// while the completion check is case-insensitive.
func Aggregate(cycle model.TestCycle, cases []model.TestCase, completed StatusSet) model.CompletionStat {
	stat := model.CompletionStat{
		CycleKey:        cycle.Key,
		CycleName:       cycle.Name,
		CreatedAt:       cycle.CreatedAt,
		CycleStatus:     cycle.Status,
		TotalCases:      len(cases),
		StatusBreakdown: map[string]int{},
	}
	if len(cases) == 0 {
		return stat
	}

	for _, c := range cases {
		stat.StatusBreakdown[c.Status]++
		if completed.Contains(c.Status) {
			stat.CompletedCases++
		}
	}
	stat.CompletionPercentage = round2(float64(stat.CompletedCases) / float64(stat.TotalCases) * 100)
	return stat
}

// AverageCompletion returns the mean completion percentage across stats,
// rounded to 2 decimal places. Empty input yields 0.
func AverageCompletion(stats []model.CompletionStat) float64 {
	if len(stats) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range stats {
		sum += s.CompletionPercentage
	}
	return round2(sum / float64(len(stats)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
