// Package report shapes aggregated stats into the tabular dataset and the
// declarative chart handed to the sink writers.
package report

import (
	"fmt"
	"sort"
	"strings"

	"testcycle-reporter/internal/model"
)

// BuildDataset returns one row per stat, sorted by created date ascending.
// Empty input yields an empty dataset, which callers treat as "nothing to
// write" rather than an error.
func BuildDataset(stats []model.CompletionStat) model.Dataset {
	rows := make([]model.Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, model.Row{
			Cycle:      s.CycleName,
			Date:       s.CreatedAt,
			Status:     s.CycleStatus,
			Total:      s.TotalCases,
			Completed:  s.CompletedCases,
			Percentage: s.CompletionPercentage,
			Breakdown:  BreakdownText(s.StatusBreakdown),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return model.Dataset{Rows: rows}
}

// BreakdownText renders a status breakdown as "Status=N" pairs joined by
// ";", sorted by status name so output is stable across runs.
func BreakdownText(breakdown map[string]int) string {
	if len(breakdown) == 0 {
		return ""
	}
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, breakdown[name]))
	}
	return strings.Join(parts, ";")
}

// BuildChart groups stats into one percentage-over-time series per
// distinct cycle name, so repeated observations of the same cycle across
// runs merge into a single trend line. A secondary bar layer carries
// total vs completed counts aggregated by calendar date.
func BuildChart(stats []model.CompletionStat) model.ChartSpec {
	spec := model.ChartSpec{
		Title:      "Test Cycle Completion Progress",
		XAxisTitle: "Date",
		YAxisTitle: "Completion Percentage (%)",
		YRange:     [2]float64{0, 100},
	}
	if len(stats) == 0 {
		return spec
	}

	byName := map[string]int{}
	for _, s := range stats {
		idx, ok := byName[s.CycleName]
		if !ok {
			idx = len(spec.Series)
			byName[s.CycleName] = idx
			spec.Series = append(spec.Series, model.Series{Name: s.CycleName})
		}
		spec.Series[idx].Points = append(spec.Series[idx].Points, model.Point{
			Date:  s.CreatedAt,
			Value: s.CompletionPercentage,
		})
	}
	for i := range spec.Series {
		pts := spec.Series[i].Points
		sort.SliceStable(pts, func(a, b int) bool { return pts[a].Date.Before(pts[b].Date) })
	}
	sort.SliceStable(spec.Series, func(i, j int) bool { return spec.Series[i].Name < spec.Series[j].Name })

	byDate := map[string]*model.BarPoint{}
	for _, s := range stats {
		day := s.CreatedAt.Format("2006-01-02")
		bp, ok := byDate[day]
		if !ok {
			bp = &model.BarPoint{Date: day}
			byDate[day] = bp
		}
		bp.Total += s.TotalCases
		bp.Completed += s.CompletedCases
	}
	days := make([]string, 0, len(byDate))
	for day := range byDate {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		spec.Bars = append(spec.Bars, *byDate[day])
	}

	return spec
}
