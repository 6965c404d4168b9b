package aggregate

import (
	"reflect"
	"testing"
	"time"

	"testcycle-reporter/internal/model"
)

func cycle(name string) model.TestCycle {
	return model.TestCycle{
		Key:       "QA-1",
		Name:      name,
		CreatedAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC),
		Status:    "In Progress",
	}
}

func cases(statuses ...string) []model.TestCase {
	out := make([]model.TestCase, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, model.TestCase{Status: s})
	}
	return out
}

func TestAggregateSprint12(t *testing.T) {
	completed := NewStatusSet([]string{"done", "passed"})
	stat := Aggregate(cycle("Sprint 12"), cases("Done", "Failed", "Passed", "Done"), completed)

	if stat.TotalCases != 4 {
		t.Errorf("TotalCases = %d, want 4", stat.TotalCases)
	}
	if stat.CompletedCases != 3 {
		t.Errorf("CompletedCases = %d, want 3", stat.CompletedCases)
	}
	if stat.CompletionPercentage != 75.00 {
		t.Errorf("CompletionPercentage = %v, want 75.00", stat.CompletionPercentage)
	}
	want := map[string]int{"Done": 2, "Failed": 1, "Passed": 1}
	if !reflect.DeepEqual(stat.StatusBreakdown, want) {
		t.Errorf("StatusBreakdown = %v, want %v", stat.StatusBreakdown, want)
	}
}

func TestAggregateNoCases(t *testing.T) {
	stat := Aggregate(cycle("Empty Cycle"), nil, NewStatusSet([]string{"done"}))

	if stat.TotalCases != 0 || stat.CompletedCases != 0 {
		t.Errorf("counts = %d/%d, want 0/0", stat.CompletedCases, stat.TotalCases)
	}
	if stat.CompletionPercentage != 0 {
		t.Errorf("CompletionPercentage = %v, want 0", stat.CompletionPercentage)
	}
	if len(stat.StatusBreakdown) != 0 {
		t.Errorf("StatusBreakdown = %v, want empty", stat.StatusBreakdown)
	}
}

func TestAggregateInvariants(t *testing.T) {
	completed := NewStatusSet([]string{"done", "closed", "passed"})
	inputs := [][]model.TestCase{
		cases("Done"),
		cases("Open", "Open", "Open"),
		cases("Done", "Closed", "Passed", "Blocked", "In Progress"),
		cases("passed", "PASSED", "Passed"),
	}
	for _, cs := range inputs {
		stat := Aggregate(cycle("Any"), cs, completed)
		if stat.CompletedCases > stat.TotalCases {
			t.Errorf("CompletedCases %d > TotalCases %d for %v", stat.CompletedCases, stat.TotalCases, cs)
		}
		if stat.CompletionPercentage < 0 || stat.CompletionPercentage > 100 {
			t.Errorf("CompletionPercentage %v out of [0,100] for %v", stat.CompletionPercentage, cs)
		}
		sum := 0
		for _, n := range stat.StatusBreakdown {
			sum += n
		}
		if sum != stat.TotalCases {
			t.Errorf("breakdown sum %d != TotalCases %d for %v", sum, stat.TotalCases, cs)
		}
	}
}

func TestAggregateIdempotent(t *testing.T) {
	completed := NewStatusSet([]string{"done", "passed"})
	cs := cases("Done", "Failed", "Passed", "Open")
	first := Aggregate(cycle("Repeat"), cs, completed)
	second := Aggregate(cycle("Repeat"), cs, completed)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregation not idempotent: %v vs %v", first, second)
	}
}

func TestCompletionCheckIsCaseInsensitive(t *testing.T) {
	completed := NewStatusSet([]string{"Done"})
	stat := Aggregate(cycle("Mixed Case"), cases("DONE", "done", "DoNe"), completed)
	if stat.CompletedCases != 3 {
		t.Errorf("CompletedCases = %d, want 3", stat.CompletedCases)
	}
	// The breakdown keeps original casing.
	if stat.StatusBreakdown["DONE"] != 1 || stat.StatusBreakdown["done"] != 1 || stat.StatusBreakdown["DoNe"] != 1 {
		t.Errorf("StatusBreakdown = %v, want original casings preserved", stat.StatusBreakdown)
	}
}

func TestPercentageRounding(t *testing.T) {
	// 1/3 completed → 33.33 after rounding.
	stat := Aggregate(cycle("Thirds"), cases("Done", "Open", "Open"), NewStatusSet([]string{"done"}))
	if stat.CompletionPercentage != 33.33 {
		t.Errorf("CompletionPercentage = %v, want 33.33", stat.CompletionPercentage)
	}
}

func TestAverageCompletion(t *testing.T) {
	if got := AverageCompletion(nil); got != 0 {
		t.Errorf("AverageCompletion(nil) = %v, want 0", got)
	}
	stats := []model.CompletionStat{
		{CompletionPercentage: 75},
		{CompletionPercentage: 25},
	}
	if got := AverageCompletion(stats); got != 50 {
		t.Errorf("AverageCompletion = %v, want 50", got)
	}
}
