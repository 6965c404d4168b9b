package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"testcycle-reporter/internal/aggregate"
	"testcycle-reporter/internal/config"
	"testcycle-reporter/internal/model"
	"testcycle-reporter/internal/source"
)

// fakeSource serves canned cases per cycle key and fails the keys listed
// in fail.
type fakeSource struct {
	cases map[string][]model.TestCase
	fail  map[string]bool
}

var _ source.Client = (*fakeSource)(nil)

func (f *fakeSource) FetchCycles(ctx context.Context, since time.Time) ([]model.TestCycle, error) {
	return nil, nil
}

func (f *fakeSource) FetchCases(ctx context.Context, cycleKey string) ([]model.TestCase, error) {
	if f.fail[cycleKey] {
		return nil, &source.SourceUnavailableError{
			Op:         "fetch cases " + cycleKey,
			Endpoint:   "search",
			StatusCode: 500,
			Err:        errors.New("upstream down"),
		}
	}
	return f.cases[cycleKey], nil
}

func testConfig(onFetchError string, concurrency int) *config.Config {
	cfg := dryRunConfig()
	cfg.Report.OnFetchError = onFetchError
	cfg.Report.FetchConcurrency = concurrency
	return cfg
}

func testCycles(n int) []model.TestCycle {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	cycles := make([]model.TestCycle, 0, n)
	for i := 0; i < n; i++ {
		cycles = append(cycles, model.TestCycle{
			Key:       fmt.Sprintf("QA-%d", i+1),
			Name:      fmt.Sprintf("Sprint %d", i+1),
			CreatedAt: base.AddDate(0, 0, i),
			Status:    "In Progress",
		})
	}
	return cycles
}

func TestCollectStatsSkipExcludesFailedCycle(t *testing.T) {
	client := &fakeSource{
		cases: map[string][]model.TestCase{
			"QA-1": {{Status: "Done"}, {Status: "Failed"}},
			"QA-3": {{Status: "Passed"}},
		},
		fail: map[string]bool{"QA-2": true},
	}
	completed := aggregate.NewStatusSet([]string{"done", "passed"})

	stats, err := collectStats(context.Background(), client, testCycles(3), completed,
		testConfig(config.OnErrorSkip, 2), zaptest.NewLogger(t))
	require.NoError(t, err)

	// The failed cycle is excluded, the rest survive with their stats.
	require.Len(t, stats, 2)
	assert.Equal(t, "QA-1", stats[0].CycleKey)
	assert.Equal(t, 50.0, stats[0].CompletionPercentage)
	assert.Equal(t, "QA-3", stats[1].CycleKey)
	assert.Equal(t, 100.0, stats[1].CompletionPercentage)
}

func TestCollectStatsAbortFailsRun(t *testing.T) {
	client := &fakeSource{
		cases: map[string][]model.TestCase{"QA-1": {{Status: "Done"}}},
		fail:  map[string]bool{"QA-2": true},
	}
	completed := aggregate.NewStatusSet([]string{"done"})

	_, err := collectStats(context.Background(), client, testCycles(3), completed,
		testConfig(config.OnErrorAbort, 2), zaptest.NewLogger(t))
	require.Error(t, err)

	var se *source.SourceUnavailableError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.StatusCode)
}

func TestCollectStatsDeterministicUnderConcurrency(t *testing.T) {
	cycles := testCycles(12)
	cases := map[string][]model.TestCase{}
	for i, cyc := range cycles {
		cs := make([]model.TestCase, 0, i+1)
		for j := 0; j <= i; j++ {
			status := "Open"
			if j%2 == 0 {
				status = "Done"
			}
			cs = append(cs, model.TestCase{Status: status})
		}
		cases[cyc.Key] = cs
	}
	client := &fakeSource{cases: cases}
	completed := aggregate.NewStatusSet([]string{"done"})
	cfg := testConfig(config.OnErrorSkip, 5)

	first, err := collectStats(context.Background(), client, cycles, completed, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	second, err := collectStats(context.Background(), client, cycles, completed, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	// Fetches race, results do not: input order is preserved and repeat
	// runs agree.
	require.Len(t, first, len(cycles))
	for i := range first {
		assert.Equal(t, cycles[i].Key, first[i].CycleKey)
		assert.Equal(t, i+1, first[i].TotalCases)
	}
	assert.Equal(t, first, second)
}
