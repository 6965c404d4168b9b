package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"testcycle-reporter/internal/aggregate"
	"testcycle-reporter/internal/config"
	"testcycle-reporter/internal/history"
	"testcycle-reporter/internal/model"
	"testcycle-reporter/internal/output"
	"testcycle-reporter/internal/report"
	"testcycle-reporter/internal/source"
)

const (
	csvName  = "test_cycle_data.csv"
	htmlName = "test_cycle_report.html"
	jsonName = "test_cycle_stats.json"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (default: config.local.yaml then config.yaml)")
		outDir     = flag.String("out", "", "Output directory (overrides config)")
		days       = flag.Int("days", 0, "Lookback window in days (overrides config)")
		dryRun     = flag.Bool("dry-run", false, "Run with synthetic cycles, no tracker calls")
		quiet      = flag.Bool("quiet", false, "Suppress progress output")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !*dryRun {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = dryRunConfig()
	}
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}
	if *days > 0 {
		cfg.Report.DaysBack = *days
	}

	log := newLogger(cfg.Log.Level)

	code := run(cfg, log, *dryRun, *quiet)
	_ = log.Sync()
	os.Exit(code)
}

func run(cfg *config.Config, log *zap.Logger, dryRun, quiet bool) int {
	ctx := context.Background()

	var client source.Client
	if dryRun {
		client = syntheticSource{}
	} else {
		js, err := source.NewJiraSource(cfg.Jira, log)
		if err != nil {
			log.Error("tracker client setup failed", zap.Error(err))
			return 1
		}
		client = js
		if cfg.Jira.Retry.Enabled {
			client = source.NewRetryClient(client, cfg.Jira.Retry)
		}
	}

	since := time.Now().AddDate(0, 0, -cfg.Report.DaysBack)
	if !quiet {
		fmt.Printf("Retrieving test cycles for %s (last %d days)...\n", cfg.Jira.ProjectKey, cfg.Report.DaysBack)
	}
	cycles, err := client.FetchCycles(ctx, since)
	if err != nil {
		log.Error("listing test cycles failed", zap.Error(err))
		return 1
	}
	if len(cycles) == 0 {
		log.Warn("no test cycles found in window",
			zap.String("project", cfg.Jira.ProjectKey),
			zap.Int("days", cfg.Report.DaysBack))
		if !quiet {
			fmt.Println("No test cycles found in the specified date range.")
		}
		return 0
	}

	completed := aggregate.NewStatusSet(cfg.Report.CompletedStatuses)
	stats, err := collectStats(ctx, client, cycles, completed, cfg, log)
	if err != nil {
		log.Error("case fetch aborted run", zap.Error(err))
		return 1
	}
	if len(stats) == 0 {
		log.Warn("every cycle was skipped, nothing to report")
		return 0
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].CreatedAt.Before(stats[j].CreatedAt) })

	ds := report.BuildDataset(stats)
	chart := report.BuildChart(stats)

	dir := cfg.Report.OutputDir
	summary := model.RunSummary{
		RunID:             uuid.NewString(),
		TimestampUtc:      time.Now().UTC().Format(time.RFC3339),
		ProjectKey:        cfg.Jira.ProjectKey,
		Cycles:            len(stats),
		AverageCompletion: aggregate.AverageCompletion(stats),
	}

	if cfg.Report.CSV {
		if err := output.WriteCSV(ds, filepath.Join(dir, csvName)); err != nil {
			log.Error("csv export failed", zap.Error(err))
			return 1
		}
		summary.CSVFile = csvName
	}
	if err := output.WriteChartHTML(chart, filepath.Join(dir, htmlName)); err != nil {
		log.Error("html report failed", zap.Error(err))
		return 1
	}
	summary.HTMLFile = htmlName
	if err := output.WriteJSON(filepath.Join(dir, jsonName), stats); err != nil {
		log.Error("json snapshot failed", zap.Error(err))
		return 1
	}
	summary.JSONFile = jsonName

	if tr, err := history.Record(dir, summary); err != nil {
		log.Warn("history skipped", zap.Error(err))
	} else if !quiet {
		if tr.Label == "FIRST_RUN" {
			fmt.Println("Trend: FIRST RUN (no previous report found)")
		} else {
			sign := ""
			if tr.Delta > 0 {
				sign = "+"
			}
			fmt.Printf("Trend: %s (%s%.2f points, %s%.2f%%) Previous: %.2f%%, Current: %.2f%%\n",
				tr.Label, sign, tr.Delta, sign, tr.DeltaPercent, tr.Previous, tr.Current)
		}
	}

	if !quiet {
		fmt.Printf("Average completion percentage: %.2f%%\n", summary.AverageCompletion)
		if summary.CSVFile != "" {
			fmt.Println("CSV:", filepath.Join(dir, csvName))
		}
		fmt.Println("HTML Report:", filepath.Join(dir, htmlName))
		fmt.Println("JSON:", filepath.Join(dir, jsonName))
	}
	return 0
}

// collectStats fetches each cycle's cases with bounded concurrency and
// aggregates them. Aggregation is a pure reduction per cycle, so only the
// fetches run in parallel; output order is restored by the caller's sort.
func collectStats(ctx context.Context, client source.Client, cycles []model.TestCycle, completed aggregate.StatusSet, cfg *config.Config, log *zap.Logger) ([]model.CompletionStat, error) {
	stats := make([]model.CompletionStat, len(cycles))
	kept := make([]bool, len(cycles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Report.FetchConcurrency)
	for i, cyc := range cycles {
		i, cyc := i, cyc
		g.Go(func() error {
			cases, err := client.FetchCases(gctx, cyc.Key)
			if err != nil {
				if cfg.Report.OnFetchError == config.OnErrorAbort {
					return err
				}
				log.Warn("skipping cycle, case fetch failed",
					zap.String("cycle", cyc.Key),
					zap.Error(err))
				return nil
			}
			stats[i] = aggregate.Aggregate(cyc, cases, completed)
			kept[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.CompletionStat, 0, len(cycles))
	for i, ok := range kept {
		if ok {
			out = append(out, stats[i])
		}
	}
	return out, nil
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), lvl)
	return zap.New(core)
}

// dryRunConfig lets -dry-run work without a config file or credentials.
func dryRunConfig() *config.Config {
	return &config.Config{
		Jira: config.JiraConfig{
			URL:        "https://dry-run.invalid",
			Token:      "dry-run",
			ProjectKey: "DEMO",
			Strategy:   config.ByLink,
		},
		Report: config.ReportConfig{
			DaysBack:          7,
			OutputDir:         "reports",
			CSV:               true,
			CompletedStatuses: []string{"done", "passed"},
			OnFetchError:      config.OnErrorSkip,
			FetchConcurrency:  4,
		},
		Log: config.LogConfig{Level: "info"},
	}
}

// syntheticSource backs -dry-run with fixed cycles so the full pipeline
// can be exercised without a tracker.
type syntheticSource struct{}

func (syntheticSource) FetchCycles(ctx context.Context, since time.Time) ([]model.TestCycle, error) {
	now := time.Now()
	return []model.TestCycle{
		{Key: "DEMO-1", Name: "Sprint 11 Regression", CreatedAt: now.AddDate(0, 0, -5), Status: "Done"},
		{Key: "DEMO-2", Name: "Sprint 12 Regression", CreatedAt: now.AddDate(0, 0, -1), Status: "In Progress"},
	}, nil
}

func (syntheticSource) FetchCases(ctx context.Context, cycleKey string) ([]model.TestCase, error) {
	if cycleKey == "DEMO-1" {
		return []model.TestCase{{Status: "Done"}, {Status: "Passed"}, {Status: "Done"}}, nil
	}
	return []model.TestCase{{Status: "Done"}, {Status: "Failed"}, {Status: "Passed"}, {Status: "Done"}}, nil
}
