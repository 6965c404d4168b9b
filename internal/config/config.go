package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy selects how test cases are associated with a cycle.
type Strategy string

const (
	ByLink   Strategy = "by-link"   // traverse the cycle's issue links
	ByParent Strategy = "by-parent" // query cases with parent = cycle
	ByQuery  Strategy = "by-query"  // query cases via linkedIssues()
)

// Fetch-error policies for per-cycle case fetches.
const (
	OnErrorSkip  = "skip"  // log a warning, exclude the cycle from the report
	OnErrorAbort = "abort" // fail the whole run
)

// ConfigError reports a missing or invalid required setting. It is always
// raised before any network call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Config is the single explicit configuration for a run, constructed once
// at startup and passed to every component. No package reads the
// environment after Load returns.
type Config struct {
	Jira   JiraConfig   `yaml:"jira"`
	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

type JiraConfig struct {
	URL            string      `yaml:"url"`
	Email          string      `yaml:"email"` // set for basic auth; empty means PAT/bearer token auth
	Token          string      `yaml:"token"`
	ProjectKey     string      `yaml:"project_key"`
	PageSize       int         `yaml:"page_size"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	Strategy       Strategy    `yaml:"strategy"`
	Retry          RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxAttempts int  `yaml:"max_attempts"`
	BackoffMS   int  `yaml:"backoff_ms"`
}

type ReportConfig struct {
	DaysBack          int      `yaml:"days_back"`
	OutputDir         string   `yaml:"output_dir"`
	CSV               bool     `yaml:"csv"`
	CompletedStatuses []string `yaml:"completed_statuses"`
	OnFetchError      string   `yaml:"on_fetch_error"`
	FetchConcurrency  int      `yaml:"fetch_concurrency"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Timeout returns the HTTP client timeout for tracker calls.
func (j JiraConfig) Timeout() time.Duration {
	return time.Duration(j.TimeoutSeconds) * time.Second
}

// Backoff returns the wait between retry attempts.
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMS) * time.Millisecond
}

func defaults() Config {
	return Config{
		Jira: JiraConfig{
			PageSize:       50,
			TimeoutSeconds: 30,
			Strategy:       ByLink,
			Retry:          RetryConfig{MaxAttempts: 5, BackoffMS: 300},
		},
		Report: ReportConfig{
			DaysBack:         7,
			OutputDir:        "reports",
			CSV:              true,
			OnFetchError:     OnErrorSkip,
			FetchConcurrency: 4,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. When path is empty it tries config.local.yaml then
// config.yaml; a run can also be configured purely from the environment,
// so a missing default file is not an error. An explicit path that does
// not exist is.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = []string{"config.local.yaml", "config.yaml"}
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if explicit {
				return nil, &ConfigError{Field: "file", Reason: fmt.Sprintf("read %s: %v", p, err)}
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, &ConfigError{Field: "file", Reason: fmt.Sprintf("parse %s: %v", p, err)}
		}
		break
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JIRA_URL"); v != "" {
		c.Jira.URL = v
	}
	if v := os.Getenv("JIRA_EMAIL"); v != "" {
		c.Jira.Email = v
	}
	if v := os.Getenv("JIRA_TOKEN"); v != "" {
		c.Jira.Token = v
	}
	if v := os.Getenv("JIRA_PROJECT_KEY"); v != "" {
		c.Jira.ProjectKey = v
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Jira.URL) == "" {
		return &ConfigError{Field: "jira.url", Reason: "required (or JIRA_URL)"}
	}
	if strings.TrimSpace(c.Jira.Token) == "" {
		return &ConfigError{Field: "jira.token", Reason: "required (or JIRA_TOKEN)"}
	}
	if strings.TrimSpace(c.Jira.ProjectKey) == "" {
		return &ConfigError{Field: "jira.project_key", Reason: "required (or JIRA_PROJECT_KEY)"}
	}
	switch c.Jira.Strategy {
	case ByLink, ByParent, ByQuery:
	default:
		return &ConfigError{Field: "jira.strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Jira.Strategy)}
	}
	// The source variants disagree on which statuses count as complete, so
	// there is no safe default. Make the operator state the policy.
	if len(c.Report.CompletedStatuses) == 0 {
		return &ConfigError{Field: "report.completed_statuses", Reason: "required, no default"}
	}
	switch c.Report.OnFetchError {
	case OnErrorSkip, OnErrorAbort:
	default:
		return &ConfigError{Field: "report.on_fetch_error", Reason: fmt.Sprintf("must be %q or %q", OnErrorSkip, OnErrorAbort)}
	}

	// Out-of-range numerics fall back to defaults rather than failing the run.
	def := defaults()
	if c.Jira.PageSize <= 0 {
		c.Jira.PageSize = def.Jira.PageSize
	}
	if c.Jira.TimeoutSeconds <= 0 {
		c.Jira.TimeoutSeconds = def.Jira.TimeoutSeconds
	}
	if c.Report.DaysBack <= 0 {
		c.Report.DaysBack = def.Report.DaysBack
	}
	if c.Report.FetchConcurrency <= 0 {
		c.Report.FetchConcurrency = def.Report.FetchConcurrency
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = def.Report.OutputDir
	}
	if c.Jira.Retry.MaxAttempts <= 0 {
		c.Jira.Retry.MaxAttempts = def.Jira.Retry.MaxAttempts
	}
	if c.Jira.Retry.BackoffMS <= 0 {
		c.Jira.Retry.BackoffMS = def.Jira.Retry.BackoffMS
	}
	return nil
}
