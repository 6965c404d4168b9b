// Package source wraps the tracker's search API and normalizes wire
// issues into the model types. Nothing above this boundary depends on the
// tracker's response shapes.
package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"testcycle-reporter/internal/config"
	"testcycle-reporter/internal/model"
)

// Client fetches test cycles and their associated cases.
type Client interface {
	FetchCycles(ctx context.Context, since time.Time) ([]model.TestCycle, error)
	FetchCases(ctx context.Context, cycleKey string) ([]model.TestCase, error)
}

const testCaseType = "Test Case"

// JiraSource is the go-jira backed Client. Single-attempt by default;
// wrap with NewRetryClient for retries.
type JiraSource struct {
	client   *jira.Client
	project  string
	pageSize int
	strategy config.Strategy
	log      *zap.Logger
}

// NewJiraSource builds a tracker client from the jira config section.
// Email+token selects basic auth, token alone a personal access token.
func NewJiraSource(cfg config.JiraConfig, log *zap.Logger) (*JiraSource, error) {
	var httpClient *http.Client
	if cfg.Email != "" {
		tr := &jira.BasicAuthTransport{Username: cfg.Email, Password: cfg.Token}
		httpClient = tr.Client()
	} else {
		tr := &jira.PATAuthTransport{Token: cfg.Token}
		httpClient = tr.Client()
	}
	httpClient.Timeout = cfg.Timeout()

	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("source: client for %s: %w", cfg.URL, err)
	}
	return &JiraSource{
		client:   client,
		project:  cfg.ProjectKey,
		pageSize: cfg.PageSize,
		strategy: cfg.Strategy,
		log:      log,
	}, nil
}

// FetchCycles returns all "Test Cycle" issues created on or after since,
// newest first, paginating until a short page.
func (s *JiraSource) FetchCycles(ctx context.Context, since time.Time) ([]model.TestCycle, error) {
	jql := fmt.Sprintf(
		`project = %s AND issuetype = "Test Cycle" AND created >= "%s" ORDER BY created DESC`,
		s.project, since.Format("2006-01-02"),
	)
	issues, err := s.searchAll(ctx, "fetch cycles", jql, []string{"summary", "created", "status"})
	if err != nil {
		return nil, err
	}

	cycles := make([]model.TestCycle, 0, len(issues))
	for _, is := range issues {
		cycles = append(cycles, normalizeCycle(is))
	}
	return cycles, nil
}

// FetchCases returns the test cases associated with a cycle, using the
// configured retrieval strategy.
func (s *JiraSource) FetchCases(ctx context.Context, cycleKey string) ([]model.TestCase, error) {
	switch s.strategy {
	case config.ByParent:
		jql := fmt.Sprintf(`parent = %s AND issuetype = "%s"`, cycleKey, testCaseType)
		return s.casesByJQL(ctx, cycleKey, jql)
	case config.ByQuery:
		jql := fmt.Sprintf(`issue in linkedIssues("%s") AND issuetype = "%s"`, cycleKey, testCaseType)
		return s.casesByJQL(ctx, cycleKey, jql)
	default:
		return s.casesByLinks(ctx, cycleKey)
	}
}

func (s *JiraSource) casesByJQL(ctx context.Context, cycleKey, jql string) ([]model.TestCase, error) {
	issues, err := s.searchAll(ctx, "fetch cases "+cycleKey, jql, []string{"status"})
	if err != nil {
		return nil, err
	}
	cases := make([]model.TestCase, 0, len(issues))
	for _, is := range issues {
		cases = append(cases, model.TestCase{Status: statusName(is.Fields)})
	}
	return cases, nil
}

// casesByLinks reads the cycle issue itself and walks its issue links,
// keeping outward-linked issues of type "Test Case". The link stubs carry
// the linked issue's status, so no per-case request is needed.
func (s *JiraSource) casesByLinks(ctx context.Context, cycleKey string) ([]model.TestCase, error) {
	issue, resp, err := s.client.Issue.GetWithContext(ctx, cycleKey, nil)
	if err != nil {
		return nil, s.unavailable("fetch cycle "+cycleKey, "issue/"+cycleKey, resp, err)
	}

	var cases []model.TestCase
	if issue.Fields == nil {
		return cases, nil
	}
	for _, link := range issue.Fields.IssueLinks {
		linked := link.OutwardIssue
		if linked == nil || linked.Fields == nil {
			continue
		}
		if linked.Fields.Type.Name != testCaseType {
			continue
		}
		cases = append(cases, model.TestCase{Status: statusName(linked.Fields)})
	}
	return cases, nil
}

// searchAll accumulates every page of a JQL search. Pagination stops at
// the first page shorter than the page size.
func (s *JiraSource) searchAll(ctx context.Context, op, jql string, fields []string) ([]jira.Issue, error) {
	pageSize := s.pageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var all []jira.Issue
	startAt := 0
	for {
		opts := &jira.SearchOptions{StartAt: startAt, MaxResults: pageSize, Fields: fields}
		page, resp, err := s.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, s.unavailable(op, "search", resp, err)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
		startAt += len(page)
	}
}

func (s *JiraSource) unavailable(op, endpoint string, resp *jira.Response, err error) error {
	e := &SourceUnavailableError{Op: op, Endpoint: endpoint, Err: err}
	if resp != nil && resp.Response != nil {
		e.StatusCode = resp.StatusCode
	}
	s.log.Warn("tracker call failed",
		zap.String("op", op),
		zap.String("endpoint", endpoint),
		zap.Int("status", e.StatusCode),
		zap.Error(err))
	return e
}

func normalizeCycle(is jira.Issue) model.TestCycle {
	c := model.TestCycle{Key: is.Key}
	if is.Fields != nil {
		c.Name = is.Fields.Summary
		c.CreatedAt = time.Time(is.Fields.Created)
		c.Status = statusName(is.Fields)
	}
	return c
}

func statusName(f *jira.IssueFields) string {
	if f == nil || f.Status == nil {
		return ""
	}
	return f.Status.Name
}
