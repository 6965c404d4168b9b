package source

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"testcycle-reporter/internal/config"
	"testcycle-reporter/internal/model"
)

// RetryClient wraps a Client with constant-backoff retries. It is the
// explicit opt-in retry layer; the underlying client stays single-attempt.
type RetryClient struct {
	inner       Client
	maxAttempts uint64
	wait        time.Duration
}

// NewRetryClient builds a retrying wrapper from the retry config section.
func NewRetryClient(inner Client, cfg config.RetryConfig) *RetryClient {
	return &RetryClient{
		inner:       inner,
		maxAttempts: uint64(cfg.MaxAttempts),
		wait:        cfg.Backoff(),
	}
}

func (r *RetryClient) FetchCycles(ctx context.Context, since time.Time) ([]model.TestCycle, error) {
	var cycles []model.TestCycle
	err := r.retry(ctx, func() error {
		var err error
		cycles, err = r.inner.FetchCycles(ctx, since)
		return err
	})
	return cycles, err
}

func (r *RetryClient) FetchCases(ctx context.Context, cycleKey string) ([]model.TestCase, error) {
	var cases []model.TestCase
	err := r.retry(ctx, func() error {
		var err error
		cases, err = r.inner.FetchCases(ctx, cycleKey)
		return err
	})
	return cases, err
}

func (r *RetryClient) retry(ctx context.Context, op func() error) error {
	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	boff := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.wait), r.maxAttempts),
		ctx,
	)
	return backoff.Retry(wrapped, boff)
}

// retryable treats network-level failures and 5xx responses as worth
// retrying; 4xx responses are permanent.
func retryable(err error) bool {
	var se *SourceUnavailableError
	if errors.As(err, &se) {
		if se.StatusCode == 0 {
			return true
		}
		return se.StatusCode >= http.StatusInternalServerError
	}
	return false
}
