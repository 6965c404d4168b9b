package source

import "fmt"

// SourceUnavailableError reports a failed tracker call. StatusCode is 0
// when the request never produced a response (network error, timeout).
// The caller decides whether the failure aborts the run or skips a cycle.
type SourceUnavailableError struct {
	Op         string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *SourceUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source unavailable: %s %s: status %d: %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("source unavailable: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
