// Package output persists report artifacts. Every writer creates the
// destination directory, writes to a temporary sibling and renames on
// success, so a failed run never leaves a partial file behind.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SinkWriteError reports a filesystem failure while writing an artifact.
// Fatal for the run.
type SinkWriteError struct {
	Path string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink write %s: %v", e.Path, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }

// atomicWrite runs fn against a temp file next to path, then renames it
// into place.
func atomicWrite(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &SinkWriteError{Path: path, Err: err}
	}

	// Unique temp name so concurrent runs into the same directory cannot
	// clobber each other's in-flight file.
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return &SinkWriteError{Path: path, Err: err}
	}
	tmp := f.Name()

	if err := fn(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &SinkWriteError{Path: path, Err: err}
	}
	return nil
}
