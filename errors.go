package rangecache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when start is after end under the comparator.
	ErrInvalidRange = errors.New("rangecache: invalid range: start after end")
	// ErrAborted is the cancellation cause of aborted records, and what waiters
	// of an aborted record receive from Result.Wait and Fetch.
	ErrAborted = errors.New("rangecache: request aborted")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("rangecache: cache closed")
)

// LoadError wraps an error returned by the load function for one sub-range.
// The same *LoadError value is stored on every record that depended on the
// load, so repeated fetches return an identical error until the key is evicted.
type LoadError struct {
	Key  string
	Span string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rangecache: load %s for key %q: %v", e.Span, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InvariantError reports a record found in an unexpected state. It signals a
// bug in the orchestrator and is raised with panic, never returned.
type InvariantError struct {
	Span string
	Want Status
	Got  Status
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("rangecache: record %s is %s, want %s", e.Span, e.Got, e.Want)
}
