package rangecache

import (
	"context"

	"github.com/unkn0wn-root/rangecache/future"
)

// Kind tags a Result.
type Kind uint8

const (
	// Ready: Values holds the answer.
	Ready Kind = iota
	// Pending: the answer is being loaded; await Future (or call Wait).
	Pending
	// Failed: Err holds the cached error.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Ready:
		return "ready"
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what FetchSuspense returns instead of blocking. A scheduler that
// suspends work can park on Future.Done() when Kind is Pending and retry the
// fetch afterwards; the retry is then served from the settled record.
type Result[V any] struct {
	Kind   Kind
	Values []V
	Err    error
	// Future is the record's future. Set for every kind; settled unless Pending.
	Future *future.Future[[]V]

	aborted <-chan struct{}
}

// Wait returns the outcome, blocking while Pending. It returns ErrAborted if
// the record is aborted and ctx.Err() if ctx ends first.
func (r Result[V]) Wait(ctx context.Context) ([]V, error) {
	switch r.Kind {
	case Ready:
		return r.Values, nil
	case Failed:
		return nil, r.Err
	}
	select {
	case <-r.Future.Done():
		v, err, _ := r.Future.Peek()
		return v, err
	case <-r.aborted:
		return nil, ErrAborted
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
