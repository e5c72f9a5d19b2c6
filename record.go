package rangecache

import (
	"context"

	"github.com/unkn0wn-root/rangecache/future"
)

// Status is the state of a record. A record leaves StatusPending at most once.
type Status uint8

const (
	StatusPending Status = iota
	StatusResolved
	StatusRejected
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusRejected:
		return "rejected"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// record is the cache entry for one exact requested interval of one key.
// The payload that is meaningful depends on status:
//
//	pending  -> signal, cancel, fut
//	resolved -> values (fut fulfilled with the same slice)
//	rejected -> err (fut failed with the same error)
//	aborted  -> none; fut never settles
//
// signal is also the context of every load the record issued, so it is only
// ever cancelled by abort: a rejected record may still have sibling loads in
// flight that other records wait on.
//
// All fields are guarded by the owning rangeMeta's mutex.
type record[V any] struct {
	span   string
	status Status

	values []V
	err    error

	signal context.Context
	cancel context.CancelCauseFunc
	fut    *future.Future[[]V]
}

func newRecord[V any](span string) *record[V] {
	signal, cancel := context.WithCancelCause(context.Background())
	return &record[V]{
		span:   span,
		status: StatusPending,
		signal: signal,
		cancel: cancel,
		fut:    future.New[[]V](),
	}
}

func (r *record[V]) mustBePending() {
	if r.status != StatusPending {
		panic(&InvariantError{Span: r.span, Want: StatusPending, Got: r.status})
	}
}

func (r *record[V]) resolve(values []V) {
	r.mustBePending()
	r.status = StatusResolved
	r.values = values
	r.fut.Resolve(values)
}

func (r *record[V]) reject(err error) {
	r.mustBePending()
	r.status = StatusRejected
	r.err = err
	r.fut.Reject(err)
}

func (r *record[V]) abort() {
	r.mustBePending()
	r.status = StatusAborted
	r.cancel(ErrAborted)
}

func (r *record[V]) result() Result[V] {
	switch r.status {
	case StatusResolved:
		return Result[V]{Kind: Ready, Values: r.values, Future: r.fut}
	case StatusRejected:
		return Result[V]{Kind: Failed, Err: r.err, Future: r.fut}
	case StatusPending, StatusAborted:
		return Result[V]{Kind: Pending, Future: r.fut, aborted: r.signal.Done()}
	default:
		panic(&InvariantError{Span: r.span, Want: StatusPending, Got: r.status})
	}
}
