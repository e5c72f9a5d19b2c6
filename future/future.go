// Package future provides a resolvable, once-only future: one side settles it
// with a value or an error, any number of goroutines wait for the outcome.
package future

import (
	"context"
	"sync"
)

// Future is settled at most once. The zero value is not usable; construct with New.
type Future[T any] struct {
	done chan struct{}
	once sync.Once

	val T
	err error
}

// New returns an unsettled future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future already fulfilled with v.
func Resolved[T any](v T) *Future[T] {
	f := New[T]()
	f.Resolve(v)
	return f
}

// Rejected returns a future already failed with err.
func Rejected[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve fulfils the future with v. Reports false if it was already settled.
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject fails the future with err. Reports false if it was already settled.
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	ok := false
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
		ok = true
	})
	return ok
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Settled reports whether the future has a value or an error.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Peek returns the outcome without blocking; ok is false while unsettled.
func (f *Future[T]) Peek() (v T, err error, ok bool) {
	if !f.Settled() {
		return v, nil, false
	}
	return f.val, f.err, true
}

// Wait blocks until the future settles or ctx ends.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
