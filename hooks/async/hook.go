// Package asynchook moves hook delivery off the caller's goroutine. Several
// rangecache hooks run while a key's state is locked; wrap slow sinks here.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery: 100, // sample logs: ~every 100th hit
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := rangecache.NewOrdered(rangecache.Options[int64, Tick, string]{
//	    Namespace: "ticks",
//	    Load:      loadTicks,
//	    Point:     func(t Tick) int64 { return t.At },
//	    Key:       keys.String(),
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/rangecache"
)

type Hooks struct {
	inner rangecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ rangecache.Hooks = (*Hooks)(nil)

func New(inner rangecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and waits for queued ones to be delivered.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) LoadStarted(k, s string)  { h.try(func() { h.inner.LoadStarted(k, s) }) }
func (h *Hooks) LoadOrphaned(k, s string) { h.try(func() { h.inner.LoadOrphaned(k, s) }) }
func (h *Hooks) RangeHit(k, s string)     { h.try(func() { h.inner.RangeHit(k, s) }) }
func (h *Hooks) KeyEvicted(k string)      { h.try(func() { h.inner.KeyEvicted(k) }) }
func (h *Hooks) LoadFailed(k, s string, err error) {
	h.try(func() { h.inner.LoadFailed(k, s, err) })
}
func (h *Hooks) LoadsCoalesced(k, s string, n int) {
	h.try(func() { h.inner.LoadsCoalesced(k, s, n) })
}
func (h *Hooks) RecordsAborted(k string, n int) {
	h.try(func() { h.inner.RecordsAborted(k, n) })
}
