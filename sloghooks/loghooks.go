package sloghooks

import (
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/rangecache"
	"github.com/unkn0wn-root/rangecache/internal/util"
)

type Options struct {
	// Sampling for the high-volume events; 0/1 = log all.
	HitEvery       uint64
	CoalescedEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr       atomic.Uint64
	coalescedCtr atomic.Uint64
}

var _ rangecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return util.HashKey("", []byte(k))[:16]
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) LoadStarted(key, span string) {
	if h.l == nil {
		return
	}
	h.l.Debug("rangecache.load_started",
		"key", h.redact(key),
		"span", span)
}

func (h *Hooks) LoadFailed(key, span string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("rangecache.load_failed",
		"key", h.redact(key),
		"span", span,
		"err", err)
}

func (h *Hooks) LoadOrphaned(key, span string) {
	if h.l == nil {
		return
	}
	h.l.Info("rangecache.load_orphaned",
		"key", h.redact(key),
		"span", span)
}

func (h *Hooks) RangeHit(key, span string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("rangecache.range_hit",
		"key", h.redact(key),
		"span", span)
}

func (h *Hooks) LoadsCoalesced(key, span string, n int) {
	if h.l == nil || !sample(h.opts.CoalescedEvery, &h.coalescedCtr) {
		return
	}
	h.l.Debug("rangecache.loads_coalesced",
		"key", h.redact(key),
		"span", span,
		"loads", n)
}

func (h *Hooks) RecordsAborted(key string, n int) {
	if h.l == nil {
		return
	}
	h.l.Info("rangecache.records_aborted",
		"key", h.redact(key),
		"count", n)
}

func (h *Hooks) KeyEvicted(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("rangecache.key_evicted",
		"key", h.redact(key))
}
