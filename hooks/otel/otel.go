// Package otelhooks counts rangecache events with OpenTelemetry metrics.
// Keys are not recorded as attributes; they are unbounded.
package otelhooks

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/unkn0wn-root/rangecache"
)

type Hooks struct {
	opt metric.AddOption

	started   metric.Int64Counter
	failed    metric.Int64Counter
	orphaned  metric.Int64Counter
	hits      metric.Int64Counter
	coalesced metric.Int64Counter
	aborted   metric.Int64Counter
	evictions metric.Int64Counter
}

var _ rangecache.Hooks = (*Hooks)(nil)

// New registers the counters on meter. namespace, if set, is attached to
// every measurement as rangecache.namespace.
func New(meter metric.Meter, namespace string) (*Hooks, error) {
	h := &Hooks{}
	var attrs []attribute.KeyValue
	if namespace != "" {
		attrs = append(attrs, attribute.String("rangecache.namespace", namespace))
	}
	h.opt = metric.WithAttributes(attrs...)

	for _, c := range []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&h.started, "rangecache.loads.started", "Sub-range loads issued to the source", "{load}"},
		{&h.failed, "rangecache.loads.failed", "Sub-range loads that returned an error", "{load}"},
		{&h.orphaned, "rangecache.loads.orphaned", "Loads that settled after their key was evicted", "{load}"},
		{&h.hits, "rangecache.hits", "Requests answered from loaded ranges", "{request}"},
		{&h.coalesced, "rangecache.coalesced", "In-flight loads joined instead of issued", "{load}"},
		{&h.aborted, "rangecache.aborted", "Pending records cancelled by abort", "{request}"},
		{&h.evictions, "rangecache.evictions", "Key states dropped", "{key}"},
	} {
		ctr, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
		*c.dst = ctr
	}
	return h, nil
}

func (h *Hooks) add(c metric.Int64Counter, n int) {
	c.Add(context.Background(), int64(n), h.opt)
}

func (h *Hooks) LoadStarted(string, string) { h.add(h.started, 1) }
func (h *Hooks) LoadFailed(string, string, error) { h.add(h.failed, 1) }
func (h *Hooks) LoadOrphaned(string, string) { h.add(h.orphaned, 1) }
func (h *Hooks) RangeHit(string, string) { h.add(h.hits, 1) }
func (h *Hooks) LoadsCoalesced(_, _ string, n int) { h.add(h.coalesced, n) }
func (h *Hooks) RecordsAborted(_ string, n int) { h.add(h.aborted, n) }
func (h *Hooks) KeyEvicted(string) { h.add(h.evictions, 1) }
