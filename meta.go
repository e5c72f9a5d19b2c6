package rangecache

import (
	"sync"

	"github.com/unkn0wn-root/rangecache/future"
	"github.com/unkn0wn-root/rangecache/interval"
)

// pendingLoad is one in-flight call to the load function.
type pendingLoad[P any] struct {
	span interval.Interval[P]
	fut  *future.Future[struct{}]
}

// rangeMeta is the state of one derived cache key. mu serializes every
// mutation; goroutines finishing loads or fan-ins queue on it.
type rangeMeta[P, V any] struct {
	mu  sync.Mutex
	key string
	log Logger
	ord order[P, V]

	loaded  []interval.Interval[P] // merged, ascending
	loads   []*pendingLoad[P]
	pending map[*record[V]]struct{}
	records map[string]*record[V]
	values  []V // ascending by point, unique points

	evicted bool
}

func newRangeMeta[P, V any](key string, ord order[P, V], log Logger) *rangeMeta[P, V] {
	return &rangeMeta[P, V]{
		key:     key,
		log:     log,
		ord:     ord,
		pending: make(map[*record[V]]struct{}),
		records: make(map[string]*record[V]),
	}
}

func (m *rangeMeta[P, V]) inflight() []interval.Interval[P] {
	if len(m.loads) == 0 {
		return nil
	}
	out := make([]interval.Interval[P], len(m.loads))
	for i, pl := range m.loads {
		out[i] = pl.span
	}
	return out
}

// attach collects the futures of in-flight loads overlapping any of pieces.
// Overlap rather than containment: a piece of a merged pending union can span
// two adjacent loads without being inside either.
func (m *rangeMeta[P, V]) attach(pieces []interval.Interval[P]) []*future.Future[struct{}] {
	var out []*future.Future[struct{}]
	seen := make(map[*pendingLoad[P]]struct{})
	for _, piece := range pieces {
		for _, pl := range m.loads {
			if _, dup := seen[pl]; dup {
				continue
			}
			if interval.Overlaps(pl.span, piece, m.ord.cmp) {
				seen[pl] = struct{}{}
				out = append(out, pl.fut)
			}
		}
	}
	return out
}

func (m *rangeMeta[P, V]) removeLoad(pl *pendingLoad[P]) {
	for i, cur := range m.loads {
		if cur == pl {
			m.loads = append(m.loads[:i], m.loads[i+1:]...)
			return
		}
	}
}

// commit records a successful load of span.
func (m *rangeMeta[P, V]) commit(span interval.Interval[P], values []V) {
	m.loaded = interval.MergeAll(append(m.loaded, span), m.ord.cmp)
	m.values = m.ord.insert(m.values, values)
}
