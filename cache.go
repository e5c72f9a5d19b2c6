package rangecache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/rangecache/future"
	"github.com/unkn0wn-root/rangecache/internal/util"
	"github.com/unkn0wn-root/rangecache/interval"
)

type cache[P, V, Q any] struct {
	ns      string
	load    LoadFunc[P, V, Q]
	keyOf   func(Q) (string, error)
	format  func(P) string
	ord     order[P, V]
	log     Logger
	hooks   Hooks
	enabled bool

	// Lock order: a key's m.mu may be held while taking mu, never the reverse.
	mu       sync.Mutex
	keys     map[string]*rangeMeta[P, V]
	detached map[*rangeMeta[P, V]]struct{} // evicted states with pending records
	closed   bool

	loads    atomic.Uint64
	failures atomic.Uint64
}

func newCache[P, V, Q any](opts Options[P, V, Q]) (*cache[P, V, Q], error) {
	if opts.Load == nil {
		return nil, errors.New("rangecache: load is required")
	}
	if opts.Point == nil {
		return nil, errors.New("rangecache: point projection is required")
	}
	if opts.Compare == nil {
		return nil, errors.New("rangecache: compare is required")
	}
	if opts.Key == nil {
		return nil, errors.New("rangecache: key func is required")
	}

	c := &cache[P, V, Q]{
		ns:      opts.Namespace,
		load:    opts.Load,
		keyOf:   opts.Key,
		ord:     order[P, V]{point: opts.Point, cmp: opts.Compare},
		enabled: !opts.Disabled,
		keys:     make(map[string]*rangeMeta[P, V]),
		detached: make(map[*rangeMeta[P, V]]struct{}),
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.format = opts.FormatPoint
	if c.format == nil {
		c.format = defaultFormatPoint[P]
	}
	return c, nil
}

func (c *cache[P, V, Q]) Enabled() bool { return c.enabled }

// Close aborts every pending record, including those of keys evicted earlier,
// and drops all keys. Loads in flight are signalled through their context.
// Safe to call more than once.
func (c *cache[P, V, Q]) Close(context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	metas := c.keys
	detached := c.detached
	c.keys, c.detached = nil, nil
	c.mu.Unlock()

	for _, m := range metas {
		m.mu.Lock()
		n := m.abortPending()
		m.evicted = true
		m.mu.Unlock()
		if n > 0 {
			c.hooks.RecordsAborted(m.key, n)
		}
		c.hooks.KeyEvicted(m.key)
	}
	for m := range detached {
		m.mu.Lock()
		n := m.abortPending()
		m.mu.Unlock()
		if n > 0 {
			c.hooks.RecordsAborted(m.key, n)
		}
	}
	c.log.Debug("cache closed", Fields{"ns": c.ns, "keys": len(metas), "detached": len(detached)})
	return nil
}

func (c *cache[P, V, Q]) Fetch(ctx context.Context, start, end P, params Q) ([]V, error) {
	return c.FetchSuspense(start, end, params).Wait(ctx)
}

func (c *cache[P, V, Q]) FetchAsync(start, end P, params Q) (*future.Future[[]V], error) {
	res, err := c.request(start, end, params)
	if err != nil {
		return nil, err
	}
	return res.Future, nil
}

func (c *cache[P, V, Q]) FetchSuspense(start, end P, params Q) Result[V] {
	res, err := c.request(start, end, params)
	if err != nil {
		return Result[V]{Kind: Failed, Err: err, Future: future.Rejected[[]V](err)}
	}
	return res
}

func (c *cache[P, V, Q]) Abort(params Q) (bool, error) {
	if !c.enabled {
		return false, nil
	}
	key, err := c.deriveKey(params)
	if err != nil {
		return false, err
	}
	m := c.lookup(key)
	if m == nil {
		return false, nil
	}

	m.mu.Lock()
	n := m.abortPending()
	m.mu.Unlock()
	if n == 0 {
		return false, nil
	}
	c.hooks.RecordsAborted(key, n)
	m.log.Info("aborted pending requests", Fields{"count": n})
	return true, nil
}

func (c *cache[P, V, Q]) Evict(params Q) (bool, error) {
	key, err := c.deriveKey(params)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	m, ok := c.keys[key]
	if ok {
		delete(c.keys, key)
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	c.detach(m)
	return true, nil
}

func (c *cache[P, V, Q]) EvictAll() bool {
	c.mu.Lock()
	metas := c.keys
	if !c.closed {
		c.keys = make(map[string]*rangeMeta[P, V])
	}
	c.mu.Unlock()
	for _, m := range metas {
		c.detach(m)
	}
	return len(metas) > 0
}

func (c *cache[P, V, Q]) Stats() Stats {
	c.mu.Lock()
	metas := make([]*rangeMeta[P, V], 0, len(c.keys))
	for _, m := range c.keys {
		metas = append(metas, m)
	}
	c.mu.Unlock()

	st := Stats{
		Keys:         len(metas),
		Loads:        c.loads.Load(),
		LoadFailures: c.failures.Load(),
	}
	for _, m := range metas {
		m.mu.Lock()
		st.Records += len(m.records)
		st.PendingRecords += len(m.pending)
		st.PendingLoads += len(m.loads)
		st.LoadedRanges += len(m.loaded)
		st.Values += len(m.values)
		m.mu.Unlock()
	}
	return st
}

// request resolves or creates the record for exact [start,end] of params' key
// and returns its current state.
func (c *cache[P, V, Q]) request(start, end P, params Q) (Result[V], error) {
	span := interval.Of(start, end)
	if !span.Valid(c.ord.cmp) {
		return Result[V]{}, ErrInvalidRange
	}
	if !c.enabled {
		return c.direct(span, params), nil
	}
	key, err := c.deriveKey(params)
	if err != nil {
		return Result[V]{}, err
	}
	sk := c.spanKey(span)

	m, err := c.lockMeta(key)
	if err != nil {
		return Result[V]{}, err
	}
	defer m.mu.Unlock()

	if rec, ok := m.records[sk]; ok {
		return rec.result(), nil
	}

	rec := newRecord[V](sk)
	m.records[sk] = rec
	m.pending[rec] = struct{}{}

	g := analyzeGaps(span, m.loaded, m.inflight(), c.ord.cmp)
	waits := make([]*future.Future[struct{}], 0, len(g.missing)+len(g.pending))
	for _, piece := range g.missing {
		waits = append(waits, c.startLoad(m, rec, piece, params))
	}
	if attached := m.attach(g.pending); len(attached) > 0 {
		waits = append(waits, attached...)
		c.hooks.LoadsCoalesced(key, sk, len(attached))
		m.log.Debug("attached to loads in flight", Fields{"span": sk, "loads": len(attached)})
	}

	if len(waits) == 0 {
		delete(m.pending, rec)
		rec.resolve(c.ord.slice(m.values, start, end))
		c.hooks.RangeHit(key, sk)
		return rec.result(), nil
	}

	go c.settle(m, rec, span, waits)
	return rec.result(), nil
}

// startLoad issues the load for piece on behalf of rec. Called with m.mu held.
// The result is committed to m before the returned future settles, so anyone
// woken by it observes the merged values.
func (c *cache[P, V, Q]) startLoad(m *rangeMeta[P, V], rec *record[V], piece interval.Interval[P], params Q) *future.Future[struct{}] {
	pl := &pendingLoad[P]{span: piece, fut: future.New[struct{}]()}
	m.loads = append(m.loads, pl)

	sk := c.spanKey(piece)
	c.loads.Add(1)
	c.hooks.LoadStarted(m.key, sk)
	m.log.Debug("load issued", Fields{"span": sk})

	signal := rec.signal
	go func() {
		values, err := c.load(signal, piece.Start, piece.End, params)

		m.mu.Lock()
		m.removeLoad(pl)
		orphaned := m.evicted
		if err == nil {
			m.commit(piece, values)
		}
		m.mu.Unlock()

		if err != nil {
			c.failures.Add(1)
			lerr := &LoadError{Key: m.key, Span: sk, Err: err}
			c.hooks.LoadFailed(m.key, sk, err)
			if errors.Is(context.Cause(signal), ErrAborted) {
				m.log.Debug("load failed after abort", Fields{"span": sk, "err": err})
			} else {
				m.log.Warn("load failed", Fields{"span": sk, "err": err})
			}
			pl.fut.Reject(lerr)
			return
		}
		if orphaned {
			c.hooks.LoadOrphaned(m.key, sk)
			m.log.Debug("load settled after eviction", Fields{"span": sk})
		}
		pl.fut.Resolve(struct{}{})
	}()
	return pl.fut
}

// settle waits for every load rec depends on, then commits rec's terminal state.
// The first failure rejects rec without waiting for the rest.
func (c *cache[P, V, Q]) settle(m *rangeMeta[P, V], rec *record[V], span interval.Interval[P], waits []*future.Future[struct{}]) {
	g, gctx := errgroup.WithContext(rec.signal)
	for _, w := range waits {
		w := w
		g.Go(func() error {
			_, err := w.Wait(gctx)
			return err
		})
	}
	err := g.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pending, rec)
	if m.evicted && len(m.pending) == 0 {
		c.forget(m)
	}
	if rec.signal.Err() != nil {
		return // aborted; no terminal commit
	}
	if err != nil {
		rec.reject(err)
		m.log.Debug("request rejected", Fields{"span": rec.span, "err": err})
		return
	}
	rec.resolve(c.ord.slice(m.values, span.Start, span.End))
}

// direct serves a request when the cache is disabled: one load, nothing kept.
func (c *cache[P, V, Q]) direct(span interval.Interval[P], params Q) Result[V] {
	fut := future.New[[]V]()
	c.loads.Add(1)
	go func() {
		values, err := c.load(context.Background(), span.Start, span.End, params)
		if err != nil {
			c.failures.Add(1)
			fut.Reject(&LoadError{Span: c.spanKey(span), Err: err})
			return
		}
		if !slices.IsSortedFunc(values, c.ord.compareValues) {
			values = slices.Clone(values)
			slices.SortStableFunc(values, c.ord.compareValues)
		}
		fut.Resolve(values)
	}()
	return Result[V]{Kind: Pending, Future: fut}
}

// abortPending cancels every pending record of m and forgets them, so a later
// identical request starts over. Loads in flight are detached: they were
// issued under an aborted signal and new requests must not wait on them.
// Called with m.mu held; returns the number of records aborted.
func (m *rangeMeta[P, V]) abortPending() int {
	n := len(m.pending)
	if n == 0 {
		return 0
	}
	for rec := range m.pending {
		rec.abort()
		delete(m.records, rec.span)
	}
	clear(m.pending)
	m.loads = nil
	return n
}

// detach marks an evicted key. Its loads keep running and still commit into
// m, so requests already waiting on m resolve normally. While m has pending
// records it stays reachable from Close.
func (c *cache[P, V, Q]) detach(m *rangeMeta[P, V]) {
	m.mu.Lock()
	m.evicted = true
	pending := len(m.pending)
	if pending > 0 {
		c.mu.Lock()
		if c.detached != nil {
			c.detached[m] = struct{}{}
		}
		c.mu.Unlock()
	}
	m.mu.Unlock()
	c.hooks.KeyEvicted(m.key)
	m.log.Debug("key evicted", Fields{"pending": pending})
}

// forget drops a drained detached state. Called with m.mu held.
func (c *cache[P, V, Q]) forget(m *rangeMeta[P, V]) {
	c.mu.Lock()
	delete(c.detached, m)
	c.mu.Unlock()
}

// lockMeta returns key's live state with m.mu held. A state evicted or closed
// between lookup and locking is never used for new records.
func (c *cache[P, V, Q]) lockMeta(key string) (*rangeMeta[P, V], error) {
	for {
		m, err := c.meta(key)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		if !m.evicted {
			return m, nil
		}
		m.mu.Unlock()
	}
}

func (c *cache[P, V, Q]) meta(key string) (*rangeMeta[P, V], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if m, ok := c.keys[key]; ok {
		return m, nil
	}
	m := newRangeMeta(key, c.ord, c.log.With(Fields{"ns": c.ns, "key": key}))
	c.keys[key] = m
	return m, nil
}

func (c *cache[P, V, Q]) lookup(key string) *rangeMeta[P, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[key]
}

func (c *cache[P, V, Q]) deriveKey(params Q) (string, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return "", ErrClosed
	}
	key, err := c.keyOf(params)
	if err != nil {
		return "", fmt.Errorf("rangecache: derive key: %w", err)
	}
	return key, nil
}

func (c *cache[P, V, Q]) spanKey(span interval.Interval[P]) string {
	return util.SpanKey(c.format(span.Start), c.format(span.End))
}
