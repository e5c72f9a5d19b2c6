package rangecache

import (
	"cmp"
	"context"

	"github.com/unkn0wn-root/rangecache/future"
)

// LoadFunc fetches the values with point in [start,end] from the backing source,
// ascending by point. ctx is cancelled with cause ErrAborted when the request
// that issued the load is aborted; the cache discards late results itself, so
// honoring ctx is an optimization.
type LoadFunc[P, V, Q any] func(ctx context.Context, start, end P, params Q) ([]V, error)

// Cache serves contiguous ranges of V over the point space P. Q is the request
// parameter type; Options.Key maps it to the per-key state.
// Returned slices are shared between callers of the same interval and must not be modified.
type Cache[P, V, Q any] interface {
	Enabled() bool
	Close(context.Context) error

	// Fetch blocks until [start,end] is available, fails, is aborted, or ctx ends.
	Fetch(ctx context.Context, start, end P, params Q) ([]V, error)
	// FetchAsync returns the record's future. Requests for the same exact
	// interval share one future; a cached failure is a rejected future.
	FetchAsync(start, end P, params Q) (*future.Future[[]V], error)
	// FetchSuspense never blocks; see Result.
	FetchSuspense(start, end P, params Q) Result[V]

	// Abort cancels every pending request for params' key. Reports whether any was pending.
	Abort(params Q) (bool, error)
	// Evict drops params' key state without cancelling loads in flight.
	// Requests already waiting on the dropped state still settle when its loads
	// do. Abort no longer reaches them; Close does.
	Evict(params Q) (bool, error)
	// EvictAll drops every key. Reports whether any existed.
	EvictAll() bool

	Stats() Stats
}

// Stats is a point-in-time snapshot summed over keys.
type Stats struct {
	Keys           int
	Records        int
	PendingRecords int
	PendingLoads   int
	LoadedRanges   int
	Values         int

	// Instance lifetime counters.
	Loads        uint64
	LoadFailures uint64
}

// Options configure a Cache.
// Load, Point, Compare and Key are required; others have sensible defaults.
type Options[P, V, Q any] struct {
	// Required
	Load    LoadFunc[P, V, Q]
	Point   func(V) P               // projects a value to its coordinate
	Compare func(a, b P) int        // three-way point comparator
	Key     func(Q) (string, error) // derives the cache key; see package keys

	Namespace   string         // label for logs and hooks
	FormatPoint func(P) string // record key form of a point, must be injective; nil => fmt.Sprint
	Logger      Logger         // if nil, NopLogger is used
	Hooks       Hooks          // if nil, NopHooks is used
	Disabled    bool           // every fetch calls Load directly; nothing is cached
}

func New[P, V, Q any](opts Options[P, V, Q]) (Cache[P, V, Q], error) {
	return newCache[P, V, Q](opts)
}

// NewOrdered is New for naturally ordered points; Compare defaults to cmp.Compare.
func NewOrdered[P cmp.Ordered, V, Q any](opts Options[P, V, Q]) (Cache[P, V, Q], error) {
	if opts.Compare == nil {
		opts.Compare = cmp.Compare[P]
	}
	return newCache[P, V, Q](opts)
}
