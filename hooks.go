package rangecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; several are called while a
// key's state is locked. Wrap slow sinks with hooks/async.
//
// key is the derived cache key, span the formatted interval "[start,end]".
type Hooks interface {
	// A sub-range load was issued to the backing source.
	LoadStarted(key, span string)

	// A sub-range load failed. Every record waiting on it is rejected with a *LoadError.
	LoadFailed(key, span string, err error)

	// A load settled after its key was evicted; the result went to the detached state only.
	LoadOrphaned(key, span string)

	// A request was answered entirely from loaded ranges.
	RangeHit(key, span string)

	// A request attached to n loads already in flight instead of issuing its own.
	LoadsCoalesced(key, span string, n int)

	// Abort cancelled n pending records.
	RecordsAborted(key string, n int)

	// Evict, EvictAll or Close dropped a key's state.
	KeyEvicted(key string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) LoadStarted(string, string)         {}
func (NopHooks) LoadFailed(string, string, error)   {}
func (NopHooks) LoadOrphaned(string, string)        {}
func (NopHooks) RangeHit(string, string)            {}
func (NopHooks) LoadsCoalesced(string, string, int) {}
func (NopHooks) RecordsAborted(string, int)         {}
func (NopHooks) KeyEvicted(string)                  {}
