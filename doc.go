// Package rangecache implements an in-process cache for data addressed by
// contiguous ranges over an ordered coordinate space (time, index, offset)
// instead of discrete keys.
//
// For every derived key the cache tracks which sub-ranges are loaded and which
// are in flight. A request for [start,end] is split against that coverage:
// uncovered pieces are loaded, pieces already being loaded by someone else are
// awaited, and the answer is sliced out of one sorted value set once
// everything it depends on has settled.
//
// Components:
//   - Gap analysis: request minus loaded coverage, split into missing and pending pieces.
//   - Value index: values kept ascending by point; binary search to insert and slice.
//   - Records: one per exact requested interval, pending -> resolved | rejected | aborted.
//     Identical requests share a record, so they share one future.
//   - Failures are cached: a rejected record returns the same error until the key is evicted.
//
// Usage:
//
//	c, _ := rangecache.NewOrdered(rangecache.Options[int64, Candle, Query]{
//	    Load:  fetchCandles,                        // func(ctx, from, to int64, q Query) ([]Candle, error)
//	    Point: func(c Candle) int64 { return c.OpenTime },
//	    Key:   keys.Hashed[Query]("candles", codec.Msgpack[Query]{}),
//	})
//	candles, err := c.Fetch(ctx, from, to, Query{Symbol: "BTCUSDT", Interval: "1m"})
//
// Every key's state is mutated under its own mutex; keys share nothing.
package rangecache
