// Package keys builds the key-derivation functions rangecache uses to map
// request parameters to a per-key cache state.
//
// A derived key must be stable (same params, same key, across calls) and
// collision-free for distinct params. Hashed keys rely on a deterministic
// encoder from package codec; see codec.Msgpack, codec.NewCBOR and codec.JSON.
package keys

import (
	"fmt"

	"github.com/unkn0wn-root/rangecache/codec"
	"github.com/unkn0wn-root/rangecache/internal/util"
)

// Func derives a cache key from request params.
type Func[Q any] func(params Q) (string, error)

// Hashed encodes params with enc and hashes the bytes (SHA-256, 128-bit hex).
// prefix is prepended as "prefix:" when non-empty.
func Hashed[Q any](prefix string, enc codec.Encoder[Q]) Func[Q] {
	return func(params Q) (string, error) {
		b, err := enc.Encode(params)
		if err != nil {
			return "", fmt.Errorf("keys: encode params: %w", err)
		}
		return util.HashKey(prefix, b), nil
	}
}

// Encoded uses the encoded params verbatim. Readable with codec.JSON, but
// keys grow with the params.
func Encoded[Q any](enc codec.Encoder[Q]) Func[Q] {
	return func(params Q) (string, error) {
		b, err := enc.Encode(params)
		if err != nil {
			return "", fmt.Errorf("keys: encode params: %w", err)
		}
		return string(b), nil
	}
}

// String uses string params as the key.
func String() Func[string] {
	return func(s string) (string, error) { return s, nil }
}

// Stringer uses params.String() as the key.
func Stringer[Q fmt.Stringer]() Func[Q] {
	return func(q Q) (string, error) { return q.String(), nil }
}
