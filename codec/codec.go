// Package codec holds the encoders rangecache uses to turn request parameters
// into stable cache keys, and decoders used by backing-source adapters to turn
// stored members back into values.
//
// Every Encoder here is deterministic: equal inputs produce equal bytes, which
// is what key derivation depends on.
package codec

import (
	"encoding/json"
	"fmt"
)

// Encoder turns V into bytes. Implementations used for key derivation must be deterministic.
type Encoder[V any] interface {
	Encode(V) ([]byte, error)
}

// Decoder turns bytes back into V.
type Decoder[V any] interface {
	Decode([]byte) (V, error)
}

// Codec is both.
type Codec[V any] interface {
	Encoder[V]
	Decoder[V]
}

// JSON uses encoding/json. Map keys are emitted sorted, so output is stable
// for maps and structs alike.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

// Bytes is the identity codec.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// String converts between string and []byte without validation.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }

// Limit rejects payloads longer than Max bytes before they reach Inner.
// Max <= 0 disables the check. Useful in front of members read from a shared store.
type Limit[V any] struct {
	Inner Decoder[V]
	Max   int
}

func (l Limit[V]) Decode(b []byte) (V, error) {
	if l.Max > 0 && len(b) > l.Max {
		var zero V
		return zero, fmt.Errorf("codec: payload too large: %d > %d", len(b), l.Max)
	}
	return l.Inner.Decode(b)
}
