package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR serializes with fxamacker/cbor. Construct with NewCBOR or MustCBOR.
//
// By default it uses Core Deterministic Encoding (RFC 8949 4.2.1), which sorts
// map keys and picks the shortest forms, so it is safe for key derivation.
// Times are written as RFC3339Nano strings.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR builds a CBOR codec. Pass preferred=true to trade determinism for
// PreferredUnsortedEncOptions when the codec only decodes source members.
func NewCBOR[V any](preferred bool) (CBOR[V], error) {
	eo := cbor.CoreDetEncOptions()
	if preferred {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR that panics; meant for package-level variables.
func MustCBOR[V any](preferred bool) CBOR[V] {
	c, err := NewCBOR[V](preferred)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
