package codec

import "google.golang.org/protobuf/proto"

// Protobuf encodes messages with deterministic marshaling (map fields sorted).
// Deterministic here means stable within one binary; do not share derived keys
// across builds with different message definitions.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.Query { return &pb.Query{} }
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
