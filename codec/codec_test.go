package codec

import (
	"bytes"
	"strings"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

type query struct {
	Symbol string            `json:"symbol" msgpack:"symbol" cbor:"symbol"`
	Tags   map[string]string `json:"tags" msgpack:"tags" cbor:"tags"`
}

func sampleQuery() query {
	tags := make(map[string]string)
	for _, k := range []string{"z", "a", "m", "q", "b", "y", "c"} {
		tags[k] = strings.ToUpper(k)
	}
	return query{Symbol: "EURUSD", Tags: tags}
}

func assertStable[V any](t *testing.T, enc Encoder[V], v V) []byte {
	t.Helper()
	first, err := enc.Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := enc.Encode(v)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding not deterministic:\n%x\n%x", first, again)
		}
	}
	return first
}

func TestEncodersAreDeterministic(t *testing.T) {
	q := sampleQuery()
	assertStable[query](t, JSON[query]{}, q)
	assertStable[query](t, Msgpack[query]{}, q)
	assertStable[query](t, MustCBOR[query](false), q)
}

func TestRoundTripMsgpackAndCBOR(t *testing.T) {
	q := sampleQuery()
	for name, c := range map[string]Codec[query]{
		"msgpack": Msgpack[query]{},
		"cbor":    MustCBOR[query](false),
		"json":    JSON[query]{},
	} {
		b, err := c.Encode(q)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		got, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if got.Symbol != q.Symbol || len(got.Tags) != len(q.Tags) {
			t.Fatalf("%s roundtrip mismatch: %+v", name, got)
		}
	}
}

func TestProtobufDeterministicMaps(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{"z": 1, "a": "x", "m": true, "b": 2.5})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	c := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	b := assertStable[*structpb.Struct](t, c, s)
	back, err := c.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(back.GetFields()) != 4 {
		t.Fatalf("fields lost: %v", back.GetFields())
	}
}

func TestLimitRejectsOversized(t *testing.T) {
	l := Limit[string]{Inner: String{}, Max: 3}
	if _, err := l.Decode([]byte("abcd")); err == nil {
		t.Fatalf("expected size error")
	}
	if v, err := l.Decode([]byte("abc")); err != nil || v != "abc" {
		t.Fatalf("Decode=%q,%v", v, err)
	}
	open := Limit[string]{Inner: String{}}
	if _, err := open.Decode(bytes.Repeat([]byte("x"), 1<<12)); err != nil {
		t.Fatalf("Max=0 must disable the limit: %v", err)
	}
}
