package util

import (
	"strings"
	"testing"
)

func TestHashKeyStableAndPrefixed(t *testing.T) {
	a := HashKey("ticks", []byte(`{"symbol":"EURUSD"}`))
	b := HashKey("ticks", []byte(`{"symbol":"EURUSD"}`))
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "ticks:") || len(a) != len("ticks:")+32 {
		t.Fatalf("unexpected shape %q", a)
	}
	if HashKey("ticks", []byte(`{"symbol":"GBPUSD"}`)) == a {
		t.Fatalf("different inputs hashed equal")
	}
	if bare := HashKey("", []byte("x")); len(bare) != 32 {
		t.Fatalf("bare hash len=%d", len(bare))
	}
}

func TestSpanKey(t *testing.T) {
	if got := SpanKey("1", "20"); got != "[1,20]" {
		t.Fatalf("SpanKey=%q", got)
	}
	if got := SpanKey("a,b", "c"); got != `["a,b","c"]` {
		t.Fatalf("SpanKey=%q", got)
	}
}

func TestSpanKeyDistinguishesSeparatorsInPoints(t *testing.T) {
	pairs := [][2]string{
		{"a,b", "c"}, {"a", "b,c"}, {"a", "b"}, {"", "a,b"}, {"a,b", ""},
		{`"a"`, "b"}, {"a", `"b"`}, {`"a","b"`, ""}, {"", `"a","b"`},
		{",", ","}, {"", ",,"}, {",,", ""}, {"[a", "b]"}, {"[a,b]", ""},
	}
	seen := make(map[string][2]string, len(pairs))
	for _, p := range pairs {
		k := SpanKey(p[0], p[1])
		if prev, dup := seen[k]; dup {
			t.Fatalf("SpanKey(%q,%q) and SpanKey(%q,%q) both = %q", prev[0], prev[1], p[0], p[1], k)
		}
		seen[k] = p
	}
}
