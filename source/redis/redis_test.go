package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/rangecache"
	"github.com/unkn0wn-root/rangecache/codec"
)

type tick struct {
	At    float64 `json:"at"`
	Price int     `json:"price"`
}

// fakeServer answers commands in-process so no Redis is needed.
type fakeServer struct {
	reply func(args []any) ([]string, error)
	seen  [][]any
}

func (f *fakeServer) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("fake: dial disabled")
	}
}

func (f *fakeServer) ProcessHook(goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		f.seen = append(f.seen, cmd.Args())
		switch c := cmd.(type) {
		case *goredis.StringSliceCmd:
			vals, err := f.reply(cmd.Args())
			if err != nil {
				c.SetErr(err)
				return err
			}
			c.SetVal(vals)
		case *goredis.IntCmd:
			c.SetVal(1)
		}
		return nil
	}
}

func (f *fakeServer) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func newFake(t *testing.T, reply func([]any) ([]string, error)) (*goredis.Client, *fakeServer) {
	t.Helper()
	f := &fakeServer{reply: reply}
	rdb := goredis.NewClient(&goredis.Options{Addr: "fake:6379"})
	rdb.AddHook(f)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, f
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config[tick, string]{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("err=%v want ErrNilClient", err)
	}
	rdb, _ := newFake(t, nil)
	if _, err := New(Config[tick, string]{Client: rdb, Decoder: codec.JSON[tick]{}}); !errors.Is(err, ErrNilKey) {
		t.Fatalf("err=%v want ErrNilKey", err)
	}
	if _, err := New(Config[tick, string]{Client: rdb, Key: func(s string) string { return s }}); !errors.Is(err, ErrNilDecoder) {
		t.Fatalf("err=%v want ErrNilDecoder", err)
	}
}

func TestLoadIssuesZRangeByScore(t *testing.T) {
	rdb, f := newFake(t, func([]any) ([]string, error) {
		return []string{`{"at":10,"price":1}`, `{"at":12.5,"price":2}`}, nil
	})
	src, err := New(Config[tick, string]{
		Client:  rdb,
		Key:     func(sym string) string { return "ticks:" + sym },
		Decoder: codec.JSON[tick]{},
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := src.Load(context.Background(), 10, 20, "EURUSD")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].At != 10 || got[1].Price != 2 {
		t.Fatalf("got %+v", got)
	}

	args := fmt.Sprint(f.seen[len(f.seen)-1])
	if want := "[zrange ticks:EURUSD 10 20 byscore]"; args != want {
		t.Fatalf("args=%s want %s", args, want)
	}
}

func TestLoadDecodeError(t *testing.T) {
	rdb, _ := newFake(t, func([]any) ([]string, error) { return []string{"not json"}, nil })
	src, _ := New(Config[tick, string]{Client: rdb, Key: func(s string) string { return s }, Decoder: codec.JSON[tick]{}})
	if _, err := src.Load(context.Background(), 0, 1, "k"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadAsCacheSource(t *testing.T) {
	rdb, f := newFake(t, func([]any) ([]string, error) {
		return []string{`{"at":1}`, `{"at":2}`, `{"at":3}`}, nil
	})
	src, _ := New(Config[tick, string]{Client: rdb, Key: func(s string) string { return s }, Decoder: codec.JSON[tick]{}})

	c, err := rangecache.NewOrdered(rangecache.Options[float64, tick, string]{
		Load:  src.Load,
		Point: func(t tick) float64 { return t.At },
		Key:   func(s string) (string, error) { return s, nil },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close(context.Background())

	for i := 0; i < 2; i++ {
		got, err := c.Fetch(context.Background(), 1, 3, "k")
		if err != nil || len(got) != 3 {
			t.Fatalf("Fetch: %v %v", got, err)
		}
	}
	if len(f.seen) != 1 {
		t.Fatalf("redis commands=%d want 1", len(f.seen))
	}
}

func TestAdd(t *testing.T) {
	rdb, f := newFake(t, nil)
	src, _ := New(Config[tick, string]{Client: rdb, Key: func(s string) string { return s }, Decoder: codec.JSON[tick]{}})
	if err := src.Add(context.Background(), "k", 1, tick{At: 1}); !errors.Is(err, ErrNoEncoder) {
		t.Fatalf("err=%v want ErrNoEncoder", err)
	}

	src, _ = New(Config[tick, string]{
		Client: rdb, Key: func(s string) string { return s },
		Decoder: codec.JSON[tick]{}, Encoder: codec.JSON[tick]{},
	})
	if err := src.Add(context.Background(), "k", 1, tick{At: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if args := f.seen[len(f.seen)-1]; args[0] != "zadd" || args[1] != "k" {
		t.Fatalf("args=%v", args)
	}
}

func TestFormatScore(t *testing.T) {
	for in, want := range map[float64]string{
		0:            "0",
		-3:           "-3",
		1.5:          "1.5",
		1e21:         "1e+21",
		math.Inf(1):  "+inf",
		math.Inf(-1): "-inf",
	} {
		if got := formatScore(in); got != want {
			t.Fatalf("formatScore(%v)=%q want %q", in, got, want)
		}
	}
}
