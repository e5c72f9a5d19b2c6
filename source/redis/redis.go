// Package redis is a rangecache backing source over Redis sorted sets.
// Each key's values are members of one sorted set, scored by their point.
package redis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/rangecache/codec"
)

var (
	ErrNilClient  = errors.New("redis source: nil client")
	ErrNilDecoder = errors.New("redis source: nil decoder")
	ErrNilKey     = errors.New("redis source: nil key func")
	ErrNoEncoder  = errors.New("redis source: no encoder configured")
)

type Config[V, Q any] struct {
	Client goredis.UniversalClient
	// Key names the sorted set holding params' values.
	Key     func(Q) string
	Decoder codec.Decoder[V]
	// Encoder is only needed by Add.
	Encoder     codec.Encoder[V]
	CloseClient bool // set true only if this source exclusively owns the client
}

type Source[V, Q any] struct {
	rdb         goredis.UniversalClient
	key         func(Q) string
	dec         codec.Decoder[V]
	enc         codec.Encoder[V]
	closeClient bool
}

func New[V, Q any](cfg Config[V, Q]) (*Source[V, Q], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Key == nil {
		return nil, ErrNilKey
	}
	if cfg.Decoder == nil {
		return nil, ErrNilDecoder
	}
	return &Source[V, Q]{
		rdb:         cfg.Client,
		key:         cfg.Key,
		dec:         cfg.Decoder,
		enc:         cfg.Encoder,
		closeClient: cfg.CloseClient,
	}, nil
}

// Load returns the members scored within [start,end], ascending by score.
// Use it as Options.Load.
func (s *Source[V, Q]) Load(ctx context.Context, start, end float64, params Q) ([]V, error) {
	key := s.key(params)
	members, err := s.rdb.ZRangeArgs(ctx, goredis.ZRangeArgs{
		Key:     key,
		Start:   formatScore(start),
		Stop:    formatScore(end),
		ByScore: true,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis source: zrange %s: %w", key, err)
	}
	out := make([]V, 0, len(members))
	for i, m := range members {
		v, err := s.dec.Decode([]byte(m))
		if err != nil {
			return nil, fmt.Errorf("redis source: decode member %d of %s: %w", i, key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Add writes v into params' set at score. Encoded members must be unique per
// value; re-adding an identical member only moves its score.
func (s *Source[V, Q]) Add(ctx context.Context, params Q, score float64, v V) error {
	if s.enc == nil {
		return ErrNoEncoder
	}
	b, err := s.enc.Encode(v)
	if err != nil {
		return fmt.Errorf("redis source: encode: %w", err)
	}
	return s.rdb.ZAdd(ctx, s.key(params), goredis.Z{Score: score, Member: b}).Err()
}

// Close releases the underlying redis client only when this source owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Source[V, Q]) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

// formatScore renders an inclusive score bound the way ZRANGE BYSCORE expects.
func formatScore(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
