package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces the three keys when no prefix is given.
const DefaultRedisPrefix = "sessiongate"

// Redis stores the snapshot as three string keys "{prefix}:name". The braces make prefix
// the cluster hash tag, so the keys share a slot and MGET and MULTI/EXEC work on cluster
// clients too. Writes and clears run in a single MULTI/EXEC transaction. Keys carry no
// expiry.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis-backed store. An empty prefix selects DefaultRedisPrefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{redis: client, prefix: prefix}
}

func (r *Redis) key(name string) string {
	return "{" + r.prefix + "}:" + name
}

func (r *Redis) keys() []string {
	out := make([]string, 0, len(keyNames))
	for _, k := range keyNames {
		out = append(out, r.key(k))
	}
	return out
}

// Load implements Store with a single MGET.
func (r *Redis) Load(ctx context.Context) (Snapshot, error) {
	vals, err := r.redis.MGet(ctx, r.keys()...).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(vals) != len(keyNames) {
		return Snapshot{}, fmt.Errorf("%w: expected %d values, got %d", ErrCorrupt, len(keyNames), len(vals))
	}

	str := func(v interface{}) string {
		s, _ := v.(string)
		return s
	}
	return Snapshot{
		Token:   str(vals[0]),
		Role:    str(vals[1]),
		Profile: str(vals[2]),
	}, nil
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, snap Snapshot) error {
	if err := checkComplete(snap); err != nil {
		return err
	}

	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(KeyToken), snap.Token, 0)
		pipe.Set(ctx, r.key(KeyRole), snap.Role, 0)
		pipe.Set(ctx, r.key(KeyProfile), snap.Profile, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Clear implements Store with a single DEL of all three keys.
func (r *Redis) Clear(ctx context.Context) error {
	if err := r.redis.Del(ctx, r.keys()...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping measures round-trip latency to the backing server.
func (r *Redis) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
