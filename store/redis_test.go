package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*Redis, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedis(rdb, "sg"), mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestRedisStore(t *testing.T) {
	s, _, done := newRedisStoreTest(t)
	defer done()
	exerciseStore(t, s)
}

// hashTag returns the part of key Redis Cluster hashes to pick a slot.
func hashTag(key string) string {
	open := strings.IndexByte(key, '{')
	if open < 0 {
		return key
	}
	end := strings.IndexByte(key[open+1:], '}')
	if end <= 0 {
		return key
	}
	return key[open+1 : open+1+end]
}

func TestRedisStoreKeysShareHashSlot(t *testing.T) {
	s, mr, done := newRedisStoreTest(t)
	defer done()

	if err := s.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, k := range KeyNames() {
		key := "{sg}:" + k
		if !mr.Exists(key) {
			t.Fatalf("missing key %s", key)
		}
		if tag := hashTag(key); tag != "sg" {
			t.Fatalf("key %s hashes on %q, want sg", key, tag)
		}
	}
}

func TestRedisStoreKeysNeverExpire(t *testing.T) {
	s, mr, done := newRedisStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := s.Save(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, k := range KeyNames() {
		if ttl := mr.TTL("{sg}:" + k); ttl != 0 {
			t.Fatalf("key %s has ttl %v", k, ttl)
		}
	}

	mr.FastForward(48 * time.Hour)
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Complete() {
		t.Fatalf("expected snapshot to survive, got %+v", got)
	}
}

func TestRedisStorePing(t *testing.T) {
	s, _, done := newRedisStoreTest(t)
	defer done()

	if _, err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRedisStoreDefaultPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedis(rdb, "")
	if err := s.Save(context.Background(), sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("{" + DefaultRedisPrefix + "}:role") {
		t.Fatal("expected default prefix")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr, done := newRedisStoreTest(t)
	defer done()
	mr.Close()

	ctx := context.Background()
	if _, err := s.Load(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("load: expected ErrUnavailable, got %v", err)
	}
	if err := s.Save(ctx, sampleSnapshot()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("save: expected ErrUnavailable, got %v", err)
	}
	if err := s.Clear(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("clear: expected ErrUnavailable, got %v", err)
	}
	if _, err := s.Ping(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("ping: expected ErrUnavailable, got %v", err)
	}
}
