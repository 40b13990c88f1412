package sessiongate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/coursedesk/sessiongate/role"
	"github.com/coursedesk/sessiongate/store"
)

func TestBuildRequiresAuthenticator(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without authenticator")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithAuthenticator(&fakeAuth{})
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("second Build must fail")
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "nope"
	if _, err := New().WithConfig(cfg).WithAuthenticator(&fakeAuth{}).Build(); err == nil {
		t.Fatal("expected config error")
	}
}

func TestBuildOpensFileStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = BackendFile
	cfg.Store.FilePath = filepath.Join(t.TempDir(), "session.json")

	auth := &fakeAuth{resp: LoginResponse{Token: mintToken(t, "Manager", time.Hour), Profile: Profile{Name: "M"}}}
	m, err := New().WithConfig(cfg).WithAuthenticator(auth).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close()
	m.Initialize(context.Background())
	if _, err := m.Login(context.Background(), "m@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	fs, err := store.NewFile(cfg.Store.FilePath)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	snap, err := fs.Load(context.Background())
	if err != nil || snap.Role != "Manager" {
		t.Fatalf("unexpected persisted snapshot %+v (%v)", snap, err)
	}
}

func TestBuildOpensRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()

	cfg := DefaultConfig()
	cfg.Store.Backend = BackendRedis
	cfg.Store.RedisAddr = mr.Addr()
	cfg.Store.Prefix = "sg-test"

	tok := mintToken(t, "Admin", time.Hour)
	mr.Set("{sg-test}:token", tok)
	mr.Set("{sg-test}:role", "Admin")
	mr.Set("{sg-test}:profile", managerProfile)

	m, err := New().WithConfig(cfg).WithAuthenticator(&fakeAuth{}).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	st := m.Initialize(context.Background())
	if st.Role != role.Admin {
		t.Fatalf("expected Admin from redis, got %s", st.Role)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRedisSessionOutlivesTokenExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()

	cases := []struct {
		name          string
		ttl           time.Duration
		rejectExpired bool
		advance       time.Duration
	}{
		{name: "short lived token", ttl: 2 * time.Minute, rejectExpired: true, advance: 3 * time.Minute},
		{name: "expired token accepted", ttl: -time.Minute, rejectExpired: false, advance: 5 * time.Second},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Store.Backend = BackendRedis
			cfg.Store.RedisAddr = mr.Addr()
			cfg.Store.Prefix = "sg-expiry-" + string(rune('a'+i))
			cfg.Session.RejectExpired = tc.rejectExpired

			auth := &fakeAuth{resp: LoginResponse{Token: mintToken(t, "Customer", tc.ttl), Profile: Profile{Name: "C"}}}
			m, err := New().WithConfig(cfg).WithAuthenticator(auth).Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			defer m.Close()
			ctx := context.Background()
			m.Initialize(ctx)
			if _, err := m.Login(ctx, "c@example.com", "pw"); err != nil {
				t.Fatalf("Login: %v", err)
			}

			mr.FastForward(tc.advance)

			if m.Status() != StatusAuthenticated {
				t.Fatalf("expected Authenticated, got %s", m.Status())
			}
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			defer rdb.Close()
			snap, err := store.NewRedis(rdb, cfg.Store.Prefix).Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !snap.Complete() || snap.Token != m.Token() || snap.Role != "Customer" {
				t.Fatalf("storage drifted from memory: %+v", snap)
			}
		})
	}
}
