package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/role"
	"github.com/coursedesk/sessiongate/store"
	"github.com/coursedesk/sessiongate/token"
)

type clientState struct {
	store *store.Redis
	sub   token.Subject
	mu    sync.Mutex
}

func main() {
	var (
		clients     = flag.Int("clients", 10000, "number of persisted sessions to seed")
		concurrency = flag.Int("concurrency", 128, "number of concurrent workers")
		ops         = flag.Int("ops", 50000, "operations per phase (rehydrate + rotate)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, SESSIONGATE_STORE_REDIS_ADDR or miniredis is used")
		prefix      = flag.String("prefix", "lt", "session key prefix")
	)
	flag.Parse()

	if *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv(sessiongate.EnvPrefix + "STORE_REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	rtt, err := store.NewRedis(client, *prefix).Ping(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis not ready: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("redis ready (rtt %s)\n", rtt.Round(time.Microsecond))

	issuer, err := token.NewIssuer(token.IssuerConfig{
		TTL:           24 * time.Hour,
		SigningMethod: token.MethodHS256,
		PrivateKey:    []byte("loadtest"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issuer: %v\n", err)
		os.Exit(1)
	}

	roles := role.All()
	states := make([]clientState, *clients)
	fmt.Printf("seeding %d sessions...\n", *clients)
	startSeed := time.Now()
	for i := range states {
		r := roles[i%len(roles)]
		states[i].store = store.NewRedis(client, fmt.Sprintf("%s:%d", *prefix, i))
		states[i].sub = token.Subject{
			ID:    fmt.Sprintf("u-%d", i),
			Role:  r.String(),
			Name:  fmt.Sprintf("User %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}
		if err := save(ctx, issuer, &states[i]); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	rehydrateStats := runPhase(*ops, *concurrency, len(states), func(i int) error {
		return rehydrate(ctx, &states[i])
	})
	rotateStats := runPhase(*ops, *concurrency, len(states), func(i int) error {
		s := &states[i]
		s.mu.Lock()
		defer s.mu.Unlock()
		return save(ctx, issuer, s)
	})

	fmt.Println("---- results ----")
	printStats("rehydrate", rehydrateStats)
	printStats("rotate", rotateStats)
}

// save writes a freshly issued snapshot for s, as a login would.
func save(ctx context.Context, issuer *token.Issuer, s *clientState) error {
	raw, err := issuer.Issue(s.sub)
	if err != nil {
		return err
	}
	profile, err := json.Marshal(sessiongate.Profile{ID: s.sub.ID, Name: s.sub.Name, Email: s.sub.Email})
	if err != nil {
		return err
	}
	return s.store.Save(ctx, store.Snapshot{
		Token:   raw,
		Role:    s.sub.Role,
		Profile: string(profile),
	})
}

var unavailable = sessiongate.AuthenticatorFunc(func(context.Context, sessiongate.Credentials) (sessiongate.LoginResponse, error) {
	return sessiongate.LoginResponse{}, sessiongate.ErrAuthUnavailable
})

// rehydrate builds a manager over s and fails unless it restores the seeded role.
func rehydrate(ctx context.Context, s *clientState) error {
	mgr, err := sessiongate.New().
		WithStore(s.store).
		WithAuthenticator(unavailable).
		WithLogger(logger.Discard()).
		Build()
	if err != nil {
		return err
	}
	defer mgr.Close()

	st := mgr.Initialize(ctx)
	if !st.Authenticated() || st.Role.String() != s.sub.Role {
		return fmt.Errorf("session %s not restored: %s", s.sub.ID, st.Status)
	}
	return nil
}

func runPhase(ops, concurrency, n int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r.Intn(n))
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
