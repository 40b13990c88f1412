package sessiongate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/store"
	"github.com/coursedesk/sessiongate/token"
)

var testSecret = []byte("sessiongate-test-secret-0123456789")

func mintToken(t *testing.T, roleName string, ttl time.Duration) string {
	t.Helper()
	iss, err := token.NewIssuer(token.IssuerConfig{
		TTL:           time.Hour,
		SigningMethod: token.MethodHS256,
		PrivateKey:    testSecret,
		Issuer:        "sessiongate-test",
	})
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	raw, err := iss.IssueWithTTL(token.Subject{ID: "u-" + roleName, Role: roleName, Name: roleName + " User"}, ttl)
	if err != nil {
		t.Fatalf("IssueWithTTL: %v", err)
	}
	return raw
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note)
}

func (n *recordingNotifier) Notes() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notes...)
}

// fakeAuth answers logins with a fixed response or error and counts calls.
type fakeAuth struct {
	mu    sync.Mutex
	resp  LoginResponse
	err   error
	delay time.Duration
	calls int
}

func (f *fakeAuth) Login(ctx context.Context, _ Credentials) (LoginResponse, error) {
	f.mu.Lock()
	f.calls++
	resp, err, delay := f.resp, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return LoginResponse{}, ctx.Err()
		}
	}
	return resp, err
}

func (f *fakeAuth) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// faultyStore wraps a Memory store and fails selected operations.
type faultyStore struct {
	*store.Memory
	failLoad  bool
	failSave  bool
	failClear bool
}

var errInjected = errors.New("injected store fault")

func (s *faultyStore) Load(ctx context.Context) (store.Snapshot, error) {
	if s.failLoad {
		return store.Snapshot{}, errInjected
	}
	return s.Memory.Load(ctx)
}

func (s *faultyStore) Save(ctx context.Context, snap store.Snapshot) error {
	if s.failSave {
		return errInjected
	}
	return s.Memory.Save(ctx, snap)
}

func (s *faultyStore) Clear(ctx context.Context) error {
	if s.failClear {
		return errInjected
	}
	return s.Memory.Clear(ctx)
}

type harness struct {
	mgr      *Manager
	store    *store.Memory
	auth     *fakeAuth
	nav      *recordingNavigator
	notifier *recordingNotifier
	audit    *ChannelSink
}

func newHarness(t *testing.T, mutate func(*Config), st store.Store) *harness {
	t.Helper()
	mem := store.NewMemory()
	if st == nil {
		st = mem
	} else if fs, ok := st.(*faultyStore); ok {
		mem = fs.Memory
	} else if ms, ok := st.(*store.Memory); ok {
		mem = ms
	}

	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Audit.BufferSize = 64
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		store:    mem,
		auth:     &fakeAuth{},
		nav:      &recordingNavigator{},
		notifier: &recordingNotifier{},
		audit:    NewChannelSink(64),
	}
	mgr, err := New().
		WithConfig(cfg).
		WithStore(st).
		WithAuthenticator(h.auth).
		WithNavigator(h.nav).
		WithNotifier(h.notifier).
		WithLogger(logger.Discard()).
		WithAuditSink(h.audit).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	h.mgr = mgr
	return h
}

func (h *harness) seed(tok, roleName, profile string) {
	h.store.Seed(store.KeyToken, tok)
	h.store.Seed(store.KeyRole, roleName)
	h.store.Seed(store.KeyProfile, profile)
}

// assertStoreConsistent checks that the three keys are either all absent or all present
// and agree with each other.
func assertStoreConsistent(t *testing.T, m *store.Memory) {
	t.Helper()
	tok, hasTok := m.Get(store.KeyToken)
	r, hasRole := m.Get(store.KeyRole)
	_, hasProfile := m.Get(store.KeyProfile)

	if !hasTok && !hasRole && !hasProfile {
		return
	}
	if !(hasTok && hasRole && hasProfile) {
		t.Fatalf("partial snapshot: token=%v role=%v profile=%v", hasTok, hasRole, hasProfile)
	}
	claims, err := token.Decode(tok)
	if err != nil {
		t.Fatalf("stored token does not decode: %v", err)
	}
	if claims.Role != r {
		t.Fatalf("stored role %q disagrees with claim %q", r, claims.Role)
	}
}

func drainAudit(sink *ChannelSink) []AuditEvent {
	var out []AuditEvent
	for {
		select {
		case ev := <-sink.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}
