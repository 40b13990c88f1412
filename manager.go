package sessiongate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coursedesk/sessiongate/internal/audit"
	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/policy"
	"github.com/coursedesk/sessiongate/role"
	"github.com/coursedesk/sessiongate/store"
	"github.com/coursedesk/sessiongate/token"
)

var errStrayKeys = errors.New("role or profile persisted without token")

// Manager owns the current session. All transitions go through its methods; readers get
// value copies.
type Manager struct {
	cfg       Config
	store     store.Store
	auth      Authenticator
	navigator Navigator
	notifier  Notifier
	log       logger.Logger
	audit     *audit.Dispatcher
	metrics   *Metrics
	now       func() time.Time
	closers   []func() error

	// txMu serializes rehydration, login, logout and profile updates including their I/O.
	txMu      sync.Mutex
	startOnce sync.Once
	ready     chan struct{}

	mu        sync.RWMutex
	status    Status
	token     string
	role      role.Role
	profile   *Profile
	expiresAt time.Time
}

type session struct {
	token     string
	role      role.Role
	profile   Profile
	expiresAt time.Time
}

// Start marks the manager Loading and rehydrates in the background. Only the first call
// to Start or Initialize has an effect.
func (m *Manager) Start(ctx context.Context) {
	m.begin(ctx, true)
}

// Initialize rehydrates the session from storage, or waits for a rehydration already
// started, and returns the resolved state. If ctx ends first the returned state may still
// be loading.
func (m *Manager) Initialize(ctx context.Context) State {
	m.begin(ctx, false)
	select {
	case <-m.ready:
	case <-ctx.Done():
	}
	return m.State()
}

// Ready is closed once rehydration has resolved.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

func (m *Manager) begin(ctx context.Context, async bool) {
	m.startOnce.Do(func() {
		m.mu.Lock()
		m.status = StatusLoading
		m.mu.Unlock()
		if async {
			go m.rehydrate(ctx)
			return
		}
		m.rehydrate(ctx)
	})
}

func (m *Manager) rehydrate(ctx context.Context) {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	defer close(m.ready)

	snap, err := m.store.Load(ctx)
	if err != nil {
		// Storage is left as is: a read fault says nothing about the snapshot itself.
		m.metrics.Inc(MetricStoreFailure)
		m.log.Warn("reading persisted session failed", "error", err)
		m.commit(nil)
		return
	}
	if snap.Empty() {
		m.commit(nil)
		m.metrics.Inc(MetricRehydrateEmpty)
		m.log.Debug("no persisted session")
		return
	}

	sess, err := m.restore(snap)
	if err != nil {
		m.rejectSnapshot(ctx, err, snap.Role)
		return
	}

	m.commit(sess)
	m.metrics.Inc(MetricRehydrateRestored)
	m.emitAudit(ctx, audit.Event{
		EventType: AuditSessionRestored,
		Subject:   sess.profile.ID,
		Role:      sess.role.String(),
		Success:   true,
	})
	m.log.Info("session restored", "role", sess.role)
}

func (m *Manager) restore(snap store.Snapshot) (*session, error) {
	if snap.Token == "" {
		return nil, errStrayKeys
	}
	claims, err := token.Decode(snap.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	r, err := role.Parse(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoleInvalid, err)
	}
	if snap.Role != claims.Role {
		return nil, fmt.Errorf("%w: stored role %q does not match token claim %q", ErrRoleInvalid, snap.Role, claims.Role)
	}
	if snap.Profile == "" {
		return nil, fmt.Errorf("%w: missing", ErrInvalidProfile)
	}
	var p Profile
	if err := json.Unmarshal([]byte(snap.Profile), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if m.cfg.Session.RejectExpired && claims.Expired(m.now(), m.cfg.Session.ExpiryLeeway) {
		return nil, fmt.Errorf("%w: at %s", ErrTokenExpired, claims.Expiry().Format(time.RFC3339))
	}
	return &session{token: snap.Token, role: r, profile: p, expiresAt: claims.Expiry()}, nil
}

// rejectSnapshot collapses to logged out and wipes whatever was persisted. The fault is
// recorded but never returned.
func (m *Manager) rejectSnapshot(ctx context.Context, cause error, storedRole string) {
	m.metrics.Inc(MetricRehydrateRejected)
	m.log.Warn("discarding persisted session", "error", cause)
	m.emitAudit(ctx, audit.Event{
		EventType: AuditSessionRejected,
		Role:      storedRole,
		Success:   false,
		Error:     cause.Error(),
	})

	if err := m.store.Clear(ctx); err != nil {
		m.metrics.Inc(MetricStoreFailure)
		m.log.Error("clearing persisted session failed", "error", err)
	}
	m.commit(nil)
}

// Login exchanges credentials for a session. On success the token, role and profile are
// persisted together before memory changes. On failure nothing changes and exactly one
// error notification is sent.
func (m *Manager) Login(ctx context.Context, email, password string) (*Profile, error) {
	start := m.now()
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}

	if err := m.awaitReady(ctx); err != nil {
		return nil, m.failLogin(ctx, creds, start, err)
	}
	if err := validateCredentials(creds); err != nil {
		return nil, m.failLogin(ctx, creds, start, err)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if m.Status() == StatusAuthenticated {
		return nil, m.failLogin(ctx, creds, start, ErrAlreadyAuthenticated)
	}

	resp, err := m.callAuthenticator(ctx, creds)
	if err != nil {
		return nil, m.failLogin(ctx, creds, start, err)
	}

	sess, err := m.sessionFromResponse(resp)
	if err != nil {
		return nil, m.failLogin(ctx, creds, start, err)
	}

	if err := m.persist(ctx, sess); err != nil {
		return nil, m.failLogin(ctx, creds, start, err)
	}
	m.commit(sess)

	m.metrics.Inc(MetricLoginSuccess)
	m.metrics.Observe(MetricLoginLatency, m.now().Sub(start))
	m.emitAudit(ctx, audit.Event{
		EventType: AuditLoginSuccess,
		Subject:   sess.profile.ID,
		Role:      sess.role.String(),
		Success:   true,
	})
	m.log.Info("login succeeded", "role", sess.role)

	m.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: welcomeMessage(sess)})
	if m.cfg.Session.NavigateOnLogin {
		m.navigator.Navigate(ctx, policy.Home(sess.role))
	}

	p := sess.profile
	return &p, nil
}

func (m *Manager) callAuthenticator(ctx context.Context, creds Credentials) (LoginResponse, error) {
	callCtx := ctx
	if m.cfg.Session.LoginTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, m.cfg.Session.LoginTimeout)
		defer cancel()
	}

	resp, err := m.auth.Login(callCtx, creds)
	if err == nil {
		return resp, nil
	}
	switch {
	case errors.Is(err, ErrCredentialsRejected), errors.Is(err, ErrAuthUnavailable):
		return LoginResponse{}, err
	case callCtx.Err() != nil && !errors.Is(err, callCtx.Err()):
		return LoginResponse{}, fmt.Errorf("%w: %w: %v", ErrAuthUnavailable, callCtx.Err(), err)
	default:
		return LoginResponse{}, fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
	}
}

func (m *Manager) sessionFromResponse(resp LoginResponse) (*session, error) {
	claims, err := token.Decode(resp.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	r, err := role.Parse(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoleInvalid, err)
	}
	if m.cfg.Session.RejectExpired && claims.Expired(m.now(), m.cfg.Session.ExpiryLeeway) {
		return nil, ErrTokenExpired
	}

	p := resp.Profile
	if p.ID == "" {
		p.ID = claims.Subject
	}
	if p.Name == "" {
		p.Name = claims.Name
	}
	if p.Email == "" {
		p.Email = claims.Email
	}
	return &session{token: resp.Token, role: r, profile: p, expiresAt: claims.Expiry()}, nil
}

func (m *Manager) persist(ctx context.Context, sess *session) error {
	doc, err := json.Marshal(sess.profile)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	err = m.store.Save(ctx, store.Snapshot{
		Token:   sess.token,
		Role:    sess.role.String(),
		Profile: string(doc),
	})
	if err != nil {
		m.metrics.Inc(MetricStoreFailure)
		m.log.Error("persisting session failed", "error", err)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Manager) failLogin(ctx context.Context, creds Credentials, start time.Time, err error) error {
	m.metrics.Inc(MetricLoginFailure)
	m.metrics.Observe(MetricLoginLatency, m.now().Sub(start))
	m.emitAudit(ctx, audit.Event{
		EventType: AuditLoginFailure,
		Success:   false,
		Error:     err.Error(),
		Metadata:  map[string]string{"email": creds.Email},
	})
	m.log.Info("login failed", "error", err)
	m.notifier.Notify(ctx, Notification{Level: LevelError, Message: loginFailureMessage(err)})
	return err
}

// Logout ends the session. Storage is cleared before memory; if clearing fails the
// session stays active and ErrStoreUnavailable is returned. Logging out while already
// logged out only navigates to the login screen.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.awaitReady(ctx); err != nil {
		m.notifier.Notify(ctx, Notification{Level: LevelError, Message: "Sign-out is not available yet."})
		return err
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	prev := m.State()
	if prev.Status != StatusAuthenticated {
		m.navigator.Navigate(ctx, policy.LoginPath)
		return nil
	}

	if err := m.store.Clear(ctx); err != nil {
		m.metrics.Inc(MetricStoreFailure)
		m.log.Error("clearing session failed", "error", err)
		m.emitAudit(ctx, audit.Event{
			EventType: AuditLogout,
			Subject:   profileID(prev.Profile),
			Role:      prev.Role.String(),
			Success:   false,
			Error:     err.Error(),
		})
		m.notifier.Notify(ctx, Notification{Level: LevelError, Message: "Sign-out failed. Please try again."})
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	m.commit(nil)

	m.metrics.Inc(MetricLogout)
	m.emitAudit(ctx, audit.Event{
		EventType: AuditLogout,
		Subject:   profileID(prev.Profile),
		Role:      prev.Role.String(),
		Success:   true,
	})
	m.log.Info("logged out", "role", prev.Role)

	m.navigator.Navigate(ctx, policy.LoginPath)
	m.notifier.Notify(ctx, Notification{Level: LevelSuccess, Message: "You have been signed out."})
	return nil
}

// UpdateProfile replaces the profile of the active session. The token and role are
// rewritten unchanged alongside it.
func (m *Manager) UpdateProfile(ctx context.Context, p Profile) error {
	if err := m.awaitReady(ctx); err != nil {
		return err
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	if m.status != StatusAuthenticated {
		m.mu.RUnlock()
		return ErrNotAuthenticated
	}
	next := &session{token: m.token, role: m.role, profile: p, expiresAt: m.expiresAt}
	m.mu.RUnlock()

	if err := m.persist(ctx, next); err != nil {
		return err
	}

	m.mu.Lock()
	m.profile = &p
	m.mu.Unlock()

	m.metrics.Inc(MetricProfileUpdated)
	m.emitAudit(ctx, audit.Event{
		EventType: AuditProfileUpdated,
		Subject:   p.ID,
		Role:      next.role.String(),
		Success:   true,
	})
	return nil
}

func (m *Manager) awaitReady(ctx context.Context) error {
	if m.Status() == StatusUninitialized {
		return ErrNotReady
	}
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// commit swaps the in-memory session. A nil session means logged out.
func (m *Manager) commit(sess *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess == nil {
		m.status = StatusUnauthenticated
		m.token = ""
		m.role = role.None
		m.profile = nil
		m.expiresAt = time.Time{}
		return
	}
	p := sess.profile
	m.status = StatusAuthenticated
	m.token = sess.token
	m.role = sess.role
	m.profile = &p
	m.expiresAt = sess.expiresAt
}

func (m *Manager) emitAudit(ctx context.Context, ev audit.Event) {
	m.audit.Emit(ctx, ev)
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := State{
		Status:  m.status,
		Token:   m.token,
		Role:    m.role,
		Loading: !m.status.Resolved(),
	}
	if m.profile != nil {
		p := *m.profile
		s.Profile = &p
	}
	return s
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Role returns the current role, or role.None when logged out or still loading.
func (m *Manager) Role() role.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.role
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Profile returns a copy of the current profile, or nil when logged out.
func (m *Manager) Profile() *Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.profile == nil {
		return nil
	}
	p := *m.profile
	return &p
}

func (m *Manager) IsLoading() bool {
	return !m.Status().Resolved()
}

// ExpiresAt returns the exp claim of the active token, or the zero time.
func (m *Manager) ExpiresAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expiresAt
}

// Metrics exposes the manager's counters.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped returns the number of audit events lost to backpressure.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// Close flushes pending audit events and releases backends opened by Build.
func (m *Manager) Close() error {
	m.audit.Close()
	var errs []error
	for _, c := range m.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func profileID(p *Profile) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func welcomeMessage(sess *session) string {
	if sess.profile.Name != "" {
		return fmt.Sprintf("Welcome, %s.", sess.profile.Name)
	}
	return fmt.Sprintf("Signed in as %s.", sess.role)
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Enter a valid email and password."
	case errors.Is(err, ErrCredentialsRejected):
		return "Email or password is incorrect."
	case errors.Is(err, ErrAlreadyAuthenticated):
		return "You are already signed in. Sign out first."
	case errors.Is(err, ErrRoleInvalid):
		return "Your account has no access to this application."
	case errors.Is(err, ErrTokenMalformed), errors.Is(err, ErrTokenExpired):
		return "The sign-in response was not usable. Please try again."
	case errors.Is(err, ErrStoreUnavailable):
		return "Your session could not be saved. Please try again."
	case errors.Is(err, ErrNotReady):
		return "Still loading. Please try again in a moment."
	default:
		return "Sign-in service is unavailable. Please try again later."
	}
}
