package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/guard"
	"github.com/coursedesk/sessiongate/logger"
	"github.com/coursedesk/sessiongate/policy"
	"github.com/coursedesk/sessiongate/store"
	"github.com/coursedesk/sessiongate/token"
)

func mint(t *testing.T, roleName string) string {
	t.Helper()
	iss, err := token.NewIssuer(token.IssuerConfig{TTL: time.Hour, SigningMethod: token.MethodHS256, PrivateKey: []byte("mw-secret")})
	require.NoError(t, err)
	raw, err := iss.Issue(token.Subject{ID: "u-1", Role: roleName, Name: roleName})
	require.NoError(t, err)
	return raw
}

func newManager(t *testing.T, roleName string, auth sessiongate.Authenticator) (*sessiongate.Manager, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	if roleName != "" {
		mem.Seed(store.KeyToken, mint(t, roleName))
		mem.Seed(store.KeyRole, roleName)
		mem.Seed(store.KeyProfile, `{"name":"Test","email":"test@example.com"}`)
	}
	if auth == nil {
		auth = sessiongate.AuthenticatorFunc(func(context.Context, sessiongate.Credentials) (sessiongate.LoginResponse, error) {
			return sessiongate.LoginResponse{}, sessiongate.ErrCredentialsRejected
		})
	}
	mgr, err := sessiongate.New().
		WithStore(mem).
		WithAuthenticator(auth).
		WithLogger(logger.Discard()).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, mem
}

func newServer(mgr *sessiongate.Manager) *echo.Echo {
	e := echo.New()
	ctrl := guard.NewController(mgr)
	Mount(e, ctrl, guard.NewGate(mgr), Screens{})
	RegisterSessionAPI(e, "/session", mgr)
	return e
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoadingBeforeInitialize(t *testing.T) {
	mgr, _ := newManager(t, "Admin", nil)
	e := newServer(mgr)

	for _, path := range []string{"/", "/login", "/admin", "/customer/catalog"} {
		rec := serve(e, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"), path)
	}
}

func TestGuardedRoutes(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		path     string
		wantCode int
		wantLoc  string
		wantBody string
	}{
		{name: "guest home", path: "/", wantCode: http.StatusOK, wantBody: "home"},
		{name: "no role redirects to login", path: "/manager", wantCode: http.StatusFound, wantLoc: "/login"},
		{name: "admin allowed", role: "Admin", path: "/admin/users", wantCode: http.StatusOK, wantBody: "admin"},
		{name: "admin on shared screens", role: "Admin", path: "/customer", wantCode: http.StatusOK, wantBody: "customer"},
		{name: "customer denied admin", role: "Customer", path: "/admin", wantCode: http.StatusFound, wantLoc: "/unauthorized"},
		{name: "staff denied consultant", role: "Staff", path: "/consultant/x", wantCode: http.StatusFound, wantLoc: "/unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, _ := newManager(t, tt.role, nil)
			mgr.Initialize(context.Background())
			e := newServer(mgr)

			rec := serve(e, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get(echo.HeaderLocation))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestDeniedRequestNeverReachesHandler(t *testing.T) {
	mgr, _ := newManager(t, "Customer", nil)
	mgr.Initialize(context.Background())

	called := false
	e := echo.New()
	e.GET("/probe", func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}, RequireSubtree(guard.NewController(mgr), policy.AdminArea, nil))

	rec := serve(e, http.MethodGet, "/probe", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.False(t, called)
	assert.Equal(t, uint64(1), mgr.Metrics().Value(sessiongate.MetricAccessDenied))
}

func TestSessionAPI(t *testing.T) {
	tok := mint(t, "Staff")
	auth := sessiongate.AuthenticatorFunc(func(_ context.Context, creds sessiongate.Credentials) (sessiongate.LoginResponse, error) {
		if creds.Password != "right" {
			return sessiongate.LoginResponse{}, sessiongate.ErrCredentialsRejected
		}
		return sessiongate.LoginResponse{Token: tok, Profile: sessiongate.Profile{Name: "Sam"}}, nil
	})
	mgr, mem := newManager(t, "", auth)
	mgr.Initialize(context.Background())
	e := newServer(mgr)

	rec := serve(e, http.MethodPost, "/session/login", `{"email":"sam@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodPost, "/session/login", `{"email":"bad","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodPost, "/session/login", `{"email":"sam@example.com","password":"right"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"Staff"`)
	assert.Equal(t, 3, mem.Len())

	rec = serve(e, http.MethodGet, "/staff", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(e, http.MethodPost, "/session/login", `{"email":"sam@example.com","password":"right"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(e, http.MethodPost, "/session/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unauthenticated"`)
	assert.Equal(t, 0, mem.Len())

	rec = serve(e, http.MethodGet, "/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loading":false`)
}
