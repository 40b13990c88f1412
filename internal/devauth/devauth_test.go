package devauth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/authclient"
	"github.com/coursedesk/sessiongate/token"
)

func newTestServer(t *testing.T, users []User) *httptest.Server {
	t.Helper()
	iss, err := token.NewIssuer(token.IssuerConfig{TTL: time.Hour, SigningMethod: token.MethodHS256, PrivateKey: []byte("dev")})
	require.NoError(t, err)
	srv, err := NewServer(Config{Issuer: iss, Users: users, Cost: bcrypt.MinCost})
	require.NoError(t, err)

	e := echo.New()
	srv.Register(e, "/auth/login")
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, baseURL string) *authclient.Client {
	t.Helper()
	c, err := authclient.New(sessiongate.AuthConfig{BaseURL: baseURL, LoginPath: "/auth/login", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestDevAuthIssuesRoleTokens(t *testing.T) {
	ts := newTestServer(t, DefaultUsers())
	client := newClient(t, ts.URL)

	for _, u := range DefaultUsers() {
		resp, err := client.Login(context.Background(), sessiongate.Credentials{Email: u.Email, Password: u.Password})
		require.NoError(t, err, u.Email)

		claims, err := token.Decode(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, u.Role, claims.Role)
		assert.Equal(t, u.ID, claims.Subject)
		assert.Equal(t, u.Name, resp.Profile.Name)
	}
}

func TestDevAuthRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t, DefaultUsers())
	client := newClient(t, ts.URL)

	_, err := client.Login(context.Background(), sessiongate.Credentials{Email: "admin@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, sessiongate.ErrCredentialsRejected)

	_, err = client.Login(context.Background(), sessiongate.Credentials{Email: "ghost@example.com", Password: "password"})
	assert.ErrorIs(t, err, sessiongate.ErrCredentialsRejected)
}

func TestDevAuthEmailIsCaseInsensitive(t *testing.T) {
	ts := newTestServer(t, DefaultUsers())
	_, err := newClient(t, ts.URL).Login(context.Background(), sessiongate.Credentials{Email: " Staff@Example.com ", Password: "password"})
	assert.NoError(t, err)
}

func TestNewServerValidation(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)

	iss, err := token.NewIssuer(token.IssuerConfig{TTL: time.Hour, SigningMethod: token.MethodHS256, PrivateKey: []byte("dev")})
	require.NoError(t, err)
	_, err = NewServer(Config{Issuer: iss, Users: []User{{Password: "x"}}, Cost: bcrypt.MinCost})
	assert.Error(t, err)
}
