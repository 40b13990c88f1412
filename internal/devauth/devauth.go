// Package devauth is a development stand-in for the authentication collaborator. It
// verifies seeded users against bcrypt hashes and issues signed session tokens.
package devauth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/token"
)

// dummyHash keeps unknown-email logins as slow as wrong-password logins.
var dummyHash = []byte("$2a$10$g.L2nI52OAiN/O8Qk25SluXfK090sjsV2e9.j2y.Xy.Z2.a4.b6cK")

// User is a seeded account. Role is copied into the token verbatim, so it may name a
// role the session manager will refuse.
type User struct {
	ID       string
	Email    string
	Name     string
	Role     string
	Password string
}

type account struct {
	user User
	hash []byte
}

type Config struct {
	Issuer *token.Issuer
	Users  []User
	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

type Server struct {
	issuer   *token.Issuer
	accounts map[string]account
}

// DefaultUsers returns one account per role, all with password "password".
func DefaultUsers() []User {
	return []User{
		{ID: "1", Email: "admin@example.com", Name: "Ada Admin", Role: "Admin", Password: "password"},
		{ID: "2", Email: "manager@example.com", Name: "Max Manager", Role: "Manager", Password: "password"},
		{ID: "3", Email: "staff@example.com", Name: "Sam Staff", Role: "Staff", Password: "password"},
		{ID: "4", Email: "consultant@example.com", Name: "Cleo Consultant", Role: "Consultant", Password: "password"},
		{ID: "5", Email: "customer@example.com", Name: "Cam Customer", Role: "Customer", Password: "password"},
	}
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Issuer == nil {
		return nil, errors.New("devauth requires a token issuer")
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	s := &Server{issuer: cfg.Issuer, accounts: make(map[string]account, len(cfg.Users))}
	for _, u := range cfg.Users {
		email := normalizeEmail(u.Email)
		if email == "" {
			return nil, errors.New("devauth user requires an email")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, err
		}
		s.accounts[email] = account{user: u, hash: hash}
	}
	return s, nil
}

// Register mounts POST path on e.
func (s *Server) Register(e *echo.Echo, path string) {
	e.POST(path, s.handleLogin)
}

func (s *Server) handleLogin(c echo.Context) error {
	var creds sessiongate.Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	acct, ok := s.accounts[normalizeEmail(creds.Email)]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(creds.Password))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(creds.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}

	raw, err := s.issuer.Issue(token.Subject{
		ID:    acct.user.ID,
		Role:  acct.user.Role,
		Name:  acct.user.Name,
		Email: acct.user.Email,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "token issuance failed"})
	}

	return c.JSON(http.StatusOK, sessiongate.LoginResponse{
		Token: raw,
		Profile: sessiongate.Profile{
			ID:    acct.user.ID,
			Name:  acct.user.Name,
			Email: acct.user.Email,
		},
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
