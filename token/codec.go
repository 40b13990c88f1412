package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed wraps every decoding fault returned by Decode.
var ErrMalformed = errors.New("malformed token")

// Claims is the payload of a session token. Role is the raw claim string.
type Claims struct {
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Decode parses the three-segment token and returns its claims without checking the
// signature or any time-based claim.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformed)
	}

	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(raw, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformed)
	}
	return claims, nil
}

// Expired reports whether the exp claim lies before now-leeway. Tokens without exp
// never expire.
func (c *Claims) Expired(now time.Time, leeway time.Duration) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return now.Add(-leeway).After(c.ExpiresAt.Time)
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c == nil || c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
