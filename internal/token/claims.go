package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the validity window for bridge tokens. Kept deliberately
// short: the token rides in a redirect URL, so the window bounds replay
// exposure from referrer leaks and browser history.
const DefaultTTL = 60 * time.Second

// Claims is the identity payload carried across the bridge. The wire
// names match what the consuming side expects; iat/exp are unix seconds.
type Claims struct {
	ExternalID string `json:"external_id"` // stable ID in the issuing system, required
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	System     string `json:"system"` // issuing system tag, e.g. "main_system"
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
}

// Expired reports whether the claims are past their validity window at
// the given instant. A token is still valid at exactly exp.
func (c *Claims) Expired(now time.Time) bool {
	return now.Unix() > c.ExpiresAt
}

// jwt.Claims implementation so the encode path can hand these directly
// to golang-jwt for signing.

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.IssuedAt, 0)), nil
}

func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c *Claims) GetIssuer() (string, error) {
	return c.System, nil
}

func (c *Claims) GetSubject() (string, error) {
	return c.ExternalID, nil
}

func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}
