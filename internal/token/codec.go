package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token is not three dot-separated segments
	ErrMalformedToken = errors.New("malformed token")

	// ErrBadSignature is returned when the transmitted signature does not match
	ErrBadSignature = errors.New("bad token signature")

	// ErrMalformedPayload is returned when the payload segment cannot be decoded
	ErrMalformedPayload = errors.New("malformed token payload")

	// ErrTokenExpired is returned when the token is past its exp claim
	ErrTokenExpired = errors.New("token expired")
)

// Codec signs and verifies bridge tokens with a shared HMAC-SHA256 secret.
// The secret is injected at construction; there is no ambient secret lookup,
// so tests can run codecs with distinct secrets side by side.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec bound to the shared secret. An empty secret is a
// misconfiguration, not a per-request condition: callers must treat this
// error as fatal at startup rather than serve traffic with an empty key.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("bridge secret is empty")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Encode signs the claims into the three-segment wire form
// base64url(header).base64url(payload).base64url(signature) with header
// {"alg":"HS256","typ":"JWT"} and no padding.
func (c *Codec) Encode(claims *Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeAndVerify checks a token and returns its claims. Checks run in a
// fixed order: structure, then signature, then payload, then expiry. The
// signature is verified before the payload is parsed, so untrusted bytes
// are never JSON-decoded. Callers must collapse all of these errors into
// one generic failure for end users.
func (c *Codec) DecodeAndVerify(tokenString string) (*Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformedToken
	}

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrBadSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if claims.ExternalID == "" {
		return nil, fmt.Errorf("%w: missing external_id", ErrMalformedPayload)
	}

	if claims.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

// LogoutKey derives the api key for the server-to-server external logout
// endpoint: hex(HMAC-SHA256(external_id + system)) under the shared secret.
func (c *Codec) LogoutKey(externalID, system string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(externalID + system))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyLogoutKey checks a presented api key in constant time.
func (c *Codec) VerifyLogoutKey(externalID, system, key string) bool {
	expected := c.LogoutKey(externalID, system)
	return hmac.Equal([]byte(key), []byte(expected))
}
