package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/saltmarshlabs/crossgate/internal/pkg/idgen"
)

// ErrSessionNotFound is returned when no live session exists for an ID
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL is how long a board session lives without renewal.
const DefaultTTL = 24 * time.Hour

// Session is a board-side session record, keyed by an opaque ID. The
// protocol layer never assumes how the ID reaches the client; the HTTP
// layer happens to use a cookie, but the store itself is transport-blind.
type Session struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	System     string    `json:"system"`      // issuing system of the identity that opened it
	ExternalID string    `json:"external_id"` // external identity that opened it
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the key-value session abstraction: get/put/destroy keyed by
// opaque session ID, with a pluggable backing store (in-memory for tests
// and dev, redis for production).
type Store interface {
	// Get returns the live session for the ID, or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores the session under its ID with the given TTL.
	Put(ctx context.Context, sess *Session, ttl time.Duration) error

	// Destroy removes the session. Destroying a missing session is not an error.
	Destroy(ctx context.Context, id string) error

	// DestroyByAccount removes every session bound to the account and
	// returns how many were removed. Used by the external logout API.
	DestroyByAccount(ctx context.Context, accountID string) (int, error)
}

// NewSession creates a session record for an account with a fresh opaque ID.
func NewSession(accountID, system, externalID, username string, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	id, err := idgen.GenerateOpaqueID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:         id,
		AccountID:  accountID,
		System:     system,
		ExternalID: externalID,
		Username:   username,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}, nil
}
