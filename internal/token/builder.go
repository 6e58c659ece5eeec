package token

import (
	"errors"
	"time"
)

// ErrNotAuthenticated is returned when claims are requested without an
// authenticated issuing-side session
var ErrNotAuthenticated = errors.New("not authenticated")

// LocalSession is the authenticated issuing-side session state that
// claims are copied from. UserID is the stable external identifier the
// board keys accounts on.
type LocalSession struct {
	UserID   string
	Username string
	Email    string
	FullName string
}

// Authenticated reports whether the session carries a usable identity.
func (s *LocalSession) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// Builder assembles claims for an authenticated local session. One claims
// object is built fresh per redirect and never persisted.
type Builder struct {
	system string
	ttl    time.Duration
}

// NewBuilder creates a builder stamping the given issuing system tag.
// A zero ttl falls back to DefaultTTL.
func NewBuilder(system string, ttl time.Duration) *Builder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Builder{system: system, ttl: ttl}
}

// Build copies identity fields out of the session and stamps the validity
// window. The caller is responsible for having checked authentication and
// redirected to login otherwise; an unauthenticated session here is a bug
// surfaced as ErrNotAuthenticated.
func (b *Builder) Build(sess *LocalSession) (*Claims, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	fullName := sess.FullName
	if fullName == "" {
		fullName = sess.Username
	}

	now := time.Now()
	return &Claims{
		ExternalID: sess.UserID,
		Username:   sess.Username,
		Email:      sess.Email,
		FullName:   fullName,
		System:     b.system,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(b.ttl).Unix(),
	}, nil
}
