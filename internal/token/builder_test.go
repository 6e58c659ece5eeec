package token

import (
	"errors"
	"testing"
	"time"
)

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("main_system", 60*time.Second)

	before := time.Now().Unix()
	claims, err := b.Build(&LocalSession{
		UserID:   "EXT00001",
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Example",
	})
	after := time.Now().Unix()

	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if claims.ExternalID != "EXT00001" {
		t.Errorf("expected external_id=EXT00001, got %q", claims.ExternalID)
	}
	if claims.System != "main_system" {
		t.Errorf("expected system=main_system, got %q", claims.System)
	}
	if claims.IssuedAt < before || claims.IssuedAt > after {
		t.Errorf("iat %d outside [%d, %d]", claims.IssuedAt, before, after)
	}
	if claims.ExpiresAt != claims.IssuedAt+60 {
		t.Errorf("expected exp = iat+60, got iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestBuilder_FullNameFallback(t *testing.T) {
	b := NewBuilder("main_system", time.Minute)

	claims, err := b.Build(&LocalSession{
		UserID:   "EXT00002",
		Username: "bob",
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if claims.FullName != "bob" {
		t.Errorf("expected full_name to fall back to username, got %q", claims.FullName)
	}
	if claims.Email != "" {
		t.Errorf("expected empty email, got %q", claims.Email)
	}
}

func TestBuilder_NotAuthenticated(t *testing.T) {
	b := NewBuilder("main_system", time.Minute)

	for _, sess := range []*LocalSession{
		nil,
		{Username: "alice"}, // no UserID
	} {
		_, err := b.Build(sess)
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("session %+v: expected ErrNotAuthenticated, got %v", sess, err)
		}
	}
}

func TestBuilder_DefaultTTL(t *testing.T) {
	b := NewBuilder("main_system", 0)

	claims, err := b.Build(&LocalSession{UserID: "EXT00003", Username: "carol"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if claims.ExpiresAt-claims.IssuedAt != int64(DefaultTTL/time.Second) {
		t.Errorf("expected default TTL of %v, got %d seconds", DefaultTTL, claims.ExpiresAt-claims.IssuedAt)
	}
}

func TestClaims_ExpiredBoundary(t *testing.T) {
	// Issued at t=1000 with TTL 60: valid through t=1060, expired at t=1061.
	claims := &Claims{ExternalID: "EXT00001", IssuedAt: 1000, ExpiresAt: 1060}

	if claims.Expired(time.Unix(1030, 0)) {
		t.Error("expected claims valid at t=1030")
	}
	if claims.Expired(time.Unix(1060, 0)) {
		t.Error("expected claims still valid at exactly exp")
	}
	if !claims.Expired(time.Unix(1061, 0)) {
		t.Error("expected claims expired at t=1061")
	}
}
