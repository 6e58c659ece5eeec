package services

import (
	"context"
	"testing"
	"time"

	"github.com/saltmarshlabs/crossgate/internal/infrastructure/database/memory"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

func bridgeClaims(externalID, username string) *token.Claims {
	now := time.Now()
	return &token.Claims{
		ExternalID: externalID,
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "Test " + username,
		System:     "main_system",
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(time.Minute).Unix(),
	}
}

func TestResolveExternal_ProvisionsOnFirstContact(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	account, provisioned, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00001", "alice"))
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}
	if !provisioned {
		t.Error("expected account to be provisioned")
	}
	if account.System != "main_system" || account.ExternalID != "EXT00001" {
		t.Errorf("unexpected identity linkage: %+v", account)
	}
	if account.Username != "alice" {
		t.Errorf("expected username alice, got %q", account.Username)
	}
	if account.FullName != "Test alice" {
		t.Errorf("expected full name from claims, got %q", account.FullName)
	}
}

func TestResolveExternal_Idempotent(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	first, _, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00001", "alice"))
	if err != nil {
		t.Fatalf("first ResolveExternal: %v", err)
	}

	// Same token presented twice within TTL: both succeed, same account.
	second, provisioned, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00001", "alice"))
	if err != nil {
		t.Fatalf("second ResolveExternal: %v", err)
	}
	if provisioned {
		t.Error("second resolve should not provision")
	}
	if second.ID != first.ID {
		t.Errorf("expected same account, got %q and %q", first.ID, second.ID)
	}
}

func TestResolveExternal_MappingKeyIsSystemPlusExternalID(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	a, _, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00001", "alice"))
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}

	// Same username, different external ID: must be a different account.
	other := bridgeClaims("EXT00002", "alice")
	b, _, err := svc.ResolveExternal(ctx, other)
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}
	if a.ID == b.ID {
		t.Error("distinct external identities mapped to one account")
	}

	// Same external ID, different claimed username: same account.
	renamed := bridgeClaims("EXT00001", "alice-renamed")
	c, _, err := svc.ResolveExternal(ctx, renamed)
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}
	if c.ID != a.ID {
		t.Error("external identity did not map back to its account after rename")
	}
}

func TestResolveExternal_UsernameCollision(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	first, _, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00001", "alice"))
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}

	second, _, err := svc.ResolveExternal(ctx, bridgeClaims("EXT00002", "alice"))
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}

	if second.Username == first.Username {
		t.Errorf("expected collision suffix, both accounts named %q", first.Username)
	}
	if second.Username != "alice_ext000" {
		t.Errorf("expected alice_ext000, got %q", second.Username)
	}
}

func TestResolveExternal_FullNameFallback(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	claims := bridgeClaims("EXT00003", "carol")
	claims.FullName = ""

	account, _, err := svc.ResolveExternal(ctx, claims)
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}
	if account.FullName != "carol" {
		t.Errorf("expected full name fallback to username, got %q", account.FullName)
	}
}

func TestResolveExternal_NormalizesUsername(t *testing.T) {
	svc := NewAccountService(memory.NewAccountRepository())
	ctx := context.Background()

	claims := bridgeClaims("EXT00004", "Dave Example")
	account, _, err := svc.ResolveExternal(ctx, claims)
	if err != nil {
		t.Fatalf("ResolveExternal: %v", err)
	}
	if account.Username != "dave-example" {
		t.Errorf("expected slugged username, got %q", account.Username)
	}
}
