package userdir

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/saltmarshlabs/crossgate/internal/config"
)

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return NewDirectory([]config.PortalUser{
		{
			Username:     "user1",
			PasswordHash: string(hash),
			UserID:       "EXT00001",
			Email:        "user1@example.com",
			FullName:     "User One",
		},
	})
}

func TestAuthenticate(t *testing.T) {
	dir := testDirectory(t)

	user, err := dir.Authenticate("user1", "user123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.UserID != "EXT00001" || user.Email != "user1@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestAuthenticateFailuresIndistinguishable(t *testing.T) {
	dir := testDirectory(t)

	_, badPass := dir.Authenticate("user1", "wrong")
	_, badUser := dir.Authenticate("nobody", "user123")

	if !errors.Is(badPass, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", badPass)
	}
	if !errors.Is(badUser, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", badUser)
	}
	if badPass.Error() != badUser.Error() {
		t.Error("failure reasons must not be distinguishable")
	}
}

func TestLookup(t *testing.T) {
	dir := testDirectory(t)

	if _, ok := dir.Lookup("user1"); !ok {
		t.Error("expected user1 to resolve")
	}
	if _, ok := dir.Lookup("nobody"); ok {
		t.Error("unknown username must not resolve")
	}
}
