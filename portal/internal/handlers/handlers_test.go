package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/saltmarshlabs/crossgate/internal/config"
	"github.com/saltmarshlabs/crossgate/internal/token"
	"github.com/saltmarshlabs/crossgate/portal/internal/session"
	"github.com/saltmarshlabs/crossgate/portal/internal/templates"
	"github.com/saltmarshlabs/crossgate/portal/internal/userdir"
)

const testBoardURL = "http://board.example"

type testEnv struct {
	handler *Handler
	codec   *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("user123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	users := userdir.NewDirectory([]config.PortalUser{
		{
			Username:     "user1",
			PasswordHash: string(hash),
			UserID:       "EXT00001",
			Email:        "user1@example.com",
			FullName:     "User One",
		},
	})

	codec, err := token.NewCodec("test_shared_secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tmpl, err := templates.Load()
	if err != nil {
		t.Fatalf("templates.Load: %v", err)
	}

	sessions := session.NewManager([]byte("0123456789abcdef0123456789abcdef"))
	builder := token.NewBuilder("main_system", time.Minute)

	return &testEnv{
		handler: New(users, sessions, builder, codec, testBoardURL, tmpl, slog.Default()),
		codec:   codec,
	}
}

// login submits valid credentials and returns the session cookies
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()

	form := url.Values{}
	form.Set("username", "user1")
	form.Set("password", "user123")

	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.handler.Login(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("login: expected redirect, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/enter" {
		t.Fatalf("login: expected redirect to /enter, got %q", loc)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login: expected a session cookie")
	}
	return cookies
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct{ username, password string }{
		{"user1", "wrong"},
		{"nobody", "user123"},
	}

	var bodies []string
	for _, c := range cases {
		form := url.Values{}
		form.Set("username", c.username)
		form.Set("password", c.password)

		req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		env.handler.Login(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s/%s: expected 401, got %d", c.username, c.password, w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}

	// Unknown user and wrong password must look identical.
	if bodies[0] != bodies[1] {
		t.Error("login failure pages differ between rejection reasons")
	}
}

var tokenPattern = regexp.MustCompile(`token=([A-Za-z0-9_.-]+)`)

func TestEnterIssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	req := httptest.NewRequest("GET", "/enter", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.handler.Enter(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, testBoardURL+"/blind-auth?token=") {
		t.Fatalf("expected handoff URL in page, got: %s", body)
	}

	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("no token found in page")
	}

	claims, err := env.codec.DecodeAndVerify(m[1])
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.ExternalID != "EXT00001" || claims.Username != "user1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.System != "main_system" {
		t.Errorf("expected system main_system, got %q", claims.System)
	}
	if claims.ExpiresAt != claims.IssuedAt+60 {
		t.Errorf("expected 60s lifetime, got iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestEnterWithoutSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/enter", nil)
	w := httptest.NewRecorder()
	env.handler.Enter(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("expected redirect to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLoginFormSkipsStraightToBoardWhenSignedIn(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	req := httptest.NewRequest("GET", "/login", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.handler.LoginForm(w, req)

	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/enter" {
		t.Errorf("expected redirect to /enter, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLogoutClearsSessionAndFansOut(t *testing.T) {
	env := newTestEnv(t)
	cookies := env.login(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.handler.Logout(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), testBoardURL+"/auth/logout") {
		t.Error("expected board logout URL in fan-out page")
	}

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.SessionName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected portal session cookie cleared")
	}
}
