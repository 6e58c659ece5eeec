package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/saltmarshlabs/crossgate/internal/sessionstore"
)

func TestAuthLogout_DestroysSessionAndClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	w := env.blindAuth(t, env.validToken(t, "EXT00001", "alice"))
	cookie := sessionCookie(t, w)
	if cookie == nil {
		t.Fatal("expected session cookie from blind auth")
	}

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	req.AddCookie(cookie)
	out := httptest.NewRecorder()
	env.handler.AuthLogout(out, req)

	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", out.Code)
	}

	cleared := sessionCookie(t, out)
	if cleared == nil || cleared.MaxAge != -1 {
		t.Error("expected cookie cleared with MaxAge -1")
	}

	if _, err := env.sessions.Get(context.Background(), cookie.Value); err != sessionstore.ErrSessionNotFound {
		t.Errorf("expected session destroyed, got %v", err)
	}
}

func TestAuthLogout_NoSessionStillSucceeds(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	out := httptest.NewRecorder()
	env.handler.AuthLogout(out, req)

	if out.Code != http.StatusOK {
		t.Fatalf("expected 200 without a session, got %d", out.Code)
	}
}

func externalLogoutRequest(form url.Values) *http.Request {
	req := httptest.NewRequest("POST", "/api/external-logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestExternalLogout_DestroysAllAccountSessions(t *testing.T) {
	env := newTestEnv(t)

	// Two handoffs, two live sessions for the same account.
	tok := env.validToken(t, "EXT00001", "alice")
	env.blindAuth(t, tok)
	env.blindAuth(t, tok)

	form := url.Values{}
	form.Set("external_id", "EXT00001")
	form.Set("system", "main_system")
	form.Set("api_key", env.codec.LogoutKey("EXT00001", "main_system"))

	out := httptest.NewRecorder()
	env.handler.ExternalLogout(out, externalLogoutRequest(form))

	if out.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", out.Code, out.Body.String())
	}

	var resp struct {
		Success           bool `json:"success"`
		SessionsDestroyed int  `json:"sessions_destroyed"`
	}
	if err := json.NewDecoder(out.Body).Decode(&resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.SessionsDestroyed != 2 {
		t.Errorf("expected success with 2 sessions destroyed, got %+v", resp)
	}
	if env.sessions.Len() != 0 {
		t.Errorf("expected all sessions gone, %d remain", env.sessions.Len())
	}
}

func TestExternalLogout_RejectsBadAPIKey(t *testing.T) {
	env := newTestEnv(t)
	env.blindAuth(t, env.validToken(t, "EXT00001", "alice"))

	form := url.Values{}
	form.Set("external_id", "EXT00001")
	form.Set("system", "main_system")
	form.Set("api_key", "deadbeef")

	out := httptest.NewRecorder()
	env.handler.ExternalLogout(out, externalLogoutRequest(form))

	if out.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", out.Code)
	}
	if env.sessions.Len() != 1 {
		t.Errorf("sessions must survive a rejected logout, %d remain", env.sessions.Len())
	}
}

func TestExternalLogout_UnknownIdentitySucceeds(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{}
	form.Set("external_id", "NOBODY")
	form.Set("api_key", env.codec.LogoutKey("NOBODY", "main_system"))

	out := httptest.NewRecorder()
	env.handler.ExternalLogout(out, externalLogoutRequest(form))

	if out.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown identity, got %d", out.Code)
	}

	var resp struct {
		Success           bool `json:"success"`
		SessionsDestroyed int  `json:"sessions_destroyed"`
	}
	if err := json.NewDecoder(out.Body).Decode(&resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.SessionsDestroyed != 0 {
		t.Errorf("expected success with 0 destroyed, got %+v", resp)
	}
}
