package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the portal session cookie
	SessionName = "portal_session"

	// usernameKey is the session key for the logged-in username
	usernameKey = "username"
)

// Manager wraps gorilla/sessions for the portal's login state
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes for AES-256.
func NewManager(secretKey []byte) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   12 * 60 * 60, // 12 hours
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
	}
}

// SetUser records the logged-in username in the session
func (m *Manager) SetUser(r *http.Request, w http.ResponseWriter, username string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[usernameKey] = username
	return session.Save(r, w)
}

// Username returns the logged-in username, if any
func (m *Manager) Username(r *http.Request) (string, bool) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}

	username, ok := session.Values[usernameKey].(string)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

// Clear removes the session (logout)
func (m *Manager) Clear(r *http.Request, w http.ResponseWriter) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}

	session.Options.MaxAge = -1
	return session.Save(r, w)
}
