package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/saltmarshlabs/crossgate/internal/domain/entities"
	"github.com/saltmarshlabs/crossgate/internal/domain/services"
	"github.com/saltmarshlabs/crossgate/internal/sessionstore"
)

// SessionCookieName is the cookie carrying the opaque board session ID
const SessionCookieName = "crossgate_session"

type contextKey string

const (
	sessionContextKey contextKey = "board_session"
	accountContextKey contextKey = "board_account"
)

// AuthMiddleware resolves the session cookie into a session record and
// account, making both available on the request context. Requests
// without a live session pass through unauthenticated; handlers decide
// what requires auth.
type AuthMiddleware struct {
	sessions sessionstore.Store
	accounts *services.AccountService
	log      *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions sessionstore.Store, accounts *services.AccountService, log *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		accounts: accounts,
		log:      log,
	}
}

// LoadSession attaches the session and account for the request cookie, if any
func (m *AuthMiddleware) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.sessions.Get(r.Context(), cookie.Value)
		if err != nil {
			// Stale cookie; drop it so the client stops sending it.
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
			})
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)

		account, err := m.accounts.GetByID(ctx, sess.AccountID)
		if err != nil {
			m.log.Warn("session references missing account",
				slog.String("session_id", sess.ID),
				slog.String("account_id", sess.AccountID))
		} else {
			ctx = context.WithValue(ctx, accountContextKey, account)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFrom returns the session attached to the request context, if any
func SessionFrom(ctx context.Context) *sessionstore.Session {
	sess, _ := ctx.Value(sessionContextKey).(*sessionstore.Session)
	return sess
}

// AccountFrom returns the account attached to the request context, if any
func AccountFrom(ctx context.Context) *entities.Account {
	account, _ := ctx.Value(accountContextKey).(*entities.Account)
	return account
}
