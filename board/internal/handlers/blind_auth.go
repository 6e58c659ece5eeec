package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saltmarshlabs/crossgate/board/internal/middleware"
	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
	"github.com/saltmarshlabs/crossgate/internal/sessionstore"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

// BlindAuth accepts a bridge token from the issuing system, verifies it,
// resolves the external identity to a board account, and establishes a
// board session. Every verification failure renders the same generic
// page: the response must not reveal which check failed.
func (h *Handler) BlindAuth(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")

	claims, err := h.codec.DecodeAndVerify(tokenString)
	if err != nil {
		metrics.TokenVerifications.WithLabelValues(verifyOutcome(err)).Inc()
		h.log.Warn("bridge token rejected", slog.Any("error", err))
		h.renderPage(w, http.StatusUnauthorized, "auth_failed.html", nil)
		return
	}

	// The codec already checks expiry; re-checking here keeps the
	// handler correct even if the decode path changes.
	if claims.Expired(time.Now()) {
		metrics.TokenVerifications.WithLabelValues(verifyOutcome(token.ErrTokenExpired)).Inc()
		h.log.Warn("bridge token expired at handler", slog.String("identity", claims.System+":"+claims.ExternalID))
		h.renderPage(w, http.StatusUnauthorized, "auth_failed.html", nil)
		return
	}

	metrics.TokenVerifications.WithLabelValues("ok").Inc()

	account, provisioned, err := h.accounts.ResolveExternal(r.Context(), claims)
	if err != nil {
		h.log.Error("failed to resolve account",
			slog.String("identity", claims.System+":"+claims.ExternalID),
			slog.Any("error", err))
		h.renderPage(w, http.StatusInternalServerError, "auth_failed.html", nil)
		return
	}

	sess, err := sessionstore.NewSession(account.ID, claims.System, claims.ExternalID, account.Username, h.sessionTTL)
	if err != nil {
		h.log.Error("failed to create session", slog.Any("error", err))
		h.renderPage(w, http.StatusInternalServerError, "auth_failed.html", nil)
		return
	}
	if err := h.sessions.Put(r.Context(), sess, h.sessionTTL); err != nil {
		h.log.Error("failed to store session", slog.Any("error", err))
		h.renderPage(w, http.StatusInternalServerError, "auth_failed.html", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure must be set behind TLS; dev runs plain HTTP.
	})

	metrics.SessionsEstablished.Inc()
	h.log.Info("session established via bridge",
		slog.String("account_id", account.ID),
		slog.String("identity", account.IdentityKey()),
		slog.Bool("provisioned", provisioned))

	http.Redirect(w, r, safeRedirectTarget(r.URL.Query().Get("redirect")), http.StatusSeeOther)
}

// safeRedirectTarget restricts post-auth redirects to local paths
func safeRedirectTarget(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}

// verifyOutcome maps codec errors to metric labels
func verifyOutcome(err error) string {
	switch {
	case errors.Is(err, token.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, token.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, token.ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, token.ErrTokenExpired):
		return "expired"
	default:
		return "other"
	}
}
