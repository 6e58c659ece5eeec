package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

// Enter mints a bridge token for the logged-in user and hands the
// browser to the board. The token travels in the redirect URL, so the
// portal never talks to the board directly; an interim page does the
// navigation client-side.
func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	claims, err := h.builder.Build(&token.LocalSession{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	})
	if err != nil {
		if errors.Is(err, token.ErrNotAuthenticated) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.log.Error("failed to build claims", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	signed, err := h.codec.Encode(claims)
	if err != nil {
		h.log.Error("failed to sign token", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	metrics.TokensIssued.WithLabelValues(claims.System).Inc()
	h.log.Info("issued bridge token",
		slog.String("external_id", claims.ExternalID),
		slog.Int64("exp", claims.ExpiresAt))

	h.renderPage(w, http.StatusOK, "redirecting.html", struct {
		RedirectURL string
	}{
		RedirectURL: h.boardURL + "/blind-auth?token=" + url.QueryEscape(signed),
	})
}
