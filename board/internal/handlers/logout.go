package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/saltmarshlabs/crossgate/board/internal/middleware"
	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
)

// AuthLogout destroys the board session named by the request cookie.
// The issuing side calls this cross-origin from an invisible iframe and
// ignores the response, so this always answers 200.
func (h *Handler) AuthLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.log.Warn("failed to destroy session", slog.Any("error", err))
		} else {
			metrics.SessionsDestroyed.WithLabelValues("logout").Inc()
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	h.renderPage(w, http.StatusOK, "logged_out.html", nil)
}

// ExternalLogout is the server-to-server logout API: the issuing system
// presents an HMAC api key derived from the identity it wants logged
// out, and every board session for that identity's account is
// destroyed. An unknown identity still answers success; there is
// nothing to log out, and the caller treats this as best-effort anyway.
func (h *Handler) ExternalLogout(w http.ResponseWriter, r *http.Request) {
	externalID := r.FormValue("external_id")
	system := r.FormValue("system")
	if system == "" {
		system = "main_system"
	}
	apiKey := r.FormValue("api_key")

	if externalID == "" || !h.codec.VerifyLogoutKey(externalID, system, apiKey) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"message": "authentication failed",
		})
		return
	}

	destroyed := 0
	account, err := h.accounts.GetByExternalID(r.Context(), system, externalID)
	if err == nil {
		destroyed, err = h.sessions.DestroyByAccount(r.Context(), account.ID)
		if err != nil {
			h.log.Error("failed to destroy account sessions",
				slog.String("account_id", account.ID),
				slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"message": "failed to destroy sessions",
			})
			return
		}
		if destroyed > 0 {
			metrics.SessionsDestroyed.WithLabelValues("external_logout").Add(float64(destroyed))
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"sessions_destroyed": destroyed,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
