package handlers

import (
	"log/slog"
	"net/http"
)

// Logout destroys the portal session, then renders a page that fans the
// logout out to the board from the browser. The board side is
// best-effort: the page finishes on iframe load or a 500ms backup
// timer, so a slow or dead board never traps the user here.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if username, ok := h.sessions.Username(r); ok {
		h.log.Info("user logged out", slog.String("username", username))
	}

	if err := h.sessions.Clear(r, w); err != nil {
		h.log.Warn("failed to clear session", slog.Any("error", err))
	}

	h.renderPage(w, http.StatusOK, "logout.html", struct {
		BoardLogoutURL string
	}{
		BoardLogoutURL: h.boardURL + "/auth/logout",
	})
}
