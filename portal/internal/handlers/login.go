package handlers

import (
	"log/slog"
	"net/http"
)

// loginPageData feeds login.html
type loginPageData struct {
	Error string
}

// LoginForm shows the sign-in form. A user who already has a portal
// session goes straight to the board instead.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(r); ok {
		http.Redirect(w, r, "/enter", http.StatusSeeOther)
		return
	}
	h.renderPage(w, http.StatusOK, "login.html", loginPageData{})
}

// Login handles the sign-in form submission. On success the portal
// session is established and the user is sent through the bridge.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Authenticate(username, password)
	if err != nil {
		h.log.Info("login rejected", slog.String("username", username))
		h.renderPage(w, http.StatusUnauthorized, "login.html", loginPageData{
			Error: "Invalid username or password.",
		})
		return
	}

	if err := h.sessions.SetUser(r, w, user.Username); err != nil {
		h.log.Error("failed to save session", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in",
		slog.String("username", user.Username),
		slog.String("user_id", user.UserID))

	http.Redirect(w, r, "/enter", http.StatusSeeOther)
}
