package handlers

import (
	"log/slog"
	"net/http"

	"github.com/saltmarshlabs/crossgate/internal/token"
	"github.com/saltmarshlabs/crossgate/portal/internal/session"
	"github.com/saltmarshlabs/crossgate/portal/internal/templates"
	"github.com/saltmarshlabs/crossgate/portal/internal/userdir"
)

// Handler holds the portal's HTTP handler dependencies
type Handler struct {
	users     *userdir.Directory
	sessions  *session.Manager
	builder   *token.Builder
	codec     *token.Codec
	boardURL  string
	templates *templates.Set
	log       *slog.Logger
}

// New creates the portal handler set. boardURL is the consuming side's
// base URL, without a trailing slash.
func New(users *userdir.Directory, sessions *session.Manager, builder *token.Builder, codec *token.Codec, boardURL string, tmpl *templates.Set, log *slog.Logger) *Handler {
	return &Handler{
		users:     users,
		sessions:  sessions,
		builder:   builder,
		codec:     codec,
		boardURL:  boardURL,
		templates: tmpl,
		log:       log,
	}
}

// currentUser resolves the request session to a directory user
func (h *Handler) currentUser(r *http.Request) (*userdir.User, bool) {
	username, ok := h.sessions.Username(r)
	if !ok {
		return nil, false
	}
	return h.users.Lookup(username)
}

// renderPage renders a page template, falling back to a plain error on
// template failure
func (h *Handler) renderPage(w http.ResponseWriter, status int, page string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Execute(w, page, data); err != nil {
		h.log.Error("failed to render page",
			slog.String("page", page),
			slog.Any("error", err))
	}
}
