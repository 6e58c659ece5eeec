package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/saltmarshlabs/crossgate/board/internal/templates"
	"github.com/saltmarshlabs/crossgate/internal/domain/services"
	"github.com/saltmarshlabs/crossgate/internal/sessionstore"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

// Handler holds the board's HTTP handler dependencies
type Handler struct {
	codec      *token.Codec
	accounts   *services.AccountService
	sessions   sessionstore.Store
	templates  *templates.Set
	sessionTTL time.Duration
	log        *slog.Logger
}

// New creates the board handler set
func New(codec *token.Codec, accounts *services.AccountService, sessions sessionstore.Store, tmpl *templates.Set, sessionTTL time.Duration, log *slog.Logger) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = sessionstore.DefaultTTL
	}
	return &Handler{
		codec:      codec,
		accounts:   accounts,
		sessions:   sessions,
		templates:  tmpl,
		sessionTTL: sessionTTL,
		log:        log,
	}
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
