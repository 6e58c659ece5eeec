package handlers

import (
	"net/http"

	"github.com/saltmarshlabs/crossgate/board/internal/middleware"
)

// Home renders the landing page, signed-in or not
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, "home.html", map[string]interface{}{
		"Account": middleware.AccountFrom(r.Context()),
	})
}
