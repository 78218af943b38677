package http_handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/views"
)

// PageHandler serves the pages the auth flows redirect to.
type PageHandler struct {
	pages    PageRenderer
	flashes  FlashStore
	writeErr middleware.WriteErrFunc
}

func NewPageHandler(pages PageRenderer, flashes FlashStore, writeErr middleware.WriteErrFunc) *PageHandler {
	return &PageHandler{pages: pages, flashes: flashes, writeErr: writeErr}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "index")
}

// Dashboard is mounted behind login, confirmation and admin checks.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "dashboard/index")
}

func (h *PageHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	p := views.Page{Flashes: h.flashes.Pop(w, r)}
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		p.User = &u
	}
	if err := h.pages.Render(w, http.StatusOK, name, p); err != nil {
		h.writeErr(w, r, err)
	}
}
