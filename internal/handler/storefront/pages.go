package storefront

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/handler"
)

// PagesHandler serves the static pages.
type PagesHandler struct {
	renderer *handler.Renderer
}

// NewPagesHandler creates a new pages handler
func NewPagesHandler(renderer *handler.Renderer) *PagesHandler {
	return &PagesHandler{renderer: renderer}
}

// Home handles GET /
func (h *PagesHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "home", handler.BaseTemplateData(r))
}

// Unauthorized handles GET /unauthorized, the route guard's redirect target.
func (h *PagesHandler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	if handler.AcceptsJSON(r) {
		handler.ForbiddenResponse(w, r)
		return
	}
	h.renderer.RenderStatus(w, http.StatusForbidden, "unauthorized", handler.BaseTemplateData(r))
}

// NotFound answers every unmatched request.
func (h *PagesHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if handler.AcceptsJSON(r) {
		handler.NotFoundResponse(w, r)
		return
	}
	data := handler.BaseTemplateData(r)
	data["Path"] = r.URL.Path
	h.renderer.RenderStatus(w, http.StatusNotFound, "not_found", data)
}
