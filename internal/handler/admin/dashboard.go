package admin

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/handler"
)

// SessionCounter reports how many registrations are in progress.
type SessionCounter interface {
	Len() int
}

// DashboardHandler handles the admin dashboard page
type DashboardHandler struct {
	sessions SessionCounter
	renderer *handler.Renderer
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions SessionCounter, renderer *handler.Renderer) *DashboardHandler {
	return &DashboardHandler{
		sessions: sessions,
		renderer: renderer,
	}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := handler.BaseTemplateData(r)
	data["ActiveSessions"] = h.sessions.Len()
	h.renderer.RenderHTTP(w, "admin/dashboard", data)
}
