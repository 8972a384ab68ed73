package api

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/dukerupert/ferrovelho/internal/options"
)

// StatesResponse is the body of GET /api/estados.
type StatesResponse struct {
	Options []options.Option `json:"options"`
	// Message is set when no option matches.
	Message string `json:"message,omitempty"`
}

// StatesHandler serves the state dropdown options
type StatesHandler struct{}

// NewStatesHandler creates a new states handler
func NewStatesHandler() *StatesHandler {
	return &StatesHandler{}
}

// List handles GET /api/estados?q=
// The query matches labels and codes ignoring case and accents.
func (h *StatesHandler) List(w http.ResponseWriter, r *http.Request) {
	matches := options.Filter(options.States(), r.URL.Query().Get("q"))

	resp := StatesResponse{Options: matches}
	if len(matches) == 0 {
		resp.Options = []options.Option{}
		resp.Message = options.EmptyMessage
	}
	handler.WriteJSON(w, http.StatusOK, resp)
}
