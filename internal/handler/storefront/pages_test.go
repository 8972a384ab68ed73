package storefront

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagesHandler(t *testing.T) {
	renderer, err := handler.NewRenderer(handler.Templates(), quietLogger())
	require.NoError(t, err)
	h := NewPagesHandler(renderer)

	tests := []struct {
		name       string
		fn         http.HandlerFunc
		path       string
		accept     string
		wantStatus int
		wantBody   string
	}{
		{"home", h.Home, "/", "", http.StatusOK, "Entrar para cadastrar"},
		{"unauthorized", h.Unauthorized, "/unauthorized", "", http.StatusForbidden, "Acesso negado"},
		{"unauthorized json", h.Unauthorized, "/unauthorized", "application/json", http.StatusForbidden, `"code":"forbidden"`},
		{"not found", h.NotFound, "/pecas/123", "", http.StatusNotFound, "/pecas/123"},
		{"not found json", h.NotFound, "/api/nada", "", http.StatusNotFound, `"code":"not_found"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()

			tt.fn(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
