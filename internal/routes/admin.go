package routes

import (
	"github.com/dukerupert/ferrovelho/internal/router"
)

// RegisterAdminRoutes registers the administrator pages.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(deps.RequireAdmin)
	admin.Get("/admin", deps.DashboardHandler.ServeHTTP)
}
