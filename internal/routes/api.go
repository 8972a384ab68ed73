package routes

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/router"
)

// RegisterAPIRoutes registers the JSON endpoints used by the pages.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/api/estados", deps.StatesHandler.List)
}

// RegisterOpsRoutes registers operational endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	// Metrics endpoint (no auth required, should be protected via firewall)
	r.Get("/metrics", deps.MetricsHandler.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// KnownPaths lists the routes used as metric labels.
var KnownPaths = []string{
	"/",
	"/login",
	"/logout",
	"/unauthorized",
	"/cadastro/vendedor",
	"/cadastro/vendedor/cep",
	"/cadastro/vendedor/voltar",
	"/cadastro/representante",
	"/cadastro/representante/voltar",
	"/cadastro/cancelar",
	"/cadastro/concluido",
	"/admin",
	"/api/estados",
	"/metrics",
	"/health",
}
