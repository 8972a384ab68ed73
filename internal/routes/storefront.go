package routes

import (
	"github.com/dukerupert/ferrovelho/internal/router"
)

// RegisterStorefrontRoutes registers the public pages, login and the
// registration flow.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Pages
	r.Get("/{$}", deps.PagesHandler.Home)
	r.Get("/unauthorized", deps.PagesHandler.Unauthorized)
	r.NotFound(deps.PagesHandler.NotFound)

	// Auth
	r.Get("/login", deps.LoginHandler.ShowForm)
	r.Post("/login", deps.LoginHandler.HandleSubmit, deps.LoginRateLimit)
	r.Post("/logout", deps.LogoutHandler.HandleSubmit)

	// Registration flow (role guarded)
	reg := deps.RegistrationHandler
	cadastro := r.Group(deps.RequireRegistrationRole)
	cadastro.Get("/cadastro/vendedor", reg.ShowSeller)
	cadastro.Post("/cadastro/vendedor", reg.SubmitSeller)
	cadastro.Post("/cadastro/vendedor/cep", reg.LookupPostalCode, deps.PostalCodeRateLimit)
	cadastro.Post("/cadastro/vendedor/voltar", reg.BackSeller)
	cadastro.Get("/cadastro/representante", reg.ShowRepresentative)
	cadastro.Post("/cadastro/representante", reg.SubmitRepresentative)
	cadastro.Post("/cadastro/representante/voltar", reg.BackRepresentative)
	cadastro.Post("/cadastro/cancelar", reg.Cancel)

	// The completion page is reachable after the session is gone
	r.Get("/cadastro/concluido", reg.Done)
}
