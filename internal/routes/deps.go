package routes

import (
	"net/http"

	"github.com/dukerupert/ferrovelho/internal/handler/api"
	"github.com/dukerupert/ferrovelho/internal/handler/storefront"
	"github.com/dukerupert/ferrovelho/internal/router"
)

// StorefrontDeps contains dependencies for the public pages and the
// registration flow
type StorefrontDeps struct {
	// Home, unauthorized and not found pages
	PagesHandler *storefront.PagesHandler

	// Auth
	LoginHandler  *storefront.LoginHandler
	LogoutHandler *storefront.LogoutHandler

	// Seller and representative steps
	RegistrationHandler *storefront.RegistrationHandler

	// RequireRegistrationRole guards every registration step
	RequireRegistrationRole router.Middleware

	// LoginRateLimit and PostalCodeRateLimit throttle the two endpoints
	// that cost the most per request
	LoginRateLimit      router.Middleware
	PostalCodeRateLimit router.Middleware
}

// AdminDeps contains dependencies for admin routes
type AdminDeps struct {
	DashboardHandler http.Handler

	// RequireAdmin guards every admin route
	RequireAdmin router.Middleware
}

// APIDeps contains dependencies for API routes
type APIDeps struct {
	StatesHandler *api.StatesHandler
}

// OpsDeps contains dependencies for operational endpoints
type OpsDeps struct {
	MetricsHandler http.Handler
}
