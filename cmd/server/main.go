package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/ferrovelho/internal"
	"github.com/dukerupert/ferrovelho/internal/address"
	"github.com/dukerupert/ferrovelho/internal/auth"
	"github.com/dukerupert/ferrovelho/internal/cookie"
	"github.com/dukerupert/ferrovelho/internal/handler"
	"github.com/dukerupert/ferrovelho/internal/handler/admin"
	"github.com/dukerupert/ferrovelho/internal/handler/api"
	"github.com/dukerupert/ferrovelho/internal/handler/storefront"
	"github.com/dukerupert/ferrovelho/internal/middleware"
	"github.com/dukerupert/ferrovelho/internal/publish"
	"github.com/dukerupert/ferrovelho/internal/registration"
	"github.com/dukerupert/ferrovelho/internal/router"
	"github.com/dukerupert/ferrovelho/internal/routes"
	"github.com/dukerupert/ferrovelho/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(cfg.Metrics.Namespace, registry, registry, routes.KnownPaths...)
	registrationMetrics := telemetry.NewRegistrationMetrics(cfg.Metrics.Namespace, registry)

	// Postal code lookups
	lookuper := address.NewViaCEPClient(address.ViaCEPConfig{
		BaseURL: cfg.PostalCode.APIURL,
		Timeout: cfg.PostalCode.Timeout,
	}, logger)

	// Completion publisher
	var publisher registration.Publisher
	if cfg.NATS.URL != "" {
		natsPublisher, err := publish.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("Publishing completed registrations to NATS", "subject", cfg.NATS.Subject)
	} else {
		publisher = publish.NewLogPublisher(logger)
		logger.Warn("NATS_URL not set, completed registrations are only logged")
	}

	// Registration sessions
	sessions := registration.NewSessionStore(registration.NewMemoryBackend(), cfg.Registration.SessionTTL, registration.FlowConfig{
		Lookuper:  lookuper,
		Publisher: publisher,
		Metrics:   registrationMetrics,
		Logger:    logger,
	})
	defer sessions.Close()

	// Auth
	authenticator, err := auth.NewAuthenticator(cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	if !authenticator.Enabled() {
		logger.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, logins are disabled")
	}
	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.Registration.RoleClaimTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize tokens: %w", err)
	}

	cookieConfig := cookie.NewConfig(cfg.CookieDomain, cfg.SecureCookies())

	// Templates
	renderer, err := handler.NewRenderer(handler.Templates(), logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	// Rate limiters
	loginLimit := middleware.StrictRateLimiterConfig()
	loginLimit.RequestsPerSecond = cfg.RateLimit.Login
	loginRateLimiter := middleware.NewRateLimiter(loginLimit)
	defer loginRateLimiter.Stop()

	postalCodeLimit := middleware.DefaultRateLimiterConfig()
	postalCodeLimit.RequestsPerSecond = cfg.RateLimit.PostalCode
	postalCodeRateLimiter := middleware.NewRateLimiter(postalCodeLimit)
	defer postalCodeRateLimiter.Stop()

	// Security headers
	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if !cfg.SecureCookies() {
		securityConfig.HSTSMaxAge = 0
	}

	// ==========================================================================
	// Routes
	// ==========================================================================

	r := router.New(
		router.Recovery(),
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(),
		middleware.CSRF(middleware.CSRFConfig{CookieConfig: cookieConfig}),
		middleware.WithRole(tokens),
		router.Logger(),
	)

	r.Static("/static", handler.Static())

	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		PagesHandler:        storefront.NewPagesHandler(renderer),
		LoginHandler:        storefront.NewLoginHandler(authenticator, tokens, cookieConfig, renderer, registrationMetrics),
		LogoutHandler:       storefront.NewLogoutHandler(cookieConfig),
		RegistrationHandler: storefront.NewRegistrationHandler(sessions, renderer, cookieConfig),
		RequireRegistrationRole: middleware.RequireRole(
			tokens, registrationMetrics.GuardDenied, cfg.Registration.Roles...,
		),
		LoginRateLimit:      loginRateLimiter.Middleware,
		PostalCodeRateLimit: postalCodeRateLimiter.Middleware,
	})
	routes.RegisterAdminRoutes(r, routes.AdminDeps{
		DashboardHandler: admin.NewDashboardHandler(sessions, renderer),
		RequireAdmin:     middleware.RequireRole(tokens, registrationMetrics.GuardDenied, auth.RoleAdmin),
	})
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		StatesHandler: api.NewStatesHandler(),
	})
	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		MetricsHandler: metrics.Handler(),
	})

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
