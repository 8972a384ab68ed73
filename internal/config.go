package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSessionSecret is only acceptable outside production.
const DefaultSessionSecret = "dev-secret-change-in-production"

type Config struct {
	Env           string
	LogLevel      string
	Port          uint16
	BaseURL       string
	SessionSecret string
	CookieDomain  string
	PostalCode    PostalCodeConfig
	Registration  RegistrationConfig
	Admin         AdminConfig
	NATS          NATSConfig
	Metrics       MetricsConfig
	RateLimit     RateLimitConfig
}

// PostalCodeConfig configures the ViaCEP client.
type PostalCodeConfig struct {
	APIURL  string
	Timeout time.Duration
}

// RegistrationConfig configures the registration flow and its guard.
type RegistrationConfig struct {
	// SessionTTL is how long an idle registration session is kept.
	SessionTTL time.Duration

	// Roles may enter the registration steps.
	Roles []string

	// RoleClaimTTL is the lifetime of the role cookie issued at login.
	RoleClaimTTL time.Duration
}

// AdminConfig contains the administrator account checked at login.
// With an empty email or password every login is rejected.
type AdminConfig struct {
	Email    string
	Password string
}

// NATSConfig configures the completion publisher. With an empty URL,
// completions are written to the log instead.
type NATSConfig struct {
	URL     string
	Subject string
}

type MetricsConfig struct {
	Namespace string
}

// RateLimitConfig holds per-client requests per second.
type RateLimitConfig struct {
	Login      float64
	PostalCode float64
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn(".env file not found, using environment variables and defaults")
		}
	}

	return configFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 3000)
	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("SESSION_SECRET", DefaultSessionSecret)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("CEP_API_URL", "https://viacep.com.br/ws")
	v.SetDefault("CEP_LOOKUP_TIMEOUT", 5*time.Second)
	v.SetDefault("REGISTRATION_SESSION_TTL", 2*time.Hour)
	v.SetDefault("REGISTRATION_ROLES", "admin")
	v.SetDefault("ROLE_CLAIM_TTL", 12*time.Hour)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT", "registros.ferrovelho")
	v.SetDefault("METRICS_NAMESPACE", "ferrovelho")
	v.SetDefault("LOGIN_RATE_LIMIT", 0.2)
	v.SetDefault("CEP_RATE_LIMIT", 2.0)

	return v
}

func configFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:           v.GetString("ENV"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		BaseURL:       v.GetString("BASE_URL"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		CookieDomain:  v.GetString("COOKIE_DOMAIN"),
		PostalCode: PostalCodeConfig{
			APIURL:  v.GetString("CEP_API_URL"),
			Timeout: v.GetDuration("CEP_LOOKUP_TIMEOUT"),
		},
		Registration: RegistrationConfig{
			SessionTTL:   v.GetDuration("REGISTRATION_SESSION_TTL"),
			Roles:        splitList(v.GetString("REGISTRATION_ROLES")),
			RoleClaimTTL: v.GetDuration("ROLE_CLAIM_TTL"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("NATS_URL"),
			Subject: v.GetString("NATS_SUBJECT"),
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		RateLimit: RateLimitConfig{
			Login:      v.GetFloat64("LOGIN_RATE_LIMIT"),
			PostalCode: v.GetFloat64("CEP_RATE_LIMIT"),
		},
	}

	port := v.GetInt("PORT")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", v.GetString("PORT"))
	}
	cfg.Port = uint16(port)

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	// Validate session secret in production
	if cfg.Env == "prod" && (cfg.SessionSecret == "" || cfg.SessionSecret == DefaultSessionSecret) {
		return nil, fmt.Errorf("SESSION_SECRET must be set in production environment")
	}

	if len(cfg.Registration.Roles) == 0 {
		return nil, fmt.Errorf("REGISTRATION_ROLES must name at least one role")
	}
	if cfg.RateLimit.Login <= 0 || cfg.RateLimit.PostalCode <= 0 {
		return nil, fmt.Errorf("rate limits must be positive")
	}

	return cfg, nil
}

// SecureCookies reports whether cookies require HTTPS.
func (c *Config) SecureCookies() bool {
	return c.Env == "prod" || strings.HasPrefix(c.BaseURL, "https://")
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
