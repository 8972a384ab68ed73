package address

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultViaCEPURL is the public ViaCEP endpoint.
	DefaultViaCEPURL = "https://viacep.com.br/ws"

	// DefaultLookupTimeout bounds a single lookup when no timeout is configured.
	DefaultLookupTimeout = 5 * time.Second

	maxResponseBytes = 64 << 10
)

// ViaCEPConfig configures the ViaCEP client.
type ViaCEPConfig struct {
	// BaseURL is the service root; requests go to {BaseURL}/{cep}/json/.
	BaseURL string

	// Timeout bounds each lookup, including reading the body.
	Timeout time.Duration

	// HTTPClient is optional; http.DefaultClient's transport is used when nil.
	HTTPClient *http.Client
}

// ViaCEPClient looks postal codes up in ViaCEP.
type ViaCEPClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// NewViaCEPClient creates a ViaCEP-backed Lookuper.
func NewViaCEPClient(cfg ViaCEPConfig, logger *slog.Logger) *ViaCEPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultViaCEPURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLookupTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ViaCEPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  cfg.HTTPClient,
		logger:  logger,
	}
}

// viaCEPResponse is the subset of the ViaCEP payload we use.
// ViaCEP has sent "erro" both as a JSON boolean and as the string "true".
type viaCEPResponse struct {
	Erro        json.RawMessage `json:"erro"`
	CEP         string          `json:"cep"`
	Logradouro  string          `json:"logradouro"`
	Complemento string          `json:"complemento"`
	Bairro      string          `json:"bairro"`
	Localidade  string          `json:"localidade"`
	UF          string          `json:"uf"`
}

func (r viaCEPResponse) notFound() bool {
	switch strings.Trim(string(r.Erro), `"`) {
	case "true":
		return true
	default:
		return false
	}
}

// Lookup resolves postalCode. The code must already be normalized to eight digits.
func (c *ViaCEPClient) Lookup(ctx context.Context, postalCode string) (*Address, error) {
	if !IsPostalCode(postalCode) {
		return nil, ErrInvalidPostalCode
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LookupError{PostalCode: postalCode, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("postal code lookup failed",
			"cep", postalCode,
			"error", err,
			"duration", time.Since(start),
		)
		return nil, &LookupError{PostalCode: postalCode, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("postal code lookup returned non-2xx",
			"cep", postalCode,
			"status", resp.StatusCode,
		)
		return nil, &LookupError{
			PostalCode: postalCode,
			Status:     resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var payload viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, &LookupError{PostalCode: postalCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if payload.notFound() {
		c.logger.Debug("postal code not found", "cep", postalCode)
		return nil, ErrNotFound
	}

	c.logger.Debug("postal code resolved",
		"cep", postalCode,
		"uf", payload.UF,
		"duration", time.Since(start),
	)

	return &Address{
		PostalCode: postalCode,
		Street:     payload.Logradouro,
		Complement: payload.Complemento,
		District:   payload.Bairro,
		City:       payload.Localidade,
		State:      payload.UF,
	}, nil
}
