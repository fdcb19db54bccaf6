// Package refdata provides the HTTP client for the upstream reference and
// portfolio API. The upstream is a black box: this client only fetches,
// decodes, and boundary-validates its JSON payloads.
package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/modules/analysis"
	"github.com/aristath/lens/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// Client for the upstream reference-data API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new reference-data client
func NewClient(cfg *config.RefdataConfig, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "refdata").Logger(),
	}
}

// Configured reports whether an upstream base URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// upstreamPosition matches the upstream portfolio payload.
type upstreamPosition struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	LastPrice    float64 `json:"last_price"`
	CurrentValue float64 `json:"current_value"`
}

// GetPortfolio fetches the current holdings from GET /portfolio.
func (c *Client) GetPortfolio(ctx context.Context) ([]portfolio.Position, error) {
	var payload struct {
		Positions []upstreamPosition `json:"positions"`
	}
	if err := c.getJSON(ctx, "/portfolio", &payload); err != nil {
		return nil, err
	}

	positions := make([]portfolio.Position, 0, len(payload.Positions))
	for _, p := range payload.Positions {
		if p.CurrentValue < 0 {
			return nil, fmt.Errorf("upstream position %s has negative value %v", p.Ticker, p.CurrentValue)
		}
		positions = append(positions, portfolio.Position{
			Ticker:       p.Ticker,
			Name:         p.Name,
			Quantity:     p.Quantity,
			LastPrice:    p.LastPrice,
			CurrentValue: p.CurrentValue,
		})
	}

	return positions, nil
}

// GetSectors fetches the ticker -> sector table from GET /sectors.
func (c *Client) GetSectors(ctx context.Context) (map[string]string, error) {
	var payload struct {
		Sectors map[string]string `json:"sectors"`
	}
	if err := c.getJSON(ctx, "/sectors", &payload); err != nil {
		return nil, err
	}
	return payload.Sectors, nil
}

// GetAliases fetches the alias -> canonical table from GET /aliases.
func (c *Client) GetAliases(ctx context.Context) (map[string]string, error) {
	var payload struct {
		Aliases map[string]string `json:"aliases"`
	}
	if err := c.getJSON(ctx, "/aliases", &payload); err != nil {
		return nil, err
	}
	return payload.Aliases, nil
}

// GetETFConstituents fetches the pre-joined constituent weight tables from
// GET /etf-overlap. Weights are boundary-validated here so out-of-range
// values never reach the analysis core.
func (c *Client) GetETFConstituents(ctx context.Context) (map[string][]analysis.ETFConstituent, error) {
	var payload struct {
		ETFs map[string][]analysis.ETFConstituent `json:"etfs"`
	}
	if err := c.getJSON(ctx, "/etf-overlap", &payload); err != nil {
		return nil, err
	}

	if err := analysis.ValidateConstituents(payload.ETFs); err != nil {
		return nil, fmt.Errorf("upstream constituent data invalid: %w", err)
	}

	return payload.ETFs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("refdata API is not configured")
	}

	url := c.baseURL + path
	c.log.Debug().Str("url", url).Msg("Fetching from upstream")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	return nil
}
