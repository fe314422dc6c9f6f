// Package rates provides exchange-rate lookup backed by an external HTTP API.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"facture/internal/core/apperror"
	"facture/internal/core/types"
	"facture/pkg/logger"
)

// DefaultBaseURL points at the public Frankfurter API.
const DefaultBaseURL = "https://api.frankfurter.dev/v1"

// Client fetches exchange rates over HTTP.
// It implements fx.RateSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a rate client.
func NewClient(log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// latestResponse mirrors the API's latest-rates payload.
type latestResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// GetRate returns the current rate for converting one unit of from into to.
func (c *Client) GetRate(ctx context.Context, from, to string) (types.Money, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	u := fmt.Sprintf("%s/latest?%s", c.baseURL, url.Values{
		"base":    {from},
		"symbols": {to},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.Zero(), fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.Zero(), apperror.NewRateUnavailable(from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.WithContext(ctx).Warnw("rate lookup returned non-OK status",
			"from", from, "to", to, "status", resp.StatusCode)
		return types.Zero(), apperror.NewRateUnavailable(from, to,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Zero(), apperror.NewRateUnavailable(from, to, fmt.Errorf("decode response: %w", err))
	}

	rate, ok := body.Rates[to]
	if !ok || rate <= 0 {
		return types.Zero(), apperror.NewRateUnavailable(from, to,
			fmt.Errorf("no rate for %s in response", to))
	}

	return decimal.NewFromFloat(rate), nil
}
