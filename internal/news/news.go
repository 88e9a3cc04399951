// Package news counts recent media mentions of companies via a
// GNews-compatible search API.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/roboscout/roboscout/internal/logger"
)

// DefaultBaseURL is the GNews search endpoint.
const DefaultBaseURL = "https://gnews.io/api/v4"

// maxMentions is the per-query article cap imposed by the API's free plan.
const maxMentions = 100

// Client queries a GNews-compatible API for article counts.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a news client. An empty API key is allowed; lookups
// then short-circuit to zero.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Articles []json.RawMessage `json:"articles"`
}

// Mentions returns the number of articles mentioning the company in the
// last 30 days, capped at 100. Lookup failures return 0 so enrichment never
// stalls on the news API.
func (c *Client) Mentions(ctx context.Context, company string) (int, error) {
	if c.apiKey == "" || company == "" {
		return 0, nil
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%q", company))
	q.Set("lang", "en")
	q.Set("max", "100")
	q.Set("from", "30d")
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("news lookup failed", "company", company, "error", err)
		return 0, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("news lookup returned non-200", "company", company, "status", resp.StatusCode)
		return 0, nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.Warn("news response decode failed", "company", company, "error", err)
		return 0, nil
	}

	count := len(parsed.Articles)
	if count > maxMentions {
		count = maxMentions
	}
	return count, nil
}
