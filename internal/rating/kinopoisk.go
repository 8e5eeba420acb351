package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultURL is the search endpoint queried when RATING_API_URL is unset.
// The escaped title is appended to it.
const DefaultURL = "https://api.kinopoisk.dev/v1.4/movie/search?page=1&limit=1&query="

// searchResponse is the envelope of the search endpoint.
type searchResponse struct {
	Docs  []Movie `json:"docs"`
	Total int     `json:"total"`
}

// Client queries the movie search API over HTTP with an API key.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	log     *zap.Logger
}

// NewClient returns a Client for baseURL.  timeout bounds every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log.Named("rating"),
	}
}

// Lookup returns the first search hit for title.
func (c *Client) Lookup(ctx context.Context, title string) (*Movie, bool) {
	m, err := c.search(ctx, title)
	if err != nil {
		c.log.Warn("rating lookup failed", zap.String("title", title), zap.Error(err))
		return nil, false
	}
	return m, m != nil
}

func (c *Client) search(ctx context.Context, title string) (*Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.QueryEscape(title), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Docs) == 0 {
		return nil, nil
	}
	return &out.Docs[0], nil
}
