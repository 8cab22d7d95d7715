// Package trends fetches search-interest data for an industry from a trends
// API: interest over time, related topics and related queries.
package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"
)

// Data aggregates the three trend dimensions for one industry. The payloads
// are passed through to API consumers unmodified.
type Data struct {
	Industry       string          `json:"industry"`
	Timeframe      string          `json:"timeframe"`
	Interest       json.RawMessage `json:"interestOverTime"`
	RelatedTopics  json.RawMessage `json:"relatedTopics"`
	RelatedQueries json.RawMessage `json:"relatedQueries"`
	FetchedAt      time.Time       `json:"fetchedAt"`
}

// Client queries a trends API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a trends client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// timeframeWindow maps a trend type to the lookback window requested from the
// API. Unknown types fall back to the current window.
func timeframeWindow(trendType string) string {
	switch trendType {
	case "historical":
		return "365d"
	case "forecast":
		return "30d"
	default: // "current"
		return "7d"
	}
}

// Fetch retrieves all three trend dimensions in parallel. trendType is one of
// "current", "historical" or "forecast".
func (c *Client) Fetch(ctx context.Context, industry, trendType string) (*Data, error) {
	window := timeframeWindow(trendType)
	data := &Data{
		Industry:  industry,
		Timeframe: window,
		FetchedAt: time.Now().UTC(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := c.get(ctx, "/interest-over-time", industry, window)
		if err != nil {
			return fmt.Errorf("interest over time: %w", err)
		}
		data.Interest = payload
		return nil
	})
	g.Go(func() error {
		payload, err := c.get(ctx, "/related-topics", industry, window)
		if err != nil {
			return fmt.Errorf("related topics: %w", err)
		}
		data.RelatedTopics = payload
		return nil
	})
	g.Go(func() error {
		payload, err := c.get(ctx, "/related-queries", industry, window)
		if err != nil {
			return fmt.Errorf("related queries: %w", err)
		}
		data.RelatedQueries = payload
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug("trends fetched", "industry", industry, "timeframe", window)
	return data, nil
}

func (c *Client) get(ctx context.Context, path, industry, window string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s%s?keyword=%s&timeframe=%s",
		c.baseURL, path, url.QueryEscape(industry), url.QueryEscape(window))

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends api: %s - %s", resp.Status, string(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("trends api: invalid JSON payload")
	}
	return json.RawMessage(body), nil
}
