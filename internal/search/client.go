// Package search talks to a Perplexity-compatible chat completions API and
// returns answers with source references renumbered for display.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/projectica-ai/projectica/internal/references"
)

const defaultBaseURL = "https://api.perplexity.ai"

// Sentinel errors for the upstream status codes callers map to responses.
var (
	ErrUnauthorized = errors.New("search: invalid api key")
	ErrRateLimited  = errors.New("search: rate limited")
	ErrBadRequest   = errors.New("search: invalid request")
)

// Config configures a search client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client queries an online-search LLM endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a search client. BaseURL defaults to the public
// Perplexity endpoint.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content    string                 `json:"content"`
			References []references.Reference `json:"references"`
		} `json:"message"`
	} `json:"choices"`
}

const marketSystemPrompt = "You are a market research analyst. Provide detailed, " +
	"data-driven answers with numbered citations like [1] for every claim that " +
	"relies on a source."

// MarketAnalysis answers a market research query with normalized citations.
func (c *Client) MarketAnalysis(ctx context.Context, query string) (references.Result, error) {
	return c.complete(ctx, marketSystemPrompt, query)
}

// CompetitorAnalysis researches a named company. Aspects narrows the focus;
// when empty the full profile is requested.
func (c *Client) CompetitorAnalysis(ctx context.Context, company string, aspects []string) (references.Result, error) {
	prompt := fmt.Sprintf("Analyze the company %q as a market competitor.", company)
	if len(aspects) > 0 {
		prompt += " Focus on: "
		for i, a := range aspects {
			if i > 0 {
				prompt += ", "
			}
			prompt += a
		}
		prompt += "."
	}
	return c.complete(ctx, marketSystemPrompt, prompt)
}

func (c *Client) complete(ctx context.Context, system, user string) (references.Result, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return references.Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return references.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return references.Result{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return references.Result{}, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return references.Result{}, ErrUnauthorized
	case http.StatusTooManyRequests:
		return references.Result{}, ErrRateLimited
	case http.StatusBadRequest:
		return references.Result{}, fmt.Errorf("%w: %s", ErrBadRequest, string(body))
	default:
		return references.Result{}, fmt.Errorf("search api: %s - %s", resp.Status, string(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return references.Result{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return references.Result{}, errors.New("search api: empty choices")
	}

	msg := chat.Choices[0].Message
	c.logger.Debug("search completion received",
		"model", c.cfg.Model,
		"references", len(msg.References))

	return references.Normalize(msg.Content, msg.References), nil
}
