// Package client provides an HTTP client for the Projectica server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/projectica-ai/projectica/internal/references"
	"github.com/projectica-ai/projectica/internal/service"
)

// Client talks to a running Projectica server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client.
// If baseURL is empty, uses PROJECTICA_SERVER_URL env var or defaults to localhost:8480.
// The bearer token comes from PROJECTICA_TOKEN when token is empty.
func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("PROJECTICA_SERVER_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8480"
	}
	if token == "" {
		token = os.Getenv("PROJECTICA_TOKEN")
	}

	timeout := 5 * time.Minute // assistant runs can poll for a while
	if t := os.Getenv("PROJECTICA_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error: %s", resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// Ask sends a question to the project's planning conversation.
func (c *Client) Ask(ctx context.Context, projectID, question string) (string, error) {
	var resp struct {
		Response string `json:"response"`
	}
	err := c.do(ctx, "POST", "/api/ask", map[string]string{
		"projectId": projectID,
		"question":  question,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// AgentTask runs a one-shot task with a stored agent.
func (c *Client) AgentTask(ctx context.Context, agentID, task string) (string, error) {
	var resp struct {
		Agent    string `json:"agent"`
		Response string `json:"response"`
	}
	err := c.do(ctx, "POST", "/api/agents/"+agentID+"/task", map[string]string{"task": task}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

// MarketSearch runs a cited market research query.
func (c *Client) MarketSearch(ctx context.Context, query string) (*references.Result, error) {
	var resp references.Result
	err := c.do(ctx, "POST", "/api/market/search", map[string]string{"query": query}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CompetitorAnalysis researches a named company.
func (c *Client) CompetitorAnalysis(ctx context.Context, company string, aspects []string) (*references.Result, error) {
	var resp references.Result
	err := c.do(ctx, "POST", "/api/market/competitor", map[string]any{
		"companyName": company,
		"aspects":     aspects,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarketTrends fetches trend data for an industry. The raw payload is
// returned for the caller to render.
func (c *Client) MarketTrends(ctx context.Context, industry, trendType string) (json.RawMessage, error) {
	var resp json.RawMessage
	err := c.do(ctx, "POST", "/api/market/trends", map[string]string{
		"industry":  industry,
		"trendType": trendType,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Analyze runs the tool-equipped market assistant.
func (c *Client) Analyze(ctx context.Context, query string) (string, error) {
	var resp struct {
		Analysis string `json:"analysis"`
	}
	err := c.do(ctx, "POST", "/api/market/analyze", map[string]string{"query": query}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Analysis, nil
}

// Automate runs all open tasks of a project through the assistant.
func (c *Client) Automate(ctx context.Context, projectID string) ([]service.TaskResult, error) {
	var resp struct {
		ProjectID string               `json:"projectId"`
		Tasks     []service.TaskResult `json:"tasks"`
	}
	err := c.do(ctx, "POST", "/api/projects/"+projectID+"/automate", nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateShare grants read-only access to a project and returns the key.
func (c *Client) CreateShare(ctx context.Context, projectID string) (string, error) {
	var resp struct {
		AccessKey string `json:"accessKey"`
	}
	err := c.do(ctx, "POST", "/api/share", map[string]string{"projectId": projectID}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AccessKey, nil
}

// GetShare resolves a shared project view by access key. No token required.
func (c *Client) GetShare(ctx context.Context, accessKey string) (*service.SharedProject, error) {
	var resp service.SharedProject
	err := c.do(ctx, "GET", "/api/share/"+accessKey, nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
