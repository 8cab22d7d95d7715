package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "sonar-pro",
	}, slog.New(slog.DiscardHandler))
}

func TestMarketAnalysisNormalizesReferences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "sonar-pro" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"message": {
					"content": "EV sales grew [3] while hybrids slowed [1].",
					"references": [
						{"title": "A", "url": "https://a.example"},
						{"title": "B", "url": "https://b.example"},
						{"title": "C", "url": "https://c.example"},
						{"title": "D", "url": "https://d.example"}
					]
				}
			}]
		}`))
	})

	res, err := client.MarketAnalysis(context.Background(), "EV market outlook")
	if err != nil {
		t.Fatal(err)
	}
	if want := "EV sales grew [2] while hybrids slowed [1]."; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if len(res.References) != 3 {
		t.Fatalf("expected 3 references after padding, got %d", len(res.References))
	}
	if res.References[0].Title != "A" || res.References[1].Title != "C" || res.References[2].Title != "B" {
		t.Errorf("references out of renumbered order: %+v", res.References)
	}
}

func TestCompetitorAnalysisBuildsFocusedPrompt(t *testing.T) {
	var gotPrompt string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		gotPrompt = req.Messages[1].Content
		w.Write([]byte(`{"choices":[{"message":{"content":"ok","references":[]}}]}`))
	})

	_, err := client.CompetitorAnalysis(context.Background(), "Acme Corp", []string{"pricing", "strategy"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotPrompt, "Acme Corp") {
		t.Errorf("prompt missing company: %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "pricing, strategy") {
		t.Errorf("prompt missing aspects: %q", gotPrompt)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"bad request", http.StatusBadRequest, ErrBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, err := client.MarketAnalysis(context.Background(), "q")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyChoicesIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := client.MarketAnalysis(context.Background(), "q")
	if err == nil {
		t.Fatal("expected an error for empty choices")
	}
}
