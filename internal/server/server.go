// Package server exposes the planning service over HTTP: project
// conversations, market research, task automation and plan sharing.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/projectica-ai/projectica/internal/assistant"
	"github.com/projectica-ai/projectica/internal/metrics"
	"github.com/projectica-ai/projectica/internal/models"
	"github.com/projectica-ai/projectica/internal/references"
	"github.com/projectica-ai/projectica/internal/service"
	"github.com/projectica-ai/projectica/internal/trends"
)

// Orchestrator drives assistant runs.
type Orchestrator interface {
	RunToCompletion(ctx context.Context, req assistant.Request) (string, error)
	RunEphemeral(ctx context.Context, req assistant.Request) (string, error)
}

// Store is the storage surface the handlers need.
type Store interface {
	CreateMessage(ctx context.Context, user, project, role, content string) (*models.Message, error)
	ListMessages(ctx context.Context, user, project string, limit int) ([]models.Message, error)
	GetAgent(ctx context.Context, user, agentID string) (*models.Agent, error)
}

// Searcher answers market research queries with cited sources.
type Searcher interface {
	MarketAnalysis(ctx context.Context, query string) (references.Result, error)
	CompetitorAnalysis(ctx context.Context, company string, aspects []string) (references.Result, error)
}

// TrendsFetcher retrieves search-interest data.
type TrendsFetcher interface {
	Fetch(ctx context.Context, industry, trendType string) (*trends.Data, error)
}

// AgentModel runs direct completions with a stored agent persona and
// condenses long analyses into key findings.
type AgentModel interface {
	RunAgentTask(ctx context.Context, instructions, task string) (string, error)
	SummarizeAnalysis(ctx context.Context, analysis string) (string, error)
}

// Automator runs a project's open tasks through the assistant.
type Automator interface {
	AutomateProject(ctx context.Context, user, project string) ([]service.TaskResult, error)
}

// Sharer grants and resolves read-only project access.
type Sharer interface {
	CreateShare(ctx context.Context, user, projectID string) (*models.Share, error)
	ResolveShare(ctx context.Context, accessKey string) (*service.SharedProject, error)
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Config holds the server's runtime settings.
type Config struct {
	Port         string
	DefaultModel string
}

// Server is the HTTP front of the planning service.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	orch     Orchestrator
	store    Store
	searcher Searcher
	trends   TrendsFetcher
	agents   AgentModel
	auto     Automator
	sharer   Sharer
	verifier TokenVerifier
	stats    *metrics.Collector

	httpServer *http.Server
}

// New wires the handlers to their dependencies. stats may be shared with the
// orchestrator so run and request metrics land in one snapshot.
func New(cfg Config, orch Orchestrator, store Store, searcher Searcher, trendsClient TrendsFetcher,
	agents AgentModel, auto Automator, sharer Sharer, verifier TokenVerifier,
	stats *metrics.Collector, logger *slog.Logger) *Server {
	if stats == nil {
		stats = metrics.NewCollector()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		orch:     orch,
		store:    store,
		searcher: searcher,
		trends:   trendsClient,
		agents:   agents,
		auto:     auto,
		sharer:   sharer,
		verifier: verifier,
		stats:    stats,
	}
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /api/share/{accessKey}", http.HandlerFunc(s.handleResolveShare))

	authed := func(h http.HandlerFunc) http.Handler {
		return s.authMiddleware(h)
	}
	mux.Handle("POST /api/ask", authed(s.handleAsk))
	mux.Handle("GET /api/ask/stream", authed(s.handleAskStream))
	mux.Handle("POST /api/agents/{agentID}/task", authed(s.handleAgentTask))
	mux.Handle("POST /api/market/search", authed(s.handleMarketSearch))
	mux.Handle("POST /api/market/competitor", authed(s.handleMarketCompetitor))
	mux.Handle("POST /api/market/trends", authed(s.handleMarketTrends))
	mux.Handle("POST /api/market/analyze", authed(s.handleMarketAnalyze))
	mux.Handle("POST /api/projects/{projectID}/automate", authed(s.handleAutomate))
	mux.Handle("POST /api/share", authed(s.handleCreateShare))
	mux.Handle("GET /api/stats", authed(s.handleStats))

	return requestIDMiddleware(s.loggingMiddleware(mux))
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
