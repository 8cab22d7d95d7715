package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/projectica-ai/projectica/internal/assistant"
	"github.com/projectica-ai/projectica/internal/db"
	"github.com/projectica-ai/projectica/internal/metrics"
	"github.com/projectica-ai/projectica/internal/references"
	"github.com/projectica-ai/projectica/internal/service"
	"github.com/projectica-ai/projectica/internal/tools"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// writeRunError maps assistant run outcomes onto HTTP statuses.
func writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assistant.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, "assistant run timed out")
	case errors.Is(err, assistant.ErrRunFailed):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type askRequest struct {
	ProjectID string `json:"projectId"`
	Question  string `json:"question"`
	// Model overrides the configured default for this run only.
	Model string `json:"model"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProjectID == "" || strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "projectId and question are required")
		return
	}

	ctx := r.Context()
	user := UserEmail(ctx)

	if _, err := s.store.CreateMessage(ctx, user, req.ProjectID, "user", req.Question); err != nil {
		s.logger.Warn("persist user message", "error", err, "request_id", RequestID(ctx))
	}

	response, err := s.orch.RunToCompletion(ctx, assistant.Request{
		User:    user,
		Project: req.ProjectID,
		Input:   req.Question,
		Profile: assistant.PlannerProfile(s.cfg.DefaultModel),
		Model:   req.Model,
	})
	if err != nil {
		s.logger.Error("ask run failed", "error", err, "request_id", RequestID(ctx))
		writeRunError(w, err)
		return
	}

	if _, err := s.store.CreateMessage(ctx, user, req.ProjectID, "assistant", response); err != nil {
		s.logger.Warn("persist assistant message", "error", err, "request_id", RequestID(ctx))
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

type agentTaskRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleAgentTask(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentID")
	var req agentTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Task) == "" {
		writeError(w, http.StatusBadRequest, "task is required")
		return
	}

	ctx := r.Context()
	agent, err := s.store.GetAgent(ctx, UserEmail(ctx), agentID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "agent not found")
			return
		}
		s.logger.Error("load agent", "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	started := time.Now()
	response, err := s.agents.RunAgentTask(ctx, agent.Instructions, req.Task)
	if err != nil {
		s.logger.Error("agent task failed", "agent", agentID, "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "agent task failed")
		return
	}
	s.stats.RecordTiming(metrics.OpAgentTask, time.Since(started))

	writeJSON(w, http.StatusOK, map[string]string{
		"agent":    agent.Name,
		"response": response,
	})
}

type marketSearchRequest struct {
	Query     string `json:"query"`
	Summarize bool   `json:"summarize"`
}

type marketMetadata struct {
	Query       string    `json:"query"`
	GeneratedAt time.Time `json:"generatedAt"`
	Summary     string    `json:"summary,omitempty"`
}

type marketResponse struct {
	Analysis   string                 `json:"analysis"`
	References []references.Reference `json:"references"`
	Metadata   marketMetadata         `json:"metadata"`
}

// marketEnvelope wraps a normalized research result for the API. When
// summarize is set it asks the completion model for a key-findings digest; a
// summarizer failure drops the summary but never the analysis.
func (s *Server) marketEnvelope(ctx context.Context, query string, result references.Result, summarize bool) marketResponse {
	resp := marketResponse{
		Analysis:   result.Text,
		References: result.References,
		Metadata: marketMetadata{
			Query:       query,
			GeneratedAt: time.Now().UTC(),
		},
	}
	if summarize {
		summary, err := s.agents.SummarizeAnalysis(ctx, result.Text)
		if err != nil {
			s.logger.Warn("summarize analysis", "error", err, "request_id", RequestID(ctx))
		} else {
			resp.Metadata.Summary = summary
		}
	}
	return resp
}

func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	var req marketSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := r.Context()
	started := time.Now()
	result, err := s.searcher.MarketAnalysis(ctx, req.Query)
	if err != nil {
		s.logger.Error("market search failed", "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "market search failed")
		return
	}
	s.stats.RecordTiming(metrics.OpMarketSearch, time.Since(started))

	writeJSON(w, http.StatusOK, s.marketEnvelope(ctx, req.Query, result, req.Summarize))
}

type competitorRequest struct {
	CompanyName string   `json:"companyName"`
	Aspects     []string `json:"aspects"`
	Summarize   bool     `json:"summarize"`
}

func (s *Server) handleMarketCompetitor(w http.ResponseWriter, r *http.Request) {
	var req competitorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		writeError(w, http.StatusBadRequest, "companyName is required")
		return
	}

	ctx := r.Context()
	started := time.Now()
	result, err := s.searcher.CompetitorAnalysis(ctx, req.CompanyName, req.Aspects)
	if err != nil {
		s.logger.Error("competitor analysis failed", "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "competitor analysis failed")
		return
	}
	s.stats.RecordTiming(metrics.OpMarketSearch, time.Since(started))

	writeJSON(w, http.StatusOK, s.marketEnvelope(ctx, req.CompanyName, result, req.Summarize))
}

type trendsRequest struct {
	Industry  string `json:"industry"`
	TrendType string `json:"trendType"`
}

func (s *Server) handleMarketTrends(w http.ResponseWriter, r *http.Request) {
	var req trendsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Industry) == "" {
		writeError(w, http.StatusBadRequest, "industry is required")
		return
	}

	ctx := r.Context()
	started := time.Now()
	data, err := s.trends.Fetch(ctx, req.Industry, req.TrendType)
	if err != nil {
		s.logger.Error("trends fetch failed", "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "trends fetch failed")
		return
	}
	s.stats.RecordTiming(metrics.OpTrendsFetch, time.Since(started))

	writeJSON(w, http.StatusOK, data)
}

type analyzeRequest struct {
	Query string `json:"query"`
}

// handleMarketAnalyze runs the tool-equipped market assistant on a fresh
// thread. The assistant decides which research tools to call.
func (s *Server) handleMarketAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx := r.Context()
	response, err := s.orch.RunEphemeral(ctx, assistant.Request{
		User:    UserEmail(ctx),
		Input:   req.Query,
		Profile: assistant.MarketProfile(s.cfg.DefaultModel, tools.Definitions()),
	})
	if err != nil {
		s.logger.Error("market analyze failed", "error", err, "request_id", RequestID(ctx))
		writeRunError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"analysis": response})
}

func (s *Server) handleAutomate(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectID")
	ctx := r.Context()

	results, err := s.auto.AutomateProject(ctx, UserEmail(ctx), projectID)
	if err != nil {
		s.logger.Error("automation failed", "project", projectID, "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "automation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"projectId": projectID,
		"tasks":     results,
	})
}

type shareRequest struct {
	ProjectID string `json:"projectId"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	ctx := r.Context()
	share, err := s.sharer.CreateShare(ctx, UserEmail(ctx), req.ProjectID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error("create share failed", "error", err, "request_id", RequestID(ctx))
		writeError(w, http.StatusInternalServerError, "create share failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessKey": share.AccessKey})
}

func (s *Server) handleResolveShare(w http.ResponseWriter, r *http.Request) {
	accessKey := r.PathValue("accessKey")

	view, err := s.sharer.ResolveShare(r.Context(), accessKey)
	if err != nil {
		if errors.Is(err, service.ErrShareNotFound) {
			writeError(w, http.StatusNotFound, "share not found")
			return
		}
		s.logger.Error("resolve share failed", "error", err, "request_id", RequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "resolve share failed")
		return
	}

	writeJSON(w, http.StatusOK, view)
}
