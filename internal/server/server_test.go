package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/projectica-ai/projectica/internal/assistant"
	"github.com/projectica-ai/projectica/internal/db"
	"github.com/projectica-ai/projectica/internal/metrics"
	"github.com/projectica-ai/projectica/internal/models"
	"github.com/projectica-ai/projectica/internal/references"
	"github.com/projectica-ai/projectica/internal/service"
	"github.com/projectica-ai/projectica/internal/trends"
)

type fakeOrch struct {
	response string
	err      error
	lastReq  assistant.Request
}

func (f *fakeOrch) RunToCompletion(_ context.Context, req assistant.Request) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

func (f *fakeOrch) RunEphemeral(_ context.Context, req assistant.Request) (string, error) {
	f.lastReq = req
	return f.response, f.err
}

type fakeStore struct {
	messages []models.Message
	agent    *models.Agent
	agentErr error
}

func (f *fakeStore) CreateMessage(_ context.Context, user, project, role, content string) (*models.Message, error) {
	msg := models.Message{User: user, Project: project, Role: role, Content: content}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeStore) ListMessages(_ context.Context, user, project string, limit int) ([]models.Message, error) {
	return f.messages, nil
}

func (f *fakeStore) GetAgent(_ context.Context, user, agentID string) (*models.Agent, error) {
	if f.agentErr != nil {
		return nil, f.agentErr
	}
	return f.agent, nil
}

type fakeSearcher struct {
	result references.Result
	err    error
}

func (f *fakeSearcher) MarketAnalysis(_ context.Context, query string) (references.Result, error) {
	return f.result, f.err
}

func (f *fakeSearcher) CompetitorAnalysis(_ context.Context, company string, aspects []string) (references.Result, error) {
	return f.result, f.err
}

type fakeTrends struct {
	data *trends.Data
	err  error
}

func (f *fakeTrends) Fetch(_ context.Context, industry, trendType string) (*trends.Data, error) {
	return f.data, f.err
}

type fakeAgentModel struct {
	response   string
	summary    string
	summaryErr error
	err        error
}

func (f *fakeAgentModel) RunAgentTask(_ context.Context, instructions, task string) (string, error) {
	return f.response, f.err
}

func (f *fakeAgentModel) SummarizeAnalysis(_ context.Context, analysis string) (string, error) {
	return f.summary, f.summaryErr
}

type fakeAutomator struct {
	results []service.TaskResult
	err     error
}

func (f *fakeAutomator) AutomateProject(_ context.Context, user, project string) ([]service.TaskResult, error) {
	return f.results, f.err
}

type fakeSharer struct {
	share *models.Share
	view  *service.SharedProject
	err   error
}

func (f *fakeSharer) CreateShare(_ context.Context, user, projectID string) (*models.Share, error) {
	return f.share, f.err
}

func (f *fakeSharer) ResolveShare(_ context.Context, accessKey string) (*service.SharedProject, error) {
	return f.view, f.err
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(token string) (string, error) {
	if token == "valid-token" {
		return "u@example.com", nil
	}
	return "", errors.New("bad token")
}

type testDeps struct {
	orch     *fakeOrch
	store    *fakeStore
	searcher *fakeSearcher
	trends   *fakeTrends
	agents   *fakeAgentModel
	auto     *fakeAutomator
	sharer   *fakeSharer
}

func newTestServer(deps testDeps) *Server {
	if deps.orch == nil {
		deps.orch = &fakeOrch{response: "ok"}
	}
	if deps.store == nil {
		deps.store = &fakeStore{}
	}
	if deps.searcher == nil {
		deps.searcher = &fakeSearcher{}
	}
	if deps.trends == nil {
		deps.trends = &fakeTrends{data: &trends.Data{Industry: "fintech"}}
	}
	if deps.agents == nil {
		deps.agents = &fakeAgentModel{response: "ok"}
	}
	if deps.auto == nil {
		deps.auto = &fakeAutomator{}
	}
	if deps.sharer == nil {
		deps.sharer = &fakeSharer{}
	}
	return New(
		Config{Port: "0", DefaultModel: "gpt-4"},
		deps.orch, deps.store, deps.searcher, deps.trends,
		deps.agents, deps.auto, deps.sharer, fakeVerifier{},
		nil, slog.New(slog.DiscardHandler),
	)
}

func doRequest(t *testing.T, s *Server, method, path, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(testDeps{}), "GET", "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAskRequiresAuth(t *testing.T) {
	s := newTestServer(testDeps{})

	rec := doRequest(t, s, "POST", "/api/ask", `{"projectId":"p","question":"q"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/ask", strings.NewReader(`{"projectId":"p","question":"q"}`))
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec2.Code)
	}
}

func TestAskHappyPath(t *testing.T) {
	orch := &fakeOrch{response: "Here is your plan..."}
	store := &fakeStore{}
	s := newTestServer(testDeps{orch: orch, store: store})

	rec := doRequest(t, s, "POST", "/api/ask", `{"projectId":"proj-1","question":"Plan my launch"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["response"] != "Here is your plan..." {
		t.Errorf("response = %q", resp["response"])
	}

	if orch.lastReq.User != "u@example.com" || orch.lastReq.Project != "proj-1" {
		t.Errorf("run request = %+v", orch.lastReq)
	}
	// Both sides of the exchange are persisted by the handler.
	if len(store.messages) != 2 || store.messages[0].Role != "user" || store.messages[1].Role != "assistant" {
		t.Errorf("persisted messages = %+v", store.messages)
	}
}

func TestAskValidation(t *testing.T) {
	s := newTestServer(testDeps{})
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing project", `{"question":"q"}`},
		{"missing question", `{"projectId":"p"}`},
		{"blank question", `{"projectId":"p","question":"   "}`},
		{"unknown field", `{"projectId":"p","question":"q","extra":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, "POST", "/api/ask", tt.body, true)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAskTimeoutMapsTo504(t *testing.T) {
	s := newTestServer(testDeps{orch: &fakeOrch{err: assistant.ErrTimeout}})

	rec := doRequest(t, s, "POST", "/api/ask", `{"projectId":"p","question":"q"}`, true)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rec.Code)
	}
}

func TestAskRunFailureMapsTo500(t *testing.T) {
	s := newTestServer(testDeps{orch: &fakeOrch{err: assistant.ErrRunFailed}})

	rec := doRequest(t, s, "POST", "/api/ask", `{"projectId":"p","question":"q"}`, true)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestAgentTask(t *testing.T) {
	s := newTestServer(testDeps{
		store:  &fakeStore{agent: &models.Agent{Name: "Copywriter", Instructions: "write copy"}},
		agents: &fakeAgentModel{response: "Some copy"},
	})

	rec := doRequest(t, s, "POST", "/api/agents/agent-1/task", `{"task":"write a headline"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["agent"] != "Copywriter" || resp["response"] != "Some copy" {
		t.Errorf("resp = %v", resp)
	}
}

func TestAgentTaskUnknownAgent(t *testing.T) {
	s := newTestServer(testDeps{store: &fakeStore{agentErr: db.ErrNotFound}})

	rec := doRequest(t, s, "POST", "/api/agents/missing/task", `{"task":"t"}`, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMarketSearch(t *testing.T) {
	s := newTestServer(testDeps{searcher: &fakeSearcher{result: references.Result{
		Text:       "Growth is strong [1].",
		References: []references.Reference{{Title: "A", URL: "https://a.example"}},
	}}})

	rec := doRequest(t, s, "POST", "/api/market/search", `{"query":"EV market"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp marketResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Analysis != "Growth is strong [1]." || len(resp.References) != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Metadata.Query != "EV market" || resp.Metadata.GeneratedAt.IsZero() {
		t.Errorf("metadata = %+v", resp.Metadata)
	}
	if resp.Metadata.Summary != "" {
		t.Errorf("summary should be empty without summarize, got %q", resp.Metadata.Summary)
	}
}

func TestMarketSearchSummarized(t *testing.T) {
	s := newTestServer(testDeps{
		searcher: &fakeSearcher{result: references.Result{Text: "Long analysis [1]."}},
		agents:   &fakeAgentModel{summary: "Key findings."},
	})

	rec := doRequest(t, s, "POST", "/api/market/search", `{"query":"EV market","summarize":true}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp marketResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.Summary != "Key findings." {
		t.Errorf("summary = %q", resp.Metadata.Summary)
	}
}

func TestMarketSearchSummarizerFailureKeepsAnalysis(t *testing.T) {
	s := newTestServer(testDeps{
		searcher: &fakeSearcher{result: references.Result{Text: "Long analysis [1]."}},
		agents:   &fakeAgentModel{summaryErr: errors.New("model unavailable")},
	})

	rec := doRequest(t, s, "POST", "/api/market/search", `{"query":"EV market","summarize":true}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp marketResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Analysis != "Long analysis [1]." || resp.Metadata.Summary != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestMarketCompetitorEnvelope(t *testing.T) {
	s := newTestServer(testDeps{searcher: &fakeSearcher{result: references.Result{
		Text: "Acme leads on pricing [1].",
	}}})

	rec := doRequest(t, s, "POST", "/api/market/competitor", `{"companyName":"Acme"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp marketResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Analysis != "Acme leads on pricing [1]." || resp.Metadata.Query != "Acme" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestMarketTrendsValidation(t *testing.T) {
	s := newTestServer(testDeps{})

	rec := doRequest(t, s, "POST", "/api/market/trends", `{"trendType":"current"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMarketAnalyzeUsesEphemeralRun(t *testing.T) {
	orch := &fakeOrch{response: "Full analysis"}
	s := newTestServer(testDeps{orch: orch})

	rec := doRequest(t, s, "POST", "/api/market/analyze", `{"query":"EV market deep dive"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if orch.lastReq.Profile.Name == "" || len(orch.lastReq.Profile.Tools) == 0 {
		t.Errorf("analyze should use the tool-equipped profile, got %+v", orch.lastReq.Profile)
	}
}

func TestAutomate(t *testing.T) {
	s := newTestServer(testDeps{auto: &fakeAutomator{results: []service.TaskResult{
		{TaskID: "t1", Title: "Design landing page", Status: models.TaskStatusDone},
	}}})

	rec := doRequest(t, s, "POST", "/api/projects/proj-1/automate", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		ProjectID string               `json:"projectId"`
		Tasks     []service.TaskResult `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ProjectID != "proj-1" || len(resp.Tasks) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCreateShare(t *testing.T) {
	s := newTestServer(testDeps{sharer: &fakeSharer{share: &models.Share{AccessKey: "abc123"}}})

	rec := doRequest(t, s, "POST", "/api/share", `{"projectId":"proj-1"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["accessKey"] != "abc123" {
		t.Errorf("accessKey = %q", resp["accessKey"])
	}
}

func TestResolveShareIsPublic(t *testing.T) {
	s := newTestServer(testDeps{sharer: &fakeSharer{view: &service.SharedProject{
		ProjectName: "Launch Plan",
	}}})

	// No Authorization header.
	rec := doRequest(t, s, "GET", "/api/share/abc123", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var view service.SharedProject
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.ProjectName != "Launch Plan" {
		t.Errorf("view = %+v", view)
	}
}

func TestResolveShareUnknownKey(t *testing.T) {
	s := newTestServer(testDeps{sharer: &fakeSharer{err: service.ErrShareNotFound}})

	rec := doRequest(t, s, "GET", "/api/share/deadbeef", "", false)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(testDeps{})

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q", got)
	}
}

func TestAskModelOverride(t *testing.T) {
	orch := &fakeOrch{response: "answer"}
	s := newTestServer(testDeps{orch: orch})

	rec := doRequest(t, s, "POST", "/api/ask", `{"projectId":"p","question":"q","model":"gpt-4o"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if orch.lastReq.Model != "gpt-4o" {
		t.Errorf("run model = %q, want gpt-4o", orch.lastReq.Model)
	}
}

func TestAskDefaultsToProfileModel(t *testing.T) {
	orch := &fakeOrch{response: "answer"}
	s := newTestServer(testDeps{orch: orch})

	doRequest(t, s, "POST", "/api/ask", `{"projectId":"p","question":"q"}`, true)
	if orch.lastReq.Model != "" {
		t.Errorf("run model = %q, want empty (profile default)", orch.lastReq.Model)
	}
}

func TestStatsRequiresAuth(t *testing.T) {
	rec := doRequest(t, newTestServer(testDeps{}), "GET", "/api/stats", "", false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestStatsReflectHandledRequests(t *testing.T) {
	s := newTestServer(testDeps{
		store:  &fakeStore{agent: &models.Agent{Name: "Copywriter"}},
		agents: &fakeAgentModel{response: "copy"},
	})

	doRequest(t, s, "POST", "/api/agents/agent-1/task", `{"task":"t"}`, true)
	doRequest(t, s, "POST", "/api/market/search", `{"query":"EVs"}`, true)

	rec := doRequest(t, s, "GET", "/api/stats", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.AgentTasks == nil || snap.AgentTasks.Count != 1 {
		t.Errorf("AgentTasks = %+v, want count 1", snap.AgentTasks)
	}
	if snap.MarketSearches == nil || snap.MarketSearches.Count != 1 {
		t.Errorf("MarketSearches = %+v, want count 1", snap.MarketSearches)
	}
	if snap.AssistantRuns != nil {
		t.Errorf("AssistantRuns = %+v, want nil with no runs", snap.AssistantRuns)
	}
}
