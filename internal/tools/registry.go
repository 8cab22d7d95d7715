// Package tools implements the fixed set of functions the market research
// assistant can call, and the registry that dispatches them by name.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Handler executes one tool call. args is the raw JSON argument payload from
// the assistant service; the returned string is the JSON output submitted
// back to the run.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Registry maps tool names to handlers. The tool set is fixed at
// construction; handlers are deterministic transformations of their
// arguments and perform no network calls.
type Registry struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry creates a registry with all market research tools registered.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
	r.register(ToolSearchMarketData, handleSearchMarketData)
	r.register(ToolAnalyzeCompetitors, handleAnalyzeCompetitors)
	r.register(ToolGetMarketTrends, handleGetMarketTrends)
	return r
}

func (r *Registry) register(name string, h Handler) {
	r.handlers[name] = h
}

// Dispatch runs the named tool and returns its JSON output. Unknown names
// and handler failures yield an error-shaped JSON payload rather than
// failing the run, so the assistant can see the problem and continue.
func (r *Registry) Dispatch(ctx context.Context, name, arguments string) string {
	h, ok := r.handlers[name]
	if !ok {
		r.logger.Warn("unknown tool requested", "tool", name)
		return errorOutput("Unknown function: " + name)
	}

	if msg := validateArguments(name, arguments); msg != "" {
		r.logger.Warn("tool call rejected", "tool", name, "reason", msg)
		return errorOutput(msg)
	}

	out, err := h(ctx, json.RawMessage(arguments))
	if err != nil {
		r.logger.Error("tool handler failed", "tool", name, "error", err)
		return errorOutput(err.Error())
	}
	return out
}

// validateArguments checks a call's arguments against the tool's required
// parameter list and returns an error message for the first one missing.
// Malformed JSON passes through; the handler's own parse reports it.
func validateArguments(name, arguments string) string {
	required, ok := RequiredParams(name)
	if !ok {
		return ""
	}
	var args map[string]json.RawMessage
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}
	for _, param := range required {
		raw, present := args[param]
		if !present || string(raw) == `""` || string(raw) == "null" {
			return "Missing required parameter: " + param
		}
	}
	return ""
}

// successOutput wraps a data payload in the success envelope.
func successOutput(data any) (string, error) {
	encoded, err := json.Marshal(struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}{Status: "success", Data: data})
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func errorOutput(message string) string {
	encoded, _ := json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: "error", Message: message})
	return string(encoded)
}
