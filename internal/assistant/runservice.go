// Package assistant drives asynchronous assistant runs to completion: thread
// resolution, message append, run creation, status polling and tool-call
// fulfillment.
package assistant

import "context"

// RunStatus is the observed lifecycle state of a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
)

// ToolCallRequest is a pending function call emitted by a run in the
// requires_action state. Arguments is the raw JSON payload.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments string
}

// RunState is a snapshot of a run as reported by the assistant service.
type RunState struct {
	ID         string
	Status     RunStatus
	ErrMessage string
	ToolCalls  []ToolCallRequest
}

// ToolOutput answers one ToolCallRequest.
type ToolOutput struct {
	CallID string
	Output string
}

// AssistantMessage is the newest message on a thread. IsText is false when
// the service returned non-text content (e.g. an image).
type AssistantMessage struct {
	Text   string
	IsText bool
}

// ToolDefinition declares one callable function on an assistant profile.
// Parameters is a JSON-schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Profile is a named, reusable assistant configuration.
type Profile struct {
	Name         string
	Description  string
	Instructions string
	Model        string
	Tools        []ToolDefinition
}

// RunService is the narrow surface the orchestrator needs from an assistant
// provider. Any provider offering equivalent primitives is substitutable;
// tests use an in-memory fake.
type RunService interface {
	// FindAssistant looks up an assistant identity by profile name.
	FindAssistant(ctx context.Context, name string) (id string, found bool, err error)
	// CreateAssistant registers a new assistant from a profile.
	CreateAssistant(ctx context.Context, profile Profile) (id string, err error)
	// CreateThread opens a new durable conversation thread.
	CreateThread(ctx context.Context) (threadID string, err error)
	// AppendMessage adds a user message to a thread.
	AppendMessage(ctx context.Context, threadID, content string) error
	// StartRun creates a run of assistantID against threadID. A non-empty
	// model overrides the assistant's default.
	StartRun(ctx context.Context, threadID, assistantID, model string) (RunState, error)
	// PollRun retrieves the current state of a run.
	PollRun(ctx context.Context, threadID, runID string) (RunState, error)
	// SubmitToolOutputs answers all pending tool calls of a run in one batch.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error
	// CancelRun requests cancellation of an unfinished run.
	CancelRun(ctx context.Context, threadID, runID string) error
	// LatestMessage returns the newest message on a thread.
	LatestMessage(ctx context.Context, threadID string) (AssistantMessage, error)
}
