package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/projectica-ai/projectica/internal/db"
	"github.com/projectica-ai/projectica/internal/metrics"
	"github.com/projectica-ai/projectica/internal/models"
)

// NonTextResponse is returned when a completed run's newest message carries
// non-text content.
const NonTextResponse = "Non-text response received"

// ThreadStore persists conversation handles keyed by (user, project).
// Implemented by db.Client.
type ThreadStore interface {
	GetThreadRef(ctx context.Context, user, project string) (*models.ThreadRef, error)
	CreateThreadRef(ctx context.Context, user, project, threadID string) (*models.ThreadRef, error)
}

// ToolDispatcher resolves a tool call by name into its JSON output string.
// Implemented by tools.Registry.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, name, arguments string) string
}

// Options bound the polling loop.
type Options struct {
	// InitialDelay is the wait before the second status check; it doubles
	// every iteration. Defaults to 500ms.
	InitialDelay time.Duration
	// MaxAttempts caps the number of status checks. Defaults to 10.
	MaxAttempts int
	// Metrics, when set, receives per-run timing, poll and tool-call counts.
	Metrics *metrics.Collector
}

// Request describes one orchestration: append Input to the conversation owned
// by (User, Project) and run the given Profile against it.
type Request struct {
	User    string
	Project string
	Input   string
	Profile Profile
	// Model optionally overrides the profile's model for this run.
	Model string
	// Progress, when set, receives partial response text observed while the
	// run is still in progress.
	Progress func(partial string)
}

// Orchestrator drives assistant runs to completion. It owns the conversation
// handle and run lifecycle; it never persists chat messages, that is the
// caller's responsibility.
type Orchestrator struct {
	svc     RunService
	store   ThreadStore
	tools   ToolDispatcher
	logger  *slog.Logger
	metrics *metrics.Collector

	initialDelay time.Duration
	maxAttempts  int

	mu           sync.Mutex
	assistantIDs map[string]string // profile name -> assistant id
}

// New creates an Orchestrator. store may be nil when only ephemeral runs are
// needed; tools may be nil for profiles that declare no tools.
func New(svc RunService, store ThreadStore, tools ToolDispatcher, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 500 * time.Millisecond
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &Orchestrator{
		svc:          svc,
		store:        store,
		tools:        tools,
		logger:       logger,
		metrics:      opts.Metrics,
		initialDelay: opts.InitialDelay,
		maxAttempts:  opts.MaxAttempts,
		assistantIDs: make(map[string]string),
	}
}

// RunToCompletion resolves the durable conversation for (User, Project),
// appends Input and drives a new run to a terminal state, returning the
// assistant's final text.
func (o *Orchestrator) RunToCompletion(ctx context.Context, req Request) (string, error) {
	assistantID, err := o.resolveAssistant(ctx, req.Profile)
	if err != nil {
		return "", err
	}

	threadID, err := o.resolveThread(ctx, req.User, req.Project)
	if err != nil {
		return "", err
	}

	return o.runOnThread(ctx, threadID, assistantID, req)
}

// RunEphemeral runs a profile against a fresh throwaway thread. Used by the
// one-shot analysis paths that keep no conversation history.
func (o *Orchestrator) RunEphemeral(ctx context.Context, req Request) (string, error) {
	assistantID, err := o.resolveAssistant(ctx, req.Profile)
	if err != nil {
		return "", err
	}

	threadID, err := o.svc.CreateThread(ctx)
	if err != nil {
		return "", err
	}

	return o.runOnThread(ctx, threadID, assistantID, req)
}

// resolveAssistant returns the assistant identity for a profile, registering
// it once on first use. The lock spans the remote lookup and create so
// concurrent first callers resolve to a single assistant; registration only
// happens once per profile, so the serialization is short-lived.
func (o *Orchestrator) resolveAssistant(ctx context.Context, profile Profile) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if id, ok := o.assistantIDs[profile.Name]; ok {
		return id, nil
	}

	id, found, err := o.svc.FindAssistant(ctx, profile.Name)
	if err != nil {
		return "", err
	}
	if !found {
		id, err = o.svc.CreateAssistant(ctx, profile)
		if err != nil {
			return "", err
		}
		o.logger.Info("registered assistant", "name", profile.Name, "id", id)
	}

	o.assistantIDs[profile.Name] = id
	return id, nil
}

// resolveThread returns the durable thread for (user, project), creating and
// persisting one on first use. The store's conditional create resolves
// concurrent first calls to a single winner.
func (o *Orchestrator) resolveThread(ctx context.Context, user, project string) (string, error) {
	ref, err := o.store.GetThreadRef(ctx, user, project)
	if err == nil {
		return ref.ThreadID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", err
	}

	threadID, err := o.svc.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	ref, err = o.store.CreateThreadRef(ctx, user, project, threadID)
	if err != nil {
		return "", err
	}
	if ref.ThreadID != threadID {
		// Lost the race; the winner's thread is the conversation. The
		// thread created above is orphaned remotely, which is harmless.
		o.logger.Debug("discarded losing thread", "user", user, "project", project)
	}
	return ref.ThreadID, nil
}

// runOnThread appends the input, starts a run and polls it to a terminal
// state, fulfilling tool calls along the way.
func (o *Orchestrator) runOnThread(ctx context.Context, threadID, assistantID string, req Request) (string, error) {
	if err := o.svc.AppendMessage(ctx, threadID, req.Input); err != nil {
		return "", err
	}

	run, err := o.svc.StartRun(ctx, threadID, assistantID, req.Model)
	if err != nil {
		return "", err
	}
	o.logger.Debug("run started", "run_id", run.ID, "thread_id", threadID)

	started := time.Now()
	polls := 0
	toolCalls := 0

	var lastPartial string
	delay := o.initialDelay

	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		state, err := o.svc.PollRun(ctx, threadID, run.ID)
		if err != nil {
			return "", err
		}
		polls++

		switch state.Status {
		case RunStatusCompleted:
			msg, err := o.svc.LatestMessage(ctx, threadID)
			if err != nil {
				return "", err
			}
			if o.metrics != nil {
				o.metrics.RecordRun(time.Since(started), polls, toolCalls)
			}
			if !msg.IsText {
				return NonTextResponse, nil
			}
			return msg.Text, nil

		case RunStatusFailed:
			if state.ErrMessage != "" {
				return "", fmt.Errorf("%w: %s", ErrRunFailed, state.ErrMessage)
			}
			return "", ErrRunFailed

		case RunStatusRequiresAction:
			toolCalls += len(state.ToolCalls)
			if err := o.fulfillToolCalls(ctx, threadID, state); err != nil {
				return "", err
			}
			// Resume polling the same run immediately.
			continue

		default:
			// queued / in_progress: optionally surface partial output.
			if req.Progress != nil {
				if msg, err := o.svc.LatestMessage(ctx, threadID); err == nil && msg.IsText && msg.Text != lastPartial {
					lastPartial = msg.Text
					req.Progress(msg.Text)
				}
			}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	// Bound exhausted. Best-effort cancellation so the remote run is not
	// left executing unobserved.
	cancelCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.svc.CancelRun(cancelCtx, threadID, run.ID); err != nil {
		o.logger.Warn("failed to cancel timed-out run", "run_id", run.ID, "error", err)
	}
	return "", ErrTimeout
}

// fulfillToolCalls dispatches every pending tool call and submits the outputs
// in a single batch, keyed by the originating call ids.
func (o *Orchestrator) fulfillToolCalls(ctx context.Context, threadID string, state RunState) error {
	if o.tools == nil {
		return fmt.Errorf("run %s requires tool action but no dispatcher is configured", state.ID)
	}

	outputs := make([]ToolOutput, 0, len(state.ToolCalls))
	for _, call := range state.ToolCalls {
		o.logger.Debug("dispatching tool call", "run_id", state.ID, "tool", call.Name)
		outputs = append(outputs, ToolOutput{
			CallID: call.ID,
			Output: o.tools.Dispatch(ctx, call.Name, call.Arguments),
		})
	}
	return o.svc.SubmitToolOutputs(ctx, threadID, state.ID, outputs)
}
