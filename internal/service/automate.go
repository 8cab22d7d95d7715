// Package service implements the project-level operations composed from the
// assistant, storage and search layers: task automation and plan sharing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/projectica-ai/projectica/internal/assistant"
	"github.com/projectica-ai/projectica/internal/llm"
	"github.com/projectica-ai/projectica/internal/models"
)

// maxConcurrentTasks caps the parallel assistant runs per automation request.
const maxConcurrentTasks = 3

// TaskRunner executes one assistant run on a fresh thread.
type TaskRunner interface {
	RunEphemeral(ctx context.Context, req assistant.Request) (string, error)
}

// TaskStore is the storage surface automation needs.
type TaskStore interface {
	ListTasks(ctx context.Context, user, project string, status *string) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string, result *string) (*models.Task, error)
}

// TaskResult reports the outcome of one automated task.
type TaskResult struct {
	TaskID string `json:"taskId"`
	Title  string `json:"title"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Automator runs every open task of a project through the planning assistant.
type Automator struct {
	runner TaskRunner
	store  TaskStore
	logger *slog.Logger
	model  string
}

// NewAutomator creates an Automator. model is passed through to every run.
func NewAutomator(runner TaskRunner, store TaskStore, model string, logger *slog.Logger) *Automator {
	return &Automator{runner: runner, store: store, model: model, logger: logger}
}

// AutomateProject picks up all open tasks of the project and runs each one on
// its own thread so task runs never mix into the project's main conversation.
// Task failures are recorded per task; only fatal provider errors abort the
// whole batch.
func (a *Automator) AutomateProject(ctx context.Context, user, project string) ([]TaskResult, error) {
	status := models.TaskStatusOpen
	tasks, err := a.store.ListTasks(ctx, user, project, &status)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	if len(tasks) == 0 {
		return []TaskResult{}, nil
	}

	results := make([]TaskResult, len(tasks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTasks)
	for i, task := range tasks {
		g.Go(func() error {
			res, err := a.runTask(gctx, user, task)
			mu.Lock()
			results[i] = res
			mu.Unlock()
			// Per-task failures are recorded in the result; only fatal
			// provider errors abort the remaining tasks.
			if errors.Is(err, llm.ErrFatalAPI) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("automation aborted: %w", err)
	}
	return results, nil
}

func (a *Automator) runTask(ctx context.Context, user string, task models.Task) (TaskResult, error) {
	taskID := models.MustRecordIDString(task.ID)
	result := TaskResult{TaskID: taskID, Title: task.Title}

	if _, err := a.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusRunning, nil); err != nil {
		a.logger.Warn("mark task running failed", "task", taskID, "error", err)
	}

	prompt := fmt.Sprintf("Work out the following project task in detail, "+
		"with concrete steps and a clear deliverable:\n\n%s", task.Title)

	output, err := a.runner.RunEphemeral(ctx, assistant.Request{
		User:    user,
		Project: task.Project,
		Input:   prompt,
		Profile: assistant.PlannerProfile(a.model),
		Model:   a.model,
	})
	if err != nil {
		err = llm.WrapFatalError(err)
		a.logger.Warn("task automation failed", "task", taskID, "error", err)
		msg := err.Error()
		if _, uerr := a.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusFailed, &msg); uerr != nil {
			a.logger.Warn("mark task failed failed", "task", taskID, "error", uerr)
		}
		result.Status = models.TaskStatusFailed
		result.Error = msg
		return result, err
	}

	if _, err := a.store.UpdateTaskStatus(ctx, taskID, models.TaskStatusDone, &output); err != nil {
		a.logger.Warn("store task result failed", "task", taskID, "error", err)
	}
	result.Status = models.TaskStatusDone
	return result, nil
}
