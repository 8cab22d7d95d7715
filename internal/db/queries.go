package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/projectica-ai/projectica/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// first unwraps the Query result wrapper and returns the first record, or
// ErrNotFound when the statement matched nothing.
func first[T any](results *[]surrealdb.QueryResult[[]T]) (*T, error) {
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return &(*results)[0].Result[0], nil
}

// all unwraps the Query result wrapper into a (possibly empty) slice.
func all[T any](results *[]surrealdb.QueryResult[[]T]) []T {
	if results == nil || len(*results) == 0 {
		return []T{}
	}
	return (*results)[0].Result
}

// GetThreadRef returns the conversation handle for a (user, project) pair.
// Returns ErrNotFound when no handle has been created yet.
func (c *Client) GetThreadRef(ctx context.Context, user, project string) (*models.ThreadRef, error) {
	results, err := surrealdb.Query[[]models.ThreadRef](ctx, c.db, `
		SELECT * FROM thread_ref WHERE user = $user AND project = $project LIMIT 1
	`, map[string]any{"user": user, "project": project})
	if err != nil {
		return nil, fmt.Errorf("get thread ref: %w", err)
	}
	return first(results)
}

// CreateThreadRef persists a conversation handle for a (user, project) pair.
// The unique index on (user, project) makes this a conditional create: when a
// concurrent request already won the race, the existing handle is returned and
// the supplied threadID is discarded.
func (c *Client) CreateThreadRef(ctx context.Context, user, project, threadID string) (*models.ThreadRef, error) {
	results, err := surrealdb.Query[[]models.ThreadRef](ctx, c.db, `
		CREATE thread_ref CONTENT {
			user: $user,
			project: $project,
			thread_id: $thread_id
		}
	`, map[string]any{"user": user, "project": project, "thread_id": threadID})
	if err = wrapQueryError(err); err != nil {
		if errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrTransactionConflict) {
			return c.GetThreadRef(ctx, user, project)
		}
		return nil, fmt.Errorf("create thread ref: %w", err)
	}
	return first(results)
}

// CreateMessage appends a chat message to a project's history.
func (c *Client) CreateMessage(ctx context.Context, user, project, role, content string) (*models.Message, error) {
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		CREATE message CONTENT {
			user: $user,
			project: $project,
			role: $role,
			content: $content
		}
	`, map[string]any{"user": user, "project": project, "role": role, "content": content})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return first(results)
}

// ListMessages returns a project's chat history, oldest first.
func (c *Client) ListMessages(ctx context.Context, user, project string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	results, err := surrealdb.Query[[]models.Message](ctx, c.db, `
		SELECT * FROM message WHERE user = $user AND project = $project
		ORDER BY created_at ASC LIMIT $limit
	`, map[string]any{"user": user, "project": project, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return all(results), nil
}

// CreateProject creates a project owned by user.
func (c *Client) CreateProject(ctx context.Context, user, name string) (*models.Project, error) {
	results, err := surrealdb.Query[[]models.Project](ctx, c.db, `
		CREATE project CONTENT { user: $user, name: $name }
	`, map[string]any{"user": user, "name": name})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return first(results)
}

// GetProject returns a project by id, scoped to its owner.
func (c *Client) GetProject(ctx context.Context, user, projectID string) (*models.Project, error) {
	results, err := surrealdb.Query[[]models.Project](ctx, c.db, `
		SELECT * FROM type::record("project", $id) WHERE user = $user
	`, map[string]any{"id": projectID, "user": user})
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return first(results)
}

// ListProjects returns all projects owned by user, newest first.
func (c *Client) ListProjects(ctx context.Context, user string) ([]models.Project, error) {
	results, err := surrealdb.Query[[]models.Project](ctx, c.db, `
		SELECT * FROM project WHERE user = $user ORDER BY created_at DESC
	`, map[string]any{"user": user})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return all(results), nil
}

// CreateTask adds an open task to a project.
func (c *Client) CreateTask(ctx context.Context, user, project, title string) (*models.Task, error) {
	results, err := surrealdb.Query[[]models.Task](ctx, c.db, `
		CREATE task CONTENT { user: $user, project: $project, title: $title }
	`, map[string]any{"user": user, "project": project, "title": title})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return first(results)
}

// ListTasks returns a project's tasks, optionally filtered by status.
func (c *Client) ListTasks(ctx context.Context, user, project string, status *string) ([]models.Task, error) {
	statusClause := ""
	vars := map[string]any{"user": user, "project": project}
	if status != nil {
		statusClause = "AND status = $status"
		vars["status"] = *status
	}
	sql := fmt.Sprintf(`
		SELECT * FROM task WHERE user = $user AND project = $project %s
		ORDER BY created_at ASC
	`, statusClause)

	results, err := surrealdb.Query[[]models.Task](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return all(results), nil
}

// UpdateTaskStatus transitions a task and records an optional result text.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID, status string, result *string) (*models.Task, error) {
	results, err := surrealdb.Query[[]models.Task](ctx, c.db, `
		UPDATE type::record("task", $id) SET
			status = $status,
			result = $result,
			updated_at = time::now()
	`, map[string]any{"id": taskID, "status": status, "result": result})
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return first(results)
}

// GetAgent returns an agent by id, visible to user. User-owned agents shadow
// nothing; system agents are readable by everyone.
func (c *Client) GetAgent(ctx context.Context, user, agentID string) (*models.Agent, error) {
	results, err := surrealdb.Query[[]models.Agent](ctx, c.db, `
		SELECT * FROM type::record("agent", $id)
		WHERE user = $user OR is_system = true
	`, map[string]any{"id": agentID, "user": user})
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	return first(results)
}

// CreateAgent stores an agent profile.
func (c *Client) CreateAgent(ctx context.Context, agent models.Agent) (*models.Agent, error) {
	results, err := surrealdb.Query[[]models.Agent](ctx, c.db, `
		CREATE agent CONTENT {
			user: $user,
			name: $name,
			description: $description,
			model: $model,
			instructions: $instructions,
			is_system: $is_system
		}
	`, map[string]any{
		"user":         agent.User,
		"name":         agent.Name,
		"description":  agent.Description,
		"model":        agent.Model,
		"instructions": agent.Instructions,
		"is_system":    agent.IsSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return first(results)
}

// CreateShare records an access key granting read access to a project.
func (c *Client) CreateShare(ctx context.Context, accessKey, project, owner string) (*models.Share, error) {
	results, err := surrealdb.Query[[]models.Share](ctx, c.db, `
		CREATE share CONTENT {
			access_key: $access_key,
			project: $project,
			owner: $owner,
			is_active: true
		}
	`, map[string]any{"access_key": accessKey, "project": project, "owner": owner})
	if err = wrapQueryError(err); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}
	return first(results)
}

// GetShareByKey resolves an access key to its share record. Inactive keys are
// treated as absent.
func (c *Client) GetShareByKey(ctx context.Context, accessKey string) (*models.Share, error) {
	results, err := surrealdb.Query[[]models.Share](ctx, c.db, `
		SELECT * FROM share WHERE access_key = $access_key AND is_active = true LIMIT 1
	`, map[string]any{"access_key": accessKey})
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return first(results)
}
