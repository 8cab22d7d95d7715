package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ThreadRef binds a (user, project) pair to the durable remote thread held by
// the assistant service. At most one active ref exists per pair; it is created
// lazily and never deleted by the orchestrator.
type ThreadRef struct {
	ID        surrealmodels.RecordID `json:"id"`
	User      string                 `json:"user"`
	Project   string                 `json:"project"`
	ThreadID  string                 `json:"thread_id"`
	CreatedAt time.Time              `json:"created_at"`
}

// Message is a single chat message within a project conversation.
type Message struct {
	ID        surrealmodels.RecordID `json:"id"`
	User      string                 `json:"user"`
	Project   string                 `json:"project"`
	Role      string                 `json:"role"` // "user" | "assistant"
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"created_at"`
}

// Agent is a stored assistant configuration usable for direct completion tasks.
type Agent struct {
	ID           surrealmodels.RecordID `json:"id"`
	User         string                 `json:"user"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Model        string                 `json:"model"`
	Instructions string                 `json:"instructions"`
	IsSystem     bool                   `json:"is_system"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Share grants read access to a project via an unguessable access key.
type Share struct {
	ID        surrealmodels.RecordID `json:"id"`
	AccessKey string                 `json:"access_key"`
	Project   string                 `json:"project"`
	Owner     string                 `json:"owner"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt time.Time              `json:"created_at"`
}
