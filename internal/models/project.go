// Package models defines data structures for the Projectica planning service.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Project is a user-owned planning project.
type Project struct {
	ID        surrealmodels.RecordID `json:"id"`
	User      string                 `json:"user"`
	Name      string                 `json:"name"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Task is a single actionable item on a project plan.
type Task struct {
	ID        surrealmodels.RecordID `json:"id"`
	User      string                 `json:"user"`
	Project   string                 `json:"project"`
	Title     string                 `json:"title"`
	Status    string                 `json:"status"` // "open" | "running" | "done" | "failed"
	Result    *string                `json:"result,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Task status values.
const (
	TaskStatusOpen    = "open"
	TaskStatusRunning = "running"
	TaskStatusDone    = "done"
	TaskStatusFailed  = "failed"
)
