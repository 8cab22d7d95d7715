package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/projectica-ai/projectica/internal/db"
	"github.com/projectica-ai/projectica/internal/models"
)

// ErrShareNotFound is returned when an access key resolves to no active share.
var ErrShareNotFound = errors.New("share not found")

// ShareStore is the storage surface sharing needs.
type ShareStore interface {
	GetProject(ctx context.Context, user, projectID string) (*models.Project, error)
	CreateShare(ctx context.Context, accessKey, project, owner string) (*models.Share, error)
	GetShareByKey(ctx context.Context, accessKey string) (*models.Share, error)
	ListTasks(ctx context.Context, user, project string, status *string) ([]models.Task, error)
}

// SharedProject is the read-only view served to access-key holders.
type SharedProject struct {
	ProjectName string        `json:"projectName"`
	Tasks       []models.Task `json:"tasks"`
}

// Sharer grants and resolves read-only project access via random keys.
type Sharer struct {
	store  ShareStore
	logger *slog.Logger
}

// NewSharer creates a Sharer.
func NewSharer(store ShareStore, logger *slog.Logger) *Sharer {
	return &Sharer{store: store, logger: logger}
}

// CreateShare generates an access key for the project and persists the grant.
// The caller must own the project.
func (s *Sharer) CreateShare(ctx context.Context, user, projectID string) (*models.Share, error) {
	if _, err := s.store.GetProject(ctx, user, projectID); err != nil {
		return nil, fmt.Errorf("verify project: %w", err)
	}

	key, err := generateAccessKey()
	if err != nil {
		return nil, fmt.Errorf("generate access key: %w", err)
	}

	share, err := s.store.CreateShare(ctx, key, projectID, user)
	if err != nil {
		return nil, fmt.Errorf("persist share: %w", err)
	}

	s.logger.Info("project shared", "project", projectID, "owner", user)
	return share, nil
}

// ResolveShare returns the shared project view for an access key. Unknown or
// deactivated keys yield ErrShareNotFound; the key itself is never logged.
func (s *Sharer) ResolveShare(ctx context.Context, accessKey string) (*SharedProject, error) {
	share, err := s.store.GetShareByKey(ctx, accessKey)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("lookup share: %w", err)
	}

	project, err := s.store.GetProject(ctx, share.Owner, share.Project)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("load shared project: %w", err)
	}

	tasks, err := s.store.ListTasks(ctx, share.Owner, share.Project, nil)
	if err != nil {
		return nil, fmt.Errorf("load shared tasks: %w", err)
	}

	return &SharedProject{ProjectName: project.Name, Tasks: tasks}, nil
}

// generateAccessKey returns 32 random bytes hex encoded.
func generateAccessKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
