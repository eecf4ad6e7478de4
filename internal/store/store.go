// Package store holds the backends the editors read lists from and save
// lists to: an in-memory fixture, a JSON document file, a local SQLite
// key-value table and the REST backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hy4ri/shopfloor/internal/model"
)

// ErrNotFound is returned for an unknown project.
var ErrNotFound = errors.New("project not found")

// Store reads and writes per-project lists. Saves replace the whole list.
type Store interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Project(ctx context.Context, id string) (model.Project, error)
	PutProject(ctx context.Context, p model.Project) error

	Tasks(ctx context.Context, projectID string) ([]model.Task, error)
	SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error

	Items(ctx context.Context, projectID string) ([]model.LineItem, error)
	SaveItems(ctx context.Context, projectID string, items []model.LineItem) error

	Close() error
}

// Document is the serialized form of a whole dataset. Lists are kept raw so
// one malformed list does not spoil the rest of the document.
type Document struct {
	Projects []model.Project           `json:"projects"`
	Tasks    map[string]json.RawMessage `json:"tasks,omitempty"`
	Items    map[string]json.RawMessage `json:"items,omitempty"`
}

// ParseDocument decodes a dataset document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// NewProject returns a project with a fresh ID.
func NewProject(name, client string) model.Project {
	return model.Project{
		ID:     uuid.New().String(),
		Name:   strings.TrimSpace(name),
		Client: strings.TrimSpace(client),
		Status: "active",
	}
}

// Copy writes every project and its lists from src into dst.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	projects, err := src.Projects(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range projects {
		if err := dst.PutProject(ctx, p); err != nil {
			return i, err
		}
		tasks, err := src.Tasks(ctx, p.ID)
		if err != nil {
			return i, err
		}
		if err := dst.SaveTasks(ctx, p.ID, tasks); err != nil {
			return i, err
		}
		items, err := src.Items(ctx, p.ID)
		if err != nil {
			return i, err
		}
		if err := dst.SaveItems(ctx, p.ID, items); err != nil {
			return i, err
		}
	}
	return len(projects), nil
}

func encodeProjects(projects []model.Project) ([]byte, error) {
	if projects == nil {
		projects = []model.Project{}
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return nil, fmt.Errorf("failed to encode projects: %w", err)
	}
	return raw, nil
}

func findProject(projects []model.Project, id string) (model.Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}
