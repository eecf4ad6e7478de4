package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/hy4ri/shopfloor/internal/model"
	"go.uber.org/zap"
)

//go:embed fixtures/demo.json
var demoFixture []byte

// DemoDocument returns the bundled demo dataset.
func DemoDocument() (Document, error) {
	return ParseDocument(demoFixture)
}

// Memory is an in-process store. It backs the demo screens and tests.
type Memory struct {
	log *zap.Logger

	mu       sync.RWMutex
	projects []model.Project
	tasks    map[string][]model.Task
	items    map[string][]model.LineItem
}

// NewMemory returns an empty store.
func NewMemory(log *zap.Logger) *Memory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Memory{
		log:   log,
		tasks: make(map[string][]model.Task),
		items: make(map[string][]model.LineItem),
	}
}

// NewMemoryFromDocument returns a store seeded from doc. Malformed lists are
// logged and replaced by empty ones.
func NewMemoryFromDocument(doc Document, log *zap.Logger) *Memory {
	m := NewMemory(log)
	m.projects = slices.Clone(doc.Projects)
	for id, raw := range doc.Tasks {
		tasks, err := model.DecodeTasks(raw)
		if err != nil {
			m.log.Warn("discarding malformed task list", zap.String("project", id), zap.Error(err))
		}
		m.tasks[id] = tasks
	}
	for id, raw := range doc.Items {
		items, err := model.DecodeItems(raw)
		if err != nil {
			m.log.Warn("discarding malformed item list", zap.String("project", id), zap.Error(err))
		}
		m.items[id] = items
	}
	return m
}

// NewDemo returns a Memory store seeded with the bundled demo dataset.
func NewDemo(log *zap.Logger) (*Memory, error) {
	doc, err := DemoDocument()
	if err != nil {
		return nil, err
	}
	return NewMemoryFromDocument(doc, log), nil
}

// Projects implements Store.
func (m *Memory) Projects(ctx context.Context) ([]model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.projects), nil
}

// Project implements Store.
func (m *Memory) Project(ctx context.Context, id string) (model.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := findProject(m.projects, id)
	if !ok {
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// PutProject implements Store.
func (m *Memory) PutProject(ctx context.Context, p model.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = p
			return nil
		}
	}
	m.projects = append(m.projects, p)
	return nil
}

// Tasks implements Store.
func (m *Memory) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := findProject(m.projects, projectID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	out := lists.Clone(m.tasks[projectID])
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

// SaveTasks implements Store.
func (m *Memory) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := findProject(m.projects, projectID); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	m.tasks[projectID] = lists.Clone(tasks)
	return nil
}

// Items implements Store.
func (m *Memory) Items(ctx context.Context, projectID string) ([]model.LineItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := findProject(m.projects, projectID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	out := lists.Clone(m.items[projectID])
	if out == nil {
		out = []model.LineItem{}
	}
	return out, nil
}

// SaveItems implements Store.
func (m *Memory) SaveItems(ctx context.Context, projectID string, items []model.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := findProject(m.projects, projectID); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, projectID)
	}
	m.items[projectID] = lists.Clone(items)
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}

// Document exports the store contents.
func (m *Memory) Document() (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc := Document{
		Projects: slices.Clone(m.projects),
		Tasks:    make(map[string]json.RawMessage, len(m.tasks)),
		Items:    make(map[string]json.RawMessage, len(m.items)),
	}
	for id, tasks := range m.tasks {
		raw, err := model.EncodeTasks(tasks)
		if err != nil {
			return Document{}, fmt.Errorf("failed to encode tasks for %s: %w", id, err)
		}
		doc.Tasks[id] = raw
	}
	for id, items := range m.items {
		raw, err := model.EncodeItems(items)
		if err != nil {
			return Document{}, fmt.Errorf("failed to encode items for %s: %w", id, err)
		}
		doc.Items[id] = raw
	}
	return doc, nil
}
