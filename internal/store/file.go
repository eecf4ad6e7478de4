package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// File keeps the whole dataset in one JSON document and rewrites it
// atomically after every change.
type File struct {
	path string
	mem  *Memory

	// wmu serializes document writes so two saves never interleave.
	wmu sync.Mutex
}

// OpenFile loads the document at path. A missing file starts empty.
func OpenFile(path string, log *zap.Logger) (*File, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &File{path: path, mem: NewMemory(log)}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &File{path: path, mem: NewMemoryFromDocument(doc, log)}, nil
}

// Projects implements Store.
func (f *File) Projects(ctx context.Context) ([]model.Project, error) {
	return f.mem.Projects(ctx)
}

// Project implements Store.
func (f *File) Project(ctx context.Context, id string) (model.Project, error) {
	return f.mem.Project(ctx, id)
}

// PutProject implements Store.
func (f *File) PutProject(ctx context.Context, p model.Project) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	if err := f.mem.PutProject(ctx, p); err != nil {
		return err
	}
	return f.writeLocked()
}

// Tasks implements Store.
func (f *File) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	return f.mem.Tasks(ctx, projectID)
}

// SaveTasks implements Store.
func (f *File) SaveTasks(ctx context.Context, projectID string, tasks []model.Task) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	if err := f.mem.SaveTasks(ctx, projectID, tasks); err != nil {
		return err
	}
	return f.writeLocked()
}

// Items implements Store.
func (f *File) Items(ctx context.Context, projectID string) ([]model.LineItem, error) {
	return f.mem.Items(ctx, projectID)
}

// SaveItems implements Store.
func (f *File) SaveItems(ctx context.Context, projectID string, items []model.LineItem) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	if err := f.mem.SaveItems(ctx, projectID, items); err != nil {
		return err
	}
	return f.writeLocked()
}

// Close implements Store.
func (f *File) Close() error {
	return nil
}

func (f *File) writeLocked() error {
	doc, err := f.mem.Document()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := atomic.WriteFile(f.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	return nil
}
