// Package editor binds an autosave session to a store for each of the two
// per-project lists: the task checklist and the bill of line items.
package editor

import (
	"context"
	"fmt"

	"github.com/hy4ri/shopfloor/internal/autosave"
	"github.com/hy4ri/shopfloor/internal/lists"
)

// loader fetches a project's stored list.
type loader[R any] func(ctx context.Context, projectID string) ([]R, error)

// base is the behaviour both editors share.
type base[R lists.Record[R]] struct {
	*autosave.Session[R]
	load loader[R]
	kind string
}

// Open loads the project's stored list into the session. A failed fetch
// leaves the session on its current project so nothing is written over the
// stored list with an empty one.
func (b *base[R]) Open(ctx context.Context, projectID string) error {
	items, err := b.load(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to load %s for %s: %w", b.kind, projectID, err)
	}
	b.Load(projectID, items)
	return nil
}

// Switch saves any outstanding edits of the current project and opens
// another. If the save fails the editor stays where it is.
func (b *base[R]) Switch(ctx context.Context, projectID string) error {
	if err := b.Flush(ctx); err != nil {
		return fmt.Errorf("failed to save %s for %s: %w", b.kind, b.Status().ParentID, err)
	}
	return b.Open(ctx, projectID)
}

// ProjectID is the project currently loaded.
func (b *base[R]) ProjectID() string {
	return b.Status().ParentID
}
