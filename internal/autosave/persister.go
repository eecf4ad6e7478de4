package autosave

import "context"

// Persister stores the full list for one parent. Implementations replace the
// stored list wholesale, so replaying the same snapshot is harmless, and
// report any failure as a non-nil error.
type Persister[R any] interface {
	Persist(ctx context.Context, parentID string, items []R) error
}

// PersistFunc adapts a function to Persister.
type PersistFunc[R any] func(ctx context.Context, parentID string, items []R) error

// Persist implements Persister.
func (f PersistFunc[R]) Persist(ctx context.Context, parentID string, items []R) error {
	return f(ctx, parentID, items)
}
