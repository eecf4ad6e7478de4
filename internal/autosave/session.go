// Package autosave keeps an in-memory list in sync with a backing store:
// user edits are applied locally at once and written back after the input
// settles, with one save in flight at a time.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hy4ri/shopfloor/internal/lists"
	"go.uber.org/zap"
)

const (
	// DefaultDebounce is the quiet period after the last edit before saving.
	DefaultDebounce = time.Second
	// DefaultSavedHold is how long the "saved" state is shown before going idle.
	DefaultSavedHold = 850 * time.Millisecond
	// DefaultSaveTimeout bounds a timer-driven save.
	DefaultSaveTimeout = 30 * time.Second
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("autosave: session closed")

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Debounce    time.Duration
	SavedHold   time.Duration
	SaveTimeout time.Duration
	// Immediate is the delay used for destructive edits such as removing a row.
	Immediate time.Duration

	Clock  Clock
	Logger *zap.Logger

	// OnStatus is called after every state change, outside the session lock.
	OnStatus func(Status)
	// OnError is called when a save fails, outside the session lock.
	OnError func(parentID string, err error)
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.SavedHold <= 0 {
		o.SavedHold = DefaultSavedHold
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	if o.Immediate < 0 {
		o.Immediate = 0
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Session is the sync state of one editable list.
type Session[R lists.Record[R]] struct {
	persister Persister[R]
	opts      Options
	log       *zap.Logger

	debounce *Debouncer
	hold     *Debouncer

	mu        sync.Mutex
	parentID  string
	loaded    bool
	closed    bool
	epoch     uint64
	items     []R
	persisted []R
	mode      Mode
	phase     Phase
	lastSaved time.Time
	lastErr   error

	saving   bool
	saveDone chan struct{}
}

// New returns an empty session; call Load before editing.
func New[R lists.Record[R]](p Persister[R], opts Options) *Session[R] {
	opts = opts.withDefaults()
	return &Session[R]{
		persister: p,
		opts:      opts,
		log:       opts.Logger,
		debounce:  NewDebouncer(opts.Clock),
		hold:      NewDebouncer(opts.Clock),
	}
}

// Load replaces the working list with a parent's stored list. It is not an
// edit: the session becomes clean, idle and in ModeLoaded, and any pending
// timer from the previous parent is cancelled. A save still in flight for
// the previous parent completes against that parent but no longer affects
// this session.
func (s *Session[R]) Load(parentID string, items []R) {
	s.mu.Lock()
	s.debounce.Cancel()
	s.hold.Cancel()
	s.epoch++
	s.parentID = parentID
	s.loaded = true
	s.closed = false
	s.items = lists.Clone(items)
	if s.items == nil {
		s.items = []R{}
	}
	s.persisted = lists.Clone(s.items)
	s.mode = ModeLoaded
	s.phase = PhaseIdle
	s.lastErr = nil
	s.lastSaved = time.Time{}
	s.saving = false
	s.saveDone = nil
	st := s.statusLocked()
	s.mu.Unlock()

	s.log.Debug("list loaded", zap.String("parent", parentID), zap.Int("count", len(items)))
	s.emit(st)
}

// Items returns a copy of the working list.
func (s *Session[R]) Items() []R {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lists.Clone(s.items)
}

// Len returns the number of records in the working list.
func (s *Session[R]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Status returns the current sync state.
func (s *Session[R]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// Append adds def as a new last row, unless the last row is still
// unlabelled. It returns the index of the new row. An empty row is a local
// affordance only and does not make the list dirty.
func (s *Session[R]) Append(def R) (int, bool) {
	index := -1
	ok := s.Edit(func(items []R) ([]R, bool) {
		var out []R
		var added bool
		out, index, added = lists.Append(items, def)
		return out, added
	})
	if !ok {
		return -1, false
	}
	return index, true
}

// UpdateField sets one named field on the row at index.
func (s *Session[R]) UpdateField(index int, name, value string) bool {
	return s.Edit(func(items []R) ([]R, bool) {
		return lists.UpdateField(items, index, name, value)
	})
}

// Remove deletes the row at index and saves without waiting for the
// debounce window.
func (s *Session[R]) Remove(index int) bool {
	return s.EditNow(func(items []R) ([]R, bool) {
		return lists.Remove(items, index)
	})
}

// Edit applies a user edit and restarts the debounce window. fn receives the
// current working list and must not modify it in place.
func (s *Session[R]) Edit(fn func([]R) ([]R, bool)) bool {
	return s.edit(fn, false)
}

// EditNow applies a destructive user edit and schedules the save right away.
func (s *Session[R]) EditNow(fn func([]R) ([]R, bool)) bool {
	return s.edit(fn, true)
}

func (s *Session[R]) edit(fn func([]R) ([]R, bool), immediate bool) bool {
	s.mu.Lock()
	if !s.loaded || s.closed {
		s.mu.Unlock()
		return false
	}
	next, ok := fn(s.items)
	if !ok {
		s.mu.Unlock()
		return false
	}
	changed := !lists.SameContent(s.items, next)
	s.items = next
	if !changed {
		s.mu.Unlock()
		return true
	}
	s.mode = ModeEditing
	s.scheduleLocked(immediate)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return true
}

// Retry schedules an immediate save if the list is dirty and no save is
// running. It reports whether a save was scheduled.
func (s *Session[R]) Retry() bool {
	s.mu.Lock()
	if !s.loaded || s.closed || s.saving || !s.dirtyLocked() {
		s.mu.Unlock()
		return false
	}
	s.scheduleLocked(true)
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	return true
}

// Flush waits for any save in flight and then, if the list is still dirty,
// saves it synchronously and returns the result.
func (s *Session[R]) Flush(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		if !s.loaded {
			s.mu.Unlock()
			return nil
		}
		if s.saving {
			done := s.saveDone
			s.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		s.debounce.Cancel()
		if !s.dirtyLocked() {
			changed := s.phase == PhasePendingDebounce
			if changed {
				s.phase = PhaseIdle
			}
			st := s.statusLocked()
			s.mu.Unlock()
			if changed {
				s.emit(st)
			}
			return nil
		}

		job := s.beginSaveLocked()
		st := s.statusLocked()
		s.mu.Unlock()

		s.emit(st)
		err := s.persister.Persist(ctx, job.parentID, job.snapshot)
		s.finishSave(job, err)
		return err
	}
}

// Close flushes a dirty list and then tears the session down. If the flush
// fails the session stays open so the caller can retry or Discard.
func (s *Session[R]) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		if errors.Is(err, ErrClosed) {
			return nil
		}
		return err
	}
	s.Discard()
	return nil
}

// Discard tears the session down without saving.
func (s *Session[R]) Discard() {
	s.mu.Lock()
	s.debounce.Cancel()
	s.hold.Cancel()
	s.epoch++
	s.closed = true
	s.mu.Unlock()
}

type saveJob[R any] struct {
	epoch    uint64
	parentID string
	snapshot []R
	done     chan struct{}
}

func (s *Session[R]) beginSaveLocked() saveJob[R] {
	s.saving = true
	s.saveDone = make(chan struct{})
	s.phase = PhaseSaving
	return saveJob[R]{
		epoch:    s.epoch,
		parentID: s.parentID,
		snapshot: lists.Clone(s.items),
		done:     s.saveDone,
	}
}

// scheduleLocked arms the save timer if the list is dirty, or clears a
// pending save if an edit made the list clean again.
func (s *Session[R]) scheduleLocked(immediate bool) {
	if !s.dirtyLocked() {
		s.debounce.Cancel()
		if s.phase == PhasePendingDebounce {
			s.phase = PhaseIdle
		}
		return
	}
	s.hold.Cancel()
	if s.phase != PhaseSaving {
		s.phase = PhasePendingDebounce
	}
	delay := s.opts.Debounce
	if immediate {
		delay = s.opts.Immediate
	}
	epoch := s.epoch
	s.debounce.Schedule(delay, func() { s.fire(epoch) })
	s.log.Debug("save scheduled", zap.String("parent", s.parentID), zap.Duration("delay", delay))
}

func (s *Session[R]) fire(epoch uint64) {
	s.mu.Lock()
	if s.closed || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	if s.saving {
		// finishSave picks the newer edits up once the running save returns.
		s.mu.Unlock()
		return
	}
	if !s.dirtyLocked() {
		if s.phase == PhasePendingDebounce {
			s.phase = PhaseIdle
		}
		st := s.statusLocked()
		s.mu.Unlock()
		s.emit(st)
		return
	}
	job := s.beginSaveLocked()
	st := s.statusLocked()
	s.mu.Unlock()

	s.emit(st)
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
	err := s.persister.Persist(ctx, job.parentID, job.snapshot)
	cancel()
	s.finishSave(job, err)
}

func (s *Session[R]) finishSave(job saveJob[R], err error) {
	defer close(job.done)

	s.mu.Lock()
	if job.epoch != s.epoch || s.closed {
		s.mu.Unlock()
		if err != nil {
			s.log.Warn("save for previous list failed", zap.String("parent", job.parentID), zap.Error(err))
		}
		return
	}
	s.saving = false
	s.saveDone = nil

	if err != nil {
		s.lastErr = err
		s.phase = PhaseIdle
		if s.debounce.Pending() {
			s.phase = PhasePendingDebounce
		}
		st := s.statusLocked()
		s.mu.Unlock()

		s.log.Warn("save failed", zap.String("parent", job.parentID), zap.Error(err))
		if s.opts.OnError != nil {
			s.opts.OnError(job.parentID, err)
		}
		s.emit(st)
		return
	}

	s.persisted = job.snapshot
	s.lastSaved = s.opts.Clock.Now()
	s.lastErr = nil
	if s.dirtyLocked() {
		// Edits arrived while saving. If their timer already fired during
		// the save, run the follow-up now.
		s.phase = PhasePendingDebounce
		if !s.debounce.Pending() {
			s.scheduleLocked(true)
		}
	} else {
		s.phase = PhaseSaved
		epoch := s.epoch
		s.hold.Schedule(s.opts.SavedHold, func() { s.settle(epoch) })
	}
	st := s.statusLocked()
	s.mu.Unlock()

	s.log.Debug("list saved", zap.String("parent", job.parentID), zap.Int("count", len(job.snapshot)))
	s.emit(st)
}

func (s *Session[R]) settle(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch || s.phase != PhaseSaved {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseIdle
	st := s.statusLocked()
	s.mu.Unlock()
	s.emit(st)
}

func (s *Session[R]) dirtyLocked() bool {
	return !lists.SameContent(s.items, s.persisted)
}

func (s *Session[R]) statusLocked() Status {
	return Status{
		ParentID:  s.parentID,
		Phase:     s.phase,
		Mode:      s.mode,
		Dirty:     s.loaded && s.dirtyLocked(),
		LastSaved: s.lastSaved,
		LastErr:   s.lastErr,
	}
}

func (s *Session[R]) emit(st Status) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(st)
	}
}
