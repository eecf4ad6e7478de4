package autosave

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending callback. Scheduling again replaces the
// pending callback and restarts its delay.
type Debouncer struct {
	clock Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewDebouncer returns a Debouncer driven by clock (RealClock when nil).
func NewDebouncer(clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{clock: clock}
}

// Schedule cancels any pending callback and arms fn to run after d.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		// A superseded or cancelled arm may still fire if Stop lost the race.
		if gen != d.gen || d.timer == nil {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
}

// Pending reports whether a callback is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
