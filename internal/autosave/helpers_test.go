package autosave

import (
	"context"
	"sync"
	"time"
)

// manualClock fires callbacks only from Advance, on the calling goroutine.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	c       *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (t *manualTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves time forward by d, running every timer that comes due in
// order of its deadline.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

type persistCall[R any] struct {
	parentID string
	items    []R
}

// spyPersister records calls. When gate is set, Persist signals started and
// blocks until gate is closed.
type spyPersister[R any] struct {
	mu      sync.Mutex
	calls   []persistCall[R]
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (p *spyPersister[R]) Persist(ctx context.Context, parentID string, items []R) error {
	p.mu.Lock()
	p.calls = append(p.calls, persistCall[R]{parentID: parentID, items: items})
	err := p.err
	gate, started := p.gate, p.started
	p.mu.Unlock()

	if gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}
	return err
}

func (p *spyPersister[R]) Calls() []persistCall[R] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]persistCall[R](nil), p.calls...)
}

func (p *spyPersister[R]) SetErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// phaseLog collects the phases reported through OnStatus.
type phaseLog struct {
	mu     sync.Mutex
	phases []Phase
}

func (l *phaseLog) record(st Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.phases); n > 0 && l.phases[n-1] == st.Phase {
		return
	}
	l.phases = append(l.phases, st.Phase)
}

func (l *phaseLog) get() []Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Phase(nil), l.phases...)
}
