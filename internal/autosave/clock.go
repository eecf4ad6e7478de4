package autosave

import "time"

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock arms callbacks. The real clock delegates to time.AfterFunc; tests
// substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

// AfterFunc implements Clock.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Now implements Clock.
func (RealClock) Now() time.Time {
	return time.Now()
}
