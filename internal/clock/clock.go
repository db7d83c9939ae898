// Package clock abstracts the wall clock so the checkout hold, its
// countdown and the delayed exits can be driven deterministically in
// tests. Production code injects Real(); tests inject Fake().
package clock

import "time"

// Clock is the subset of the time package the checkout flow depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f. The returned Timer cancels
	// the pending call. With d <= 0 f runs immediately (in a new
	// goroutine for Real, synchronously for Fake).
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable pending call created by AfterFunc.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It reports whether the call
// stopped the timer; false means it already fired or was stopped.
// Stop on a nil Timer is a no-op.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}

// NewTimer wraps a stop function as a Timer. Schedulers that layer on
// top of a Clock use it to hand out their own cancellable timers.
func NewTimer(stop func() bool) *Timer { return &Timer{stopFunc: stop} }

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
