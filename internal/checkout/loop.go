package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

// Scheduler is what the timed components need: a clock reading and a
// way to run a callback later. Both clock.Clock and *Loop satisfy it.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) *clock.Timer
}

// Loop is a single-goroutine executor. Every closure posted to it runs
// to completion before the next one starts, so state owned by the loop
// needs no further locking.
type Loop struct {
	clock clock.Clock

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	done    chan struct{}
	started atomic.Bool
}

// NewLoop returns a loop whose timers are driven by c.
func NewLoop(c clock.Clock) *Loop {
	return &Loop{
		clock: c,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Now reads the loop's clock.
func (l *Loop) Now() time.Time { return l.clock.Now() }

// AfterFunc schedules fn to be posted to the loop after d. Stopping the
// returned timer also suppresses a firing that is already queued but has
// not run yet.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *clock.Timer {
	const (
		pending int32 = iota
		ran
		stopped
	)
	var state atomic.Int32
	inner := l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if state.CompareAndSwap(pending, ran) {
				fn()
			}
		})
	})
	return clock.NewTimer(func() bool {
		if !state.CompareAndSwap(pending, stopped) {
			return false
		}
		inner.Stop()
		return true
	})
}

// Run executes queued closures until ctx is cancelled. Closures posted
// after Run returns are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.started.Store(true)
	defer close(l.done)
	defer l.close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if fn, ok := l.next(); ok {
			fn()
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Started reports whether Run has been called.
func (l *Loop) Started() bool { return l.started.Load() }

// Call runs fn on the loop and waits for it. It reports false when the
// loop is not running or stops before fn runs.
func (l *Loop) Call(fn func()) bool {
	if !l.Started() {
		return false
	}
	ran := make(chan struct{})
	if !l.Post(func() { fn(); close(ran) }) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-l.done:
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()
}
