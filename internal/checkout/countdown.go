package checkout

import (
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

// DefaultHold is how long a customer keeps the selected seats.
const DefaultHold = 240 * time.Second

// Countdown is the hold window. It owns one deadline and a tick timer,
// publishes the rounded remaining time on every tick and signals expiry
// exactly once. After expiry it never re-arms.
type Countdown struct {
	sched Scheduler
	tick  time.Duration
	unit  time.Duration

	deadline  time.Time
	remaining time.Duration
	running   bool
	expired   bool
	timer     *clock.Timer

	onTick    func(remaining time.Duration)
	onExpired func()
}

// NewCountdown builds a stopped countdown. onTick and onExpired may be
// nil.
func NewCountdown(s Scheduler, tick time.Duration, onTick func(time.Duration), onExpired func()) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	return &Countdown{
		sched:     s,
		tick:      tick,
		unit:      time.Second,
		onTick:    onTick,
		onExpired: onExpired,
	}
}

// Start arms the countdown for d from now and ticks immediately. A
// running countdown is restarted with a fresh deadline. Start reports
// false, and does nothing, once the countdown has expired.
func (c *Countdown) Start(d time.Duration) bool {
	if c.expired {
		return false
	}
	c.timer.Stop()
	c.deadline = c.sched.Now().Add(d)
	c.running = true
	c.tickNow()
	return true
}

// Stop freezes the countdown without signalling expiry.
func (c *Countdown) Stop() {
	c.timer.Stop()
	c.timer = nil
	c.running = false
}

// Remaining is the value published by the last tick.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Deadline is the instant the hold runs out.
func (c *Countdown) Deadline() time.Time { return c.deadline }

// Running reports whether ticks are still scheduled.
func (c *Countdown) Running() bool { return c.running }

// Expired reports whether the countdown has reached zero.
func (c *Countdown) Expired() bool { return c.expired }

// Due reports whether the deadline has passed at now, whether or not a
// tick has observed it yet.
func (c *Countdown) Due(now time.Time) bool {
	if c.expired {
		return true
	}
	return c.running && remainingUntil(c.deadline, now, c.unit) == 0
}

// Sync ticks out of schedule so a deadline that passed between two
// ticks is observed now.
func (c *Countdown) Sync() {
	if !c.running {
		return
	}
	c.timer.Stop()
	c.tickNow()
}

func (c *Countdown) tickNow() {
	if !c.running {
		return
	}
	c.remaining = remainingUntil(c.deadline, c.sched.Now(), c.unit)
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	if c.remaining > 0 {
		c.timer = c.sched.AfterFunc(c.tick, c.tickNow)
		return
	}
	c.timer = nil
	c.running = false
	c.expired = true
	if c.onExpired != nil {
		c.onExpired()
	}
}

// remainingUntil is max(0, round((deadline-now)/unit)) expressed in unit.
func remainingUntil(deadline, now time.Time, unit time.Duration) time.Duration {
	n := math.Round(float64(deadline.Sub(now)) / float64(unit))
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * unit
}

// FormatRemaining renders d as HH:MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
