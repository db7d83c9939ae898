package checkout

import (
	"testing"
	"time"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

var epoch = time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)

func TestCountdownTicksAndExpiresOnce(t *testing.T) {
	fc := clock.Fake(epoch)
	var ticks []time.Duration
	expired := 0
	c := NewCountdown(fc, time.Second, func(d time.Duration) { ticks = append(ticks, d) }, func() { expired++ })

	if !c.Start(3 * time.Second) {
		t.Fatal("Start() = false on a fresh countdown")
	}
	if got := c.Remaining(); got != 3*time.Second {
		t.Fatalf("Remaining() after Start = %v, want 3s", got)
	}

	for i := 0; i < 3; i++ {
		fc.Advance(time.Second)
	}
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	if !c.Expired() || c.Running() {
		t.Fatalf("Expired() = %v Running() = %v, want true false", c.Expired(), c.Running())
	}

	fc.Advance(10 * time.Second)
	if expired != 1 {
		t.Fatalf("expired = %d after more time, want 1", expired)
	}
	want := []time.Duration{3 * time.Second, 2 * time.Second, time.Second, 0}
	if len(ticks) != len(want) {
		t.Fatalf("ticks = %v, want %v", ticks, want)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Fatalf("ticks = %v, want %v", ticks, want)
		}
	}

	if c.Start(time.Minute) {
		t.Fatal("Start() after expiry = true, want false")
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining() after refused restart = %v, want 0", c.Remaining())
	}
}

func TestCountdownRemainingNeverIncreases(t *testing.T) {
	fc := clock.Fake(epoch)
	c := NewCountdown(fc, time.Second, nil, nil)
	c.Start(10 * time.Second)

	prev := c.Remaining()
	for i := 0; i < 25; i++ {
		fc.Advance(400 * time.Millisecond)
		c.Sync()
		if got := c.Remaining(); got > prev {
			t.Fatalf("Remaining() went from %v to %v", prev, got)
		}
		prev = c.Remaining()
	}
}

func TestCountdownRestartRecomputesDeadline(t *testing.T) {
	fc := clock.Fake(epoch)
	expired := 0
	c := NewCountdown(fc, time.Second, nil, func() { expired++ })
	c.Start(5 * time.Second)

	fc.Advance(3 * time.Second)
	c.Start(5 * time.Second)
	if got := c.Remaining(); got != 5*time.Second {
		t.Fatalf("Remaining() after restart = %v, want 5s", got)
	}
	if want := epoch.Add(8 * time.Second); !c.Deadline().Equal(want) {
		t.Fatalf("Deadline() = %v, want %v", c.Deadline(), want)
	}

	fc.Advance(4 * time.Second)
	if expired != 0 {
		t.Fatal("old deadline still fired after restart")
	}
	fc.Advance(time.Second)
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}
	if n := fc.PendingCount(); n != 0 {
		t.Fatalf("PendingCount() = %d after expiry, want 0", n)
	}
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	fc := clock.Fake(epoch)
	expired := 0
	c := NewCountdown(fc, time.Second, nil, func() { expired++ })
	c.Start(2 * time.Second)
	fc.Advance(time.Second)
	c.Stop()

	fc.Advance(time.Minute)
	if expired != 0 {
		t.Fatal("stopped countdown signalled expiry")
	}
	if got := c.Remaining(); got != time.Second {
		t.Fatalf("Remaining() frozen at %v, want 1s", got)
	}
	if c.Due(fc.Now()) {
		t.Fatal("Due() = true for a stopped countdown")
	}
}

func TestCountdownDueBeforeTick(t *testing.T) {
	fc := clock.Fake(epoch)
	expired := 0
	c := NewCountdown(fc, 10*time.Second, nil, func() { expired++ })
	c.Start(5 * time.Second)

	fc.Advance(6 * time.Second)
	if expired != 0 {
		t.Fatal("expired before the next tick")
	}
	if !c.Due(fc.Now()) {
		t.Fatal("Due() = false after the deadline")
	}
	c.Sync()
	if expired != 1 {
		t.Fatalf("expired = %d after Sync, want 1", expired)
	}
}

func TestRemainingUntilRounds(t *testing.T) {
	tests := []struct {
		left time.Duration
		want time.Duration
	}{
		{2600 * time.Millisecond, 3 * time.Second},
		{2400 * time.Millisecond, 2 * time.Second},
		{500 * time.Millisecond, time.Second},
		{400 * time.Millisecond, 0},
		{-3 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := remainingUntil(epoch.Add(tt.left), epoch, time.Second); got != tt.want {
			t.Fatalf("remainingUntil(%v) = %v, want %v", tt.left, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{240 * time.Second, "00:04:00"},
		{59 * time.Second, "00:00:59"},
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{3*time.Hour + 2*time.Minute + 1*time.Second, "03:02:01"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.in); got != tt.want {
			t.Fatalf("FormatRemaining(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
