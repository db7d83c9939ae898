package checkout

import (
	"testing"
	"time"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

func TestMessagesAutoClear(t *testing.T) {
	fc := clock.Fake(epoch)
	changes := 0
	m := NewMessages(fc, 3*time.Second, func() { changes++ })

	m.Set("boom")
	if got, ok := m.Current(); !ok || got.Text != "boom" {
		t.Fatalf("Current() = %+v, %v", got, ok)
	}
	fc.Advance(2 * time.Second)
	if _, ok := m.Current(); !ok {
		t.Fatal("message cleared early")
	}
	fc.Advance(time.Second)
	if _, ok := m.Current(); ok {
		t.Fatal("message still shown after its delay")
	}
	if changes != 2 {
		t.Fatalf("changes = %d, want 2", changes)
	}
}

func TestMessagesNewMessageRestartsDelay(t *testing.T) {
	fc := clock.Fake(epoch)
	m := NewMessages(fc, 3*time.Second, nil)

	m.Set("first")
	fc.Advance(2 * time.Second)
	m.Set("second")
	fc.Advance(2 * time.Second)
	got, ok := m.Current()
	if !ok || got.Text != "second" {
		t.Fatalf("Current() = %+v, %v, want second", got, ok)
	}
	if !got.CreatedAt.Equal(epoch.Add(2 * time.Second)) {
		t.Fatalf("CreatedAt = %v", got.CreatedAt)
	}
	fc.Advance(time.Second)
	if _, ok := m.Current(); ok {
		t.Fatal("second message not cleared after its own delay")
	}
}

func TestMessagesClearIsIdempotent(t *testing.T) {
	fc := clock.Fake(epoch)
	changes := 0
	m := NewMessages(fc, time.Second, func() { changes++ })
	m.Clear()
	if changes != 0 {
		t.Fatal("clearing an empty slot reported a change")
	}
	m.Set("x")
	m.Clear()
	m.Clear()
	if changes != 2 {
		t.Fatalf("changes = %d, want 2", changes)
	}
	if n := fc.PendingCount(); n != 0 {
		t.Fatalf("PendingCount() = %d, want 0", n)
	}
}
