package checkout

import (
	"time"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

// DefaultMessageTTL is how long a transient message stays on screen.
const DefaultMessageTTL = 3 * time.Second

// Message is a transient error shown under the form.
type Message struct {
	Text      string
	CreatedAt time.Time
}

// Messages holds at most one transient message. Setting a new one
// replaces the old one and restarts the dismissal timer.
type Messages struct {
	sched    Scheduler
	ttl      time.Duration
	current  *Message
	gen      uint64
	timer    *clock.Timer
	onChange func()
}

// NewMessages returns an empty message slot.
func NewMessages(s Scheduler, ttl time.Duration, onChange func()) *Messages {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &Messages{sched: s, ttl: ttl, onChange: onChange}
}

// Set shows text and schedules its removal.
func (m *Messages) Set(text string) {
	m.timer.Stop()
	m.gen++
	gen := m.gen
	m.current = &Message{Text: text, CreatedAt: m.sched.Now()}
	m.timer = m.sched.AfterFunc(m.ttl, func() {
		if m.gen == gen {
			m.Clear()
		}
	})
	m.changed()
}

// Clear removes the current message. Clearing an empty slot is a no-op.
func (m *Messages) Clear() {
	m.timer.Stop()
	m.timer = nil
	if m.current == nil {
		return
	}
	m.current = nil
	m.gen++
	m.changed()
}

// Current returns the message on screen, if any.
func (m *Messages) Current() (Message, bool) {
	if m.current == nil {
		return Message{}, false
	}
	return *m.current, true
}

func (m *Messages) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}
