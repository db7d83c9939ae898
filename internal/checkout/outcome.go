package checkout

import (
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/clock"
)

const (
	// DefaultLoaderDelay is when the "redirecting" loader appears after
	// a successful purchase.
	DefaultLoaderDelay = 3 * time.Second
	// DefaultRedirectDelay is when the flow leaves for the landing route
	// after a successful purchase.
	DefaultRedirectDelay = 8 * time.Second
)

// Phase is the terminal state of a checkout.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseSucceeded
	PhaseExpired
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseExpired:
		return "expired"
	}
	return "unknown"
}

// Event drives the outcome state machine.
type Event int

const (
	EvPurchaseSucceeded Event = iota
	EvHoldExpired
)

func (e Event) String() string {
	switch e {
	case EvPurchaseSucceeded:
		return "purchase_succeeded"
	case EvHoldExpired:
		return "hold_expired"
	}
	return "unknown"
}

// Transition is a single allowed edge of the outcome machine.
type Transition struct {
	From  Phase
	To    Phase
	Event Event
}

// Both terminal phases are reachable only from Active and nothing leads
// back to Active.
var transitionsTable = []Transition{
	{From: PhaseActive, To: PhaseSucceeded, Event: EvPurchaseSucceeded},
	{From: PhaseActive, To: PhaseExpired, Event: EvHoldExpired},
}

// TransitionFor returns the allowed transition for a phase and event.
func TransitionFor(from Phase, ev Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// Outcome arbitrates the terminal path of a checkout. On success it
// runs the two-stage exit: loader first, redirect later, each on its
// own cancellable timer. On expiry it waits for GoBack.
type Outcome struct {
	sched         Scheduler
	nav           Navigator
	log           *zap.Logger
	loaderDelay   time.Duration
	redirectDelay time.Duration

	phase         Phase
	loaderVisible bool
	redirected    bool
	leftToSeats   bool
	loaderTimer   *clock.Timer
	redirectTimer *clock.Timer

	onChange func()
}

// NewOutcome returns an outcome in PhaseActive.
func NewOutcome(s Scheduler, nav Navigator, loaderDelay, redirectDelay time.Duration, log *zap.Logger, onChange func()) *Outcome {
	return &Outcome{
		sched:         s,
		nav:           nav,
		log:           log,
		loaderDelay:   loaderDelay,
		redirectDelay: redirectDelay,
		onChange:      onChange,
	}
}

// Phase returns the current phase.
func (o *Outcome) Phase() Phase { return o.phase }

// LoaderVisible reports whether the redirect loader is showing.
func (o *Outcome) LoaderVisible() bool { return o.loaderVisible }

// Redirected reports whether the flow navigated to the landing route.
func (o *Outcome) Redirected() bool { return o.redirected }

// Fire applies ev. It reports false and changes nothing when the
// current phase has no edge for ev.
func (o *Outcome) Fire(ev Event) bool {
	tr, ok := TransitionFor(o.phase, ev)
	if !ok {
		o.log.Debug("outcome transition refused",
			zap.Stringer("phase", o.phase), zap.Stringer("event", ev))
		return false
	}
	o.phase = tr.To
	o.log.Info("checkout outcome", zap.Stringer("from", tr.From), zap.Stringer("to", tr.To))
	if tr.To == PhaseSucceeded {
		o.loaderTimer = o.sched.AfterFunc(o.loaderDelay, o.showLoader)
		o.redirectTimer = o.sched.AfterFunc(o.redirectDelay, o.redirect)
	}
	o.changed()
	return true
}

// GoBack leaves an expired checkout for seat selection.
func (o *Outcome) GoBack() error {
	if o.phase != PhaseExpired {
		return ErrNotExpired
	}
	if !o.leftToSeats {
		o.leftToSeats = true
		o.nav.SeatSelection()
	}
	return nil
}

// Stop cancels pending exit timers.
func (o *Outcome) Stop() {
	o.loaderTimer.Stop()
	o.redirectTimer.Stop()
	o.loaderTimer, o.redirectTimer = nil, nil
}

func (o *Outcome) showLoader() {
	o.loaderTimer = nil
	o.loaderVisible = true
	o.changed()
}

func (o *Outcome) redirect() {
	o.redirectTimer = nil
	o.redirected = true
	o.log.Info("redirecting to landing route")
	o.nav.Home()
	o.changed()
}

func (o *Outcome) changed() {
	if o.onChange != nil {
		o.onChange()
	}
}
