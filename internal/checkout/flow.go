// Package checkout implements the reservation hold and checkout state
// machine: it loads the session and seats being booked, runs the hold
// countdown, submits the purchase at most once at a time, and settles the
// race between a purchase and hold expiry through an explicit outcome
// machine.
//
// A Flow owns every component and a single Loop. Timer callbacks,
// network completions and user actions are all delivered through the
// loop, so the state below is only ever touched by one goroutine.
package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/clock"
	"github.com/iliyamo/cinema-checkout/internal/model"
)

// User facing texts that are not validation errors.
const (
	MsgPurchaseFailed    = "The purchase could not be completed. Please try again."
	MsgPurchaseSucceeded = "Purchase completed. You will be redirected in a few seconds..."
	MsgHoldExpired       = "Your reservation time has run out."
)

// Config is the input of one checkout.
type Config struct {
	SessionID model.ID
	SeatIDs   []model.ID

	Hold          time.Duration
	Tick          time.Duration
	MessageTTL    time.Duration
	LoaderDelay   time.Duration
	RedirectDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Hold <= 0 {
		c.Hold = DefaultHold
	}
	if c.Tick <= 0 {
		c.Tick = time.Second
	}
	if c.MessageTTL <= 0 {
		c.MessageTTL = DefaultMessageTTL
	}
	if c.LoaderDelay <= 0 {
		c.LoaderDelay = DefaultLoaderDelay
	}
	if c.RedirectDelay <= 0 {
		c.RedirectDelay = DefaultRedirectDelay
	}
	return c
}

// Options wires a Flow. Backend and Navigator are required.
type Options struct {
	Config    Config
	Backend   Backend
	Sink      DocumentSink
	Navigator Navigator
	Clock     clock.Clock
	Logger    *zap.Logger
	NewID     func() string
}

// Snapshot is a consistent view of a flow for rendering.
type Snapshot struct {
	Phase          Phase
	Session        *model.Session
	Seats          []model.Seat
	SessionLoading bool
	SeatsLoading   bool
	SessionErr     error
	SeatsErr       error

	Remaining time.Duration
	Deadline  time.Time

	Attempt   Attempt
	CanSubmit bool
	Message   string
	Notice    string

	LoaderVisible bool
	Redirected    bool
	Closed        bool
}

// Flow is one checkout instance.
type Flow struct {
	cfg  Config
	log  *zap.Logger
	loop *Loop

	loader    *Loader
	countdown *Countdown
	messages  *Messages
	submitter *Submitter
	outcome   *Outcome

	ctx    context.Context
	cancel context.CancelFunc

	session        *model.Session
	seats          []model.Seat
	sessionLoading bool
	seatsLoading   bool
	sessionErr     error
	seatsErr       error
	notice         string
	closed         bool

	running atomic.Bool

	mu      sync.Mutex
	snap    Snapshot
	updates chan struct{}
	done    chan struct{}
}

// NewFlow builds a checkout. It does nothing until Run is called.
func NewFlow(opts Options) *Flow {
	if opts.Backend == nil || opts.Navigator == nil {
		panic("checkout: NewFlow requires a Backend and a Navigator")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	cfg := opts.Config.withDefaults()
	cfg.SeatIDs = append([]model.ID(nil), cfg.SeatIDs...)
	log = log.With(zap.String("session_id", cfg.SessionID.String()))

	f := &Flow{
		cfg:     cfg,
		log:     log,
		loop:    NewLoop(clk),
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	f.loader = NewLoader(f.loop.Post, opts.Backend, opts.Backend, log)
	f.countdown = NewCountdown(f.loop, cfg.Tick, func(time.Duration) { f.publish() }, f.holdExpired)
	f.messages = NewMessages(f.loop, cfg.MessageTTL, f.publish)
	f.submitter = NewSubmitter(f.loop.Post, f.loop.Now, opts.Backend, opts.Backend, opts.Sink, newID, log)
	f.outcome = NewOutcome(f.loop, opts.Navigator, cfg.LoaderDelay, cfg.RedirectDelay, log, f.publish)
	f.snap = f.buildSnapshot()
	return f
}

// Run starts loading and the hold countdown, then processes events
// until ctx is cancelled. Cancelling ctx tears the flow down: timers are
// stopped and in-flight requests are aborted.
func (f *Flow) Run(ctx context.Context) error {
	if !f.running.CompareAndSwap(false, true) {
		return errors.New("checkout: flow already started")
	}
	f.ctx, f.cancel = context.WithCancel(ctx)
	defer f.cancel()

	f.loop.Post(f.start)
	err := f.loop.Run(f.ctx)
	f.teardown()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Submit validates c and starts a purchase attempt.
func (f *Flow) Submit(c model.Customer) error {
	var err error
	if !f.loop.Call(func() { err = f.submit(c) }) {
		return ErrFlowClosed
	}
	return err
}

// GoBack leaves an expired checkout for seat selection.
func (f *Flow) GoBack() error {
	var err error
	if !f.loop.Call(func() { err = f.outcome.GoBack() }) {
		return ErrFlowClosed
	}
	return err
}

// Snapshot waits until every event queued so far has been processed and
// returns the resulting state. Once the flow is closed it returns the
// final state.
func (f *Flow) Snapshot() Snapshot {
	f.loop.Call(func() {})
	return f.Current()
}

// Current returns the last published state without waiting.
func (f *Flow) Current() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// Updates signals that a new state was published. Signals coalesce.
func (f *Flow) Updates() <-chan struct{} { return f.updates }

// Done is closed after teardown.
func (f *Flow) Done() <-chan struct{} { return f.done }

func (f *Flow) start() {
	f.log.Info("checkout started",
		zap.Int("seats", len(f.cfg.SeatIDs)), zap.Duration("hold", f.cfg.Hold))

	n := f.loader.Load(f.ctx, f.cfg.SessionID, f.cfg.SeatIDs, LoadCallbacks{
		Session: func(s model.Session) {
			f.session = &s
			f.sessionLoading = false
			f.publish()
		},
		Seats: func(seats []model.Seat) {
			f.seats = seats
			f.seatsLoading = false
			f.publish()
		},
		Failed: func(err *ContextFetchError) {
			if err.Resource == "session" {
				f.sessionLoading, f.sessionErr = false, err
			} else {
				f.seatsLoading, f.seatsErr = false, err
			}
			f.publish()
		},
	})
	if n > 0 {
		f.sessionLoading = true
		f.seatsLoading = n > 1
	}
	f.countdown.Start(f.cfg.Hold)
	f.publish()
}

func (f *Flow) submit(c model.Customer) error {
	switch f.outcome.Phase() {
	case PhaseSucceeded:
		return ErrAlreadySucceeded
	case PhaseExpired:
		return ErrHoldExpired
	}
	if f.submitter.InFlight() {
		return ErrSubmissionInFlight
	}
	if f.countdown.Due(f.loop.Now()) {
		f.countdown.Sync()
		if f.outcome.Phase() == PhaseExpired {
			return ErrHoldExpired
		}
	}

	if err := Validate(c, f.cfg.SeatIDs); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.messages.Set(verr.Message)
		}
		return err
	}

	req := model.ReservationRequest{Customer: c, SessionID: f.cfg.SessionID, SeatIDs: f.cfg.SeatIDs}
	if _, err := f.submitter.Begin(f.ctx, req, f.attemptSettled); err != nil {
		return err
	}
	f.messages.Clear()
	f.publish()
	return nil
}

func (f *Flow) attemptSettled(a Attempt) {
	switch a.State {
	case AttemptSucceeded:
		if f.outcome.Fire(EvPurchaseSucceeded) {
			f.countdown.Stop()
			f.messages.Clear()
			f.notice = MsgPurchaseSucceeded
		} else if f.outcome.Phase() == PhaseExpired {
			var reservationID string
			if a.Result != nil {
				reservationID = a.Result.ID.String()
			}
			f.log.Warn("purchase completed after the hold expired",
				zap.String("attempt_id", a.ID), zap.String("reservation_id", reservationID))
		}
	case AttemptFailed:
		if f.outcome.Phase() == PhaseActive {
			f.messages.Set(MsgPurchaseFailed)
		}
	}
	f.publish()
}

// holdExpired runs when the countdown reaches zero. It expires the
// checkout even while a purchase is in flight; that purchase can no
// longer change the outcome.
func (f *Flow) holdExpired() {
	if f.submitter.InFlight() {
		f.log.Info("hold expired during purchase",
			zap.String("attempt_id", f.submitter.Attempt().ID))
	}
	f.expire()
}

func (f *Flow) expire() {
	if f.outcome.Fire(EvHoldExpired) {
		f.messages.Clear()
		f.notice = MsgHoldExpired
	}
	f.publish()
}

func (f *Flow) teardown() {
	f.countdown.Stop()
	f.messages.Clear()
	f.outcome.Stop()
	f.submitter.Cancel()
	f.closed = true
	f.log.Info("checkout closed", zap.Stringer("phase", f.outcome.Phase()))
	f.publish()
	close(f.done)
}

func (f *Flow) canSubmit() bool {
	return !f.closed &&
		f.outcome.Phase() == PhaseActive &&
		!f.submitter.InFlight() &&
		!f.countdown.Expired()
}

func (f *Flow) buildSnapshot() Snapshot {
	s := Snapshot{
		Phase:          f.outcome.Phase(),
		Session:        f.session,
		Seats:          f.seats,
		SessionLoading: f.sessionLoading,
		SeatsLoading:   f.seatsLoading,
		SessionErr:     f.sessionErr,
		SeatsErr:       f.seatsErr,
		Remaining:      f.countdown.Remaining(),
		Deadline:       f.countdown.Deadline(),
		Attempt:        f.submitter.Attempt(),
		CanSubmit:      f.canSubmit(),
		Notice:         f.notice,
		LoaderVisible:  f.outcome.LoaderVisible(),
		Redirected:     f.outcome.Redirected(),
		Closed:         f.closed,
	}
	if m, ok := f.messages.Current(); ok {
		s.Message = m.Text
	}
	return s
}

func (f *Flow) publish() {
	snap := f.buildSnapshot()
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	select {
	case f.updates <- struct{}{}:
	default:
	}
}
