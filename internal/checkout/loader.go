package checkout

import (
	"context"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// Loader fetches the session and the selected seats in parallel. Each
// result is handed back through post, so callbacks run on the flow's
// loop. Failures are logged and reported; the other fetch carries on.
type Loader struct {
	post     func(func()) bool
	sessions SessionFetcher
	seats    SeatFetcher
	log      *zap.Logger
}

// LoadCallbacks receive the loader's results on the loop.
type LoadCallbacks struct {
	Session func(model.Session)
	Seats   func([]model.Seat)
	Failed  func(*ContextFetchError)
}

// NewLoader returns a loader posting its results through post.
func NewLoader(post func(func()) bool, sessions SessionFetcher, seats SeatFetcher, log *zap.Logger) *Loader {
	return &Loader{post: post, sessions: sessions, seats: seats, log: log}
}

// Load starts the fetches and returns how many were started. A blank
// session id skips both; an empty seat list skips the seat fetch.
func (l *Loader) Load(ctx context.Context, sessionID model.ID, seatIDs []model.ID, cb LoadCallbacks) int {
	if sessionID.Empty() {
		l.log.Info("no session selected, skipping context load")
		return 0
	}
	started := 1
	go l.fetchSession(ctx, sessionID, cb)
	if len(seatIDs) > 0 {
		started++
		ids := append([]model.ID(nil), seatIDs...)
		go l.fetchSeats(ctx, ids, cb)
	}
	return started
}

func (l *Loader) fetchSession(ctx context.Context, id model.ID, cb LoadCallbacks) {
	s, err := l.sessions.Session(ctx, id)
	if err != nil {
		ferr := &ContextFetchError{Resource: "session", Err: err}
		l.log.Warn("session fetch failed", zap.String("session_id", id.String()), zap.Error(err))
		l.post(func() {
			if cb.Failed != nil {
				cb.Failed(ferr)
			}
		})
		return
	}
	l.post(func() {
		if cb.Session != nil {
			cb.Session(s)
		}
	})
}

func (l *Loader) fetchSeats(ctx context.Context, ids []model.ID, cb LoadCallbacks) {
	seats, err := l.seats.Seats(ctx, ids)
	if err != nil {
		ferr := &ContextFetchError{Resource: "seats", Err: err}
		l.log.Warn("seat fetch failed", zap.String("seat_ids", model.JoinIDs(ids)), zap.Error(err))
		l.post(func() {
			if cb.Failed != nil {
				cb.Failed(ferr)
			}
		})
		return
	}
	l.post(func() {
		if cb.Seats != nil {
			cb.Seats(seats)
		}
	})
}
