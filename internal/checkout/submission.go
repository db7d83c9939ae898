package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// DefaultDocumentName is used when the backend does not suggest a file
// name for the ticket.
const DefaultDocumentName = "entrada_velvetcinema.pdf"

// AttemptState is the lifecycle of one purchase attempt.
type AttemptState int

const (
	AttemptIdle AttemptState = iota
	AttemptInFlight
	AttemptSucceeded
	AttemptFailed
)

func (s AttemptState) String() string {
	switch s {
	case AttemptIdle:
		return "idle"
	case AttemptInFlight:
		return "in_flight"
	case AttemptSucceeded:
		return "succeeded"
	case AttemptFailed:
		return "failed"
	}
	return "unknown"
}

// Attempt describes the latest purchase attempt.
type Attempt struct {
	ID           string
	State        AttemptState
	StartedAt    time.Time
	FinishedAt   time.Time
	Result       *model.ReservationResult
	DocumentPath string
	Err          error
	DocumentErr  error
}

// Submitter runs purchase attempts one at a time. All methods must be
// called on the flow's loop; network work happens on a goroutine whose
// completion is posted back to the loop.
type Submitter struct {
	post      func(func()) bool
	now       func() time.Time
	purchaser Purchaser
	docs      DocumentFetcher
	sink      DocumentSink
	log       *zap.Logger
	newID     func() string

	attempt Attempt
	cancel  context.CancelFunc
}

// NewSubmitter wires a submitter. sink may be nil, in which case the
// document is fetched but not stored.
func NewSubmitter(post func(func()) bool, now func() time.Time, p Purchaser, d DocumentFetcher, sink DocumentSink, newID func() string, log *zap.Logger) *Submitter {
	return &Submitter{post: post, now: now, purchaser: p, docs: d, sink: sink, newID: newID, log: log}
}

// Attempt returns the latest attempt.
func (s *Submitter) Attempt() Attempt { return s.attempt }

// InFlight reports whether an attempt is waiting on the backend.
func (s *Submitter) InFlight() bool { return s.attempt.State == AttemptInFlight }

// Begin starts an attempt for req. It is rejected while another attempt
// is in flight and after a purchase succeeded. done runs on the loop
// once the attempt settles.
func (s *Submitter) Begin(ctx context.Context, req model.ReservationRequest, done func(Attempt)) (Attempt, error) {
	switch s.attempt.State {
	case AttemptInFlight:
		return s.attempt, ErrSubmissionInFlight
	case AttemptSucceeded:
		return s.attempt, ErrAlreadySucceeded
	}

	actx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.attempt = Attempt{ID: s.newID(), State: AttemptInFlight, StartedAt: s.now()}
	id := s.attempt.ID
	log := s.log.With(zap.String("attempt_id", id))
	log.Info("submitting reservation",
		zap.String("session_id", req.SessionID.String()),
		zap.Int("seats", len(req.SeatIDs)))

	go func() {
		out := s.run(actx, id, req, log)
		s.post(func() {
			cancel()
			if s.attempt.ID != id {
				return
			}
			out.ID = id
			out.StartedAt = s.attempt.StartedAt
			out.FinishedAt = s.now()
			s.attempt = out
			s.cancel = nil
			if done != nil {
				done(out)
			}
		})
	}()
	return s.attempt, nil
}

// Cancel aborts the in-flight request, if any. The attempt keeps its
// state; the completion is dropped once the loop has stopped.
func (s *Submitter) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// run performs the purchase and, on success, retrieves and stores the
// document before reporting success. It never touches loop state.
func (s *Submitter) run(ctx context.Context, id string, req model.ReservationRequest, log *zap.Logger) Attempt {
	res, err := s.purchaser.CreateReservation(ctx, req)
	if err != nil {
		serr := &SubmissionError{AttemptID: id, Err: err}
		log.Warn("reservation failed", zap.Error(err))
		return Attempt{State: AttemptFailed, Err: serr}
	}
	log.Info("reservation created", zap.String("reservation_id", res.ID.String()))

	out := Attempt{State: AttemptSucceeded, Result: &res}
	path, derr := s.issueDocument(ctx, res.ID)
	if derr != nil {
		log.Warn("ticket document unavailable", zap.String("reservation_id", res.ID.String()), zap.Error(derr))
		out.DocumentErr = derr
		return out
	}
	out.DocumentPath = path
	if path != "" {
		log.Info("ticket document saved", zap.String("path", path))
	}
	return out
}

func (s *Submitter) issueDocument(ctx context.Context, reservationID model.ID) (string, error) {
	doc, err := s.docs.Document(ctx, reservationID)
	if err != nil {
		return "", &DocumentFetchError{ReservationID: reservationID.String(), Err: err}
	}
	if s.sink == nil {
		return "", nil
	}
	path, err := s.sink.Save(ctx, DocumentFilename(doc.Disposition), doc)
	if err != nil {
		return "", &DocumentFetchError{ReservationID: reservationID.String(), Err: err}
	}
	return path, nil
}
