package checkout

import (
	"context"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// SessionFetcher loads the session being booked.
type SessionFetcher interface {
	Session(ctx context.Context, id model.ID) (model.Session, error)
}

// SeatFetcher loads the selected seats.
type SeatFetcher interface {
	Seats(ctx context.Context, ids []model.ID) ([]model.Seat, error)
}

// Purchaser creates the reservation.
type Purchaser interface {
	CreateReservation(ctx context.Context, req model.ReservationRequest) (model.ReservationResult, error)
}

// DocumentFetcher retrieves the document issued for a reservation.
type DocumentFetcher interface {
	Document(ctx context.Context, reservationID model.ID) (model.Document, error)
}

// Backend is everything the flow needs from the reservation service.
type Backend interface {
	SessionFetcher
	SeatFetcher
	Purchaser
	DocumentFetcher
}

// DocumentSink stores an issued document under name and returns where
// it ended up.
type DocumentSink interface {
	Save(ctx context.Context, name string, doc model.Document) (string, error)
}

// Navigator leaves the checkout. Home is the landing route reached after
// a purchase; SeatSelection restarts the booking after the hold expired.
// Implementations must not block.
type Navigator interface {
	Home()
	SeatSelection()
}
