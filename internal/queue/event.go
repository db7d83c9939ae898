// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ReservationCreatedQueue is the durable queue reservation events are
// published to.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published when a checkout purchase commits.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type ReservationCreatedEvent struct {
	ReservationID    uint64   `json:"reservation_id"`
	ShowID           uint64   `json:"show_id"`
	CustomerName     string   `json:"customer_name"`
	CustomerEmail    string   `json:"customer_email"`
	HallName         string   `json:"hall_name"`
	MovieTitle       string   `json:"movie_title"`
	StartsAt         string   `json:"starts_at"`
	SeatLabels       []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	CreatedAt        string   `json:"created_at"`
}
