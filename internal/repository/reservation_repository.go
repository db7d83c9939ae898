package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ReservationRepo provides persistence for reservations and their seats.
// Seats reserved under a reservation are stored in reservation_seats,
// whose unique (show_id, seat_id) key keeps a seat from being sold twice.
// All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ErrReservationNotFound indicates that no reservation has the requested ID.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRecord mirrors the schema of the reservations table.
type ReservationRecord struct {
	ID               uint64
	ShowID           uint64
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Status           string
	TotalAmountCents uint32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReservationSeatRecord mirrors the reservation_seats table.
type ReservationSeatRecord struct {
	ReservationID uint64
	ShowID        uint64
	SeatID        uint64
	PriceCents    uint32
}

// ReservedSeat is a seat booked under a reservation.
type ReservedSeat struct {
	SeatID     uint64
	RowLabel   string
	SeatNumber uint32
	PriceCents uint32
}

// ReservationDetail is a reservation joined with its show, hall, cinema
// and seats. It feeds the ticket document and the verification endpoint.
type ReservationDetail struct {
	ReservationRecord
	ShowTitle  string
	StartsAt   time.Time
	HallName   string
	CinemaName *string
	Seats      []ReservedSeat
}

// CreateTx inserts a new reservation within the caller's transaction and
// reads the row back to populate the ID, defaults and timestamps. Status
// must be one of PENDING, CONFIRMED or CANCELLED.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *ReservationRecord) error {
	const q = `INSERT INTO reservations (show_id, customer_name, customer_email, customer_phone, status, total_amount_cents)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.ShowID, res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.Status, res.TotalAmountCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const sel = `SELECT id, show_id, customer_name, customer_email, customer_phone, status, total_amount_cents, created_at, updated_at
	             FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(
		&res.ID, &res.ShowID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&res.Status, &res.TotalAmountCents, &res.CreatedAt, &res.UpdatedAt,
	)
}

// CreateSeatsBulkTx inserts multiple reservation_seats rows in a single
// statement. A unique key violation means one of the seats was sold in a
// concurrent transaction and is reported as ErrSeatUnavailable. Passing an
// empty slice has no effect.
func (r *ReservationRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []ReservationSeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_seats (reservation_id, show_id, seat_id, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.ReservationID, s.ShowID, s.SeatID, s.PriceCents)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSeatUnavailable
		}
		return err
	}
	return nil
}

// GetDetail loads a reservation with its show, hall, cinema and seats.
// Seats are ordered by row and number.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	const q = `SELECT r.id, r.show_id, r.customer_name, r.customer_email, r.customer_phone,
	                  r.status, r.total_amount_cents, r.created_at, r.updated_at,
	                  s.title, s.starts_at, h.name, c.name
	           FROM reservations r
	           JOIN shows s ON s.id = r.show_id
	           JOIN halls h ON h.id = s.hall_id
	           LEFT JOIN cinemas c ON c.id = h.cinema_id
	           WHERE r.id = ?`
	var det ReservationDetail
	var cinemaName sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&det.ID, &det.ShowID, &det.CustomerName, &det.CustomerEmail, &det.CustomerPhone,
		&det.Status, &det.TotalAmountCents, &det.CreatedAt, &det.UpdatedAt,
		&det.ShowTitle, &det.StartsAt, &det.HallName, &cinemaName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if cinemaName.Valid {
		cn := cinemaName.String
		det.CinemaName = &cn
	}

	const seatQ = `SELECT rs.seat_id, se.row_label, se.seat_number, rs.price_cents
	               FROM reservation_seats rs
	               JOIN seats se ON se.id = rs.seat_id
	               WHERE rs.reservation_id = ?
	               ORDER BY se.row_label, se.seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, det.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	det.Seats = []ReservedSeat{}
	for rows.Next() {
		var s ReservedSeat
		if err := rows.Scan(&s.SeatID, &s.RowLabel, &s.SeatNumber, &s.PriceCents); err != nil {
			return nil, err
		}
		det.Seats = append(det.Seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &det, nil
}
