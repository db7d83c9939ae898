package repository // repository for show seat persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
)

// Show seat statuses.
const (
	SeatFree     = "FREE"
	SeatHeld     = "HELD"
	SeatReserved = "RESERVED"
)

// ShowSeat represents the availability and pricing of a specific seat
// for a particular show. Each combination of show and seat is unique.
type ShowSeat struct {
	ID         uint64 // ID is the primary key of the show_seat row
	ShowID     uint64 // ShowID references the show
	SeatID     uint64 // SeatID references the seat
	Status     string // Status is one of FREE, HELD, RESERVED
	PriceCents uint32 // PriceCents is the price for this seat
	Version    uint32 // Version is bumped on every status change
}

// ShowSeatRepo encapsulates database operations for show_seats.
type ShowSeatRepo struct {
	db *sql.DB
}

// NewShowSeatRepo constructs a ShowSeatRepo given a DB handle.
func NewShowSeatRepo(db *sql.DB) *ShowSeatRepo {
	return &ShowSeatRepo{db: db}
}

// LockForReservationTx locks the show_seats rows for the given seats with
// SELECT ... FOR UPDATE and checks that every one of them exists for the
// show and is not RESERVED. A HELD seat is bookable: the hold belongs to
// the checkout that is buying it. On success the locked rows are returned
// in seat ID order of the query result.
func (r *ShowSeatRepo) LockForReservationTx(ctx context.Context, tx *sql.Tx, showID uint64, seatIDs []uint64) ([]ShowSeat, error) {
	if len(seatIDs) == 0 {
		return nil, ErrSeatUnavailable
	}
	q := `SELECT id, show_id, seat_id, status, price_cents, version
	      FROM show_seats
	      WHERE show_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)
	      ORDER BY seat_id
	      FOR UPDATE`
	args := append([]interface{}{showID}, uint64Args(seatIDs)...)
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	locked := make([]ShowSeat, 0, len(seatIDs))
	for rows.Next() {
		var ss ShowSeat
		if err := rows.Scan(&ss.ID, &ss.ShowID, &ss.SeatID, &ss.Status, &ss.PriceCents, &ss.Version); err != nil {
			return nil, err
		}
		if ss.Status == SeatReserved {
			return nil, ErrSeatUnavailable
		}
		locked = append(locked, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(locked) != len(seatIDs) {
		return nil, ErrSeatUnavailable
	}
	return locked, nil
}

// BulkUpdateStatusTx sets status on the given seats of a show and bumps
// their version.
func (r *ShowSeatRepo) BulkUpdateStatusTx(ctx context.Context, tx *sql.Tx, showID uint64, seatIDs []uint64, status string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	q := `UPDATE show_seats SET status = ?, version = version + 1
	      WHERE show_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := append([]interface{}{status, showID}, uint64Args(seatIDs)...)
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
