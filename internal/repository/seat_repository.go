package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
)

// Seat represents a physical seat within a hall. RowLabel and
// SeatNumber identify the seat's position; SeatType indicates its class.
type Seat struct {
	ID         uint64 // primary key
	HallID     uint64 // FK -> halls.id
	RowLabel   string // e.g. A, B, AA
	SeatNumber uint32 // position in the row (1-based)
	SeatType   string // STANDARD | VIP | ACCESSIBLE
	IsActive   bool   // soft availability flag (not reservation)
}

// SeatRepo provides methods to work with seats in the database.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListByIDs returns the seats with the given IDs ordered by row then
// number. Unknown IDs are skipped, so the result may be shorter than ids.
func (r *SeatRepo) ListByIDs(ctx context.Context, ids []uint64) ([]Seat, error) {
	if len(ids) == 0 {
		return []Seat{}, nil
	}
	q := `SELECT id, hall_id, row_label, seat_number, seat_type, is_active
	      FROM seats
	      WHERE id IN (` + placeholders(len(ids)) + `)
	      ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, uint64Args(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]Seat, 0, len(ids))
	for rows.Next() {
		var s Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.IsActive); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}
