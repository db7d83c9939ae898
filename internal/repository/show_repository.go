package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Show represents a scheduled screening of a movie in a hall.
type Show struct {
	ID             uint64
	HallID         uint64
	Title          string
	StartsAt       time.Time
	EndsAt         time.Time
	BasePriceCents uint32
	Status         string // SCHEDULED, CANCELLED or FINISHED
}

// SessionDetail is a show joined with the hall and cinema it plays in.
// It backs GET /sesiones/:id.
type SessionDetail struct {
	Show
	HallName   string
	CinemaName *string
}

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ShowRepo reads shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning several repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// GetByID retrieves a show by its ID. It returns ErrShowNotFound if there
// is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*Show, error) {
	const q = `SELECT id, hall_id, title, starts_at, ends_at, base_price_cents, status FROM shows WHERE id = ?`
	var s Show
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.HallID, &s.Title, &s.StartsAt, &s.EndsAt, &s.BasePriceCents, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetSession loads a show with its hall and optional cinema name.
func (r *ShowRepo) GetSession(ctx context.Context, id uint64) (*SessionDetail, error) {
	const q = `SELECT s.id, s.hall_id, s.title, s.starts_at, s.ends_at, s.base_price_cents, s.status,
	                  h.name, c.name
	           FROM shows s
	           JOIN halls h ON h.id = s.hall_id
	           LEFT JOIN cinemas c ON c.id = h.cinema_id
	           WHERE s.id = ?`
	var d SessionDetail
	var cinemaName sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.HallID, &d.Title, &d.StartsAt, &d.EndsAt, &d.BasePriceCents, &d.Status,
		&d.HallName, &cinemaName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	if cinemaName.Valid {
		cn := cinemaName.String
		d.CinemaName = &cn
	}
	return &d, nil
}
