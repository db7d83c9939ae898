// Package handler exposes the HTTP handlers of the reservation service.
// Responses use the field names the checkout client expects; errors are
// returned as {"error": "..."} with a matching status code.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/model"
	"github.com/iliyamo/cinema-checkout/internal/queue"
	"github.com/iliyamo/cinema-checkout/internal/repository"
	"github.com/iliyamo/cinema-checkout/internal/ticket"
)

// publishTimeout bounds the best-effort event publish after a purchase.
const publishTimeout = 5 * time.Second

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, ev queue.ReservationCreatedEvent) error
}

// CheckoutHandler serves the endpoints used by the checkout client.
type CheckoutHandler struct {
	Shows        *repository.ShowRepo
	Seats        *repository.SeatRepo
	ShowSeats    *repository.ShowSeatRepo
	Reservations *repository.ReservationRepo
	Signer       *ticket.Signer
	Events       EventPublisher // optional
	Log          *zap.Logger
	Location     *time.Location // display zone for session dates
	Now          func() time.Time
}

// NewCheckoutHandler wires a handler over db-backed repositories. events
// may be nil to disable publishing.
func NewCheckoutHandler(shows *repository.ShowRepo, seats *repository.SeatRepo, showSeats *repository.ShowSeatRepo, reservations *repository.ReservationRepo, signer *ticket.Signer, events EventPublisher, loc *time.Location, log *zap.Logger) *CheckoutHandler {
	if shows == nil || seats == nil || showSeats == nil || reservations == nil || signer == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutHandler{
		Shows:        shows,
		Seats:        seats,
		ShowSeats:    showSeats,
		Reservations: reservations,
		Signer:       signer,
		Events:       events,
		Log:          log,
		Location:     loc,
		Now:          time.Now,
	}
}

// GetSession handles GET /sesiones/:id.
func (h *CheckoutHandler) GetSession(c echo.Context) error {
	showID, err := model.ID(c.Param("id")).Uint64()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Shows.GetSession(c.Request().Context(), showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		h.Log.Error("load session", zap.Uint64("show_id", showID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	starts := s.StartsAt.In(h.Location)
	return c.JSON(http.StatusOK, model.Session{
		ID:         model.IDFromUint64(s.ID),
		MovieTitle: s.Title,
		LongDate:   longDateES(starts),
		Date:       shortDate(starts),
		Time:       clockTime(starts),
		RoomID:     model.IDFromUint64(s.HallID),
		RoomName:   s.HallName,
	})
}

// ListSeats handles GET /butacas/lista?ids=1,2,3.
func (h *CheckoutHandler) ListSeats(c echo.Context) error {
	ids, err := parseIDs(model.SplitIDs(c.QueryParam("ids")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	seats, err := h.Seats.ListByIDs(c.Request().Context(), ids)
	if err != nil {
		h.Log.Error("list seats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toModelSeats(seats))
}

// CreateReservation handles POST /reservas. Seats are locked, the
// reservation and its seats are written and the seats marked RESERVED in
// one transaction. A reservation.created event is published afterwards
// without affecting the response.
func (h *CheckoutHandler) CreateReservation(c echo.Context) error {
	var req model.ReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return validationResponse(c, err)
	}
	showID, err := req.SessionID.Uint64()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	seatIDs, err := parseIDs(req.SeatIDs)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	session, err := h.Shows.GetSession(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		h.Log.Error("load session", zap.Uint64("show_id", showID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if session.Status != "SCHEDULED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session is not open for sale"})
	}

	tx, err := h.Shows.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	locked, err := h.ShowSeats.LockForReservationTx(ctx, tx, showID, seatIDs)
	if err != nil {
		return h.seatError(c, err, "failed to check seat availability")
	}
	var total uint32
	for _, ss := range locked {
		total += ss.PriceCents
	}
	rec := &repository.ReservationRecord{
		ShowID:           showID,
		CustomerName:     strings.TrimSpace(req.Customer.Name),
		CustomerEmail:    strings.TrimSpace(req.Customer.Email),
		CustomerPhone:    strings.TrimSpace(req.Customer.Phone),
		Status:           "CONFIRMED",
		TotalAmountCents: total,
	}
	if err := h.Reservations.CreateTx(ctx, tx, rec); err != nil {
		h.Log.Error("create reservation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
	}
	rows := make([]repository.ReservationSeatRecord, 0, len(locked))
	for _, ss := range locked {
		rows = append(rows, repository.ReservationSeatRecord{ReservationID: rec.ID, ShowID: showID, SeatID: ss.SeatID, PriceCents: ss.PriceCents})
	}
	if err := h.Reservations.CreateSeatsBulkTx(ctx, tx, rows); err != nil {
		return h.seatError(c, err, "failed to reserve seats")
	}
	if err := h.ShowSeats.BulkUpdateStatusTx(ctx, tx, showID, seatIDs, repository.SeatReserved); err != nil {
		h.Log.Error("mark seats reserved", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update seat status"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// Labels are cosmetic; a failure here must not turn a sale into an error.
	seats, err := h.Seats.ListByIDs(ctx, seatIDs)
	if err != nil {
		h.Log.Warn("load reserved seat labels", zap.Uint64("reservation_id", rec.ID), zap.Error(err))
		seats = nil
	}
	h.Log.Info("reservation created",
		zap.Uint64("reservation_id", rec.ID),
		zap.Uint64("show_id", showID),
		zap.Int("seats", len(seatIDs)),
		zap.Uint32("total_cents", total))
	h.publishCreated(rec, session, seats)

	return c.JSON(http.StatusCreated, model.ReservationResult{
		ID:         model.IDFromUint64(rec.ID),
		SessionID:  model.IDFromUint64(showID),
		Seats:      toModelSeats(seats),
		TotalCents: int64(total),
		CreatedAt:  rec.CreatedAt.UTC(),
	})
}

// GetDocument handles GET /reservas/:id/pdf.
func (h *CheckoutHandler) GetDocument(c echo.Context) error {
	id, err := model.ID(c.Param("id")).Uint64()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	det, err := h.loadDetail(c, id)
	if det == nil {
		return err
	}
	labels := seatLabels(det.Seats)
	code, err := h.Signer.Sign(det.ID, det.ShowID, labels)
	if err != nil {
		h.Log.Error("sign ticket", zap.Uint64("reservation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue ticket"})
	}
	data := ticket.Data{
		ReservationID: det.ID,
		Customer:      det.CustomerName,
		Email:         det.CustomerEmail,
		MovieTitle:    det.ShowTitle,
		Hall:          det.HallName,
		StartsAt:      det.StartsAt.In(h.Location),
		Seats:         labels,
		TotalCents:    det.TotalAmountCents,
		Code:          code,
		IssuedAt:      h.Now().UTC(),
	}
	if det.CinemaName != nil {
		data.Cinema = *det.CinemaName
	}
	body, err := ticket.Render(data)
	if err != nil {
		h.Log.Error("render ticket", zap.Uint64("reservation_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue ticket"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+ticket.Filename(det.ID)+`"`)
	return c.Blob(http.StatusOK, ticket.ContentType, body)
}

// VerifyTicket handles GET /reservas/verificar/:token. It checks the code
// printed on a ticket and echoes the reservation it belongs to.
func (h *CheckoutHandler) VerifyTicket(c echo.Context) error {
	claims, err := h.Signer.Verify(c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid ticket"})
	}
	id, err := claims.ReservationID()
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid ticket"})
	}
	det, err := h.loadDetail(c, id)
	if det == nil {
		return err
	}
	if det.ShowID != claims.ShowID || det.Status != "CONFIRMED" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ticket no longer valid"})
	}
	starts := det.StartsAt.In(h.Location)
	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"reserva": echo.Map{
			"id":             model.IDFromUint64(det.ID),
			"sesionId":       model.IDFromUint64(det.ShowID),
			"peliculaTitulo": det.ShowTitle,
			"salaNombre":     det.HallName,
			"strFecha":       shortDate(starts),
			"strHora":        clockTime(starts),
			"butacas":        seatLabels(det.Seats),
			"nombre":         det.CustomerName,
		},
	})
}

// loadDetail fetches a reservation, writing the error response itself
// when it cannot. A nil detail means the response has been written.
func (h *CheckoutHandler) loadDetail(c echo.Context, id uint64) (*repository.ReservationDetail, error) {
	det, err := h.Reservations.GetDetail(c.Request().Context(), id)
	if err == nil {
		return det, nil
	}
	if errors.Is(err, repository.ErrReservationNotFound) {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	}
	h.Log.Error("load reservation", zap.Uint64("reservation_id", id), zap.Error(err))
	return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

func (h *CheckoutHandler) seatError(c echo.Context, err error, msg string) error {
	if errors.Is(err, repository.ErrSeatUnavailable) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
	}
	h.Log.Error(msg, zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

func (h *CheckoutHandler) publishCreated(rec *repository.ReservationRecord, s *repository.SessionDetail, seats []repository.Seat) {
	if h.Events == nil {
		return
	}
	labels := make([]string, 0, len(seats))
	for _, s := range seats {
		labels = append(labels, model.Seat{Row: s.RowLabel, Number: int(s.SeatNumber)}.ShortLabel())
	}
	ev := queue.ReservationCreatedEvent{
		ReservationID:    rec.ID,
		ShowID:           rec.ShowID,
		CustomerName:     rec.CustomerName,
		CustomerEmail:    rec.CustomerEmail,
		HallName:         s.HallName,
		MovieTitle:       s.Title,
		StartsAt:         s.StartsAt.UTC().Format(time.RFC3339),
		SeatLabels:       labels,
		TotalAmountCents: rec.TotalAmountCents,
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := h.Events.PublishReservationCreated(ctx, ev); err != nil {
			h.Log.Warn("publish reservation.created", zap.Uint64("reservation_id", ev.ReservationID), zap.Error(err))
		}
	}()
}

// parseIDs converts wire IDs to database keys, dropping duplicates.
func parseIDs(ids []model.ID) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, errors.New("ids is required")
	}
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		n, err := id.Uint64()
		if err != nil {
			return nil, errors.New("invalid seat id " + id.String())
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func toModelSeats(seats []repository.Seat) []model.Seat {
	out := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		out = append(out, model.Seat{ID: model.IDFromUint64(s.ID), Row: s.RowLabel, Number: int(s.SeatNumber)})
	}
	return out
}

func seatLabels(seats []repository.ReservedSeat) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		out = append(out, model.Seat{Row: s.RowLabel, Number: int(s.SeatNumber)}.ShortLabel())
	}
	return out
}
