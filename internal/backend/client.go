// Package backend is the HTTP client for the reservation service used by
// the checkout flow.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// Client talks to the reservation REST API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New returns a client for baseURL. A nil hc gets a client with a 15s
// timeout; a nil log discards.
func New(baseURL string, hc *http.Client, log *zap.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc, log: log}
}

// Session fetches GET /sesiones/{id}.
func (c *Client) Session(ctx context.Context, id model.ID) (model.Session, error) {
	var s model.Session
	err := c.getJSON(ctx, "fetch session", "/sesiones/"+url.PathEscape(id.String()), &s)
	return s, err
}

// Seats fetches GET /butacas/lista?ids=1,2,3.
func (c *Client) Seats(ctx context.Context, ids []model.ID) ([]model.Seat, error) {
	q := url.Values{"ids": {model.JoinIDs(ids)}}
	var seats []model.Seat
	err := c.getJSON(ctx, "fetch seats", "/butacas/lista?"+q.Encode(), &seats)
	return seats, err
}

// CreateReservation posts the reservation.
func (c *Client) CreateReservation(ctx context.Context, req model.ReservationRequest) (model.ReservationResult, error) {
	const op = "create reservation"
	var out model.ReservationResult
	body, err := json.Marshal(req)
	if err != nil {
		return out, fmt.Errorf("%s: encode: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reservas", bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.do(op, httpReq)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("%s: decode: %w", op, err)
	}
	return out, nil
}

// Document downloads GET /reservas/{id}/pdf.
func (c *Client) Document(ctx context.Context, reservationID model.ID) (model.Document, error) {
	const op = "fetch document"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/reservas/"+url.PathEscape(reservationID.String())+"/pdf", nil)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.do(op, req)
	if err != nil {
		return model.Document{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: read: %w", op, err)
	}
	return model.Document{
		ContentType: resp.Header.Get("Content-Type"),
		Disposition: resp.Header.Get("Content-Disposition"),
		Body:        body,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.do(op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// do sends req and converts non-2xx responses into *StatusError. On
// success the caller owns the body.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("backend request failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Debug("backend request",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
}

// errorMessage extracts {"error": "..."} from an error body, falling back
// to the raw text.
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
