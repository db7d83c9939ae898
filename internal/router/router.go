package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-checkout/internal/handler"
)

// Deps are the handlers and per-route middleware the API is built from.
// Cache wraps the read-only lookups; RateLimit guards reservation
// creation. Either may be nil.
type Deps struct {
	Health    *handler.HealthHandler
	Checkout  *handler.CheckoutHandler
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register maps every endpoint of the reservation service on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Health)

	var cached, limited []echo.MiddlewareFunc
	if d.Cache != nil {
		cached = append(cached, d.Cache)
	}
	if d.RateLimit != nil {
		limited = append(limited, d.RateLimit)
	}

	h := d.Checkout
	// Session and seat lookups back the checkout screen and rarely change.
	e.GET("/sesiones/:id", h.GetSession, cached...)
	e.GET("/butacas/lista", h.ListSeats, cached...)

	e.POST("/reservas", h.CreateReservation, limited...)
	e.GET("/reservas/:id/pdf", h.GetDocument)
	e.GET("/reservas/verificar/:token", h.VerifyTicket, limited...)
}
