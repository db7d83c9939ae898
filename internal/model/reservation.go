package model

import "time"

// Customer holds the contact details typed into the checkout form.  They
// are not persisted client side beyond the submission.
type Customer struct {
	Name  string `json:"nombre" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email,max=190"`
	Phone string `json:"telefono" validate:"required,phone,max=32"`
}

// ReservationRequest is the body of POST /reservas.
type ReservationRequest struct {
	Customer  Customer `json:"cliente" validate:"required"`
	SessionID ID       `json:"sesionId" validate:"required"`
	SeatIDs   []ID     `json:"butacasId" validate:"required,min=1,dive,required"`
}

// ReservationResult is returned by a successful POST /reservas.
//
// Fields:
//  ID         – reservation identifier, used to fetch the document.
//  SessionID  – session the seats belong to.
//  Seats      – seats covered by the reservation.
//  TotalCents – total amount charged, in cents.
//  CreatedAt  – creation timestamp (UTC).
type ReservationResult struct {
	ID         ID        `json:"id"`
	SessionID  ID        `json:"sesionId"`
	Seats      []Seat    `json:"butacas,omitempty"`
	TotalCents int64     `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Document is a binary issued for a reservation, typically the PDF
// ticket.  Disposition carries the raw Content-Disposition header so the
// receiver can derive a file name.
type Document struct {
	ContentType string
	Disposition string
	Body        []byte
}
