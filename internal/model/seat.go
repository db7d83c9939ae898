package model

import "fmt"

// Seat describes one seat selected for a checkout.  A seat is
// identified by its id; Row and Number locate it inside the room.
//
// Fields:
//  ID     – seat identifier.
//  Row    – row label (A, B, AA...).
//  Number – position of the seat in the row, 1-based.
type Seat struct {
	ID     ID     `json:"id"`
	Row    string `json:"fila"`
	Number int    `json:"butaca"`
}

// Label renders the seat as shown to customers, e.g. "Fila B - Butaca 7".
func (s Seat) Label() string {
	return fmt.Sprintf("Fila %s - Butaca %d", s.Row, s.Number)
}

// ShortLabel renders the seat compactly, e.g. "B7".
func (s Seat) ShortLabel() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}
