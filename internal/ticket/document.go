package ticket

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ContentType of rendered tickets.
const ContentType = "application/pdf"

// Data is everything printed on a ticket.
type Data struct {
	ReservationID uint64
	Customer      string
	Email         string
	MovieTitle    string
	Cinema        string
	Hall          string
	StartsAt      time.Time
	Seats         []string
	TotalCents    uint32
	Code          string
	IssuedAt      time.Time
}

// Filename is the attachment name used for a reservation's ticket.
func Filename(reservationID uint64) string {
	return fmt.Sprintf("entrada_%d.pdf", reservationID)
}

// FormatCents renders an amount as euros with a comma decimal separator.
func FormatCents(c uint32) string {
	return fmt.Sprintf("%d,%02d EUR", c/100, c%100)
}

// Render lays out the ticket on a single A4 page.
func Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Entrada %d", d.ReservationID), true)
	pdf.SetAuthor("Velvet Cinema", true)
	if !d.IssuedAt.IsZero() {
		pdf.SetCreationDate(d.IssuedAt)
		pdf.SetModificationDate(d.IssuedAt)
	}
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, tr("Velvet Cinema"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Entrada n.º %d", d.ReservationID)), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(d.MovieTitle), "", "L", false)
	pdf.Ln(2)

	venue := d.Hall
	if d.Cinema != "" {
		venue = d.Cinema + " - " + d.Hall
	}
	rows := [][2]string{
		{"Sala", venue},
		{"Fecha", d.StartsAt.Format("02/01/2006")},
		{"Hora", d.StartsAt.Format("15:04")},
		{"Butacas", strings.Join(d.Seats, ", ")},
		{"Total", FormatCents(d.TotalCents)},
		{"Cliente", d.Customer},
		{"Email", d.Email},
	}
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(35, 7, tr(r[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(r[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, tr("Código de verificación"), "", 1, "L", false, 0, "")
	pdf.SetFont("Courier", "", 7)
	pdf.MultiCell(0, 4, d.Code, "1", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %d: %w", d.ReservationID, err)
	}
	return buf.Bytes(), nil
}
