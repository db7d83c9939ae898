package handler

import (
	"fmt"
	"time"
)

var (
	weekdaysES = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	monthsES   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// longDateES renders t as "viernes, 16 de octubre de 2026".
func longDateES(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdaysES[t.Weekday()], t.Day(), monthsES[t.Month()-1], t.Year())
}

// shortDate renders t as dd/mm/yyyy.
func shortDate(t time.Time) string { return t.Format("02/01/2006") }

// clockTime renders t as HH:MM.
func clockTime(t time.Time) string { return t.Format("15:04") }
