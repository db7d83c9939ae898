package model

// Session is a scheduled screening as shown on the checkout screen.  It
// is a read-only snapshot: the client fetches it once per checkout and
// replaces it wholesale on a new fetch.  Dates and times arrive already
// formatted for display.
//
// Fields:
//  ID         – session identifier.
//  MovieTitle – title of the film being screened.
//  LongDate   – long, localised date ("viernes, 16 de octubre de 2026").
//  Date       – short date (dd/mm/yyyy).
//  Time       – start time (HH:MM).
//  RoomID     – identifier of the room (hall) hosting the session.
//  RoomName   – display name of the room.
type Session struct {
	ID         ID     `json:"id"`
	MovieTitle string `json:"peliculaTitulo"`
	LongDate   string `json:"strFechaLarga"`
	Date       string `json:"strFecha"`
	Time       string `json:"strHora"`
	RoomID     ID     `json:"salaId"`
	RoomName   string `json:"salaNombre"`
}
