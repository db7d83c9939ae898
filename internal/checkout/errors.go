package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrHoldExpired is returned by Submit once the hold window has
	// closed, including when the deadline passed but the countdown has
	// not ticked yet.
	ErrHoldExpired = errors.New("checkout: hold expired")

	// ErrSubmissionInFlight rejects a submit while a previous attempt is
	// still waiting for the backend.
	ErrSubmissionInFlight = errors.New("checkout: submission already in flight")

	// ErrAlreadySucceeded rejects any submit after a purchase succeeded.
	ErrAlreadySucceeded = errors.New("checkout: purchase already completed")

	// ErrNotExpired is returned by GoBack while the hold is still valid.
	ErrNotExpired = errors.New("checkout: hold has not expired")

	// ErrFlowClosed is returned once the flow has been torn down.
	ErrFlowClosed = errors.New("checkout: flow closed")
)

// ValidationError reports a form field that blocks submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ContextFetchError wraps a failure to load the session or the seats.
type ContextFetchError struct {
	Resource string
	Err      error
}

func (e *ContextFetchError) Error() string {
	return fmt.Sprintf("checkout: fetch %s: %v", e.Resource, e.Err)
}

func (e *ContextFetchError) Unwrap() error { return e.Err }

// SubmissionError wraps a failed purchase call.
type SubmissionError struct {
	AttemptID string
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("checkout: purchase attempt %s: %v", e.AttemptID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// DocumentFetchError wraps a failure to retrieve or store the issued
// document. It never reverts a successful purchase.
type DocumentFetchError struct {
	ReservationID string
	Err           error
}

func (e *DocumentFetchError) Error() string {
	return fmt.Sprintf("checkout: document for reservation %s: %v", e.ReservationID, e.Err)
}

func (e *DocumentFetchError) Unwrap() error { return e.Err }
