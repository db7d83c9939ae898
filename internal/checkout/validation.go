package checkout

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/iliyamo/cinema-checkout/internal/model"
)

// Messages shown when the form is rejected.
const (
	MsgNoSeats      = "Please select at least one seat."
	MsgInvalidEmail = "Please enter a valid email."
	MsgInvalidPhone = "Please enter a valid phone number."
	MsgMissingName  = "Please enter your name."
)

// MinPhoneDigits is the shortest phone number accepted, counting digits
// only.
const MinPhoneDigits = 9

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the form before a purchase is attempted. Checks run in
// a fixed order and stop at the first failure: seat selection, email,
// phone, then name. The returned error is a *ValidationError.
func Validate(c model.Customer, seatIDs []model.ID) error {
	if len(seatIDs) == 0 {
		return &ValidationError{Field: "seats", Message: MsgNoSeats}
	}
	if !emailPattern.MatchString(c.Email) {
		return &ValidationError{Field: "email", Message: MsgInvalidEmail}
	}
	if len(PhoneDigits(c.Phone)) < MinPhoneDigits {
		return &ValidationError{Field: "phone", Message: MsgInvalidPhone}
	}
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: MsgMissingName}
	}
	return nil
}

// PhoneDigits strips everything but ASCII digits.
func PhoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
