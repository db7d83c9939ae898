// Package ticket issues the documents handed to customers after a
// purchase: a signed ticket code and the PDF it is printed on.
package ticket

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidTicket is returned by Verify for any malformed, tampered or
// expired code.
var ErrInvalidTicket = errors.New("invalid ticket code")

const issuer = "velvetcinema"

// Claims is the payload of a ticket code. The subject carries the
// reservation ID.
type Claims struct {
	ShowID uint64   `json:"sid"`
	Seats  []string `json:"seats"`
	jwt.RegisteredClaims
}

// ReservationID parses the subject back into a reservation ID.
func (c *Claims) ReservationID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// Signer signs and verifies HS256 ticket codes.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer. A non-positive ttl issues codes without
// expiry.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign builds the code for a reservation. Seats are short labels such as
// "B7".
func (s *Signer) Sign(reservationID, showID uint64, seats []string) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		ShowID: showID,
		Seats:  seats,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  strconv.FormatUint(reservationID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature, issuer and expiry of a code.
func (s *Signer) Verify(code string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(code, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidTicket, err)
	}
	if _, err := claims.ReservationID(); err != nil {
		return nil, errors.Join(ErrInvalidTicket, err)
	}
	return &claims, nil
}
