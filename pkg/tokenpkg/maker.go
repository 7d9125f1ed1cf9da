// Package tokenpkg issues and verifies identity tokens.
package tokenpkg

import (
	"strings"
	"time"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific subject and duration.
	CreateToken(subject string, kind Kind, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// Options control the claims every token carries and how they are verified.
type Options struct {
	Issuer   string
	Audience string
	// Leeway tolerates clock skew when checking expiry.
	Leeway time.Duration
	// Now overrides the clock, time.Now is used when nil.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}

	return o.Now()
}

// NewMaker returns the maker for the given algorithm: HS256, HS384, HS512 or PASETO.
func NewMaker(algorithm, secretKey string, opts Options) (Maker, error) {
	if strings.EqualFold(algorithm, "PASETO") {
		return NewPasetoMaker(secretKey, opts)
	}

	return NewJWTMaker(secretKey, algorithm, opts)
}
