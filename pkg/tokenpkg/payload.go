package tokenpkg

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Kind tells access tokens from refresh tokens.
type Kind string

// Supported token kinds.
const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Payload contains the payload data of the token.
type Payload struct {
	ID        uuid.UUID `json:"jti"`
	Subject   string    `json:"sub"`
	Issuer    string    `json:"iss"`
	Audience  string    `json:"aud"`
	Kind      Kind      `json:"type"`
	IssuedAt  time.Time `json:"iat"`
	ExpiredAt time.Time `json:"exp"`
}

// NewPayload creates a new token payload with a specific subject and duration.
func NewPayload(subject string, kind Kind, duration time.Duration, opts Options) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := opts.now()

	payload := &Payload{
		ID:        tokenID,
		Subject:   subject,
		Issuer:    opts.Issuer,
		Audience:  opts.Audience,
		Kind:      kind,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
	}

	return payload, nil
}

// Check verifies issuer, audience and expiry of the payload.
func (p *Payload) Check(opts Options) error {
	if p.Subject == "" {
		return ErrInvalidToken
	}

	if opts.Issuer != "" && p.Issuer != opts.Issuer {
		return ErrInvalidToken
	}

	if opts.Audience != "" && p.Audience != opts.Audience {
		return ErrInvalidToken
	}

	if opts.now().After(p.ExpiredAt.Add(opts.Leeway)) {
		return ErrExpiredToken
	}

	return nil
}
