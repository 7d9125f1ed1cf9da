package tokenpkg

import (
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"golang.org/x/crypto/chacha20poly1305"
)

// PasetoMaker is a PASETO token maker.
type PasetoMaker struct {
	paseto       *paseto.V2
	symmetricKey []byte
	opts         Options
}

// NewPasetoMaker creates a new PasetoMaker.
func NewPasetoMaker(symmetricKey string, opts Options) (*PasetoMaker, error) {
	if len(symmetricKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("invalid key size: must be exactly %d characters", chacha20poly1305.KeySize)
	}

	maker := &PasetoMaker{
		paseto:       paseto.NewV2(),
		symmetricKey: []byte(symmetricKey),
		opts:         opts,
	}

	return maker, nil
}

// CreateToken creates a new token for a specific subject and duration.
func (maker *PasetoMaker) CreateToken(subject string, kind Kind, duration time.Duration) (string, *Payload, error) {
	payload, err := NewPayload(subject, kind, duration, maker.opts)
	if err != nil {
		return "", payload, err
	}

	token, err := maker.paseto.Encrypt(maker.symmetricKey, payload, nil)

	return token, payload, err
}

// VerifyToken checks if the token is valid or not.
func (maker *PasetoMaker) VerifyToken(token string) (*Payload, error) {
	payload := &Payload{}

	err := maker.paseto.Decrypt(token, maker.symmetricKey, payload, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if err := payload.Check(maker.opts); err != nil {
		return nil, err
	}

	return payload, nil
}
