package tokenpkg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const minSecretKeySize = 32

// JWTMaker is a JSON Web Token maker.
type JWTMaker struct {
	secretKey string
	method    jwt.SigningMethod
	opts      Options
}

// jwtClaims is the wire form of Payload, timestamps are encoded as NumericDate.
type jwtClaims struct {
	Kind Kind `json:"type"`
	jwt.RegisteredClaims
}

// NewJWTMaker creates a new JWTMaker signing with the given HMAC algorithm.
func NewJWTMaker(secretKey, algorithm string, opts Options) (*JWTMaker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, fmt.Errorf("invalid key size: must be at least %d characters", minSecretKeySize)
	}

	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &JWTMaker{secretKey: secretKey, method: method, opts: opts}, nil
}

// CreateToken creates a new token for a specific subject and duration.
func (maker *JWTMaker) CreateToken(subject string, kind Kind, duration time.Duration) (string, *Payload, error) {
	payload, err := NewPayload(subject, kind, duration, maker.opts)
	if err != nil {
		return "", payload, err
	}

	claims := jwtClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        payload.ID.String(),
			Subject:   payload.Subject,
			Issuer:    payload.Issuer,
			IssuedAt:  jwt.NewNumericDate(payload.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(payload.ExpiredAt),
		},
	}

	if payload.Audience != "" {
		claims.Audience = jwt.ClaimStrings{payload.Audience}
	}

	jwtToken := jwt.NewWithClaims(maker.method, claims)

	token, err := jwtToken.SignedString([]byte(maker.secretKey))

	return token, payload, err
}

// VerifyToken checks if the token is valid or not.
func (maker *JWTMaker) VerifyToken(token string) (*Payload, error) {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != maker.method.Alg() {
			return nil, ErrInvalidToken
		}

		return []byte(maker.secretKey), nil
	}

	// Time based claims are checked by Payload.Check against the maker clock.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{maker.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims jwtClaims

	if _, err := parser.ParseWithClaims(token, &claims, keyFunc); err != nil {
		return nil, ErrInvalidToken
	}

	payload, err := claims.payload()
	if err != nil {
		return nil, err
	}

	if err := payload.Check(maker.opts); err != nil {
		return nil, err
	}

	return payload, nil
}

func (c jwtClaims) payload() (*Payload, error) {
	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(c.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	p := &Payload{
		ID:        id,
		Subject:   c.Subject,
		Issuer:    c.Issuer,
		Kind:      c.Kind,
		IssuedAt:  c.IssuedAt.Time,
		ExpiredAt: c.ExpiresAt.Time,
	}

	switch len(c.Audience) {
	case 0:
	case 1:
		p.Audience = c.Audience[0]
	default:
		return nil, errors.New("token has more than one audience")
	}

	return p, nil
}
