// Package middleware provides gin middlewares shared by all routes.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// Authorization header and gin context keys.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
	AuthUserIDKey  = "authorization_user_id"
)

var (
	// ErrAuthHeaderNotFound indicates that the request carries no credentials.
	ErrAuthHeaderNotFound = errors.New("Not authenticated")
	// ErrBadAuthHeaderFormat indicates that the authorization header is malformed.
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	// ErrUnsupportedAuthType indicates authorization scheme other than bearer.
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
	// ErrWrongTokenKind indicates a refresh token used where an access token is expected.
	ErrWrongTokenKind = errors.New("access token required")
	// ErrBadSubject indicates that the token subject is not a user id.
	ErrBadSubject = errors.New("token subject is not a user id")
)

// AddAuthorization creates an access token for subject and sets it to the request header.
func AddAuthorization(r *http.Request, tokenMaker tokenpkg.Maker, authType, subject string, duration time.Duration) error {
	token, _, err := tokenMaker.CreateToken(subject, tokenpkg.KindAccess, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, authType+" "+token)

	return nil
}

// AuthMiddleware authorizes requests with a bearer access token.
//
// The verified payload and the user id it names are stored under AuthPayloadKey and AuthUserIDKey.
// The reason of a rejection is logged but never returned to the client.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			gctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(ErrAuthHeaderNotFound))
			return
		}

		unauthorized := func(err error) {
			l.Info().Err(err).Str("path", gctx.Request.URL.Path).Msg("request unauthorized")
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(errorspkg.ErrUnauthorized))
		}

		fields := strings.Fields(authHeader)
		if len(fields) != 2 {
			unauthorized(ErrBadAuthHeaderFormat)
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			unauthorized(ErrUnsupportedAuthType)
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			unauthorized(err)
			return
		}

		if payload.Kind != tokenpkg.KindAccess {
			unauthorized(ErrWrongTokenKind)
			return
		}

		userID, err := strconv.ParseInt(payload.Subject, 10, 64)
		if err != nil || userID <= 0 {
			unauthorized(ErrBadSubject)
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Set(AuthUserIDKey, userID)
		gctx.Next()
	}
}
