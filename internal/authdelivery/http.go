// Package authdelivery issues identity tokens over http.
package authdelivery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// TokenTypeBearer is the token type returned to clients.
const TokenTypeBearer = "bearer"

// Handler facilitates auth delivery layer logic.
type Handler struct {
	tokenMaker      tokenpkg.Maker
	accessDuration  time.Duration
	refreshDuration time.Duration
}

// NewHandler returns auth handler issuing tokens with the given lifetimes.
func NewHandler(tokenMaker tokenpkg.Maker, accessDuration, refreshDuration time.Duration) Handler {
	return Handler{
		tokenMaker:      tokenMaker,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
	}
}

type loginRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
}

// Login handles http request to obtain access and refresh tokens.
func (h *Handler) Login(gctx *gin.Context) {
	h.issue(gctx, true)
}

// Refresh handles http request to obtain a new access token.
func (h *Handler) Refresh(gctx *gin.Context) {
	h.issue(gctx, false)
}

func (h *Handler) issue(gctx *gin.Context, withRefresh bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	subject := strconv.FormatInt(req.UserID, 10)

	accessToken, accessPayload, err := h.tokenMaker.CreateToken(subject, tokenpkg.KindAccess, h.accessDuration)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(h.accessDuration.Seconds()),
	}

	if withRefresh {
		refreshToken, _, err := h.tokenMaker.CreateToken(subject, tokenpkg.KindRefresh, h.refreshDuration)
		if err != nil {
			l.Error().Err(err).Send()
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

			return
		}

		res.RefreshToken = &refreshToken
	}

	l.Info().
		Int64("user_id", req.UserID).
		Str("token_id", accessPayload.ID.String()).
		Bool("with_refresh", withRefresh).
		Msg("token issued")

	gctx.JSON(http.StatusOK, res)
}
