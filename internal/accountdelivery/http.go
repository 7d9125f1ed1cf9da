// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, ownerID int64, balance decimal.Decimal) (domain.Account, error)
	List(ctx context.Context, limit, skip int64) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type createRequest struct {
	UserID  int64            `json:"user_id" binding:"required,min=1"`
	Balance *decimal.Decimal `json:"balance"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	balance := decimal.Zero
	if req.Balance != nil {
		balance = *req.Balance
	}

	if err := domain.ValidateMoney(balance); err != nil {
		l.Info().Err(err).Int64("user_id", req.UserID).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	l.Info().
		Int64("user_id", req.UserID).
		Int64("requested_by", gctx.GetInt64(middleware.AuthUserIDKey)).
		Msg("creating account")

	createdAccount, err := h.service.Create(ctx, req.UserID, balance)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateAccount), domain.IsBusinessRuleViolation(err):
			gctx.JSON(http.StatusConflict, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidOwner):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, createdAccount)
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	limit := web.QueryInt(gctx.Query("limit"), domain.DefaultPageLimit)
	skip := web.QueryInt(gctx.Query("skip"), 0)

	accounts, err := h.service.List(ctx, limit, skip)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, accounts)
}
