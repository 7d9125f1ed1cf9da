// Package transactiondelivery manages delivery layer of ledger transactions.
package transactiondelivery

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

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionTxResult, error)
	Get(ctx context.Context, id int64) (domain.Transaction, error)
	List(ctx context.Context, limit, skip int64) ([]domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID, limit, skip int64) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type createRequest struct {
	AccountID int64            `json:"account_id" binding:"required,min=1"`
	Type      string           `json:"type" binding:"required,txtype"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
}

// Create handles http request to deposit to or withdraw from the account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	if err := domain.ValidateMoney(*req.Amount); err != nil {
		l.Info().Err(err).Int64("account_id", req.AccountID).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		gctx.JSON(http.StatusBadRequest, web.Error(err))
		return
	}

	arg := domain.CreateTransactionParams{
		AccountID: req.AccountID,
		Type:      txType,
		Amount:    *req.Amount,
	}

	l.Info().
		Int64("account_id", arg.AccountID).
		Str("type", string(arg.Type)).
		Str("amount", arg.Amount.String()).
		Int64("requested_by", gctx.GetInt64(middleware.AuthUserIDKey)).
		Msg("creating transaction")

	result, err := h.service.Create(ctx, arg)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			gctx.JSON(http.StatusNotFound, web.Error(err))
		case domain.IsBusinessRuleViolation(err):
			gctx.JSON(http.StatusConflict, web.Error(err))
		case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidTransactionType):
			gctx.JSON(http.StatusBadRequest, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}

	gctx.JSON(http.StatusCreated, result.Transaction)
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	t, err := h.service.Get(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, t)
}

// List handles http request to list all ledger transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	limit := web.QueryInt(gctx.Query("limit"), domain.DefaultPageLimit)
	skip := web.QueryInt(gctx.Query("skip"), 0)

	items, err := h.service.List(ctx, limit, skip)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, items)
}

// ListByAccount handles http request to list transactions of the account.
func (h *Handler) ListByAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindingError(err))

		return
	}

	limit := web.QueryInt(gctx.Query("limit"), domain.DefaultPageLimit)
	skip := web.QueryInt(gctx.Query("skip"), 0)

	items, err := h.service.ListByAccount(ctx, req.ID, limit, skip)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, items)
}
