// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("Account not found.")
	// ErrDuplicateAccount indicates that the owner already has an account.
	ErrDuplicateAccount = errors.New("account already exists for this user")
	// ErrInvalidOwner indicates that the owner id is not a positive integer.
	ErrInvalidOwner = errors.New("invalid user id")
)

// Account holds the balance of a single owner.
type Account struct {
	ID        int64           `json:"id"`
	OwnerID   int64           `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
