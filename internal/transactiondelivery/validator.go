package transactiondelivery

import (
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidTransactionType validates whether the transaction type is supported, case is ignored.
var ValidTransactionType validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := domain.ParseTransactionType(s)
		return err == nil
	}

	return false
}
