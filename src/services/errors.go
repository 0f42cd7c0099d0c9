package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors: the request itself is malformed.
var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidKind     = errors.New("kind must be buy or sell")
	ErrUnknownAsset    = errors.New("unknown asset ticker")
)

// ErrPriceUnavailable rejects a trade when no current price exists for the
// asset. The check happens before any mutation.
var ErrPriceUnavailable = errors.New("price not available for asset")

var ErrInvalidCredentials = errors.New("invalid email or password")

// InsufficientFundsError rejects a buy whose cost exceeds the user's cash.
type InsufficientFundsError struct {
	Needed    decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %s, have %s", e.Needed, e.Available)
}

// InsufficientSharesError rejects a sell of more shares than held.
type InsufficientSharesError struct {
	Available decimal.Decimal
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("insufficient shares: %s available", e.Available)
}
