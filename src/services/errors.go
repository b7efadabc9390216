package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAssetNotAvailable means the asset has fewer units in stock than requested.
	ErrAssetNotAvailable    = errors.New("asset is not available in the requested amount")
	ErrInsufficientFunds    = errors.New("not enough balance to buy selected asset amount")
	ErrInsufficientHoldings = errors.New("you own fewer assets than you are trying to sell")
	ErrInvalidAmount        = errors.New("invalid amount")

	// ErrIdempotencyConflict means an idempotency key was reused for a
	// different trade.
	ErrIdempotencyConflict = errors.New("idempotency key already used for a different trade")

	ErrForbidden = errors.New("not allowed to access this resource")

	// ErrStorage wraps failures of the database while a unit of work runs.
	// Nothing was committed and the request may be retried.
	ErrStorage = errors.New("storage unavailable")
)

func invalidAmount(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
