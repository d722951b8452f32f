package service

import (
	"errors"
	"fmt"

	"stockdesk/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrInvalidBasket is returned when a sale request has no lines or a
	// line with a non-positive quantity.
	ErrInvalidBasket = errors.New("basket is empty or contains a non-positive quantity")

	// ErrInvalidQuantity is returned for manual adjustments with a
	// non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidDirection is returned for manual adjustments with an
	// unknown movement direction.
	ErrInvalidDirection = errors.New("direction must be IN or OUT")

	// ErrStorageUnavailable wraps infrastructure failures where the
	// transaction was rolled back, so no state was changed.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPartialApply wraps failures with an unknown outcome: a rollback
	// that itself failed, or a commit error where the server may have made
	// the transaction durable before the connection dropped. Stock,
	// movements, and sale rows may or may not be in place, so these are
	// never retried. Callers must log it distinctly and treat the sale as
	// failed.
	ErrPartialApply = errors.New("sale may have been partially applied")
)

// InsufficientStockError reports the first line whose requested quantity
// exceeds the available stock. Nothing is mutated when it is returned.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// isStorageFailure reports whether err is an infrastructure failure that was
// safely rolled back. Validation errors are not infrastructure failures, and
// failed rollbacks and failed commits left state in an unknown condition, so
// none of those are ever retried.
func isStorageFailure(err error) bool {
	if err == nil {
		return false
	}

	var insufficient *InsufficientStockError
	var rollback *repository.RollbackError
	var commit *repository.CommitError
	switch {
	case errors.As(err, &insufficient),
		errors.As(err, &rollback),
		errors.As(err, &commit),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrClientNotFound),
		errors.Is(err, repository.ErrStockWouldGoNegative):
		return false
	}

	return true
}

// classifyLedgerErr maps a transaction error to the ledger taxonomy. A failed
// rollback or an ambiguous commit becomes ErrPartialApply, any other
// infrastructure failure becomes ErrStorageUnavailable, and validation errors
// pass through unchanged.
func classifyLedgerErr(err error) error {
	var rollback *repository.RollbackError
	var commit *repository.CommitError
	if errors.As(err, &rollback) || errors.As(err, &commit) {
		return fmt.Errorf("%w: %v", ErrPartialApply, err)
	}
	if isStorageFailure(err) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}
