package swap

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// InsufficientBalanceError indicates the conditional balance guard rejected
// the debit. Business rule violation: not retryable without a new quote.
type InsufficientBalanceError struct {
	UserID    uuid.UUID
	Currency  shared.Currency
	Requested decimal.Decimal
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance for user %s: requested %s",
		e.Currency, e.UserID, e.Requested)
}

// Is matches any InsufficientBalanceError when the target carries a nil user ID
func (e InsufficientBalanceError) Is(target error) bool {
	t, ok := target.(InsufficientBalanceError)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID && e.Currency == t.Currency
}

// TransactionUnsupportedError indicates the datastore deployment rejected a
// multi-document transaction. Handled internally via the single bounded
// downgrade retry; surfaced only if the non-transactional attempt also fails.
type TransactionUnsupportedError struct {
	Cause error
}

func (e TransactionUnsupportedError) Error() string {
	return fmt.Sprintf("datastore deployment does not support transactions: %v", e.Cause)
}

func (e TransactionUnsupportedError) Unwrap() error { return e.Cause }

func (e TransactionUnsupportedError) Is(target error) bool {
	_, ok := target.(TransactionUnsupportedError)
	return ok
}

// LedgerPersistenceError indicates the double-entry write failed after a
// non-transactional balance mutation had already succeeded. Compensation runs
// before this error reaches the caller, but it is never masked by it.
type LedgerPersistenceError struct {
	Reference string
	Cause     error
}

func (e LedgerPersistenceError) Error() string {
	return fmt.Sprintf("failed to persist ledger pair %s: %v", e.Reference, e.Cause)
}

func (e LedgerPersistenceError) Unwrap() error { return e.Cause }

func (e LedgerPersistenceError) Is(target error) bool {
	t, ok := target.(LedgerPersistenceError)
	if !ok {
		return false
	}
	if t.Reference == "" {
		return true
	}
	return e.Reference == t.Reference
}

// CompensationFailureError is critical: a partial write could not be reverted
// and the user's balances need manual reconciliation. It is logged and
// durably recorded, never returned in place of the original error.
type CompensationFailureError struct {
	UserID        uuid.UUID
	CorrelationID string
	Cause         error
}

func (e CompensationFailureError) Error() string {
	return fmt.Sprintf("failed to compensate balance mutation for user %s (correlation %s): %v",
		e.UserID, e.CorrelationID, e.Cause)
}

func (e CompensationFailureError) Unwrap() error { return e.Cause }
