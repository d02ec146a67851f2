package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// Repository defines user balance persistence operations. Implementations
// must honor an in-flight transactional session carried on the context.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// ApplySwap performs the single atomic conditional update: debit the
	// source balance by amount and credit the target balance by
	// amountReceived, guarded by "source balance >= amount" evaluated
	// atomically by the datastore. Returns the post-mutation user.
	ApplySwap(ctx context.Context, id uuid.UUID, source shared.Currency, amount decimal.Decimal, target shared.Currency, amountReceived decimal.Decimal) (*User, error)

	// RestoreBalances overwrites the two balances and both timestamps with
	// the exact snapshot values. Used only by compensation.
	RestoreBalances(ctx context.Context, snapshot *BalanceSnapshot) error
}

// ErrUserNotFound indicates a missing user record
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID.String()
}

// Is matches any ErrUserNotFound when the target carries a nil ID
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}
