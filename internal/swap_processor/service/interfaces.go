package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/currency-swap-engine/internal/domain/ledger"
	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/domain/user"
)

// SwapService executes one swap end to end and returns its result.
// Implementations raise on failure; a returned Result always reflects a
// committed swap.
type SwapService interface {
	ExecuteSwap(ctx context.Context, request *shared.SwapRequest) (*swap.Result, error)
}

// TransactionCapabilityDetector reports whether the current datastore
// connection supports multi-document transactions. Implementations never
// raise: any inspection failure reads as "unsupported" and routes execution
// through the non-transactional path.
type TransactionCapabilityDetector interface {
	SupportsTransactions(ctx context.Context) bool
}

// LedgerRecorder constructs and persists the double-entry pair for one swap.
// It performs no balance mutation. The returned entries are the constructed
// pair even when persistence failed, so callers can reference the pair in
// error context.
type LedgerRecorder interface {
	RecordSwap(ctx context.Context, userID uuid.UUID, quote *swap.Quote, correlationID string) ([]*ledger.Entry, error)
}

// CompensationManager reverts a balance mutation to its pre-swap snapshot
// after a non-transactional failure. It never raises; failures are logged and
// recorded for manual reconciliation while the caller's original error stays
// the surfaced one.
type CompensationManager interface {
	Revert(ctx context.Context, snapshot *user.BalanceSnapshot, reference, correlationID string, cause error)
}
