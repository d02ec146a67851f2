package components

import (
	"context"
	"log/slog"

	"github.com/currency-swap-engine/internal/cache"
	"github.com/currency-swap-engine/internal/domain/reconciliation"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/domain/user"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

const reasonCompensationFailed = "COMPENSATION_FAILED"

// CompensationManagerImpl implements the CompensationManager interface
type CompensationManagerImpl struct {
	userRepo  user.Repository
	cache     cache.BalanceCache
	reconRepo reconciliation.Repository
	logger    *slog.Logger
}

// NewCompensationManager creates a new CompensationManagerImpl
func NewCompensationManager(userRepo user.Repository, balanceCache cache.BalanceCache, reconRepo reconciliation.Repository, logger *slog.Logger) service.CompensationManager {
	return &CompensationManagerImpl{
		userRepo:  userRepo,
		cache:     balanceCache,
		reconRepo: reconRepo,
		logger:    logger,
	}
}

// Revert overwrites the two swapped balances and both timestamps with the
// exact pre-mutation snapshot. It never raises: a failed revert is logged
// with the attempted values and written to the reconciliation store, while
// the caller's original error remains the surfaced one.
//
// Known limitation: a legitimate balance write committed between the original
// mutation and this overwrite is silently discarded. Deployments that support
// transactions never reach this path.
func (m *CompensationManagerImpl) Revert(ctx context.Context, snapshot *user.BalanceSnapshot, reference, correlationID string, cause error) {
	logger := m.logger
	if correlationID != "" {
		logger = m.logger.With("correlation_id", correlationID)
	}

	logger.Warn("Reverting balance mutation to pre-swap snapshot",
		"user_id", snapshot.UserID.String(),
		"reference", reference,
		"original_error", cause)

	if err := m.userRepo.RestoreBalances(ctx, snapshot); err != nil {
		compErr := swap.CompensationFailureError{
			UserID:        snapshot.UserID,
			CorrelationID: correlationID,
			Cause:         err,
		}
		logger.Error("CRITICAL: compensation failed, balances need manual reconciliation",
			"user_id", snapshot.UserID.String(),
			"reference", reference,
			"attempted_source_balance", snapshot.SourceBalance.String(),
			"attempted_target_balance", snapshot.TargetBalance.String(),
			"source_currency", string(snapshot.SourceCurrency),
			"target_currency", string(snapshot.TargetCurrency),
			"original_error", cause,
			"error", compErr)

		record := reconciliation.NewRecord(
			snapshot.UserID,
			correlationID,
			reference,
			snapshot.SourceCurrency,
			snapshot.SourceBalance,
			snapshot.TargetCurrency,
			snapshot.TargetBalance,
			reasonCompensationFailed,
			compErr.Error(),
		)
		if recErr := m.reconRepo.Create(ctx, record); recErr != nil {
			logger.Error("Failed to persist reconciliation record, log entry is the only trace",
				"user_id", snapshot.UserID.String(),
				"reference", reference,
				"error", recErr)
		}
	} else {
		logger.Info("Compensation restored pre-swap balances",
			"user_id", snapshot.UserID.String(),
			"reference", reference)
	}

	// The cached view may hold either the mutated or the restored state;
	// drop it in both outcomes.
	m.cache.Invalidate(snapshot.UserID)
}
