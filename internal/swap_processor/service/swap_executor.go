package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/currency-swap-engine/internal/cache"
	"github.com/currency-swap-engine/internal/domain/ledger"
	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/domain/user"
	"github.com/currency-swap-engine/internal/platform/persistence"
)

// SessionStarter opens transactional sessions. Satisfied by
// *persistence.MongoDB; split out so executor tests run without a live
// deployment.
type SessionStarter interface {
	StartSession() (mongo.Session, error)
}

type SwapExecutorImpl struct {
	sessions    SessionStarter
	userRepo    user.Repository
	recorder    LedgerRecorder
	compensator CompensationManager
	detector    TransactionCapabilityDetector
	cache       cache.BalanceCache
	logger      *slog.Logger
}

var _ SessionStarter = (*persistence.MongoDB)(nil)

func NewSwapExecutor(
	sessions SessionStarter,
	userRepo user.Repository,
	recorder LedgerRecorder,
	compensator CompensationManager,
	detector TransactionCapabilityDetector,
	balanceCache cache.BalanceCache,
	logger *slog.Logger,
) SwapService {
	return &SwapExecutorImpl{
		sessions:    sessions,
		userRepo:    userRepo,
		recorder:    recorder,
		compensator: compensator,
		detector:    detector,
		cache:       balanceCache,
		logger:      logger,
	}
}

// ExecuteSwap debits the source currency, credits the target currency, and
// writes the double-entry ledger pair, transactionally when the deployment
// allows it and with best-effort compensation when it doesn't.
//
// The only automatic retry is the bounded downgrade below: when the first
// attempt ran transactionally and the deployment signaled that transactions
// are unsupported, the whole operation runs exactly once more with
// transactions forced off. Two sequential attempts, never recursion. Beyond
// that the operation is NOT safe for callers to retry with the same quote
// once a mutation happened; the correlation ID traces logs, it deduplicates
// nothing.
func (s *SwapExecutorImpl) ExecuteSwap(ctx context.Context, request *shared.SwapRequest) (*swap.Result, error) {
	start := time.Now()

	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	quote := &swap.Quote{
		SourceCurrency: request.SourceCurrency,
		TargetCurrency: request.TargetCurrency,
		Amount:         request.Amount,
		AmountReceived: request.AmountReceived,
		Flow:           request.Flow,
		Type:           request.Type,
	}
	if err := quote.Validate(); err != nil {
		logger.Error("Rejected swap request with invalid quote",
			"user_id", request.UserID.String(),
			"source", string(quote.SourceCurrency),
			"target", string(quote.TargetCurrency),
			"amount", quote.Amount.String(),
			"amount_received", quote.AmountReceived.String(),
			"error", err)
		return nil, fmt.Errorf("invalid quote: %w", err)
	}

	transactional := request.TransactionsEnabled() && s.detector.SupportsTransactions(ctx)
	logger.Info("Executing swap",
		"user_id", request.UserID.String(),
		"source", string(quote.SourceCurrency),
		"target", string(quote.TargetCurrency),
		"amount", quote.Amount.String(),
		"amount_received", quote.AmountReceived.String(),
		"transactional", transactional)

	result, err := s.attempt(ctx, logger, request, quote, transactional, start)
	if err != nil && transactional && errors.Is(err, swap.TransactionUnsupportedError{}) {
		// The detector said yes but the deployment disagreed. Downgrade once.
		logger.Warn("Deployment rejected transactions, retrying once without them",
			"user_id", request.UserID.String(),
			"error", err)
		result, err = s.attempt(ctx, logger, request, quote, false, start)
	}

	if err != nil && !errors.Is(err, swap.InsufficientBalanceError{}) {
		logger.Error("Swap failed",
			"user_id", request.UserID.String(),
			"source", string(quote.SourceCurrency),
			"target", string(quote.TargetCurrency),
			"amount", quote.Amount.String(),
			"amount_received", quote.AmountReceived.String(),
			"flow", string(quote.Flow),
			"type", string(quote.Type),
			"error", err)
	}

	return result, err
}

// attempt runs one full execution pass in the requested mode.
func (s *SwapExecutorImpl) attempt(ctx context.Context, logger *slog.Logger, request *shared.SwapRequest, quote *swap.Quote, transactional bool, start time.Time) (*swap.Result, error) {
	// Pre-swap snapshot: the exact state compensation would restore if the
	// non-transactional path fails after a partial write.
	before, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}
	snapshot := before.Snapshot(quote.SourceCurrency, quote.TargetCurrency)

	var (
		after   *user.User
		entries []*ledger.Entry
	)

	if transactional {
		session, err := s.sessions.StartSession()
		if err != nil {
			// Only the deployment's "transactions not supported" signal may
			// trigger the downgrade retry; any other session failure
			// surfaces as-is.
			if isTransactionUnsupported(err) {
				return nil, swap.TransactionUnsupportedError{Cause: err}
			}
			return nil, err
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var txErr error
			after, txErr = s.userRepo.ApplySwap(sessCtx, request.UserID,
				quote.SourceCurrency, quote.Amount,
				quote.TargetCurrency, quote.AmountReceived)
			if txErr != nil {
				return nil, txErr
			}
			s.cache.Invalidate(request.UserID)

			entries, txErr = s.recorder.RecordSwap(sessCtx, request.UserID, quote, request.CorrelationID)
			if txErr != nil {
				return nil, txErr
			}
			return nil, nil
		})
		if err != nil {
			// Abort undid the balance mutation; no manual compensation here.
			if isTransactionUnsupported(err) {
				return nil, swap.TransactionUnsupportedError{Cause: err}
			}
			return nil, err
		}
	} else {
		after, err = s.userRepo.ApplySwap(ctx, request.UserID,
			quote.SourceCurrency, quote.Amount,
			quote.TargetCurrency, quote.AmountReceived)
		if err != nil {
			// The guard rejected before any write; nothing to clean up.
			return nil, err
		}
		s.cache.Invalidate(request.UserID)

		entries, err = s.recorder.RecordSwap(ctx, request.UserID, quote, request.CorrelationID)
		if err != nil {
			// The balance mutation already committed without a transaction
			// around it. Best-effort revert, then surface the original
			// failure - never the compensation outcome.
			reference := ""
			if len(entries) > 0 {
				reference = entries[0].Reference
			}
			s.compensator.Revert(ctx, snapshot, reference, request.CorrelationID, err)
			return nil, swap.LedgerPersistenceError{Reference: reference, Cause: err}
		}
	}

	now := time.Now().UTC()
	result := &swap.Result{
		Success:            true,
		UserID:             request.UserID,
		Reference:          entries[0].Reference,
		SourceCurrency:     quote.SourceCurrency,
		TargetCurrency:     quote.TargetCurrency,
		Amount:             quote.Amount,
		AmountReceived:     quote.AmountReceived,
		Flow:               quote.Flow,
		Type:               quote.Type,
		BalancesBefore:     swappedBalances(before, quote),
		BalancesAfter:      swappedBalances(after, quote),
		Transactional:      transactional,
		ProcessingDuration: time.Since(start),
		CorrelationID:      request.CorrelationID,
		CompletedAt:        now,
	}

	logger.Info("Swap completed",
		"user_id", request.UserID.String(),
		"reference", result.Reference,
		"transactional", transactional,
		"duration_ms", result.ProcessingDuration.Milliseconds())

	return result, nil
}

// swappedBalances extracts the two affected balances from a user state
func swappedBalances(u *user.User, quote *swap.Quote) map[shared.Currency]decimal.Decimal {
	return map[shared.Currency]decimal.Decimal{
		quote.SourceCurrency: u.Balance(quote.SourceCurrency),
		quote.TargetCurrency: u.Balance(quote.TargetCurrency),
	}
}

// isTransactionUnsupported distinguishes the deployment's "transactions not
// supported" signal from every other failure. Only this signal triggers the
// downgrade retry.
func isTransactionUnsupported(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, swap.TransactionUnsupportedError{}) {
		return true
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 20 { // IllegalOperation
		return strings.Contains(cmdErr.Message, "ransaction")
	}

	return strings.Contains(err.Error(), "Transaction numbers are only allowed on a replica set")
}
