package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/currency-swap-engine/internal/domain/ledger"
	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

// LedgerRecorderImpl implements the LedgerRecorder interface
type LedgerRecorderImpl struct {
	ledgerRepo ledger.Repository
	source     string
	logger     *slog.Logger
}

// NewLedgerRecorder creates a new LedgerRecorderImpl. The source label is
// stamped on every entry it writes.
func NewLedgerRecorder(ledgerRepo ledger.Repository, source string, logger *slog.Logger) service.LedgerRecorder {
	return &LedgerRecorderImpl{
		ledgerRepo: ledgerRepo,
		source:     source,
		logger:     logger,
	}
}

// RecordSwap builds the OUT/IN pair under one generated reference and
// persists both legs as a group. Both entries carry identical metadata; the
// amounts are -quote.Amount in the source currency and +quote.AmountReceived
// in the target currency. Entries are immutable once written.
//
// On persistence failure the constructed pair is still returned alongside the
// error so the caller can name the reference in its own error context.
func (r *LedgerRecorderImpl) RecordSwap(ctx context.Context, userID uuid.UUID, quote *swap.Quote, correlationID string) ([]*ledger.Entry, error) {
	now := time.Now().UTC()
	reference := ledger.NewSwapReference(now)

	metadata := ledger.Metadata{
		Direction:     shared.SwapDirection(quote.SourceCurrency, quote.TargetCurrency),
		Kind:          quote.Type,
		Flow:          quote.Flow,
		ExchangeRate:  quote.ExchangeRate(),
		FromCurrency:  quote.SourceCurrency,
		ToCurrency:    quote.TargetCurrency,
		FromAmount:    quote.Amount,
		ToAmount:      quote.AmountReceived,
		CorrelationID: correlationID,
	}

	out := &ledger.Entry{
		UserID:        userID,
		Type:          shared.LedgerEntryTypeSwap,
		Currency:      quote.SourceCurrency,
		Amount:        quote.Amount.Neg(),
		Status:        shared.LedgerEntryStatusCompleted,
		Source:        r.source,
		Reference:     reference,
		ExternalID:    ledger.LegExternalID(reference, shared.SwapLegOut),
		Narration:     swapNarration(quote),
		CorrelationID: correlationID,
		Metadata:      metadata,
		CompletedAt:   now,
		CreatedAt:     now,
	}

	in := &ledger.Entry{
		UserID:        userID,
		Type:          shared.LedgerEntryTypeSwap,
		Currency:      quote.TargetCurrency,
		Amount:        quote.AmountReceived,
		Status:        shared.LedgerEntryStatusCompleted,
		Source:        r.source,
		Reference:     reference,
		ExternalID:    ledger.LegExternalID(reference, shared.SwapLegIn),
		Narration:     swapNarration(quote),
		CorrelationID: correlationID,
		Metadata:      metadata,
		CompletedAt:   now,
		CreatedAt:     now,
	}

	entries := []*ledger.Entry{out, in}

	if err := r.ledgerRepo.CreatePair(ctx, entries); err != nil {
		r.logger.Error("Failed to persist ledger pair",
			"user_id", userID.String(),
			"reference", reference,
			"error", err)
		return entries, err
	}

	r.logger.Info("Recorded ledger pair",
		"user_id", userID.String(),
		"reference", reference,
		"direction", metadata.Direction)

	return entries, nil
}

func swapNarration(quote *swap.Quote) string {
	return fmt.Sprintf("Swap %s %s to %s %s",
		quote.Amount, quote.SourceCurrency, quote.AmountReceived, quote.TargetCurrency)
}
