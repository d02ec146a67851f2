package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/currency-swap-engine/internal/config"
	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
	"github.com/currency-swap-engine/internal/domain/user"
	"github.com/currency-swap-engine/internal/platform/messaging/producers"
	"github.com/currency-swap-engine/internal/swap_processor/service"
)

// SwapEventHandler handles incoming swap request messages from Kafka
type SwapEventHandler struct {
	swapService     service.SwapService
	resultPublisher producers.MessagePublisher
	dlqPublisher    producers.DeadLetterPublisher
	swapCfg         *config.SwapConfig
	logger          *slog.Logger
}

// NewSwapEventHandler creates a new handler
func NewSwapEventHandler(
	logger *slog.Logger,
	swapService service.SwapService,
	resultPublisher producers.MessagePublisher,
	dlqPublisher producers.DeadLetterPublisher,
	swapCfg *config.SwapConfig,
) *SwapEventHandler {
	return &SwapEventHandler{
		swapService:     swapService,
		resultPublisher: resultPublisher,
		dlqPublisher:    dlqPublisher,
		swapCfg:         swapCfg,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages. Swap execution is not idempotent,
// so Kafka-level redelivery is only allowed for failures that provably wrote
// nothing; everything else is dead-lettered and the offset committed.
func (h *SwapEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.SwapRequest
	if err := json.Unmarshal(value, &request); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal swap request from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.dlqPublisher != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.dlqPublisher.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	if request.CorrelationID == "" {
		request.CorrelationID = uuid.NewString()
	}
	if request.UseTransactions == nil {
		// Message omitted the preference; fall back to the configured default
		preference := h.swapCfg.UseTransactions
		request.UseTransactions = &preference
	}
	logger := h.logger.With("correlation_id", request.CorrelationID)

	logger.Info("Received swap request for processing",
		"user_id", request.UserID.String(),
		"source", string(request.SourceCurrency),
		"target", string(request.TargetCurrency),
		"amount", request.Amount.String(),
	)

	result, err := h.swapService.ExecuteSwap(ctx, &request)
	if err != nil {
		logger.Error("Failed to execute swap",
			"user_id", request.UserID.String(),
			"error", err,
		)

		if h.isRetryable(err) {
			// Nothing was written; Kafka may redeliver safely.
			return fmt.Errorf("executing swap for user %s failed: %w", request.UserID.String(), err)
		}

		// Business rejections and post-mutation failures must not be
		// redelivered: the engine is not idempotent and a replay would
		// double-execute. Dead-letter and commit.
		if h.dlqPublisher != nil {
			reason := fmt.Sprintf("swap not retryable: %s", err.Error())
			if dlqErr := h.dlqPublisher.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
				logger.Error("Failed to publish non-retryable swap to DLQ",
					"dlq_error", dlqErr,
					"original_error", err,
				)
			}
		}
		return nil
	}

	if err := h.resultPublisher.Publish(ctx, result.Reference, result); err != nil {
		// The swap itself committed; losing the result message must not
		// trigger a redelivery of the whole swap.
		logger.Error("Failed to publish swap result",
			"user_id", request.UserID.String(),
			"reference", result.Reference,
			"error", err,
		)
		return nil
	}

	logger.Info("Successfully executed swap",
		"user_id", request.UserID.String(),
		"reference", result.Reference,
	)
	return nil // Success, commit offset
}

// isRetryable reports whether the failure provably happened before any
// balance write. Only those failures may ride Kafka's redelivery.
func (h *SwapEventHandler) isRetryable(err error) bool {
	if errors.Is(err, swap.InsufficientBalanceError{}) {
		return false // business rejection, needs a new quote
	}
	if errors.Is(err, swap.LedgerPersistenceError{}) {
		return false // mutation happened, compensation already ran
	}
	if errors.Is(err, user.ErrUserNotFound{}) {
		return false // nothing was written, but redelivery can never succeed
	}
	for _, quoteErr := range []error{
		swap.ErrQuoteSameCurrency,
		swap.ErrQuoteInvalidAmount,
		swap.ErrQuoteInvalidReceived,
		swap.ErrQuoteMissingFlow,
		swap.ErrQuoteMissingType,
		shared.ErrUnsupportedCurrency,
	} {
		if errors.Is(err, quoteErr) {
			return false // malformed quote will never succeed
		}
	}
	return true
}
