package swap

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/currency-swap-engine/internal/domain/shared"
)

func TestInsufficientBalanceError_Is(t *testing.T) {
	userID := uuid.New()
	err := InsufficientBalanceError{
		UserID:    userID,
		Currency:  shared.CurrencyBTC,
		Requested: decimal.RequireFromString("0.1"),
	}

	// Zero-value target matches any instance
	assert.True(t, errors.Is(err, InsufficientBalanceError{}))
	assert.True(t, errors.Is(err, InsufficientBalanceError{UserID: userID, Currency: shared.CurrencyBTC}))
	assert.False(t, errors.Is(err, InsufficientBalanceError{UserID: uuid.New()}))

	wrapped := fmt.Errorf("executing swap: %w", err)
	assert.True(t, errors.Is(wrapped, InsufficientBalanceError{}))

	assert.Contains(t, err.Error(), "insufficient BTC balance")
	assert.Contains(t, err.Error(), userID.String())
}

func TestTransactionUnsupportedError(t *testing.T) {
	cause := errors.New("Transaction numbers are only allowed on a replica set member or mongos")
	err := TransactionUnsupportedError{Cause: cause}

	assert.True(t, errors.Is(err, TransactionUnsupportedError{}))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "does not support transactions")
}

func TestLedgerPersistenceError(t *testing.T) {
	cause := errors.New("insert failed")
	err := LedgerPersistenceError{Reference: "SWAP_1_abc", Cause: cause}

	assert.True(t, errors.Is(err, LedgerPersistenceError{}))
	assert.True(t, errors.Is(err, LedgerPersistenceError{Reference: "SWAP_1_abc"}))
	assert.False(t, errors.Is(err, LedgerPersistenceError{Reference: "SWAP_2_def"}))

	// The original cause stays reachable through the chain
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "SWAP_1_abc")
}

func TestCompensationFailureError(t *testing.T) {
	userID := uuid.New()
	cause := errors.New("write conflict")
	err := CompensationFailureError{UserID: userID, CorrelationID: "corr-1", Cause: cause}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), userID.String())
	assert.Contains(t, err.Error(), "corr-1")
}
