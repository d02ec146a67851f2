package components

import (
	"context"
	"errors"
	"strings"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/currency-swap-engine/internal/domain/ledger"
	"github.com/currency-swap-engine/internal/domain/shared"
	"github.com/currency-swap-engine/internal/domain/swap"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreatePair(ctx context.Context, entries []*ledger.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByReference(ctx context.Context, reference string) ([]*ledger.Entry, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func sellQuote() *swap.Quote {
	return &swap.Quote{
		SourceCurrency: shared.CurrencyBTC,
		TargetCurrency: shared.CurrencyNGNZ,
		Amount:         decimal.RequireFromString("0.1"),
		AmountReceived: decimal.RequireFromString("9000000"),
		Flow:           shared.SwapFlowOfframp,
		Type:           shared.SwapTypeSell,
	}
}

func TestLedgerRecorder_RecordSwap(t *testing.T) {
	repo := &MockLedgerRepository{}
	recorder := NewLedgerRecorder(repo, "swap_engine", slog.Default())

	userID := uuid.New()
	correlationID := uuid.NewString()
	quote := sellQuote()

	repo.On("CreatePair", mock.Anything, mock.Anything).Return(nil)

	entries, err := recorder.RecordSwap(context.Background(), userID, quote, correlationID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	out, in := entries[0], entries[1]

	// One shared reference, distinct per-leg external IDs
	assert.Equal(t, out.Reference, in.Reference)
	assert.True(t, strings.HasPrefix(out.Reference, "SWAP_"))
	assert.Equal(t, out.Reference+"_OUT", out.ExternalID)
	assert.Equal(t, in.Reference+"_IN", in.ExternalID)

	// Debit leg negative in the source currency, credit leg positive in the target
	assert.Equal(t, shared.CurrencyBTC, out.Currency)
	assert.True(t, decimal.RequireFromString("-0.1").Equal(out.Amount))
	assert.Equal(t, shared.CurrencyNGNZ, in.Currency)
	assert.True(t, decimal.RequireFromString("9000000").Equal(in.Amount))

	for _, e := range entries {
		assert.Equal(t, userID, e.UserID)
		assert.Equal(t, shared.LedgerEntryTypeSwap, e.Type)
		assert.Equal(t, shared.LedgerEntryStatusCompleted, e.Status)
		assert.Equal(t, "swap_engine", e.Source)
		assert.Equal(t, correlationID, e.CorrelationID)
		assert.Equal(t, "Swap 0.1 BTC to 9000000 NGNZ", e.Narration)
	}

	// Both legs carry the identical metadata document
	assert.Equal(t, out.Metadata, in.Metadata)
	assert.Equal(t, "BTC_TO_NGNZ", out.Metadata.Direction)
	assert.Equal(t, shared.SwapTypeSell, out.Metadata.Kind)
	assert.Equal(t, shared.SwapFlowOfframp, out.Metadata.Flow)
	assert.True(t, decimal.RequireFromString("90000000").Equal(out.Metadata.ExchangeRate))
	assert.Equal(t, shared.CurrencyBTC, out.Metadata.FromCurrency)
	assert.Equal(t, shared.CurrencyNGNZ, out.Metadata.ToCurrency)

	repo.AssertNumberOfCalls(t, "CreatePair", 1)
}

func TestLedgerRecorder_DistinctReferencesAcrossCalls(t *testing.T) {
	repo := &MockLedgerRepository{}
	recorder := NewLedgerRecorder(repo, "swap_engine", slog.Default())
	repo.On("CreatePair", mock.Anything, mock.Anything).Return(nil)

	userID := uuid.New()
	first, err := recorder.RecordSwap(context.Background(), userID, sellQuote(), "corr-1")
	require.NoError(t, err)
	second, err := recorder.RecordSwap(context.Background(), userID, sellQuote(), "corr-1")
	require.NoError(t, err)

	assert.NotEqual(t, first[0].Reference, second[0].Reference)
}

func TestLedgerRecorder_PersistFailureReturnsPair(t *testing.T) {
	repo := &MockLedgerRepository{}
	recorder := NewLedgerRecorder(repo, "swap_engine", slog.Default())

	storeErr := errors.New("insert failed")
	repo.On("CreatePair", mock.Anything, mock.Anything).Return(storeErr)

	entries, err := recorder.RecordSwap(context.Background(), uuid.New(), sellQuote(), "corr-2")
	require.Error(t, err)
	assert.Equal(t, storeErr, err)

	// The constructed pair still comes back so callers can name the reference
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].Reference)
}
