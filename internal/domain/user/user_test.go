package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/currency-swap-engine/internal/domain/shared"
)

func TestUser_Balance(t *testing.T) {
	u := &User{
		ID: uuid.New(),
		Balances: map[shared.Currency]decimal.Decimal{
			shared.CurrencyBTC: decimal.RequireFromString("0.5"),
		},
	}

	assert.True(t, decimal.RequireFromString("0.5").Equal(u.Balance(shared.CurrencyBTC)))

	// An unfunded currency reads as zero, not as an error
	assert.True(t, decimal.Zero.Equal(u.Balance(shared.CurrencyNGNZ)))
}

func TestUser_Snapshot(t *testing.T) {
	lastUpdate := time.Now().Add(-time.Hour)
	portfolioUpdate := time.Now().Add(-2 * time.Hour)
	u := &User{
		ID: uuid.New(),
		Balances: map[shared.Currency]decimal.Decimal{
			shared.CurrencyBTC:  decimal.RequireFromString("0.5"),
			shared.CurrencyNGNZ: decimal.RequireFromString("1000"),
			shared.CurrencyETH:  decimal.RequireFromString("3"),
		},
		LastBalanceUpdate:    lastUpdate,
		PortfolioLastUpdated: portfolioUpdate,
	}

	snapshot := u.Snapshot(shared.CurrencyBTC, shared.CurrencyNGNZ)

	assert.Equal(t, u.ID, snapshot.UserID)
	assert.Equal(t, shared.CurrencyBTC, snapshot.SourceCurrency)
	assert.True(t, decimal.RequireFromString("0.5").Equal(snapshot.SourceBalance))
	assert.Equal(t, shared.CurrencyNGNZ, snapshot.TargetCurrency)
	assert.True(t, decimal.RequireFromString("1000").Equal(snapshot.TargetBalance))
	assert.Equal(t, lastUpdate, snapshot.LastBalanceUpdate)
	assert.Equal(t, portfolioUpdate, snapshot.PortfolioLastUpdated)

	// Mutating the user afterwards must not change the captured snapshot
	u.Balances[shared.CurrencyBTC] = decimal.RequireFromString("0.4")
	assert.True(t, decimal.RequireFromString("0.5").Equal(snapshot.SourceBalance))
}

func TestUser_SnapshotUnfundedTarget(t *testing.T) {
	u := &User{
		ID: uuid.New(),
		Balances: map[shared.Currency]decimal.Decimal{
			shared.CurrencyBTC: decimal.RequireFromString("0.5"),
		},
	}

	snapshot := u.Snapshot(shared.CurrencyBTC, shared.CurrencyNGNZ)
	assert.True(t, decimal.Zero.Equal(snapshot.TargetBalance))
}
