package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// User holds one balance per supported currency plus the two portfolio
// timestamps. The record pre-exists swap execution and is mutated in place;
// balances never go negative because every debit runs through the datastore's
// conditional atomic update.
type User struct {
	ID                   uuid.UUID                           `json:"id" bson:"_id"`
	Balances             map[shared.Currency]decimal.Decimal `json:"balances" bson:"balances"`
	LastBalanceUpdate    time.Time                           `json:"last_balance_update" bson:"last_balance_update"`
	PortfolioLastUpdated time.Time                           `json:"portfolio_last_updated" bson:"portfolio_last_updated"`
}

// Balance returns the user's balance for a currency, zero when the currency
// has never been funded.
func (u *User) Balance(c shared.Currency) decimal.Decimal {
	if b, ok := u.Balances[c]; ok {
		return b
	}
	return decimal.Zero
}

// Snapshot captures the pre-mutation state needed for an exact compensation:
// both affected balances and both timestamps.
func (u *User) Snapshot(source, target shared.Currency) *BalanceSnapshot {
	return &BalanceSnapshot{
		UserID:               u.ID,
		SourceCurrency:       source,
		SourceBalance:        u.Balance(source),
		TargetCurrency:       target,
		TargetBalance:        u.Balance(target),
		LastBalanceUpdate:    u.LastBalanceUpdate,
		PortfolioLastUpdated: u.PortfolioLastUpdated,
	}
}

// BalanceSnapshot is the exact pre-swap state of the two balances touched by
// a swap. Compensation overwrites with these values directly rather than
// re-incrementing, which restores the snapshot but can clobber a concurrent
// legitimate write committed in between; see the reconciliation store.
type BalanceSnapshot struct {
	UserID               uuid.UUID
	SourceCurrency       shared.Currency
	SourceBalance        decimal.Decimal
	TargetCurrency       shared.Currency
	TargetBalance        decimal.Decimal
	LastBalanceUpdate    time.Time
	PortfolioLastUpdated time.Time
}
