// Package cache provides the process-local balance view cache. The cache is
// injected explicitly wherever balances are mutated; the contract is
// invalidate-on-write: every balance mutation and every compensation must
// invalidate the user's entry, never refresh it in place.
//
// The swap engine itself only ever invalidates. Get and Set exist for the
// balance read API that sits in front of this service, which populates the
// cache read-through; they also keep the interface swappable for a shared
// store such as Redis without touching the write side.
package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// BalanceCache caches per-user balance views keyed by user id
type BalanceCache interface {
	Get(userID uuid.UUID) (map[shared.Currency]decimal.Decimal, bool)
	Set(userID uuid.UUID, balances map[shared.Currency]decimal.Decimal)
	Invalidate(userID uuid.UUID)
}

type entry struct {
	balances  map[shared.Currency]decimal.Decimal
	expiresAt time.Time
}

// MemoryBalanceCache is a TTL'd in-process implementation. Expired entries
// are dropped lazily on read; there is no background sweeper.
type MemoryBalanceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]entry
	now     func() time.Time
}

func NewMemoryBalanceCache(ttl time.Duration) *MemoryBalanceCache {
	return &MemoryBalanceCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]entry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached balances so callers cannot mutate the
// cached view in place.
func (c *MemoryBalanceCache) Get(userID uuid.UUID) (map[shared.Currency]decimal.Decimal, bool) {
	c.mu.RLock()
	e, ok := c.entries[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.Invalidate(userID)
		return nil, false
	}

	balances := make(map[shared.Currency]decimal.Decimal, len(e.balances))
	for currency, amount := range e.balances {
		balances[currency] = amount
	}
	return balances, true
}

func (c *MemoryBalanceCache) Set(userID uuid.UUID, balances map[shared.Currency]decimal.Decimal) {
	copied := make(map[shared.Currency]decimal.Decimal, len(balances))
	for currency, amount := range balances {
		copied[currency] = amount
	}

	c.mu.Lock()
	c.entries[userID] = entry{
		balances:  copied,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *MemoryBalanceCache) Invalidate(userID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}
