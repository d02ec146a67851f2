package swap

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// Result is the outcome of one executed swap, consumed by the external
// orchestration layer. Before/after balances cover both legs' currencies and
// are sufficient for manual reconciliation on their own.
type Result struct {
	Success            bool                                `json:"success"`
	UserID             uuid.UUID                           `json:"user_id"`
	Reference          string                              `json:"reference"`
	SourceCurrency     shared.Currency                     `json:"source_currency"`
	TargetCurrency     shared.Currency                     `json:"target_currency"`
	Amount             decimal.Decimal                     `json:"amount"`
	AmountReceived     decimal.Decimal                     `json:"amount_received"`
	Flow               shared.SwapFlow                     `json:"flow"`
	Type               shared.SwapType                     `json:"type"`
	BalancesBefore     map[shared.Currency]decimal.Decimal `json:"balances_before"`
	BalancesAfter      map[shared.Currency]decimal.Decimal `json:"balances_after"`
	Transactional      bool                                `json:"transactional"`
	ProcessingDuration time.Duration                       `json:"processing_duration_ns"`
	CorrelationID      string                              `json:"correlation_id"`
	CompletedAt        time.Time                           `json:"completed_at"`
}
