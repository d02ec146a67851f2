package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SwapRequest defines a Kafka message asking the engine to execute one swap.
// The quote fields are produced and priced upstream; the engine trusts their
// numeric correctness but still validates presence and positivity.
type SwapRequest struct {
	UserID         uuid.UUID       `json:"user_id"`
	SourceCurrency Currency        `json:"source_currency"`
	TargetCurrency Currency        `json:"target_currency"`
	Amount         decimal.Decimal `json:"amount"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Flow           SwapFlow        `json:"flow"`
	Type           SwapType        `json:"type"`
	CorrelationID  string          `json:"correlation_id"`
	// UseTransactions is a pointer so a message that omits the field can be
	// told apart from one that explicitly set false; absent means "use the
	// configured default", resolved at the ingress boundary.
	UseTransactions *bool     `json:"use_transactions,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// TransactionsEnabled reports the request's transaction-mode preference.
// An unresolved (nil) preference reads as true so direct callers still get
// the safer transactional path when the deployment supports it.
func (r *SwapRequest) TransactionsEnabled() bool {
	if r.UseTransactions == nil {
		return true
	}
	return *r.UseTransactions
}
