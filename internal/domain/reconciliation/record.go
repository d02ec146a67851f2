package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// Record captures a compensation failure for manual reconciliation: which
// user, which swap, and the exact balance values the revert attempted to
// write. Operators work this queue by hand; the engine only appends to it.
type Record struct {
	ID             int64           `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	CorrelationID  string          `json:"correlation_id"`
	Reference      string          `json:"reference"`
	SourceCurrency shared.Currency `json:"source_currency"`
	SourceBalance  decimal.Decimal `json:"source_balance"`
	TargetCurrency shared.Currency `json:"target_currency"`
	TargetBalance  decimal.Decimal `json:"target_balance"`
	Reason         string          `json:"reason"`
	Detail         string          `json:"detail"`
	Resolved       bool            `json:"resolved"`
	CreatedAt      time.Time       `json:"created_at"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
}

// NewRecord builds an unresolved record from a failed compensation attempt
func NewRecord(userID uuid.UUID, correlationID, reference string, source shared.Currency, sourceBalance decimal.Decimal, target shared.Currency, targetBalance decimal.Decimal, reason, detail string) *Record {
	return &Record{
		UserID:         userID,
		CorrelationID:  correlationID,
		Reference:      reference,
		SourceCurrency: source,
		SourceBalance:  sourceBalance,
		TargetCurrency: target,
		TargetBalance:  targetBalance,
		Reason:         reason,
		Detail:         detail,
		Resolved:       false,
		CreatedAt:      time.Now(),
	}
}
