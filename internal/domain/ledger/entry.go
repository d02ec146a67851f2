package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

// Entry represents one leg of a financial movement in the ledger. Entries are
// append-only: once written they are never modified.
type Entry struct {
	UserID        uuid.UUID                `json:"user_id" bson:"user_id"`
	Type          shared.LedgerEntryType   `json:"type" bson:"type"`
	Currency      shared.Currency          `json:"currency" bson:"currency"`
	Amount        decimal.Decimal          `json:"amount" bson:"amount"` // signed; negative on the OUT leg
	Status        shared.LedgerEntryStatus `json:"status" bson:"status"`
	Source        string                   `json:"source" bson:"source"`
	Reference     string                   `json:"reference" bson:"reference"`
	ExternalID    string                   `json:"external_id" bson:"external_id"`
	Narration     string                   `json:"narration" bson:"narration"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	Metadata      Metadata                 `json:"metadata" bson:"metadata"`
	CompletedAt   time.Time                `json:"completed_at" bson:"completed_at"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
}

// Metadata carries the swap context shared by both legs of one pair. Both
// entries of a pair hold identical metadata.
type Metadata struct {
	Direction        string          `json:"direction" bson:"direction"`
	Kind             shared.SwapType `json:"kind" bson:"kind"`
	Flow             shared.SwapFlow `json:"flow" bson:"flow"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate" bson:"exchange_rate"`
	RelatedReference string          `json:"related_reference,omitempty" bson:"related_reference,omitempty"`
	FromCurrency     shared.Currency `json:"from_currency" bson:"from_currency"`
	ToCurrency       shared.Currency `json:"to_currency" bson:"to_currency"`
	FromAmount       decimal.Decimal `json:"from_amount" bson:"from_amount"`
	ToAmount         decimal.Decimal `json:"to_amount" bson:"to_amount"`
	CorrelationID    string          `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
}

// NewSwapReference generates a swap reference of the form
// SWAP_<unix-millis>_<random-suffix>, shared by both legs of one pair.
func NewSwapReference(now time.Time) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		// The PRNG fallback keeps references unique enough for tracing.
		copy(suffix, uuid.New().NodeID())
	}
	return fmt.Sprintf("SWAP_%d_%s", now.UnixMilli(), hex.EncodeToString(suffix))
}

// LegExternalID derives the leg-specific external id from the pair reference
func LegExternalID(reference string, leg shared.SwapLeg) string {
	return fmt.Sprintf("%s_%s", reference, leg)
}
