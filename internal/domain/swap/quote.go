package swap

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/currency-swap-engine/internal/domain/shared"
)

var (
	ErrQuoteSameCurrency    = errors.New("quote source and target currency must differ")
	ErrQuoteInvalidAmount   = errors.New("quote amount must be positive")
	ErrQuoteInvalidReceived = errors.New("quote amount received must be positive")
	ErrQuoteMissingFlow     = errors.New("quote flow is required")
	ErrQuoteMissingType     = errors.New("quote type is required")
)

// Quote is the immutable pricing input for one swap, produced by the external
// pricing collaborator. The engine derives no rates itself; the exchange rate
// recorded on the ledger is AmountReceived / Amount.
type Quote struct {
	SourceCurrency shared.Currency `json:"source_currency"`
	TargetCurrency shared.Currency `json:"target_currency"`
	Amount         decimal.Decimal `json:"amount"`
	AmountReceived decimal.Decimal `json:"amount_received"`
	Flow           shared.SwapFlow `json:"flow"`
	Type           shared.SwapType `json:"type"`
}

// Validate enforces the caller contract before any datastore write. A zero
// amount is a contract violation, not a runtime case: rejecting it here also
// keeps the exchange-rate division safe.
func (q *Quote) Validate() error {
	if !q.SourceCurrency.IsValid() {
		return shared.ErrUnsupportedCurrency
	}
	if !q.TargetCurrency.IsValid() {
		return shared.ErrUnsupportedCurrency
	}
	if q.SourceCurrency == q.TargetCurrency {
		return ErrQuoteSameCurrency
	}
	if !q.Amount.IsPositive() {
		return ErrQuoteInvalidAmount
	}
	if !q.AmountReceived.IsPositive() {
		return ErrQuoteInvalidReceived
	}
	if q.Flow == "" {
		return ErrQuoteMissingFlow
	}
	if q.Type == "" {
		return ErrQuoteMissingType
	}
	return nil
}

// ExchangeRate returns AmountReceived / Amount. Callers must have run
// Validate first; Amount is guaranteed non-zero afterwards.
func (q *Quote) ExchangeRate() decimal.Decimal {
	return q.AmountReceived.Div(q.Amount)
}
