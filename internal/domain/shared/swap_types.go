package shared

import "fmt"

// SwapType defines the business classification of a swap
type SwapType string

const (
	SwapTypeBuy  SwapType = "BUY"
	SwapTypeSell SwapType = "SELL"
)

// SwapFlow classifies the direction of value relative to fiat
type SwapFlow string

const (
	SwapFlowOnramp  SwapFlow = "ONRAMP"
	SwapFlowOfframp SwapFlow = "OFFRAMP"
)

// LedgerEntryType defines the kind of movement a ledger entry records
type LedgerEntryType string

const (
	LedgerEntryTypeSwap LedgerEntryType = "SWAP"
)

// LedgerEntryStatus defines ledger entry states. Swap legs are only ever
// written once the movement has completed, so COMPLETED is the common case.
type LedgerEntryStatus string

const (
	LedgerEntryStatusCompleted LedgerEntryStatus = "COMPLETED"
	LedgerEntryStatusFailed    LedgerEntryStatus = "FAILED"
)

// SwapLeg identifies one side of a double-entry pair
type SwapLeg string

const (
	SwapLegOut SwapLeg = "OUT"
	SwapLegIn  SwapLeg = "IN"
)

// SwapDirection renders the canonical "<from>_TO_<to>" direction label carried
// in ledger metadata, e.g. "BTC_TO_NGNZ".
func SwapDirection(from, to Currency) string {
	return fmt.Sprintf("%s_TO_%s", from, to)
}
