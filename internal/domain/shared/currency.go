package shared

import (
	"errors"
	"fmt"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Currency is a code from the closed set of currencies the engine swaps
// between. Balances are keyed by Currency, never by raw strings.
type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
	CurrencyUSDC Currency = "USDC"
	CurrencyNGNZ Currency = "NGNZ"
)

// SupportedCurrencies lists every currency the engine accepts, in a stable order.
var SupportedCurrencies = []Currency{
	CurrencyBTC,
	CurrencyETH,
	CurrencyUSDT,
	CurrencyUSDC,
	CurrencyNGNZ,
}

// ParseCurrency validates a raw code against the supported set
func ParseCurrency(code string) (Currency, error) {
	c := Currency(code)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c, nil
}

// IsValid reports whether the currency belongs to the supported set
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyBTC, CurrencyETH, CurrencyUSDT, CurrencyUSDC, CurrencyNGNZ:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}
