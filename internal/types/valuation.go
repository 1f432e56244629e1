package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Currency is the closed set of currencies handled by the FX ledger.
type Currency string

const (
	CurrencyILS Currency = "ILS"
	CurrencyUSD Currency = "USD"
)

// AssetType tags an instrument as an equity or a crypto asset.
type AssetType string

const (
	AssetEquity AssetType = "equity"
	AssetCrypto AssetType = "crypto"
)

// Trade is an immutable ledger entry for one instrument.
// Prices and fees are USD amounts.
type Trade struct {
	Side  Side            `json:"side"`
	Qty   decimal.Decimal `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Fee   decimal.Decimal `json:"fee"`
	Date  time.Time       `json:"date"`
}

// FxConversion is an immutable ledger entry for a currency exchange
// on an account. Only ILS and USD legs are meaningful to the valuation
// core; other pairs are carried but contribute nothing.
type FxConversion struct {
	From       Currency        `json:"from_currency"`
	FromAmount decimal.Decimal `json:"from_amount"`
	To         Currency        `json:"to_currency"`
	ToAmount   decimal.Decimal `json:"to_amount"`
	Rate       decimal.Decimal `json:"rate"`
	Fee        decimal.Decimal `json:"fee"`
	Date       time.Time       `json:"date"`
}

// CalcResult is the outcome of valuing a single instrument's trade
// ledger against a current price. It is derived, never stored.
type CalcResult struct {
	RealizedUSD   decimal.Decimal `json:"realized_usd"`
	UnrealizedUSD decimal.Decimal `json:"unrealized_usd"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	QtyHeld       decimal.Decimal `json:"qty_held"`
}

// PriceQuote is a resolved current price with its provenance.
// IsLive is false when the price came from the demo table or the
// configured fallback rate, in which case Reason says why.
type PriceQuote struct {
	Price  decimal.Decimal `json:"price"`
	IsLive bool            `json:"is_live"`
	Reason string          `json:"reason,omitempty"`
	AsOf   time.Time       `json:"as_of,omitempty"`
}
