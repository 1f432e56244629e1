package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountInfo identifies an account in API responses
type AccountInfo struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

// CashBalances holds an account's free cash per currency
type CashBalances struct {
	USD decimal.Decimal `json:"usd"`
	ILS decimal.Decimal `json:"ils"`
}

// HoldingsTotals aggregates valuation results across all instruments
type HoldingsTotals struct {
	ValueUSD      decimal.Decimal `json:"value_usd"`
	RealizedUSD   decimal.Decimal `json:"realized_usd"`
	UnrealizedUSD decimal.Decimal `json:"unrealized_usd"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
}

// AccountTotals is the account value in both currencies at the
// current FX rate
type AccountTotals struct {
	TotalValueUSD decimal.Decimal `json:"total_value_usd"`
	TotalValueILS decimal.Decimal `json:"total_value_ils"`
}

// InstrumentSummary is the per-instrument slice of an account summary
type InstrumentSummary struct {
	Symbol          string          `json:"symbol"`
	QtyHeld         decimal.Decimal `json:"qty_held"`
	CurrentPriceUSD decimal.Decimal `json:"current_price_usd"`
	PriceIsLive     bool            `json:"price_is_live"`
	RealizedUSD     decimal.Decimal `json:"realized_usd"`
	UnrealizedUSD   decimal.Decimal `json:"unrealized_usd"`
	TotalUSD        decimal.Decimal `json:"total_usd"`
	ValueUSD        decimal.Decimal `json:"value_usd"`
}

// AccountSummaryResponse is the full response for the account summary
// endpoint
type AccountSummaryResponse struct {
	Account     AccountInfo         `json:"account"`
	FxNow       decimal.Decimal     `json:"fx_now"`
	FxIsLive    bool                `json:"fx_is_live"`
	Cash        CashBalances        `json:"cash"`
	Holdings    HoldingsTotals      `json:"holdings"`
	FxImpactILS decimal.Decimal     `json:"fx_impact_ils"`
	Totals      AccountTotals       `json:"totals"`
	Instruments []InstrumentSummary `json:"instruments"`
}

// RefreshResult reports one symbol refreshed by the price refresh
// endpoint
type RefreshResult struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
}

// RefreshPricesResponse is the response for the price refresh endpoint
type RefreshPricesResponse struct {
	Results []RefreshResult `json:"results"`
	Message string          `json:"message"`
}
