package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ksred/portfolio-api/internal/types"
)

// Money columns are stored as fixed-point decimal strings and parsed at
// the load boundary, so binary floats never enter the valuation core.

type Account struct {
	gorm.Model `json:"-"`
	AccountID  string `gorm:"uniqueIndex" json:"account_id"`
	Name       string `gorm:"uniqueIndex" json:"name"`
}

type Instrument struct {
	gorm.Model   `json:"-"`
	InstrumentID string        `gorm:"uniqueIndex" json:"instrument_id"`
	AccountID    string        `gorm:"index:idx_account_symbol,unique" json:"account_id"`
	Symbol       string        `gorm:"index:idx_account_symbol,unique" json:"symbol"`
	AssetType    string        `json:"asset_type"` // equity or crypto
	Currency     string        `json:"currency"`   // quote currency, USD
	Trades       []TradeRecord `gorm:"foreignKey:InstrumentID;references:InstrumentID" json:"trades,omitempty"`
}

type TradeRecord struct {
	gorm.Model   `json:"-"`
	InstrumentID string    `gorm:"index" json:"instrument_id"`
	Side         string    `json:"side"` // BUY or SELL
	Qty          string    `json:"qty"`
	Price        string    `json:"price"`
	Fee          string    `json:"fee"`
	Date         time.Time `json:"date"`
}

type CashMove struct {
	gorm.Model `json:"-"`
	AccountID  string    `gorm:"index" json:"account_id"`
	Type       string    `json:"type"` // DEPOSIT or WITHDRAWAL
	Currency   string    `json:"currency"`
	Amount     string    `json:"amount"`
	Date       time.Time `json:"date"`
}

type FxConversionRecord struct {
	gorm.Model   `json:"-"`
	AccountID    string    `gorm:"index" json:"account_id"`
	FromCurrency string    `json:"from_currency"`
	FromAmount   string    `json:"from_amount"`
	ToCurrency   string    `json:"to_currency"`
	ToAmount     string    `json:"to_amount"`
	Rate         string    `json:"rate"`
	Fee          string    `json:"fee"`
	Date         time.Time `json:"date"`
}

// PriceSnapshot is an audit record of a resolved price: which account
// asked, what came back, and whether it was live or demo.
type PriceSnapshot struct {
	gorm.Model `json:"-"`
	SnapshotID string    `gorm:"uniqueIndex" json:"snapshot_id"`
	AccountID  string    `gorm:"index" json:"account_id"`
	Symbol     string    `json:"symbol"`
	PriceUSD   string    `json:"price_usd"`
	Source     string    `json:"source"` // live or demo
	CreatedAt  time.Time `json:"created_at"`
}

// toTrade parses a stored trade row into the valuation core's type.
func (r TradeRecord) toTrade() (types.Trade, error) {
	qty, err := decimal.NewFromString(r.Qty)
	if err != nil {
		return types.Trade{}, fmt.Errorf("trade %d: invalid qty %q", r.ID, r.Qty)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return types.Trade{}, fmt.Errorf("trade %d: invalid price %q", r.ID, r.Price)
	}
	fee := decimal.Zero
	if r.Fee != "" {
		if fee, err = decimal.NewFromString(r.Fee); err != nil {
			return types.Trade{}, fmt.Errorf("trade %d: invalid fee %q", r.ID, r.Fee)
		}
	}
	return types.Trade{
		Side:  types.Side(r.Side),
		Qty:   qty,
		Price: price,
		Fee:   fee,
		Date:  r.Date,
	}, nil
}

// toConversion parses a stored FX conversion row into the valuation
// core's type.
func (r FxConversionRecord) toConversion() (types.FxConversion, error) {
	fromAmount, err := decimal.NewFromString(r.FromAmount)
	if err != nil {
		return types.FxConversion{}, fmt.Errorf("fx conversion %d: invalid from_amount %q", r.ID, r.FromAmount)
	}
	toAmount, err := decimal.NewFromString(r.ToAmount)
	if err != nil {
		return types.FxConversion{}, fmt.Errorf("fx conversion %d: invalid to_amount %q", r.ID, r.ToAmount)
	}
	rate, err := decimal.NewFromString(r.Rate)
	if err != nil {
		return types.FxConversion{}, fmt.Errorf("fx conversion %d: invalid rate %q", r.ID, r.Rate)
	}
	fee := decimal.Zero
	if r.Fee != "" {
		if fee, err = decimal.NewFromString(r.Fee); err != nil {
			return types.FxConversion{}, fmt.Errorf("fx conversion %d: invalid fee %q", r.ID, r.Fee)
		}
	}
	return types.FxConversion{
		From:       types.Currency(r.FromCurrency),
		FromAmount: fromAmount,
		To:         types.Currency(r.ToCurrency),
		ToAmount:   toAmount,
		Rate:       rate,
		Fee:        fee,
		Date:       r.Date,
	}, nil
}
