// Package valuation contains the pure profit-and-loss and FX-impact
// calculations. Functions here perform no I/O and are deterministic
// given their inputs.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/ksred/portfolio-api/internal/types"
)

// CalcPnlForInstrument values a single instrument's trade ledger against
// a current USD price.
//
// The cost basis is one weighted average across the entire buy history,
// not per-lot. Realized P&L exists only once the ledger contains a sell,
// and charges all historical buy fees at that point even for a partial
// sell. Unrealized P&L is recognized only on a positive held quantity;
// a flat or oversold position carries none, though the (negative) held
// quantity is still reported.
func CalcPnlForInstrument(trades []types.Trade, currentPriceUSD decimal.Decimal) types.CalcResult {
	if len(trades) == 0 {
		return types.CalcResult{
			RealizedUSD:   decimal.Zero,
			UnrealizedUSD: decimal.Zero,
			TotalUSD:      decimal.Zero,
			QtyHeld:       decimal.Zero,
		}
	}

	var (
		totalBought  decimal.Decimal
		totalSold    decimal.Decimal
		buyValue     decimal.Decimal
		sellProceeds decimal.Decimal
		buyFees      decimal.Decimal
		sellFees     decimal.Decimal
		sellCount    int
	)

	for _, t := range trades {
		switch t.Side {
		case types.SideBuy:
			totalBought = totalBought.Add(t.Qty)
			buyValue = buyValue.Add(t.Qty.Mul(t.Price))
			buyFees = buyFees.Add(t.Fee)
		case types.SideSell:
			totalSold = totalSold.Add(t.Qty)
			sellProceeds = sellProceeds.Add(t.Qty.Mul(t.Price))
			sellFees = sellFees.Add(t.Fee)
			sellCount++
		}
	}

	qtyHeld := totalBought.Sub(totalSold)

	// Weighted average buy price, defined only when something was bought
	buyPrice := decimal.Zero
	if totalBought.IsPositive() {
		buyPrice = buyValue.Div(totalBought)
	}

	realized := decimal.Zero
	if sellCount > 0 {
		realized = sellProceeds.
			Sub(totalSold.Mul(buyPrice)).
			Sub(sellFees).
			Sub(buyFees)
	}

	unrealized := decimal.Zero
	if qtyHeld.IsPositive() {
		unrealized = currentPriceUSD.Sub(buyPrice).Mul(qtyHeld)
	}

	return types.CalcResult{
		RealizedUSD:   realized,
		UnrealizedUSD: unrealized,
		TotalUSD:      realized.Add(unrealized),
		QtyHeld:       qtyHeld,
	}
}
