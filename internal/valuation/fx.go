package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/ksred/portfolio-api/internal/types"
)

// CalcFxImpactILS accumulates the ILS gain or loss from holding
// converted currency versus converting at today's rate instead of the
// historical one. fxNow is the current rate in ILS per USD.
//
// Only ILS<->USD conversions contribute; any other pair is skipped.
func CalcFxImpactILS(conversions []types.FxConversion, fxNow decimal.Decimal) decimal.Decimal {
	total := decimal.Zero

	for _, conv := range conversions {
		switch {
		case conv.From == types.CurrencyILS && conv.To == types.CurrencyUSD:
			// The USD proceeds valued at today's rate, against the ILS
			// originally spent plus the fee
			current := conv.ToAmount.Mul(fxNow)
			total = total.Add(current.Sub(conv.FromAmount).Sub(conv.Fee))
		case conv.From == types.CurrencyUSD && conv.To == types.CurrencyILS:
			// The ILS actually received, against what the USD principal
			// would cost today plus the fee
			current := conv.FromAmount.Mul(fxNow)
			total = total.Add(conv.ToAmount.Sub(current).Sub(conv.Fee))
		}
	}

	return total
}
