package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ksred/portfolio-api/internal/types"
)

func conversion(from types.Currency, fromAmount string, to types.Currency, toAmount, rate, fee string, day int) types.FxConversion {
	return types.FxConversion{
		From:       from,
		FromAmount: d(fromAmount),
		To:         to,
		ToAmount:   d(toAmount),
		Rate:       d(rate),
		Fee:        d(fee),
		Date:       time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalcFxImpactILS_IlsToUsdConversions(t *testing.T) {
	conversions := []types.FxConversion{
		conversion(types.CurrencyILS, "7000", types.CurrencyUSD, "2000", "3.50", "0", 3),
		conversion(types.CurrencyILS, "3750", types.CurrencyUSD, "1000", "3.75", "0", 5),
	}

	impact := CalcFxImpactILS(conversions, d("3.70"))

	// 2000*3.70 - 7000 = 400, 1000*3.70 - 3750 = -50
	assert.Equal(t, "350", impact.String())
}

func TestCalcFxImpactILS_UsdToIls(t *testing.T) {
	conversions := []types.FxConversion{
		conversion(types.CurrencyUSD, "1000", types.CurrencyILS, "3800", "3.80", "10", 1),
	}

	impact := CalcFxImpactILS(conversions, d("3.70"))

	// 3800 - 1000*3.70 - 10 = 90
	assert.Equal(t, "90", impact.String())
}

func TestCalcFxImpactILS_EmptyLedger(t *testing.T) {
	impact := CalcFxImpactILS(nil, d("3.70"))
	assert.True(t, impact.IsZero())
}

func TestCalcFxImpactILS_IgnoresOtherPairs(t *testing.T) {
	conversions := []types.FxConversion{
		conversion(types.Currency("EUR"), "1000", types.CurrencyUSD, "1100", "1.10", "5", 1),
		conversion(types.CurrencyUSD, "500", types.Currency("GBP"), "400", "0.80", "5", 2),
	}

	impact := CalcFxImpactILS(conversions, d("3.70"))
	assert.True(t, impact.IsZero())
}

func TestCalcFxImpactILS_FeeReducesImpact(t *testing.T) {
	withFee := []types.FxConversion{
		conversion(types.CurrencyILS, "7000", types.CurrencyUSD, "2000", "3.50", "25", 3),
	}
	withoutFee := []types.FxConversion{
		conversion(types.CurrencyILS, "7000", types.CurrencyUSD, "2000", "3.50", "0", 3),
	}

	a := CalcFxImpactILS(withFee, d("3.70"))
	b := CalcFxImpactILS(withoutFee, d("3.70"))

	assert.Equal(t, "25", b.Sub(a).String())
}
