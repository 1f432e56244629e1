package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Demo prices returned when no live price is obtainable. Unknown
// symbols fall back to a flat default.
var demoPrices = map[string]decimal.Decimal{
	"AAPL": decimal.NewFromInt(165),
	"MSFT": decimal.NewFromInt(320),
	"BTC":  decimal.NewFromInt(65000),
}

var defaultDemoPrice = decimal.NewFromInt(100)

// DemoPrice returns the static fallback price for a symbol.
func DemoPrice(symbol string) decimal.Decimal {
	if price, ok := demoPrices[strings.ToUpper(symbol)]; ok {
		return price
	}
	return defaultDemoPrice
}

type listingKind int

const (
	listingEquity listingKind = iota
	listingCrypto
)

// listing is the resolved routing for a symbol: either an equity quote
// lookup or a crypto lookup under a provider coin id.
type listing struct {
	kind   listingKind
	coinID string
}

// Symbols with a crypto provider listing. Anything else is treated as
// an equity.
var cryptoListings = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"XRP": "ripple",
	"SOL": "solana",
}

// resolveListing decides once, per symbol, which provider serves it.
func resolveListing(symbol string) listing {
	if coinID, ok := cryptoListings[strings.ToUpper(symbol)]; ok {
		return listing{kind: listingCrypto, coinID: coinID}
	}
	return listing{kind: listingEquity}
}
