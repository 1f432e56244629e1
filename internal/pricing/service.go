package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ksred/portfolio-api/internal/types"
)

const fxCacheKey = "fx:USDILS"

// quoteSource is the upstream equity/forex quote dependency.
type quoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetUsdIls(ctx context.Context) (*Quote, error)
}

// cryptoSource is the upstream crypto price dependency.
type cryptoSource interface {
	GetPrice(ctx context.Context, coinID string) (decimal.Decimal, error)
}

// Service resolves current prices from upstream providers under a
// shared time-bounded cache. Resolution never fails: any upstream
// problem degrades to a demo price (or the configured FX fallback rate)
// with the reason attached and IsLive set to false.
type Service struct {
	quotes     quoteSource
	crypto     cryptoSource
	cache      *Cache[types.PriceQuote]
	fallbackFx decimal.Decimal
}

// NewService creates a price resolution service. The cache is passed in
// rather than owned so callers control its clock and lifetime.
func NewService(quotes quoteSource, crypto cryptoSource, cache *Cache[types.PriceQuote], fallbackFx decimal.Decimal) *Service {
	return &Service{
		quotes:     quotes,
		crypto:     crypto,
		cache:      cache,
		fallbackFx: fallbackFx,
	}
}

// ResolvePrice returns a current USD price for a symbol. Crypto symbols
// with a provider listing are routed to the crypto source, everything
// else to the quote source. Results, live or demo, are cached for the
// TTL so repeated lookups within the window hit upstream once.
func (s *Service) ResolvePrice(ctx context.Context, symbol string) types.PriceQuote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := "quote:" + symbol

	logger := log.With().Str("component", "pricing").Str("symbol", symbol).Logger()

	if quote, ok := s.cache.Get(key); ok {
		logger.Debug().Str("price", quote.Price.String()).Msg("price served from cache")
		return quote
	}

	quote := s.fetchPrice(ctx, symbol)
	if quote.IsLive {
		logger.Info().Str("price", quote.Price.String()).Msg("live price resolved")
	} else {
		logger.Warn().
			Str("price", quote.Price.String()).
			Str("reason", quote.Reason).
			Msg("falling back to demo price")
	}

	s.cache.Set(key, quote)
	return quote
}

// ResolveUsdIls returns the current USD/ILS rate, falling back to the
// configured static rate when the provider cannot serve one.
func (s *Service) ResolveUsdIls(ctx context.Context) types.PriceQuote {
	logger := log.With().Str("component", "pricing").Str("pair", "USD/ILS").Logger()

	if quote, ok := s.cache.Get(fxCacheKey); ok {
		logger.Debug().Str("rate", quote.Price.String()).Msg("rate served from cache")
		return quote
	}

	var quote types.PriceQuote
	upstream, err := s.quotes.GetUsdIls(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("fallback", s.fallbackFx.String()).Msg("falling back to configured rate")
		quote = types.PriceQuote{
			Price:  s.fallbackFx,
			IsLive: false,
			Reason: err.Error(),
		}
	} else {
		logger.Info().Str("rate", upstream.Price.String()).Msg("live rate resolved")
		quote = types.PriceQuote{
			Price:  upstream.Price,
			IsLive: true,
			AsOf:   upstream.AsOf,
		}
	}

	s.cache.Set(fxCacheKey, quote)
	return quote
}

// ClearCache drops every cached price, forcing the next resolution of
// each key back to upstream.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

func (s *Service) fetchPrice(ctx context.Context, symbol string) types.PriceQuote {
	switch lst := resolveListing(symbol); lst.kind {
	case listingCrypto:
		price, err := s.crypto.GetPrice(ctx, lst.coinID)
		if err != nil {
			return demoQuote(symbol, err)
		}
		return types.PriceQuote{Price: price, IsLive: true, AsOf: time.Now()}
	default:
		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			return demoQuote(symbol, err)
		}
		return types.PriceQuote{Price: quote.Price, IsLive: true, AsOf: quote.AsOf}
	}
}

func demoQuote(symbol string, err error) types.PriceQuote {
	return types.PriceQuote{
		Price:  DemoPrice(symbol),
		IsLive: false,
		Reason: err.Error(),
	}
}
