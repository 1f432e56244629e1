package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ksred/portfolio-api/internal/pricing"
	"github.com/ksred/portfolio-api/internal/types"
	"github.com/ksred/portfolio-api/internal/valuation"
	"github.com/ksred/portfolio-api/pkg/response"
)

var ErrAccountNotFound = errors.New("account not found")

// refreshDefaultSymbol is priced when an account holds no instruments,
// so a refresh always writes at least one snapshot.
const refreshDefaultSymbol = "MSFT"

// Service computes account-level summaries from the stored ledgers and
// the price resolution service, and maintains price snapshots.
type Service struct {
	db     *Database
	prices *pricing.Service
}

func NewService(gormDB *gorm.DB, prices *pricing.Service) *Service {
	return &Service{
		db:     NewDatabase(gormDB),
		prices: prices,
	}
}

// GetDB exposes the database wrapper for collaborators such as the
// snapshot processor and the seeder.
func (s *Service) GetDB() *Database {
	return s.db
}

// ListAccounts returns all accounts.
func (s *Service) ListAccounts() ([]types.AccountInfo, error) {
	accounts, err := s.db.GetAccounts()
	if err != nil {
		return nil, err
	}

	infos := make([]types.AccountInfo, len(accounts))
	for i, a := range accounts {
		infos[i] = types.AccountInfo{AccountID: a.AccountID, Name: a.Name}
	}
	return infos, nil
}

// AccountSummary values one account as of now: per-instrument P&L with
// concurrently resolved prices, cash balances, FX impact, and totals in
// both currencies.
func (s *Service) AccountSummary(ctx context.Context, accountID string) (*types.AccountSummaryResponse, error) {
	account, err := s.db.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	logger := log.With().Str("component", "portfolio").Str("account_id", accountID).Logger()

	instruments, err := s.db.GetInstrumentsWithTrades(accountID)
	if err != nil {
		return nil, err
	}
	moves, err := s.db.GetCashMoves(accountID)
	if err != nil {
		return nil, err
	}
	conversionRecords, err := s.db.GetFxConversions(accountID)
	if err != nil {
		return nil, err
	}

	// Parse all stored decimals up front so the valuation core only
	// ever sees well-typed numeric input
	ledgers := make([][]types.Trade, len(instruments))
	for i, instrument := range instruments {
		trades := make([]types.Trade, len(instrument.Trades))
		for j, record := range instrument.Trades {
			if trades[j], err = record.toTrade(); err != nil {
				return nil, err
			}
		}
		ledgers[i] = trades
	}

	conversions := make([]types.FxConversion, len(conversionRecords))
	for i, record := range conversionRecords {
		if conversions[i], err = record.toConversion(); err != nil {
			return nil, err
		}
	}

	fxQuote := s.prices.ResolveUsdIls(ctx)

	// Price each instrument concurrently, then value its ledger. The
	// lookups are independent, so fan out and wait for all of them.
	summaries := make([]types.InstrumentSummary, len(instruments))
	var wg sync.WaitGroup
	for i := range instruments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			quote := s.prices.ResolvePrice(ctx, instruments[i].Symbol)
			result := valuation.CalcPnlForInstrument(ledgers[i], quote.Price)

			summaries[i] = types.InstrumentSummary{
				Symbol:          instruments[i].Symbol,
				QtyHeld:         result.QtyHeld,
				CurrentPriceUSD: quote.Price,
				PriceIsLive:     quote.IsLive,
				RealizedUSD:     result.RealizedUSD,
				UnrealizedUSD:   result.UnrealizedUSD,
				TotalUSD:        result.TotalUSD,
				ValueUSD:        result.QtyHeld.Mul(quote.Price),
			}
		}(i)
	}
	wg.Wait()

	holdings := types.HoldingsTotals{
		ValueUSD:      decimal.Zero,
		RealizedUSD:   decimal.Zero,
		UnrealizedUSD: decimal.Zero,
		TotalUSD:      decimal.Zero,
	}
	for _, summary := range summaries {
		holdings.ValueUSD = holdings.ValueUSD.Add(summary.ValueUSD)
		holdings.RealizedUSD = holdings.RealizedUSD.Add(summary.RealizedUSD)
		holdings.UnrealizedUSD = holdings.UnrealizedUSD.Add(summary.UnrealizedUSD)
		holdings.TotalUSD = holdings.TotalUSD.Add(summary.TotalUSD)
	}

	cash, err := cashBalances(moves, conversions)
	if err != nil {
		return nil, err
	}

	fxImpact := valuation.CalcFxImpactILS(conversions, fxQuote.Price)

	totalValueUSD := cash.USD.Add(holdings.ValueUSD)
	totalValueILS := cash.ILS.Add(totalValueUSD.Mul(fxQuote.Price))

	logger.Info().
		Int("instruments", len(instruments)).
		Str("total_value_usd", totalValueUSD.String()).
		Bool("fx_is_live", fxQuote.IsLive).
		Msg("account summary computed")

	return &types.AccountSummaryResponse{
		Account:     types.AccountInfo{AccountID: account.AccountID, Name: account.Name},
		FxNow:       fxQuote.Price,
		FxIsLive:    fxQuote.IsLive,
		Cash:        cash,
		Holdings:    holdings,
		FxImpactILS: fxImpact,
		Totals: types.AccountTotals{
			TotalValueUSD: totalValueUSD,
			TotalValueILS: totalValueILS,
		},
		Instruments: summaries,
	}, nil
}

// RefreshPrices resolves a current price for each distinct symbol the
// account holds and persists one snapshot per symbol.
func (s *Service) RefreshPrices(ctx context.Context, accountID string) (*types.RefreshPricesResponse, error) {
	account, err := s.db.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	symbols, err := s.db.GetSymbols(accountID)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		symbols = []string{refreshDefaultSymbol}
	}

	results := make([]types.RefreshResult, 0, len(symbols))
	for _, symbol := range symbols {
		quote := s.prices.ResolvePrice(ctx, symbol)

		source := "demo"
		if quote.IsLive {
			source = "live"
		}

		snapshot := &PriceSnapshot{
			SnapshotID: uuid.New().String(),
			AccountID:  accountID,
			Symbol:     symbol,
			PriceUSD:   quote.Price.String(),
			Source:     source,
			CreatedAt:  time.Now(),
		}
		if err := s.db.CreatePriceSnapshot(snapshot); err != nil {
			return nil, err
		}

		results = append(results, types.RefreshResult{
			Symbol:    symbol,
			Price:     quote.Price,
			Source:    source,
			Timestamp: snapshot.CreatedAt,
		})
	}

	return &types.RefreshPricesResponse{
		Results: results,
		Message: fmt.Sprintf("Updated %d price(s)", len(results)),
	}, nil
}

// cashBalances folds deposits, withdrawals, and both legs of every FX
// conversion into per-currency free cash.
func cashBalances(moves []CashMove, conversions []types.FxConversion) (types.CashBalances, error) {
	usd, ils := decimal.Zero, decimal.Zero

	for _, move := range moves {
		amount, err := decimal.NewFromString(move.Amount)
		if err != nil {
			return types.CashBalances{}, fmt.Errorf("cash move %d: invalid amount %q", move.ID, move.Amount)
		}
		if move.Type == "WITHDRAWAL" {
			amount = amount.Neg()
		}
		switch types.Currency(move.Currency) {
		case types.CurrencyUSD:
			usd = usd.Add(amount)
		case types.CurrencyILS:
			ils = ils.Add(amount)
		}
	}

	for _, conv := range conversions {
		if conv.From == types.CurrencyUSD {
			usd = usd.Sub(conv.FromAmount)
		}
		if conv.To == types.CurrencyUSD {
			usd = usd.Add(conv.ToAmount)
		}
		if conv.From == types.CurrencyILS {
			ils = ils.Sub(conv.FromAmount)
		}
		if conv.To == types.CurrencyILS {
			ils = ils.Add(conv.ToAmount)
		}
	}

	return types.CashBalances{USD: usd, ILS: ils}, nil
}

// GinHandlers contains HTTP handlers for account endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

// ListAccountsHandler handles GET requests for the account list
func (h *GinHandlers) ListAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := h.service.ListAccounts()
		response.Handle(c, accounts, err)
	}
}

// AccountSummaryHandler handles GET requests for a full account
// valuation. URL parameter: account_id
func (h *GinHandlers) AccountSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.Param("account_id")
		if accountID == "" {
			response.BadRequest(c, "Account ID is required")
			return
		}

		summary, err := h.service.AccountSummary(c.Request.Context(), accountID)
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(c, "Account not found")
			return
		}
		response.Handle(c, summary, err)
	}
}

// RefreshPricesHandler handles POST requests to re-resolve and persist
// prices for an account's symbols. URL parameter: account_id
func (h *GinHandlers) RefreshPricesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.Param("account_id")
		if accountID == "" {
			response.BadRequest(c, "Account ID is required")
			return
		}

		result, err := h.service.RefreshPrices(c.Request.Context(), accountID)
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(c, "Account not found")
			return
		}
		response.Handle(c, result, err)
	}
}
