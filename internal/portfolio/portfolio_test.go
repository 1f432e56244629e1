package portfolio

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/portfolio-api/internal/pricing"
	"github.com/ksred/portfolio-api/internal/types"
)

type fakeQuotes struct {
	price decimal.Decimal
	fx    decimal.Decimal
	err   error
}

func (f *fakeQuotes) GetQuote(_ context.Context, _ string) (*pricing.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pricing.Quote{Price: f.price}, nil
}

func (f *fakeQuotes) GetUsdIls(_ context.Context) (*pricing.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &pricing.Quote{Price: f.fx}, nil
}

type fakeCrypto struct {
	price decimal.Decimal
	err   error
}

func (f *fakeCrypto) GetPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.price, nil
}

var testDBCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:portfolio_test_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&Account{},
		&Instrument{},
		&TradeRecord{},
		&CashMove{},
		&FxConversionRecord{},
		&PriceSnapshot{},
	))
	return db
}

func newTestService(t *testing.T, quotes *fakeQuotes, crypto *fakeCrypto) *Service {
	t.Helper()

	cache := pricing.NewCache[types.PriceQuote](pricing.CacheTTL)
	prices := pricing.NewService(quotes, crypto, cache, decimal.RequireFromString("3.70"))
	return NewService(newTestDB(t), prices)
}

func seedAccount(t *testing.T, db *Database, name string) *Account {
	t.Helper()

	account := &Account{AccountID: uuid.New().String(), Name: name}
	require.NoError(t, db.GetOrCreateAccount(account))
	return account
}

func seedInstrument(t *testing.T, db *Database, accountID, symbol, assetType string, trades []TradeRecord) {
	t.Helper()

	instrument := &Instrument{
		InstrumentID: uuid.New().String(),
		AccountID:    accountID,
		Symbol:       symbol,
		AssetType:    assetType,
		Currency:     "USD",
	}
	require.NoError(t, db.CreateInstrument(instrument))
	for i := range trades {
		trades[i].InstrumentID = instrument.InstrumentID
		require.NoError(t, db.CreateTrade(&trades[i]))
	}
}

func TestService_AccountSummary(t *testing.T) {
	// All upstream lookups fail, so prices come from the demo table
	// and the FX rate from the configured fallback
	svc := newTestService(t, &fakeQuotes{err: errors.New("network error")}, &fakeCrypto{})
	db := svc.GetDB()

	account := seedAccount(t, db, "Extrade")
	seedInstrument(t, db, account.AccountID, "AAPL", "equity", []TradeRecord{
		{Side: "BUY", Qty: "10", Price: "150", Fee: "2", Date: time.Now()},
		{Side: "SELL", Qty: "3", Price: "170", Fee: "2", Date: time.Now()},
	})
	require.NoError(t, db.CreateCashMove(&CashMove{
		AccountID: account.AccountID, Type: "DEPOSIT", Currency: "ILS", Amount: "50000", Date: time.Now(),
	}))
	for _, conv := range []FxConversionRecord{
		{AccountID: account.AccountID, FromCurrency: "ILS", FromAmount: "7000", ToCurrency: "USD", ToAmount: "2000", Rate: "3.50", Fee: "0", Date: time.Now()},
		{AccountID: account.AccountID, FromCurrency: "ILS", FromAmount: "3750", ToCurrency: "USD", ToAmount: "1000", Rate: "3.75", Fee: "0", Date: time.Now()},
	} {
		conv := conv
		require.NoError(t, db.CreateFxConversion(&conv))
	}

	summary, err := svc.AccountSummary(context.Background(), account.AccountID)
	require.NoError(t, err)

	assert.Equal(t, "Extrade", summary.Account.Name)
	assert.False(t, summary.FxIsLive)
	assert.Equal(t, "3.7", summary.FxNow.String())

	require.Len(t, summary.Instruments, 1)
	aapl := summary.Instruments[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.False(t, aapl.PriceIsLive)
	assert.Equal(t, "165", aapl.CurrentPriceUSD.String())
	assert.Equal(t, "56", aapl.RealizedUSD.String())
	assert.Equal(t, "105", aapl.UnrealizedUSD.String())
	assert.Equal(t, "7", aapl.QtyHeld.String())
	assert.Equal(t, "1155", aapl.ValueUSD.String())

	// Cash: 50000 ILS deposited, 10750 ILS converted out, 3000 USD in
	assert.Equal(t, "3000", summary.Cash.USD.String())
	assert.Equal(t, "39250", summary.Cash.ILS.String())

	assert.Equal(t, "350", summary.FxImpactILS.String())

	// Totals at the fallback rate
	assert.Equal(t, "4155", summary.Totals.TotalValueUSD.String())
	assert.Equal(t, "54623.5", summary.Totals.TotalValueILS.String())
}

func TestService_AccountSummary_LivePrices(t *testing.T) {
	quotes := &fakeQuotes{
		price: decimal.RequireFromString("180"),
		fx:    decimal.RequireFromString("3.65"),
	}
	svc := newTestService(t, quotes, &fakeCrypto{})
	db := svc.GetDB()

	account := seedAccount(t, db, "IBKR")
	seedInstrument(t, db, account.AccountID, "AAPL", "equity", []TradeRecord{
		{Side: "BUY", Qty: "10", Price: "150", Fee: "0", Date: time.Now()},
	})

	summary, err := svc.AccountSummary(context.Background(), account.AccountID)
	require.NoError(t, err)

	assert.True(t, summary.FxIsLive)
	assert.Equal(t, "3.65", summary.FxNow.String())
	require.Len(t, summary.Instruments, 1)
	assert.True(t, summary.Instruments[0].PriceIsLive)
	assert.Equal(t, "300", summary.Instruments[0].UnrealizedUSD.String())
}

func TestService_AccountSummary_CryptoInstrument(t *testing.T) {
	crypto := &fakeCrypto{price: decimal.RequireFromString("64000")}
	svc := newTestService(t, &fakeQuotes{fx: decimal.RequireFromString("3.70")}, crypto)
	db := svc.GetDB()

	account := seedAccount(t, db, "Kraken")
	seedInstrument(t, db, account.AccountID, "BTC", "crypto", []TradeRecord{
		{Side: "BUY", Qty: "0.5", Price: "60000", Fee: "15", Date: time.Now()},
	})

	summary, err := svc.AccountSummary(context.Background(), account.AccountID)
	require.NoError(t, err)

	require.Len(t, summary.Instruments, 1)
	btc := summary.Instruments[0]
	assert.True(t, btc.PriceIsLive)
	assert.Equal(t, "64000", btc.CurrentPriceUSD.String())
	// (64000-60000)*0.5 = 2000
	assert.Equal(t, "2000", btc.UnrealizedUSD.String())
}

func TestService_AccountSummary_EmptyAccount(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{err: errors.New("down")}, &fakeCrypto{})
	account := seedAccount(t, svc.GetDB(), "Empty")

	summary, err := svc.AccountSummary(context.Background(), account.AccountID)
	require.NoError(t, err)

	assert.Empty(t, summary.Instruments)
	assert.True(t, summary.Cash.USD.IsZero())
	assert.True(t, summary.Cash.ILS.IsZero())
	assert.True(t, summary.FxImpactILS.IsZero())
	assert.True(t, summary.Totals.TotalValueUSD.IsZero())
}

func TestService_AccountSummary_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{}, &fakeCrypto{})

	_, err := svc.AccountSummary(context.Background(), "no-such-account")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestService_AccountSummary_MalformedStoredDecimal(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{err: errors.New("down")}, &fakeCrypto{})
	db := svc.GetDB()

	account := seedAccount(t, db, "Broken")
	seedInstrument(t, db, account.AccountID, "AAPL", "equity", []TradeRecord{
		{Side: "BUY", Qty: "not-a-number", Price: "150", Fee: "0", Date: time.Now()},
	})

	_, err := svc.AccountSummary(context.Background(), account.AccountID)
	assert.Error(t, err)
}

func TestService_RefreshPrices(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{err: errors.New("down")}, &fakeCrypto{})
	db := svc.GetDB()

	account := seedAccount(t, db, "Extrade")
	seedInstrument(t, db, account.AccountID, "AAPL", "equity", nil)

	result, err := svc.RefreshPrices(context.Background(), account.AccountID)
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "AAPL", result.Results[0].Symbol)
	assert.Equal(t, "demo", result.Results[0].Source)
	assert.Equal(t, "165", result.Results[0].Price.String())

	snapshots, err := db.GetPriceSnapshots(account.AccountID, 10)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, "AAPL", snapshots[0].Symbol)
	assert.Equal(t, "demo", snapshots[0].Source)
}

func TestService_RefreshPrices_DefaultsToMSFT(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{err: errors.New("down")}, &fakeCrypto{})
	account := seedAccount(t, svc.GetDB(), "NoHoldings")

	result, err := svc.RefreshPrices(context.Background(), account.AccountID)
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, "MSFT", result.Results[0].Symbol)
	assert.Equal(t, "320", result.Results[0].Price.String())
}

func TestService_RefreshPrices_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeQuotes{}, &fakeCrypto{})

	_, err := svc.RefreshPrices(context.Background(), "no-such-account")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCashBalances_WithdrawalsAndUnknownCurrencies(t *testing.T) {
	moves := []CashMove{
		{Type: "DEPOSIT", Currency: "USD", Amount: "1000"},
		{Type: "WITHDRAWAL", Currency: "USD", Amount: "250"},
		{Type: "DEPOSIT", Currency: "EUR", Amount: "999"},
	}

	cash, err := cashBalances(moves, nil)
	require.NoError(t, err)

	assert.Equal(t, "750", cash.USD.String())
	assert.True(t, cash.ILS.IsZero())
}
