package main

import (
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/portfolio-api/internal/config"
	"github.com/ksred/portfolio-api/internal/database"
	"github.com/ksred/portfolio-api/internal/portfolio"
)

// Seeds the demo accounts and, where an account has no ledger yet, a
// small demo ledger. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	gormDB, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}
	db := portfolio.NewDatabase(gormDB)

	accounts := map[string]*portfolio.Account{}
	for _, name := range []string{"Extrade", "IBKR", "Kraken"} {
		account := &portfolio.Account{
			AccountID: uuid.New().String(),
			Name:      name,
		}
		if err := db.GetOrCreateAccount(account); err != nil {
			zlog.Fatal().Err(err).Str("name", name).Msg("Failed to seed account")
		}
		accounts[name] = account
		zlog.Info().Str("name", name).Str("account_id", account.AccountID).Msg("Account ready")
	}

	if err := seedExtradeLedger(db, accounts["Extrade"]); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to seed Extrade ledger")
	}
	if err := seedKrakenLedger(db, accounts["Kraken"]); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to seed Kraken ledger")
	}

	zlog.Info().Msg("Seeding complete")
}

func seedExtradeLedger(db *portfolio.Database, account *portfolio.Account) error {
	instruments, err := db.GetInstrumentsWithTrades(account.AccountID)
	if err != nil {
		return err
	}
	if len(instruments) > 0 {
		zlog.Info().Str("name", account.Name).Msg("Ledger already seeded, skipping")
		return nil
	}

	aapl := &portfolio.Instrument{
		InstrumentID: uuid.New().String(),
		AccountID:    account.AccountID,
		Symbol:       "AAPL",
		AssetType:    "equity",
		Currency:     "USD",
	}
	if err := db.GetOrCreateInstrument(aapl); err != nil {
		return err
	}

	trades := []portfolio.TradeRecord{
		{InstrumentID: aapl.InstrumentID, Side: "BUY", Qty: "10", Price: "150", Fee: "2", Date: day(2025, 3, 1)},
		{InstrumentID: aapl.InstrumentID, Side: "SELL", Qty: "3", Price: "170", Fee: "2", Date: day(2025, 3, 15)},
	}
	for i := range trades {
		if err := db.CreateTrade(&trades[i]); err != nil {
			return err
		}
	}

	deposit := &portfolio.CashMove{
		AccountID: account.AccountID,
		Type:      "DEPOSIT",
		Currency:  "ILS",
		Amount:    "50000",
		Date:      day(2025, 2, 20),
	}
	if err := db.CreateCashMove(deposit); err != nil {
		return err
	}

	conversions := []portfolio.FxConversionRecord{
		{
			AccountID:    account.AccountID,
			FromCurrency: "ILS", FromAmount: "7000",
			ToCurrency: "USD", ToAmount: "2000",
			Rate: "3.50", Fee: "0",
			Date: day(2025, 3, 3),
		},
		{
			AccountID:    account.AccountID,
			FromCurrency: "ILS", FromAmount: "3750",
			ToCurrency: "USD", ToAmount: "1000",
			Rate: "3.75", Fee: "0",
			Date: day(2025, 3, 5),
		},
	}
	for i := range conversions {
		if err := db.CreateFxConversion(&conversions[i]); err != nil {
			return err
		}
	}

	return nil
}

func seedKrakenLedger(db *portfolio.Database, account *portfolio.Account) error {
	instruments, err := db.GetInstrumentsWithTrades(account.AccountID)
	if err != nil {
		return err
	}
	if len(instruments) > 0 {
		zlog.Info().Str("name", account.Name).Msg("Ledger already seeded, skipping")
		return nil
	}

	btc := &portfolio.Instrument{
		InstrumentID: uuid.New().String(),
		AccountID:    account.AccountID,
		Symbol:       "BTC",
		AssetType:    "crypto",
		Currency:     "USD",
	}
	if err := db.GetOrCreateInstrument(btc); err != nil {
		return err
	}

	buy := &portfolio.TradeRecord{
		InstrumentID: btc.InstrumentID,
		Side:         "BUY",
		Qty:          "0.5",
		Price:        "60000",
		Fee:          "15",
		Date:         day(2025, 3, 10),
	}
	return db.CreateTrade(buy)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
