package portfolio

import (
	"errors"

	"gorm.io/gorm"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) GetAccounts() ([]Account, error) {
	var accounts []Account
	if err := d.db.Order("name").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (d *Database) GetAccount(accountID string) (*Account, error) {
	var account Account
	if err := d.db.Where("account_id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetOrCreateAccount finds an account by name, creating it when absent.
// Used by seeding so reruns stay idempotent.
func (d *Database) GetOrCreateAccount(account *Account) error {
	return d.db.Where(Account{Name: account.Name}).
		Attrs(Account{AccountID: account.AccountID}).
		FirstOrCreate(account).Error
}

// GetInstrumentsWithTrades loads an account's instruments with their
// full trade ledgers.
func (d *Database) GetInstrumentsWithTrades(accountID string) ([]Instrument, error) {
	var instruments []Instrument
	err := d.db.Preload("Trades").
		Where("account_id = ?", accountID).
		Order("symbol").
		Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (d *Database) GetCashMoves(accountID string) ([]CashMove, error) {
	var moves []CashMove
	if err := d.db.Where("account_id = ?", accountID).Find(&moves).Error; err != nil {
		return nil, err
	}
	return moves, nil
}

func (d *Database) GetFxConversions(accountID string) ([]FxConversionRecord, error) {
	var conversions []FxConversionRecord
	if err := d.db.Where("account_id = ?", accountID).Find(&conversions).Error; err != nil {
		return nil, err
	}
	return conversions, nil
}

// GetSymbols returns the distinct symbols held by an account.
func (d *Database) GetSymbols(accountID string) ([]string, error) {
	var symbols []string
	err := d.db.Model(&Instrument{}).
		Where("account_id = ?", accountID).
		Distinct().
		Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

func (d *Database) CreateInstrument(instrument *Instrument) error {
	return d.db.Create(instrument).Error
}

func (d *Database) GetOrCreateInstrument(instrument *Instrument) error {
	return d.db.Where(Instrument{AccountID: instrument.AccountID, Symbol: instrument.Symbol}).
		Attrs(*instrument).
		FirstOrCreate(instrument).Error
}

func (d *Database) CreateTrade(trade *TradeRecord) error {
	return d.db.Create(trade).Error
}

func (d *Database) CreateCashMove(move *CashMove) error {
	return d.db.Create(move).Error
}

func (d *Database) CreateFxConversion(conversion *FxConversionRecord) error {
	return d.db.Create(conversion).Error
}

func (d *Database) CreatePriceSnapshot(snapshot *PriceSnapshot) error {
	return d.db.Create(snapshot).Error
}

func (d *Database) GetPriceSnapshots(accountID string, limit int) ([]PriceSnapshot, error) {
	var snapshots []PriceSnapshot
	err := d.db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
