package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ksred/portfolio-api/internal/portfolio"
)

// NewDatabase opens the SQLite database at path and migrates the
// portfolio schema.
func NewDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs the schema migrations. Split out so tests can migrate an
// in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&portfolio.Account{},
		&portfolio.Instrument{},
		&portfolio.TradeRecord{},
		&portfolio.CashMove{},
		&portfolio.FxConversionRecord{},
		&portfolio.PriceSnapshot{},
	)
}
