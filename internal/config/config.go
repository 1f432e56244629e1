package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config is the environment-level configuration for the service. The
// price providers take the credential and timeout as already-resolved
// parameters; nothing below reads the environment after Load.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	TwelveDataKey   string        `env:"TWELVEDATA_KEY"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:"portfolio-secret-key"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`

	FxFallbackRaw string `env:"FX_NOW" envDefault:"3.70"`

	// FxFallback is the parsed static USD/ILS rate used when the FX
	// provider cannot serve one.
	FxFallback decimal.Decimal `env:"-"`
}

// Load reads configuration from the environment, with a .env file
// applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	fallback, err := decimal.NewFromString(cfg.FxFallbackRaw)
	if err != nil {
		return nil, fmt.Errorf("config: invalid FX_NOW %q", cfg.FxFallbackRaw)
	}
	cfg.FxFallback = fallback

	return cfg, nil
}
