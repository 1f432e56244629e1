package portfolio

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Processor periodically re-resolves prices for every account and
// persists the snapshots, keeping the audit trail warm without manual
// refresh calls.
type Processor struct {
	service  *Service
	interval time.Duration
}

func NewProcessor(service *Service, interval time.Duration) *Processor {
	return &Processor{
		service:  service,
		interval: interval,
	}
}

// Start runs the snapshot refresh loop until the context is cancelled.
func (p *Processor) Start(ctx context.Context) {
	logger := log.With().Str("component", "snapshot_processor").Logger()
	logger.Info().Dur("interval", p.interval).Msg("starting snapshot processor")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down snapshot processor")
			return
		case <-ticker.C:
			if err := p.refreshAll(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to refresh account prices")
			}
		}
	}
}

func (p *Processor) refreshAll(ctx context.Context) error {
	logger := log.With().Str("component", "snapshot_processor").Logger()

	accounts, err := p.service.GetDB().GetAccounts()
	if err != nil {
		return err
	}

	logger.Info().Int("accounts", len(accounts)).Msg("refreshing account prices")

	for _, account := range accounts {
		result, err := p.service.RefreshPrices(ctx, account.AccountID)
		if err != nil {
			logger.Error().
				Err(err).
				Str("account_id", account.AccountID).
				Msg("failed to refresh prices for account")
			continue
		}
		logger.Debug().
			Str("account_id", account.AccountID).
			Int("symbols", len(result.Results)).
			Msg("account prices refreshed")
	}

	return nil
}
