package dataflows

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/models"
)

// Collector assembles the per-cycle input bundle from every upstream source.
// A failed source leaves its bundle slot empty; the producers downstream
// degrade on their own.
type Collector struct {
	fred   *FREDClient
	poly   *PolymarketClient
	market *MarketClient
	cfg    *config.Config
	log    zerolog.Logger
}

func NewCollector(cfg *config.Config, log zerolog.Logger) *Collector {
	return &Collector{
		fred:   NewFREDClient(cfg, log),
		poly:   NewPolymarketClient(cfg, log),
		market: NewMarketClient(cfg, log),
		cfg:    cfg,
		log:    log.With().Str("component", "collector").Logger(),
	}
}

// Collect builds one bundle. It never fails as a whole; the worst case is a
// bundle with every slot empty.
func (c *Collector) Collect(ctx context.Context) *models.Bundle {
	c.log.Info().Msg("collecting cycle data")
	start := time.Now()

	bundle := &models.Bundle{
		Portfolio:   c.cfg.Portfolio(),
		CollectedAt: start,
	}

	yields, err := c.market.GetTreasuryYields(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("treasury yields unavailable")
	} else {
		bundle.TreasuryYields = yields
	}

	bundle.EconSeries = c.fred.GetCoreSeries(ctx)

	markets, err := c.poly.GetActiveMarkets(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("prediction markets unavailable")
	} else {
		bundle.Markets = markets
	}

	bundle.PriceHistories = c.market.GetCoreHistories(ctx, c.cfg.CorrelationDays)

	c.log.Info().
		Int("yields", len(bundle.TreasuryYields)).
		Int("econ_series", len(bundle.EconSeries)).
		Int("markets", len(bundle.Markets)).
		Int("histories", len(bundle.PriceHistories)).
		Dur("elapsed", time.Since(start)).
		Msg("collection done")
	return bundle
}
