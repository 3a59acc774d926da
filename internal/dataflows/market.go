package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/models"
)

// Treasury yield index symbols on Yahoo Finance, shortest maturity first.
var yieldSymbols = []struct {
	symbol   string
	maturity string
}{
	{"^IRX", "3M"},
	{"^FVX", "5Y"},
	{"^TNX", "10Y"},
	{"^TYX", "30Y"},
}

// CoreAssets are the symbols whose price histories feed the correlation
// producer every cycle.
var CoreAssets = []string{"BTC-USD", "ETH-USD", "SPY", "QQQ", "DX-Y.NYB"}

// MarketClient fetches yields and price histories from Yahoo Finance.
type MarketClient struct {
	cache *Cache
	log   zerolog.Logger
}

func NewMarketClient(cfg *config.Config, log zerolog.Logger) *MarketClient {
	return &MarketClient{
		cache: NewCache(filepath.Join(cfg.DataCacheDir, "market"), cfg.MarketCacheTTL, cfg.CacheEnabled),
		log:   log.With().Str("source", "market").Logger(),
	}
}

// GetTreasuryYields quotes the treasury yield indexes. Individual symbol
// failures are skipped; an empty result is an error.
func (mc *MarketClient) GetTreasuryYields(ctx context.Context) ([]models.TreasuryYield, error) {
	cacheKey := "treasury_yields"

	var cached []models.TreasuryYield
	if mc.cache.Get("market", "yields", cacheKey, &cached) {
		return cached, nil
	}

	yields := make([]models.TreasuryYield, 0, len(yieldSymbols))
	for _, ys := range yieldSymbols {
		var y models.TreasuryYield
		err := withRetry(ctx, func() error {
			q, err := quote.Get(ys.symbol)
			if err != nil {
				return fmt.Errorf("quote %s: %w", ys.symbol, err)
			}
			y = models.TreasuryYield{
				Symbol:     ys.symbol,
				Maturity:   ys.maturity,
				YieldValue: q.RegularMarketPrice,
				Timestamp:  time.Now(),
			}
			return nil
		})
		if err != nil {
			mc.log.Warn().Err(err).Str("symbol", ys.symbol).Msg("yield unavailable")
			continue
		}
		yields = append(yields, y)
	}
	if len(yields) == 0 {
		return nil, fmt.Errorf("no treasury yields available")
	}

	mc.cache.Set("market", "yields", cacheKey, yields)
	return yields, nil
}

// GetPriceHistory fetches a rolling daily close window for one symbol.
func (mc *MarketClient) GetPriceHistory(ctx context.Context, symbol string, days int) (*models.AssetPriceHistory, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	cacheKey := map[string]any{"symbol": symbol, "days": days, "date": end.Format("2006-01-02")}

	var cached models.AssetPriceHistory
	if mc.cache.Get("market", "history", cacheKey, &cached) {
		return &cached, nil
	}

	var history *models.AssetPriceHistory
	err := withRetry(ctx, func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})

		history = &models.AssetPriceHistory{Symbol: symbol}
		for iter.Next() {
			bar := iter.Bar()
			price, _ := bar.Close.Float64()
			history.Prices = append(history.Prices, price)
			history.Dates = append(history.Dates, time.Unix(int64(bar.Timestamp), 0))
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("history %s: %w", symbol, err)
		}
		if len(history.Prices) == 0 {
			return fmt.Errorf("no price data for %s", symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mc.cache.Set("market", "history", cacheKey, history)
	return history, nil
}

// GetCoreHistories fetches the price histories of every core asset, skipping
// individual failures.
func (mc *MarketClient) GetCoreHistories(ctx context.Context, days int) map[string]*models.AssetPriceHistory {
	out := make(map[string]*models.AssetPriceHistory, len(CoreAssets))
	for _, symbol := range CoreAssets {
		history, err := mc.GetPriceHistory(ctx, symbol, days)
		if err != nil {
			mc.log.Warn().Err(err).Str("symbol", symbol).Msg("history unavailable")
			continue
		}
		out[symbol] = history
	}
	return out
}
