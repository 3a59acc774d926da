package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/models"
)

const polymarketPageSize = 100

// PolymarketClient fetches active prediction markets from the gamma API.
type PolymarketClient struct {
	client *resty.Client
	cache  *Cache
	log    zerolog.Logger
}

func NewPolymarketClient(cfg *config.Config, log zerolog.Logger) *PolymarketClient {
	client := resty.New()
	client.SetBaseURL("https://gamma-api.polymarket.com")
	client.SetTimeout(cfg.RequestTimeout)

	return &PolymarketClient{
		client: client,
		cache:  NewCache(filepath.Join(cfg.DataCacheDir, "polymarket"), cfg.PredsCacheTTL, cfg.CacheEnabled),
		log:    log.With().Str("source", "polymarket").Logger(),
	}
}

// gammaMarket mirrors the gamma API market shape. Outcomes and prices arrive
// as JSON-encoded string arrays inside JSON strings.
type gammaMarket struct {
	ID                 string          `json:"id"`
	Question           string          `json:"question"`
	Slug               string          `json:"slug"`
	Category           string          `json:"category"`
	Volume             decimal.Decimal `json:"volumeNum"`
	Liquidity          decimal.Decimal `json:"liquidityNum"`
	Active             bool            `json:"active"`
	EndDate            string          `json:"endDate"`
	Outcomes           string          `json:"outcomes"`
	OutcomePrices      string          `json:"outcomePrices"`
	OneWeekPriceChange *float64        `json:"oneWeekPriceChange"`
}

// GetActiveMarkets fetches the top active markets ordered by volume.
func (pc *PolymarketClient) GetActiveMarkets(ctx context.Context) ([]models.PredictionMarket, error) {
	cacheKey := map[string]any{"limit": polymarketPageSize, "order": "volumeNum"}

	var cached []models.PredictionMarket
	if pc.cache.Get("polymarket", "markets", cacheKey, &cached) {
		return cached, nil
	}

	var markets []models.PredictionMarket
	err := withRetry(ctx, func() error {
		resp, err := pc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"active":    "true",
				"closed":    "false",
				"order":     "volumeNum",
				"ascending": "false",
				"limit":     fmt.Sprintf("%d", polymarketPageSize),
			}).
			Get("/markets")
		if err != nil {
			return fmt.Errorf("fetch markets: %w", err)
		}
		if resp.StatusCode() != 200 {
			return statusErr("polymarket", resp.StatusCode(), resp.String())
		}

		var raw []gammaMarket
		if err := json.Unmarshal(resp.Body(), &raw); err != nil {
			return fmt.Errorf("parse markets: %w", err)
		}

		markets = make([]models.PredictionMarket, 0, len(raw))
		for _, gm := range raw {
			markets = append(markets, pc.convert(gm))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pc.cache.Set("polymarket", "markets", cacheKey, markets)
	return markets, nil
}

func (pc *PolymarketClient) convert(gm gammaMarket) models.PredictionMarket {
	m := models.PredictionMarket{
		ID:            gm.ID,
		Question:      gm.Question,
		Slug:          gm.Slug,
		Category:      gm.Category,
		Volume:        gm.Volume,
		Liquidity:     gm.Liquidity,
		Active:        gm.Active,
		PriceChange7D: gm.OneWeekPriceChange,
	}
	if gm.EndDate != "" {
		if end, err := time.Parse(time.RFC3339, gm.EndDate); err == nil {
			m.EndDate = &end
		}
	}

	var outcomes []string
	var prices []string
	if err := json.Unmarshal([]byte(gm.Outcomes), &outcomes); err != nil {
		pc.log.Debug().Str("market", gm.ID).Msg("unreadable outcomes field")
	}
	if err := json.Unmarshal([]byte(gm.OutcomePrices), &prices); err != nil {
		pc.log.Debug().Str("market", gm.ID).Msg("unreadable prices field")
	}
	for i, outcome := range outcomes {
		token := models.MarketToken{Outcome: outcome}
		if i < len(prices) {
			if p, err := decimal.NewFromString(prices[i]); err == nil {
				token.Price, _ = p.Float64()
			}
		}
		m.Tokens = append(m.Tokens, token)
	}
	return m
}
