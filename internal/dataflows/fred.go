package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/models"
)

// CoreEconSeries lists the FRED series IDs collected every cycle.
var CoreEconSeries = []string{"CPIAUCSL", "UNRATE", "PAYEMS", "PCEPI"}

// FREDClient fetches economic series from the FRED observations API.
type FREDClient struct {
	client *resty.Client
	cache  *Cache
	apiKey string
	log    zerolog.Logger
}

func NewFREDClient(cfg *config.Config, log zerolog.Logger) *FREDClient {
	client := resty.New()
	client.SetBaseURL("https://api.stlouisfed.org/fred")
	client.SetTimeout(cfg.RequestTimeout)

	return &FREDClient{
		client: client,
		cache:  NewCache(filepath.Join(cfg.DataCacheDir, "fred"), cfg.FREDCacheTTL, cfg.CacheEnabled),
		apiKey: cfg.FREDAPIKey,
		log:    log.With().Str("source", "fred").Logger(),
	}
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredResponse struct {
	Observations []fredObservation `json:"observations"`
}

// GetSeries fetches the last two years of observations for one series.
func (fc *FREDClient) GetSeries(ctx context.Context, seriesID string) (*models.EconSeries, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("FRED API key not configured")
	}

	start := time.Now().AddDate(-2, 0, 0).Format("2006-01-02")
	cacheKey := map[string]string{"series_id": seriesID, "start": start}

	var cached models.EconSeries
	if fc.cache.Get("fred", "observations", cacheKey, &cached) {
		return &cached, nil
	}

	var series *models.EconSeries
	err := withRetry(ctx, func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"series_id":         seriesID,
				"api_key":           fc.apiKey,
				"file_type":         "json",
				"observation_start": start,
				"sort_order":        "asc",
			}).
			Get("/series/observations")
		if err != nil {
			return fmt.Errorf("fetch series %s: %w", seriesID, err)
		}
		if resp.StatusCode() != 200 {
			return statusErr("fred", resp.StatusCode(), resp.String())
		}

		var body fredResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return fmt.Errorf("parse series %s: %w", seriesID, err)
		}

		series = &models.EconSeries{SeriesID: seriesID}
		for _, obs := range body.Observations {
			date, err := time.Parse("2006-01-02", obs.Date)
			if err != nil {
				continue
			}
			point := models.EconObservation{Date: date}
			// FRED reports missing observations as ".".
			if v, err := strconv.ParseFloat(obs.Value, 64); err == nil {
				point.Value = &v
			}
			series.Observations = append(series.Observations, point)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("fred", "observations", cacheKey, series)
	return series, nil
}

// GetCoreSeries fetches every core series, skipping individual failures.
func (fc *FREDClient) GetCoreSeries(ctx context.Context) map[string]*models.EconSeries {
	out := make(map[string]*models.EconSeries, len(CoreEconSeries))
	for _, id := range CoreEconSeries {
		series, err := fc.GetSeries(ctx, id)
		if err != nil {
			fc.log.Warn().Err(err).Str("series", id).Msg("series unavailable")
			continue
		}
		out[id] = series
	}
	return out
}
