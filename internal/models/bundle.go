package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TreasuryYield is one observed yield for a treasury maturity.
type TreasuryYield struct {
	Symbol     string    `json:"symbol"`
	Maturity   string    `json:"maturity"`
	YieldValue float64   `json:"yield_value"`
	Timestamp  time.Time `json:"timestamp"`
}

// EconObservation is a single dated value in an economic time series.
// Value may be nil when the source reports a missing observation.
type EconObservation struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// EconSeries is one economic indicator series (CPI, unemployment, payrolls...).
type EconSeries struct {
	SeriesID     string            `json:"series_id"`
	Title        string            `json:"title"`
	Units        string            `json:"units"`
	Frequency    string            `json:"frequency"`
	Observations []EconObservation `json:"observations"`
}

// LatestValue returns the most recent non-missing observation.
func (s *EconSeries) LatestValue() (float64, bool) {
	for i := len(s.Observations) - 1; i >= 0; i-- {
		if v := s.Observations[i].Value; v != nil {
			return *v, true
		}
	}
	return 0, false
}

// YoYChange returns the percentage change between the latest observation and
// the one twelve positions earlier, for monthly series.
func (s *EconSeries) YoYChange() (float64, bool) {
	latest, ok := s.LatestValue()
	if !ok || len(s.Observations) < 13 {
		return 0, false
	}
	prior := s.Observations[len(s.Observations)-13].Value
	if prior == nil || *prior == 0 {
		return 0, false
	}
	return (latest - *prior) / *prior * 100, true
}

// MarketToken is one outcome of a prediction market with its current price
// (implied probability) and traded volume.
type MarketToken struct {
	Outcome string          `json:"outcome"`
	Price   float64         `json:"price"`
	Volume  decimal.Decimal `json:"volume"`
}

// PredictionMarket is one prediction-market listing.
type PredictionMarket struct {
	ID            string          `json:"id"`
	Question      string          `json:"question"`
	Slug          string          `json:"slug"`
	Category      string          `json:"category"`
	Volume        decimal.Decimal `json:"volume"`
	Liquidity     decimal.Decimal `json:"liquidity"`
	Active        bool            `json:"active"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	Tokens        []MarketToken   `json:"tokens"`
	PriceChange7D *float64        `json:"price_change_7d,omitempty"`
}

// YesPrice returns the price of the "Yes" token, or the first token when no
// outcome is literally named Yes.
func (m *PredictionMarket) YesPrice() (float64, bool) {
	for _, t := range m.Tokens {
		if t.Outcome == "Yes" || t.Outcome == "yes" {
			return t.Price, true
		}
	}
	if len(m.Tokens) > 0 {
		return m.Tokens[0].Price, true
	}
	return 0, false
}

// AssetPriceHistory holds an aligned daily price series for one asset.
type AssetPriceHistory struct {
	Symbol string      `json:"symbol"`
	Prices []float64   `json:"prices"`
	Dates  []time.Time `json:"dates"`
}

// Change returns the percentage change from the first to the last price.
func (h *AssetPriceHistory) Change() (float64, bool) {
	if len(h.Prices) < 2 || h.Prices[0] == 0 {
		return 0, false
	}
	return (h.Prices[len(h.Prices)-1] - h.Prices[0]) / h.Prices[0] * 100, true
}

// Correlation computes the Pearson coefficient between this series and other,
// truncated to the shorter length. Returns false when either side has fewer
// than two points or zero variance.
func (h *AssetPriceHistory) Correlation(other *AssetPriceHistory) (float64, bool) {
	n := len(h.Prices)
	if len(other.Prices) < n {
		n = len(other.Prices)
	}
	if n < 2 {
		return 0, false
	}
	xs, ys := h.Prices[:n], other.Prices[:n]

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// Holding is one position in a user portfolio.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
}

// Portfolio is the optional user holdings passed into a cycle.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// Bundle is the immutable per-cycle collection of upstream records. It is
// built once by the collectors, shared read-only across producers, and
// discarded when the cycle ends.
type Bundle struct {
	TreasuryYields []TreasuryYield
	EconSeries     map[string]*EconSeries
	Markets        []PredictionMarket
	PriceHistories map[string]*AssetPriceHistory
	Portfolio      *Portfolio
	CollectedAt    time.Time
}
