package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
)

const (
	// A 7-day probability move beyond this magnitude is flagged as sharp.
	significantChange7D = 0.15
	highVolumeUSD       = 500_000
	maxRenderedMarkets  = 15
)

// SentimentInput is the prediction-market projection of the cycle bundle.
type SentimentInput struct {
	Markets []models.PredictionMarket
}

// SentimentProducer reads crowd sentiment out of prediction-market flows.
type SentimentProducer struct {
	pipeline[models.PredictionAnalysis]
	minVolume float64
}

func NewSentimentProducer(gen llm.Generator, set Settings, minVolume float64, log zerolog.Logger) *SentimentProducer {
	return &SentimentProducer{
		pipeline:  newPipeline[models.PredictionAnalysis](models.AgentPrediction, gen, set, log),
		minVolume: minVolume,
	}
}

func (p *SentimentProducer) Name() string { return models.AgentPrediction }

func (p *SentimentProducer) SystemPrompt() string {
	return `You are a behavioral-finance specialist who reads crowd positioning through prediction-market money flows.

Your core tasks:
1. Spot markets whose implied probability moved sharply
2. Assess spillover from political events into financial markets
3. Quantify overall sentiment (anxiety vs optimism)

Focus:
- Active markets with volume above $100,000
- Markets whose probability moved more than 15% over 7 days
- Macro-category markets, which bear directly on finance

Anxiety scale (market_anxiety_score):
- 1.0: extreme anxiety (most markets pricing pessimistic outcomes)
- 0.0: neutral
- -1.0: extreme optimism

Output requirements (JSON, strictly following the schema):
- market_anxiety_score: -1.0 to 1.0
- key_events: list of objects with market, probability, change_7d, volume
- surprising_markets: list of notable market moves (strings)
- summary: at most 500 characters
- confidence: 0.0 to 1.0

Prediction markets are real-money votes; weigh them above polls. When few markets qualify, lower confidence and say so.`
}

// filteredMarkets returns the markets above the volume threshold, sorted by
// volume descending, capped for rendering.
func (p *SentimentProducer) filteredMarkets(markets []models.PredictionMarket) []models.PredictionMarket {
	out := make([]models.PredictionMarket, 0, len(markets))
	for _, m := range markets {
		if v, _ := m.Volume.Float64(); v >= p.minVolume {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Volume.GreaterThan(out[j].Volume)
	})
	if len(out) > maxRenderedMarkets {
		out = out[:maxRenderedMarkets]
	}
	return out
}

func (p *SentimentProducer) UserPrompt(in SentimentInput) string {
	var b strings.Builder
	b.WriteString("Analyze the following prediction-market data:\n\n")

	if len(in.Markets) == 0 {
		b.WriteString("[warning] no prediction-market data available.\n")
		b.WriteString("Analyze under that constraint and set confidence low.\n")
		return b.String()
	}

	filtered := p.filteredMarkets(in.Markets)

	b.WriteString("[Market Overview]\n")
	fmt.Fprintf(&b, "total markets: %d\n", len(in.Markets))
	fmt.Fprintf(&b, "high-volume markets (>$%.0f): %d\n\n", p.minVolume, len(filtered))

	fmt.Fprintf(&b, "[High-Volume Markets (volume > $%.0f)]\n", p.minVolume)
	for i, m := range filtered {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, m.Question)
		category := m.Category
		if category == "" {
			category = "n/a"
		}
		fmt.Fprintf(&b, "   category: %s\n", category)
		if price, ok := m.YesPrice(); ok {
			fmt.Fprintf(&b, "   current probability (Yes): %.1f%%\n", price*100)
		} else {
			b.WriteString("   current probability: no data available\n")
		}
		fmt.Fprintf(&b, "   24h volume: $%s\n", m.Volume.StringFixed(0))
		fmt.Fprintf(&b, "   liquidity: $%s\n", m.Liquidity.StringFixed(0))
		if v, _ := m.Volume.Float64(); v > highVolumeUSD {
			b.WriteString("   [!] high-volume market\n")
		}
		if m.PriceChange7D != nil {
			fmt.Fprintf(&b, "   7-day change: %+.1f%%\n", *m.PriceChange7D*100)
			if abs(*m.PriceChange7D) > significantChange7D {
				b.WriteString("   [!] sharp move\n")
			}
		}
	}

	b.WriteString("\n[Analysis Request]\n")
	b.WriteString("1. Identify markets with sharp probability moves\n")
	b.WriteString("2. Assess their potential impact on financial markets\n")
	b.WriteString("3. Score overall sentiment (anxious / neutral / optimistic)\n")
	b.WriteString("4. List the most surprising markets\n")
	return b.String()
}

func (p *SentimentProducer) Produce(ctx context.Context, in SentimentInput) *models.PredictionAnalysis {
	p.log.Info().Int("markets", len(in.Markets)).Msg("starting analysis")
	out := p.produce(ctx, p.SystemPrompt(), p.UserPrompt(in))
	if out != nil {
		p.log.Info().
			Float64("anxiety", out.MarketAnxietyScore).
			Int("key_events", len(out.KeyEvents)).
			Float64("confidence", out.Confidence).
			Msg("prediction analysis done")
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
