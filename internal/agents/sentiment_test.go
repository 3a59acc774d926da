package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ikchen/macropulse/internal/models"
)

func market(question string, volume float64, yes float64) models.PredictionMarket {
	return models.PredictionMarket{
		ID:        question,
		Question:  question,
		Active:    true,
		Volume:    decimal.NewFromFloat(volume),
		Liquidity: decimal.NewFromFloat(volume / 10),
		Tokens: []models.MarketToken{
			{Outcome: "Yes", Price: yes},
			{Outcome: "No", Price: 1 - yes},
		},
	}
}

func TestSentimentProducer_FiltersAndRanksByVolume(t *testing.T) {
	sent := NewSentimentProducer(&fakeGenerator{}, fastSettings(), 100_000, zerolog.Nop())

	markets := []models.PredictionMarket{
		market("tiny market", 5_000, 0.5),
		market("mid market", 250_000, 0.4),
		market("big market", 900_000, 0.6),
	}

	filtered := sent.filteredMarkets(markets)
	if len(filtered) != 2 {
		t.Fatalf("expected the low-volume market dropped, got %d", len(filtered))
	}
	if filtered[0].Question != "big market" {
		t.Fatalf("expected volume-descending order, got %q first", filtered[0].Question)
	}
}

func TestSentimentProducer_CapsRenderedMarkets(t *testing.T) {
	sent := NewSentimentProducer(&fakeGenerator{}, fastSettings(), 100_000, zerolog.Nop())

	markets := make([]models.PredictionMarket, 0, 20)
	for i := 0; i < 20; i++ {
		markets = append(markets, market(fmt.Sprintf("market %d", i), 200_000+float64(i), 0.5))
	}
	if got := sent.filteredMarkets(markets); len(got) != maxRenderedMarkets {
		t.Fatalf("expected cap at %d, got %d", maxRenderedMarkets, len(got))
	}
}

func TestSentimentProducer_PromptFlagsSharpMoves(t *testing.T) {
	sent := NewSentimentProducer(&fakeGenerator{}, fastSettings(), 100_000, zerolog.Nop())

	moved := market("election market", 600_000, 0.7)
	change := 0.22
	moved.PriceChange7D = &change

	prompt := sent.UserPrompt(SentimentInput{Markets: []models.PredictionMarket{moved}})
	if !strings.Contains(prompt, "[!] sharp move") {
		t.Fatalf("expected sharp-move flag:\n%s", prompt)
	}
	if !strings.Contains(prompt, "[!] high-volume market") {
		t.Fatalf("expected high-volume flag:\n%s", prompt)
	}
}

func TestSentimentProducer_PromptWarnsWithoutData(t *testing.T) {
	sent := NewSentimentProducer(&fakeGenerator{}, fastSettings(), 100_000, zerolog.Nop())

	prompt := sent.UserPrompt(SentimentInput{})
	if !strings.Contains(prompt, "no prediction-market data available") {
		t.Fatalf("expected empty-data warning:\n%s", prompt)
	}
}

func TestSentimentProducer_ProduceParsesResponse(t *testing.T) {
	response := `{
		"market_anxiety_score": 0.3,
		"key_events": [{"market": "election market", "probability": 0.7, "change_7d": 0.22, "volume": 600000}],
		"surprising_markets": ["election market"],
		"summary": "Mild anxiety concentrated in politics.",
		"confidence": 0.65
	}`
	gen := &fakeGenerator{responses: []string{response}}
	sent := NewSentimentProducer(gen, fastSettings(), 100_000, zerolog.Nop())

	out := sent.Produce(context.Background(), SentimentInput{Markets: []models.PredictionMarket{market("election market", 600_000, 0.7)}})
	if out == nil {
		t.Fatal("expected a parsed analysis")
	}
	if out.MarketAnxietyScore != 0.3 || len(out.KeyEvents) != 1 {
		t.Fatalf("unexpected analysis: %+v", out)
	}
}
