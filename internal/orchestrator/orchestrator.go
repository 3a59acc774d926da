// Package orchestrator fans the four domain producers out over one input
// bundle and fans their results back in. A producer failure, including a
// panic, degrades that producer's slot to nil and never touches its siblings.
package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/config"
	"github.com/ikchen/macropulse/internal/agents"
	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
)

// CycleResult holds one slot per domain producer. A nil slot means that
// producer delivered nothing this cycle.
type CycleResult struct {
	Fed  *models.FedAnalysis
	Econ *models.EconomicAnalysis
	Pred *models.PredictionAnalysis
	Corr *models.CorrelationAnalysis
}

// Available counts the slots that were filled.
func (r *CycleResult) Available() int {
	n := 0
	if r.Fed != nil {
		n++
	}
	if r.Econ != nil {
		n++
	}
	if r.Pred != nil {
		n++
	}
	if r.Corr != nil {
		n++
	}
	return n
}

// Orchestrator owns the four domain producers for the life of the process.
type Orchestrator struct {
	fed  *agents.FedProducer
	econ *agents.EconProducer
	pred *agents.SentimentProducer
	corr *agents.CorrelationProducer
	log  zerolog.Logger
}

func New(cfg *config.Config, gen llm.Generator, log zerolog.Logger) *Orchestrator {
	set := agents.Settings{
		Temperature:  cfg.AnalystTemp,
		MaxTokens:    cfg.MaxTokens,
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
	}
	return &Orchestrator{
		fed:  agents.NewFedProducer(gen, set, log),
		econ: agents.NewEconProducer(gen, set, log),
		pred: agents.NewSentimentProducer(gen, set, cfg.MinMarketVolume, log),
		corr: agents.NewCorrelationProducer(gen, set, log),
		log:  log.With().Str("component", "orchestrator").Logger(),
	}
}

// RunCycle projects the bundle into each producer's input, runs all four
// concurrently over it, and joins. It always returns a non-nil result and
// never panics.
func (o *Orchestrator) RunCycle(ctx context.Context, bundle *models.Bundle) *CycleResult {
	o.log.Info().Msg("starting analysis cycle")

	result := &CycleResult{}
	var wg sync.WaitGroup

	launch := func(name string, run func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.log.Error().Str("agent", name).Interface("panic", r).Msg("producer panicked")
				}
			}()
			run()
		}()
	}

	launch(models.AgentFed, func() {
		result.Fed = o.fed.Produce(ctx, agents.FedInput{
			Yields:  bundle.TreasuryYields,
			Markets: fedRelatedMarkets(bundle.Markets),
		})
	})
	launch(models.AgentEconomic, func() {
		result.Econ = o.econ.Produce(ctx, agents.EconInput{Series: bundle.EconSeries})
	})
	launch(models.AgentPrediction, func() {
		result.Pred = o.pred.Produce(ctx, agents.SentimentInput{Markets: bundle.Markets})
	})
	launch(models.AgentCorrelation, func() {
		result.Corr = o.corr.Produce(ctx, agents.CorrelationInput{
			Histories: bundle.PriceHistories,
			Portfolio: bundle.Portfolio,
		})
	})

	wg.Wait()
	o.log.Info().Int("succeeded", result.Available()).Int("total", len(models.AgentNames)).Msg("analysis cycle done")
	return result
}

// fedRelatedMarkets keeps the prediction markets whose question touches
// monetary policy.
func fedRelatedMarkets(markets []models.PredictionMarket) []models.PredictionMarket {
	keywords := []string{"fed", "rate", "fomc", "powell", "interest"}
	out := make([]models.PredictionMarket, 0)
	for _, m := range markets {
		q := strings.ToLower(m.Question)
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
