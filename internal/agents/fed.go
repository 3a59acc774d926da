package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
)

// Yield-spread thresholds for the advisory curve label rendered into the
// prompt. The label is informational; the returned yield_curve_status comes
// from the model output.
const (
	curveSteepSpread = 2.0
)

// PolicyExpectations carries rate-decision probabilities when available.
type PolicyExpectations struct {
	CutProbability  float64
	HoldProbability float64
	HikeProbability float64
}

// FedInput is the monetary-policy projection of the cycle bundle.
type FedInput struct {
	Yields       []models.TreasuryYield
	Expectations *PolicyExpectations
	Markets      []models.PredictionMarket
}

// FedProducer analyzes Fed policy stance from treasury yields, rate
// expectations and related prediction markets.
type FedProducer struct {
	pipeline[models.FedAnalysis]
}

func NewFedProducer(gen llm.Generator, set Settings, log zerolog.Logger) *FedProducer {
	return &FedProducer{pipeline: newPipeline[models.FedAnalysis](models.AgentFed, gen, set, log)}
}

func (p *FedProducer) Name() string { return models.AgentFed }

func (p *FedProducer) SystemPrompt() string {
	return `You are a senior fixed-income strategist with over twenty years of experience reading Federal Reserve behavior.

Your core tasks:
1. Assess the Fed's stance relative to the neutral rate
2. Judge whether market pricing is too optimistic or too pessimistic
3. Identify yield-curve anomalies such as inversion
4. Anticipate the timing and size of policy pivots

Analysis framework:
- Compare market expectations (rate futures, prediction markets) against actual Fed communication
- Watch the 2Y vs 10Y treasury spread
- Weigh inflation data against the Fed's target

Output requirements (JSON, strictly following the schema):
- tone_index: -1.0 (extremely dovish) to 1.0 (extremely hawkish), judged across multiple indicators
- key_risks: 3-5 key risk points
- summary: professional read in at most 500 characters
- confidence: 0.0 to 1.0 based on data completeness and market consistency
- yield_curve_status: one of "normal", "inverted", "steep"
- next_decision_probability: probability of a cut at the next meeting, if inferable

Do not over-read any single indicator. When data is thin, lower confidence and say so in the summary.`
}

// UserPrompt renders the projection deterministically, with explicit
// placeholders for missing sub-fields.
func (p *FedProducer) UserPrompt(in FedInput) string {
	var b strings.Builder
	b.WriteString("Analyze the following monetary-policy data:\n\n")

	b.WriteString("[Treasury Yields]\n")
	if len(in.Yields) == 0 {
		b.WriteString("no data available\n")
	} else {
		for _, y := range in.Yields {
			fmt.Fprintf(&b, "- %s: %.2f%% (as of %s)\n", y.Maturity, y.YieldValue, y.Timestamp.Format("2006-01-02 15:04"))
		}
		if spread, short, ok := curveSpread(in.Yields); ok {
			fmt.Fprintf(&b, "\n10Y - %s spread: %.2f%%\n", short, spread)
			switch {
			case spread < 0:
				b.WriteString("*** warning: yield curve is inverted ***\n")
			case spread < 0.5:
				b.WriteString("*** note: yield curve is close to inversion (spread < 0.5%) ***\n")
			case spread > curveSteepSpread:
				b.WriteString("*** note: yield curve is steep (spread > 2.0%) ***\n")
			}
		}
	}

	b.WriteString("\n[Rate Expectations]\n")
	if in.Expectations != nil {
		fmt.Fprintf(&b, "cut probability at next meeting: %.1f%%\n", in.Expectations.CutProbability)
		fmt.Fprintf(&b, "hold probability: %.1f%%\n", in.Expectations.HoldProbability)
		fmt.Fprintf(&b, "hike probability: %.1f%%\n", in.Expectations.HikeProbability)
	} else {
		b.WriteString("no data available\n")
	}

	b.WriteString("\n[Related Prediction Markets]\n")
	if len(in.Markets) == 0 {
		b.WriteString("no data available\n")
	} else {
		markets := in.Markets
		if len(markets) > 3 {
			markets = markets[:3]
		}
		for _, m := range markets {
			if price, ok := m.YesPrice(); ok {
				fmt.Fprintf(&b, "- %s: %.1f%% (volume $%s)\n", m.Question, price*100, m.Volume.StringFixed(0))
			}
		}
	}

	b.WriteString("\nProvide a professional monetary-policy analysis based on the data above.")
	return b.String()
}

// Produce runs the full pipeline. Without yield data there is nothing to
// analyze and no model call is made.
func (p *FedProducer) Produce(ctx context.Context, in FedInput) *models.FedAnalysis {
	if len(in.Yields) == 0 {
		p.log.Warn().Msg("no treasury yield data, skipping analysis")
		return nil
	}

	p.log.Info().Int("yield_points", len(in.Yields)).Msg("starting analysis")
	out := p.produce(ctx, p.SystemPrompt(), p.UserPrompt(in))
	if out != nil {
		if adv := curveStatus(in.Yields); adv != out.YieldCurveStatus {
			p.log.Debug().
				Str("advisory", adv).
				Str("model", out.YieldCurveStatus).
				Msg("curve label differs from spread-derived value")
		}
		p.log.Info().
			Float64("tone_index", out.ToneIndex).
			Str("curve", out.YieldCurveStatus).
			Float64("confidence", out.Confidence).
			Msg("fed analysis done")
	}
	return out
}

// curveStatus derives the advisory label from the long/short yield spread.
func curveStatus(yields []models.TreasuryYield) string {
	spread, _, ok := curveSpread(yields)
	if !ok {
		return models.CurveNormal
	}
	switch {
	case spread < 0:
		return models.CurveInverted
	case spread > curveSteepSpread:
		return models.CurveSteep
	default:
		return models.CurveNormal
	}
}

// curveSpread computes 10Y minus the short leg, preferring the 2Y note and
// falling back to the 3M bill. Returns the short maturity used.
func curveSpread(yields []models.TreasuryYield) (float64, string, bool) {
	var y2, y3m, y10 *models.TreasuryYield
	for i := range yields {
		switch {
		case strings.Contains(yields[i].Maturity, "2Y"):
			y2 = &yields[i]
		case strings.Contains(yields[i].Maturity, "3M"):
			y3m = &yields[i]
		case strings.Contains(yields[i].Maturity, "10Y"):
			y10 = &yields[i]
		}
	}
	short := y2
	label := "2Y"
	if short == nil {
		short = y3m
		label = "3M"
	}
	if short == nil || y10 == nil {
		return 0, "", false
	}
	return y10.YieldValue - short.YieldValue, label, true
}
