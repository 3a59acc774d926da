package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
)

// Series IDs the economic producer understands.
const (
	SeriesCPI          = "CPIAUCSL"
	SeriesUnemployment = "UNRATE"
	SeriesPayrolls     = "PAYEMS"
	SeriesPCE          = "PCEPI"
	SeriesPMI          = "PMI"
)

const (
	fedInflationTarget = 2.0
	unemploymentLow    = 4.0
	unemploymentHigh   = 5.5
	pmiExpansion       = 50.0
)

// EconInput is the economic-indicator projection of the cycle bundle.
type EconInput struct {
	Series map[string]*models.EconSeries
}

// coreSeriesCount counts how many of the three core series are present.
func (in EconInput) coreSeriesCount() int {
	n := 0
	for _, id := range []string{SeriesCPI, SeriesUnemployment, SeriesPayrolls} {
		if s, ok := in.Series[id]; ok && s != nil && len(s.Observations) > 0 {
			n++
		}
	}
	return n
}

// EconProducer scores soft-landing odds from hard economic data.
type EconProducer struct {
	pipeline[models.EconomicAnalysis]
}

func NewEconProducer(gen llm.Generator, set Settings, log zerolog.Logger) *EconProducer {
	return &EconProducer{pipeline: newPipeline[models.EconomicAnalysis](models.AgentEconomic, gen, set, log)}
}

func (p *EconProducer) Name() string { return models.AgentEconomic }

func (p *EconProducer) SystemPrompt() string {
	return `You are a macroeconomist who finds business-cycle turning points in hard data.

Your core tasks:
1. Judge whether the data supports a soft landing
2. Contrast current readings with market expectations
3. Flag anomalous signals in the data

Analysis framework:
- Inflation: CPI and PCE, year-over-year and month-over-month
- Employment: payrolls, unemployment rate
- Leading indicators: ISM PMI when available

Soft-landing scoring (0-10):
- 10: perfect soft landing (inflation at target, employment strong, no recession)
- 7-9: close to a soft landing (inflation falling, employment stable)
- 4-6: uncertain (contradictory data)
- 0-3: hard-landing risk (sticky inflation, deteriorating employment)

Output requirements (JSON, strictly following the schema):
- soft_landing_score: 0.0 to 10.0, scored objectively from the data
- inflation_trend: exactly one of "up", "down", "flat"
- employment_status: exactly one of "strong", "weak", "stable"
- key_indicators: map of indicator name to numeric value
- summary: professional read in at most 500 characters
- confidence: 0.0 to 1.0 based on data completeness

Point out contradictions between series when they exist; with thin data, lower confidence and say so.`
}

func (p *EconProducer) UserPrompt(in EconInput) string {
	var b strings.Builder
	b.WriteString("Analyze the following economic indicators:\n\n")

	b.WriteString("[Inflation]\n")
	if cpi, ok := in.Series[SeriesCPI]; ok && cpi != nil {
		if latest, ok := cpi.LatestValue(); ok {
			fmt.Fprintf(&b, "CPI (latest): %.2f\n", latest)
		}
		if yoy, ok := cpi.YoYChange(); ok {
			fmt.Fprintf(&b, "CPI year-over-year: %.2f%%\n", yoy)
			if yoy > fedInflationTarget {
				fmt.Fprintf(&b, "[!] above the Fed's %.0f%% target\n", fedInflationTarget)
			} else {
				fmt.Fprintf(&b, "[ok] near the Fed's %.0f%% target\n", fedInflationTarget)
			}
		}
	} else {
		b.WriteString("CPI: no data available\n")
	}
	if pce, ok := in.Series[SeriesPCE]; ok && pce != nil {
		if latest, ok := pce.LatestValue(); ok {
			fmt.Fprintf(&b, "PCE price index (latest): %.2f\n", latest)
		}
	}

	b.WriteString("\n[Employment]\n")
	if un, ok := in.Series[SeriesUnemployment]; ok && un != nil {
		if latest, ok := un.LatestValue(); ok {
			fmt.Fprintf(&b, "unemployment rate: %.1f%%\n", latest)
			switch {
			case latest < unemploymentLow:
				b.WriteString("[ok] labor market strong (low unemployment)\n")
			case latest > unemploymentHigh:
				b.WriteString("[!] labor market weak (high unemployment)\n")
			default:
				b.WriteString("[-] labor market stable\n")
			}
		}
	} else {
		b.WriteString("unemployment rate: no data available\n")
	}
	if pay, ok := in.Series[SeriesPayrolls]; ok && pay != nil {
		if latest, ok := pay.LatestValue(); ok {
			fmt.Fprintf(&b, "nonfarm payrolls (latest, thousands): %.0f\n", latest)
		}
	} else {
		b.WriteString("nonfarm payrolls: no data available\n")
	}

	b.WriteString("\n[Leading Indicators]\n")
	if pmi, ok := in.Series[SeriesPMI]; ok && pmi != nil {
		if latest, ok := pmi.LatestValue(); ok {
			fmt.Fprintf(&b, "ISM PMI: %.1f", latest)
			if latest >= pmiExpansion {
				b.WriteString(" (expansion)\n")
			} else {
				b.WriteString(" (contraction)\n")
			}
		}
	} else {
		b.WriteString("ISM PMI: no data available\n")
	}

	b.WriteString("\nAssess the soft-landing outlook based on the data above.")
	return b.String()
}

// Produce requires at least two of the three core series; with fewer it
// short-circuits to nil without calling the model.
func (p *EconProducer) Produce(ctx context.Context, in EconInput) *models.EconomicAnalysis {
	if n := in.coreSeriesCount(); n < 2 {
		p.log.Warn().Int("core_series", n).Msg("insufficient economic series, skipping analysis")
		return nil
	}

	p.log.Info().Int("series", len(in.Series)).Msg("starting analysis")
	out := p.produce(ctx, p.SystemPrompt(), p.UserPrompt(in))
	if out != nil {
		p.log.Info().
			Float64("soft_landing_score", out.SoftLandingScore).
			Str("inflation_trend", out.InflationTrend).
			Float64("confidence", out.Confidence).
			Msg("economic analysis done")
	}
	return out
}
