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

// CorrelationInput carries the aligned price histories plus the optional user
// portfolio for the cross-asset producer.
type CorrelationInput struct {
	Histories map[string]*models.AssetPriceHistory
	Portfolio *models.Portfolio
}

// CorrelationProducer maps cross-asset correlation structure and flags
// concentration risk against the user's portfolio.
type CorrelationProducer struct {
	pipeline[models.CorrelationAnalysis]
}

func NewCorrelationProducer(gen llm.Generator, set Settings, log zerolog.Logger) *CorrelationProducer {
	return &CorrelationProducer{
		pipeline: newPipeline[models.CorrelationAnalysis](models.AgentCorrelation, gen, set, log),
	}
}

func (p *CorrelationProducer) Name() string { return models.AgentCorrelation }

func (p *CorrelationProducer) SystemPrompt() string {
	return `You are a cross-asset strategist focused on correlation structure and diversification risk.

Your core tasks:
1. Read the correlation matrix between the tracked assets
2. Flag pairs whose correlation is unusually high (diversification failure) or has flipped sign
3. Relate the structure to the user's portfolio when one is given

Interpretation guide:
- correlation above 0.8: the pair moves as one; diversification between them is illusory
- correlation below 0: the pair hedges; note whether that is stable or recent
- a crypto asset tracking an equity index means risk-on/risk-off is dominating

Output requirements (JSON, strictly following the schema):
- correlation_matrix: map of "A-B" pair keys to coefficients in [-1, 1]
- risk_warnings: list of concrete warnings (strings)
- portfolio_impact: optional map from holding symbol to an impact note
- summary: at most 500 characters
- confidence: 0.0 to 1.0

The matrix in the input is computed from recent prices; treat it as ground
truth and do not invent coefficients for pairs that are not listed.`
}

// PrecomputeMatrix builds the pairwise Pearson matrix over the histories,
// each unordered pair once under the key "A-B" with symbols sorted. Pairs
// where either side lacks enough data are omitted.
func PrecomputeMatrix(histories map[string]*models.AssetPriceHistory) map[string]float64 {
	symbols := make([]string, 0, len(histories))
	for sym := range histories {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	matrix := make(map[string]float64)
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			a, b := histories[symbols[i]], histories[symbols[j]]
			if coef, ok := a.Correlation(b); ok {
				matrix[symbols[i]+"-"+symbols[j]] = coef
			}
		}
	}
	return matrix
}

func (p *CorrelationProducer) UserPrompt(in CorrelationInput) string {
	var b strings.Builder
	b.WriteString("Analyze the following cross-asset data:\n\n")

	if len(in.Histories) == 0 {
		b.WriteString("[warning] no price-history data available.\n")
		b.WriteString("Analyze under that constraint and set confidence low.\n")
		return b.String()
	}

	b.WriteString("[Recent Performance]\n")
	symbols := make([]string, 0, len(in.Histories))
	for sym := range in.Histories {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		h := in.Histories[sym]
		if change, ok := h.Change(); ok {
			fmt.Fprintf(&b, "- %s: %+.2f%% over %d days\n", sym, change, len(h.Prices))
		} else {
			fmt.Fprintf(&b, "- %s: insufficient price data\n", sym)
		}
	}

	matrix := PrecomputeMatrix(in.Histories)
	b.WriteString("\n[Correlation Matrix (Pearson, recent window)]\n")
	if len(matrix) == 0 {
		b.WriteString("no pair had enough overlapping data\n")
	} else {
		pairs := make([]string, 0, len(matrix))
		for k := range matrix {
			pairs = append(pairs, k)
		}
		sort.Strings(pairs)
		for _, k := range pairs {
			fmt.Fprintf(&b, "- %s: %+.3f\n", k, matrix[k])
		}
	}

	b.WriteString("\n[User Portfolio]\n")
	if in.Portfolio == nil || len(in.Portfolio.Holdings) == 0 {
		b.WriteString("no portfolio provided; skip portfolio_impact\n")
	} else {
		for _, h := range in.Portfolio.Holdings {
			fmt.Fprintf(&b, "- %s: %.4f units\n", h.Symbol, h.Quantity)
		}
	}

	b.WriteString("\n[Analysis Request]\n")
	b.WriteString("1. Read the correlation structure and name the dominant regime\n")
	b.WriteString("2. Flag diversification failures (pairs above 0.8) and active hedges (below 0)\n")
	b.WriteString("3. If a portfolio is given, assess its exposure to the flagged pairs\n")
	return b.String()
}

func (p *CorrelationProducer) Produce(ctx context.Context, in CorrelationInput) *models.CorrelationAnalysis {
	p.log.Info().Int("assets", len(in.Histories)).Msg("starting analysis")
	out := p.produce(ctx, p.SystemPrompt(), p.UserPrompt(in))
	if out != nil {
		p.log.Info().
			Int("pairs", len(out.CorrelationMatrix)).
			Int("warnings", len(out.RiskWarnings)).
			Float64("confidence", out.Confidence).
			Msg("correlation analysis done")
	}
	return out
}
