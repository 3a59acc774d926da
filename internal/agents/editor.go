package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/llm"
	"github.com/ikchen/macropulse/internal/models"
)

// EditorInput carries whatever the domain producers managed to deliver this
// cycle. Any field may be nil.
type EditorInput struct {
	Fed  *models.FedAnalysis
	Econ *models.EconomicAnalysis
	Pred *models.PredictionAnalysis
	Corr *models.CorrelationAnalysis
}

// present returns how many domain analyses the cycle delivered.
func (in EditorInput) present() int {
	n := 0
	if in.Fed != nil {
		n++
	}
	if in.Econ != nil {
		n++
	}
	if in.Pred != nil {
		n++
	}
	if in.Corr != nil {
		n++
	}
	return n
}

// meanConfidence averages confidence over the analyses that are present.
// The denominator counts present analyses only.
func (in EditorInput) meanConfidence() float64 {
	var sum float64
	n := 0
	if in.Fed != nil {
		sum += in.Fed.Confidence
		n++
	}
	if in.Econ != nil {
		sum += in.Econ.Confidence
		n++
	}
	if in.Pred != nil {
		sum += in.Pred.Confidence
		n++
	}
	if in.Corr != nil {
		sum += in.Corr.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// EditorProducer synthesizes the domain analyses into one final report. It
// always returns a report: when synthesis cannot run or fails, a
// deterministic fallback report takes its place.
type EditorProducer struct {
	pipeline[models.FinalReport]
}

func NewEditorProducer(gen llm.Generator, set Settings, log zerolog.Logger) *EditorProducer {
	return &EditorProducer{
		pipeline: newPipeline[models.FinalReport](models.AgentEditor, gen, set, log),
	}
}

func (p *EditorProducer) Name() string { return models.AgentEditor }

func (p *EditorProducer) SystemPrompt() string {
	return `You are the chief editor of a macro research desk. Four analysts (Fed policy, economic data, prediction markets, cross-asset correlation) hand you their findings; you synthesize them into one decision-ready report.

Editorial principles:
1. Lead with what matters: the reader has two minutes
2. Surface disagreements between analysts instead of papering over them
3. Give advice the reader can act on, with explicit caveats
4. When analysts are missing, say so and lower the confidence score

Output requirements (JSON, strictly following the schema):
- tldr: one-paragraph takeaway, at most 200 characters
- highlights: ordered list of the most important findings (strings)
- investment_advice: actionable guidance, at most 1000 characters
- confidence_score: 0.0 to 1.0, reflecting both analyst confidence and coverage
- agent_reports: may be left empty, it is filled in downstream
- conflicts: contradictions you noticed between the analyses (strings)`
}

func (p *EditorProducer) UserPrompt(in EditorInput, preDetected []string, expectedConfidence float64) string {
	var b strings.Builder
	b.WriteString("Synthesize the following analyst reports into a final report:\n")

	b.WriteString("\n[Fed Policy Analyst]\n")
	if in.Fed == nil {
		b.WriteString("unavailable this cycle\n")
	} else {
		fmt.Fprintf(&b, "tone index: %+.2f (negative = dovish)\n", in.Fed.ToneIndex)
		fmt.Fprintf(&b, "yield curve: %s\n", in.Fed.YieldCurveStatus)
		fmt.Fprintf(&b, "key risks: %s\n", strings.Join(in.Fed.KeyRisks, "; "))
		fmt.Fprintf(&b, "summary: %s\n", in.Fed.Summary)
		fmt.Fprintf(&b, "confidence: %.2f\n", in.Fed.Confidence)
	}

	b.WriteString("\n[Economic Data Analyst]\n")
	if in.Econ == nil {
		b.WriteString("unavailable this cycle\n")
	} else {
		fmt.Fprintf(&b, "soft landing score: %.1f/10\n", in.Econ.SoftLandingScore)
		fmt.Fprintf(&b, "inflation trend: %s, employment: %s\n", in.Econ.InflationTrend, in.Econ.EmploymentStatus)
		fmt.Fprintf(&b, "summary: %s\n", in.Econ.Summary)
		fmt.Fprintf(&b, "confidence: %.2f\n", in.Econ.Confidence)
	}

	b.WriteString("\n[Prediction Market Analyst]\n")
	if in.Pred == nil {
		b.WriteString("unavailable this cycle\n")
	} else {
		fmt.Fprintf(&b, "market anxiety: %+.2f (positive = anxious)\n", in.Pred.MarketAnxietyScore)
		fmt.Fprintf(&b, "surprising markets: %s\n", strings.Join(in.Pred.SurprisingMarkets, "; "))
		fmt.Fprintf(&b, "summary: %s\n", in.Pred.Summary)
		fmt.Fprintf(&b, "confidence: %.2f\n", in.Pred.Confidence)
	}

	b.WriteString("\n[Correlation Analyst]\n")
	if in.Corr == nil {
		b.WriteString("unavailable this cycle\n")
	} else {
		fmt.Fprintf(&b, "risk warnings: %s\n", strings.Join(in.Corr.RiskWarnings, "; "))
		fmt.Fprintf(&b, "summary: %s\n", in.Corr.Summary)
		fmt.Fprintf(&b, "confidence: %.2f\n", in.Corr.Confidence)
	}

	b.WriteString("\n[Pre-Detected Conflicts]\n")
	if len(preDetected) == 0 {
		b.WriteString("none detected by the rule engine\n")
	} else {
		for _, c := range preDetected {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}

	fmt.Fprintf(&b, "\nMean analyst confidence: %.4f. Anchor confidence_score near it, adjusted for coverage.\n", expectedConfidence)
	return b.String()
}

// Aggregate builds the final report for one cycle. It never returns nil and
// never panics: synthesis failures of any kind collapse to the fallback
// report.
func (p *EditorProducer) Aggregate(ctx context.Context, in EditorInput) *models.FinalReport {
	present := in.present()
	p.log.Info().Int("present", present).Msg("starting synthesis")

	if present == 0 {
		p.log.Warn().Msg("no analyst output this cycle, returning fallback report")
		return p.fallbackReport(in, nil)
	}

	preDetected := DetectConflicts(in.Fed, in.Econ, in.Pred, in.Corr)
	expected := in.meanConfidence()

	report := p.synthesize(ctx, in, preDetected, expected)
	if report == nil {
		p.log.Warn().Msg("synthesis failed, returning fallback report")
		return p.fallbackReport(in, preDetected)
	}

	if len(report.AgentReports) == 0 {
		report.AgentReports = agentReports(in)
	}
	report.Conflicts = mergeConflicts(report.Conflicts, preDetected)
	report.Timestamp = time.Now()

	p.log.Info().
		Float64("confidence", report.ConfidenceScore).
		Int("conflicts", len(report.Conflicts)).
		Msg("final report ready")
	return report
}

// synthesize runs the produce pipeline against the report schema, absorbing
// panics into a nil result.
func (p *EditorProducer) synthesize(ctx context.Context, in EditorInput, preDetected []string, expected float64) (report *models.FinalReport) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("synthesis panicked")
			report = nil
		}
	}()
	return p.produce(ctx, p.SystemPrompt(), p.UserPrompt(in, preDetected, expected))
}

// fallbackReport is the deterministic report used when synthesis cannot run
// or fails. No generation call is made. With zero analyses present the
// confidence score is zero and a single canned conflict entry records the
// total outage.
func (p *EditorProducer) fallbackReport(in EditorInput, preDetected []string) *models.FinalReport {
	conflicts := preDetected
	if in.present() == 0 {
		conflicts = []string{"All analyst agents failed this cycle; no cross-checks were possible"}
	}
	if conflicts == nil {
		conflicts = []string{}
	}
	return &models.FinalReport{
		Timestamp: time.Now(),
		TLDR:      "Automated synthesis was unavailable this cycle; the raw analyst statuses are listed below.",
		Highlights: []string{
			"The editorial synthesis step did not complete",
			"Treat this cycle's output as partial",
		},
		InvestmentAdvice: "No synthesized advice is available for this cycle. Do not act on partial signals; wait for the next complete cycle or consult the individual analyst summaries.",
		ConfidenceScore:  in.meanConfidence(),
		AgentReports:     agentReports(in),
		Conflicts:        conflicts,
	}
}

// agentReports derives the per-agent status map from presence and the key
// metrics of each analysis.
func agentReports(in EditorInput) map[string]models.AgentReportStatus {
	reports := make(map[string]models.AgentReportStatus, len(models.AgentNames))
	for _, name := range models.AgentNames {
		reports[name] = models.AgentReportStatus{Status: "unavailable"}
	}
	if in.Fed != nil {
		reports[models.AgentFed] = models.AgentReportStatus{
			Status: "available",
			Metrics: map[string]float64{
				"tone_index": in.Fed.ToneIndex,
				"confidence": in.Fed.Confidence,
			},
			Labels: map[string]string{"yield_curve_status": in.Fed.YieldCurveStatus},
		}
	}
	if in.Econ != nil {
		reports[models.AgentEconomic] = models.AgentReportStatus{
			Status: "available",
			Metrics: map[string]float64{
				"soft_landing_score": in.Econ.SoftLandingScore,
				"confidence":         in.Econ.Confidence,
			},
			Labels: map[string]string{
				"inflation_trend":   in.Econ.InflationTrend,
				"employment_status": in.Econ.EmploymentStatus,
			},
		}
	}
	if in.Pred != nil {
		reports[models.AgentPrediction] = models.AgentReportStatus{
			Status: "available",
			Metrics: map[string]float64{
				"market_anxiety_score": in.Pred.MarketAnxietyScore,
				"confidence":           in.Pred.Confidence,
			},
		}
	}
	if in.Corr != nil {
		reports[models.AgentCorrelation] = models.AgentReportStatus{
			Status: "available",
			Metrics: map[string]float64{
				"pairs":      float64(len(in.Corr.CorrelationMatrix)),
				"confidence": in.Corr.Confidence,
			},
		}
	}
	return reports
}

// mergeConflicts combines the model-reported conflicts with the rule-engine
// findings. An empty model list is replaced wholesale; otherwise rule
// findings are appended unless an exact duplicate already exists.
func mergeConflicts(reported, preDetected []string) []string {
	if len(reported) == 0 {
		if preDetected == nil {
			return []string{}
		}
		return preDetected
	}
	seen := make(map[string]bool, len(reported))
	for _, c := range reported {
		seen[c] = true
	}
	for _, c := range preDetected {
		if !seen[c] {
			reported = append(reported, c)
			seen[c] = true
		}
	}
	return reported
}
