package models

import "time"

// Canonical agent names, in the fixed rendering order used everywhere a
// cycle's results are enumerated.
const (
	AgentFed         = "fed"
	AgentEconomic    = "economic"
	AgentPrediction  = "prediction"
	AgentCorrelation = "correlation"
	AgentEditor      = "editor"
)

// AgentNames lists the four domain agents in canonical order.
var AgentNames = []string{AgentFed, AgentEconomic, AgentPrediction, AgentCorrelation}

// Yield curve status labels.
const (
	CurveNormal   = "normal"
	CurveInverted = "inverted"
	CurveSteep    = "steep"
)

// FedAnalysis is the structured output of the monetary-policy producer.
// Range tags are enforced by the normalizer; any violation rejects the whole
// output, never individual fields.
type FedAnalysis struct {
	ToneIndex               float64  `json:"tone_index" validate:"gte=-1,lte=1"`
	KeyRisks                []string `json:"key_risks" validate:"required"`
	Summary                 string   `json:"summary" validate:"required,max=500"`
	Confidence              float64  `json:"confidence" validate:"gte=0,lte=1"`
	YieldCurveStatus        string   `json:"yield_curve_status" validate:"required,oneof=normal inverted steep"`
	NextDecisionProbability *float64 `json:"next_decision_probability,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// EconomicAnalysis is the structured output of the economic-indicator producer.
type EconomicAnalysis struct {
	SoftLandingScore float64            `json:"soft_landing_score" validate:"gte=0,lte=10"`
	InflationTrend   string             `json:"inflation_trend" validate:"required,oneof=up down flat"`
	EmploymentStatus string             `json:"employment_status" validate:"required,oneof=strong weak stable"`
	KeyIndicators    map[string]float64 `json:"key_indicators" validate:"required"`
	Summary          string             `json:"summary" validate:"required,max=500"`
	Confidence       float64            `json:"confidence" validate:"gte=0,lte=1"`
}

// KeyEvent is one notable prediction-market move.
type KeyEvent struct {
	Market      string  `json:"market" validate:"required"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
	Change7D    float64 `json:"change_7d"`
	Volume      float64 `json:"volume" validate:"gte=0"`
}

// PredictionAnalysis is the structured output of the sentiment producer.
type PredictionAnalysis struct {
	MarketAnxietyScore float64    `json:"market_anxiety_score" validate:"gte=-1,lte=1"`
	KeyEvents          []KeyEvent `json:"key_events" validate:"required,dive"`
	SurprisingMarkets  []string   `json:"surprising_markets" validate:"required"`
	Summary            string     `json:"summary" validate:"required,max=500"`
	Confidence         float64    `json:"confidence" validate:"gte=0,lte=1"`
}

// CorrelationAnalysis is the structured output of the cross-asset producer.
type CorrelationAnalysis struct {
	CorrelationMatrix map[string]float64 `json:"correlation_matrix" validate:"required,dive,gte=-1,lte=1"`
	RiskWarnings      []string           `json:"risk_warnings" validate:"required"`
	PortfolioImpact   map[string]string  `json:"portfolio_impact,omitempty"`
	Summary           string             `json:"summary" validate:"required,max=500"`
	Confidence        float64            `json:"confidence" validate:"gte=0,lte=1"`
}

// AgentReportStatus is one entry of FinalReport.AgentReports.
type AgentReportStatus struct {
	Status  string             `json:"status" validate:"required,oneof=available unavailable"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Labels  map[string]string  `json:"labels,omitempty"`
}

// FinalReport is the composite report produced once per cycle by the editor.
// It is immutable once returned.
type FinalReport struct {
	Timestamp        time.Time                    `json:"timestamp"`
	TLDR             string                       `json:"tldr" validate:"required,max=200"`
	Highlights       []string                     `json:"highlights" validate:"required"`
	InvestmentAdvice string                       `json:"investment_advice" validate:"required,max=1000"`
	ConfidenceScore  float64                      `json:"confidence_score" validate:"gte=0,lte=1"`
	AgentReports     map[string]AgentReportStatus `json:"agent_reports"`
	Conflicts        []string                     `json:"conflicts"`
}
