package agents

import (
	"fmt"

	"github.com/ikchen/macropulse/internal/models"
)

// Cross-signal thresholds for the conflict rules below.
const (
	dovishTone       = -0.3
	hawkishTone      = 0.3
	mildHawkishTone  = 0.2
	strongEconomy    = 7.0
	weakEconomy      = 4.0
	solidEconomy     = 6.0
	highAnxiety      = 0.5
	moderateAnxiety  = 0.4
	strongOptimism   = -0.5
	tightCorrelation = 0.8
)

// btcQQQKeys lists the matrix keys under which the crypto-vs-index pair may
// appear, depending on which symbol form the upstream used.
var btcQQQKeys = []string{"BTC-USD-QQQ", "BTC_USD-QQQ", "BTC-QQQ"}

// DetectConflicts runs a fixed, ordered rule set over whichever analyses are
// present. Rules referencing a nil operand are skipped. Identical inputs
// always yield the identical, identically ordered list.
func DetectConflicts(
	fed *models.FedAnalysis,
	econ *models.EconomicAnalysis,
	pred *models.PredictionAnalysis,
	corr *models.CorrelationAnalysis,
) []string {
	conflicts := []string{}

	if fed != nil && econ != nil {
		if fed.ToneIndex < dovishTone && econ.SoftLandingScore > strongEconomy {
			conflicts = append(conflicts, fmt.Sprintf(
				"Policy/data divergence: Fed tone is dovish (%.2f) while economic data is strong (soft landing %.1f/10)",
				fed.ToneIndex, econ.SoftLandingScore))
		}
		if fed.ToneIndex > hawkishTone && econ.SoftLandingScore < weakEconomy {
			conflicts = append(conflicts, fmt.Sprintf(
				"Policy/reality gap: Fed tone is hawkish (%.2f) while economic data is weak (soft landing %.1f/10)",
				fed.ToneIndex, econ.SoftLandingScore))
		}
	}

	if pred != nil && econ != nil {
		if pred.MarketAnxietyScore > highAnxiety && econ.SoftLandingScore > strongEconomy {
			conflicts = append(conflicts, fmt.Sprintf(
				"Sentiment/fundamentals gap: markets are anxious (%.2f) while economic data is strong (soft landing %.1f/10)",
				pred.MarketAnxietyScore, econ.SoftLandingScore))
		}
		if pred.MarketAnxietyScore < strongOptimism && econ.SoftLandingScore < weakEconomy {
			conflicts = append(conflicts, fmt.Sprintf(
				"Overconfidence risk: markets are optimistic (%.2f) while economic data is weak (soft landing %.1f/10)",
				pred.MarketAnxietyScore, econ.SoftLandingScore))
		}
	}

	if pred != nil && fed != nil {
		if pred.MarketAnxietyScore > moderateAnxiety && fed.ToneIndex > mildHawkishTone {
			conflicts = append(conflicts, fmt.Sprintf(
				"Market pressure vs policy stance: anxiety is elevated (%.2f) while the Fed stays hawkish (%.2f)",
				pred.MarketAnxietyScore, fed.ToneIndex))
		}
	}

	if fed != nil && econ != nil {
		if fed.YieldCurveStatus == models.CurveInverted && econ.SoftLandingScore > solidEconomy {
			conflicts = append(conflicts, fmt.Sprintf(
				"Curve warning vs data: yield curve is inverted while economic data stays solid (soft landing %.1f/10)",
				econ.SoftLandingScore))
		}
	}

	if corr != nil {
		if coef, ok := btcQQQCorrelation(corr.CorrelationMatrix); ok {
			if coef > tightCorrelation {
				conflicts = append(conflicts, fmt.Sprintf(
					"Co-movement increasing: BTC and QQQ correlation is %.2f, crypto offers little diversification",
					coef))
			}
			if coef < 0 {
				conflicts = append(conflicts, fmt.Sprintf(
					"Decoupling: BTC and QQQ correlation turned negative (%.2f), possible hedge-asset shift",
					coef))
			}
		}
	}

	return conflicts
}

func btcQQQCorrelation(matrix map[string]float64) (float64, bool) {
	for _, key := range btcQQQKeys {
		if coef, ok := matrix[key]; ok {
			return coef, true
		}
	}
	return 0, false
}
