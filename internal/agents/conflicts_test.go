package agents

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ikchen/macropulse/internal/models"
)

func TestDetectConflicts_PolicyDataDivergence(t *testing.T) {
	fed := &models.FedAnalysis{ToneIndex: -0.5, Confidence: 0.8, YieldCurveStatus: models.CurveNormal}
	econ := &models.EconomicAnalysis{SoftLandingScore: 8.5, Confidence: 0.8}

	conflicts := DetectConflicts(fed, econ, nil, nil)

	if len(conflicts) != 1 {
		t.Fatalf("expected exactly one conflict, got %v", conflicts)
	}
	if !strings.Contains(conflicts[0], "Policy/data divergence") {
		t.Fatalf("unexpected conflict message: %q", conflicts[0])
	}
}

func TestDetectConflicts_AbsentOperandsSkipRules(t *testing.T) {
	// Rules referencing nil analyses must be skipped, never fire or panic.
	if got := DetectConflicts(nil, nil, nil, nil); len(got) != 0 {
		t.Fatalf("expected no conflicts with no inputs, got %v", got)
	}

	pred := &models.PredictionAnalysis{MarketAnxietyScore: 0.9, Confidence: 0.7}
	if got := DetectConflicts(nil, nil, pred, nil); len(got) != 0 {
		t.Fatalf("anxiety rules need a second operand, got %v", got)
	}
}

func TestDetectConflicts_Deterministic(t *testing.T) {
	fed := &models.FedAnalysis{ToneIndex: 0.4, YieldCurveStatus: models.CurveInverted, Confidence: 0.7}
	econ := &models.EconomicAnalysis{SoftLandingScore: 3.0, Confidence: 0.7}
	pred := &models.PredictionAnalysis{MarketAnxietyScore: 0.6, Confidence: 0.7}
	corr := &models.CorrelationAnalysis{
		CorrelationMatrix: map[string]float64{"BTC-USD-QQQ": 0.92},
		Confidence:        0.7,
	}

	first := DetectConflicts(fed, econ, pred, corr)
	for i := 0; i < 10; i++ {
		if got := DetectConflicts(fed, econ, pred, corr); !reflect.DeepEqual(got, first) {
			t.Fatalf("detection not deterministic: %v vs %v", first, got)
		}
	}
	if len(first) == 0 {
		t.Fatal("expected conflicts for contradictory inputs")
	}
}

func TestDetectConflicts_RuleOrderFollowsDeclaration(t *testing.T) {
	fed := &models.FedAnalysis{ToneIndex: 0.4, YieldCurveStatus: models.CurveInverted, Confidence: 0.7}
	econ := &models.EconomicAnalysis{SoftLandingScore: 6.5, Confidence: 0.7}
	pred := &models.PredictionAnalysis{MarketAnxietyScore: 0.6, Confidence: 0.7}

	conflicts := DetectConflicts(fed, econ, pred, nil)

	if len(conflicts) != 2 {
		t.Fatalf("expected two conflicts, got %v", conflicts)
	}
	if !strings.Contains(conflicts[0], "Market pressure vs policy stance") {
		t.Fatalf("expected the anxiety/policy rule first, got %q", conflicts[0])
	}
	if !strings.Contains(conflicts[1], "Curve warning vs data") {
		t.Fatalf("expected the curve rule second, got %q", conflicts[1])
	}
}

func TestDetectConflicts_CorrelationRules(t *testing.T) {
	tight := &models.CorrelationAnalysis{
		CorrelationMatrix: map[string]float64{"BTC-USD-QQQ": 0.85},
		Confidence:        0.7,
	}
	got := DetectConflicts(nil, nil, nil, tight)
	if len(got) != 1 || !strings.Contains(got[0], "Co-movement increasing") {
		t.Fatalf("expected co-movement warning, got %v", got)
	}

	decoupled := &models.CorrelationAnalysis{
		CorrelationMatrix: map[string]float64{"BTC-QQQ": -0.2},
		Confidence:        0.7,
	}
	got = DetectConflicts(nil, nil, nil, decoupled)
	if len(got) != 1 || !strings.Contains(got[0], "Decoupling") {
		t.Fatalf("expected decoupling warning, got %v", got)
	}

	absent := &models.CorrelationAnalysis{
		CorrelationMatrix: map[string]float64{"SPY-QQQ": 0.95},
		Confidence:        0.7,
	}
	if got = DetectConflicts(nil, nil, nil, absent); len(got) != 0 {
		t.Fatalf("expected no warning without the tracked pair, got %v", got)
	}
}
