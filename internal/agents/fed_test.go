package agents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ikchen/macropulse/internal/models"
)

func sampleYields(tenYear, short float64) []models.TreasuryYield {
	now := time.Now()
	return []models.TreasuryYield{
		{Symbol: "^IRX", Maturity: "3M", YieldValue: short, Timestamp: now},
		{Symbol: "^TNX", Maturity: "10Y", YieldValue: tenYear, Timestamp: now},
		{Symbol: "^TYX", Maturity: "30Y", YieldValue: tenYear + 0.3, Timestamp: now},
	}
}

func TestFedProducer_SkipsWithoutYields(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"{}"}}
	fed := NewFedProducer(gen, fastSettings(), zerolog.Nop())

	if out := fed.Produce(context.Background(), FedInput{}); out != nil {
		t.Fatalf("expected nil without yield data, got %+v", out)
	}
	if gen.calls != 0 {
		t.Fatalf("expected no generation calls, got %d", gen.calls)
	}
}

func TestFedProducer_PromptWarnsOnInversion(t *testing.T) {
	fed := NewFedProducer(&fakeGenerator{}, fastSettings(), zerolog.Nop())

	prompt := fed.UserPrompt(FedInput{Yields: sampleYields(4.0, 5.2)})
	if !strings.Contains(prompt, "yield curve is inverted") {
		t.Fatalf("expected inversion warning in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "10Y - 3M spread") {
		t.Fatalf("expected spread line in prompt:\n%s", prompt)
	}
}

func TestFedProducer_PromptMarksMissingSections(t *testing.T) {
	fed := NewFedProducer(&fakeGenerator{}, fastSettings(), zerolog.Nop())

	prompt := fed.UserPrompt(FedInput{Yields: sampleYields(4.3, 4.0)})
	if strings.Count(prompt, "no data available") != 2 {
		t.Fatalf("expected placeholders for expectations and markets:\n%s", prompt)
	}
}

func TestFedProducer_ProduceParsesResponse(t *testing.T) {
	response := `{
		"tone_index": 0.2,
		"key_risks": ["sticky services inflation"],
		"summary": "Mildly hawkish hold expected.",
		"confidence": 0.7,
		"yield_curve_status": "normal"
	}`
	gen := &fakeGenerator{responses: []string{response}}
	fed := NewFedProducer(gen, fastSettings(), zerolog.Nop())

	out := fed.Produce(context.Background(), FedInput{Yields: sampleYields(4.3, 4.0)})
	if out == nil {
		t.Fatal("expected a parsed analysis")
	}
	if out.ToneIndex != 0.2 || out.YieldCurveStatus != models.CurveNormal {
		t.Fatalf("unexpected analysis: %+v", out)
	}
}

func TestFedProducer_MalformedResponseYieldsNil(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"I think the Fed will hold."}}
	fed := NewFedProducer(gen, fastSettings(), zerolog.Nop())

	if out := fed.Produce(context.Background(), FedInput{Yields: sampleYields(4.3, 4.0)}); out != nil {
		t.Fatalf("expected nil for unparseable output, got %+v", out)
	}
}

func TestCurveStatus(t *testing.T) {
	if got := curveStatus(sampleYields(4.0, 5.2)); got != models.CurveInverted {
		t.Fatalf("expected inverted, got %s", got)
	}
	if got := curveStatus(sampleYields(6.5, 4.0)); got != models.CurveSteep {
		t.Fatalf("expected steep, got %s", got)
	}
	if got := curveStatus(sampleYields(4.3, 4.0)); got != models.CurveNormal {
		t.Fatalf("expected normal, got %s", got)
	}
	if got := curveStatus(nil); got != models.CurveNormal {
		t.Fatalf("expected normal default, got %s", got)
	}
}
