package llm

import (
	"testing"

	"github.com/rs/zerolog"
)

type testOutput struct {
	Score      float64 `json:"score" validate:"gte=0,lte=10"`
	Label      string  `json:"label" validate:"required,oneof=up down flat"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

func TestNormalize_CleanJSON(t *testing.T) {
	out, err := Normalize[testOutput](zerolog.Nop(), `{"score": 7.5, "label": "up", "confidence": 0.8}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Score != 7.5 || out.Label != "up" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestNormalize_RecoversFencedJSON(t *testing.T) {
	raw := "```json\n{\"score\": 3.0, \"label\": \"down\", \"confidence\": 0.6}\n```"
	out, err := Normalize[testOutput](zerolog.Nop(), raw)
	if err != nil {
		t.Fatalf("expected repair pass to recover, got %v", err)
	}
	if out.Label != "down" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestNormalize_RecoversJSONWithProse(t *testing.T) {
	raw := "Here is my analysis:\n{\"score\": 5.0, \"label\": \"flat\", \"confidence\": 0.5}\nLet me know if you need more."
	out, err := Normalize[testOutput](zerolog.Nop(), raw)
	if err != nil {
		t.Fatalf("expected repair pass to recover, got %v", err)
	}
	if out.Score != 5.0 {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestNormalize_RejectsOutOfRangeField(t *testing.T) {
	// One out-of-range field rejects the whole output, no partial acceptance.
	_, err := Normalize[testOutput](zerolog.Nop(), `{"score": 15.0, "label": "up", "confidence": 0.8}`)
	if err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestNormalize_ValidationFailureIsNotRepaired(t *testing.T) {
	raw := "```json\n{\"score\": 3.0, \"label\": \"sideways\", \"confidence\": 0.6}\n```"
	if _, err := Normalize[testOutput](zerolog.Nop(), raw); err == nil {
		t.Fatal("expected failure for an invalid enum value")
	}
}

func TestNormalize_UnrepairableGarbage(t *testing.T) {
	if _, err := Normalize[testOutput](zerolog.Nop(), "sorry, I cannot answer that"); err == nil {
		t.Fatal("expected failure for non-JSON text")
	}
}

func TestRepairJSON(t *testing.T) {
	repaired, ok := repairJSON("```json\n{\"a\": 1}\n```")
	if !ok || repaired != `{"a": 1}` {
		t.Fatalf("unexpected repair result: %q %v", repaired, ok)
	}
	if _, ok := repairJSON("no braces here"); ok {
		t.Fatal("expected repair to fail without braces")
	}
}
