package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ikchen/macropulse/internal/models"
)

func sampleReport() *models.FinalReport {
	return &models.FinalReport{
		Timestamp:        time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		TLDR:             "Steady markets, mild policy risk.",
		Highlights:       []string{"Curve normal", "Inflation cooling"},
		InvestmentAdvice: "Stay diversified.",
		ConfidenceScore:  0.75,
		AgentReports: map[string]models.AgentReportStatus{
			models.AgentFed: {
				Status:  "available",
				Metrics: map[string]float64{"tone_index": -0.2},
				Labels:  map[string]string{"yield_curve_status": "normal"},
			},
		},
		Conflicts: []string{"Policy/data divergence: example"},
	}
}

func TestRender_ContainsAllSections(t *testing.T) {
	md := Render(sampleReport())

	for _, want := range []string{
		"# Macro Pulse Report",
		"## TL;DR",
		"Steady markets, mild policy risk.",
		"**Confidence: 75%**",
		"- Curve normal",
		"## Investment Advice",
		"Policy/data divergence: example",
		"| fed | available |",
		"| economic | unavailable |",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in rendered report:\n%s", want, md)
		}
	}
}

func TestRender_NoConflicts(t *testing.T) {
	r := sampleReport()
	r.Conflicts = nil
	if md := Render(r); !strings.Contains(md, "No conflicts detected") {
		t.Fatal("expected the empty-conflicts note")
	}
}

func TestWrite_CreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()

	path, err := Write(sampleReport(), dir)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasSuffix(path, "report_2026-08-30_14-30-00.md") {
		t.Fatalf("unexpected file name: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.Contains(string(data), "Macro Pulse Report") {
		t.Fatal("written file missing content")
	}
}
