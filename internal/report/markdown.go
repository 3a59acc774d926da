// Package report renders a final report to Markdown and writes it to the
// output directory.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ikchen/macropulse/internal/models"
)

// Render formats one final report as a Markdown document.
func Render(r *models.FinalReport) string {
	var b strings.Builder

	b.WriteString("# Macro Pulse Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## TL;DR\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.TLDR)
	fmt.Fprintf(&b, "**Confidence: %.0f%%**\n\n", r.ConfidenceScore*100)

	b.WriteString("## Highlights\n\n")
	if len(r.Highlights) == 0 {
		b.WriteString("_none_\n")
	}
	for _, h := range r.Highlights {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	b.WriteString("\n")

	b.WriteString("## Investment Advice\n\n")
	fmt.Fprintf(&b, "%s\n\n", r.InvestmentAdvice)

	b.WriteString("## Signal Conflicts\n\n")
	if len(r.Conflicts) == 0 {
		b.WriteString("No conflicts detected between analyst signals.\n\n")
	} else {
		for _, c := range r.Conflicts {
			fmt.Fprintf(&b, "- ⚠️ %s\n", c)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Analyst Coverage\n\n")
	b.WriteString("| Analyst | Status | Key Metrics |\n")
	b.WriteString("|---------|--------|-------------|\n")
	for _, name := range models.AgentNames {
		status, ok := r.AgentReports[name]
		if !ok {
			status = models.AgentReportStatus{Status: "unavailable"}
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", name, status.Status, formatMetrics(status))
	}
	b.WriteString("\n---\n")
	b.WriteString("_Automated analysis. Not investment advice._\n")

	return b.String()
}

func formatMetrics(s models.AgentReportStatus) string {
	if len(s.Metrics) == 0 && len(s.Labels) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(s.Metrics)+len(s.Labels))
	keys := make([]string, 0, len(s.Metrics))
	for k := range s.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, s.Metrics[k]))
	}
	labelKeys := make([]string, 0, len(s.Labels))
	for k := range s.Labels {
		labelKeys = append(labelKeys, k)
	}
	sort.Strings(labelKeys)
	for _, k := range labelKeys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, s.Labels[k]))
	}
	return strings.Join(parts, ", ")
}

// Write renders the report and stores it under dir with a timestamped name.
// It returns the full path of the written file.
func Write(r *models.FinalReport, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	name := fmt.Sprintf("report_%s.md", r.Timestamp.Format("2006-01-02_15-04-05"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(Render(r)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Timestamp formatting is shared with the display layer.
func FormatCycleTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
