// Package display prints a cycle summary to the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ikchen/macropulse/internal/models"
	"github.com/ikchen/macropulse/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	availableStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	unavailableStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280"))

	conflictStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	adviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))
)

// ShowReport prints the final report summary.
func ShowReport(r *models.FinalReport) {
	var b strings.Builder

	fmt.Fprintf(&b, "Macro Pulse  %s\n\n", report.FormatCycleTime(r.Timestamp))
	fmt.Fprintf(&b, "%s\n\n", r.TLDR)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n\n", r.ConfidenceScore*100)

	b.WriteString("Analysts:\n")
	for _, name := range models.AgentNames {
		status, ok := r.AgentReports[name]
		if ok && status.Status == "available" {
			fmt.Fprintf(&b, "  %s %s\n", availableStyle.Render("●"), name)
		} else {
			fmt.Fprintf(&b, "  %s %s\n", unavailableStyle.Render("○"), name)
		}
	}

	if len(r.Conflicts) > 0 {
		b.WriteString("\nConflicts:\n")
		for _, c := range r.Conflicts {
			fmt.Fprintf(&b, "  %s\n", conflictStyle.Render("⚠ "+c))
		}
	}

	if len(r.Highlights) > 0 {
		b.WriteString("\nHighlights:\n")
		for _, h := range r.Highlights {
			fmt.Fprintf(&b, "  • %s\n", h)
		}
	}

	b.WriteString("\n")
	b.WriteString(adviceStyle.Render(r.InvestmentAdvice))

	fmt.Println(titleStyle.Render("📊 Macro Pulse"))
	fmt.Println(boxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// ShowWritten reports where the markdown file landed.
func ShowWritten(path string) {
	fmt.Printf("\nReport written to %s\n", path)
}
