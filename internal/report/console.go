// Package report renders a ComparisonResult for humans and machines. It
// only consumes the analyzer's data structures and never reaches back
// into parsing or scoring.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/dbcompare/internal/analysis"
	"github.com/mwiater/dbcompare/internal/scoring"
)

var (
	bannerStyle  = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	winnerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	calloutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// Render produces the terminal summary: ranked table, category breakdown,
// leaders, and the divergence callout when the score winner is not the
// scalability leader.
func Render(result *analysis.ComparisonResult) string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render("Database Performance Comparison") + "\n\n")

	b.WriteString(headerStyle.Render("Ranking") + "\n")
	b.WriteString(fmt.Sprintf("%-4s %-16s %8s %12s %12s %10s %9s\n",
		"#", "Backend", "Score", "Req/s", "Avg ms", "Fail %", "Users %"))
	for i, r := range result.Ranked {
		name := r.Backend
		if i == 0 {
			name = winnerStyle.Render(name)
		}
		b.WriteString(fmt.Sprintf("%-4d %-16s %8.1f %12.1f %12.2f %9.2f%% %8.1f%%\n",
			i+1, name,
			r.OverallScore,
			r.Metrics.RequestsPerSec,
			r.Metrics.AvgLatencyMs,
			r.Metrics.FailureRate*100,
			r.Metrics.ScalabilityRatio*100,
		))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Category scores") + "\n")
	b.WriteString(fmt.Sprintf("%-16s", "Backend"))
	for _, c := range scoring.Categories() {
		b.WriteString(fmt.Sprintf(" %12s", c))
	}
	b.WriteString("\n")
	for _, r := range result.Ranked {
		b.WriteString(fmt.Sprintf("%-16s", r.Backend))
		for _, c := range scoring.Categories() {
			b.WriteString(fmt.Sprintf(" %12.1f", r.CategoryScores[c]))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	f := result.Findings
	b.WriteString(headerStyle.Render("Leaders") + "\n")
	b.WriteString(fmt.Sprintf("  Score winner:       %s\n", f.ScoreWinner))
	b.WriteString(fmt.Sprintf("  Scalability leader: %s\n", f.ScalabilityLeader))
	b.WriteString(fmt.Sprintf("  Throughput leader:  %s\n", f.ThroughputLeader))
	b.WriteString(fmt.Sprintf("  Latency leader:     %s\n", f.LatencyLeader))
	b.WriteString(fmt.Sprintf("  Efficiency leader:  %s\n", f.EfficiencyLeader))
	if f.PerformanceGapPct > 0 {
		b.WriteString(fmt.Sprintf("  Score gap:          %.1f%% over the runner-up\n", f.PerformanceGapPct))
	}
	b.WriteString("\n")

	if f.Divergence {
		b.WriteString(calloutStyle.Render("Reality check: "+f.DivergenceNote) + "\n\n")
	}

	if len(f.Recommendations) > 0 {
		b.WriteString(headerStyle.Render("Recommendations") + "\n")
		for _, rec := range f.Recommendations {
			b.WriteString("  - " + rec + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render(fmt.Sprintf("generated %s", result.GeneratedAt.Format("2006-01-02 15:04:05 MST"))) + "\n")
	return b.String()
}
