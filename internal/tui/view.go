package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/speesrl/n8nctl/internal/model"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("n8nctl • bootstrap"))

	if len(m.probes) > 0 {
		sections = append(sections, sectionStyle.Render("Readiness"))
		sections = append(sections, m.renderProbes())
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = math.Min(1.0, float64(m.completed)/float64(m.total))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", m.completed, m.total))
	sections = append(sections, sectionStyle.Render("Progress"))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Left, label, " ", m.bar.ViewAs(ratio)))

	if len(m.order) > 0 {
		sections = append(sections, sectionStyle.Render("Assertions"))
		sections = append(sections, m.renderAssertions())
	}

	if m.finished && m.report != nil {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(RenderSummary(m.report)))
	}
	if m.finished && m.runErr != nil {
		sections = append(sections, failureStyle.Render(m.runErr.Error()))
	}
	if m.cancelled {
		sections = append(sections, failureStyle.Render("cancelled"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderProbes() string {
	var lines []string
	for _, probe := range m.probes {
		icon := failureStyle.Render("✗")
		if probe.Ready {
			icon = successStyle.Render("✓")
		}
		lines = append(lines, fmt.Sprintf(" %s %s", icon, probe.Target))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderAssertions() string {
	var lines []string
	for _, id := range m.order {
		outcome := m.outcomes[id]
		icon := m.statusIcon(outcome.Status)
		line := fmt.Sprintf(" %s %s", icon, id)
		if strings.TrimSpace(outcome.Detail) != "" {
			line = fmt.Sprintf("%s: %s", line, outcome.Detail)
		}
		if outcome.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, outcome.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) statusIcon(status string) string {
	switch status {
	case model.StatusCreated:
		return successStyle.Render("✓")
	case model.StatusAlreadySatisfied:
		return skippedStyle.Render("=")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusRunning:
		return m.spinner.View()
	default:
		return pendingStyle.Render("…")
	}
}

// RenderSummary formats the final counts and failure details for terminal
// output. Also used by the plain, non-interactive code path.
func RenderSummary(report *model.RunReport) string {
	summary := report.Summarize()

	var b strings.Builder
	fmt.Fprintf(&b, "created: %d  already satisfied: %d  failed: %d",
		summary.Created, summary.AlreadySatisfied, summary.Failed)
	for _, failure := range summary.Failures {
		fmt.Fprintf(&b, "\n %s %s: %s", "✗", failure.AssertionID, failure.Detail)
	}
	return b.String()
}
