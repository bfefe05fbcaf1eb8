// Package tui renders live bootstrap progress with Bubbletea.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/speesrl/n8nctl/internal/engine"
	"github.com/speesrl/n8nctl/internal/model"
)

// ProbeMsg reports a readiness probe result.
type ProbeMsg struct {
	Target string
	Ready  bool
}

// EventMsg wraps a reconciler event for the TUI event loop.
type EventMsg struct {
	Event engine.Event
}

// DoneMsg signals that the run completed and carries the final report.
type DoneMsg struct {
	Report *model.RunReport
	Err    error
}

type probeStatus struct {
	Target string
	Ready  bool
}

// Model contains the Bubbletea state for the bootstrap run.
type Model struct {
	outcomes  map[string]model.RunOutcome
	order     []string
	probes    []probeStatus
	spinner   spinner.Model
	bar       progress.Model
	total     int
	completed int
	finished  bool
	cancelled bool
	report    *model.RunReport
	runErr    error
}

// NewModel constructs a model tracking the given assertion ids. Each id starts
// in the pending state until the reconciler reports on it.
func NewModel(ids []string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	m := Model{
		outcomes: make(map[string]model.RunOutcome, len(ids)),
		spinner:  sp,
		bar:      bar,
	}
	for _, id := range ids {
		if _, exists := m.outcomes[id]; exists {
			continue
		}
		m.outcomes[id] = model.RunOutcome{AssertionID: id, Status: model.StatusPending}
		m.order = append(m.order, id)
		m.total++
	}
	return m
}

// Init starts the spinner tick loop.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// IsFinished reports whether the run completed or was cancelled.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Report returns the final report, or nil while the run is in flight.
func (m Model) Report() *model.RunReport {
	return m.report
}

func (m *Model) ensureAssertion(id string) {
	if id == "" {
		return
	}
	if _, exists := m.outcomes[id]; !exists {
		m.outcomes[id] = model.RunOutcome{AssertionID: id, Status: model.StatusPending}
		m.order = append(m.order, id)
		m.total++
	}
}
