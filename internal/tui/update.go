package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/speesrl/n8nctl/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case ProbeMsg:
		m.probes = append(m.probes, probeStatus{Target: msg.Target, Ready: msg.Ready})
		return m, nil
	case EventMsg:
		id := msg.Event.AssertionID
		if id == "" {
			return m, nil
		}
		m.ensureAssertion(id)
		if msg.Event.Outcome == nil {
			running := m.outcomes[id]
			running.Status = model.StatusRunning
			m.outcomes[id] = running
			return m, nil
		}
		previous := m.outcomes[id]
		if previous.Status != msg.Event.Outcome.Status && isTerminal(msg.Event.Outcome.Status) {
			m.completed++
		}
		m.outcomes[id] = *msg.Event.Outcome
		return m, nil
	case DoneMsg:
		m.report = msg.Report
		m.runErr = msg.Err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func isTerminal(status string) bool {
	switch status {
	case model.StatusCreated, model.StatusAlreadySatisfied, model.StatusFailed:
		return true
	}
	return false
}
