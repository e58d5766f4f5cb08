package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Message types for the TUI

// BranchStartMsg is sent when a harvest branch starts
type BranchStartMsg struct {
	ID    string
	Label string
}

// BranchCompleteMsg is sent when a branch finishes harvesting
type BranchCompleteMsg struct {
	ID      string
	Matches int
	Skipped int
}

// BranchErrorMsg is sent when a branch fails
type BranchErrorMsg struct {
	ID    string
	Error error
}

// OverallProgressMsg is sent to update whole-harvest progress
type OverallProgressMsg struct {
	Done   int
	Total  int
	ETA    time.Duration
	HasETA bool
}

// PacingMsg is sent to update request pacing status
type PacingMsg struct {
	Requests int
	Gap      time.Duration
	NextAt   time.Time
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Regular UI update tick
		return m, tea.Batch(
			tickCmd(),
			m.spinner.Tick,
		)

	case BranchStartMsg:
		m.StartBranch(msg.ID, msg.Label)
		m.AddLogMessage("INFO", "Harvesting "+msg.Label)
		return m, nil

	case BranchCompleteMsg:
		m.CompleteBranch(msg.ID, msg.Matches, msg.Skipped)
		if branch, ok := m.branches[msg.ID]; ok {
			m.AddLogMessage("SUCCESS", "Harvested "+branch.Label)
		}
		return m, nil

	case BranchErrorMsg:
		m.FailBranch(msg.ID, msg.Error)
		if branch, ok := m.branches[msg.ID]; ok {
			m.AddLogMessage("ERROR", "Failed "+branch.Label+" - "+msg.Error.Error())
		}
		return m, nil

	case OverallProgressMsg:
		m.UpdateOverall(msg.Done, msg.Total, msg.ETA, msg.HasETA)
		return m, nil

	case PacingMsg:
		m.UpdatePacing(msg.Requests, msg.Gap, msg.NextAt)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "p", "P":
		m.isPaused = !m.isPaused
		if m.isPaused {
			m.AddLogMessage("WARN", "Harvest paused by user")
		} else {
			m.AddLogMessage("INFO", "Harvest resumed by user")
		}
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		// Clear logs
		m.mu.Lock()
		m.logMessages = []LogMessage{}
		m.mu.Unlock()
		return m, nil
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Helper functions for external use

// SendBranchStart creates a message for a starting branch
func SendBranchStart(id, label string) tea.Msg {
	return BranchStartMsg{
		ID:    id,
		Label: label,
	}
}

// SendBranchComplete creates a message for a finished branch
func SendBranchComplete(id string, matches, skipped int) tea.Msg {
	return BranchCompleteMsg{
		ID:      id,
		Matches: matches,
		Skipped: skipped,
	}
}

// SendBranchError creates a message for a failed branch
func SendBranchError(id string, err error) tea.Msg {
	return BranchErrorMsg{ID: id, Error: err}
}

// SendOverallProgress creates a message to update whole-harvest progress
func SendOverallProgress(done, total int, eta time.Duration, hasETA bool) tea.Msg {
	return OverallProgressMsg{
		Done:   done,
		Total:  total,
		ETA:    eta,
		HasETA: hasETA,
	}
}

// SendPacing creates a message to update request pacing
func SendPacing(requests int, gap time.Duration, nextAt time.Time) tea.Msg {
	return PacingMsg{
		Requests: requests,
		Gap:      gap,
		NextAt:   nextAt,
	}
}

// SendLog creates a log message
func SendLog(level, message string) tea.Msg {
	return LogMsg{Level: level, Message: message}
}
