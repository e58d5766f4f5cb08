package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new TUI instance
func NewTUI(maxConcurrent int) *TUI {
	model := NewModel(maxConcurrent)
	program := tea.NewProgram(&model, tea.WithAltScreen())

	return &TUI{
		program: program,
		model:   &model,
	}
}

// Start starts the TUI
func (t *TUI) Start() error {
	go func() {
		// Send initial tick to start the spinner
		time.Sleep(100 * time.Millisecond)
		t.program.Send(TickMsg(time.Now()))
	}()

	_, err := t.program.Run()
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// StartBranch notifies the TUI that a harvest branch has started
func (t *TUI) StartBranch(id, label string) {
	t.Send(SendBranchStart(id, label))
}

// CompleteBranch notifies the TUI that a branch finished harvesting
func (t *TUI) CompleteBranch(id string, matches, skipped int) {
	t.Send(SendBranchComplete(id, matches, skipped))
}

// FailBranch notifies the TUI that a branch has failed
func (t *TUI) FailBranch(id string, err error) {
	t.Send(SendBranchError(id, err))
}

// UpdateOverall updates the whole-harvest progress
func (t *TUI) UpdateOverall(done, total int, eta time.Duration, hasETA bool) {
	t.Send(SendOverallProgress(done, total, eta, hasETA))
}

// UpdatePacing updates the request pacing status
func (t *TUI) UpdatePacing(requests int, gap time.Duration, nextAt time.Time) {
	t.Send(SendPacing(requests, gap, nextAt))
}

// Log sends a log message to the TUI
func (t *TUI) Log(level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	t.Send(SendLog(level, message))
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}

// IsPaused returns whether the harvest is paused
func (t *TUI) IsPaused() bool {
	t.model.mu.RLock()
	defer t.model.mu.RUnlock()
	return t.model.isPaused
}
