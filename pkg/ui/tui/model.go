package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BranchState represents the state of a harvest branch
type BranchState int

const (
	BranchActive BranchState = iota
	BranchCompleted
	BranchFailed
)

// BranchItem represents a single harvest branch (an event or a division)
type BranchItem struct {
	ID        string
	Label     string
	Matches   int
	Skipped   int
	State     BranchState
	StartTime time.Time
	Error     error
}

// Model represents the TUI model
type Model struct {
	// UI components
	spinner    spinner.Model
	overallBar progress.Model

	// Branch state
	branches       map[string]*BranchItem
	branchOrder    []string
	activeBranches int
	maxConcurrent  int

	// Stats
	totalMatches     int
	totalSkipped     int
	failedBranches   int
	sessionStartTime time.Time

	// Overall harvest progress
	overallDone   int
	overallTotal  int
	overallETA    time.Duration
	overallHasETA bool

	// Request pacing
	requestCount  int
	requestGap    time.Duration
	nextRequestAt time.Time

	// UI state
	width          int
	height         int
	showHelp       bool
	isPaused       bool
	logMessages    []LogMessage
	maxLogMessages int

	// Mutex for thread safety
	mu sync.RWMutex
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a new TUI model
func NewModel(maxConcurrent int) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		spinner:          s,
		overallBar:       bar,
		branches:         make(map[string]*BranchItem),
		branchOrder:      []string{},
		maxConcurrent:    maxConcurrent,
		sessionStartTime: time.Now(),
		logMessages:      []LogMessage{},
		maxLogMessages:   50,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// StartBranch registers a branch as in flight
func (m *Model) StartBranch(id, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.branches[id] = &BranchItem{
		ID:        id,
		Label:     label,
		State:     BranchActive,
		StartTime: time.Now(),
	}
	m.branchOrder = append(m.branchOrder, id)
	m.activeBranches++
}

// CompleteBranch marks a branch as harvested
func (m *Model) CompleteBranch(id string, matches, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if branch, ok := m.branches[id]; ok {
		branch.State = BranchCompleted
		branch.Matches = matches
		branch.Skipped = skipped
		m.activeBranches--
		m.totalMatches += matches
		m.totalSkipped += skipped
	}
}

// FailBranch marks a branch as failed
func (m *Model) FailBranch(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if branch, ok := m.branches[id]; ok {
		branch.State = BranchFailed
		branch.Error = err
		m.activeBranches--
		m.failedBranches++
	}
}

// UpdateOverall updates the whole-harvest progress counters
func (m *Model) UpdateOverall(done, total int, eta time.Duration, hasETA bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.overallDone = done
	m.overallTotal = total
	m.overallETA = eta
	m.overallHasETA = hasETA
}

// UpdatePacing updates the request pacing status
func (m *Model) UpdatePacing(requests int, gap time.Duration, nextAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestCount = requests
	m.requestGap = gap
	m.nextRequestAt = nextAt
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// GetActiveBranches returns a slice of in-flight branches
func (m *Model) GetActiveBranches() []*BranchItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var active []*BranchItem
	for _, id := range m.branchOrder {
		if branch := m.branches[id]; branch != nil && branch.State == BranchActive {
			active = append(active, branch)
		}
	}
	return active
}

// GetCompletedBranches returns a slice of harvested branches
func (m *Model) GetCompletedBranches() []*BranchItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var completed []*BranchItem
	for _, id := range m.branchOrder {
		if branch := m.branches[id]; branch != nil && branch.State == BranchCompleted {
			completed = append(completed, branch)
		}
	}
	return completed
}

// GetFailedBranches returns a slice of failed branches
func (m *Model) GetFailedBranches() []*BranchItem {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var failed []*BranchItem
	for _, id := range m.branchOrder {
		if branch := m.branches[id]; branch != nil && branch.State == BranchFailed {
			failed = append(failed, branch)
		}
	}
	return failed
}

// GetHarvestStats returns various statistics
func (m *Model) GetHarvestStats() (matchRate float64, avgBranch time.Duration, eta time.Duration) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.sessionStartTime)
	if elapsed > 0 {
		matchRate = float64(m.totalMatches) / elapsed.Minutes()
	}

	if m.overallDone > 0 {
		avgBranch = elapsed / time.Duration(m.overallDone)
	}

	if m.overallHasETA {
		eta = m.overallETA
	} else if avgBranch > 0 && m.overallTotal > m.overallDone {
		eta = avgBranch * time.Duration(m.overallTotal-m.overallDone)
	}

	return
}

// OverallFraction returns completed work as a fraction in [0, 1]
func (m *Model) OverallFraction() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.overallTotal == 0 {
		return 0
	}
	f := float64(m.overallDone) / float64(m.overallTotal)
	if f > 1 {
		f = 1
	}
	return f
}
