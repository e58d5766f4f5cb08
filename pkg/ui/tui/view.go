package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Build the UI layout
	var sections []string

	// Logo
	sections = append(sections, m.renderLogo())

	// Main content area with two columns
	leftColumn := m.renderLeftColumn()
	rightColumn := m.renderRightColumn()

	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftColumn,
		"  ", // spacing
		rightColumn,
	)
	sections = append(sections, mainContent)

	// Help
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("Press ? for help"))
	}

	// Join all sections vertically
	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

// renderLogo renders the cyberpunk logo
func (m Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════════════════════╗
║ ██╗   ██╗███████╗██╗  ██╗██████╗  █████╗ ███╗   ██╗██╗  ██╗  ║
║ ██║   ██║██╔════╝╚██╗██╔╝██╔══██╗██╔══██╗████╗  ██║██║ ██╔╝  ║
║ ██║   ██║█████╗   ╚███╔╝ ██████╔╝███████║██╔██╗ ██║█████╔╝   ║
║ ╚██╗ ██╔╝██╔══╝   ██╔██╗ ██╔══██╗██╔══██║██║╚██╗██║██╔═██╗   ║
║  ╚████╔╝ ███████╗██╔╝ ██╗██║  ██║██║  ██║██║ ╚████║██║  ██╗  ║
║   ╚═══╝  ╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝  ║
║        MATCH HARVESTER + TRUESKILL RATING ENGINE v1.0        ║
╚══════════════════════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

// renderLeftColumn renders the left side of the UI
func (m Model) renderLeftColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Stats panel
	sections = append(sections, m.renderStatsPanel(width))

	// Active branches panel
	sections = append(sections, m.renderActiveBranchesPanel(width))

	// Recent branches panel
	sections = append(sections, m.renderRecentPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderRightColumn renders the right side of the UI
func (m Model) renderRightColumn() string {
	width := (m.width - 4) / 2

	var sections []string

	// Pacing panel
	sections = append(sections, m.renderPacingPanel(width))

	// Logs panel
	sections = append(sections, m.renderLogsPanel(width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatsPanel renders the statistics panel
func (m Model) renderStatsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" HARVEST STATS ")

	elapsed := time.Since(m.sessionStartTime)
	matchRate, _, eta := m.GetHarvestStats()

	etaText := "calculating..."
	if eta > 0 {
		etaText = formatDuration(eta)
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Session Time:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Branches:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", m.overallDone, m.overallTotal))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Matches:"), statsValueStyle.Render(fmt.Sprintf("%d harvested", m.totalMatches))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Skipped:"), statsValueStyle.Render(fmt.Sprintf("%d", m.totalSkipped))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Rate:"), rateStyle.Render(fmt.Sprintf("%.1f matches/min", matchRate))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("ETA:"), statsValueStyle.Render(etaText)),
	}

	if m.failedBranches > 0 {
		stats = append(stats, errorStyle.Render(fmt.Sprintf("✗ %d branches failed", m.failedBranches)))
	}

	if m.isPaused {
		stats = append(stats, warningStyle.Render("⏸  PAUSED"))
	}

	// Overall progress bar beneath the counters
	bar := m.overallBar
	bar.Width = width - 8
	stats = append(stats, "", bar.ViewAs(m.overallFractionLocked()))

	content := lipgloss.JoinVertical(lipgloss.Left, stats...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// overallFractionLocked computes the fraction with the lock already held
func (m Model) overallFractionLocked() float64 {
	if m.overallTotal == 0 {
		return 0
	}
	f := float64(m.overallDone) / float64(m.overallTotal)
	if f > 1 {
		f = 1
	}
	return f
}

// renderActiveBranchesPanel renders the in-flight branches
func (m Model) renderActiveBranchesPanel(width int) string {
	title := titleStyle.Render(" ACTIVE BRANCHES ")

	active := m.GetActiveBranches()

	if len(active) == 0 {
		content := lipgloss.NewStyle().Foreground(dimWhite).Render("No active branches")
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, content),
		)
	}

	var branches []string
	for _, branch := range active {
		branches = append(branches, m.renderBranchItem(branch))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, branches...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderBranchItem renders a single in-flight branch
func (m Model) renderBranchItem(item *BranchItem) string {
	elapsed := time.Since(item.StartTime)

	return fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		branchItemActiveStyle.Render(item.Label),
		lipgloss.NewStyle().Foreground(dimWhite).Render(formatDuration(elapsed)),
	)
}

// renderRecentPanel renders recently finished branches
func (m Model) renderRecentPanel(width int) string {
	title := titleStyle.Render(" BRANCH LOG ")

	completed := m.GetCompletedBranches()
	failed := m.GetFailedBranches()

	var items []string

	// Show recent completed
	completedCount := len(completed)
	if completedCount > 0 {
		items = append(items, successStyle.Render(fmt.Sprintf("✓ %d harvested", completedCount)))
		start := completedCount - 3
		if start < 0 {
			start = 0
		}
		for i := start; i < completedCount; i++ {
			branch := completed[i]
			items = append(items, branchItemDoneStyle.Render(
				fmt.Sprintf("✓ %s (%d matches)", branch.Label, branch.Matches)))
		}
	}

	// Show recent failures
	failedCount := len(failed)
	if failedCount > 0 {
		items = append(items, "", errorStyle.Render(fmt.Sprintf("✗ %d failed", failedCount)))
		start := failedCount - 3
		if start < 0 {
			start = 0
		}
		for i := start; i < failedCount; i++ {
			items = append(items, branchItemStyle.Render("✗ "+failed[i].Label))
		}
	}

	if len(items) == 0 {
		items = append(items, lipgloss.NewStyle().Foreground(dimWhite).Render("Nothing finished yet"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderPacingPanel renders the request pacing status
func (m Model) renderPacingPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" REQUEST PACING ")

	wait := time.Until(m.nextRequestAt)
	if wait < 0 {
		wait = 0
	}

	// Pending share of the pacing gap
	var pending float64
	if m.requestGap > 0 {
		pending = float64(wait) / float64(m.requestGap) * 100
	}
	if pending > 100 {
		pending = 100
	}

	barWidth := width - 8
	filled := int(pending * float64(barWidth) / 100)
	empty := barWidth - filled

	barStyle := GetPacingStyle(pending)
	bar := barStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", empty))

	status := "ready"
	if wait > 0 {
		status = fmt.Sprintf("next slot in %s", formatDuration(wait))
	}

	content := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Requests:"),
			statsValueStyle.Render(fmt.Sprintf("%d", m.requestCount))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Gap:"),
			statsValueStyle.Render(m.requestGap.String())),
		bar,
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Status:"),
			barStyle.Render(status)),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

// renderLogsPanel renders the logs panel
func (m Model) renderLogsPanel(width int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	title := titleStyle.Render(" SYSTEM LOGS ")

	// Get recent logs
	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for i := start; i < len(m.logMessages); i++ {
		log := m.logMessages[i]
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(log.Message)

		// Truncate message if too long
		maxMsgLen := width - 25
		if len(message) > maxMsgLen {
			message = message[:maxMsgLen-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No logs yet...")
	}

	// Calculate height for logs panel to fill remaining space
	logsHeight := m.height - 35 // Approximate calculation
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

// renderHelp renders the help panel
func (m Model) renderHelp() string {
	help := `
  Navigation:
    q/Q      - Quit the application
    p/P      - Pause/Resume the harvest
    ?        - Toggle this help
    ctrl+l   - Clear the log panel

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Harvested/Healthy
    ` + warningStyle.Render("Orange") + `   - Warning/Waiting
    ` + errorStyle.Render("Red") + `      - Error/Failed branch

  Icons:
    ✓        - Harvested branch
    ✗        - Failed branch
    ⏸        - Paused
    █        - Pacing indicator
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
