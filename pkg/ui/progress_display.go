package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"vexrank/pkg/progress"
)

// ProgressDisplay provides a clean, minimal harvest progress display
type ProgressDisplay struct {
	mu            sync.Mutex
	season        string
	branchesDone  int
	branchesTotal int
	matches       int
	skipped       int
	errors        int
	currentBranch string
	startTime     time.Time
	lastUpdate    time.Time
	eta           time.Duration
	hasETA        bool
	isDebug       bool
}

// NewProgressDisplay creates a new progress display for one season
func NewProgressDisplay(season string, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		season:     season,
		startTime:  time.Now(),
		lastUpdate: time.Now(),
		isDebug:    debug,
	}
}

// Observe consumes tracker snapshots. Wire it as the tracker's OnUpdate
// callback so discovered and completed branches redraw the line.
func (p *ProgressDisplay) Observe(snap progress.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.branchesDone = snap.Done
	p.branchesTotal = snap.Total
	p.eta = snap.ETA
	p.hasETA = snap.HasETA
	p.lastUpdate = time.Now()

	if !p.isDebug {
		p.printProgress()
	}
}

// StartBranch marks the start of a new harvest branch
func (p *ProgressDisplay) StartBranch(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentBranch = label
	p.lastUpdate = time.Now()

	if !p.isDebug {
		p.printProgress()
	}
}

// CompleteBranch marks a branch as harvested
func (p *ProgressDisplay) CompleteBranch(label string, matches, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.matches += matches
	p.skipped += skipped
	p.currentBranch = ""
	p.lastUpdate = time.Now()

	if !p.isDebug {
		p.printProgress()
	} else {
		p.printDebugComplete(label, matches, skipped)
	}
}

// FailBranch marks a branch as failed
func (p *ProgressDisplay) FailBranch(label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errors++
	p.currentBranch = ""
	p.lastUpdate = time.Now()

	if !p.isDebug {
		p.printProgress()
	} else {
		fmt.Printf("\n%s Failed: %s - %v\n", Red("✗"), label, err)
	}
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress() {
	elapsed := time.Since(p.startTime)
	rate := float64(p.matches) / elapsed.Minutes()
	eta := p.formatETA()

	// Build progress bar over harvest branches
	var fraction float64
	if p.branchesTotal > 0 {
		fraction = float64(p.branchesDone) / float64(p.branchesTotal)
	}
	barWidth := 20
	filled := int(fraction * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("\r%s [%s] %d/%d branches • %d matches • %.1f/min • %s",
		Cyan(p.season),
		bar,
		p.branchesDone,
		p.branchesTotal,
		p.matches,
		rate,
		eta,
	)

	if p.currentBranch != "" {
		line += fmt.Sprintf(" • %s", p.currentBranch)
	}

	if p.errors > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.errors)))
	}

	// Clear line and print
	fmt.Printf("\r%s\r%s", strings.Repeat(" ", 120), line)
}

// printDebugComplete prints detailed info in debug mode
func (p *ProgressDisplay) printDebugComplete(label string, matches, skipped int) {
	fmt.Printf("\n%s %s • %d matches",
		Green("✓"),
		label,
		matches,
	)

	if skipped > 0 {
		fmt.Printf(" • %s", Dim(fmt.Sprintf("%d skipped", skipped)))
	}

	fmt.Println()
}

// Complete marks the entire season as harvested
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Printf("\n\n%s Harvested %d matches from %s\n",
		Green("✓"),
		p.matches,
		p.season,
	)

	// Summary stats
	fmt.Printf("  %s %d branches in %s (%.1f matches/min)\n",
		Dim("•"),
		p.branchesDone,
		p.formatDuration(elapsed),
		float64(p.matches)/elapsed.Minutes(),
	)

	if p.skipped > 0 {
		fmt.Printf("  %s %d matches skipped\n",
			Dim("•"),
			p.skipped,
		)
	}

	if p.errors > 0 {
		fmt.Printf("  %s %d branches failed\n",
			Dim("•"),
			p.errors,
		)
	}
}

// formatETA renders the tracker's estimate, falling back to a local one
func (p *ProgressDisplay) formatETA() string {
	if p.hasETA {
		return p.formatDuration(p.eta)
	}

	if p.branchesDone == 0 || p.branchesTotal == 0 {
		return "calculating..."
	}

	remaining := p.branchesTotal - p.branchesDone
	elapsed := time.Since(p.startTime)
	rate := float64(p.branchesDone) / elapsed.Seconds()

	if rate == 0 {
		return "calculating..."
	}

	etaSeconds := float64(remaining) / rate
	eta := time.Duration(etaSeconds) * time.Second

	return p.formatDuration(eta)
}

// formatDuration formats a duration in a human-readable way
func (p *ProgressDisplay) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// PacingWait shows a pacing or rate limit wait notice
func (p *ProgressDisplay) PacingWait(waitTime time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Printf("\n%s Rate limited. Waiting %s...\n",
		Yellow("⚠"),
		p.formatDuration(waitTime),
	)
}

// ScanningPage indicates fetching a new listing page
func (p *ProgressDisplay) ScanningPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDebug {
		fmt.Printf("\n%s Fetching page %d...\n", Magenta("→"), page)
	}
}

// SetSeason switches the display to a new season without resetting totals
func (p *ProgressDisplay) SetSeason(season string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.season = season
}

// SetMatchCount sets the harvested match count (for resumed runs)
func (p *ProgressDisplay) SetMatchCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.matches = count
}
