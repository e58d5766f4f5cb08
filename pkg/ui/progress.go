package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// RequestTracker keeps track of API request pacing
type RequestTracker struct {
	TotalRequests int
	WindowCount   int
	HourlyBudget  int
	StartTime     time.Time
}

// NewRequestTracker creates a tracker with an hourly budget derived from
// the pacing gap between requests
func NewRequestTracker(gap time.Duration) *RequestTracker {
	if gap <= 0 {
		gap = time.Second
	}
	return &RequestTracker{
		HourlyBudget: int(time.Hour / gap),
		StartTime:    time.Now(),
	}
}

// IncrementRequests increments both total and current window counters
func (rt *RequestTracker) IncrementRequests() {
	rt.TotalRequests++
	rt.WindowCount++
}

// ResetWindow resets the current window counter
func (rt *RequestTracker) ResetWindow() {
	rt.WindowCount = 0
}

// GetWindowProgress returns a formatted progress bar for the current window
func (rt *RequestTracker) GetWindowProgress() string {
	const width = 20
	progress := float64(rt.WindowCount) / float64(rt.HourlyBudget)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, rt.WindowCount, rt.HourlyBudget)
}

// GetElapsedTime returns the elapsed time since tracking started
func (rt *RequestTracker) GetElapsedTime() time.Duration {
	return time.Since(rt.StartTime)
}

// GetRequestRate returns the average request rate (requests per minute)
func (rt *RequestTracker) GetRequestRate() float64 {
	elapsed := rt.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(rt.TotalRequests) / elapsed
}

// PrintProgress prints the current pacing status
func (rt *RequestTracker) PrintProgress() {
	fmt.Printf("\r%s Total: %d | Window: %s",
		Green("[PACED]"),
		rt.TotalRequests,
		rt.GetWindowProgress())
}

// PrintWindowStatus prints the current window status
func (rt *RequestTracker) PrintWindowStatus() {
	fmt.Printf("\n%s %s\n", Magenta("[REQUESTS]"), Yellow(rt.GetWindowProgress()))
}

// IsBudgetReached checks if the current window has exhausted the budget
func (rt *RequestTracker) IsBudgetReached() bool {
	return rt.WindowCount >= rt.HourlyBudget
}

// GetRequestCount returns the total number of requests issued
func (rt *RequestTracker) GetRequestCount() int {
	return rt.TotalRequests
}

// SetRequestCount sets the total request count (used for resuming)
func (rt *RequestTracker) SetRequestCount(count int) {
	rt.TotalRequests = count
}
