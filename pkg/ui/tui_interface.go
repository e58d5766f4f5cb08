package ui

import "time"

// Dashboard is an interface for live harvest displays
type Dashboard interface {
	StartBranch(id, label string)
	CompleteBranch(id string, matches, skipped int)
	FailBranch(id string, err error)
	UpdateOverall(done, total int, eta time.Duration, hasETA bool)
	UpdatePacing(requests int, gap time.Duration, nextAt time.Time)
	LogInfo(format string, args ...interface{})
	LogSuccess(format string, args ...interface{})
	LogWarning(format string, args ...interface{})
	LogError(format string, args ...interface{})
	IsPaused() bool
}
