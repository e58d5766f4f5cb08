package export

import (
	"time"

	"vexrank/pkg/harvest"
)

// SeasonCount is one season's contribution to a run.
type SeasonCount struct {
	SeasonID int    `json:"season_id"`
	Name     string `json:"name"`
	Matches  int    `json:"matches"`
}

// RunSummary is the machine-readable record of one complete run.
type RunSummary struct {
	RunID           string        `json:"run_id"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	DurationSeconds float64       `json:"duration_seconds"`
	Seasons         []SeasonCount `json:"seasons"`
	Harvest         harvest.Stats `json:"harvest"`
	MatchesRated    int           `json:"matches_rated"`
	Draws           int           `json:"draws"`
	Teams           int           `json:"teams"`
	Outputs         []string      `json:"outputs,omitempty"`
}
