package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vexrank/pkg/logger"
	"vexrank/pkg/rating"
)

// Output filenames within the export directory.
const (
	LeaderboardFilename = "leaderboard.csv"
	RatingsFilename     = "ratings.json"
	HistoryFilename     = "history.json"
	SummaryFilename     = "run_summary.json"
)

// Writer persists run outputs under a single directory. Every file goes to a
// temporary path first and is renamed into place, so an interrupted run never
// leaves a truncated export behind.
type Writer struct {
	dir    string
	logger logger.Logger
}

// NewWriter creates a writer rooted at dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Writer{
		dir:    dir,
		logger: logger.GetLogger(),
	}, nil
}

// Dir returns the export directory.
func (w *Writer) Dir() string {
	return w.dir
}

// TeamRating is the exported belief for one team.
type TeamRating struct {
	Mu     float64 `json:"mu"`
	Sigma  float64 `json:"sigma"`
	Rating float64 `json:"rating"`
}

// HistoryEntry is one belief snapshot in a team's timeline.
type HistoryEntry struct {
	MatchID int       `json:"match_id"`
	At      time.Time `json:"at"`
	Mu      float64   `json:"mu"`
	Sigma   float64   `json:"sigma"`
}

// LeaderboardCSV writes the ranked leaderboard table.
func (w *Writer) LeaderboardCSV(rows []rating.Row) (string, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{
		"Rank", "Team", "Mu", "Sigma", "Conservative Score",
		"Wins", "Losses", "Ties", "Win Percentage",
	})
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.Rank),
			row.Team,
			format2(row.Mu),
			format2(row.Sigma),
			format2(row.Conservative),
			strconv.Itoa(row.Wins),
			strconv.Itoa(row.Losses),
			strconv.Itoa(row.Ties),
			format2(row.WinPercentage),
		})
	}

	path := filepath.Join(w.dir, LeaderboardFilename)
	if err := w.writeCSV(path, records); err != nil {
		return "", err
	}

	w.logger.InfoWithFields("Leaderboard written", map[string]interface{}{
		"path":  path,
		"teams": len(rows),
	})

	return path, nil
}

// RatingsJSON writes team beliefs keyed by team number, values rounded to
// two decimals. Map keys marshal sorted, so the file is reproducible.
func (w *Writer) RatingsJSON(rows []rating.Row) (string, error) {
	ratings := make(map[string]TeamRating, len(rows))
	for _, row := range rows {
		ratings[row.Team] = TeamRating{
			Mu:     round2(row.Mu),
			Sigma:  round2(row.Sigma),
			Rating: round2(row.Conservative),
		}
	}

	path := filepath.Join(w.dir, RatingsFilename)
	if err := w.writeJSON(path, ratings); err != nil {
		return "", err
	}

	w.logger.InfoWithFields("Ratings written", map[string]interface{}{
		"path":  path,
		"teams": len(ratings),
	})

	return path, nil
}

// HistoryJSON writes each team's belief timeline in the order the matches
// were applied.
func (w *Writer) HistoryJSON(competitors []rating.Competitor) (string, error) {
	histories := make(map[string][]HistoryEntry, len(competitors))
	for _, c := range competitors {
		entries := make([]HistoryEntry, len(c.History))
		for i, snap := range c.History {
			entries[i] = HistoryEntry{
				MatchID: snap.MatchID,
				At:      snap.At,
				Mu:      round2(snap.Mu),
				Sigma:   round2(snap.Sigma),
			}
		}
		histories[c.Team] = entries
	}

	path := filepath.Join(w.dir, HistoryFilename)
	if err := w.writeJSON(path, histories); err != nil {
		return "", err
	}

	w.logger.InfoWithFields("History written", map[string]interface{}{
		"path":  path,
		"teams": len(histories),
	})

	return path, nil
}

// SummaryJSON writes the run summary.
func (w *Writer) SummaryJSON(summary *RunSummary) (string, error) {
	path := filepath.Join(w.dir, SummaryFilename)
	if err := w.writeJSON(path, summary); err != nil {
		return "", err
	}

	w.logger.InfoWithFields("Run summary written", map[string]interface{}{
		"path":   path,
		"run_id": summary.RunID,
	})

	return path, nil
}

// writeAtomic writes through a temporary file and renames it into place.
func (w *Writer) writeAtomic(path string, encode func(*os.File) error) error {
	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := encode(file); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace output file: %w", err)
	}

	return nil
}

func (w *Writer) writeJSON(path string, v interface{}) error {
	return w.writeAtomic(path, func(f *os.File) error {
		encoder := json.NewEncoder(f)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

func (w *Writer) writeCSV(path string, records [][]string) error {
	return w.writeAtomic(path, func(f *os.File) error {
		if err := csv.NewWriter(f).WriteAll(records); err != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func format2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
