package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexrank/pkg/harvest"
	"vexrank/pkg/rating"
)

func sampleRows() []rating.Row {
	return []rating.Row{
		{
			Rank: 1, Team: "229V",
			Mu: 31.41592, Sigma: 4.5, Conservative: 17.91592,
			Wins: 10, Losses: 2, Ties: 1, Matches: 13, WinPercentage: 80.76923,
		},
		{
			Rank: 2, Team: "98548A",
			Mu: 27.0149, Sigma: 5.25, Conservative: 11.2649,
			Wins: 6, Losses: 6, Ties: 0, Matches: 12, WinPercentage: 50,
		},
	}
}

func TestLeaderboardCSV(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.LeaderboardCSV(sampleRows())
	require.NoError(t, err)
	assert.Equal(t, LeaderboardFilename, filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"Rank", "Team", "Mu", "Sigma", "Conservative Score",
		"Wins", "Losses", "Ties", "Win Percentage",
	}, records[0])
	assert.Equal(t, []string{"1", "229V", "31.42", "4.50", "17.92", "10", "2", "1", "80.77"}, records[1])
	assert.Equal(t, []string{"2", "98548A", "27.01", "5.25", "11.26", "6", "6", "0", "50.00"}, records[2])
}

func TestFormat2(t *testing.T) {
	assert.Equal(t, "31.42", format2(31.41592))
	assert.Equal(t, "4.50", format2(4.5))
	assert.Equal(t, "0.00", format2(0))
	assert.Equal(t, "-2.13", format2(-2.131))
}

func TestRatingsJSONRounding(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.RatingsJSON(sampleRows())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var ratings map[string]TeamRating
	require.NoError(t, json.Unmarshal(data, &ratings))
	require.Len(t, ratings, 2)

	assert.Equal(t, TeamRating{Mu: 31.42, Sigma: 4.5, Rating: 17.92}, ratings["229V"])
	assert.Equal(t, TeamRating{Mu: 27.01, Sigma: 5.25, Rating: 11.26}, ratings["98548A"])
}

func TestHistoryJSON(t *testing.T) {
	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	competitors := []rating.Competitor{
		{
			Team: "229V",
			History: []rating.Snapshot{
				{MatchID: 1, At: at, Mu: 27.97381, Sigma: 7.78508},
				{MatchID: 2, At: at.Add(time.Hour), Mu: 29.123, Sigma: 7.101},
			},
		},
		{Team: "98548A", History: []rating.Snapshot{}},
	}

	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.HistoryJSON(competitors)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var histories map[string][]HistoryEntry
	require.NoError(t, json.Unmarshal(data, &histories))
	require.Len(t, histories, 2)

	timeline := histories["229V"]
	require.Len(t, timeline, 2)
	assert.Equal(t, HistoryEntry{MatchID: 1, At: at, Mu: 27.97, Sigma: 7.79}, timeline[0])
	assert.True(t, timeline[1].At.After(timeline[0].At))
	assert.Empty(t, histories["98548A"])
}

func TestSummaryJSONRoundTrip(t *testing.T) {
	started := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	summary := &RunSummary{
		RunID:           uuid.NewString(),
		StartedAt:       started,
		FinishedAt:      started.Add(90 * time.Second),
		DurationSeconds: 90,
		Seasons: []SeasonCount{
			{SeasonID: 190, Name: "Over Under", Matches: 120},
		},
		Harvest: harvest.Stats{
			Events: 3, Divisions: 5, Matches: 120,
			Skipped: map[string]int{harvest.SkipUnscored: 4},
		},
		MatchesRated: 120,
		Draws:        6,
		Teams:        48,
		Outputs:      []string{"leaderboard.csv"},
	}

	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.SummaryJSON(summary)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded RunSummary
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, *summary, loaded)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	_, err = w.LeaderboardCSV(sampleRows())
	require.NoError(t, err)
	_, err = w.RatingsJSON(sampleRows())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(entry.Name()))
	}
	assert.Len(t, entries, 2)
}

func TestWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ratings")

	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
