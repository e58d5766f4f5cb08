package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexrank/pkg/config"
	"vexrank/pkg/export"
	"vexrank/pkg/robotevents"
	"vexrank/pkg/ui"
)

// fakeClient serves a canned program tree. Everything is built before the
// run starts, so concurrent harvester reads need no locking.
type fakeClient struct {
	seasons    []robotevents.Season
	seasonsErr error
	events     map[int][]robotevents.Event
	eventsErr  map[int]error
	divisions  map[int][]robotevents.Division
	divsErr    map[int]error
	matches    map[string][]robotevents.Match
}

func newFakeClient(seasons ...robotevents.Season) *fakeClient {
	return &fakeClient{
		seasons:   seasons,
		events:    make(map[int][]robotevents.Event),
		eventsErr: make(map[int]error),
		divisions: make(map[int][]robotevents.Division),
		divsErr:   make(map[int]error),
		matches:   make(map[string][]robotevents.Match),
	}
}

func (f *fakeClient) addEvent(seasonID int, event robotevents.Event) {
	f.events[seasonID] = append(f.events[seasonID], event)
}

func (f *fakeClient) addDivision(eventID int, division robotevents.Division, matches ...robotevents.Match) {
	f.divisions[eventID] = append(f.divisions[eventID], division)
	f.matches[fmt.Sprintf("%d/%d", eventID, division.ID)] = matches
}

func (f *fakeClient) Seasons(ctx context.Context, programID int) ([]robotevents.Season, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.seasonsErr != nil {
		return nil, f.seasonsErr
	}
	return f.seasons, nil
}

func (f *fakeClient) SeasonEvents(ctx context.Context, seasonID int) ([]robotevents.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.eventsErr[seasonID]; err != nil {
		return nil, err
	}
	return f.events[seasonID], nil
}

func (f *fakeClient) EventDivisions(ctx context.Context, eventID int) ([]robotevents.Division, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.divsErr[eventID]; err != nil {
		return nil, err
	}
	return f.divisions[eventID], nil
}

func (f *fakeClient) DivisionMatches(ctx context.Context, eventID, divisionID int, scoredOnly bool) ([]robotevents.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.matches[fmt.Sprintf("%d/%d", eventID, divisionID)], nil
}

func alliance(color string, score int, teams ...string) robotevents.Alliance {
	a := robotevents.Alliance{Color: color, Score: score}
	for i, team := range teams {
		a.Teams = append(a.Teams, robotevents.AllianceTeam{
			Team:    robotevents.IDInfo{ID: i + 1, Name: team},
			Sitting: true,
		})
	}
	return a
}

func apiMatch(id int, at time.Time, redScore, blueScore int) robotevents.Match {
	return robotevents.Match{
		ID:        id,
		Matchnum:  id,
		Name:      fmt.Sprintf("Qualifier #%d", id),
		Scheduled: at,
		Scored:    true,
		Alliances: []robotevents.Alliance{
			alliance(robotevents.AllianceRed, redScore, "100A", "200B"),
			alliance(robotevents.AllianceBlue, blueScore, "300C", "400D"),
		},
	}
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Output.Directory = t.TempDir()
	cfg.Harvest.Concurrency = 2
	cfg.Notifications.Enabled = false
	return cfg
}

func muteUI(t *testing.T) {
	t.Helper()

	ui.SetQuietMode(true)
	t.Cleanup(func() { ui.SetQuietMode(false) })
}

// twoSeasonTree builds two seasons listed newest first: "Tipping Point"
// (2021, two matches, one a draw) and "Over Under" (2023, one match).
func twoSeasonTree() *fakeClient {
	older := robotevents.Season{ID: 181, Name: "Tipping Point",
		Start: time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)}
	newer := robotevents.Season{ID: 190, Name: "Over Under",
		Start: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)}

	client := newFakeClient(newer, older)

	fall := time.Date(2021, 10, 9, 9, 0, 0, 0, time.UTC)
	client.addEvent(older.ID, robotevents.Event{ID: 1, Name: "Fall Regional"})
	client.addDivision(1, robotevents.Division{ID: 10, Name: "Main"},
		apiMatch(1001, fall, 30, 10),
		apiMatch(1002, fall.Add(time.Hour), 20, 20),
	)

	spring := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	client.addEvent(newer.ID, robotevents.Event{ID: 2, Name: "Spring Champs"})
	client.addDivision(2, robotevents.Division{ID: 20, Name: "Main"},
		apiMatch(2001, spring, 25, 5),
	)

	return client
}

func TestRunHarvestsRatesAndWrites(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	runner, err := New(twoSeasonTree(), cfg)
	require.NoError(t, err)

	res, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Seasons were rated oldest first even though the API listed them
	// newest first.
	require.Len(t, res.Seasons, 2)
	assert.Equal(t, export.SeasonCount{SeasonID: 181, Name: "Tipping Point", Matches: 2}, res.Seasons[0])
	assert.Equal(t, export.SeasonCount{SeasonID: 190, Name: "Over Under", Matches: 1}, res.Seasons[1])

	assert.Equal(t, 3, res.MatchesRated)
	assert.Equal(t, 1, res.Draws)
	assert.Equal(t, 4, res.Teams)
	assert.Equal(t, 3, res.Stats.Matches)
	assert.NotEmpty(t, res.RunID)

	// Red won twice and drew once, so an identical-record red pair tops
	// the board, alphabetical first.
	require.NotEmpty(t, res.Rows)
	assert.Equal(t, "100A", res.Rows[0].Team)
	assert.Equal(t, 2, res.Rows[0].Wins)
	assert.Equal(t, 1, res.Rows[0].Ties)

	dir := cfg.Output.Directory
	for _, name := range []string{
		"matches.json", "leaderboard.csv", "ratings.json", "history.json", "run_summary.json",
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	require.NotEmpty(t, res.Outputs)
	assert.Equal(t, filepath.Join(dir, export.SummaryFilename), res.Outputs[len(res.Outputs)-1])

	var ratings map[string]export.TeamRating
	data, err := os.ReadFile(filepath.Join(dir, export.RatingsFilename))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &ratings))
	assert.Greater(t, ratings["100A"].Mu, ratings["300C"].Mu)

	var summary export.RunSummary
	data, err = os.ReadFile(filepath.Join(dir, export.SummaryFilename))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, res.RunID, summary.RunID)
	assert.Equal(t, 3, summary.MatchesRated)
	assert.Len(t, summary.Seasons, 2)
	// The summary lists the files written before it, never itself.
	assert.Contains(t, summary.Outputs, filepath.Join(dir, export.LeaderboardFilename))
	assert.NotContains(t, summary.Outputs, filepath.Join(dir, export.SummaryFilename))
}

func TestRunContinuesPastFailedSeason(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	client := twoSeasonTree()
	client.eventsErr[181] = errors.New("server error (503)")

	runner, err := New(client, cfg)
	require.NoError(t, err)

	res, err := runner.Run(context.Background())
	require.NoError(t, err)

	// Only the surviving season contributed.
	require.Len(t, res.Seasons, 1)
	assert.Equal(t, 190, res.Seasons[0].SeasonID)
	assert.Equal(t, 1, res.MatchesRated)
	assert.Equal(t, map[string]int{"season": 1}, res.Stats.BranchesFailed)
}

func TestRunFailsWhenDiscoveryFails(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	client := newFakeClient()
	client.seasonsErr = errors.New("rate limited (429)")

	runner, err := New(client, cfg)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list seasons")

	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, export.LeaderboardFilename))
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, export.SummaryFilename))
}

func TestRunFailsWithZeroMatches(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	// One season, no events at all.
	client := newFakeClient(robotevents.Season{ID: 190, Name: "Over Under"})

	runner, err := New(client, cfg)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rateable matches")
}

func TestRunCancelled(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	runner, err := New(twoSeasonTree(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = runner.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHarvestThenRate(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)
	dir := cfg.Output.Directory

	harvester, err := New(twoSeasonTree(), cfg)
	require.NoError(t, err)

	harvestRes, err := harvester.Harvest(context.Background())
	require.NoError(t, err)

	// Harvest saves the archive and the summary but rates nothing.
	assert.Zero(t, harvestRes.MatchesRated)
	assert.FileExists(t, filepath.Join(dir, "matches.json"))
	assert.FileExists(t, filepath.Join(dir, export.SummaryFilename))
	assert.NoFileExists(t, filepath.Join(dir, export.LeaderboardFilename))

	// Rating replays the archive offline: the client is never called.
	rater, err := New(newFakeClient(), cfg)
	require.NoError(t, err)

	rateRes, err := rater.Rate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, rateRes.MatchesRated)
	assert.Equal(t, 1, rateRes.Draws)
	assert.Equal(t, 4, rateRes.Teams)
	require.Len(t, rateRes.Seasons, 2)
	assert.Equal(t, 181, rateRes.Seasons[0].SeasonID)
	assert.FileExists(t, filepath.Join(dir, export.LeaderboardFilename))

	// Same stream, same parameters, same board as a direct run.
	direct, err := New(twoSeasonTree(), newTestConfig(t))
	require.NoError(t, err)
	directRes, err := direct.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, directRes.Rows, rateRes.Rows)
}

func TestRateWithoutArchive(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	runner, err := New(newFakeClient(), cfg)
	require.NoError(t, err)

	_, err = runner.Rate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no harvest archive")
	assert.Contains(t, err.Error(), "vexrank harvest")
}

// fakeDashboard records every dashboard call under a lock.
type fakeDashboard struct {
	mu        sync.Mutex
	started   map[string]string
	completed map[string][2]int
	failed    map[string]error
	overall   [][2]int
	pacing    []int
	logs      []string
	paused    bool
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{
		started:   make(map[string]string),
		completed: make(map[string][2]int),
		failed:    make(map[string]error),
	}
}

func (f *fakeDashboard) StartBranch(id, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started[id] = label
}

func (f *fakeDashboard) CompleteBranch(id string, matches, skipped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed[id] = [2]int{matches, skipped}
}

func (f *fakeDashboard) FailBranch(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = err
}

func (f *fakeDashboard) UpdateOverall(done, total int, eta time.Duration, hasETA bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overall = append(f.overall, [2]int{done, total})
}

func (f *fakeDashboard) UpdatePacing(requests int, gap time.Duration, nextAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pacing = append(f.pacing, requests)
}

func (f *fakeDashboard) log(level, format string, args []interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, level+": "+fmt.Sprintf(format, args...))
}

func (f *fakeDashboard) LogInfo(format string, args ...interface{})    { f.log("INFO", format, args) }
func (f *fakeDashboard) LogSuccess(format string, args ...interface{}) { f.log("SUCCESS", format, args) }
func (f *fakeDashboard) LogWarning(format string, args ...interface{}) { f.log("WARN", format, args) }
func (f *fakeDashboard) LogError(format string, args ...interface{})   { f.log("ERROR", format, args) }

func (f *fakeDashboard) IsPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeDashboard) hasLog(want string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range f.logs {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func TestRunFeedsDashboard(t *testing.T) {
	cfg := newTestConfig(t)

	client := twoSeasonTree()
	client.divsErr[2] = errors.New("server error (503)")

	runner, err := New(client, cfg)
	require.NoError(t, err)

	dash := newFakeDashboard()
	runner.SetDashboard(dash)

	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.MatchesRated)

	// Both event branches were announced by name; one completed with its
	// match count, the broken one failed.
	assert.Equal(t, map[string]string{"1": "Fall Regional", "2": "Spring Champs"}, dash.started)
	assert.Equal(t, map[string][2]int{"1": {2, 0}}, dash.completed)
	require.Contains(t, dash.failed, "2")
	assert.ErrorContains(t, dash.failed["2"], "503")

	// The final overall update saw all branch work accounted for: two
	// events plus the one discovered division.
	require.NotEmpty(t, dash.overall)
	assert.Equal(t, [2]int{3, 3}, dash.overall[len(dash.overall)-1])

	assert.True(t, dash.hasLog("Harvesting season Tipping Point"))
	assert.True(t, dash.hasLog("Harvesting season Over Under"))
	assert.True(t, dash.hasLog("SUCCESS"))
}

func TestRequestHooksFeedDashboard(t *testing.T) {
	cfg := newTestConfig(t)

	runner, err := New(newFakeClient(), cfg)
	require.NoError(t, err)

	dash := newFakeDashboard()
	runner.SetDashboard(dash)

	runner.RequestTaken()
	runner.RequestTaken()
	runner.RateLimited(30 * time.Second)

	assert.Equal(t, []int{1, 2}, dash.pacing)
	assert.True(t, dash.hasLog("Rate limited"))
	assert.True(t, dash.hasLog("30s"))
}

func TestDisplayObserverLabels(t *testing.T) {
	o := &displayObserver{labels: map[int]string{7: "Regional"}}

	// A known id yields its label once; unknown ids fall back to the id.
	assert.Equal(t, "Regional", o.takeLabel(7))
	assert.Equal(t, "7", o.takeLabel(7))
	assert.Equal(t, "9", o.takeLabel(9))
}
