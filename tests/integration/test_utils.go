package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vexrank/internal/pipeline"
	"vexrank/pkg/config"
	"vexrank/pkg/logger"
	"vexrank/pkg/robotevents"
)

// testToken is the bearer token the mock server accepts.
const testToken = "vexrank-test-token"

// Totals for the seeded program, shared by the suite's assertions.
const (
	seededValidMatches = 12
	seededDraws        = 2
	seededTeams        = 8
)

// Alliance colors, shortened for the fixture tables below.
const (
	red  = robotevents.AllianceRed
	blue = robotevents.AllianceBlue
)

// Team seats reused across the seeded matches.
var (
	t100A = seat(5001, "100A")
	t200B = seat(5002, "200B")
	t300C = seat(5003, "300C")
	t400D = seat(5004, "400D")
	t500E = seat(5005, "500E")
	t600F = seat(5006, "600F")
	t700G = seat(5007, "700G")
	t800H = seat(5008, "800H")
)

// TestHelper wires a mock API server, a fast configuration and a temporary
// output directory for one integration test.
type TestHelper struct {
	t      *testing.T
	Server *MockRobotEventsServer
	OutDir string
}

// NewTestHelper starts a mock server and registers its shutdown with the
// test's cleanup.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	server := NewMockRobotEventsServer(testToken)
	t.Cleanup(server.Close)

	return &TestHelper{
		t:      t,
		Server: server,
		OutDir: t.TempDir(),
	}
}

// Config returns a configuration pointed at the mock server, with pacing and
// backoff tightened so a full pipeline run takes milliseconds.
func (h *TestHelper) Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = h.Server.GetURL()
	cfg.API.Token = testToken
	cfg.API.RequestInterval = time.Millisecond
	cfg.API.RequestTimeout = 5 * time.Second
	cfg.API.MaxRetries = 2
	cfg.API.RetryBaseDelay = time.Millisecond
	cfg.API.RetryMaxDelay = 5 * time.Millisecond
	cfg.Harvest.Concurrency = 3
	cfg.Output.Directory = h.OutDir
	cfg.Notifications.Enabled = false
	cfg.Logging.Level = "error"
	return cfg
}

// Client builds a RobotEvents client against the mock server.
func (h *TestHelper) Client(cfg *config.Config, opts ...robotevents.Option) *robotevents.Client {
	return robotevents.NewClient(&cfg.API, logger.NewNopLogger(), opts...)
}

// Runner builds a pipeline runner over a mock-backed client.
func (h *TestHelper) Runner(cfg *config.Config, opts ...robotevents.Option) *pipeline.Runner {
	h.t.Helper()

	runner, err := pipeline.New(h.Client(cfg, opts...), cfg)
	require.NoError(h.t, err)
	return runner
}

// SeedVRC loads a small two-season VRC program:
//
//	Tipping Point (181)
//	  Autumn Regional (event 1), division Main (10): five playable matches
//	  plus one with a short-handed alliance that the validity filter
//	  discards.
//	  Winter Open (event 2), divisions Red (20) and Blue (21): two matches
//	  each, scheduled so the two divisions interleave in time.
//	Over Under (190)
//	  Spring Championship (event 3), division Main (30): three playable
//	  matches.
//
// Team 100A wins or ties every match it plays; two matches end drawn.
func (h *TestHelper) SeedVRC() {
	s := h.Server
	vrc := robotevents.IDInfo{ID: 1, Name: "VRC", Code: "VRC"}

	s.AddSeason(robotevents.Season{
		ID: 181, Name: "Tipping Point", Program: vrc,
		Start: date(2021, 8, 1), End: date(2022, 5, 1),
	})
	s.AddSeason(robotevents.Season{
		ID: 190, Name: "Over Under", Program: vrc,
		Start: date(2023, 8, 1), End: date(2024, 5, 1),
	})

	s.AddEvent(181, robotevents.Event{
		ID: 1, SKU: "RE-VRC-21-0101", Name: "Autumn Regional",
		Season: robotevents.IDInfo{ID: 181, Name: "Tipping Point"},
		Start:  date(2021, 10, 15), End: date(2021, 10, 15),
	})
	s.AddEvent(181, robotevents.Event{
		ID: 2, SKU: "RE-VRC-21-0202", Name: "Winter Open",
		Season: robotevents.IDInfo{ID: 181, Name: "Tipping Point"},
		Start:  date(2022, 1, 20), End: date(2022, 1, 20),
	})
	s.AddEvent(190, robotevents.Event{
		ID: 3, SKU: "RE-VRC-23-0303", Name: "Spring Championship",
		Season: robotevents.IDInfo{ID: 190, Name: "Over Under"},
		Start:  date(2024, 3, 10), End: date(2024, 3, 10),
	})

	s.AddDivision(1, robotevents.Division{ID: 10, Name: "Main", Order: 1})
	s.AddDivision(2, robotevents.Division{ID: 20, Name: "Red", Order: 1})
	s.AddDivision(2, robotevents.Division{ID: 21, Name: "Blue", Order: 2})
	s.AddDivision(3, robotevents.Division{ID: 30, Name: "Main", Order: 1})

	s.AddMatches(1, 10,
		quals(9001, 1, when(2021, 10, 15, 9, 0), side(red, 52, t100A, t200B), side(blue, 31, t300C, t400D)),
		quals(9002, 2, when(2021, 10, 15, 9, 10), side(red, 40, t100A, t300C), side(blue, 40, t200B, t400D)),
		quals(9003, 3, when(2021, 10, 15, 9, 20), side(red, 61, t100A, t400D), side(blue, 15, t200B, t300C)),
		quals(9004, 4, when(2021, 10, 15, 9, 30), side(red, 22, t200B, t300C), side(blue, 45, t100A, t400D)),
		quals(9005, 5, when(2021, 10, 15, 9, 40), side(red, 30, t100A, t200B), side(blue, 28, t300C, t400D)),
		// A short-handed alliance. The validity filter discards it.
		quals(9006, 6, when(2021, 10, 15, 9, 50), side(red, 12, t500E), side(blue, 77, t300C, t400D)),
	)

	s.AddMatches(2, 20,
		quals(9101, 1, when(2022, 1, 20, 10, 0), side(red, 70, t100A, t200B), side(blue, 35, t300C, t400D)),
		quals(9102, 2, when(2022, 1, 20, 10, 30), side(red, 44, t300C, t100A), side(blue, 41, t400D, t200B)),
	)
	s.AddMatches(2, 21,
		quals(9111, 1, when(2022, 1, 20, 10, 15), side(red, 25, t500E, t600F), side(blue, 60, t700G, t800H)),
		quals(9112, 2, when(2022, 1, 20, 10, 45), side(red, 33, t500E, t700G), side(blue, 33, t600F, t800H)),
	)

	s.AddMatches(3, 30,
		quals(9201, 1, when(2024, 3, 10, 9, 0), side(red, 80, t100A, t500E), side(blue, 20, t200B, t600F)),
		quals(9202, 2, when(2024, 3, 10, 9, 15), side(red, 10, t300C, t400D), side(blue, 55, t100A, t500E)),
		quals(9203, 3, when(2024, 3, 10, 9, 30), side(red, 51, t100A, t200B), side(blue, 50, t500E, t600F)),
	)
}

// seat builds one team's seat on an alliance.
func seat(id int, number string) robotevents.AllianceTeam {
	return robotevents.AllianceTeam{Team: robotevents.IDInfo{ID: id, Name: number}}
}

// side builds one alliance with its final score.
func side(color string, score int, seats ...robotevents.AllianceTeam) robotevents.Alliance {
	return robotevents.Alliance{Color: color, Score: score, Teams: seats}
}

// quals builds a scored qualification match.
func quals(id, matchnum int, scheduled time.Time, redSide, blueSide robotevents.Alliance) robotevents.Match {
	return robotevents.Match{
		ID:        id,
		Round:     2,
		Instance:  1,
		Matchnum:  matchnum,
		Name:      fmt.Sprintf("Qualifier #%d", matchnum),
		Scheduled: scheduled,
		Scored:    true,
		Alliances: []robotevents.Alliance{redSide, blueSide},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func when(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}
