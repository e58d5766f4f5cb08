package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vexrank/pkg/config"
	"vexrank/pkg/export"
	"vexrank/pkg/harvest"
	"vexrank/pkg/logger"
	"vexrank/pkg/matchstore"
	"vexrank/pkg/progress"
	"vexrank/pkg/rating"
	"vexrank/pkg/robotevents"
	"vexrank/pkg/ui"
)

// Client is the slice of the RobotEvents API the pipeline consumes: season
// discovery plus everything the harvester needs below it.
type Client interface {
	harvest.API
	Seasons(ctx context.Context, programID int) ([]robotevents.Season, error)
}

// Runner orchestrates one invocation end to end: discover seasons, harvest
// their match hierarchies, feed the rating engine in chronological order and
// write the configured outputs.
type Runner struct {
	client   Client
	config   *config.Config
	store    *matchstore.Manager
	writer   *export.Writer
	notifier *ui.Notifier
	progress *ui.ProgressDisplay
	dash     ui.Dashboard
	logger   logger.Logger

	mu       sync.Mutex
	requests *ui.RequestTracker
}

// New creates a Runner writing all outputs under the configured directory.
func New(client Client, cfg *config.Config) (*Runner, error) {
	store, err := matchstore.NewManager(cfg.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create match store: %w", err)
	}

	writer, err := export.NewWriter(cfg.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create export writer: %w", err)
	}

	return &Runner{
		client:   client,
		config:   cfg,
		store:    store,
		writer:   writer,
		notifier: ui.NewNotifier(cfg.Notifications.NotificationType),
		logger:   logger.GetLogger(),
		requests: ui.NewRequestTracker(cfg.API.RequestInterval),
	}, nil
}

// SetDashboard attaches a live dashboard. Without one the runner falls back
// to the single-line progress display, or to plain logs in quiet mode.
func (r *Runner) SetDashboard(dash ui.Dashboard) {
	r.dash = dash
}

// RequestTaken reports that the API client consumed one pacing slot. Wire it
// as the client's request hook so the pacing panel reflects real traffic.
func (r *Runner) RequestTaken() {
	r.mu.Lock()
	r.requests.IncrementRequests()
	count := r.requests.GetRequestCount()
	r.mu.Unlock()

	if r.dash != nil {
		gap := r.config.API.RequestInterval
		r.dash.UpdatePacing(count, gap, time.Now().Add(gap))
	}
}

// RateLimited reports a server-side rate limit. Wire it as the client's rate
// limit hook.
func (r *Runner) RateLimited(retryAfter time.Duration) {
	if r.dash != nil {
		r.dash.LogWarning("Rate limited, backing off %s", retryAfter)
	} else if r.progress != nil {
		r.progress.PacingWait(retryAfter)
	}

	if r.config.Notifications.Enabled && r.config.Notifications.OnRateLimit {
		r.notifier.SendNotification("RATE LIMITED", fmt.Sprintf("Backing off for %s", retryAfter))
	}
}

// Result is what one invocation produced.
type Result struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Seasons      []export.SeasonCount
	Stats        harvest.Stats
	MatchesRated int
	Draws        int
	Teams        int
	Rows         []rating.Row
	Outputs      []string
}

// Run executes the full pipeline: harvest every selected season, rate the
// matches oldest season first and write the configured outputs.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := r.newResult()

	logger.LogComponentStart("pipeline", map[string]interface{}{
		"run_id":     res.RunID,
		"mode":       "run",
		"program_id": r.config.API.ProgramID,
	})

	archive := &matchstore.Archive{}
	if err := r.harvestInto(ctx, res, archive); err != nil {
		r.fail(res, "Harvest failed", err)
		return nil, err
	}

	engine := rating.NewEngine(rating.ParamsFromConfig(&r.config.Rating))
	r.rateArchive(engine, archive, res)

	if r.config.Output.WriteMatches {
		if err := r.store.Save(archive); err != nil {
			// A failed archive save costs offline re-rating, not this run.
			r.logger.WithError(err).Warn("Failed to save harvest archive")
		} else {
			res.Outputs = append(res.Outputs, r.store.Path())
		}
	}

	if err := r.writeOutputs(engine, res); err != nil {
		r.fail(res, "Export failed", err)
		return nil, err
	}

	r.finish(res, fmt.Sprintf("Rated %d matches across %d teams", res.MatchesRated, res.Teams))
	return res, nil
}

// Harvest discovers and harvests the selected seasons and saves the archive
// so ratings can be recomputed offline with Rate. No rating happens.
func (r *Runner) Harvest(ctx context.Context) (*Result, error) {
	res := r.newResult()

	logger.LogComponentStart("pipeline", map[string]interface{}{
		"run_id":     res.RunID,
		"mode":       "harvest",
		"program_id": r.config.API.ProgramID,
	})

	archive := &matchstore.Archive{}
	if err := r.harvestInto(ctx, res, archive); err != nil {
		r.fail(res, "Harvest failed", err)
		return nil, err
	}

	if err := r.store.Save(archive); err != nil {
		err = fmt.Errorf("failed to save harvest archive: %w", err)
		r.fail(res, "Harvest failed", err)
		return nil, err
	}
	res.Outputs = append(res.Outputs, r.store.Path())

	if err := r.writeSummary(res); err != nil {
		r.fail(res, "Harvest failed", err)
		return nil, err
	}

	r.finish(res, fmt.Sprintf("Harvested %d matches from %d seasons",
		archive.TotalMatches(), len(archive.Seasons)))
	return res, nil
}

// Rate replays the saved archive through a fresh engine without touching the
// API.
func (r *Runner) Rate(ctx context.Context) (*Result, error) {
	res := r.newResult()

	logger.LogComponentStart("pipeline", map[string]interface{}{
		"run_id": res.RunID,
		"mode":   "rate",
	})

	if err := ctx.Err(); err != nil {
		r.fail(res, "Rating failed", err)
		return nil, err
	}

	archive, err := r.store.Load()
	if err != nil {
		r.fail(res, "Rating failed", err)
		return nil, err
	}
	if archive == nil {
		err := fmt.Errorf("no harvest archive at %s, run \"vexrank harvest\" first", r.store.Path())
		r.fail(res, "Rating failed", err)
		return nil, err
	}

	for _, sm := range archive.Seasons {
		res.Seasons = append(res.Seasons, export.SeasonCount{
			SeasonID: sm.SeasonID,
			Name:     sm.SeasonName,
			Matches:  len(sm.Matches),
		})
	}

	engine := rating.NewEngine(rating.ParamsFromConfig(&r.config.Rating))
	r.rateArchive(engine, archive, res)

	if res.MatchesRated == 0 {
		err := fmt.Errorf("archive at %s holds no rateable matches", r.store.Path())
		r.fail(res, "Rating failed", err)
		return nil, err
	}

	if err := r.writeOutputs(engine, res); err != nil {
		r.fail(res, "Export failed", err)
		return nil, err
	}

	r.finish(res, fmt.Sprintf("Rated %d archived matches across %d teams",
		res.MatchesRated, res.Teams))
	return res, nil
}

// harvestInto discovers the selected seasons and harvests each into the
// archive, oldest first. A failed season is logged and skipped like any other
// branch; the harvest as a whole fails only when discovery fails, the context
// ends or nothing at all was harvested.
func (r *Runner) harvestInto(ctx context.Context, res *Result, archive *matchstore.Archive) error {
	seasons, err := r.selectSeasons(ctx)
	if err != nil {
		return err
	}

	if r.dash == nil && !ui.IsQuietMode() {
		debugMode := strings.ToLower(r.config.Logging.Level) == "debug"
		r.progress = ui.NewProgressDisplay(seasons[0].Name, debugMode)
	}

	harv := r.newHarvester()

	for _, season := range seasons {
		if err := r.waitWhilePaused(ctx); err != nil {
			return err
		}

		r.logger.InfoWithFields("Harvesting season", map[string]interface{}{
			"season_id":   season.ID,
			"season_name": season.Name,
		})
		if r.dash != nil {
			r.dash.LogInfo("Harvesting season %s", season.Name)
		} else if r.progress != nil {
			r.progress.SetSeason(season.Name)
		}

		matches, stats, err := harv.HarvestSeason(ctx, season)
		res.Stats = res.Stats.Merge(stats)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.LogBranchFailure("season", season.ID, err)
			if r.dash != nil {
				r.dash.LogError("Season %s failed: %v", season.Name, err)
			}
			continue
		}

		res.Seasons = append(res.Seasons, export.SeasonCount{
			SeasonID: season.ID,
			Name:     season.Name,
			Matches:  len(matches),
		})
		archive.Add(season, matches)

		logger.LogHarvestProgress(season.Name, len(res.Seasons), len(seasons))
	}

	if archive.TotalMatches() == 0 {
		return fmt.Errorf("no rateable matches harvested from %d seasons", len(seasons))
	}

	return nil
}

// newHarvester builds one harvester for the whole run, its tracker and branch
// callbacks wired to whichever display is active.
func (r *Runner) newHarvester() *harvest.Harvester {
	var opts []harvest.Option
	if r.dash != nil {
		opts = append(opts, harvest.WithObserver(&dashboardObserver{dash: r.dash}))
	} else if r.progress != nil {
		opts = append(opts, harvest.WithObserver(newDisplayObserver(r.progress)))
	}

	harv := harvest.New(r.client, &r.config.Harvest, r.logger, opts...)

	harv.Tracker().OnUpdate(func(snap progress.Snapshot) {
		if r.dash != nil {
			r.dash.UpdateOverall(snap.Done, snap.Total, snap.ETA, snap.HasETA)
		} else if r.progress != nil {
			r.progress.Observe(snap)
		}
	})

	return harv
}

// waitWhilePaused blocks while the dashboard pause toggle is held, so a
// paused harvest stops before opening the next season.
func (r *Runner) waitWhilePaused(ctx context.Context) error {
	if r.dash == nil {
		return nil
	}
	for r.dash.IsPaused() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return nil
}

// rateArchive replays the archive through the engine in stored order: seasons
// oldest first, matches chronological within each season.
func (r *Runner) rateArchive(engine *rating.Engine, archive *matchstore.Archive, res *Result) {
	for _, sm := range archive.Seasons {
		applied, skipped := 0, 0
		for _, m := range sm.Matches {
			if err := engine.Apply(matchResult(m)); err != nil {
				r.logger.WarnWithFields("Match rejected by rating engine", map[string]interface{}{
					"match_id": m.ID,
					"error":    err.Error(),
				})
				skipped++
				continue
			}
			applied++
		}
		logger.LogRatingBatch(sm.SeasonName, applied, skipped)
	}

	res.MatchesRated = engine.Applied()
	res.Draws = engine.Draws()
	res.Teams = engine.Len()
	res.Rows = engine.Leaderboard()
}

// matchResult reshapes a harvested match for the rating engine.
func matchResult(m harvest.Match) rating.MatchResult {
	return rating.MatchResult{
		MatchID:   m.ID,
		At:        m.Scheduled,
		Red:       m.Red,
		Blue:      m.Blue,
		RedScore:  m.RedScore,
		BlueScore: m.BlueScore,
	}
}

// writeOutputs writes the configured export files, summary last so it can
// list everything written before it.
func (r *Runner) writeOutputs(engine *rating.Engine, res *Result) error {
	if r.config.Output.WriteCSV {
		path, err := r.writer.LeaderboardCSV(res.Rows)
		if err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, path)
	}

	if r.config.Output.WriteJSON {
		path, err := r.writer.RatingsJSON(res.Rows)
		if err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, path)
	}

	if r.config.Output.WriteHistory {
		path, err := r.writer.HistoryJSON(engine.Competitors())
		if err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, path)
	}

	return r.writeSummary(res)
}

// writeSummary closes out the run record and writes it. The summary's output
// list covers the files written before it.
func (r *Runner) writeSummary(res *Result) error {
	res.FinishedAt = time.Now()

	summary := &export.RunSummary{
		RunID:           res.RunID,
		StartedAt:       res.StartedAt,
		FinishedAt:      res.FinishedAt,
		DurationSeconds: res.FinishedAt.Sub(res.StartedAt).Seconds(),
		Seasons:         res.Seasons,
		Harvest:         res.Stats,
		MatchesRated:    res.MatchesRated,
		Draws:           res.Draws,
		Teams:           res.Teams,
		Outputs:         res.Outputs,
	}

	path, err := r.writer.SummaryJSON(summary)
	if err != nil {
		return err
	}

	res.Outputs = append(res.Outputs, path)
	return nil
}

func (r *Runner) newResult() *Result {
	return &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
}

// finish closes the run on the active display and sends the completion
// notification when configured.
func (r *Runner) finish(res *Result, message string) {
	if res.FinishedAt.IsZero() {
		res.FinishedAt = time.Now()
	}

	r.logger.InfoWithFields("Run completed", map[string]interface{}{
		"run_id":        res.RunID,
		"duration":      res.FinishedAt.Sub(res.StartedAt).String(),
		"matches_rated": res.MatchesRated,
		"teams":         res.Teams,
		"outputs":       len(res.Outputs),
	})
	logger.LogComponentStop("pipeline", "completed")

	if r.dash != nil {
		r.dash.LogSuccess("%s", message)
	} else if r.progress != nil {
		r.progress.Complete()
	} else if !ui.IsQuietMode() {
		ui.PrintSuccess("\n" + message + "\n")
	}

	if r.config.Notifications.Enabled && r.config.Notifications.OnComplete {
		r.notifier.SendSuccess("Run Complete", message)
	}
}

// fail reports a fatal run error on the active display and sends the error
// notification when configured.
func (r *Runner) fail(res *Result, title string, err error) {
	if res.FinishedAt.IsZero() {
		res.FinishedAt = time.Now()
	}

	r.logger.WithError(err).WithField("run_id", res.RunID).Error(title)
	logger.LogComponentStop("pipeline", "failed")

	if r.dash != nil {
		r.dash.LogError("%s: %v", title, err)
	} else if !ui.IsQuietMode() {
		ui.PrintError("\n"+title, err.Error())
	}

	if r.config.Notifications.Enabled && r.config.Notifications.OnError {
		r.notifier.SendError(title, err.Error())
	}
}
