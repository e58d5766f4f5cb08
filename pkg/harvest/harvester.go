package harvest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"vexrank/pkg/config"
	"vexrank/pkg/logger"
	"vexrank/pkg/progress"
	"vexrank/pkg/robotevents"
)

// Branch levels for failure accounting.
const (
	branchSeason   = "season"
	branchEvent    = "event"
	branchDivision = "division"
)

// API is the slice of the RobotEvents client the harvester consumes.
type API interface {
	SeasonEvents(ctx context.Context, seasonID int) ([]robotevents.Event, error)
	EventDivisions(ctx context.Context, eventID int) ([]robotevents.Division, error)
	DivisionMatches(ctx context.Context, eventID, divisionID int, scoredOnly bool) ([]robotevents.Match, error)
}

// Observer receives event-branch lifecycle callbacks during a harvest.
// Callbacks fire from worker goroutines, so implementations must be safe
// for concurrent use.
type Observer interface {
	BranchStarted(id int, label string)
	BranchCompleted(id int, matches, skipped int)
	BranchFailed(id int, err error)
}

// Harvester walks season to events to divisions to matches and produces one
// chronologically ordered match list per season. Fan-out is bounded by the
// configured concurrency at both the event and the division level; request
// rate is the API client's pacer's job, so widening the fan-out never adds
// request rate.
type Harvester struct {
	api         API
	concurrency int
	scoredOnly  bool
	tracker     *progress.Tracker
	observer    Observer
	logger      logger.Logger
}

// Option adjusts a Harvester beyond its config.
type Option func(*Harvester)

// WithTracker substitutes the progress tracker the harvester feeds.
func WithTracker(t *progress.Tracker) Option {
	return func(h *Harvester) {
		if t != nil {
			h.tracker = t
		}
	}
}

// WithObserver attaches a branch lifecycle observer, typically a live
// dashboard.
func WithObserver(o Observer) Option {
	return func(h *Harvester) {
		h.observer = o
	}
}

// New creates a Harvester over the given API client.
func New(api API, cfg *config.HarvestConfig, log logger.Logger, opts ...Option) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}

	h := &Harvester{
		api:         api,
		concurrency: cfg.Concurrency,
		scoredOnly:  cfg.ScoredOnly,
		tracker:     progress.NewTracker(),
		logger:      log,
	}
	if h.concurrency < 1 {
		h.concurrency = 1
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Tracker returns the progress tracker the harvester updates. Work units are
// branches: one per event plus one per discovered division.
func (h *Harvester) Tracker() *progress.Tracker {
	return h.tracker
}

// HarvestSeason traverses one season and returns its matches ordered by
// (scheduled, round, instance, matchnum) together with traversal statistics.
// Failed event and division branches are logged, counted and skipped; an
// error comes back only when the season's event listing itself fails or the
// context ends.
func (h *Harvester) HarvestSeason(ctx context.Context, season robotevents.Season) ([]Match, Stats, error) {
	run := newTally()

	events, err := h.api.SeasonEvents(ctx, season.ID)
	if err != nil {
		if ctx.Err() == nil {
			run.branchFailed(branchSeason)
		}
		return nil, run.snapshot(), fmt.Errorf("listing events for season %d: %w", season.ID, err)
	}

	h.logger.InfoWithFields("Season events listed", map[string]interface{}{
		"season_id": season.ID,
		"season":    season.Name,
		"events":    len(events),
	})

	if len(events) == 0 {
		return nil, run.snapshot(), nil
	}

	h.tracker.AddWork(len(events))

	pool := newWorkerPool(h.concurrency, func(ctx context.Context, event robotevents.Event) ([]Match, error) {
		return h.harvestEvent(ctx, season, event, run)
	}, h.logger)
	pool.Start(ctx)

	// Results land in listing-order slots so completion order never
	// affects output order.
	slots := make([][]Match, len(events))

	var collect sync.WaitGroup
	collect.Add(1)
	go func() {
		defer collect.Done()
		for res := range pool.Results() {
			if res.err != nil {
				if ctx.Err() == nil {
					run.branchFailed(branchEvent)
					h.notifyFailed(res.event.ID, res.err)
					h.logger.WithFields(map[string]interface{}{
						"level":    branchEvent,
						"event_id": res.event.ID,
						"event":    res.event.Name,
					}).WithError(res.err).Warn("Harvest branch failed, skipping")
				}
			} else {
				slots[res.index] = res.matches
				run.event()
			}
			h.tracker.Tick(1)
		}
	}()

	for i, event := range events {
		if err := pool.Submit(eventJob{index: i, event: event}); err != nil {
			break
		}
	}
	pool.Stop()
	collect.Wait()

	if err := ctx.Err(); err != nil {
		return nil, run.snapshot(), err
	}

	matches := mergeSlots(slots)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })

	stats := run.snapshot()
	h.logger.InfoWithFields("Season harvested", map[string]interface{}{
		"season_id": season.ID,
		"season":    season.Name,
		"events":    stats.Events,
		"divisions": stats.Divisions,
		"matches":   stats.Matches,
		"skipped":   stats.SkippedTotal(),
		"failed":    stats.FailedTotal(),
	})

	return matches, stats, nil
}

// harvestEvent lists an event's divisions and drains them under a bounded
// group. A failed division is recorded and skipped without cancelling its
// siblings; only context cancellation aborts the event.
func (h *Harvester) harvestEvent(ctx context.Context, season robotevents.Season, event robotevents.Event, run *tally) ([]Match, error) {
	h.notifyStarted(event.ID, event.Name)

	divisions, err := h.api.EventDivisions(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if len(divisions) == 0 {
		h.notifyCompleted(event.ID, 0, 0)
		return nil, nil
	}

	h.tracker.AddWork(len(divisions))

	slots := make([][]Match, len(divisions))
	skips := make([]int, len(divisions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for i, division := range divisions {
		i, division := i, division
		g.Go(func() error {
			defer h.tracker.Tick(1)

			matches, skipped, err := h.harvestDivision(gctx, season, event, division, run)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				run.branchFailed(branchDivision)
				h.logger.WithFields(map[string]interface{}{
					"level":       branchDivision,
					"event_id":    event.ID,
					"division_id": division.ID,
					"division":    division.Name,
				}).WithError(err).Warn("Harvest branch failed, skipping")
				return nil
			}

			slots[i] = matches
			skips[i] = skipped
			run.division()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := mergeSlots(slots)
	skipped := 0
	for _, n := range skips {
		skipped += n
	}
	h.notifyCompleted(event.ID, len(merged), skipped)

	return merged, nil
}

// harvestDivision fetches one division's matches, filters out the ones that
// cannot be rated and sorts the rest by the chronological key. The second
// return value counts the discarded matches.
func (h *Harvester) harvestDivision(ctx context.Context, season robotevents.Season, event robotevents.Event, division robotevents.Division, run *tally) ([]Match, int, error) {
	raw, err := h.api.DivisionMatches(ctx, event.ID, division.ID, h.scoredOnly)
	if err != nil {
		return nil, 0, err
	}

	matches := make([]Match, 0, len(raw))
	for _, m := range raw {
		flat, reason := flatten(season.ID, event, division, m)
		if reason != "" {
			run.skip(reason)
			h.logger.DebugWithFields("Match discarded", map[string]interface{}{
				"match_id": m.ID,
				"match":    m.Name,
				"reason":   reason,
			})
			continue
		}
		matches = append(matches, flat)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })

	run.matches(len(matches))

	return matches, len(raw) - len(matches), nil
}

func (h *Harvester) notifyStarted(id int, label string) {
	if h.observer != nil {
		h.observer.BranchStarted(id, label)
	}
}

func (h *Harvester) notifyCompleted(id int, matches, skipped int) {
	if h.observer != nil {
		h.observer.BranchCompleted(id, matches, skipped)
	}
}

func (h *Harvester) notifyFailed(id int, err error) {
	if h.observer != nil {
		h.observer.BranchFailed(id, err)
	}
}

// mergeSlots concatenates per-branch results in listing order.
func mergeSlots(slots [][]Match) []Match {
	total := 0
	for _, s := range slots {
		total += len(s)
	}

	merged := make([]Match, 0, total)
	for _, s := range slots {
		merged = append(merged, s...)
	}
	return merged
}
