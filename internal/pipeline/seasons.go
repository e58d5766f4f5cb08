package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"vexrank/pkg/robotevents"
)

// selectSeasons lists the program's seasons and applies the configured
// selection, returning them oldest first.
func (r *Runner) selectSeasons(ctx context.Context) ([]robotevents.Season, error) {
	all, err := r.client.Seasons(ctx, r.config.API.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}

	selected := filterSeasons(all, r.config.Harvest.Seasons, r.config.Harvest.SeasonFilter)
	if len(selected) == 0 {
		switch {
		case len(r.config.Harvest.Seasons) > 0:
			return nil, fmt.Errorf("none of the configured season ids %v exist for program %d",
				r.config.Harvest.Seasons, r.config.API.ProgramID)
		case r.config.Harvest.SeasonFilter != "":
			return nil, fmt.Errorf("no season name contains %q", r.config.Harvest.SeasonFilter)
		default:
			return nil, fmt.Errorf("program %d has no seasons", r.config.API.ProgramID)
		}
	}

	sortSeasonsOldestFirst(selected)

	r.logger.InfoWithFields("Seasons selected", map[string]interface{}{
		"available": len(all),
		"selected":  len(selected),
	})

	return selected, nil
}

// filterSeasons applies the selection rules: explicit ids win, then the name
// filter, otherwise every season.
func filterSeasons(all []robotevents.Season, ids []int, nameFilter string) []robotevents.Season {
	if len(ids) > 0 {
		want := make(map[int]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		out := make([]robotevents.Season, 0, len(ids))
		for _, season := range all {
			if want[season.ID] {
				out = append(out, season)
			}
		}
		return out
	}

	if nameFilter != "" {
		needle := strings.ToLower(nameFilter)
		var out []robotevents.Season
		for _, season := range all {
			if strings.Contains(strings.ToLower(season.Name), needle) {
				out = append(out, season)
			}
		}
		return out
	}

	// Callers sort the selection in place, so never hand back the input.
	out := make([]robotevents.Season, len(all))
	copy(out, all)
	return out
}

// sortSeasonsOldestFirst orders seasons by start date ascending so ratings
// evolve forward in time. Seasons without a start date sort first.
func sortSeasonsOldestFirst(seasons []robotevents.Season) {
	sort.SliceStable(seasons, func(i, j int) bool {
		si, sj := seasons[i].Start, seasons[j].Start
		if si.IsZero() != sj.IsZero() {
			return si.IsZero()
		}
		return si.Before(sj)
	})
}
