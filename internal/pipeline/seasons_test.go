package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexrank/pkg/robotevents"
)

func season(id int, name string, start time.Time) robotevents.Season {
	return robotevents.Season{ID: id, Name: name, Start: start}
}

func TestFilterSeasons(t *testing.T) {
	y2021 := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	y2022 := time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)
	y2023 := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)

	all := []robotevents.Season{
		season(190, "Over Under", y2023),
		season(175, "Spin Up", y2022),
		season(181, "Tipping Point", y2021),
	}

	tests := []struct {
		name    string
		ids     []int
		filter  string
		wantIDs []int
	}{
		{"no selection keeps everything", nil, "", []int{190, 175, 181}},
		{"explicit ids", []int{181, 190}, "", []int{190, 181}},
		{"ids win over name filter", []int{175}, "Over", []int{175}},
		{"name filter is case insensitive", nil, "over", []int{190}},
		{"name filter substring", nil, "p", []int{175, 181}},
		{"unknown ids match nothing", []int{999}, "", nil},
		{"unmatched filter matches nothing", nil, "Nothing Season", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterSeasons(all, tt.ids, tt.filter)

			var ids []int
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestSortSeasonsOldestFirst(t *testing.T) {
	seasons := []robotevents.Season{
		season(190, "Over Under", time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)),
		season(0, "Undated", time.Time{}),
		season(181, "Tipping Point", time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)),
	}

	sortSeasonsOldestFirst(seasons)

	assert.Equal(t, "Undated", seasons[0].Name)
	assert.Equal(t, "Tipping Point", seasons[1].Name)
	assert.Equal(t, "Over Under", seasons[2].Name)
}

func TestSelectSeasonsErrors(t *testing.T) {
	muteUI(t)

	client := newFakeClient(season(190, "Over Under", time.Time{}))

	tests := []struct {
		name    string
		ids     []int
		filter  string
		wantErr string
	}{
		{"unknown ids", []int{42}, "", "season ids"},
		{"unmatched filter", nil, "Nothing Season", "no season name contains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Harvest.Seasons = tt.ids
			cfg.Harvest.SeasonFilter = tt.filter

			runner, err := New(client, cfg)
			require.NoError(t, err)

			_, err = runner.selectSeasons(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelectSeasonsEmptyProgram(t *testing.T) {
	muteUI(t)
	cfg := newTestConfig(t)

	runner, err := New(newFakeClient(), cfg)
	require.NoError(t, err)

	_, err = runner.selectSeasons(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no seasons")
}
