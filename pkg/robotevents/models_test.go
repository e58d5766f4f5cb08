package robotevents

import (
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchDecode(t *testing.T) {
	payload := `{
		"id": 90812345,
		"event": {"id": 51234, "name": "Spring Regional", "code": "RE-VRC-23-4567"},
		"division": {"id": 1, "name": "Main"},
		"round": 2,
		"instance": 1,
		"matchnum": 14,
		"name": "Qualifier #14",
		"scheduled": "2024-03-02T14:35:00-05:00",
		"started": "2024-03-02T14:41:12-05:00",
		"field": "Field 2",
		"scored": true,
		"alliances": [
			{
				"color": "red",
				"score": 112,
				"teams": [
					{"team": {"id": 9001, "name": "1010A"}, "sitting": false},
					{"team": {"id": 9002, "name": "315B"}, "sitting": false}
				]
			},
			{
				"color": "blue",
				"score": 98,
				"teams": [
					{"team": {"id": 9003, "name": "2145Z"}, "sitting": false},
					{"team": {"id": 9004, "name": "99X"}, "sitting": false}
				]
			}
		]
	}`

	var m Match
	require.NoError(t, json.Unmarshal([]byte(payload), &m))

	assert.Equal(t, 90812345, m.ID)
	assert.Equal(t, "RE-VRC-23-4567", m.Event.Code)
	assert.Equal(t, 14, m.Matchnum)
	assert.True(t, m.Scored)
	assert.False(t, m.Scheduled.IsZero())

	red, ok := m.Alliance(AllianceRed)
	require.True(t, ok)
	assert.Equal(t, 112, red.Score)
	require.Len(t, red.Teams, 2)
	assert.Equal(t, "1010A", red.Teams[0].Team.Name)

	blue, ok := m.Alliance(AllianceBlue)
	require.True(t, ok)
	assert.Equal(t, 98, blue.Score)

	assert.True(t, m.TwoByTwo())
}

func TestMatchDecodeNullScheduled(t *testing.T) {
	var m Match
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"scheduled":null,"scored":false}`), &m))
	assert.True(t, m.Scheduled.IsZero())
}

func TestMatchBefore(t *testing.T) {
	base := time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Match
		want bool
	}{
		{
			name: "earlier scheduled wins",
			a:    Match{Scheduled: base, Round: 9},
			b:    Match{Scheduled: base.Add(time.Minute), Round: 1},
			want: true,
		},
		{
			name: "unscheduled sorts first",
			a:    Match{Round: 5},
			b:    Match{Scheduled: base, Round: 1},
			want: true,
		},
		{
			name: "round breaks scheduled tie",
			a:    Match{Scheduled: base, Round: 1, Instance: 9},
			b:    Match{Scheduled: base, Round: 2, Instance: 1},
			want: true,
		},
		{
			name: "instance breaks round tie",
			a:    Match{Scheduled: base, Round: 2, Instance: 1, Matchnum: 9},
			b:    Match{Scheduled: base, Round: 2, Instance: 2, Matchnum: 1},
			want: true,
		},
		{
			name: "matchnum breaks instance tie",
			a:    Match{Scheduled: base, Round: 2, Instance: 1, Matchnum: 3},
			b:    Match{Scheduled: base, Round: 2, Instance: 1, Matchnum: 4},
			want: true,
		},
		{
			name: "identical keys are not before each other",
			a:    Match{Scheduled: base, Round: 2, Instance: 1, Matchnum: 3},
			b:    Match{Scheduled: base, Round: 2, Instance: 1, Matchnum: 3},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Before(tt.b))
			if tt.want {
				assert.False(t, tt.b.Before(tt.a), "ordering must be asymmetric")
			}
		})
	}
}

func TestMatchOrderingIsReproducible(t *testing.T) {
	base := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	matches := []Match{
		{ID: 4, Scheduled: base.Add(30 * time.Minute), Round: 2, Matchnum: 2},
		{ID: 1, Round: 1, Matchnum: 1},
		{ID: 3, Scheduled: base.Add(30 * time.Minute), Round: 2, Matchnum: 1},
		{ID: 2, Scheduled: base, Round: 1, Matchnum: 5},
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Before(matches[j])
	})

	got := []int{matches[0].ID, matches[1].ID, matches[2].ID, matches[3].ID}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestMatchTwoByTwo(t *testing.T) {
	twoTeams := []AllianceTeam{
		{Team: IDInfo{ID: 1, Name: "1010A"}},
		{Team: IDInfo{ID: 2, Name: "315B"}},
	}

	tests := []struct {
		name  string
		match Match
		want  bool
	}{
		{
			name: "standard 2v2",
			match: Match{Alliances: []Alliance{
				{Color: AllianceRed, Teams: twoTeams},
				{Color: AllianceBlue, Teams: twoTeams},
			}},
			want: true,
		},
		{
			name: "one-team alliance",
			match: Match{Alliances: []Alliance{
				{Color: AllianceRed, Teams: twoTeams[:1]},
				{Color: AllianceBlue, Teams: twoTeams},
			}},
			want: false,
		},
		{
			name: "three-team alliance",
			match: Match{Alliances: []Alliance{
				{Color: AllianceRed, Teams: append([]AllianceTeam{{Team: IDInfo{ID: 3}}}, twoTeams...)},
				{Color: AllianceBlue, Teams: twoTeams},
			}},
			want: false,
		},
		{
			name:  "no alliances",
			match: Match{},
			want:  false,
		},
		{
			name: "single alliance",
			match: Match{Alliances: []Alliance{
				{Color: AllianceRed, Teams: twoTeams},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.match.TwoByTwo())
		})
	}
}
