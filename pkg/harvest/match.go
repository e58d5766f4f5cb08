package harvest

import (
	"strconv"
	"time"

	"vexrank/pkg/robotevents"
)

// Reasons the validity filter discards a match.
const (
	SkipUnscored       = "unscored"
	SkipWrongSideCount = "wrong_side_count"
	SkipWrongTeamCount = "wrong_team_count"
)

// Match is one rateable match flattened out of the season, event and
// division hierarchy: two alliances of two teams each with final scores.
type Match struct {
	ID           int       `json:"id"`
	SeasonID     int       `json:"season_id"`
	EventID      int       `json:"event_id"`
	EventName    string    `json:"event_name"`
	DivisionID   int       `json:"division_id"`
	DivisionName string    `json:"division_name"`
	Name         string    `json:"name"`
	Round        int       `json:"round"`
	Instance     int       `json:"instance"`
	Matchnum     int       `json:"matchnum"`
	Scheduled    time.Time `json:"scheduled"`
	Red          [2]string `json:"red"`
	Blue         [2]string `json:"blue"`
	RedScore     int       `json:"red_score"`
	BlueScore    int       `json:"blue_score"`
}

// Before orders matches by (scheduled, round, instance, matchnum). A match
// with no scheduled time sorts ahead of any timestamped one; the remaining
// fields break ties so the order is reproducible.
func (m Match) Before(o Match) bool {
	if !m.Scheduled.Equal(o.Scheduled) {
		return m.Scheduled.Before(o.Scheduled)
	}
	if m.Round != o.Round {
		return m.Round < o.Round
	}
	if m.Instance != o.Instance {
		return m.Instance < o.Instance
	}
	return m.Matchnum < o.Matchnum
}

// flatten converts an API match into the rateable shape, or reports why it
// cannot be rated. Valid matches have final scores and exactly two alliances
// seating exactly two teams each.
func flatten(seasonID int, event robotevents.Event, division robotevents.Division, m robotevents.Match) (Match, string) {
	if !m.Scored {
		return Match{}, SkipUnscored
	}

	red, okRed := m.Alliance(robotevents.AllianceRed)
	blue, okBlue := m.Alliance(robotevents.AllianceBlue)
	if len(m.Alliances) != 2 || !okRed || !okBlue {
		return Match{}, SkipWrongSideCount
	}
	if len(red.Teams) != 2 || len(blue.Teams) != 2 {
		return Match{}, SkipWrongTeamCount
	}

	flat := Match{
		ID:           m.ID,
		SeasonID:     seasonID,
		EventID:      event.ID,
		EventName:    event.Name,
		DivisionID:   division.ID,
		DivisionName: division.Name,
		Name:         m.Name,
		Round:        m.Round,
		Instance:     m.Instance,
		Matchnum:     m.Matchnum,
		Scheduled:    m.Scheduled,
		RedScore:     red.Score,
		BlueScore:    blue.Score,
	}
	for i := 0; i < 2; i++ {
		flat.Red[i] = teamLabel(red.Teams[i])
		flat.Blue[i] = teamLabel(blue.Teams[i])
	}

	return flat, ""
}

// teamLabel picks the stable team number for a seat. The API usually carries
// it in name; some programs report it under code instead.
func teamLabel(seat robotevents.AllianceTeam) string {
	if seat.Team.Name != "" {
		return seat.Team.Name
	}
	if seat.Team.Code != "" {
		return seat.Team.Code
	}
	return strconv.Itoa(seat.Team.ID)
}
