package robotevents

import "time"

// IDInfo is the compact reference the API embeds for related entities.
type IDInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Season is one competitive season of a program (e.g. "Over Under").
type Season struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	Program IDInfo    `json:"program"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Location describes where an event was held.
type Location struct {
	Venue   string `json:"venue,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// Event is a tournament within a season.
type Event struct {
	ID       int       `json:"id"`
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
	Season   IDInfo    `json:"season"`
	Location Location  `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Division is a bracket within an event. Small events have one,
// large signature events run several in parallel.
type Division struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Alliance colors as the API reports them.
const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// AllianceTeam is one team's seat on an alliance.
type AllianceTeam struct {
	Team    IDInfo `json:"team"`
	Sitting bool   `json:"sitting"`
}

// Alliance is one side of a match.
type Alliance struct {
	Color string         `json:"color"`
	Score int            `json:"score"`
	Teams []AllianceTeam `json:"teams"`
}

// Match is a single played match inside a division.
type Match struct {
	ID        int        `json:"id"`
	Event     IDInfo     `json:"event"`
	Division  IDInfo     `json:"division"`
	Round     int        `json:"round"`
	Instance  int        `json:"instance"`
	Matchnum  int        `json:"matchnum"`
	Name      string     `json:"name"`
	Scheduled time.Time  `json:"scheduled"`
	Started   time.Time  `json:"started"`
	Field     string     `json:"field"`
	Scored    bool       `json:"scored"`
	Alliances []Alliance `json:"alliances"`
}

// Before orders matches by (scheduled, round, instance, matchnum).
// A match with no scheduled time sorts ahead of any scheduled one;
// the remaining fields break ties so the order is reproducible.
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

// Alliance returns the alliance with the given color.
func (m Match) Alliance(color string) (Alliance, bool) {
	for _, a := range m.Alliances {
		if a.Color == color {
			return a, true
		}
	}
	return Alliance{}, false
}

// TwoByTwo reports whether the match has exactly two alliances with exactly
// two teams each. Matches with surrogate seats, forfeits recorded as empty
// alliances, or non-standard formats fail this and cannot be rated.
func (m Match) TwoByTwo() bool {
	if len(m.Alliances) != 2 {
		return false
	}
	for _, a := range m.Alliances {
		if len(a.Teams) != 2 {
			return false
		}
	}
	return true
}

// pageMeta is the pagination block the API attaches to list responses.
type pageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// envelope is the standard list response shape: a data array plus
// pagination metadata. Meta is nil for endpoints that return everything
// in one response.
type envelope[T any] struct {
	Meta *pageMeta `json:"meta"`
	Data []T       `json:"data"`
}
