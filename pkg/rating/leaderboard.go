package rating

import "sort"

// Row is one leaderboard entry.
type Row struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	Mu            float64 `json:"mu"`
	Sigma         float64 `json:"sigma"`
	Conservative  float64 `json:"conservative"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Matches       int     `json:"matches"`
	WinPercentage float64 `json:"win_percentage"`
}

// Leaderboard ranks all competitors by conservative score, best first.
// Ties rank alphabetically by team so repeated runs print identically.
func (e *Engine) Leaderboard() []Row {
	rows := make([]Row, 0, len(e.competitors))
	for _, team := range e.order {
		c := e.competitors[team]
		comp := Competitor{Team: c.team, Wins: c.wins, Losses: c.losses, Ties: c.ties}
		rows = append(rows, Row{
			Team:          c.team,
			Mu:            c.rating.Mu,
			Sigma:         c.rating.Sigma,
			Conservative:  c.rating.Conservative(),
			Wins:          c.wins,
			Losses:        c.losses,
			Ties:          c.ties,
			Matches:       comp.Matches(),
			WinPercentage: comp.WinPercentage(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Conservative != rows[j].Conservative {
			return rows[i].Conservative > rows[j].Conservative
		}
		return rows[i].Team < rows[j].Team
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
