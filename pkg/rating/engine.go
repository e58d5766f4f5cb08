package rating

import (
	"fmt"
	"math"
)

// competitor is the engine's mutable record for one team.
type competitor struct {
	team    string
	rating  Rating
	wins    int
	losses  int
	ties    int
	history []Snapshot
}

// Engine maintains skill beliefs over an ordered stream of match results.
// Applying the same stream in the same order always produces the same
// beliefs; the engine is sequential and not safe for concurrent use.
type Engine struct {
	params  Params
	epsilon float64

	competitors map[string]*competitor
	order       []string
	applied     int
	draws       int
}

// NewEngine creates an engine with the given model constants.
func NewEngine(params Params) *Engine {
	return &Engine{
		params: params,
		// Draw margin: the performance band within which a match is
		// indistinguishable from a tie.
		epsilon:     math.Sqrt2 * params.Beta * invCDF(0.5+params.DrawProb/2),
		competitors: make(map[string]*competitor),
	}
}

// Epsilon exposes the draw margin derived from the model constants.
func (e *Engine) Epsilon() float64 {
	return e.epsilon
}

// Applied reports how many match results have been applied.
func (e *Engine) Applied() int {
	return e.applied
}

// Draws reports how many of the applied results were draws.
func (e *Engine) Draws() int {
	return e.draws
}

// Len reports how many competitors the engine has seen.
func (e *Engine) Len() int {
	return len(e.competitors)
}

// Apply folds one match result into the beliefs of its four participants.
// Unknown teams enter at the initial belief. The result's outcome comes
// from the scores; equal scores update both sides as a draw.
func (e *Engine) Apply(res MatchResult) error {
	for _, team := range [4]string{res.Red[0], res.Red[1], res.Blue[0], res.Blue[1]} {
		if team == "" {
			return fmt.Errorf("match %d: empty team name", res.MatchID)
		}
	}

	red := [2]*competitor{e.resolve(res.Red[0]), e.resolve(res.Red[1])}
	blue := [2]*competitor{e.resolve(res.Blue[0]), e.resolve(res.Blue[1])}

	outcome := res.Outcome()
	switch outcome {
	case RedWins:
		red[0].wins++
		red[1].wins++
		blue[0].losses++
		blue[1].losses++
	case BlueWins:
		blue[0].wins++
		blue[1].wins++
		red[0].losses++
		red[1].losses++
	case Draw:
		red[0].ties++
		red[1].ties++
		blue[0].ties++
		blue[1].ties++
		e.draws++
	}

	e.update2v2(red, blue, outcome)

	for _, m := range [4]*competitor{red[0], red[1], blue[0], blue[1]} {
		m.history = append(m.history, Snapshot{
			MatchID: res.MatchID,
			At:      res.At,
			Mu:      m.rating.Mu,
			Sigma:   m.rating.Sigma,
		})
	}

	e.applied++
	ratingUpdatesTotal.Inc()
	return nil
}

// resolve returns the record for a team, creating it at the initial belief
// on first sight.
func (e *Engine) resolve(team string) *competitor {
	if c, ok := e.competitors[team]; ok {
		return c
	}
	c := &competitor{
		team: team,
		rating: Rating{
			Mu:    e.params.InitialMu,
			Sigma: e.params.InitialSigma,
		},
	}
	e.competitors[team] = c
	e.order = append(e.order, team)
	return c
}

// update2v2 performs the belief update for a 2v2 match. Team performance
// is the sum of member performances; the joint uncertainty c pools all
// four sigmas with the performance noise beta.
func (e *Engine) update2v2(red, blue [2]*competitor, outcome Outcome) {
	team1 := red
	team2 := blue

	team1Mu := team1[0].rating.Mu + team1[1].rating.Mu
	team2Mu := team2[0].rating.Mu + team2[1].rating.Mu

	sumVar := 0.0
	for _, m := range [4]*competitor{red[0], red[1], blue[0], blue[1]} {
		sumVar += m.rating.Sigma * m.rating.Sigma
	}
	c := math.Sqrt(sumVar + 4*e.params.Beta*e.params.Beta)

	var deltaMu, margin float64
	sign := 1.0
	switch outcome {
	case Draw:
		deltaMu = team1Mu - team2Mu
		margin = e.epsilon
	case RedWins:
		deltaMu = team1Mu - team2Mu
	case BlueWins:
		// Swap so team1 is the winner; the sign stays positive.
		deltaMu = team2Mu - team1Mu
		team1, team2 = team2, team1
	}

	t := deltaMu / c
	eps := margin / c

	var v, w float64
	if outcome == Draw {
		v = vDraw(t, eps)
		w = wDraw(t, eps)
	} else {
		v = vNonDraw(t, eps)
		w = wNonDraw(t, eps)
	}

	tau2 := e.params.Tau * e.params.Tau
	c2 := c * c

	for _, m := range team1 {
		varT := m.rating.Sigma*m.rating.Sigma + tau2
		m.rating.Mu += sign * (varT / c) * v
		// Floor keeps sigma real when w overshoots on extreme upsets.
		m.rating.Sigma = math.Sqrt(varT * math.Max(1-(varT/c2)*w, 1e-9))
	}
	for _, m := range team2 {
		varT := m.rating.Sigma*m.rating.Sigma + tau2
		m.rating.Mu += -sign * (varT / c) * v
		m.rating.Sigma = math.Sqrt(varT * math.Max(1-(varT/c2)*w, 1e-9))
	}
}

// Competitor returns a copy of one team's state.
func (e *Engine) Competitor(team string) (Competitor, bool) {
	c, ok := e.competitors[team]
	if !ok {
		return Competitor{}, false
	}
	return c.export(), true
}

// Competitors returns copies of all competitor states in first-seen order.
func (e *Engine) Competitors() []Competitor {
	out := make([]Competitor, 0, len(e.order))
	for _, team := range e.order {
		out = append(out, e.competitors[team].export())
	}
	return out
}

func (c *competitor) export() Competitor {
	history := make([]Snapshot, len(c.history))
	copy(history, c.history)
	return Competitor{
		Team:    c.team,
		Rating:  c.rating,
		Wins:    c.wins,
		Losses:  c.losses,
		Ties:    c.ties,
		History: history,
	}
}
