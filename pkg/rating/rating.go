package rating

import (
	"time"

	"vexrank/pkg/config"
)

// Params are the skill model constants. The defaults follow the standard
// parameterization: sigma is a third of mu, beta half of sigma, tau a
// hundredth of sigma.
type Params struct {
	InitialMu    float64
	InitialSigma float64
	Beta         float64
	Tau          float64
	DrawProb     float64
}

// DefaultParams returns the standard model constants.
func DefaultParams() Params {
	mu := 25.0
	sigma := mu / 3
	return Params{
		InitialMu:    mu,
		InitialSigma: sigma,
		Beta:         sigma / 2,
		Tau:          sigma / 100,
		DrawProb:     0.1,
	}
}

// ParamsFromConfig maps the rating configuration onto model constants.
func ParamsFromConfig(cfg *config.RatingConfig) Params {
	return Params{
		InitialMu:    cfg.InitialMu,
		InitialSigma: cfg.InitialSigma,
		Beta:         cfg.Beta,
		Tau:          cfg.Tau,
		DrawProb:     cfg.DrawProbability,
	}
}

// Rating is a skill belief: mu is the estimated skill, sigma how uncertain
// the estimate still is.
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Conservative is the ranking score mu - 3*sigma: a lower bound the true
// skill exceeds with high confidence, so unknown teams rank below proven
// ones of equal mean.
func (r Rating) Conservative() float64 {
	return r.Mu - 3*r.Sigma
}

// Outcome is a match result from red's perspective.
type Outcome int

const (
	BlueWins Outcome = -1
	Draw     Outcome = 0
	RedWins  Outcome = 1
)

// MatchResult is one played 2v2 match, identified by the teams in each
// alliance seat and the final scores.
type MatchResult struct {
	MatchID   int
	At        time.Time
	Red       [2]string
	Blue      [2]string
	RedScore  int
	BlueScore int
}

// Outcome derives the result from the scores. Equal scores are a draw.
func (m MatchResult) Outcome() Outcome {
	switch {
	case m.RedScore > m.BlueScore:
		return RedWins
	case m.RedScore < m.BlueScore:
		return BlueWins
	default:
		return Draw
	}
}

// Snapshot is one point of a competitor's belief history, taken after a
// match was applied.
type Snapshot struct {
	MatchID int       `json:"match_id"`
	At      time.Time `json:"at"`
	Mu      float64   `json:"mu"`
	Sigma   float64   `json:"sigma"`
}

// Competitor is the public view of one team's state in the model.
type Competitor struct {
	Team    string     `json:"team"`
	Rating  Rating     `json:"rating"`
	Wins    int        `json:"wins"`
	Losses  int        `json:"losses"`
	Ties    int        `json:"ties"`
	History []Snapshot `json:"history,omitempty"`
}

// Matches is the number of results applied to this competitor.
func (c Competitor) Matches() int {
	return c.Wins + c.Losses + c.Ties
}

// WinPercentage counts a tie as half a win.
func (c Competitor) WinPercentage() float64 {
	total := c.Matches()
	if total == 0 {
		return 0
	}
	return (float64(c.Wins) + 0.5*float64(c.Ties)) / float64(total) * 100
}
