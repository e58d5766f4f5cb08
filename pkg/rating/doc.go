// Package rating maintains TrueSkill-style skill beliefs for VEX teams
// over an ordered stream of 2v2 match results.
//
// Each team carries a Gaussian belief (mu, sigma). Applying a match moves
// the winners' means up and the losers' down in proportion to how
// surprising the result was, and shrinks everyone's sigma: each observed
// match is evidence, whichever way it went. Draws pull both sides toward
// each other. The engine also keeps win/loss/tie counters and an
// append-only history of each team's belief after every applied match.
//
// Results must be applied in match order; the engine is deterministic and
// single-threaded. Rankings use the conservative score mu - 3*sigma, so a
// team the model knows little about cannot sit above a proven one:
//
//	engine := rating.NewEngine(rating.DefaultParams())
//	for _, res := range results { // already sorted by match time
//		if err := engine.Apply(res); err != nil {
//			return err
//		}
//	}
//	for _, row := range engine.Leaderboard() {
//		fmt.Println(row.Rank, row.Team, row.Conservative)
//	}
package rating
