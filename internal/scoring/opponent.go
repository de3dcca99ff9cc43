package scoring

import "github.com/fortuna/drivescore/internal/store"

// Defaults for the opponent-strength relaxation.
const (
	DefaultIterations = 5
	DefaultStepSize   = 0.2
)

// AdjustForOpponents runs a fixed number of damped updates that remove
// schedule strength from drive scores. Both adjusted scores start at the
// drive score (or the relative drive score when centered). Each round
// computes, per season, the mean adjusted defensive score of every defense
// and the mean adjusted offensive score of every offense, then subtracts
// step times the opponent's mean from each drive. Both means are taken from
// the previous round before either side is updated.
//
// Iteration order is fixed, so identical input yields identical output.
func AdjustForOpponents(drives []store.Drive, iterations int, step float64, centered bool) []store.Drive {
	out := clone(drives)
	for i := range out {
		seed := out[i].DriveScore
		if centered {
			seed = out[i].RelativeDriveScore
		}
		out[i].AdjOffensiveScore = seed
		out[i].AdjDefensiveScore = seed
	}

	for round := 0; round < iterations; round++ {
		defenseStrength := make(groupMeans[teamSeason])
		offenseStrength := make(groupMeans[teamSeason])
		for _, d := range out {
			defenseStrength.add(teamSeason{d.Season, d.DefensiveTeam}, d.AdjDefensiveScore)
			offenseStrength.add(teamSeason{d.Season, d.OffensiveTeam}, d.AdjOffensiveScore)
		}

		for i := range out {
			d := &out[i]
			offAdj := defenseStrength.mean(teamSeason{d.Season, d.DefensiveTeam})
			defAdj := offenseStrength.mean(teamSeason{d.Season, d.OffensiveTeam})
			d.AdjOffensiveScore = d.AdjOffensiveScore.Sub(offAdj.Scale(step))
			d.AdjDefensiveScore = d.AdjDefensiveScore.Sub(defAdj.Scale(step))
		}
	}

	return out
}
