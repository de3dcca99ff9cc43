package scoring

import "github.com/fortuna/drivescore/internal/store"

// LinkNextDrives copies the following drive's offense and field position onto
// each drive and assigns yard-line buckets. The next_* fields are set only
// when the following drive is in the same game and belongs to the other team.
func LinkNextDrives(drives []store.Drive) []store.Drive {
	out := clone(drives)
	for i := range out {
		d := &out[i]
		d.NextStartYardLine = store.NullFloat{}
		d.NextEndYardLine = store.NullFloat{}
		d.NextOffensiveTeam = ""

		if i+1 < len(out) {
			next := out[i+1]
			newGame := d.GameID != next.GameID || d.HomeTeam != next.HomeTeam || d.AwayTeam != next.AwayTeam
			sameOffense := d.OffensiveTeam == next.OffensiveTeam

			if !newGame && !sameOffense {
				d.NextOffensiveTeam = next.OffensiveTeam
				d.NextStartYardLine = next.StartYardLine
				d.NextEndYardLine = next.EndYardLine
			}
		}

		d.StartYardLineBin = Bin(d.StartYardLine)
		d.EndYardLineBin = Bin(d.EndYardLine)
		d.NextStartYardLineBin = Bin(d.NextStartYardLine)
	}
	return out
}

// FieldGoalRates returns the share of field-goal attempts made, per ending
// bucket, measured on the drives given.
func FieldGoalRates(drives []store.Drive) map[string]store.NullFloat {
	g := make(groupMeans[string])
	for _, d := range drives {
		if !IsFieldGoalAttempt(d.Result) || d.EndYardLineBin == "" {
			continue
		}
		made := 0.0
		if d.Result == ResultFieldGoal {
			made = 1
		}
		g.add(d.EndYardLineBin, store.Float(made))
	}

	rates := make(map[string]store.NullFloat, len(g))
	for bin := range g {
		rates[bin] = g.mean(bin)
	}
	return rates
}

// EstimateExpectedPoints values every field-goal attempt at three times the
// make-rate of its ending bucket, measured on the same drives. Attempts with
// no ending bucket are undefined. A defensive touchdown keeps its -7.
func EstimateExpectedPoints(drives []store.Drive) []store.Drive {
	out := clone(drives)
	rates := FieldGoalRates(out)

	for i := range out {
		d := &out[i]
		if !IsFieldGoalAttempt(d.Result) || DefensiveTouchdown(d.Result, d.LastPlayDesc) {
			continue
		}
		rate, ok := rates[d.EndYardLineBin]
		if !ok {
			d.ExpectedPoints = store.NullFloat{}
			continue
		}
		d.ExpectedPoints = rate.Scale(fieldGoalValue)
	}
	return out
}
