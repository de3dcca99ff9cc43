package scoring

import (
	"regexp"
	"strings"

	"github.com/fortuna/drivescore/internal/store"
)

// Drive results referenced by the scorer.
const (
	ResultTouchdown      = "Touchdown"
	ResultFieldGoal      = "Field Goal"
	ResultMissedFG       = "Missed FG"
	ResultBlockedFG      = "Blocked FG"
	ResultBlockedFGDowns = "Blocked FG, Downs"
	ResultInterception   = "Interception"
	ResultFumble         = "Fumble"
	ResultSafety         = "Safety"
	ResultFumbleSafety   = "Fumble, Safety"

	ResultInterceptionTouchdown = "Interception, Touchdown"
	ResultFumbleTouchdown       = "Fumble, Touchdown"
)

const (
	touchdownValue          = 7
	defensiveTouchdownValue = -7
	safetyValue             = -2
	fieldGoalValue          = 3
)

var (
	twoPointSucceeds  = regexp.MustCompile(`TWO-POINT CONV.*SUCCEEDS`)
	twoPointReversed  = regexp.MustCompile(`SUCCEEDS.*REVERSED`)
	twoPointNullified = regexp.MustCompile(`SUCCEEDS.*NULLIFIED`)

	touchdownReversed  = regexp.MustCompile(`TOUCHDOWN.*REVERSED`)
	touchdownNullified = regexp.MustCompile(`TOUCHDOWN.*NULLIFIED`)
)

// IsFieldGoalAttempt reports whether a result is a field-goal try.
func IsFieldGoalAttempt(result string) bool {
	switch result {
	case ResultFieldGoal, ResultMissedFG, ResultBlockedFG, ResultBlockedFGDowns:
		return true
	}
	return false
}

// IsSafety reports whether a result gave the defense a safety.
func IsSafety(result string) bool {
	return result == ResultSafety || result == ResultFumbleSafety
}

// DefensiveTouchdown reports whether the closing play scored a touchdown the
// result does not credit to the offense, and the score stood.
func DefensiveTouchdown(result, lastPlay string) bool {
	return result != ResultTouchdown &&
		strings.Contains(lastPlay, "TOUCHDOWN") &&
		!touchdownReversed.MatchString(lastPlay) &&
		!touchdownNullified.MatchString(lastPlay)
}

func twoPointConversion(lastPlay string) bool {
	return twoPointSucceeds.MatchString(lastPlay) &&
		!twoPointReversed.MatchString(lastPlay) &&
		!twoPointNullified.MatchString(lastPlay)
}

// MarkScores sets realized points, scoring flags and base expected points,
// and amends turnovers returned for a touchdown to their compound result.
func MarkScores(drives []store.Drive) []store.Drive {
	out := clone(drives)
	for i := range out {
		markDrive(&out[i])
	}
	return out
}

func markDrive(d *store.Drive) {
	touchdown := d.Result == ResultTouchdown
	fieldGoal := d.Result == ResultFieldGoal

	d.ExpectedPoints = store.Float(0)
	d.OffensivePoints = 0
	d.DSTPoints = 0

	if touchdown {
		d.ExpectedPoints = store.Float(touchdownValue)
		d.OffensivePoints += 6
	}
	if fieldGoal {
		d.OffensivePoints += fieldGoalValue
	}
	if strings.Contains(d.LastPlayDesc, "extra point is GOOD") {
		d.OffensivePoints++
	}
	if twoPointConversion(d.LastPlayDesc) {
		d.OffensivePoints += 2
	}

	d.IsTouchdown = touchdown
	d.IsFieldGoal = fieldGoal
	d.IsScore = touchdown || fieldGoal
	d.IsInterception = d.Result == ResultInterception
	d.IsFumble = d.Result == ResultFumble

	if DefensiveTouchdown(d.Result, d.LastPlayDesc) {
		switch {
		case d.IsInterception:
			d.Result = ResultInterceptionTouchdown
		case d.IsFumble:
			d.Result = ResultFumbleTouchdown
		}
		d.ExpectedPoints = store.Float(defensiveTouchdownValue)
		// Extra point assumed.
		d.DSTPoints += 7
	}
	if IsSafety(d.Result) {
		d.ExpectedPoints = store.Float(safetyValue)
		d.DSTPoints += 2
	}
}

// TrackScore fills the running home/away and offense/defense score before
// and after every drive, the final scores and the win/loss flags. Drives
// must be in chronological order within each game.
func TrackScore(drives []store.Drive) []store.Drive {
	out := clone(drives)

	type running struct{ home, away int }
	games := make(map[string]*running)

	for i := range out {
		d := &out[i]
		r, ok := games[d.GameID]
		if !ok {
			r = &running{}
			games[d.GameID] = r
		}

		d.HomePoints, d.AwayPoints = 0, 0
		if d.HomeTeam == d.OffensiveTeam {
			d.HomePoints += d.OffensivePoints
		}
		if d.HomeTeam == d.DefensiveTeam {
			d.HomePoints += d.DSTPoints
		}
		if d.AwayTeam == d.OffensiveTeam {
			d.AwayPoints += d.OffensivePoints
		}
		if d.AwayTeam == d.DefensiveTeam {
			d.AwayPoints += d.DSTPoints
		}

		r.home += d.HomePoints
		r.away += d.AwayPoints
		d.HomeScoreEnd = r.home
		d.AwayScoreEnd = r.away
		d.HomeScoreStart = d.HomeScoreEnd - d.HomePoints
		d.AwayScoreStart = d.AwayScoreEnd - d.AwayPoints

		d.OffensiveTeamScoreEnd = sideValue(d, d.OffensiveTeam, d.HomeScoreEnd, d.AwayScoreEnd)
		d.DefensiveTeamScoreEnd = sideValue(d, d.DefensiveTeam, d.HomeScoreEnd, d.AwayScoreEnd)
		d.OffensiveTeamScoreStart = d.OffensiveTeamScoreEnd - d.OffensivePoints
		d.DefensiveTeamScoreStart = d.DefensiveTeamScoreEnd - d.DSTPoints

		d.OffensiveFinalScore = sideValue(d, d.OffensiveTeam, d.HomeFinalScore, d.AwayFinalScore)
		d.DefensiveFinalScore = sideValue(d, d.DefensiveTeam, d.HomeFinalScore, d.AwayFinalScore)

		homeWon := d.HomeFinalScore > d.AwayFinalScore
		awayWon := d.AwayFinalScore > d.HomeFinalScore
		d.OffensiveWin = (d.OffensiveTeam == d.HomeTeam && homeWon) || (d.OffensiveTeam == d.AwayTeam && awayWon)
		d.DefensiveWin = (d.DefensiveTeam == d.HomeTeam && homeWon) || (d.DefensiveTeam == d.AwayTeam && awayWon)
		d.Tie = !d.OffensiveWin && !d.DefensiveWin
	}

	return out
}

func sideValue(d *store.Drive, team string, home, away int) int {
	switch team {
	case d.HomeTeam:
		return home
	case d.AwayTeam:
		return away
	}
	return 0
}
