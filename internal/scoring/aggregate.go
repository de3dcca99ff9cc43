package scoring

import (
	"fmt"
	"sort"

	"github.com/fortuna/drivescore/internal/store"
)

// Side selects which team of a drive an aggregate is credited to.
type Side string

const (
	SideOffense Side = "offense"
	SideDefense Side = "defense"
)

// ParseSide accepts "offense" or "defense".
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideOffense, SideDefense:
		return Side(s), nil
	}
	return "", fmt.Errorf("invalid side %q", s)
}

// RateTeams averages drive scores per team-season for both sides of the
// ball. Undefined drive scores are skipped. NetScore is offense minus
// defense, on adjusted scores when both are defined and raw scores
// otherwise. Ratings are ordered by season, then team.
func RateTeams(drives []store.Drive) []store.TeamRating {
	type sums struct {
		offenseDrives, defenseDrives int
	}
	counts := make(map[teamSeason]*sums)
	offense := make(groupMeans[teamSeason])
	defense := make(groupMeans[teamSeason])
	adjOffense := make(groupMeans[teamSeason])
	adjDefense := make(groupMeans[teamSeason])

	entry := func(key teamSeason) *sums {
		s, ok := counts[key]
		if !ok {
			s = &sums{}
			counts[key] = s
		}
		return s
	}

	for _, d := range drives {
		off := teamSeason{d.Season, d.OffensiveTeam}
		def := teamSeason{d.Season, d.DefensiveTeam}

		entry(off).offenseDrives++
		offense.add(off, d.DriveScore)
		adjOffense.add(off, d.AdjOffensiveScore)

		entry(def).defenseDrives++
		defense.add(def, d.DriveScore)
		adjDefense.add(def, d.AdjDefensiveScore)
	}

	ratings := make([]store.TeamRating, 0, len(counts))
	for key, c := range counts {
		r := store.TeamRating{
			Season:          key.season,
			Team:            key.team,
			OffenseDrives:   c.offenseDrives,
			DefenseDrives:   c.defenseDrives,
			OffenseScore:    offense.mean(key),
			DefenseScore:    defense.mean(key),
			AdjOffenseScore: adjOffense.mean(key),
			AdjDefenseScore: adjDefense.mean(key),
		}
		r.NetScore = r.AdjOffenseScore.Sub(r.AdjDefenseScore)
		if !r.NetScore.Valid {
			r.NetScore = r.OffenseScore.Sub(r.DefenseScore)
		}
		ratings = append(ratings, r)
	}

	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].Season != ratings[j].Season {
			return ratings[i].Season < ratings[j].Season
		}
		return ratings[i].Team < ratings[j].Team
	})
	return ratings
}

// Rank orders ratings for one side: offenses best-first (descending),
// defenses best-first (ascending, fewer points allowed). Adjusted scores
// are used when defined. Undefined scores go last; ties break on team.
// The input slice is not modified.
func Rank(ratings []store.TeamRating, side Side) []store.TeamRating {
	ranked := make([]store.TeamRating, len(ratings))
	copy(ranked, ratings)

	score := func(r store.TeamRating) store.NullFloat {
		if side == SideDefense {
			if r.AdjDefenseScore.Valid {
				return r.AdjDefenseScore
			}
			return r.DefenseScore
		}
		if r.AdjOffenseScore.Valid {
			return r.AdjOffenseScore
		}
		return r.OffenseScore
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := score(ranked[i]), score(ranked[j])
		return less(a, b, side == SideOffense, ranked[i].Team < ranked[j].Team)
	})
	return ranked
}

// ScoreGames averages drive scores per game for one side: grouped by
// (game, team, opponent, season). Offenses sort descending, defenses
// ascending.
func ScoreGames(drives []store.Drive, side Side) []store.GameScore {
	type gameKey struct {
		gameID, team, opponent string
		season                 int
	}

	order := make([]gameKey, 0)
	counts := make(map[gameKey]int)
	raw := make(groupMeans[gameKey])
	adjusted := make(groupMeans[gameKey])

	for _, d := range drives {
		key := gameKey{gameID: d.GameID, team: d.OffensiveTeam, opponent: d.DefensiveTeam, season: d.Season}
		adj := d.AdjOffensiveScore
		if side == SideDefense {
			key.team, key.opponent = d.DefensiveTeam, d.OffensiveTeam
			adj = d.AdjDefensiveScore
		}

		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
		raw.add(key, d.DriveScore)
		adjusted.add(key, adj)
	}

	games := make([]store.GameScore, 0, len(order))
	for _, key := range order {
		games = append(games, store.GameScore{
			GameID:        key.gameID,
			Season:        key.season,
			Team:          key.team,
			Opponent:      key.opponent,
			Side:          string(side),
			Drives:        counts[key],
			DriveScore:    raw.mean(key),
			AdjDriveScore: adjusted.mean(key),
		})
	}

	sort.SliceStable(games, func(i, j int) bool {
		return less(games[i].DriveScore, games[j].DriveScore, side == SideOffense, false)
	})
	return games
}

// less orders defined values before undefined ones, descending when desc
// is set, falling back to tie when values are equal.
func less(a, b store.NullFloat, desc, tie bool) bool {
	if a.Valid != b.Valid {
		return a.Valid
	}
	if !a.Valid || a.Float64 == b.Float64 {
		return tie
	}
	if desc {
		return a.Float64 > b.Float64
	}
	return a.Float64 < b.Float64
}
