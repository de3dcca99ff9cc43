// Package normalize turns raw game-center drives into canonical drive
// records: team codes resolved, exhibition games dropped, clocks converted
// to minutes, seasons assigned and playoff games flagged.
package normalize

import (
	"log"
	"sort"

	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/store"
)

// DefaultPlayoffCutoff is the number of regular-season games in a season.
const DefaultPlayoffCutoff = 256

// FirstPlayClock marks the opening drive of a game when seen in quarter 1.
const FirstPlayClock = "15:00"

// Config holds the lists that change as franchises move or exhibition
// formats change.
type Config struct {
	Aliases         map[string]string
	ExhibitionTeams []string
	PlayoffCutoff   int
}

// DefaultConfig returns the relocation aliases and exhibition markers
// covering the 2009-2018 seasons.
func DefaultConfig() Config {
	return Config{
		Aliases: map[string]string{
			"STL": "LA",
			"SD":  "LAC",
			"JAC": "JAX",
		},
		ExhibitionTeams: []string{"APR", "NPR", "AFC", "NFC", "IRV", "CRT", "RIC", "SAN"},
		PlayoffCutoff:   DefaultPlayoffCutoff,
	}
}

// Normalizer converts raw drives into store.Drive records.
type Normalizer struct {
	aliases       map[string]string
	exhibition    map[string]struct{}
	playoffCutoff int
	logger        *log.Logger
}

// New creates a normalizer. A non-positive cutoff falls back to
// DefaultPlayoffCutoff.
func New(cfg Config, logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.PlayoffCutoff <= 0 {
		cfg.PlayoffCutoff = DefaultPlayoffCutoff
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for from, to := range cfg.Aliases {
		aliases[from] = to
	}
	exhibition := make(map[string]struct{}, len(cfg.ExhibitionTeams))
	for _, team := range cfg.ExhibitionTeams {
		exhibition[team] = struct{}{}
	}

	return &Normalizer{
		aliases:       aliases,
		exhibition:    exhibition,
		playoffCutoff: cfg.PlayoffCutoff,
		logger:        logger,
	}
}

// Normalize converts one season's raw drives. DriveID is the drive's index
// in raw, so it stays stable when exhibition rows are dropped. The result
// is sorted by (game_id, start_quarter asc, start_time desc) with playoff
// flags assigned. The input slice is not modified.
func (n *Normalizer) Normalize(raw []gamecenter.RawDrive) []store.Drive {
	drives := make([]store.Drive, 0, len(raw))
	for i, r := range raw {
		if n.IsExhibition(r.AwayTeam) {
			continue
		}

		d, err := n.normalizeDrive(i, r)
		if err != nil {
			n.logger.Printf("[normalize] Skipping drive %d of game %s: %v", i, r.GameID, err)
			continue
		}
		drives = append(drives, d)
	}

	SortDrives(drives)
	n.markPlayoffs(drives)
	return drives
}

// IsExhibition reports whether an away team code marks an all-star game.
func (n *Normalizer) IsExhibition(team string) bool {
	_, ok := n.exhibition[team]
	return ok
}

// Canonical maps a legacy team code to its current franchise code. Unknown
// codes pass through unchanged.
func (n *Normalizer) Canonical(team string) string {
	if to, ok := n.aliases[team]; ok {
		return to
	}
	return team
}

func (n *Normalizer) normalizeDrive(index int, r gamecenter.RawDrive) (store.Drive, error) {
	season, err := SeasonOf(r.GameID)
	if err != nil {
		return store.Drive{}, err
	}
	gameDate, err := GameDate(r.GameID)
	if err != nil {
		return store.Drive{}, err
	}

	d := store.Drive{
		GameID:    r.GameID,
		DriveID:   index,
		Season:    season,
		GameDate:  gameDate,
		DayOfWeek: gameDate.Weekday().String(),

		OffensiveTeam: n.Canonical(r.OffensiveTeam),
		DefensiveTeam: n.Canonical(r.DefensiveTeam),
		HomeTeam:      n.Canonical(r.HomeTeam),
		AwayTeam:      n.Canonical(r.AwayTeam),

		StartQuarter: r.StartQuarter,
		EndQuarter:   r.EndQuarter,
		StartClock:   r.StartTime,
		EndClock:     r.EndTime,
		DriveClock:   r.DriveTime,
		StartTime:    ParseClock(r.StartTime),
		EndTime:      ParseClock(r.EndTime),
		DriveTime:    ParseClock(r.DriveTime),

		StartYardLine:            r.StartYardLine,
		YardsGained:              r.YardsGained,
		PenaltyYards:             r.PenaltyYards,
		TotalYards:               r.YardsGained + r.PenaltyYards,
		NPlays:                   r.NPlays,
		Result:                   r.Result,
		FirstPlayDesc:            r.FirstPlayDesc,
		LastPlayDesc:             r.LastPlayDesc,
		HomeScoreDiffLastQuarter: int(r.HomeScoreDiffLastQuarter),

		HomeFinalScore: r.HomeFinalScore,
		AwayFinalScore: r.AwayFinalScore,
	}

	d.EndYardLine = d.StartYardLine.Add(store.Float(float64(d.TotalYards)))
	d.OffenseHome = d.OffensiveTeam == d.HomeTeam
	d.DefenseHome = d.DefensiveTeam == d.HomeTeam
	for q := 1; q <= len(d.QuarterTime); q++ {
		d.QuarterTime[q-1] = QuarterPossessionTime(d, q)
	}

	return d, nil
}

// markPlayoffs counts game starts per season in sorted order and flags
// every drive whose running count exceeds the cutoff.
func (n *Normalizer) markPlayoffs(drives []store.Drive) {
	games := make(map[int]int)
	for i := range drives {
		d := &drives[i]
		if d.StartQuarter == 1 && d.StartClock == FirstPlayClock {
			games[d.Season]++
		}
		d.GameInSeason = games[d.Season]
		d.IsPlayoffs = d.GameInSeason > n.playoffCutoff
	}
}

// SortDrives orders drives chronologically within each game:
// game_id ascending, start_quarter ascending, start_time (minutes left)
// descending. Drives with an undefined start time sort last in their quarter.
func SortDrives(drives []store.Drive) {
	sort.SliceStable(drives, func(i, j int) bool {
		a, b := drives[i], drives[j]
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		if a.StartQuarter != b.StartQuarter {
			return a.StartQuarter < b.StartQuarter
		}
		if a.StartTime.Valid != b.StartTime.Valid {
			return a.StartTime.Valid
		}
		return a.StartTime.Float64 > b.StartTime.Float64
	})
}
