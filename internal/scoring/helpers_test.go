package scoring

import (
	"io"
	"log"

	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/store"
)

type testGame struct {
	id               string
	home, away       string
	homeFinal, awayF int
}

func (g testGame) drive(offense string, quarter int, clock string, start float64, yards int, result, lastPlay string) store.Drive {
	defense := g.home
	if offense == g.home {
		defense = g.away
	}
	season, _ := normalize.SeasonOf(g.id)

	d := store.Drive{
		GameID:         g.id,
		Season:         season,
		OffensiveTeam:  offense,
		DefensiveTeam:  defense,
		HomeTeam:       g.home,
		AwayTeam:       g.away,
		StartQuarter:   quarter,
		EndQuarter:     quarter,
		StartClock:     clock,
		StartTime:      normalize.ParseClock(clock),
		StartYardLine:  store.Float(start),
		YardsGained:    yards,
		TotalYards:     yards,
		Result:         result,
		LastPlayDesc:   lastPlay,
		HomeFinalScore: g.homeFinal,
		AwayFinalScore: g.awayF,
	}
	d.EndYardLine = d.StartYardLine.Add(store.Float(float64(yards)))
	return d
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
