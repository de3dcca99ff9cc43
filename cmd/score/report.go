package main

import (
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/fortuna/drivescore/internal/pipeline"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
)

type consoleReporter struct {
	dryRun bool
}

func (c *consoleReporter) OnJobStart(spec pipeline.JobSpec) {
	log.Printf("Scoring seasons %d-%d (dry_run=%v)", spec.StartSeason, spec.EndSeason, c.dryRun)
}

func (c *consoleReporter) OnSeasonStart(season int, index int, total int) {
	log.Printf("[%d/%d] %d", index+1, total, season)
}

func (c *consoleReporter) OnSeasonLoaded(season int, drives int) {
	log.Printf("Loaded %d drives for %d", drives, season)
}

func (c *consoleReporter) OnProgress(message string, current int, total int) {
	log.Printf("Progress: %s (%d/%d)", message, current, total)
}

func (c *consoleReporter) OnJobComplete(result *pipeline.Result) {
	log.Printf("✓ Run %s scored %d drives in %s", result.RunID, len(result.Drives), result.CompletedAt.Sub(result.StartedAt).Round(time.Millisecond))
}

func (c *consoleReporter) OnJobError(err error) {
	log.Printf("Job error: %v", err)
}

// renderRatings prints one ranked table per season. top <= 0 prints every team.
func renderRatings(w io.Writer, ratings []store.TeamRating, side scoring.Side, top int) {
	bySeason := make(map[int][]store.TeamRating)
	for _, r := range ratings {
		bySeason[r.Season] = append(bySeason[r.Season], r)
	}
	seasons := make([]int, 0, len(bySeason))
	for season := range bySeason {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)

	for _, season := range seasons {
		ranked := scoring.Rank(bySeason[season], side)
		if top > 0 && len(ranked) > top {
			ranked = ranked[:top]
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle(fmt.Sprintf("%d %s", season, side))
		t.AppendHeader(table.Row{"#", "Team", "Drives", "Score", "Adjusted", "Net"})
		for i, r := range ranked {
			drives, score, adjusted := r.OffenseDrives, r.OffenseScore, r.AdjOffenseScore
			if side == scoring.SideDefense {
				drives, score, adjusted = r.DefenseDrives, r.DefenseScore, r.AdjDefenseScore
			}
			t.AppendRow(table.Row{i + 1, r.Team, drives, formatScore(score), formatScore(adjusted), formatScore(r.NetScore)})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 4, Align: text.AlignRight},
			{Number: 5, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
		})
		t.SetStyle(table.StyleLight)
		t.Render()
	}
}

func formatScore(n store.NullFloat) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%+.2f", n.Float64)
}
