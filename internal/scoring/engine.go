// Package scoring values drives by expected points adjusted for field
// position, re-centers them for opponent strength and aggregates them into
// game and team-season ratings. Every stage takes a drive table and returns
// a new one; inputs are never modified.
package scoring

import (
	"log"

	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/store"
)

// Options controls a scoring run.
type Options struct {
	Iterations      int
	StepSize        float64
	OpponentAdjust  bool
	ExcludePlayoffs bool
	// BlowoutMargin drops 4th-quarter drives started with the score margin
	// at or above it. Zero disables the filter.
	BlowoutMargin int
	// CenterScores seeds the opponent relaxation from relative drive scores.
	CenterScores bool
}

// DefaultOptions returns the standard run: five rounds at step 0.2.
func DefaultOptions() Options {
	return Options{
		Iterations:     DefaultIterations,
		StepSize:       DefaultStepSize,
		OpponentAdjust: true,
	}
}

// Result is the output of one scoring run.
type Result struct {
	Drives  []store.Drive
	Ratings []store.TeamRating
}

// Engine composes the scoring stages.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// NewEngine creates an engine.
func NewEngine(opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Score runs every stage over normalized drives, which may span several
// seasons. The input is sorted into play order first and is not modified.
func (e *Engine) Score(drives []store.Drive) *Result {
	scored := clone(drives)
	normalize.SortDrives(scored)

	if e.opts.ExcludePlayoffs {
		scored = ExcludePlayoffs(scored)
	}

	scored = MarkScores(scored)
	scored = TrackScore(scored)
	scored = LinkNextDrives(scored)
	scored = EstimateExpectedPoints(scored)
	scored = AdjustFieldPosition(scored)

	if e.opts.OpponentAdjust {
		scored = AdjustForOpponents(scored, e.opts.Iterations, e.opts.StepSize, e.opts.CenterScores)
	}

	if e.opts.BlowoutMargin > 0 {
		before := len(scored)
		scored = ExcludeBlowouts(scored, e.opts.BlowoutMargin)
		e.logger.Printf("[scoring] Dropped %d blowout drives (margin >= %d)", before-len(scored), e.opts.BlowoutMargin)
	}

	e.logger.Printf("[scoring] Scored %d drives", len(scored))

	return &Result{
		Drives:  scored,
		Ratings: RateTeams(scored),
	}
}

// ExcludePlayoffs drops every drive of a playoff game.
func ExcludePlayoffs(drives []store.Drive) []store.Drive {
	out := make([]store.Drive, 0, len(drives))
	for _, d := range drives {
		if !d.IsPlayoffs {
			out = append(out, d)
		}
	}
	return out
}

// ExcludeBlowouts drops 4th-quarter drives that started with the offense
// ahead or behind by at least margin points.
func ExcludeBlowouts(drives []store.Drive, margin int) []store.Drive {
	out := make([]store.Drive, 0, len(drives))
	for _, d := range drives {
		diff := d.OffensiveTeamScoreStart - d.DefensiveTeamScoreStart
		if diff < 0 {
			diff = -diff
		}
		if d.StartQuarter == 4 && diff >= margin {
			continue
		}
		out = append(out, d)
	}
	return out
}
