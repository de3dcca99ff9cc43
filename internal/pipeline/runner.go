package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
)

// ErrNoDrives is returned when no requested season yielded any drive.
var ErrNoDrives = errors.New("no drives loaded")

// Runner executes a job: load each season, normalize it, score all seasons
// together and hand the result to the sinks.
type Runner struct {
	loader     SeasonLoader
	normalizer *normalize.Normalizer
	engine     *scoring.Engine
	sinks      []Sink
	recorder   RunRecorder
	logger     *log.Logger

	now func() time.Time
}

// NewRunner constructs a runner without sinks.
func NewRunner(loader SeasonLoader, normalizer *normalize.Normalizer, engine *scoring.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(log.Writer(), "[runner] ", log.LstdFlags)
	}
	return &Runner{
		loader:     loader,
		normalizer: normalizer,
		engine:     engine,
		logger:     logger,
		now:        time.Now,
	}
}

// AddSink appends a sink. Sinks run in the order they were added.
func (r *Runner) AddSink(sink Sink) {
	r.sinks = append(r.sinks, sink)
}

// SetRecorder records run lifecycle through rec. Dry runs are never recorded.
func (r *Runner) SetRecorder(rec RunRecorder) {
	r.recorder = rec
}

// Engine returns the runner's scoring engine.
func (r *Runner) Engine() *scoring.Engine {
	return r.engine
}

// Run executes the job spec, reporting progress via the Reporter if provided.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (*Result, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	result := &Result{
		RunID:     uuid.NewString(),
		Spec:      spec,
		StartedAt: r.now(),
	}

	record := r.recorder != nil && !spec.DryRun
	if record {
		opts := r.engine.Options()
		run := &store.ScoringRun{
			RunID:       result.RunID,
			StartSeason: spec.StartSeason,
			EndSeason:   spec.EndSeason,
			Iterations:  opts.Iterations,
			StepSize:    opts.StepSize,
			Status:      store.RunStatusRunning,
			StartedAt:   result.StartedAt,
		}
		if err := r.recorder.Create(ctx, run); err != nil {
			err = fmt.Errorf("recording run: %w", err)
			reporter.OnJobError(err)
			return nil, err
		}
	}

	fail := func(err error) (*Result, error) {
		reporter.OnJobError(err)
		if record {
			if ferr := r.recorder.Fail(context.WithoutCancel(ctx), result.RunID, err); ferr != nil {
				r.logger.Printf("failed to record run %s failure: %v", result.RunID, ferr)
			}
		}
		return nil, err
	}

	seasons := spec.Seasons()
	var drives []store.Drive
	for idx, season := range seasons {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		reporter.OnSeasonStart(season, idx, len(seasons))

		raw, err := r.loader.LoadSeason(ctx, season)
		if errors.Is(err, gamecenter.ErrSeasonNotFound) {
			r.logger.Printf("Skipping season %d: %v", season, err)
			reporter.OnProgress(fmt.Sprintf("No data for %d", season), idx+1, len(seasons))
			continue
		}
		if err != nil {
			return fail(fmt.Errorf("loading season %d: %w", season, err))
		}

		normalized := r.normalizer.Normalize(raw)
		reporter.OnSeasonLoaded(season, len(normalized))
		if len(normalized) == 0 {
			continue
		}
		drives = append(drives, normalized...)
		result.Seasons = append(result.Seasons, season)
	}

	if len(drives) == 0 {
		return fail(fmt.Errorf("%w: seasons %d-%d", ErrNoDrives, spec.StartSeason, spec.EndSeason))
	}

	scored := r.engine.Score(drives)
	result.Drives = scored.Drives
	result.Ratings = scored.Ratings
	reporter.OnProgress(fmt.Sprintf("Scored %d drives", len(result.Drives)), len(seasons), len(seasons))

	if spec.DryRun {
		reporter.OnProgress("Dry-run mode: no data will be written", 0, 0)
	} else {
		for idx, sink := range r.sinks {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			if err := sink.Write(ctx, result); err != nil {
				return fail(fmt.Errorf("sink %s: %w", sink.Name(), err))
			}
			reporter.OnProgress(fmt.Sprintf("✓ Wrote %s", sink.Name()), idx+1, len(r.sinks))
		}
	}

	if record {
		if err := r.recorder.Complete(ctx, result.RunID, seasonIDs(result.Seasons), len(result.Drives)); err != nil {
			return fail(fmt.Errorf("recording run completion: %w", err))
		}
	}

	result.CompletedAt = r.now()
	reporter.OnJobComplete(result)
	return result, nil
}

func seasonIDs(seasons []int) []int64 {
	ids := make([]int64, len(seasons))
	for i, s := range seasons {
		ids[i] = int64(s)
	}
	return ids
}
