package pipeline

import (
	"context"
	"time"

	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/store"
)

// JobSpec describes the seasons a run scores.
type JobSpec struct {
	StartSeason int
	EndSeason   int
	DryRun      bool
}

// Seasons lists the job's seasons in ascending order.
func (s JobSpec) Seasons() []int {
	start, end := s.StartSeason, s.EndSeason
	if end < start {
		start, end = end, start
	}
	seasons := make([]int, 0, end-start+1)
	for season := start; season <= end; season++ {
		seasons = append(seasons, season)
	}
	return seasons
}

// Result is the output of one run.
type Result struct {
	RunID       string
	Spec        JobSpec
	Seasons     []int
	Drives      []store.Drive
	Ratings     []store.TeamRating
	StartedAt   time.Time
	CompletedAt time.Time
}

// RatingsBySeason splits the ratings by season, preserving order.
func (r *Result) RatingsBySeason() map[int][]store.TeamRating {
	out := make(map[int][]store.TeamRating)
	for _, rating := range r.Ratings {
		out[rating.Season] = append(out[rating.Season], rating)
	}
	return out
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnSeasonStart(season int, index int, total int)
	OnSeasonLoaded(season int, drives int)
	OnProgress(message string, current int, total int)
	OnJobComplete(result *Result)
	OnJobError(err error)
}

// Sink receives the result of a completed run.
type Sink interface {
	Name() string
	Write(ctx context.Context, result *Result) error
}

// SeasonLoader supplies one season of raw drives.
type SeasonLoader interface {
	LoadSeason(ctx context.Context, season int) ([]gamecenter.RawDrive, error)
}

// RunRecorder tracks run lifecycle in durable storage.
type RunRecorder interface {
	Create(ctx context.Context, run *store.ScoringRun) error
	Complete(ctx context.Context, runID string, seasons []int64, drivesScored int) error
	Fail(ctx context.Context, runID string, err error) error
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnSeasonStart(int, int, int) {}
func (nopReporter) OnSeasonLoaded(int, int) {}
func (nopReporter) OnProgress(string, int, int) {}
func (nopReporter) OnJobComplete(*Result) {}
func (nopReporter) OnJobError(error) {}
