package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/drivescore/internal/ingest/gamecenter"
	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeLoader struct {
	seasons map[int][]gamecenter.RawDrive
	err     error
}

func (f *fakeLoader) LoadSeason(ctx context.Context, season int) ([]gamecenter.RawDrive, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, ok := f.seasons[season]
	if !ok {
		return nil, fmt.Errorf("%w: %d", gamecenter.ErrSeasonNotFound, season)
	}
	return raw, nil
}

func game(gameID, home, away string) []gamecenter.RawDrive {
	return []gamecenter.RawDrive{
		{
			GameID: gameID, OffensiveTeam: home, DefensiveTeam: away, HomeTeam: home, AwayTeam: away,
			StartQuarter: 1, StartTime: "15:00", EndQuarter: 1, EndTime: "10:00", DriveTime: "5:00",
			StartYardLine: store.Float(25), YardsGained: 75, NPlays: 8, Result: "Touchdown",
			HomeFinalScore: 7, AwayFinalScore: 0,
		},
		{
			GameID: gameID, OffensiveTeam: away, DefensiveTeam: home, HomeTeam: home, AwayTeam: away,
			StartQuarter: 1, StartTime: "9:50", EndQuarter: 1, EndTime: "7:00", DriveTime: "2:50",
			StartYardLine: store.Float(25), YardsGained: 10, NPlays: 4, Result: "Punt",
			HomeFinalScore: 7, AwayFinalScore: 0,
		},
	}
}

func testLoader() *fakeLoader {
	return &fakeLoader{seasons: map[int][]gamecenter.RawDrive{
		2015: game("2015091000", "NE", "PIT"),
		2016: game("2016091100", "DEN", "CAR"),
	}}
}

func newTestRunner(loader SeasonLoader) *Runner {
	return NewRunner(
		loader,
		normalize.New(normalize.DefaultConfig(), quietLogger()),
		scoring.NewEngine(scoring.DefaultOptions(), quietLogger()),
		quietLogger(),
	)
}

type recordingReporter struct {
	events []string
	loaded map[int]int
	result *Result
	err    error
}

func (r *recordingReporter) OnJobStart(spec JobSpec) {
	r.events = append(r.events, "start")
}

func (r *recordingReporter) OnSeasonStart(season, index, total int) {
	r.events = append(r.events, fmt.Sprintf("season %d %d/%d", season, index+1, total))
}

func (r *recordingReporter) OnSeasonLoaded(season, drives int) {
	if r.loaded == nil {
		r.loaded = make(map[int]int)
	}
	r.loaded[season] = drives
}

func (r *recordingReporter) OnProgress(message string, current, total int) {}

func (r *recordingReporter) OnJobComplete(result *Result) {
	r.events = append(r.events, "complete")
	r.result = result
}

func (r *recordingReporter) OnJobError(err error) {
	r.events = append(r.events, "error")
	r.err = err
}

type fakeRecorder struct {
	created   *store.ScoringRun
	completed []int64
	scored    int
	failed    error
}

func (f *fakeRecorder) Create(ctx context.Context, run *store.ScoringRun) error {
	f.created = run
	return nil
}

func (f *fakeRecorder) Complete(ctx context.Context, runID string, seasons []int64, drivesScored int) error {
	f.completed = seasons
	f.scored = drivesScored
	return nil
}

func (f *fakeRecorder) Fail(ctx context.Context, runID string, err error) error {
	f.failed = err
	return nil
}

type fakeSink struct {
	name   string
	err    error
	writes int
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(ctx context.Context, result *Result) error {
	f.writes++
	return f.err
}

func TestJobSpecSeasons(t *testing.T) {
	assert.Equal(t, []int{2014, 2015, 2016}, JobSpec{StartSeason: 2014, EndSeason: 2016}.Seasons())
	assert.Equal(t, []int{2014, 2015, 2016}, JobSpec{StartSeason: 2016, EndSeason: 2014}.Seasons())
	assert.Equal(t, []int{2015}, JobSpec{StartSeason: 2015, EndSeason: 2015}.Seasons())
}

func TestRunnerRun(t *testing.T) {
	dir := t.TempDir()
	runner := newTestRunner(testLoader())
	files := NewFileSink(dir)
	runner.AddSink(files)
	rec := &fakeRecorder{}
	runner.SetRecorder(rec)
	reporter := &recordingReporter{}

	spec := JobSpec{StartSeason: 2014, EndSeason: 2016}
	result, err := runner.Run(context.Background(), spec, reporter)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []int{2015, 2016}, result.Seasons, "missing seasons are skipped")
	assert.Len(t, result.Drives, 4)
	assert.NotEmpty(t, result.Ratings)
	assert.Contains(t, result.RatingsBySeason(), 2015)
	assert.Contains(t, result.RatingsBySeason(), 2016)

	assert.Equal(t, []string{"start", "season 2014 1/3", "season 2015 2/3", "season 2016 3/3", "complete"}, reporter.events)
	assert.Equal(t, map[int]int{2015: 2, 2016: 2}, reporter.loaded)
	assert.Same(t, result, reporter.result)

	require.NotNil(t, rec.created)
	assert.Equal(t, result.RunID, rec.created.RunID)
	assert.Equal(t, store.RunStatusRunning, rec.created.Status)
	assert.Equal(t, scoring.DefaultIterations, rec.created.Iterations)
	assert.Equal(t, []int64{2015, 2016}, rec.completed)
	assert.Equal(t, 4, rec.scored)
	assert.NoError(t, rec.failed)

	drivesPath, ratingsPath := files.Paths(spec)
	var drives []store.Drive
	data, err := os.ReadFile(drivesPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &drives))
	assert.Len(t, drives, 4)

	var ratings []store.TeamRating
	data, err = os.ReadFile(ratingsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &ratings))
	assert.Len(t, ratings, len(result.Ratings))
}

func TestRunnerDryRun(t *testing.T) {
	runner := newTestRunner(testLoader())
	sink := &fakeSink{name: "fake"}
	runner.AddSink(sink)
	rec := &fakeRecorder{}
	runner.SetRecorder(rec)

	result, err := runner.Run(context.Background(), JobSpec{StartSeason: 2015, EndSeason: 2015, DryRun: true}, nil)
	require.NoError(t, err)
	assert.Len(t, result.Drives, 2)
	assert.Zero(t, sink.writes)
	assert.Nil(t, rec.created)
}

func TestRunnerFailures(t *testing.T) {
	t.Run("no drives", func(t *testing.T) {
		rec := &fakeRecorder{}
		runner := newTestRunner(testLoader())
		runner.SetRecorder(rec)
		reporter := &recordingReporter{}

		_, err := runner.Run(context.Background(), JobSpec{StartSeason: 2000, EndSeason: 2001}, reporter)
		assert.ErrorIs(t, err, ErrNoDrives)
		assert.ErrorIs(t, rec.failed, ErrNoDrives)
		assert.Equal(t, err, reporter.err)
	})

	t.Run("loader error", func(t *testing.T) {
		boom := errors.New("disk on fire")
		runner := newTestRunner(&fakeLoader{err: boom})

		_, err := runner.Run(context.Background(), JobSpec{StartSeason: 2015, EndSeason: 2015}, nil)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "loading season 2015")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestRunner(testLoader()).Run(ctx, JobSpec{StartSeason: 2015, EndSeason: 2016}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("sink error stops later sinks", func(t *testing.T) {
		runner := newTestRunner(testLoader())
		first := &fakeSink{name: "first", err: assert.AnError}
		second := &fakeSink{name: "second"}
		runner.AddSink(first)
		runner.AddSink(second)

		_, err := runner.Run(context.Background(), JobSpec{StartSeason: 2015, EndSeason: 2015}, nil)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "sink first")
		assert.Zero(t, second.writes)
	})
}
