package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/drivescore/internal/store"
)

type fakeDrives struct {
	got []store.Drive
	err error
}

func (f *fakeDrives) UpsertBatch(ctx context.Context, drives []store.Drive) (int, error) {
	f.got = drives
	return len(drives), f.err
}

type fakeRatings struct {
	runID string
	got   []store.TeamRating
}

func (f *fakeRatings) UpsertBatch(ctx context.Context, runID string, ratings []store.TeamRating) error {
	f.runID = runID
	f.got = ratings
	return nil
}

type fakePublisher struct {
	seasons []int
	counts  map[int]int
}

func (f *fakePublisher) PublishRatings(ctx context.Context, runID string, season int, ratings []store.TeamRating) error {
	f.seasons = append(f.seasons, season)
	if f.counts == nil {
		f.counts = make(map[int]int)
	}
	f.counts[season] = len(ratings)
	return nil
}

type fakeInvalidator struct {
	seasons []int
}

func (f *fakeInvalidator) InvalidateSeasons(ctx context.Context, seasons ...int) error {
	f.seasons = seasons
	return nil
}

func sampleResult() *Result {
	return &Result{
		RunID:   "run-1",
		Spec:    JobSpec{StartSeason: 2014, EndSeason: 2015},
		Seasons: []int{2014, 2015},
		Drives:  []store.Drive{{GameID: "2014090700"}, {GameID: "2015091000"}},
		Ratings: []store.TeamRating{
			{Season: 2015, Team: "NE"},
			{Season: 2014, Team: "NE"},
			{Season: 2015, Team: "PIT"},
		},
	}
}

func TestFileSinkPaths(t *testing.T) {
	drives, ratings := NewFileSink("out").Paths(JobSpec{StartSeason: 2009, EndSeason: 2018})
	assert.Equal(t, filepath.Join("out", "drives_2009_2018.json"), drives)
	assert.Equal(t, filepath.Join("out", "ratings_2009_2018.json"), ratings)
}

func TestFileSinkEmptyResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sink := NewFileSink(dir)
	spec := JobSpec{StartSeason: 2015, EndSeason: 2015}

	require.NoError(t, sink.Write(context.Background(), &Result{Spec: spec}))

	drivesPath, _ := sink.Paths(spec)
	data, err := os.ReadFile(drivesPath)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDatabaseSink(t *testing.T) {
	drives := &fakeDrives{}
	ratings := &fakeRatings{}
	result := sampleResult()

	require.NoError(t, NewDatabaseSink(drives, ratings).Write(context.Background(), result))
	assert.Len(t, drives.got, 2)
	assert.Equal(t, "run-1", ratings.runID)
	assert.Len(t, ratings.got, 3)

	failing := NewDatabaseSink(&fakeDrives{err: assert.AnError}, &fakeRatings{})
	assert.ErrorIs(t, failing.Write(context.Background(), result), assert.AnError)
}

func TestPublisherSinkPublishesSeasonsInOrder(t *testing.T) {
	pub := &fakePublisher{}
	require.NoError(t, NewPublisherSink(pub).Write(context.Background(), sampleResult()))
	assert.Equal(t, []int{2014, 2015}, pub.seasons)
	assert.Equal(t, map[int]int{2014: 1, 2015: 2}, pub.counts)
}

func TestCacheSink(t *testing.T) {
	inv := &fakeInvalidator{}
	require.NoError(t, NewCacheSink(inv).Write(context.Background(), sampleResult()))
	assert.Equal(t, []int{2014, 2015}, inv.seasons)
}
