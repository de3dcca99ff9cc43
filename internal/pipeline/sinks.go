package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fortuna/drivescore/internal/store"
)

// FileSink writes scored drives and ratings as JSON arrays under a directory.
type FileSink struct {
	dir string
}

// NewFileSink creates a file sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Name() string { return "files" }

// Paths returns the drive and rating file paths for a spec.
func (s *FileSink) Paths(spec JobSpec) (drives, ratings string) {
	suffix := fmt.Sprintf("%d_%d.json", spec.StartSeason, spec.EndSeason)
	return filepath.Join(s.dir, "drives_"+suffix), filepath.Join(s.dir, "ratings_"+suffix)
}

func (s *FileSink) Write(ctx context.Context, result *Result) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	drivesPath, ratingsPath := s.Paths(result.Spec)
	if err := writeJSON(drivesPath, nonNil(result.Drives)); err != nil {
		return err
	}
	return writeJSON(ratingsPath, nonNil(result.Ratings))
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// nonNil keeps empty outputs encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DriveWriter persists scored drives.
type DriveWriter interface {
	UpsertBatch(ctx context.Context, drives []store.Drive) (int, error)
}

// RatingWriter persists team ratings of a run.
type RatingWriter interface {
	UpsertBatch(ctx context.Context, runID string, ratings []store.TeamRating) error
}

// DatabaseSink upserts drives and ratings into Postgres.
type DatabaseSink struct {
	drives  DriveWriter
	ratings RatingWriter
}

// NewDatabaseSink creates a database sink.
func NewDatabaseSink(drives DriveWriter, ratings RatingWriter) *DatabaseSink {
	return &DatabaseSink{drives: drives, ratings: ratings}
}

func (s *DatabaseSink) Name() string { return "database" }

func (s *DatabaseSink) Write(ctx context.Context, result *Result) error {
	if _, err := s.drives.UpsertBatch(ctx, result.Drives); err != nil {
		return err
	}
	return s.ratings.UpsertBatch(ctx, result.RunID, result.Ratings)
}

// RatingsPublisher publishes one season of ratings.
type RatingsPublisher interface {
	PublishRatings(ctx context.Context, runID string, season int, ratings []store.TeamRating) error
}

// PublisherSink publishes each season's ratings to a stream.
type PublisherSink struct {
	publisher RatingsPublisher
}

// NewPublisherSink creates a publisher sink.
func NewPublisherSink(publisher RatingsPublisher) *PublisherSink {
	return &PublisherSink{publisher: publisher}
}

func (s *PublisherSink) Name() string { return "publisher" }

func (s *PublisherSink) Write(ctx context.Context, result *Result) error {
	bySeason := result.RatingsBySeason()
	seasons := make([]int, 0, len(bySeason))
	for season := range bySeason {
		seasons = append(seasons, season)
	}
	sort.Ints(seasons)

	for _, season := range seasons {
		if err := s.publisher.PublishRatings(ctx, result.RunID, season, bySeason[season]); err != nil {
			return err
		}
	}
	return nil
}

// RatingsInvalidator drops cached ratings.
type RatingsInvalidator interface {
	InvalidateSeasons(ctx context.Context, seasons ...int) error
}

// CacheSink invalidates cached ratings for the seasons a run rescored.
type CacheSink struct {
	cache RatingsInvalidator
}

// NewCacheSink creates a cache sink.
func NewCacheSink(cache RatingsInvalidator) *CacheSink {
	return &CacheSink{cache: cache}
}

func (s *CacheSink) Name() string { return "cache" }

func (s *CacheSink) Write(ctx context.Context, result *Result) error {
	return s.cache.InvalidateSeasons(ctx, result.Seasons...)
}
