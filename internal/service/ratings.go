package service

import (
	"context"
	"fmt"
	"log"

	"github.com/fortuna/drivescore/internal/cache"
	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
	"github.com/fortuna/drivescore/internal/store/repository"
)

// RatingReader reads stored team ratings.
type RatingReader interface {
	GetBySeason(ctx context.Context, season int) ([]store.TeamRating, error)
	GetByTeam(ctx context.Context, team string) ([]store.TeamRating, error)
}

// RatingsCache is a per-season read-through cache.
type RatingsCache interface {
	GetRatings(ctx context.Context, season int) ([]store.TeamRating, bool, error)
	SetRatings(ctx context.Context, season int, ratings []store.TeamRating) error
}

// RatingsService serves team-season ratings
type RatingsService struct {
	ratings RatingReader
	cache   RatingsCache
	logger  *log.Logger
}

// NewRatingsService creates a new ratings service. A nil cache reads
// straight from the repository.
func NewRatingsService(ratings RatingReader, rc RatingsCache, logger *log.Logger) *RatingsService {
	if logger == nil {
		logger = log.New(log.Writer(), "[service] ", log.LstdFlags)
	}
	return &RatingsService{
		ratings: ratings,
		cache:   rc,
		logger:  logger,
	}
}

// NewRatingsServiceFromDB wires the service to Postgres and, when rc is
// non-nil, the Redis cache.
func NewRatingsServiceFromDB(db *store.Database, rc *cache.RedisCache, logger *log.Logger) *RatingsService {
	var c RatingsCache
	if rc != nil {
		c = rc
	}
	return NewRatingsService(repository.NewRatingRepository(db), c, logger)
}

// GetSeasonRatings returns a season's ratings ranked for one side
func (s *RatingsService) GetSeasonRatings(ctx context.Context, season int, side scoring.Side) ([]store.TeamRating, error) {
	ratings, err := s.seasonRatings(ctx, season)
	if err != nil {
		return nil, err
	}
	return scoring.Rank(ratings, side), nil
}

func (s *RatingsService) seasonRatings(ctx context.Context, season int) ([]store.TeamRating, error) {
	if s.cache != nil {
		ratings, hit, err := s.cache.GetRatings(ctx, season)
		if err != nil {
			s.logger.Printf("cache read for %d failed: %v", season, err)
		} else if hit {
			return ratings, nil
		}
	}

	ratings, err := s.ratings.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching %d ratings: %w", season, err)
	}

	if s.cache != nil {
		if err := s.cache.SetRatings(ctx, season, ratings); err != nil {
			s.logger.Printf("cache write for %d failed: %v", season, err)
		}
	}
	return ratings, nil
}

// GetTeamRatings returns a team's rating history
func (s *RatingsService) GetTeamRatings(ctx context.Context, team string) ([]store.TeamRating, error) {
	ratings, err := s.ratings.GetByTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("fetching team ratings: %w", err)
	}
	return ratings, nil
}
