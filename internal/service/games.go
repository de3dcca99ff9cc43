package service

import (
	"context"
	"fmt"

	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
	"github.com/fortuna/drivescore/internal/store/repository"
)

// DriveReader reads stored scored drives.
type DriveReader interface {
	GetByGame(ctx context.Context, gameID string) ([]store.Drive, error)
}

// GameService handles per-game drive lookups
type GameService struct {
	drives DriveReader
}

// NewGameService creates a new game service
func NewGameService(drives DriveReader) *GameService {
	return &GameService{drives: drives}
}

// NewGameServiceFromDB wires the service to Postgres
func NewGameServiceFromDB(db *store.Database) *GameService {
	return NewGameService(repository.NewDriveRepository(db))
}

// GetGameDrives returns a game's scored drives in play order
func (s *GameService) GetGameDrives(ctx context.Context, gameID string) ([]store.Drive, error) {
	drives, err := s.drives.GetByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game drives: %w", err)
	}
	return drives, nil
}

// GetGameScores aggregates a game's drives per team for one side
func (s *GameService) GetGameScores(ctx context.Context, gameID string, side scoring.Side) ([]store.GameScore, error) {
	drives, err := s.GetGameDrives(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return scoring.ScoreGames(drives, side), nil
}
