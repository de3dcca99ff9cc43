package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/drivescore/internal/store"
)

// RatingRepository handles team-season rating persistence
type RatingRepository struct {
	db *store.Database
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *store.Database) *RatingRepository {
	return &RatingRepository{db: db}
}

// UpsertBatch writes ratings produced by one run in a single transaction
func (r *RatingRepository) UpsertBatch(ctx context.Context, runID string, ratings []store.TeamRating) error {
	query := `
		INSERT INTO team_ratings (season, team, offense_drives, defense_drives,
			offense_score, defense_score, adj_offense_score, adj_defense_score, net_score, run_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (season, team) DO UPDATE SET
			offense_drives = EXCLUDED.offense_drives,
			defense_drives = EXCLUDED.defense_drives,
			offense_score = EXCLUDED.offense_score,
			defense_score = EXCLUDED.defense_score,
			adj_offense_score = EXCLUDED.adj_offense_score,
			adj_defense_score = EXCLUDED.adj_defense_score,
			net_score = EXCLUDED.net_score,
			run_id = EXCLUDED.run_id,
			updated_at = NOW()
	`

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rating batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing rating upsert: %w", err)
	}
	defer stmt.Close()

	for _, rating := range ratings {
		_, err := stmt.ExecContext(ctx,
			rating.Season, rating.Team, rating.OffenseDrives, rating.DefenseDrives,
			rating.OffenseScore, rating.DefenseScore, rating.AdjOffenseScore, rating.AdjDefenseScore,
			rating.NetScore, runID,
		)
		if err != nil {
			return fmt.Errorf("upserting rating %d/%s: %w", rating.Season, rating.Team, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rating batch: %w", err)
	}
	return nil
}

const ratingColumns = `season, team, offense_drives, defense_drives,
			offense_score, defense_score, adj_offense_score, adj_defense_score, net_score`

// GetBySeason returns every team's rating for a season, ordered by team
func (r *RatingRepository) GetBySeason(ctx context.Context, season int) ([]store.TeamRating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM team_ratings
		WHERE season = $1
		ORDER BY team
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying ratings: %w", err)
	}
	defer rows.Close()

	ratings, err := r.scanRatings(rows)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, fmt.Errorf("%w: season %d", ErrNotFound, season)
	}
	return ratings, nil
}

// GetByTeam returns a team's rating for every stored season
func (r *RatingRepository) GetByTeam(ctx context.Context, team string) ([]store.TeamRating, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM team_ratings
		WHERE team = $1
		ORDER BY season
	`

	team = strings.ToUpper(team)
	rows, err := r.db.DB().QueryContext(ctx, query, team)
	if err != nil {
		return nil, fmt.Errorf("querying team ratings: %w", err)
	}
	defer rows.Close()

	ratings, err := r.scanRatings(rows)
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, fmt.Errorf("%w: team %s", ErrNotFound, team)
	}
	return ratings, nil
}

// scanRatings scans multiple rating rows
func (r *RatingRepository) scanRatings(rows *sql.Rows) ([]store.TeamRating, error) {
	var ratings []store.TeamRating
	for rows.Next() {
		var rating store.TeamRating
		err := rows.Scan(
			&rating.Season, &rating.Team, &rating.OffenseDrives, &rating.DefenseDrives,
			&rating.OffenseScore, &rating.DefenseScore, &rating.AdjOffenseScore, &rating.AdjDefenseScore,
			&rating.NetScore,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
