package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/drivescore/internal/store"
)

// RunRepository records scoring runs
type RunRepository struct {
	db *store.Database
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *store.Database) *RunRepository {
	return &RunRepository{db: db}
}

// Create records the start of a run
func (r *RunRepository) Create(ctx context.Context, run *store.ScoringRun) error {
	query := `
		INSERT INTO scoring_runs (run_id, start_season, end_season, seasons,
			iterations, step_size, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// pq encodes a nil slice as NULL; the column is NOT NULL.
	seasons := run.Seasons
	if seasons == nil {
		seasons = []int64{}
	}

	_, err := r.db.DB().ExecContext(ctx, query,
		run.RunID, run.StartSeason, run.EndSeason, pq.Array(seasons),
		run.Iterations, run.StepSize, run.Status, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("creating scoring run: %w", err)
	}
	return nil
}

// Complete marks a run finished and records how many drives it scored
func (r *RunRepository) Complete(ctx context.Context, runID string, seasons []int64, drivesScored int) error {
	query := `
		UPDATE scoring_runs
		SET status = $2, seasons = $3, drives_scored = $4, completed_at = NOW()
		WHERE run_id = $1
	`

	return r.update(ctx, runID, query, store.RunStatusCompleted, pq.Array(seasons), drivesScored)
}

// Fail marks a run failed with its error
func (r *RunRepository) Fail(ctx context.Context, runID string, runErr error) error {
	query := `
		UPDATE scoring_runs
		SET status = $2, last_error = $3, completed_at = NOW()
		WHERE run_id = $1
	`

	return r.update(ctx, runID, query, store.RunStatusFailed, runErr.Error())
}

func (r *RunRepository) update(ctx context.Context, runID, query string, args ...interface{}) error {
	result, err := r.db.DB().ExecContext(ctx, query, append([]interface{}{runID}, args...)...)
	if err != nil {
		return fmt.Errorf("updating scoring run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating scoring run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	return nil
}

// Latest returns the most recently started run
func (r *RunRepository) Latest(ctx context.Context) (*store.ScoringRun, error) {
	query := `
		SELECT run_id, start_season, end_season, seasons, iterations, step_size,
			drives_scored, status, last_error, started_at, completed_at
		FROM scoring_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	run := &store.ScoringRun{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&run.RunID, &run.StartSeason, &run.EndSeason, pq.Array(&run.Seasons),
		&run.Iterations, &run.StepSize, &run.DrivesScored, &run.Status,
		&run.LastError, &run.StartedAt, &run.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no scoring runs", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest run: %w", err)
	}
	return run, nil
}
