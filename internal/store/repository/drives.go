package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fortuna/drivescore/internal/store"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// DriveRepository handles scored drive persistence
type DriveRepository struct {
	db *store.Database
}

// NewDriveRepository creates a new drive repository
func NewDriveRepository(db *store.Database) *DriveRepository {
	return &DriveRepository{db: db}
}

const driveColumns = `game_id, drive_id, season, game_date, day_of_week,
			offensive_team, defensive_team, home_team, away_team, offense_home, defense_home,
			start_quarter, end_quarter, start_time, end_time, drive_time,
			start_yard_line, yards_gained, penalty_yards, end_yard_line, n_plays, result,
			is_playoffs, offensive_points, dst_points,
			is_touchdown, is_field_goal, is_score, is_interception, is_fumble,
			next_start_yard_line, start_yard_line_bin, end_yard_line_bin,
			expected_points, field_position_points, drive_score, relative_drive_score,
			adj_offensive_score, adj_defensive_score`

// driveUpdates refreshes every non-key column on conflict.
var driveUpdates = excludedAssignments(driveColumns, "game_id", "drive_id")

// excludedAssignments builds "col = EXCLUDED.col" for every column not in keys.
func excludedAssignments(columns string, keys ...string) string {
	skip := make(map[string]bool, len(keys))
	for _, k := range keys {
		skip[k] = true
	}

	var sets []string
	for _, col := range strings.Split(columns, ",") {
		col = strings.TrimSpace(col)
		if col == "" || skip[col] {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	return strings.Join(sets, ",\n\t\t\t")
}

// UpsertBatch writes scored drives in a single transaction, replacing any
// earlier score of the same (game_id, drive_id).
func (r *DriveRepository) UpsertBatch(ctx context.Context, drives []store.Drive) (int, error) {
	query := `
		INSERT INTO drives (` + driveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39)
		ON CONFLICT (game_id, drive_id) DO UPDATE SET
			` + driveUpdates + `,
			updated_at = NOW()
	`

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning drive batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("preparing drive upsert: %w", err)
	}
	defer stmt.Close()

	for i := range drives {
		d := &drives[i]
		_, err := stmt.ExecContext(ctx,
			d.GameID, d.DriveID, d.Season, d.GameDate, d.DayOfWeek,
			d.OffensiveTeam, d.DefensiveTeam, d.HomeTeam, d.AwayTeam, d.OffenseHome, d.DefenseHome,
			d.StartQuarter, d.EndQuarter, d.StartTime, d.EndTime, d.DriveTime,
			d.StartYardLine, d.YardsGained, d.PenaltyYards, d.EndYardLine, d.NPlays, d.Result,
			d.IsPlayoffs, d.OffensivePoints, d.DSTPoints,
			d.IsTouchdown, d.IsFieldGoal, d.IsScore, d.IsInterception, d.IsFumble,
			d.NextStartYardLine, d.StartYardLineBin, d.EndYardLineBin,
			d.ExpectedPoints, d.FieldPositionPoints, d.DriveScore, d.RelativeDriveScore,
			d.AdjOffensiveScore, d.AdjDefensiveScore,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting drive %s/%d: %w", d.GameID, d.DriveID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing drive batch: %w", err)
	}
	return len(drives), nil
}

// GetByGame returns a game's drives in play order
func (r *DriveRepository) GetByGame(ctx context.Context, gameID string) ([]store.Drive, error) {
	query := `
		SELECT ` + driveColumns + `
		FROM drives
		WHERE game_id = $1
		ORDER BY start_quarter ASC, start_time DESC NULLS LAST
	`

	rows, err := r.db.DB().QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying drives: %w", err)
	}
	defer rows.Close()

	drives, err := r.scanDrives(rows)
	if err != nil {
		return nil, err
	}
	if len(drives) == 0 {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return drives, nil
}

// CountBySeason returns the number of stored drives per season
func (r *DriveRepository) CountBySeason(ctx context.Context) (map[int]int, error) {
	query := `SELECT season, COUNT(*) FROM drives GROUP BY season ORDER BY season`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("counting drives: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var season, n int
		if err := rows.Scan(&season, &n); err != nil {
			return nil, fmt.Errorf("scanning drive count: %w", err)
		}
		counts[season] = n
	}
	return counts, rows.Err()
}

// scanDrives scans multiple drive rows
func (r *DriveRepository) scanDrives(rows *sql.Rows) ([]store.Drive, error) {
	var drives []store.Drive
	for rows.Next() {
		var d store.Drive
		var startBin, endBin sql.NullString
		err := rows.Scan(
			&d.GameID, &d.DriveID, &d.Season, &d.GameDate, &d.DayOfWeek,
			&d.OffensiveTeam, &d.DefensiveTeam, &d.HomeTeam, &d.AwayTeam, &d.OffenseHome, &d.DefenseHome,
			&d.StartQuarter, &d.EndQuarter, &d.StartTime, &d.EndTime, &d.DriveTime,
			&d.StartYardLine, &d.YardsGained, &d.PenaltyYards, &d.EndYardLine, &d.NPlays, &d.Result,
			&d.IsPlayoffs, &d.OffensivePoints, &d.DSTPoints,
			&d.IsTouchdown, &d.IsFieldGoal, &d.IsScore, &d.IsInterception, &d.IsFumble,
			&d.NextStartYardLine, &startBin, &endBin,
			&d.ExpectedPoints, &d.FieldPositionPoints, &d.DriveScore, &d.RelativeDriveScore,
			&d.AdjOffensiveScore, &d.AdjDefensiveScore,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning drive: %w", err)
		}
		d.StartYardLineBin = startBin.String
		d.EndYardLineBin = endBin.String
		drives = append(drives, d)
	}
	return drives, rows.Err()
}
