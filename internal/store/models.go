package store

import (
	"database/sql"
	"encoding/json"
	"math"
	"time"
)

// NullFloat is a float64 that may be undefined (missing yard line, empty
// bucket mean). Arithmetic on an undefined operand yields undefined.
// It scans from and writes to SQL like sql.NullFloat64 and encodes as
// JSON null when undefined.
type NullFloat struct {
	sql.NullFloat64
}

// Float returns a defined value. NaN and infinities are treated as undefined.
func Float(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{sql.NullFloat64{Float64: v, Valid: true}}
}

// Add returns n + o.
func (n NullFloat) Add(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 + o.Float64)
}

// Sub returns n - o.
func (n NullFloat) Sub(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 - o.Float64)
}

// Scale returns n * f.
func (n NullFloat) Scale(f float64) NullFloat {
	if !n.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 * f)
}

// MarshalJSON encodes an undefined value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Drive is one possession, normalized and (after scoring) enriched with
// the derived scoring columns. Keyed by (game_id, drive_id).
type Drive struct {
	GameID    string    `json:"game_id" db:"game_id"`
	DriveID   int       `json:"drive_id" db:"drive_id"`
	Season    int       `json:"season" db:"season"`
	GameDate  time.Time `json:"game_date" db:"game_date"`
	DayOfWeek string    `json:"day_of_week" db:"day_of_week"`

	OffensiveTeam string `json:"offensive_team" db:"offensive_team"`
	DefensiveTeam string `json:"defensive_team" db:"defensive_team"`
	HomeTeam      string `json:"home_team" db:"home_team"`
	AwayTeam      string `json:"away_team" db:"away_team"`
	OffenseHome   bool   `json:"offense_home" db:"offense_home"`
	DefenseHome   bool   `json:"defense_home" db:"defense_home"`

	StartQuarter int          `json:"start_quarter" db:"start_quarter"`
	EndQuarter   int          `json:"end_quarter" db:"end_quarter"`
	StartClock   string       `json:"start_clock" db:"-"`
	EndClock     string       `json:"end_clock" db:"-"`
	DriveClock   string       `json:"drive_clock" db:"-"`
	StartTime    NullFloat    `json:"start_time" db:"start_time"`
	EndTime      NullFloat    `json:"end_time" db:"end_time"`
	DriveTime    NullFloat    `json:"drive_time" db:"drive_time"`
	QuarterTime  [5]NullFloat `json:"quarter_time" db:"-"`

	StartYardLine            NullFloat `json:"start_yard_line" db:"start_yard_line"`
	YardsGained              int       `json:"yards_gained" db:"yards_gained"`
	PenaltyYards             int       `json:"penalty_yards" db:"penalty_yards"`
	TotalYards               int       `json:"total_yards" db:"-"`
	EndYardLine              NullFloat `json:"end_yard_line" db:"end_yard_line"`
	NPlays                   int       `json:"n_plays" db:"n_plays"`
	Result                   string    `json:"result" db:"result"`
	FirstPlayDesc            string    `json:"first_play_desc" db:"-"`
	LastPlayDesc             string    `json:"last_play_desc" db:"-"`
	HomeScoreDiffLastQuarter int       `json:"home_score_diff_last_quarter" db:"-"`

	GameInSeason int  `json:"game_in_season" db:"-"`
	IsPlayoffs   bool `json:"is_playoffs" db:"is_playoffs"`

	OffensivePoints int  `json:"offensive_points" db:"offensive_points"`
	DSTPoints       int  `json:"dst_points" db:"dst_points"`
	IsTouchdown     bool `json:"is_touchdown" db:"is_touchdown"`
	IsFieldGoal     bool `json:"is_field_goal" db:"is_field_goal"`
	IsScore         bool `json:"is_score" db:"is_score"`
	IsInterception  bool `json:"is_interception" db:"is_interception"`
	IsFumble        bool `json:"is_fumble" db:"is_fumble"`

	HomePoints              int  `json:"home_points" db:"-"`
	AwayPoints              int  `json:"away_points" db:"-"`
	HomeScoreStart          int  `json:"home_score_start" db:"-"`
	HomeScoreEnd            int  `json:"home_score_end" db:"-"`
	AwayScoreStart          int  `json:"away_score_start" db:"-"`
	AwayScoreEnd            int  `json:"away_score_end" db:"-"`
	OffensiveTeamScoreStart int  `json:"offensive_team_score_start" db:"-"`
	OffensiveTeamScoreEnd   int  `json:"offensive_team_score_end" db:"-"`
	DefensiveTeamScoreStart int  `json:"defensive_team_score_start" db:"-"`
	DefensiveTeamScoreEnd   int  `json:"defensive_team_score_end" db:"-"`
	HomeFinalScore          int  `json:"home_final_score" db:"-"`
	AwayFinalScore          int  `json:"away_final_score" db:"-"`
	OffensiveFinalScore     int  `json:"offensive_final_score" db:"-"`
	DefensiveFinalScore     int  `json:"defensive_final_score" db:"-"`
	OffensiveWin            bool `json:"offensive_win" db:"-"`
	DefensiveWin            bool `json:"defensive_win" db:"-"`
	Tie                     bool `json:"tie" db:"-"`

	NextStartYardLine    NullFloat `json:"next_start_yard_line" db:"next_start_yard_line"`
	NextEndYardLine      NullFloat `json:"next_end_yard_line" db:"-"`
	NextOffensiveTeam    string    `json:"next_offensive_team" db:"-"`
	StartYardLineBin     string    `json:"start_yard_line_bin" db:"start_yard_line_bin"`
	EndYardLineBin       string    `json:"end_yard_line_bin" db:"end_yard_line_bin"`
	NextStartYardLineBin string    `json:"next_start_yard_line_bin" db:"-"`

	ExpectedPoints             NullFloat `json:"expected_points" db:"expected_points"`
	StartOppExpectedBin        string    `json:"start_opp_expected_yard_line_bin" db:"-"`
	EndOppExpectedBin          string    `json:"end_opp_expected_yard_line_bin" db:"-"`
	ExpectedPointsOppFromStart NullFloat `json:"expected_points_opp_from_start" db:"-"`
	ExpectedPointsOppFromEnd   NullFloat `json:"expected_points_opp_from_end" db:"-"`
	FieldPositionPoints        NullFloat `json:"field_position_points" db:"field_position_points"`
	DriveScore                 NullFloat `json:"drive_score" db:"drive_score"`
	RelativeDriveScore         NullFloat `json:"relative_drive_score" db:"relative_drive_score"`
	AdjOffensiveScore          NullFloat `json:"adj_offensive_score" db:"adj_offensive_score"`
	AdjDefensiveScore          NullFloat `json:"adj_defensive_score" db:"adj_defensive_score"`
}

// TeamRating is the offense/defense rating of one team in one season.
type TeamRating struct {
	Season          int       `json:"season" db:"season"`
	Team            string    `json:"team" db:"team"`
	OffenseDrives   int       `json:"offense_drives" db:"offense_drives"`
	DefenseDrives   int       `json:"defense_drives" db:"defense_drives"`
	OffenseScore    NullFloat `json:"offense_score" db:"offense_score"`
	DefenseScore    NullFloat `json:"defense_score" db:"defense_score"`
	AdjOffenseScore NullFloat `json:"adj_offense_score" db:"adj_offense_score"`
	AdjDefenseScore NullFloat `json:"adj_defense_score" db:"adj_defense_score"`
	NetScore        NullFloat `json:"net_score" db:"net_score"`
}

// GameScore aggregates one side of one team's drives in a single game.
type GameScore struct {
	GameID        string    `json:"game_id"`
	Season        int       `json:"season"`
	Team          string    `json:"team"`
	Opponent      string    `json:"opponent"`
	Side          string    `json:"side"`
	Drives        int       `json:"drives"`
	DriveScore    NullFloat `json:"drive_score"`
	AdjDriveScore NullFloat `json:"adj_drive_score"`
}

// RunStatus is the lifecycle state of a scoring run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ScoringRun records the parameters and outcome of one engine invocation.
// Same inputs, iterations and step size reproduce the same scores.
type ScoringRun struct {
	RunID        string         `json:"run_id" db:"run_id"`
	StartSeason  int            `json:"start_season" db:"start_season"`
	EndSeason    int            `json:"end_season" db:"end_season"`
	Seasons      []int64        `json:"seasons" db:"seasons"`
	Iterations   int            `json:"iterations" db:"iterations"`
	StepSize     float64        `json:"step_size" db:"step_size"`
	DrivesScored int            `json:"drives_scored" db:"drives_scored"`
	Status       RunStatus      `json:"status" db:"status"`
	LastError    sql.NullString `json:"-" db:"last_error"`
	StartedAt    time.Time      `json:"started_at" db:"started_at"`
	CompletedAt  sql.NullTime   `json:"-" db:"completed_at"`
}
