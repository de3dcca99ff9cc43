package gamecenter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fortuna/drivescore/internal/store"
)

// RawDrive is one possession as deposited by the game-center scraper,
// before any cleaning. StartYardLine is already on the 0-100 scale
// measured from the offense's own goal line.
type RawDrive struct {
	GameID                   string          `json:"game_id"`
	OffensiveTeam            string          `json:"offensive_team"`
	DefensiveTeam            string          `json:"defensive_team"`
	HomeTeam                 string          `json:"home_team"`
	AwayTeam                 string          `json:"away_team"`
	StartQuarter             int             `json:"start_quarter"`
	StartTime                string          `json:"start_time"`
	StartYardLine            store.NullFloat `json:"start_yard_line"`
	YardsGained              int             `json:"yards_gained"`
	PenaltyYards             int             `json:"penalty_yards"`
	EndQuarter               int             `json:"end_quarter"`
	EndTime                  string          `json:"end_time"`
	Result                   string          `json:"result"`
	NPlays                   int             `json:"n_plays"`
	DriveTime                string          `json:"drive_time"`
	FirstPlayDesc            string          `json:"first_play_desc"`
	LastPlayDesc             string          `json:"last_play_desc"`
	HomeFinalScore           int             `json:"home_final_score"`
	AwayFinalScore           int             `json:"away_final_score"`
	HomeScoreDiffLastQuarter FlexInt         `json:"home_score_diff_last_quarter"`
}

// FlexInt decodes an integer written either as a JSON number or as a
// numeric string. The scraper emits the quarter differential both ways.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}

	var n json.Number
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		n = json.Number(strings.TrimSpace(str))
	} else {
		n = json.Number(s)
	}

	if i, err := strconv.Atoi(n.String()); err == nil {
		*f = FlexInt(i)
		return nil
	}
	v, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", s, err)
	}
	*f = FlexInt(int(v))
	return nil
}
