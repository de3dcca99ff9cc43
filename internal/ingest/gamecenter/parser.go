package gamecenter

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/fortuna/drivescore/internal/store"
)

// Parse errors. A malformed drive is skipped; a malformed game is reported.
// ErrMissingScore is only logged: the drive is kept with a zero differential.
var (
	ErrGameMissing  = errors.New("game id not present in document")
	ErrEmptyPlays   = errors.New("drive has no plays")
	ErrBadPlayKey   = errors.New("drive play index is not numeric")
	ErrBadYardLine  = errors.New("unrecognized yard line")
	ErrMissingScore = errors.New("missing quarter score")
)

// ParseGame flattens a game-center document into one RawDrive per
// possession, walking possessions 1..crntdrv. Missing possession indices
// are dropped silently; drives whose play map is empty or malformed are
// logged and skipped without failing the game.
func ParseGame(document map[string]interface{}, gameID string) ([]RawDrive, error) {
	raw, ok := document[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameMissing, gameID)
	}
	game, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameMissing, gameID)
	}

	home := extractMap(game, "home")
	away := extractMap(game, "away")
	homeAbbr := extractString(home, "abbr")
	awayAbbr := extractString(away, "abbr")
	homeFinal := extractInt(extractMap(home, "score"), "T")
	awayFinal := extractInt(extractMap(away, "score"), "T")

	drives := extractMap(game, "drives")
	current := extractInt(drives, "crntdrv")

	parsed := make([]RawDrive, 0, current)
	for i := 1; i <= current; i++ {
		drive := extractMap(drives, strconv.Itoa(i))
		if len(drive) == 0 {
			continue
		}

		rd, err := parseDrive(game, drive, gameID, homeAbbr, awayAbbr)
		if err != nil {
			log.Printf("[gamecenter] Skipping drive %d of game %s: %v", i, gameID, err)
			continue
		}
		rd.HomeFinalScore = homeFinal
		rd.AwayFinalScore = awayFinal
		parsed = append(parsed, rd)
	}

	return parsed, nil
}

func parseDrive(game, drive map[string]interface{}, gameID, home, away string) (RawDrive, error) {
	offense := extractString(drive, "posteam")
	defense := away
	if home != offense {
		defense = home
	}

	plays := extractMap(drive, "plays")
	firstKey, lastKey, err := playKeyRange(plays)
	if err != nil {
		return RawDrive{}, err
	}

	start := extractMap(drive, "start")
	end := extractMap(drive, "end")

	yardLine, err := FormatYardLine(extractString(start, "yrdln"), offense)
	if err != nil {
		return RawDrive{}, err
	}

	startQuarter := extractInt(start, "qtr")
	diff, err := ScoreDifferential(game, startQuarter)
	if err != nil {
		log.Printf("[gamecenter] Game %s drive by %s: %v; using a zero differential", gameID, offense, err)
		diff = 0
	}

	return RawDrive{
		GameID:                   gameID,
		OffensiveTeam:            offense,
		DefensiveTeam:            defense,
		HomeTeam:                 home,
		AwayTeam:                 away,
		StartQuarter:             startQuarter,
		StartTime:                extractString(start, "time"),
		StartYardLine:            yardLine,
		YardsGained:              extractInt(drive, "ydsgained"),
		PenaltyYards:             extractInt(drive, "penyds"),
		EndQuarter:               extractInt(end, "qtr"),
		EndTime:                  extractString(end, "time"),
		Result:                   extractString(drive, "result"),
		NPlays:                   extractInt(drive, "numplays"),
		DriveTime:                extractString(drive, "postime"),
		FirstPlayDesc:            extractString(extractMap(plays, firstKey), "desc"),
		LastPlayDesc:             extractString(extractMap(plays, lastKey), "desc"),
		HomeScoreDiffLastQuarter: FlexInt(diff),
	}, nil
}

// playKeyRange returns the smallest and largest play index of a drive.
func playKeyRange(plays map[string]interface{}) (string, string, error) {
	if len(plays) == 0 {
		return "", "", ErrEmptyPlays
	}

	first, last := 0, 0
	seen := false
	for key := range plays {
		n, err := strconv.Atoi(key)
		if err != nil {
			return "", "", fmt.Errorf("%w: %q", ErrBadPlayKey, key)
		}
		if !seen || n < first {
			first = n
		}
		if !seen || n > last {
			last = n
		}
		seen = true
	}
	return strconv.Itoa(first), strconv.Itoa(last), nil
}

// FormatYardLine converts a game-center yard line into the 0-100 scale
// measured from the offense's own goal line. "50" is midfield, "<TEAM> N"
// is N on the offense's side and 100-N on the opponent's, and an empty
// value is undefined.
func FormatYardLine(yardLine, offense string) (store.NullFloat, error) {
	yardLine = strings.TrimSpace(yardLine)
	switch yardLine {
	case "":
		return store.NullFloat{}, nil
	case "50":
		return store.Float(50), nil
	}

	parts := strings.Fields(yardLine)
	if len(parts) != 2 {
		return store.NullFloat{}, fmt.Errorf("%w: %q", ErrBadYardLine, yardLine)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return store.NullFloat{}, fmt.Errorf("%w: %q", ErrBadYardLine, yardLine)
	}

	if parts[0] == offense {
		return store.Float(float64(n)), nil
	}
	return store.Float(float64(100 - n)), nil
}

// ScoreDifferential returns home minus away points summed over the quarters
// completed before startQuarter. Drives starting in the first quarter get 0.
func ScoreDifferential(game map[string]interface{}, startQuarter int) (int, error) {
	if startQuarter <= 1 {
		return 0, nil
	}

	homeScore := extractMap(extractMap(game, "home"), "score")
	awayScore := extractMap(extractMap(game, "away"), "score")

	diff := 0
	for quarter := 1; quarter < startQuarter; quarter++ {
		key := strconv.Itoa(quarter)
		h, okHome := homeScore[key]
		a, okAway := awayScore[key]
		if !okHome || !okAway {
			return 0, fmt.Errorf("%w: quarter %d", ErrMissingScore, quarter)
		}
		diff += parseInt(h) - parseInt(a)
	}
	return diff, nil
}

func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func extractInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		return parseInt(v)
	}
	return 0
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

func parseInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(val))
		return i
	default:
		return 0
	}
}
