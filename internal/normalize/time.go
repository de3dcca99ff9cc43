package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/drivescore/internal/store"
)

// SeasonOf derives the season from a game id. Games played before
// September belong to the previous year's season.
func SeasonOf(gameID string) (int, error) {
	if len(gameID) < 6 {
		return 0, fmt.Errorf("invalid game id %q", gameID)
	}
	year, err := strconv.Atoi(gameID[:4])
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", gameID, err)
	}
	month, err := strconv.Atoi(gameID[4:6])
	if err != nil {
		return 0, fmt.Errorf("invalid game id %q: %w", gameID, err)
	}

	if month > 8 {
		return year, nil
	}
	return year - 1, nil
}

// GameDate parses the YYYYMMDD prefix of a game id.
func GameDate(gameID string) (time.Time, error) {
	if len(gameID) < 8 {
		return time.Time{}, fmt.Errorf("invalid game id %q", gameID)
	}
	date, err := time.Parse("20060102", gameID[:8])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid game date in %q: %w", gameID, err)
	}
	return date, nil
}

// ParseClock converts an "MM:SS" clock to fractional minutes. Empty or
// malformed clocks are undefined.
func ParseClock(clock string) store.NullFloat {
	minutes, seconds, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return store.NullFloat{}
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return store.NullFloat{}
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return store.NullFloat{}
	}
	return store.Float(float64(m) + float64(s)/60)
}

// QuarterPossessionTime returns the minutes of possession a drive used in
// quarter q (1-5, 5 being overtime).
func QuarterPossessionTime(d store.Drive, q int) store.NullFloat {
	switch {
	case d.StartQuarter == q && d.EndQuarter == q:
		return d.DriveTime
	case d.StartQuarter != q && d.EndQuarter != q:
		return store.Float(0)
	case d.StartQuarter == q:
		return d.StartTime
	default:
		return store.Float(15).Sub(d.EndTime)
	}
}
