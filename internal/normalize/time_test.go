package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/drivescore/internal/store"
)

func TestSeasonOf(t *testing.T) {
	tests := []struct {
		gameID string
		want   int
	}{
		{"2015091000", 2015},
		{"2015123100", 2015},
		{"2016010300", 2015},
		{"2016020700", 2015},
		{"2016080100", 2015},
		{"2016090800", 2016},
	}
	for _, tt := range tests {
		got, err := SeasonOf(tt.gameID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.gameID)
	}

	_, err := SeasonOf("20x5")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	assert.InDelta(t, 15.0, ParseClock("15:00").Float64, 1e-9)
	assert.InDelta(t, 2.5, ParseClock("2:30").Float64, 1e-9)
	assert.InDelta(t, 0.75, ParseClock("00:45").Float64, 1e-9)
	assert.False(t, ParseClock("").Valid)
	assert.False(t, ParseClock("abc").Valid)
}

func TestQuarterPossessionTime(t *testing.T) {
	single := store.Drive{
		StartQuarter: 2, EndQuarter: 2,
		StartTime: store.Float(10), EndTime: store.Float(6), DriveTime: store.Float(4),
	}
	spanning := store.Drive{
		StartQuarter: 1, EndQuarter: 2,
		StartTime: store.Float(2), EndTime: store.Float(13), DriveTime: store.Float(4),
	}

	assert.Equal(t, 4.0, QuarterPossessionTime(single, 2).Float64)
	assert.Equal(t, 0.0, QuarterPossessionTime(single, 1).Float64)
	assert.True(t, QuarterPossessionTime(single, 5).Valid)

	assert.Equal(t, 2.0, QuarterPossessionTime(spanning, 1).Float64)
	assert.Equal(t, 2.0, QuarterPossessionTime(spanning, 2).Float64)
	assert.Equal(t, 0.0, QuarterPossessionTime(spanning, 3).Float64)

	spanning.EndTime = store.NullFloat{}
	assert.False(t, QuarterPossessionTime(spanning, 2).Valid)
}
