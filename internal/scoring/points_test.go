package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/drivescore/internal/store"
)

var nePit = testGame{id: "2015091000", home: "NE", away: "PIT", homeFinal: 28, awayF: 21}

func TestMarkScores(t *testing.T) {
	tests := []struct {
		name       string
		result     string
		lastPlay   string
		wantResult string
		wantEP     float64
		wantOff    int
		wantDST    int
		touchdown  bool
		fieldGoal  bool
	}{
		{
			name: "touchdown with extra point", result: "Touchdown",
			lastPlay: "S.Gostkowski extra point is GOOD, Center-J.Cardona.",
			wantResult: "Touchdown", wantEP: 7, wantOff: 7, touchdown: true,
		},
		{
			name: "touchdown with two point conversion", result: "Touchdown",
			lastPlay: "TWO-POINT CONVERSION ATTEMPT. T.Brady pass to R.Gronkowski. ATTEMPT SUCCEEDS.",
			wantResult: "Touchdown", wantEP: 7, wantOff: 8, touchdown: true,
		},
		{
			name: "reversed two point conversion", result: "Touchdown",
			lastPlay: "TWO-POINT CONVERSION ATTEMPT. ATTEMPT SUCCEEDS. The Replay Assistant challenged. The play was REVERSED.",
			wantResult: "Touchdown", wantEP: 7, wantOff: 6, touchdown: true,
		},
		{
			name: "field goal", result: "Field Goal", lastPlay: "42 yard field goal is GOOD",
			wantResult: "Field Goal", wantOff: 3, fieldGoal: true,
		},
		{
			name: "punt", result: "Punt", lastPlay: "punts 45 yards",
			wantResult: "Punt",
		},
		{
			name: "fumble returned for touchdown", result: "Fumble",
			lastPlay: "FUMBLES, recovered by NE-J.Collins and returns for TOUCHDOWN",
			wantResult: "Fumble, Touchdown", wantEP: -7, wantDST: 7,
		},
		{
			name: "pick six", result: "Interception",
			lastPlay: "INTERCEPTED by M.Butler. TOUCHDOWN.",
			wantResult: "Interception, Touchdown", wantEP: -7, wantDST: 7,
		},
		{
			name: "punt return touchdown", result: "Punt",
			lastPlay: "punts 50 yards, returned for TOUCHDOWN",
			wantResult: "Punt", wantEP: -7, wantDST: 7,
		},
		{
			name: "nullified return touchdown", result: "Interception",
			lastPlay: "INTERCEPTED, TOUCHDOWN. PENALTY on NE. The play was NULLIFIED.",
			wantResult: "Interception",
		},
		{
			name: "safety", result: "Safety", lastPlay: "sacked in end zone, SAFETY",
			wantResult: "Safety", wantEP: -2, wantDST: 2,
		},
		{
			name: "fumble safety", result: "Fumble, Safety", lastPlay: "FUMBLES out of end zone, SAFETY",
			wantResult: "Fumble, Safety", wantEP: -2, wantDST: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []store.Drive{nePit.drive("PIT", 1, "15:00", 25, 10, tt.result, tt.lastPlay)}
			out := MarkScores(in)
			require.Len(t, out, 1)
			d := out[0]

			assert.Equal(t, tt.wantResult, d.Result)
			assert.Equal(t, store.Float(tt.wantEP), d.ExpectedPoints)
			assert.Equal(t, tt.wantOff, d.OffensivePoints)
			assert.Equal(t, tt.wantDST, d.DSTPoints)
			assert.Equal(t, tt.touchdown, d.IsTouchdown)
			assert.Equal(t, tt.fieldGoal, d.IsFieldGoal)
			assert.Equal(t, tt.touchdown || tt.fieldGoal, d.IsScore)

			assert.Equal(t, tt.result, in[0].Result, "input is not modified")
		})
	}
}

func TestMarkScoresTurnoverFlags(t *testing.T) {
	out := MarkScores([]store.Drive{
		nePit.drive("PIT", 1, "15:00", 25, 10, "Fumble", "FUMBLES, TOUCHDOWN"),
		nePit.drive("NE", 1, "10:00", 25, 10, "Interception", "INTERCEPTED"),
	})
	assert.True(t, out[0].IsFumble, "flag reflects the pre-amendment result")
	assert.False(t, out[0].IsInterception)
	assert.True(t, out[1].IsInterception)
}

func TestTrackScore(t *testing.T) {
	drives := MarkScores([]store.Drive{
		nePit.drive("PIT", 1, "15:00", 25, 40, "Field Goal", "field goal is GOOD"),
		nePit.drive("NE", 1, "11:00", 25, 75, "Touchdown", "extra point is GOOD"),
		nePit.drive("PIT", 2, "14:00", 25, 5, "Interception", "INTERCEPTED, TOUCHDOWN"),
		nePit.drive("NE", 2, "12:00", 40, 0, "Safety", "SAFETY"),
	})
	out := TrackScore(drives)

	// PIT FG 0-3, NE TD 7-3, NE pick six 14-3, PIT safety 14-5.
	assert.Equal(t, []int{0, 7, 14, 14}, column(out, func(d store.Drive) int { return d.HomeScoreEnd }))
	assert.Equal(t, []int{3, 3, 3, 5}, column(out, func(d store.Drive) int { return d.AwayScoreEnd }))
	assert.Equal(t, []int{0, 0, 7, 14}, column(out, func(d store.Drive) int { return d.HomeScoreStart }))

	assert.Equal(t, 0, out[0].OffensiveTeamScoreStart)
	assert.Equal(t, 3, out[0].OffensiveTeamScoreEnd)
	assert.Equal(t, 3, out[1].DefensiveTeamScoreStart)
	assert.Equal(t, 7, out[2].DefensiveTeamScoreStart)
	assert.Equal(t, 14, out[2].DefensiveTeamScoreEnd)
	assert.Equal(t, 14, out[3].OffensiveTeamScoreStart)
	assert.Equal(t, 5, out[3].DefensiveTeamScoreEnd)

	assert.Equal(t, 21, out[0].OffensiveFinalScore)
	assert.Equal(t, 28, out[0].DefensiveFinalScore)
	assert.False(t, out[0].OffensiveWin)
	assert.True(t, out[0].DefensiveWin)
	assert.True(t, out[1].OffensiveWin)
	assert.False(t, out[1].Tie)
}

func TestTrackScoreTie(t *testing.T) {
	g := testGame{id: "2016102300", home: "ARI", away: "SEA", homeFinal: 6, awayF: 6}
	out := TrackScore(MarkScores([]store.Drive{g.drive("SEA", 1, "15:00", 25, 0, "Punt", "")}))
	assert.True(t, out[0].Tie)
	assert.False(t, out[0].OffensiveWin)
	assert.False(t, out[0].DefensiveWin)
}

func TestTrackScoreSeparatesGames(t *testing.T) {
	other := testGame{id: "2015091300", home: "NYJ", away: "CLE", homeFinal: 31, awayF: 10}
	out := TrackScore(MarkScores([]store.Drive{
		nePit.drive("NE", 1, "15:00", 25, 75, "Touchdown", ""),
		other.drive("NYJ", 1, "15:00", 25, 75, "Touchdown", ""),
	}))
	assert.Equal(t, 0, out[1].HomeScoreStart)
	assert.Equal(t, 6, out[1].HomeScoreEnd)
}

func column(drives []store.Drive, f func(store.Drive) int) []int {
	out := make([]int, len(drives))
	for i, d := range drives {
		out[i] = f(d)
	}
	return out
}
