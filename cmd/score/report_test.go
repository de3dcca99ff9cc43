package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/drivescore/internal/scoring"
	"github.com/fortuna/drivescore/internal/store"
)

func TestRenderRatings(t *testing.T) {
	ratings := []store.TeamRating{
		{Season: 2016, Team: "DEN", OffenseDrives: 190, OffenseScore: store.Float(-0.4)},
		{Season: 2015, Team: "PIT", OffenseDrives: 180, OffenseScore: store.Float(0.9), AdjOffenseScore: store.Float(1.1)},
		{Season: 2015, Team: "NE", OffenseDrives: 185, OffenseScore: store.Float(1.4), AdjOffenseScore: store.Float(1.6)},
		{Season: 2015, Team: "CLE", OffenseDrives: 178},
	}

	var buf bytes.Buffer
	renderRatings(&buf, ratings, scoring.SideOffense, 2)
	out := buf.String()

	assert.Contains(t, out, "2015 offense")
	assert.Contains(t, out, "2016 offense")
	assert.Less(t, strings.Index(out, "2015 offense"), strings.Index(out, "2016 offense"))
	assert.Less(t, strings.Index(out, " NE "), strings.Index(out, " PIT "))
	assert.NotContains(t, out, "CLE", "top limits rows per season")
	assert.Contains(t, out, "+1.60")
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "-", formatScore(store.NullFloat{}))
	assert.Equal(t, "-0.25", formatScore(store.Float(-0.25)))
	assert.Equal(t, "+3.00", formatScore(store.Float(3)))
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "dry-run", "start", "end", "step-size", "blowout-margin", "database-url"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "offense", cmd.Flags().Lookup("side").DefValue)
}
