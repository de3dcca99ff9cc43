// Package config loads drivescore configuration from defaults, an optional
// YAML file, DRIVESCORE_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/scoring"
)

// Configuration validation errors.
var (
	ErrMissingDataDir       = errors.New("data_dir is required")
	ErrMissingOutputDir     = errors.New("output_dir is required")
	ErrInvalidSeason        = errors.New("start_season must be a four-digit year")
	ErrInvalidSeasonRange   = errors.New("start_season cannot exceed end_season")
	ErrInvalidIterations    = errors.New("scoring.iterations must be non-negative")
	ErrInvalidStepSize      = errors.New("scoring.step_size must be in (0, 1]")
	ErrInvalidBlowoutMargin = errors.New("scoring.blowout_margin must be non-negative")
	ErrInvalidPlayoffCutoff = errors.New("teams.playoff_cutoff must be at least 1")
	ErrInvalidPort          = errors.New("server.port must be between 1 and 65535")
	ErrInvalidCacheTTL      = errors.New("redis.cache_ttl must be non-negative")
)

// Config holds all drivescore settings.
type Config struct {
	DataDir     string         `koanf:"data_dir"`
	OutputDir   string         `koanf:"output_dir"`
	StartSeason int            `koanf:"start_season"`
	EndSeason   int            `koanf:"end_season"`
	Database    DatabaseConfig `koanf:"database"`
	Redis       RedisConfig    `koanf:"redis"`
	Server      ServerConfig   `koanf:"server"`
	Scoring     ScoringConfig  `koanf:"scoring"`
	Teams       TeamsConfig    `koanf:"teams"`
}

// DatabaseConfig configures the Postgres sink. An empty URL disables it.
type DatabaseConfig struct {
	URL           string `koanf:"url"`
	RunMigrations bool   `koanf:"run_migrations"`
}

// RedisConfig configures the ratings cache and stream. An empty URL
// disables both.
type RedisConfig struct {
	URL      string        `koanf:"url"`
	Stream   string        `koanf:"stream"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// ServerConfig configures the REST service.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// ScoringConfig mirrors scoring.Options.
type ScoringConfig struct {
	Iterations      int     `koanf:"iterations"`
	StepSize        float64 `koanf:"step_size"`
	OpponentAdjust  bool    `koanf:"opponent_adjust"`
	ExcludePlayoffs bool    `koanf:"exclude_playoffs"`
	BlowoutMargin   int     `koanf:"blowout_margin"`
	CenterScores    bool    `koanf:"center_scores"`
}

// TeamsConfig holds the franchise relocation aliases, the exhibition team
// markers and the regular-season game count.
type TeamsConfig struct {
	Aliases       map[string]string `koanf:"aliases"`
	Exhibition    []string          `koanf:"exhibition"`
	PlayoffCutoff int               `koanf:"playoff_cutoff"`
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrMissingDataDir
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	if err := ValidateSeasons(c.StartSeason, c.EndSeason); err != nil {
		return err
	}
	if c.Scoring.Iterations < 0 {
		return ErrInvalidIterations
	}
	if c.Scoring.StepSize <= 0 || c.Scoring.StepSize > 1 {
		return ErrInvalidStepSize
	}
	if c.Scoring.BlowoutMargin < 0 {
		return ErrInvalidBlowoutMargin
	}
	if c.Teams.PlayoffCutoff < 1 {
		return ErrInvalidPlayoffCutoff
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Redis.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}

// ValidateSeasons checks a season range.
func ValidateSeasons(start, end int) error {
	if start < 1000 || start > 9999 || end < 1000 || end > 9999 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidSeason, start, end)
	}
	if start > end {
		return fmt.Errorf("%w: %d > %d", ErrInvalidSeasonRange, start, end)
	}
	return nil
}

// EngineOptions converts the scoring settings.
func (c *Config) EngineOptions() scoring.Options {
	return scoring.Options{
		Iterations:      c.Scoring.Iterations,
		StepSize:        c.Scoring.StepSize,
		OpponentAdjust:  c.Scoring.OpponentAdjust,
		ExcludePlayoffs: c.Scoring.ExcludePlayoffs,
		BlowoutMargin:   c.Scoring.BlowoutMargin,
		CenterScores:    c.Scoring.CenterScores,
	}
}

// NormalizerConfig converts the team settings.
func (c *Config) NormalizerConfig() normalize.Config {
	return normalize.Config{
		Aliases:         c.Teams.Aliases,
		ExhibitionTeams: c.Teams.Exhibition,
		PlayoffCutoff:   c.Teams.PlayoffCutoff,
	}
}
