package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/fortuna/drivescore/internal/normalize"
	"github.com/fortuna/drivescore/internal/scoring"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: DRIVESCORE_SCORING__STEP_SIZE sets scoring.step_size.
const EnvPrefix = "DRIVESCORE_"

// DefaultConfigFile is read from the working directory when no file is given.
const DefaultConfigFile = "drivescore.yaml"

// flagKeys maps command-line flags onto config keys. Flags not listed use
// their name with dashes turned into underscores.
var flagKeys = map[string]string{
	"start":            "start_season",
	"end":              "end_season",
	"database-url":     "database.url",
	"migrate":          "database.run_migrations",
	"redis-url":        "redis.url",
	"stream":           "redis.stream",
	"cache-ttl":        "redis.cache_ttl",
	"port":             "server.port",
	"iterations":       "scoring.iterations",
	"step-size":        "scoring.step_size",
	"opponent-adjust":  "scoring.opponent_adjust",
	"exclude-playoffs": "scoring.exclude_playoffs",
	"blowout-margin":   "scoring.blowout_margin",
	"center-scores":    "scoring.center_scores",
	"playoff-cutoff":   "teams.playoff_cutoff",
	"exhibition":       "teams.exhibition",
}

func defaults() map[string]interface{} {
	teams := normalize.DefaultConfig()
	aliases := make(map[string]interface{}, len(teams.Aliases))
	for from, to := range teams.Aliases {
		aliases[from] = to
	}
	opts := scoring.DefaultOptions()

	return map[string]interface{}{
		"data_dir":                 "data",
		"output_dir":               "output",
		"start_season":             2009,
		"end_season":               2018,
		"database.url":             "",
		"database.run_migrations":  true,
		"redis.url":                "",
		"redis.stream":             "ratings.nfl",
		"redis.cache_ttl":          "10m",
		"server.port":              8080,
		"scoring.iterations":       opts.Iterations,
		"scoring.step_size":        opts.StepSize,
		"scoring.opponent_adjust":  opts.OpponentAdjust,
		"scoring.exclude_playoffs": opts.ExcludePlayoffs,
		"scoring.blowout_margin":   opts.BlowoutMargin,
		"scoring.center_scores":    opts.CenterScores,
		"teams.aliases":            aliases,
		"teams.exhibition":         teams.ExhibitionTeams,
		"teams.playoff_cutoff":     teams.PlayoffCutoff,
	}
}

// Load builds the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// An empty cfgFile falls back to DefaultConfigFile when it exists. Only
// flags that were explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// listKeys are split on commas when set from the environment.
var listKeys = map[string]bool{
	"teams.exhibition": true,
}

// envKey turns DRIVESCORE_SCORING__STEP_SIZE into scoring.step_size.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func envValue(name, value string) (string, interface{}) {
	key := envKey(name)
	if !listKeys[key] {
		return key, value
	}

	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}
