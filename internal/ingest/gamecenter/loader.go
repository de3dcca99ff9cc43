package gamecenter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrSeasonNotFound is returned when neither a game directory nor a flat
// drives file exists for a season.
var ErrSeasonNotFound = errors.New("no drive data for season")


// Loader reads scraped game-center output from a data directory laid out as
// <dir>/<season>/<game_id>.json or <dir>/<season>_drives.json.
type Loader struct {
	dataDir string
	logger  *log.Logger
}

// NewLoader creates a loader rooted at dataDir.
func NewLoader(dataDir string, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		dataDir: dataDir,
		logger:  logger,
	}
}

// LoadSeason returns every raw drive of a season. Game files take precedence
// over a flat drives file. A game file that cannot be read or parsed is
// logged and skipped.
func (l *Loader) LoadSeason(ctx context.Context, season int) ([]RawDrive, error) {
	seasonDir := filepath.Join(l.dataDir, strconv.Itoa(season))
	if info, err := os.Stat(seasonDir); err == nil && info.IsDir() {
		return l.loadGameDir(ctx, seasonDir)
	}

	flat := filepath.Join(l.dataDir, fmt.Sprintf("%d_drives.json", season))
	if _, err := os.Stat(flat); err == nil {
		return LoadDrivesFile(flat)
	}

	return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, season)
}

func (l *Loader) loadGameDir(ctx context.Context, dir string) ([]RawDrive, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading season directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var drives []RawDrive
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		gameID := strings.TrimSuffix(name, ".json")
		parsed, err := LoadGameFile(filepath.Join(dir, name), gameID)
		if err != nil {
			l.logger.Printf("[gamecenter] Skipping game %s: %v", gameID, err)
			continue
		}
		drives = append(drives, parsed...)
	}

	return drives, nil
}

// LoadGameFile parses one game-center document.
func LoadGameFile(path, gameID string) ([]RawDrive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game file: %w", err)
	}

	var document map[string]interface{}
	if err := json.Unmarshal(sanitize(data), &document); err != nil {
		return nil, fmt.Errorf("decoding game file: %w", err)
	}

	return ParseGame(document, gameID)
}

// LoadDrivesFile reads a JSON array of flat drive records.
func LoadDrivesFile(path string) ([]RawDrive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading drives file: %w", err)
	}

	var drives []RawDrive
	if err := json.Unmarshal(sanitize(data), &drives); err != nil {
		return nil, fmt.Errorf("decoding drives file: %w", err)
	}
	return drives, nil
}

// sanitize rewrites the bare NaN the scraper writes for missing floats to
// null. Quoted strings are copied untouched.
func sanitize(data []byte) []byte {
	out := make([]byte, 0, len(data))
	inString, escaped := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			out = append(out, c)
			continue
		}
		if n := nanLength(data[i:]); n > 0 {
			out = append(out, "null"...)
			i += n - 1
			continue
		}
		out = append(out, c)
	}
	return out
}

// nanLength returns the length of a NaN or -NaN token at the start of b, or 0.
func nanLength(b []byte) int {
	n := 0
	if len(b) > 0 && b[0] == '-' {
		n = 1
	}
	if !bytes.HasPrefix(b[n:], []byte("NaN")) {
		return 0
	}
	n += 3
	if n < len(b) && isIdentByte(b[n]) {
		return 0
	}
	return n
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
