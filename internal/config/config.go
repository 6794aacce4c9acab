package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/deckhand/internal/deck"
	"github.com/hpungsan/deckhand/internal/segment"
)

// DefaultDeckMaxChars is the default size limit for a deck source.
const DefaultDeckMaxChars = 200000

// Config holds application configuration.
type Config struct {
	// MaxCharsPerSlide is the character budget of one slide.
	MaxCharsPerSlide int `json:"max_chars_per_slide"`

	// MaxWordsPerSlide is the word budget of one slide.
	MaxWordsPerSlide int `json:"max_words_per_slide"`

	// MaxLinesPerSlide is the fragment budget of one slide. Each heading,
	// content line, task list, image or table chunk counts as one line.
	// Also the line budget for splitting tables.
	MaxLinesPerSlide int `json:"max_lines_per_slide"`

	// TableCharBudget caps table rows per slide at TableCharBudget divided by
	// the average row length.
	TableCharBudget int `json:"table_char_budget"`

	// PreserveNewlines collapses blank lines between tags in output.
	// Pointer so that an explicit false in an overlay wins over a true base.
	PreserveNewlines *bool `json:"preserve_newlines,omitempty"`

	// Sanitize runs output through the HTML allow-list.
	Sanitize *bool `json:"sanitize,omitempty"`

	// DeckMaxChars is the maximum character count for deck source text.
	DeckMaxChars int `json:"deck_max_chars"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.deckhand/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxCharsPerSlide: segment.DefaultMaxChars,
		MaxWordsPerSlide: segment.DefaultMaxWords,
		MaxLinesPerSlide: segment.DefaultMaxFragments,
		TableCharBudget:  segment.DefaultTableCharBudget,
		PreserveNewlines: boolPtr(true),
		Sanitize:         boolPtr(true),
		DeckMaxChars:     DefaultDeckMaxChars,
	}
}

// Budget returns the slide budget described by the config.
func (c *Config) Budget() segment.Budget {
	return segment.Budget{
		MaxChars:        c.MaxCharsPerSlide,
		MaxWords:        c.MaxWordsPerSlide,
		MaxFragments:    c.MaxLinesPerSlide,
		TableCharBudget: c.TableCharBudget,
	}
}

// DeckOptions returns conversion options for the config. Unset booleans
// default to true.
func (c *Config) DeckOptions() deck.Options {
	return deck.Options{
		PreserveNewlines: c.PreserveNewlines == nil || *c.PreserveNewlines,
		Sanitize:         c.Sanitize == nil || *c.Sanitize,
		Budget:           c.Budget(),
	}
}

// Validate reports the first non-positive budget as INVALID_BUDGET.
func (c *Config) Validate() error {
	return c.Budget().Validate()
}

// FileName is the config file looked up in each config directory.
const FileName = "config.json"

// Load reads baseDir/config.json over the defaults. A missing file yields
// the defaults.
func Load(baseDir string) (*Config, error) {
	cfg, err := readFile(filepath.Join(baseDir, FileName))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo layers defaults, then globalDir/config.json, then the nearest
// .deckhand/config.json found walking up from startDir. Later layers win for
// scalars; lists are unioned. Either file may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range []string{filepath.Join(globalDir, FileName), FindRepoConfig(startDir)} {
		layer, err := readFile(path)
		if err != nil {
			return nil, err
		}
		cfg = Merge(cfg, layer)
	}
	return cfg, nil
}

// FindRepoConfig returns the nearest .deckhand/config.json at or above
// startDir, or "" if there is none.
func FindRepoConfig(startDir string) string {
	for dir := startDir; ; {
		candidate := filepath.Join(dir, ".deckhand", FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// readFile parses one config file without applying defaults. An empty path
// or a missing file is an empty layer.
func readFile(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns overlay applied on top of base. Non-zero numbers and set
// booleans in overlay win, AllowUnsafePaths is sticky once enabled, and
// lists are unioned with blanks and duplicates dropped.
func Merge(base, overlay *Config) *Config {
	return &Config{
		MaxCharsPerSlide: pick(base.MaxCharsPerSlide, overlay.MaxCharsPerSlide),
		MaxWordsPerSlide: pick(base.MaxWordsPerSlide, overlay.MaxWordsPerSlide),
		MaxLinesPerSlide: pick(base.MaxLinesPerSlide, overlay.MaxLinesPerSlide),
		TableCharBudget:  pick(base.TableCharBudget, overlay.TableCharBudget),
		PreserveNewlines: pick(base.PreserveNewlines, overlay.PreserveNewlines),
		Sanitize:         pick(base.Sanitize, overlay.Sanitize),
		DeckMaxChars:     pick(base.DeckMaxChars, overlay.DeckMaxChars),
		AllowedPaths:     union(base.AllowedPaths, overlay.AllowedPaths),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		DBMaxOpenConns:   pick(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns:   pick(base.DBMaxIdleConns, overlay.DBMaxIdleConns),
		DisabledTools:    union(base.DisabledTools, overlay.DisabledTools),
	}
}

// pick returns overlay unless it is the zero value.
func pick[T comparable](base, overlay T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

func union(a, b []string) []string {
	var out []string
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
