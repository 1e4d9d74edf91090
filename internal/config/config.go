// Package config loads the JSON run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// Config holds every tunable of a run. All fields are optional in the file;
// missing values keep their defaults.
type Config struct {
	CheckpointFile string `json:"checkpoint_file"`
	ArchiveFile    string `json:"archive_file"` // empty disables the sqlite archive
	LogFile        string `json:"log_file"`     // empty logs to stderr only

	Headless       bool     `json:"headless"`
	UserAgents     []string `json:"user_agents"`     // empty uses the built-in pool
	ExtensionPaths []string `json:"extension_paths"` // unpacked extension dirs, checked at startup
	ResultsPerPage int      `json:"results_per_page"`

	// Query templates. The location template takes one verb (the location);
	// the keyword template takes two (keyword, location).
	LocationQueryTemplate string `json:"location_query_template"`
	KeywordQueryTemplate  string `json:"keyword_query_template"`

	// Pacing, in seconds. Settle is the post-navigation wait, load the wait
	// after each scroll, step the pacing between scroll rounds.
	SettleMinSec float64 `json:"settle_min_sec"`
	SettleMaxSec float64 `json:"settle_max_sec"`
	LoadMinSec   float64 `json:"load_min_sec"`
	LoadMaxSec   float64 `json:"load_max_sec"`
	StepMinSec   float64 `json:"step_min_sec"`
	StepMaxSec   float64 `json:"step_max_sec"`

	// MaxScrollRounds caps scroll attempts per page; 0 removes the cap.
	MaxScrollRounds int `json:"max_scroll_rounds"`
}

var defaultConfig = Config{
	CheckpointFile:        "emails_result.json",
	ArchiveFile:           "emails_archive.sqlite",
	LogFile:               "scraper.log",
	Headless:              true,
	ResultsPerPage:        50,
	LocationQueryTemplate: `site:linkedin.com construction in "%s" "email" "com" -india`,
	KeywordQueryTemplate:  `site:linkedin.com %s in "%s" "email" "com" -india`,
	SettleMinSec:          5,
	SettleMaxSec:          8,
	LoadMinSec:            8,
	LoadMaxSec:            12,
	StepMinSec:            5,
	StepMaxSec:            7,
	MaxScrollRounds:       20,
}

// Default returns a copy of the built-in configuration.
func Default() Config {
	return defaultConfig
}

// Load reads a JSON config file over the defaults. An unreadable or invalid
// file is logged and the defaults are used; an explicit empty path skips the
// file entirely.
func Load(path string, logger *log.Logger) Config {
	cfg := defaultConfig
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Printf("[!] Could not read config file %s, using defaults: %v", path, err)
		return defaultConfig
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Printf("[!] Invalid config file %s, using defaults: %v", path, err)
		return defaultConfig
	}
	return cfg
}

// Validate checks interval ordering and counts.
func (c Config) Validate() error {
	if c.CheckpointFile == "" {
		return fmt.Errorf("config error: checkpoint_file must not be empty")
	}
	pairs := []struct {
		name     string
		min, max float64
	}{
		{"settle", c.SettleMinSec, c.SettleMaxSec},
		{"load", c.LoadMinSec, c.LoadMaxSec},
		{"step", c.StepMinSec, c.StepMaxSec},
	}
	for _, p := range pairs {
		if p.min < 0 || p.max < 0 {
			return fmt.Errorf("config error: %s pause must be non-negative", p.name)
		}
		if p.max < p.min {
			return fmt.Errorf("config error: %s pause max is below min", p.name)
		}
	}
	if c.ResultsPerPage < 0 {
		return fmt.Errorf("config error: results_per_page must be non-negative")
	}
	if c.MaxScrollRounds < 0 {
		return fmt.Errorf("config error: max_scroll_rounds must be non-negative")
	}
	return nil
}

// Seconds converts a float seconds value into a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
