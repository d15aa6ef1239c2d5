// Package config holds the on-disk configuration of the catalog tool.
// Settings resolve in order: built-in defaults, then the JSON config
// file, then PYPL2MP3_* environment variables, then command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	// DefaultMatchThreshold is the minimum fuzzy score for a song to
	// count as matching a keyword filter.
	DefaultMatchThreshold = 45

	// DefaultShazamThreshold is the minimum recognition confidence for
	// a song to be tagged rather than marked junk.
	DefaultShazamThreshold = 50

	// LogFileName is the diagnostics log kept at the repository root.
	LogFileName = "pypl2mp3.log"

	configFileName = "config.json"
)

// Config is the tool configuration.
type Config struct {
	// RepoDir is the root directory holding one subdirectory per
	// playlist. The directory tree is the only database there is.
	RepoDir string `json:"RepoDir" env:"PYPL2MP3_REPO"`

	// DefaultPlaylist is the playlist selector used when a command is
	// run without one: a playlist id, URL, or 1-based index.
	DefaultPlaylist string `json:"DefaultPlaylist" env:"PYPL2MP3_DEFAULT_PLAYLIST"`

	// ShazamEndpoint is the base URL of the song recognition service.
	ShazamEndpoint string `json:"ShazamEndpoint" env:"PYPL2MP3_SHAZAM_ENDPOINT"`

	// Bitrate is the MP3 encoding bitrate in kbit/s, e.g. "192".
	Bitrate string `json:"Bitrate" env:"PYPL2MP3_BITRATE"`

	MatchThreshold  int `json:"MatchThreshold" env:"PYPL2MP3_MATCH_THRESHOLD"`
	ShazamThreshold int `json:"ShazamThreshold" env:"PYPL2MP3_SHAZAM_THRESHOLD"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		RepoDir:         filepath.Join(home, "pypl2mp3"),
		Bitrate:         "192",
		MatchThreshold:  DefaultMatchThreshold,
		ShazamThreshold: DefaultShazamThreshold,
	}
}

// ConfigPath is the location of the JSON config file inside the
// repository.
func ConfigPath(repoDir string) string {
	return filepath.Join(repoDir, configFileName)
}

// Load resolves the effective configuration: defaults, then the config
// file under the repository (if one exists), then environment
// variables, then the repository flag. The repository directory itself
// resolves flag first, so the config file is read from the repository
// the command actually targets. A missing config file is not an error.
func Load(repoFlag string) (Config, error) {
	cfg := Default()

	if repo := os.Getenv("PYPL2MP3_REPO"); repo != "" {
		cfg.RepoDir = repo
	}
	if repoFlag != "" {
		cfg.RepoDir = repoFlag
	}
	data, err := os.ReadFile(ConfigPath(cfg.RepoDir))
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}
	if repoFlag != "" {
		cfg.RepoDir = repoFlag
	}
	return cfg, nil
}

// Save writes the configuration to the repository's config file,
// creating the repository directory if needed.
func Save(cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(cfg.RepoDir, 0755); err != nil {
		return fmt.Errorf("failed to create repository directory: %w", err)
	}
	if err := os.WriteFile(ConfigPath(cfg.RepoDir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
