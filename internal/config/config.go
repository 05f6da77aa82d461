package config

import (
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the CLI. Values come from an optional
// YAML file at the XDG config path, overridden by environment variables;
// command-line flags override both.
type Config struct {
	// Handle is the Bluesky handle or email used for authentication.
	Handle string `yaml:"handle"`

	// Password is the App Password used for authentication. Prefer the
	// BLUESKY_APP_PASSWORD environment variable over the config file.
	Password string `yaml:"password"`

	// PDS is the service URL of the personal data server.
	PDS string `yaml:"pds"`

	// OutputDir is where generated export files land when no explicit
	// output path is given.
	OutputDir string `yaml:"output_dir"`

	// ArchivePath is the SQLite archive database path used by --archive.
	ArchivePath string `yaml:"archive_path"`
}

// configFile is the relative XDG path of the optional config file.
const configFile = "bskyposts/config.yaml"

// Load reads configuration from the given file (or the XDG default when
// path is empty), then applies environment variable overrides. A missing
// config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{
		PDS:       "https://bsky.social",
		OutputDir: "data",
	}

	if path == "" {
		if found, err := xdg.SearchConfigFile(configFile); err == nil {
			path = found
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("BLUESKY_HANDLE"); v != "" {
		cfg.Handle = v
	}
	if v := os.Getenv("BLUESKY_APP_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("BLUESKY_PDS"); v != "" {
		cfg.PDS = v
	}
	if v := os.Getenv("BSKY_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	return cfg, nil
}

// DefaultArchivePath returns the archive database location under the XDG
// data directory, used when the config sets none.
func DefaultArchivePath() (string, error) {
	path, err := xdg.DataFile("bskyposts/archive.db")
	if err != nil {
		return "", fmt.Errorf("resolve archive path: %w", err)
	}
	return path, nil
}
