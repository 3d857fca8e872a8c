// Package config loads the chapterize configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Output contains configuration for where and how files are written.
type Output struct {
	Dir string `toml:"dir"`
}

// Extract contains configuration for chapter extraction behavior.
type Extract struct {
	Subchapters    bool   `toml:"subchapters"`
	Furigana       string `toml:"furigana"` // "omit" or "inline"
	SplitOversized bool   `toml:"split_oversized"`
	ChunkSize      int    `toml:"chunk_size"`
	ExportCover    bool   `toml:"export_cover"`
}

// Bulk contains configuration for directory-of-books processing.
type Bulk struct {
	Recursive bool `toml:"recursive"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for chapterize.
type Config struct {
	Output  Output  `toml:"output"`
	Extract Extract `toml:"extract"`
	Bulk    Bulk    `toml:"bulk"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration used when no file overrides it.
func Default() Config {
	return Config{
		Output: Output{Dir: "."},
		Extract: Extract{
			Furigana:  "omit",
			ChunkSize: 15000,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load locates and parses a configuration file, layering it over the
// defaults. An empty path triggers the search order: ./chapterize.toml, then
// ~/.config/chapterize/config.toml. A missing file is not an error; the
// defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Validate checks value ranges that would otherwise fail deep inside the
// extraction pipeline.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Extract.Furigana)) {
	case "", "omit", "inline":
	default:
		return fmt.Errorf("config: invalid furigana mode %q (want omit or inline)", c.Extract.Furigana)
	}
	if c.Extract.ChunkSize < 0 {
		return fmt.Errorf("config: chunk_size must not be negative")
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("chapterize.toml")
	if err != nil {
		return "", false, err
	}

	userPath, err := expandPath("~/.config/chapterize/config.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}

	return userPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
