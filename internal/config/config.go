// Package config loads engine configuration from casebook.toml. A missing
// configuration file is not an error: defaults apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultOverrideFile is the project-relative override grammar location.
const DefaultOverrideFile = "casebook.grammar"

// Config is the engine configuration surface.
type Config struct {
	// GrammarOverride is the override rule source path. Relative paths
	// resolve against the project root.
	GrammarOverride string `toml:"grammar_override"`

	// Theme is an optional theme JSON path.
	Theme string `toml:"theme"`

	Watch WatchConfig `toml:"watch"`
	Log   LogConfig   `toml:"log"`
}

// WatchConfig controls the override-grammar file watcher.
type WatchConfig struct {
	// Enabled turns live grammar reload on.
	Enabled bool `toml:"enabled"`

	// DebounceMS coalesces rapid writes (default 200).
	DebounceMS int `toml:"debounce_ms"`
}

// LogConfig mirrors log.Options.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GrammarOverride: DefaultOverrideFile,
		Watch:           WatchConfig{Enabled: true, DebounceMS: 200},
	}
}

// FileSystem abstracts file reads for testing.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Load reads the configuration at path. A missing file yields defaults.
func Load(path string) (Config, error) {
	return LoadFS(OSFS{}, path)
}

// LoadFS reads the configuration through the given file system.
func LoadFS(fs FileSystem, path string) (Config, error) {
	cfg := Default()
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = 200
	}
	return cfg, nil
}

// ResolveOverride returns the override grammar path resolved against the
// project root.
func (c Config) ResolveOverride(root string) string {
	if c.GrammarOverride == "" {
		return ""
	}
	if filepath.IsAbs(c.GrammarOverride) {
		return c.GrammarOverride
	}
	return filepath.Join(root, c.GrammarOverride)
}
