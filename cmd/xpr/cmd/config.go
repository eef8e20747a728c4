// config.go — xpr.toml discovery and loading.
//
// The CLI reads an optional TOML config: the nearest xpr.toml walking upward
// from the working directory, falling back to ~/.xpr.toml, falling back to
// defaults. --config overrides the search.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration.
type Config struct {
	REPL REPLConfig     `toml:"repl"`
	Vars map[string]any `toml:"vars"` // preset #variables for repl and eval
}

// REPLConfig tunes the interactive session.
type REPLConfig struct {
	Prompt      string `toml:"prompt"`
	Cont        string `toml:"cont"`
	HistoryFile string `toml:"history_file"`
	Color       bool   `toml:"color"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      "xpr> ",
			Cont:        "...> ",
			HistoryFile: ".xpr_history",
			Color:       true,
		},
	}
}

// FindAndLoad resolves the config per the search order. A missing config is
// not an error; a present-but-broken one is.
func FindAndLoad(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if wd, err := os.Getwd(); err == nil {
		if path := findConfigFile(wd); path != "" {
			return Load(path)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".xpr.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Load reads one TOML file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile walks upward from dir looking for xpr.toml.
func findConfigFile(dir string) string {
	for {
		path := filepath.Join(dir, "xpr.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
