package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader finds and reads the config file.
type Loader struct {
	Version      string // "dev" builds also look for ./.flowmarkrc
	OverridePath string // Set at link time to pin a location
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{Version: version, OverridePath: overridePath}
}

// Candidates lists the places searched, most specific first.
func (l *Loader) Candidates() []string {
	var out []string
	if l.OverridePath != "" {
		out = append(out, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			out = append(out, filepath.Join(wd, ".flowmarkrc"))
		}
	}
	if dir := configDir(); dir != "" {
		out = append(out, filepath.Join(dir, "config.rc"), filepath.Join(dir, "flowmark.rc"))
	}
	return out
}

// GetConfigPath returns the first existing candidate, or "" when there is
// none.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.Candidates() {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// SavePath is where a config should be written: the file already in use,
// else config.rc in the user config directory.
func (l *Loader) SavePath() (string, error) {
	if p := l.GetConfigPath(); p != "" {
		return p, nil
	}
	dir := configDir()
	if dir == "" {
		return "", fmt.Errorf("no user config directory")
	}
	return filepath.Join(dir, "config.rc"), nil
}

// Load reads the config file, returning defaults when there is none.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// configDir is $XDG_CONFIG_HOME/flowmark, falling back to ~/.config/flowmark.
func configDir() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "flowmark")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flowmark")
}
