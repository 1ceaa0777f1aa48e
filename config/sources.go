package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// SourceConfig describes one photo source entry of the sources file.
type SourceConfig struct {
	Type   string `toml:"type"`
	Name   string `toml:"name"`
	URL    string `toml:"url"`
	Query  string `toml:"query"`
	Path   string `toml:"path"`
	Active bool   `toml:"active"`
}

type sourcesFile struct {
	Sources []SourceConfig `toml:"source"`
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// LoadSources parses the sources file at path. A missing file falls back to
// the given default document so a fresh install still shows something.
func LoadSources(path string, fallback []byte) ([]SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read sources: %w", err)
		}
		data = fallback
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document and returns only the active entries.
func ParseSources(data []byte) ([]SourceConfig, error) {
	var raw sourcesFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	active := make([]SourceConfig, 0, len(raw.Sources))
	for i, s := range raw.Sources {
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Type == "" {
			return nil, fmt.Errorf("source %d: missing type", i)
		}
		if !s.Active {
			continue
		}
		if s.Name == "" {
			s.Name = s.Type
		}
		s.Path = expandHome(s.Path)
		active = append(active, s)
	}
	return active, nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~/"))
}
