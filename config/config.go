// config/config.go
// Copyright(c) 2023-2026 luftrom contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one input document: the path to its text snapshot, the
// dialect tag saying how its headers are laid out, and the public URL
// carried through to output provenance.
type Source struct {
	Path    string `yaml:"path"`
	Dialect string `yaml:"dialect"`
	Href    string `yaml:"href"`

	// NOTAM feeds parse through a different path than AIP documents.
	NOTAM bool `yaml:"notam,omitempty"`
}

type Output struct {
	GeoJSON   string `yaml:"geojson,omitempty"`
	OpenAirFt string `yaml:"openair_ft,omitempty"`
	OpenAirM  string `yaml:"openair_m,omitempty"`
	Table     string `yaml:"table,omitempty"`
}

type Config struct {
	Sources []Source `yaml:"sources"`

	// Border polylines, by the name boundary descriptions refer to them
	// with; values are paths to GeoJSON files.
	Borders map[string]string `yaml:"borders,omitempty"`

	// Angular resolution in degrees for sampling arcs and circles.
	DegreesPerStep float32 `yaml:"degrees_per_step,omitempty"`

	Output   Output `yaml:"output"`
	LogLevel string `yaml:"log_level,omitempty"`
	LogDir   string `yaml:"log_dir,omitempty"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal config: %w", path, err)
	}

	if len(c.Sources) == 0 {
		return nil, fmt.Errorf("%s: no sources configured", path)
	}
	for i, s := range c.Sources {
		if s.Path == "" {
			return nil, fmt.Errorf("%s: sources[%d]: missing path", path, i)
		}
		if !s.NOTAM && s.Dialect == "" {
			return nil, fmt.Errorf("%s: sources[%d]: missing dialect", path, i)
		}
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return &c, nil
}
