// Package config holds the analysis defaults that can be overridden from a
// YAML file and then from command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/graph-analysis/pkg/graph"
	"github.com/dd0wney/graph-analysis/pkg/validation"
)

// Config is the full set of tunable analysis settings
type Config struct {
	Seed       int64            `yaml:"seed"`
	LogLevel   string           `yaml:"log_level" validate:"loglevel"`
	Robustness RobustnessConfig `yaml:"robustness"`
	Homophily  HomophilyConfig  `yaml:"homophily"`
	Balance    BalanceConfig    `yaml:"balance"`
	Plot       PlotConfig       `yaml:"plot"`
	Temporal   TemporalConfig   `yaml:"temporal"`
}

// RobustnessConfig controls repeated failure trials
type RobustnessConfig struct {
	Trials int `yaml:"trials" validate:"gte=1,lte=100000"`
}

// HomophilyConfig controls the homophily t-test
type HomophilyConfig struct {
	Attribute string  `yaml:"attribute" validate:"required,attr"`
	Alpha     float64 `yaml:"alpha" validate:"gt=0,lt=1"`
}

// BalanceConfig names the edge sign attribute
type BalanceConfig struct {
	SignAttribute string `yaml:"sign_attribute" validate:"required,attr"`
}

// PlotConfig sizes plots and the layout that feeds them
type PlotConfig struct {
	Width          float64 `yaml:"width" validate:"gt=0,lte=100"`  // inches
	Height         float64 `yaml:"height" validate:"gt=0,lte=100"` // inches
	LayoutIters    int     `yaml:"layout_iterations" validate:"gte=0,lte=100000"`
	MaxLabels      int     `yaml:"max_labels" validate:"gte=0"`
	ColorAttribute string  `yaml:"color_attribute" validate:"required,attr"`
}

// TemporalConfig controls the replay animation
type TemporalConfig struct {
	FrameDelay int `yaml:"frame_delay" validate:"gte=1,lte=6000"` // 1/100s
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Robustness: RobustnessConfig{Trials: 30},
		Homophily:  HomophilyConfig{Attribute: "color", Alpha: 0.05},
		Balance:    BalanceConfig{SignAttribute: "sign"},
		Plot: PlotConfig{
			Width:          8,
			Height:         6,
			LayoutIters:    100,
			MaxLabels:      60,
			ColorAttribute: "color",
		},
		Temporal: TemporalConfig{FrameDelay: 50},
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &graph.FileError{Op: "read", Path: path, Err: err}
	}
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML from r onto the defaults
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// Validate checks every field against its limits
func (c *Config) Validate() error {
	return validation.ValidateStruct(c)
}
