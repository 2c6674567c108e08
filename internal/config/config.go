// Package config loads the rgm YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/rgm/internal/gen"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

type SolverConfig struct {
	MaxPasses int  `yaml:"max_passes" json:"max_passes" validate:"min=1"`
	Strict    bool `yaml:"strict" json:"strict"`
	Verify    bool `yaml:"verify" json:"verify"`
}

type GeneratorConfig struct {
	Width  int   `yaml:"width" json:"width" validate:"min=2"`
	Height int   `yaml:"height" json:"height" validate:"min=2"`
	Robots int   `yaml:"robots" json:"robots" validate:"min=1"`
	Seed   int64 `yaml:"seed" json:"seed"`
}

// Params converts the section to generator parameters.
func (g GeneratorConfig) Params() gen.Params {
	return gen.Params{Width: g.Width, Height: g.Height, Robots: g.Robots, Seed: g.Seed}
}

type BenchConfig struct {
	Scenes  int    `yaml:"scenes" json:"scenes" validate:"min=1"`
	Workers int    `yaml:"workers" json:"workers" validate:"min=1,max=256"`
	Output  string `yaml:"output" json:"output"`
	Format  string `yaml:"format" json:"format" validate:"oneof=csv json"`
}

type TelemetryConfig struct {
	Traces      string `yaml:"traces" json:"traces" validate:"oneof=none stdout"`
	ServiceName string `yaml:"service_name" json:"service_name" validate:"required"`
}

// Config is the full configuration file.
type Config struct {
	Log       LogConfig       `yaml:"log" json:"log"`
	Solver    SolverConfig    `yaml:"solver" json:"solver"`
	Generator GeneratorConfig `yaml:"generator" json:"generator"`
	Bench     BenchConfig     `yaml:"bench" json:"bench"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: "info", Format: "text"},
		Solver:    SolverConfig{MaxPasses: 1},
		Generator: GeneratorConfig{Width: 16, Height: 16, Robots: 10, Seed: 1},
		Bench:     BenchConfig{Scenes: 100, Workers: 4, Format: "csv"},
		Telemetry: TelemetryConfig{Traces: "none", ServiceName: "rgm"},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns the defaults when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
