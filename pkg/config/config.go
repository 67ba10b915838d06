// Package config defines the simulation configuration, its defaults, YAML
// loading, and validation.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/mendloop/pkg/errors"
)

// SimulationConfig controls one simulation run. The zero value is not
// usable; start from Default or LoadFile.
type SimulationConfig struct {
	// Runs is the number of simulated requests to process.
	Runs int `yaml:"runs" validate:"min=1"`

	// Seed drives the request generator; a fixed seed replays the
	// identical request stream.
	Seed int64 `yaml:"seed"`

	// ShowPatches caps the sample patches section of the report.
	ShowPatches int `yaml:"show_patches" validate:"min=0"`

	// Verbose enables step-by-step traces for the first TraceRuns
	// requests.
	Verbose   bool `yaml:"verbose"`
	TraceRuns int  `yaml:"trace_runs" validate:"min=0"`

	// NoiseRate is the probability that any single detection step or
	// restriction check misfires.
	NoiseRate float64 `yaml:"noise_rate" validate:"gte=0,lte=1"`

	// GoldenSize caps the built-in golden evaluation set.
	GoldenSize int `yaml:"golden_size" validate:"min=0"`

	// EmbeddingDims is the hashing projection width.
	EmbeddingDims int `yaml:"embedding_dims" validate:"min=8"`
}

// Default returns the standard simulation configuration.
func Default() *SimulationConfig {
	return &SimulationConfig{
		Runs:          500,
		Seed:          42,
		ShowPatches:   5,
		Verbose:       false,
		TraceRuns:     5,
		NoiseRate:     0.03,
		GoldenSize:    40,
		EmbeddingDims: 128,
	}
}

// LoadFile reads a YAML configuration file over the defaults: fields the
// file omits keep their default values.
func LoadFile(path string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path})
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
