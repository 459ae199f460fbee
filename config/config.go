// Package config loads and validates the TOML-encoded search
// configuration.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/iancoleman/strcase"
	"go.uber.org/multierr"
)

// Config mirrors every recognized option group. Optional early-stop/
// dropout values are represented as pointers so "present with value" is
// distinguishable from "absent", matching the TOML encoding of an omitted
// key as a nil pointer.
type Config struct {
	// population
	PopulationSize int `toml:"population_size"`
	NumberIslands  int `toml:"number_islands"`
	MaxGenomes     int `toml:"max_genomes"`

	// training
	BPIterations      int      `toml:"bp_iterations"`
	LearningRate      float64  `toml:"learning_rate"`
	LowThreshold      *float64 `toml:"low_threshold"`
	HighThreshold     *float64 `toml:"high_threshold"`
	DropoutProbability *float64 `toml:"dropout_probability"`

	// recurrence
	RecDelayMin                 int     `toml:"rec_delay_min"`
	RecDelayMax                 int     `toml:"rec_delay_max"`
	RecSamplingPopulation       string  `toml:"rec_sampling_population"` // "global" | "island"
	RecSamplingDistribution     string  `toml:"rec_sampling_distribution"` // "uniform" | "histogram" | "normal" | "pheromone"
	RecDepthPheromoneDecayRate  float64 `toml:"rec_depth_pheromone_decay_rate"`
	RecDepthPheromoneBaseline   float64 `toml:"rec_depth_pheromone_baseline"`

	// workers
	NumberThreads int `toml:"number_threads"`

	// I/O
	OutputDirectory string `toml:"output_directory"`
	OutputFilename  string `toml:"output_filename"`

	// island management
	NumGenomesCheckOnIsland int    `toml:"num_genomes_check_on_island"`
	CheckOnIslandMethod     string `toml:"check_on_island_method"`
}

// Load parses and validates the TOML file at path, rejecting any option
// it does not recognize.
func Load(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config: %s: unrecognized options %v", path, undecoded)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every configured bound and aggregates every violation
// found rather than stopping at the first, so a misconfigured run fails
// fast with a complete list of what to fix.
func (c *Config) Validate() error {
	// Authors write these three enum-valued options in whatever case is
	// handy ("Global", "rec-sampling-island", ...); normalize to snake
	// case before matching so the comparisons below aren't case-fragile.
	c.RecSamplingPopulation = strcase.ToSnake(c.RecSamplingPopulation)
	c.RecSamplingDistribution = strcase.ToSnake(c.RecSamplingDistribution)
	c.CheckOnIslandMethod = strcase.ToSnake(c.CheckOnIslandMethod)

	var errs error
	if c.PopulationSize < 1 {
		errs = multierr.Append(errs, fmt.Errorf("population_size must be >= 1, got %d", c.PopulationSize))
	}
	if c.NumberIslands < 1 {
		errs = multierr.Append(errs, fmt.Errorf("number_islands must be >= 1, got %d", c.NumberIslands))
	}
	if c.MaxGenomes < 1 {
		errs = multierr.Append(errs, fmt.Errorf("max_genomes must be >= 1, got %d", c.MaxGenomes))
	}
	if c.BPIterations < 1 {
		errs = multierr.Append(errs, fmt.Errorf("bp_iterations must be >= 1, got %d", c.BPIterations))
	}
	if c.LearningRate <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("learning_rate must be > 0, got %f", c.LearningRate))
	}
	if c.DropoutProbability != nil && (*c.DropoutProbability < 0 || *c.DropoutProbability >= 1) {
		errs = multierr.Append(errs, fmt.Errorf("dropout_probability must be in [0, 1), got %f", *c.DropoutProbability))
	}
	if c.RecDelayMax < c.RecDelayMin {
		errs = multierr.Append(errs, fmt.Errorf("rec_delay_max (%d) must be >= rec_delay_min (%d)", c.RecDelayMax, c.RecDelayMin))
	}
	if c.RecDelayMin < 1 {
		errs = multierr.Append(errs, fmt.Errorf("rec_delay_min must be >= 1, got %d", c.RecDelayMin))
	}
	switch c.RecSamplingPopulation {
	case "global", "island":
	default:
		errs = multierr.Append(errs, fmt.Errorf("rec_sampling_population must be 'global' or 'island', got %q", c.RecSamplingPopulation))
	}
	switch c.RecSamplingDistribution {
	case "uniform", "histogram", "normal", "pheromone":
	default:
		errs = multierr.Append(errs, fmt.Errorf("rec_sampling_distribution must be one of uniform/histogram/normal/pheromone, got %q", c.RecSamplingDistribution))
	}
	if c.NumberThreads < 1 {
		errs = multierr.Append(errs, fmt.Errorf("number_threads must be >= 1, got %d", c.NumberThreads))
	}
	if c.NumGenomesCheckOnIsland < 0 {
		errs = multierr.Append(errs, fmt.Errorf("num_genomes_check_on_island must be >= 0, got %d", c.NumGenomesCheckOnIsland))
	}
	return errs
}
