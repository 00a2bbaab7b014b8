package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"

	"gopkg.in/yaml.v3"
)

// PlanConfig describes one planning run: which days, which constraints,
// and how much to sample from the supplementary pools.
type PlanConfig struct {
	Days                []string `yaml:"days"`
	planner.Constraints `yaml:",inline"`
	SampleSizes         shopping.SampleSizes `yaml:"sample_sizes"`
	// Seed pins the random draw. Nil means pick a fresh seed per run.
	Seed *uint64 `yaml:"seed"`
}

// DefaultPlanConfig plans Monday to Wednesday with weekly category
// uniqueness and no chef constraints.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Days:        slices.Clone(planner.DefaultDays),
		Constraints: planner.DefaultConstraints(),
		SampleSizes: shopping.DefaultSampleSizes(),
	}
}

// LoadPlanConfig reads a YAML plan config on top of the defaults.
// An empty path returns the defaults.
func LoadPlanConfig(path string) (PlanConfig, error) {
	cfg := DefaultPlanConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PlanConfig{}, fmt.Errorf("failed to read plan config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PlanConfig{}, fmt.Errorf("failed to parse plan config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return PlanConfig{}, fmt.Errorf("plan config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the plan config for consistency.
func (p PlanConfig) Validate() error {
	if err := p.Constraints.Validate(p.Days); err != nil {
		return err
	}
	s := p.SampleSizes
	if s.FreshVegetables < 0 || s.FrozenVegetables < 0 || s.Toppings < 0 {
		return errors.New("sample sizes must not be negative")
	}
	return nil
}
