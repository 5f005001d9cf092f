package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RunConfig is the YAML run configuration. Every field has a matching
// CLI flag; flags explicitly set on the command line override file
// values.
type RunConfig struct {
	Seed      int64    `yaml:"seed"`
	Horizon   uint64   `yaml:"horizon"`
	World     []string `yaml:"world,omitempty"`     // country tags in the campaign (empty = default set)
	Output    string   `yaml:"output,omitempty"`    // datagen destination; suffix selects the mode
	Countries []string `yaml:"countries,omitempty"` // tracked countries for data generation
	Exclude   []string `yaml:"exclude,omitempty"`   // excluded countries (wins over countries)
	Console   bool     `yaml:"console,omitempty"`
}

func defaultRunConfig() RunConfig {
	return RunConfig{Seed: 42, Horizon: 3650}
}

// loadRunConfig parses a YAML run config from path.
func loadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg := defaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Horizon == 0 {
		return nil, fmt.Errorf("%s: horizon must be positive", path)
	}
	return &cfg, nil
}

// applyFlags overrides file values with flags the user set explicitly.
func (c *RunConfig) applyFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("seed") {
		c.Seed = seed
	}
	if cmd.Flags().Changed("horizon") {
		c.Horizon = horizon
	}
	if cmd.Flags().Changed("datagen") {
		c.Output = datagenOut
	}
	if cmd.Flags().Changed("countries") {
		c.Countries = tracked
	}
	if cmd.Flags().Changed("exclude") {
		c.Exclude = excluded
	}
	if cmd.Flags().Changed("console") {
		c.Console = console
	}
}
