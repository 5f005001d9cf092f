package cmd

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/campaign-sim/campaign-sim/sim"
	"github.com/campaign-sim/campaign-sim/sim/datagen"
)

var (
	// CLI flags for the campaign run
	seed       int64    // Seed for deterministic campaign generation
	horizon    uint64   // Total simulation time (in ticks)
	logLevel   string   // Log verbosity level
	configPath string   // Optional YAML run config
	datagenOut string   // Training data destination (suffix selects the mode)
	tracked    []string // Countries to generate data for (empty = all)
	excluded   []string // Countries to always skip
	console    bool     // Attach the console observer
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "campaign-sim",
	Short: "Discrete-tick grand-strategy campaign simulator with ML training-data export",
}

// runCmd executes a synthetic campaign using parameters from CLI flags,
// wiring the requested observers into the tick loop.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a campaign",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := defaultRunConfig()
		if configPath != "" {
			loaded, err := loadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("unable to read run config: %v", err)
			}
			cfg = *loaded
		}
		cfg.applyFlags(cmd)

		runID := uuid.NewString()
		registry := sim.NewRegistry()

		if cfg.Output != "" {
			observer, err := datagen.File(cfg.Output)
			if err != nil {
				logrus.Fatalf("opening datagen output %s: %v", cfg.Output, err)
			}
			if len(cfg.Countries) > 0 {
				observer.WithCountries(toTags(cfg.Countries)...)
			}
			if len(cfg.Exclude) > 0 {
				observer.ExcludeCountries(toTags(cfg.Exclude)...)
			}
			registry.Register(observer)
		}
		if cfg.Console {
			registry.Register(sim.NewConsoleObserver(toTags(cfg.Countries)...))
		}
		if registry.Len() == 0 {
			logrus.Warn("no observers configured; the run will produce no output")
		}

		logrus.Infof("starting campaign run %s: seed=%d horizon=%d ticks", runID, cfg.Seed, cfg.Horizon)
		startTime := time.Now()

		campaign := sim.NewCampaign(sim.CampaignConfig{
			Seed:    cfg.Seed,
			Horizon: cfg.Horizon,
			Tags:    toTags(cfg.World),
			RunID:   runID,
		}, registry)
		if err := campaign.Run(); err != nil {
			logrus.Fatalf("campaign failed: %v", err)
		}

		logrus.Infof("campaign finished in %s", time.Since(startTime).Round(time.Millisecond))
	},
}

func toTags(names []string) []sim.Tag {
	tags := make([]sim.Tag, 0, len(names))
	for _, n := range names {
		tags = append(tags, sim.Tag(n))
	}
	return tags
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Campaign seed")
	runCmd.Flags().Uint64Var(&horizon, "horizon", 3650, "Number of ticks (days) to simulate")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run config (flags override file values)")
	runCmd.Flags().StringVar(&datagenOut, "datagen", "",
		`Write training data to file. Use ".cpb.zip" for binary (recommended), ".zip" for JSON archive, or ".jsonl" for streaming`)
	runCmd.Flags().StringSliceVar(&tracked, "countries", nil, "Countries to generate data for (empty = all)")
	runCmd.Flags().StringSliceVar(&excluded, "exclude", nil, "Countries to exclude from data generation")
	runCmd.Flags().BoolVar(&console, "console", false, "Print country statistics on month starts")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(inspectCmd)
}
