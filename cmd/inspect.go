package cmd

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/campaign-sim/campaign-sim/sim/datagen"
)

var (
	inspectCountry string // Filter displayed samples to one country
	inspectLimit   int    // Number of individual samples to display
)

// inspectCmd loads a training corpus and prints aggregate statistics,
// plus optionally a handful of individual samples.
var inspectCmd = &cobra.Command{
	Use:   "inspect <corpus>",
	Short: "Summarize a training-data file (.jsonl, .zip or .cpb.zip)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		corpus, err := datagen.ReadCorpus(args[0])
		if err != nil {
			logrus.Fatalf("reading corpus: %v", err)
		}

		printStats(&corpus.Stats)
		if inspectLimit > 0 {
			samples := corpus.Samples
			if inspectCountry != "" {
				samples = corpus.FilterCountry(inspectCountry)
			}
			printSamples(samples, inspectLimit)
		}
	},
}

// printStats displays aggregate corpus statistics.
func printStats(st *datagen.CorpusStats) {
	fmt.Println("=== Corpus Statistics ===")
	fmt.Printf("Total samples     : %d\n", st.TotalSamples)
	if st.TotalSamples == 0 {
		return
	}
	fmt.Printf("Tick range        : %d - %d\n", st.MinTick, st.MaxTick)
	fmt.Printf("Pass samples      : %d (%.1f%%)\n",
		st.PassSamples, percent(st.PassSamples, st.TotalSamples))

	years := make([]int32, 0, len(st.ByYear))
	for year := range st.ByYear {
		years = append(years, year)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	if len(years) > 0 {
		fmt.Printf("Year coverage     : %d - %d (%d years)\n",
			years[0], years[len(years)-1], len(years))
	}

	fmt.Println("\nSamples by country:")
	type bucket struct {
		tag   string
		count int
	}
	countries := make([]bucket, 0, len(st.ByCountry))
	for tag, count := range st.ByCountry {
		countries = append(countries, bucket{tag, count})
	}
	sort.Slice(countries, func(i, j int) bool {
		if countries[i].count != countries[j].count {
			return countries[i].count > countries[j].count
		}
		return countries[i].tag < countries[j].tag
	})
	for i, c := range countries {
		if i == 10 {
			fmt.Printf("  ... and %d more\n", len(countries)-10)
			break
		}
		fmt.Printf("  %-4s: %d\n", c.tag, c.count)
	}

	fmt.Println("\nAction distribution:")
	actions := make([]int32, 0, len(st.ActionDist))
	for action := range st.ActionDist {
		actions = append(actions, action)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	total := 0
	for _, count := range st.ActionDist {
		total += count
	}
	for _, action := range actions {
		label := fmt.Sprintf("Action[%d]", action)
		if action == datagen.ActionUnmatched {
			label = "Unmatched"
		}
		count := st.ActionDist[action]
		fmt.Printf("  %-12s: %d (%.1f%%)\n", label, count, percent(count, total))
	}
	if st.UnmatchedActions() > 0 {
		fmt.Printf("\nWarning: %d unmatched actions — the executed command was not in the offered action space\n",
			st.UnmatchedActions())
	}
}

// printSamples displays individual samples, most recent last.
func printSamples(samples []datagen.TrainingSample, limit int) {
	shown := min(limit, len(samples))
	fmt.Printf("\n=== Sample Viewer (%d of %d) ===\n", shown, len(samples))

	for _, s := range samples[:shown] {
		action := "Pass"
		if len(s.ChosenActions) > 0 {
			action = fmt.Sprintf("%d action(s): %v", len(s.ChosenActions), s.ChosenActions)
		}
		fmt.Printf("Tick %d: %s chose %s (%d available)\n",
			s.Tick, s.Country, action, len(s.AvailableCommands))
		for _, cmd := range s.ChosenCommands {
			fmt.Printf("  Command: %s\n", cmd)
		}
	}
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func init() {
	inspectCmd.Flags().StringVar(&inspectCountry, "country", "", "Show samples for this country only")
	inspectCmd.Flags().IntVar(&inspectLimit, "samples", 0, "Number of individual samples to display")
}
