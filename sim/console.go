// Console observer for terminal-based campaign monitoring. Prints
// per-country treasury/manpower on month starts with month-over-month
// deltas.

package sim

import (
	"fmt"
	"sync"
)

// ConsoleObserver displays country statistics to the terminal.
type ConsoleObserver struct {
	tags []Tag
	cfg  ObserverConfig

	mu            sync.Mutex
	monthTreasury map[Tag]float64
	monthManpower map[Tag]float64
}

// NewConsoleObserver creates a console observer for the given tags.
// An empty tag list observes every country in the snapshot.
func NewConsoleObserver(tags ...Tag) *ConsoleObserver {
	return &ConsoleObserver{
		tags:          tags,
		cfg:           ObserverConfig{Frequency: 0, NotifyOnMonthStart: true},
		monthTreasury: make(map[Tag]float64),
		monthManpower: make(map[Tag]float64),
	}
}

// WithFrequency also notifies every n ticks in addition to month starts.
func (o *ConsoleObserver) WithFrequency(n uint32) *ConsoleObserver {
	o.cfg.Frequency = n
	return o
}

// OnTick prints the monitored countries with deltas since last month.
func (o *ConsoleObserver) OnTick(snapshot *Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	tags := o.tags
	if len(tags) == 0 {
		tags = make([]Tag, 0, len(snapshot.Countries))
		for tag := range snapshot.Countries {
			tags = append(tags, tag)
		}
	}

	fmt.Printf("=== %s (tick %d) ===\n", snapshot.Date, snapshot.Tick)
	for _, tag := range tags {
		facts, ok := snapshot.Countries[tag]
		if !ok {
			continue
		}
		dt := facts.Treasury - o.monthTreasury[tag]
		dm := facts.Manpower - o.monthManpower[tag]
		fmt.Printf("%-4s treasury %8.1f (%+7.1f)  manpower %9.0f (%+7.0f)\n",
			tag, facts.Treasury, dt, facts.Manpower, dm)
		o.monthTreasury[tag] = facts.Treasury
		o.monthManpower[tag] = facts.Manpower
	}
	return nil
}

// OnTickWithInputs delegates to OnTick; the console does not use inputs.
func (o *ConsoleObserver) OnTickWithInputs(snapshot *Snapshot, _ []PlayerInputs) error {
	return o.OnTick(snapshot)
}

// NeedsInputs is false: the console only renders state.
func (o *ConsoleObserver) NeedsInputs() bool { return false }

// Name identifies the observer in logs.
func (o *ConsoleObserver) Name() string { return "ConsoleObserver" }

// Config gates the console to month starts (plus optional frequency).
func (o *ConsoleObserver) Config() ObserverConfig { return o.cfg }

// OnShutdown is a no-op; the console holds no resources.
func (o *ConsoleObserver) OnShutdown() {}
