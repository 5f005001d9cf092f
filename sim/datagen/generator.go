// Sample generation: filters per-country inputs and maps them into
// TrainingSamples. Pure and synchronous; all I/O lives in the output
// modes.

package datagen

import (
	"github.com/sirupsen/logrus"

	"github.com/campaign-sim/campaign-sim/sim"
)

// generator filters snapshot + per-country inputs into TrainingSamples.
type generator struct {
	// tracked restricts output to these countries when non-empty.
	tracked map[sim.Tag]struct{}
	// excluded always wins over tracked.
	excluded map[sim.Tag]struct{}
}

func (g *generator) track(tags []sim.Tag) {
	if g.tracked == nil {
		g.tracked = make(map[sim.Tag]struct{}, len(tags))
	}
	for _, t := range tags {
		g.tracked[t] = struct{}{}
	}
}

func (g *generator) exclude(tags []sim.Tag) {
	if g.excluded == nil {
		g.excluded = make(map[sim.Tag]struct{}, len(tags))
	}
	for _, t := range tags {
		g.excluded[t] = struct{}{}
	}
}

// buildSamples produces one sample per input that passes filtering.
// The returned slice may be empty; callers do nothing further then.
//
// Filter order: exclusion wins, then the tracked-set gate, then the
// input must carry a precomputed visible state (absence means the
// country was not evaluated upstream this tick).
func (g *generator) buildSamples(snapshot *sim.Snapshot, inputs []sim.PlayerInputs) []TrainingSample {
	samples := make([]TrainingSample, 0, len(inputs))

	for i := range inputs {
		input := &inputs[i]

		if _, skip := g.excluded[input.Country]; skip {
			continue
		}
		if len(g.tracked) > 0 {
			if _, ok := g.tracked[input.Country]; !ok {
				continue
			}
		}
		if input.VisibleState == nil {
			continue
		}

		actions := make([]int32, 0, len(input.Commands))
		for _, cmd := range input.Commands {
			idx := sim.IndexOf(input.AvailableCommands, cmd)
			if idx < 0 {
				// Executed command missing from the offered action
				// space: upstream computed the space at a different
				// point than the decision. Record the sentinel.
				logrus.Debugf("%s: command %s not in available list (%d options) at tick %d",
					input.Country, cmd, len(input.AvailableCommands), snapshot.Tick)
				actions = append(actions, ActionUnmatched)
			} else {
				actions = append(actions, int32(idx))
			}
		}

		samples = append(samples, TrainingSample{
			Tick:              snapshot.Tick,
			Country:           input.Country,
			State:             *input.VisibleState,
			AvailableCommands: input.AvailableCommands,
			ChosenActions:     actions,
			ChosenCommands:    input.Commands,
		})
	}
	return samples
}
