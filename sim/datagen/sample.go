// Package datagen exports training corpora for offline ML consumption.
//
// A DataGenObserver receives per-tick snapshots and per-country decision
// records from the campaign driver, filters and batches them into
// TrainingSamples, and durably persists them in one of three modes
// chosen by the destination path:
//
//   - "*.cpb.zip"  binary archive, one compact batch per (year, month)
//   - "*.zip"      JSON archive, one JSONL member per year
//   - anything else (or stdout): synchronous newline-delimited JSON
//
// Archive modes run a single background worker goroutine that owns the
// open archive; the tick path only hands batches over a FIFO queue.
package datagen

import (
	"github.com/campaign-sim/campaign-sim/sim"
	"github.com/campaign-sim/campaign-sim/sim/cpb"
)

// ActionUnmatched marks a chosen action whose command had no equal match
// in the action space. It signals an upstream desync between what was
// executed and what was offered as legal, not a failure here; consumers
// can measure desync rate by counting it.
const ActionUnmatched = -2

// TrainingSample is one country's decision record for one tick.
//
// ChosenActions indexes into AvailableCommands for every command issued
// this tick; empty means the country passed. ChosenActions and
// ChosenCommands are always the same length.
type TrainingSample struct {
	Tick              uint64           `json:"tick"`
	Country           sim.Tag          `json:"country"`
	State             sim.VisibleState `json:"state"`
	AvailableCommands []sim.Command    `json:"available_commands"`
	ChosenActions     []int32          `json:"chosen_actions"`
	ChosenCommands    []sim.Command    `json:"chosen_commands,omitempty"`
}

// record converts to the binary schema form.
func (s *TrainingSample) record() cpb.Record {
	return cpb.Record{
		Tick:              s.Tick,
		Country:           string(s.Country),
		State:             s.State,
		AvailableCommands: s.AvailableCommands,
		ChosenActions:     s.ChosenActions,
		ChosenCommands:    s.ChosenCommands,
	}
}

// DecodeBatch parses one serialized binary batch back into samples.
func DecodeBatch(data []byte) ([]TrainingSample, error) {
	batch, err := cpb.DecodeBatch(data)
	if err != nil {
		return nil, err
	}
	samples := make([]TrainingSample, 0, len(batch.Records))
	for _, r := range batch.Records {
		samples = append(samples, sampleFromRecord(r))
	}
	return samples, nil
}

// sampleFromRecord converts back from the binary schema form.
func sampleFromRecord(r cpb.Record) TrainingSample {
	s := TrainingSample{
		Tick:              r.Tick,
		Country:           sim.Tag(r.Country),
		State:             r.State,
		AvailableCommands: r.AvailableCommands,
		ChosenActions:     r.ChosenActions,
		ChosenCommands:    r.ChosenCommands,
	}
	if s.ChosenActions == nil {
		s.ChosenActions = []int32{}
	}
	return s
}
