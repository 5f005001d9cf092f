package datagen

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/campaign-sim/campaign-sim/sim"
)

// streamObserver returns a stream-mode observer capturing output in buf.
func streamObserver() (*DataGenObserver, *bytes.Buffer) {
	var buf bytes.Buffer
	return newStream(newStreamSink(&buf, nil)), &buf
}

func flush(o *DataGenObserver) {
	o.OnShutdown()
}

func TestStream_PassSample(t *testing.T) {
	// GIVEN one country SWE issuing no commands
	obs, buf := streamObserver()
	inputs := []sim.PlayerInputs{testInputs("SWE")}

	// WHEN ticking and flushing
	if err := obs.OnTickWithInputs(testSnapshot(0, sim.CampaignStart), inputs); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	flush(obs)

	// THEN one line records the pass
	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("output lines: got %q", out)
	}
	if !strings.Contains(out, `"country":"SWE"`) {
		t.Errorf("missing country field: %q", out)
	}
	if !strings.Contains(out, `"chosen_actions":[]`) {
		t.Errorf("pass must serialize an empty action list: %q", out)
	}
	if strings.Contains(out, `"chosen_commands"`) {
		t.Errorf("empty chosen_commands must be omitted: %q", out)
	}
}

func TestStream_ChosenActionIndex(t *testing.T) {
	// GIVEN an issued command equal to available_commands[3] of a
	// 5-element space
	obs, buf := streamObserver()
	space := testSpace("SWE")
	if len(space) != 5 {
		t.Fatalf("test space must have 5 commands, has %d", len(space))
	}
	inputs := []sim.PlayerInputs{testInputs("SWE", space[3])}

	// WHEN ticking and flushing
	if err := obs.OnTickWithInputs(testSnapshot(12, sim.CampaignStart), inputs); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	flush(obs)

	// THEN the recorded index is 3
	if !strings.Contains(buf.String(), `"chosen_actions":[3]`) {
		t.Errorf("output: %q, want chosen_actions [3]", buf.String())
	}
}

func TestStream_EmptyBatchWritesNothing(t *testing.T) {
	// GIVEN a tick where every input is filtered out
	obs, buf := streamObserver()
	obs.ExcludeCountries("SWE")
	inputs := []sim.PlayerInputs{testInputs("SWE")}

	// WHEN ticking and flushing
	if err := obs.OnTickWithInputs(testSnapshot(1, sim.CampaignStart), inputs); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	flush(obs)

	// THEN nothing is written
	if buf.Len() != 0 {
		t.Errorf("output: got %q, want none", buf.String())
	}
}

func TestStream_JSONRoundTrip(t *testing.T) {
	// GIVEN a tick with issued commands
	obs, buf := streamObserver()
	space := testSpace("FRA")
	in := testInputs("FRA", space[1], space[4])
	if err := obs.OnTickWithInputs(testSnapshot(30, sim.CampaignStart), []sim.PlayerInputs{in}); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	flush(obs)

	// WHEN deserializing the emitted line
	var got TrainingSample
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// THEN the sample round-trips field for field
	if got.Tick != 30 || got.Country != "FRA" {
		t.Errorf("identity fields: got tick=%d country=%s", got.Tick, got.Country)
	}
	if len(got.AvailableCommands) != len(space) {
		t.Errorf("available commands: got %d, want %d", len(got.AvailableCommands), len(space))
	}
	for i, cmd := range got.AvailableCommands {
		if cmd != space[i] {
			t.Errorf("available command %d: got %v, want %v", i, cmd, space[i])
		}
	}
	if len(got.ChosenActions) != 2 || got.ChosenActions[0] != 1 || got.ChosenActions[1] != 4 {
		t.Errorf("chosen actions: got %v, want [1 4]", got.ChosenActions)
	}
	if got.State.Observer != "FRA" || got.State.Date != in.VisibleState.Date {
		t.Errorf("state did not round-trip: %+v", got.State)
	}
}

func TestObserver_Contract(t *testing.T) {
	obs, _ := streamObserver()

	if !obs.NeedsInputs() {
		t.Error("datagen observer must need inputs")
	}
	if obs.Name() != "DataGenObserver" {
		t.Errorf("name: got %q", obs.Name())
	}
	cfg := obs.Config()
	if cfg.Frequency != 1 || !cfg.NotifyOnMonthStart {
		t.Errorf("config: got %+v, want every tick", cfg)
	}
}

func TestObserver_ShutdownIsIdempotent(t *testing.T) {
	obs, _ := streamObserver()
	obs.OnShutdown()
	obs.OnShutdown() // second call must be a no-op, not a double close
}

// The observer is a sim.Observer.
var _ sim.Observer = (*DataGenObserver)(nil)
