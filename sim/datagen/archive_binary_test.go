package datagen

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaign-sim/campaign-sim/sim"
)

func TestBinaryArchive_MemberPerMonth(t *testing.T) {
	// GIVEN ticks spanning months 11 and 12 of 1444
	path := filepath.Join(t.TempDir(), "corpus.cpb.zip")
	obs, err := File(path)
	require.NoError(t, err)

	tickAt(t, obs, 1, sim.Date{Year: 1444, Month: 11, Day: 12}, "SWE")
	tickAt(t, obs, 2, sim.Date{Year: 1444, Month: 11, Day: 13}, "SWE")
	tickAt(t, obs, 3, sim.Date{Year: 1444, Month: 12, Day: 1}, "SWE")
	obs.OnShutdown()

	// THEN the archive holds exactly one member per month, zero-padded
	assert.Equal(t, []string{"1444_11.cpb", "1444_12.cpb"}, memberNames(t, path))
}

func TestBinaryArchive_WindowsOnPeriodTransition(t *testing.T) {
	// GIVEN many ticks inside a single (year, month) period
	path := filepath.Join(t.TempDir(), "corpus.cpb.zip")
	obs, err := File(path)
	require.NoError(t, err)

	date := sim.Date{Year: 1444, Month: 11, Day: 12}
	for tick := uint64(1); tick <= 15; tick++ {
		tickAt(t, obs, tick, date, "SWE")
	}
	obs.OnShutdown()

	// THEN the whole period collapses into one member holding one
	// batch with every sample
	require.Equal(t, []string{"1444_11.cpb"}, memberNames(t, path))
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, 15, corpus.Stats.TotalSamples)
}

func TestBinaryArchive_ShutdownDurabilityRoundTrip(t *testing.T) {
	// GIVEN a run with passes and issued commands across a month break
	path := filepath.Join(t.TempDir(), "corpus.cpb.zip")
	obs, err := File(path)
	require.NoError(t, err)

	space := testSpace("SWE")
	date := sim.Date{Year: 1444, Month: 11, Day: 28}
	var want []TrainingSample
	for tick := uint64(1); tick <= 6; tick++ {
		in := testInputs("SWE")
		if tick%2 == 0 {
			in = testInputs("SWE", space[3])
		}
		in.VisibleState.Date = date
		require.NoError(t, obs.OnTickWithInputs(testSnapshot(tick, date), []sim.PlayerInputs{in}))

		actions := []int32{}
		if tick%2 == 0 {
			actions = []int32{3}
		}
		want = append(want, TrainingSample{
			Tick:              tick,
			Country:           "SWE",
			State:             *in.VisibleState,
			AvailableCommands: in.AvailableCommands,
			ChosenActions:     actions,
			ChosenCommands:    in.Commands,
		})
		date = date.Next()
	}
	obs.OnShutdown()

	// WHEN reading the archive back through the binary schema
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)

	// THEN samples round-trip field for field, in tick order
	require.Equal(t, want, corpus.Samples)
	assert.Equal(t, []string{"1444_11.cpb", "1444_12.cpb"}, memberNames(t, path))
}

func TestBinaryArchive_BackpressureBound(t *testing.T) {
	// GIVEN a queue with no worker draining it yet: the bounded queue
	// is the pipeline's only backpressure point
	path := filepath.Join(t.TempDir(), "corpus.cpb.zip")
	f, zw, err := newArchive(path, "")
	require.NoError(t, err)
	w := &binaryArchiveWriter{
		ch:   make(chan binaryBatch, binaryQueueDepth),
		done: make(chan struct{}),
		f:    f,
		zw:   zw,
	}

	in := testInputs("SWE")
	sampleAt := func(tick uint64) []TrainingSample {
		return []TrainingSample{{
			Tick:              tick,
			Country:           "SWE",
			State:             *in.VisibleState,
			AvailableCommands: in.AvailableCommands,
			ChosenActions:     []int32{},
		}}
	}

	// WHEN filling it: the first binaryQueueDepth sends return at once
	for i := 0; i < binaryQueueDepth; i++ {
		require.NoError(t, w.enqueue(1444, 11, sampleAt(uint64(i+1))))
	}

	// and one more producer stalls until a worker drains the queue
	sent := make(chan error, 1)
	go func() {
		sent <- w.enqueue(1444, 11, sampleAt(uint64(binaryQueueDepth+1)))
	}()
	select {
	case err := <-sent:
		t.Fatalf("enqueue past the bound returned while the queue was full: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	// THEN starting the worker releases the stalled producer
	go w.run()
	select {
	case err := <-sent:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stalled enqueue never returned after the worker started")
	}

	// and every blocked-then-released batch lands in the archive
	w.shutdown()
	corpus, err := ReadCorpus(path)
	require.NoError(t, err)
	assert.Equal(t, binaryQueueDepth+1, corpus.Stats.TotalSamples)
}

func TestBinaryArchive_EnqueueAfterWorkerExit(t *testing.T) {
	// GIVEN a writer whose worker has already drained and returned
	path := filepath.Join(t.TempDir(), "corpus.cpb.zip")
	w, err := newBinaryArchiveWriter(path, "")
	require.NoError(t, err)
	w.shutdown()

	// WHEN enqueueing afterwards, repeatedly: with both the queue and
	// the done channel closed, a racy send path would sometimes panic
	// or accept instead of erroring
	for i := 0; i < 200; i++ {
		// THEN every call sees a hard error instead of silent data loss
		require.ErrorIs(t, w.enqueue(1444, 11, nil), ErrWriterStopped)
	}
}

func TestBinaryArchive_EnqueueAfterWorkerDeath(t *testing.T) {
	// GIVEN a worker that died while its queue was still open (the
	// state the panic path leaves behind)
	w := &binaryArchiveWriter{
		ch:   make(chan binaryBatch, binaryQueueDepth),
		done: make(chan struct{}),
	}
	close(w.done)

	// WHEN enqueueing repeatedly: the buffered send case stays ready,
	// so a racy select would accept roughly half the batches
	for i := 0; i < 200; i++ {
		// THEN every send fails hard and nothing is buffered for a
		// worker that will never drain it
		require.ErrorIs(t, w.enqueue(1444, 11, nil), ErrWriterStopped)
		require.Zero(t, len(w.ch))
	}
}

func TestClassifyPath(t *testing.T) {
	cases := []struct {
		path string
		want modeKind
	}{
		{"training.cpb.zip", modeBinaryArchive},
		{"data/run_42.cpb.zip", modeBinaryArchive},
		{"training.zip", modeJSONArchive},
		{"training.jsonl", modeStream},
		{"training.txt", modeStream},
		{"training", modeStream},
	}
	for _, tc := range cases {
		if got := classifyPath(tc.path); got != tc.want {
			t.Errorf("classifyPath(%q): got %d, want %d", tc.path, got, tc.want)
		}
	}
}
