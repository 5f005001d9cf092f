// DataGenObserver: the observer façade. Implements the sim.Observer
// contract, owns the selected output mode, and routes generated samples
// to it — synchronously for streams, over a FIFO queue for archives.

package datagen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campaign-sim/campaign-sim/sim"
)

// ErrWriterStopped reports a send to an archive worker that has already
// exited. All subsequent sends would silently lose data, so the tick
// fails hard and lets the driver decide whether to keep simulating.
var ErrWriterStopped = errors.New("archive writer stopped")

// DataGenObserver generates training data for ML models.
//
// Construct with File or Stdout; optionally narrow the corpus with
// WithCountries / ExcludeCountries before the first tick. The observer
// always needs per-country inputs.
type DataGenObserver struct {
	mu       sync.Mutex
	mode     outputMode
	shutdown bool

	gen generator
	cfg sim.ObserverConfig
}

// Stdout creates an observer streaming JSONL to standard output.
func Stdout() *DataGenObserver {
	return newStream(newStreamSink(os.Stdout, nil))
}

// File creates an observer writing to path. The output mode is chosen
// once, from the suffix: ".cpb.zip" for a binary archive, ".zip" for a
// JSON archive, anything else for a line-streamed file. Archive modes
// spawn their single worker goroutine here and return immediately; a
// destination that cannot be opened fails here, synchronously.
func File(path string) (*DataGenObserver, error) {
	runID := uuid.NewString()
	comment := fmt.Sprintf("campaign-sim training corpus, run %s", runID)

	switch classifyPath(path) {
	case modeBinaryArchive:
		w, err := newBinaryArchiveWriter(path, comment)
		if err != nil {
			return nil, err
		}
		logrus.Infof("datagen: binary archive mode, path=%s run=%s", path, runID)
		return newObserver(outputMode{kind: modeBinaryArchive, binary: w}), nil

	case modeJSONArchive:
		w, err := newJSONArchiveWriter(path, comment)
		if err != nil {
			return nil, err
		}
		logrus.Infof("datagen: json archive mode, path=%s run=%s", path, runID)
		return newObserver(outputMode{kind: modeJSONArchive, json: w}), nil

	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		logrus.Infof("datagen: stream mode, path=%s run=%s", path, runID)
		return newStream(newStreamSink(f, f)), nil
	}
}

// newStream creates an observer in stream mode over an arbitrary sink.
func newStream(s *streamSink) *DataGenObserver {
	return newObserver(outputMode{kind: modeStream, stream: s})
}

func newObserver(mode outputMode) *DataGenObserver {
	return &DataGenObserver{
		mode: mode,
		cfg:  sim.ObserverConfig{Frequency: 1, NotifyOnMonthStart: true},
	}
}

// WithCountries restricts output to the given countries.
func (o *DataGenObserver) WithCountries(tags ...sim.Tag) *DataGenObserver {
	o.gen.track(tags)
	return o
}

// ExcludeCountries drops the given countries from output. Exclusion
// wins over WithCountries.
func (o *DataGenObserver) ExcludeCountries(tags ...sim.Tag) *DataGenObserver {
	o.gen.exclude(tags)
	return o
}

// OnTick delegates to OnTickWithInputs; without inputs there is nothing
// to sample.
func (o *DataGenObserver) OnTick(snapshot *sim.Snapshot) error {
	return o.OnTickWithInputs(snapshot, nil)
}

// OnTickWithInputs filters this tick's inputs into samples and routes
// them to the active output mode.
func (o *DataGenObserver) OnTickWithInputs(snapshot *sim.Snapshot, inputs []sim.PlayerInputs) error {
	samples := o.gen.buildSamples(snapshot, inputs)
	if len(samples) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.mode.kind {
	case modeStream:
		return o.writeStream(samples)

	case modeJSONArchive:
		// Serialize on the caller side (fanning out across cores) so
		// the queued message is compact and the worker only appends.
		buf := marshalSamples(samples)
		if err := o.mode.json.enqueue(snapshot.Date.Year, buf); err != nil {
			return fmt.Errorf("tick %d: %w", snapshot.Tick, err)
		}
		return nil

	case modeBinaryArchive:
		// Raw samples cross the queue; the worker serializes whole
		// months at once. This send blocks when the backpressure
		// bound is reached.
		if err := o.mode.binary.enqueue(snapshot.Date.Year, snapshot.Date.Month, samples); err != nil {
			return fmt.Errorf("tick %d: %w", snapshot.Tick, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown output mode %d", o.mode.kind)
	}
}

// writeStream serializes every sample as one JSON line, synchronously.
// A sample that fails to serialize is logged and skipped; the batch
// continues.
func (o *DataGenObserver) writeStream(samples []TrainingSample) error {
	for i := range samples {
		line, err := json.Marshal(&samples[i])
		if err != nil {
			logrus.Errorf("serializing sample for %s at tick %d: %v",
				samples[i].Country, samples[i].Tick, err)
			continue
		}
		if _, err := o.mode.stream.w.Write(line); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
		if err := o.mode.stream.w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing sample: %w", err)
		}
	}
	return nil
}

// NeedsInputs is always true: samples are built from per-country inputs.
func (o *DataGenObserver) NeedsInputs() bool { return true }

// Name identifies the observer in logs.
func (o *DataGenObserver) Name() string { return "DataGenObserver" }

// Config notifies every tick.
func (o *DataGenObserver) Config() sim.ObserverConfig { return o.cfg }

// OnShutdown flushes and finalizes the output. For archive modes this
// enqueues the terminal signal behind every previously queued batch and
// blocks until the worker's loop returns; a worker that panicked is
// logged, never re-raised. Idempotent; further ticks after shutdown are
// a caller-contract violation.
func (o *DataGenObserver) OnShutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.shutdown {
		return
	}
	o.shutdown = true

	switch o.mode.kind {
	case modeStream:
		if err := o.mode.stream.w.Flush(); err != nil {
			logrus.Errorf("datagen: flushing stream: %v", err)
		}
		if o.mode.stream.closer != nil {
			if err := o.mode.stream.closer.Close(); err != nil {
				logrus.Errorf("datagen: closing stream: %v", err)
			}
		}
	case modeJSONArchive:
		o.mode.json.shutdown()
	case modeBinaryArchive:
		o.mode.binary.shutdown()
	}
}
