// JSON archive worker. The tick path serializes samples to JSONL bytes
// up front (fanning out across cores) and enqueues {year, buffer}; the
// worker owns the open zip exclusively, concatenates buffers per year,
// and writes one deflate member per year on year transitions and at
// shutdown.

package datagen

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// jsonQueueDepth bounds outstanding year-batches. The source design used
// an unbounded queue; a deep bound keeps the producer from ever stalling
// in practice while capping memory if the worker wedges.
const jsonQueueDepth = 256

// jsonBatch is one tick's pre-serialized samples.
type jsonBatch struct {
	year int32
	buf  []byte
}

// jsonArchiveWriter owns one JSON-archive destination. Fields below ch
// and done are touched only by the worker goroutine.
type jsonArchiveWriter struct {
	ch   chan jsonBatch
	done chan struct{}
	err  error // set by the worker before done closes

	f        *os.File
	zw       *zip.Writer
	year     int32
	haveYear bool
	buf      bytes.Buffer
}

// newJSONArchiveWriter opens the destination and spawns the worker.
// Open failure is reported here, synchronously, never from the worker.
func newJSONArchiveWriter(path, comment string) (*jsonArchiveWriter, error) {
	f, zw, err := newArchive(path, comment)
	if err != nil {
		return nil, err
	}
	w := &jsonArchiveWriter{
		ch:   make(chan jsonBatch, jsonQueueDepth),
		done: make(chan struct{}),
		f:    f,
		zw:   zw,
	}
	go w.run()
	return w, nil
}

// enqueue hands one tick's bytes to the worker. Returns ErrWriterStopped
// if the worker has exited: every later send would silently lose data,
// so the caller must see a hard error instead.
func (w *jsonArchiveWriter) enqueue(year int32, buf []byte) error {
	// Check for a stopped worker before attempting the send. A two-way
	// select alone picks at random when both cases are ready, so a dead
	// (or closed) queue could still accept the batch.
	select {
	case <-w.done:
		return ErrWriterStopped
	default:
	}
	select {
	case w.ch <- jsonBatch{year: year, buf: buf}:
		return nil
	case <-w.done:
		return ErrWriterStopped
	}
}

// shutdown closes the queue (the FIFO guarantees every batch enqueued
// before this call is processed first) and waits for the worker to
// finalize the archive. Worker failures are logged, not returned; the
// shutdown contract is infallible for the caller.
func (w *jsonArchiveWriter) shutdown() {
	close(w.ch)
	<-w.done
	if w.err != nil {
		logrus.Errorf("json archive writer: %v", w.err)
	}
}

// run is the worker loop: drain batches, flush per-year members, then
// finalize. A panic is captured into w.err so the producer observes a
// stopped worker rather than a crashed process; after the panic the
// goroutine keeps discarding raced-in batches until shutdown closes the
// queue, so nothing ever sits buffered behind a dead worker.
func (w *jsonArchiveWriter) run() {
	defer func() {
		if r := recover(); r != nil {
			w.err = fmt.Errorf("worker panicked: %v", r)
			close(w.done)
			for range w.ch {
			}
			return
		}
		close(w.done)
	}()

	for batch := range w.ch {
		if err := w.append(batch); err != nil {
			logrus.Errorf("json archive writer: %v", err)
		}
	}
	if err := w.finalize(); err != nil {
		w.err = err
	}
}

// append accumulates a batch, flushing the previous year's member first
// when the year advances.
func (w *jsonArchiveWriter) append(batch jsonBatch) error {
	if w.haveYear && batch.year != w.year {
		if err := w.flushYear(); err != nil {
			return err
		}
	}
	w.year = batch.year
	w.haveYear = true
	w.buf.Write(batch.buf)
	return nil
}

// flushYear writes the buffered year as one archive member.
func (w *jsonArchiveWriter) flushYear() error {
	if w.buf.Len() == 0 {
		return nil
	}
	name := fmt.Sprintf("%d.jsonl", w.year)
	member, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("starting member %s: %w", name, err)
	}
	if _, err := member.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("writing member %s: %w", name, err)
	}
	logrus.Debugf("wrote %s to archive (%d bytes uncompressed)", name, w.buf.Len())
	w.buf.Reset()
	return nil
}

// finalize flushes the residual year, writes the central directory and
// closes the file.
func (w *jsonArchiveWriter) finalize() error {
	if err := w.flushYear(); err != nil {
		w.zw.Close()
		w.f.Close()
		return err
	}
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("closing archive file: %w", err)
	}
	logrus.Info("json archive finalized")
	return nil
}

// marshalSamples serializes samples to one JSONL buffer, fanning the
// per-sample work out across cores and concatenating in input order so
// the result is deterministic. The group fully joins before returning;
// no concurrency escapes the tick call. A sample that fails to
// serialize is logged and degrades to an empty payload without
// aborting the batch.
func marshalSamples(samples []TrainingSample) []byte {
	lines := make([][]byte, len(samples))

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range samples {
		g.Go(func() error {
			b, err := json.Marshal(&samples[i])
			if err != nil {
				logrus.Errorf("serializing sample for %s at tick %d: %v",
					samples[i].Country, samples[i].Tick, err)
				return nil
			}
			lines[i] = b
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures degrade per sample

	var buf bytes.Buffer
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
