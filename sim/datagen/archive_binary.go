// Binary archive worker. Unlike the JSON path, samples cross the queue
// raw: serialization through the binary schema happens once per
// (year, month) period on the worker, so many small ticks cost one
// encode. The pre-serialization form is the larger one, which is why
// this queue is bounded — the producer stalls once five period-batches
// are outstanding, capping worst-case resident memory.

package datagen

import (
	"archive/zip"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/campaign-sim/campaign-sim/sim/cpb"
)

// binaryQueueDepth is the backpressure bound, in period-batches.
const binaryQueueDepth = 5

// binaryBatch is one tick's raw samples plus their calendar period.
type binaryBatch struct {
	year    int32
	month   uint8
	samples []TrainingSample
}

// binaryArchiveWriter owns one binary-archive destination. Fields below
// ch and done are touched only by the worker goroutine.
type binaryArchiveWriter struct {
	ch   chan binaryBatch
	done chan struct{}
	err  error // set by the worker before done closes

	f          *os.File
	zw         *zip.Writer
	year       int32
	month      uint8
	havePeriod bool
	records    []cpb.Record
}

// newBinaryArchiveWriter opens the destination and spawns the worker.
func newBinaryArchiveWriter(path, comment string) (*binaryArchiveWriter, error) {
	f, zw, err := newArchive(path, comment)
	if err != nil {
		return nil, err
	}
	w := &binaryArchiveWriter{
		ch:   make(chan binaryBatch, binaryQueueDepth),
		done: make(chan struct{}),
		f:    f,
		zw:   zw,
	}
	go w.run()
	return w, nil
}

// enqueue hands one tick's raw samples to the worker, blocking while
// binaryQueueDepth batches are already outstanding. This is the
// pipeline's only backpressure point. Returns ErrWriterStopped if the
// worker has exited.
func (w *binaryArchiveWriter) enqueue(year int32, month uint8, samples []TrainingSample) error {
	// Check for a stopped worker before attempting the send. A two-way
	// select alone picks at random when both cases are ready, so a dead
	// (or closed) queue could still accept the batch.
	select {
	case <-w.done:
		return ErrWriterStopped
	default:
	}
	select {
	case w.ch <- binaryBatch{year: year, month: month, samples: samples}:
		return nil
	case <-w.done:
		return ErrWriterStopped
	}
}

// shutdown closes the queue and waits for the worker to drain and
// finalize. Worker failures are logged, not returned.
func (w *binaryArchiveWriter) shutdown() {
	close(w.ch)
	<-w.done
	if w.err != nil {
		logrus.Errorf("binary archive writer: %v", w.err)
	}
}

// run is the worker loop. A panic is captured into w.err so the
// producer observes a stopped worker rather than a crashed process;
// after the panic the goroutine keeps discarding raced-in batches until
// shutdown closes the queue, so nothing ever sits buffered behind a
// dead worker.
func (w *binaryArchiveWriter) run() {
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
			logrus.Errorf("binary archive writer: %v", err)
		}
	}
	if err := w.finalize(); err != nil {
		w.err = err
	}
}

// append accumulates a batch, flushing the previous period's member
// first when the (year, month) period advances.
func (w *binaryArchiveWriter) append(batch binaryBatch) error {
	if w.havePeriod && (batch.year != w.year || batch.month != w.month) {
		if err := w.flushPeriod(); err != nil {
			return err
		}
	}
	w.year = batch.year
	w.month = batch.month
	w.havePeriod = true
	for i := range batch.samples {
		w.records = append(w.records, batch.samples[i].record())
	}
	return nil
}

// flushPeriod serializes the accumulated month in one pass and writes
// it as one archive member.
func (w *binaryArchiveWriter) flushPeriod() error {
	if len(w.records) == 0 {
		return nil
	}
	data, err := cpb.EncodeBatch(w.year, w.month, w.records)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d_%02d.cpb", w.year, w.month)
	member, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("starting member %s: %w", name, err)
	}
	if _, err := member.Write(data); err != nil {
		return fmt.Errorf("writing member %s: %w", name, err)
	}
	logrus.Debugf("wrote %s to archive (%d records, %d bytes uncompressed)",
		name, len(w.records), len(data))
	w.records = w.records[:0]
	return nil
}

// finalize flushes the residual period, writes the central directory
// and closes the file.
func (w *binaryArchiveWriter) finalize() error {
	if err := w.flushPeriod(); err != nil {
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
	logrus.Info("binary archive finalized")
	return nil
}
