// Output-mode selection. The destination is classified once, at
// construction, into a closed set of three variants; the tick path
// switches on the tag and nothing else.

package datagen

import (
	"archive/zip"
	"bufio"
	"compress/flate"
	"io"
	"os"
	"strings"
)

// modeKind tags the closed output-destination variant.
type modeKind int

const (
	// modeStream writes newline-delimited JSON synchronously.
	modeStream modeKind = iota
	// modeJSONArchive hands pre-serialized JSONL buffers to a worker
	// that builds a zip of per-year members.
	modeJSONArchive
	// modeBinaryArchive hands raw samples to a worker that builds a
	// zip of per-month binary batches.
	modeBinaryArchive
)

// classifyPath maps a destination path to its output mode:
// "*.cpb.zip" is a binary archive, any other "*.zip" a JSON archive,
// everything else a line-streamed file.
func classifyPath(path string) modeKind {
	switch {
	case strings.HasSuffix(path, ".cpb.zip"):
		return modeBinaryArchive
	case strings.HasSuffix(path, ".zip"):
		return modeJSONArchive
	default:
		return modeStream
	}
}

// outputMode is the tagged variant owned by the observer. Exactly one
// of the three sinks is non-nil, fixed at construction.
type outputMode struct {
	kind   modeKind
	stream *streamSink
	json   *jsonArchiveWriter
	binary *binaryArchiveWriter
}

// streamBufferSize matches a heavy tick: ~2.5KB per sample across a few
// hundred countries.
const streamBufferSize = 8 << 20

// streamSink is the synchronous line-streamed destination.
type streamSink struct {
	w      *bufio.Writer
	closer io.Closer // nil for stdout
}

func newStreamSink(w io.Writer, closer io.Closer) *streamSink {
	return &streamSink{w: bufio.NewWriterSize(w, streamBufferSize), closer: closer}
}

// deflateLevel is the compression level for all archive members.
const deflateLevel = 6

// newArchive opens the destination file and wraps it in a zip writer
// with level-6 deflate. The comment stamps the archive with its run
// identity for later provenance checks.
func newArchive(path, comment string) (*os.File, *zip.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, deflateLevel)
	})
	if comment != "" {
		if err := zw.SetComment(comment); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, zw, nil
}
