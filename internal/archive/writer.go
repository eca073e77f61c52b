package archive

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/tacogips/stackzip/internal/debug"
	"github.com/tacogips/stackzip/internal/template/model"
)

// CompressionLevel is applied to every entry written.
const CompressionLevel = flate.BestCompression

// fallbackModified is used for entries without a timestamp so that output
// stays byte-identical across runs.
var fallbackModified = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// State is a position in the writer lifecycle:
//
//	Idle -> Open -> Appending* -> Finalizing -> Closed
//
// Failed is reachable from Open, Appending and Finalizing. Closed and
// Failed are terminal.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateAppending
	StateFinalizing
	StateClosed
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateOpen:
		return "Open"
	case StateAppending:
		return "Appending"
	case StateFinalizing:
		return "Finalizing"
	case StateClosed:
		return "Closed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}

type flusher interface {
	Flush()
}

// countingWriter tracks bytes delivered to the sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Writer produces a zip archive on a sink, flushing after every entry so the
// archive streams instead of being buffered whole.
type Writer struct {
	sink    *countingWriter
	flush   flusher
	noFlush bool
	zw      *zip.Writer
	ctx     context.Context
	state   State
	err     error
	entries int
}

// Option configures a Writer.
type Option func(*Writer)

// WithoutFlush disables per-entry flushing; used when the sink is a buffer.
func WithoutFlush() Option {
	return func(w *Writer) {
		w.noFlush = true
	}
}

// NewWriter creates an Idle writer for sink. If sink has a Flush method
// (such as http.ResponseWriter) it is called after every entry.
func NewWriter(sink io.Writer, opts ...Option) *Writer {
	w := &Writer{
		sink:  &countingWriter{w: sink},
		state: StateIdle,
	}
	if f, ok := sink.(flusher); ok {
		w.flush = f
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open moves the writer from Idle to Open. ctx is consulted before every
// write; once it is done the writer fails instead of producing more output.
func (w *Writer) Open(ctx context.Context) error {
	if w.state != StateIdle {
		return w.stateError("open")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	w.ctx = ctx
	w.zw = zip.NewWriter(w.sink)
	w.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, CompressionLevel)
	})
	w.state = StateOpen
	debug.Debug("[archive] Writer opened")
	return nil
}

// AppendFile appends an assembled file.
func (w *Writer) AppendFile(f model.AssembledFile) error {
	return w.Append(f.OutputPath, f.Content, f.Modified, f.Mode)
}

// Append writes one file entry. A zero modified time is replaced with a
// fixed epoch; a zero mode becomes 0644.
func (w *Writer) Append(name string, content []byte, modified time.Time, mode fs.FileMode) error {
	if w.state != StateOpen && w.state != StateAppending {
		return w.stateError("append")
	}
	if err := validateEntryName(name); err != nil {
		return err
	}
	if err := w.ctx.Err(); err != nil {
		return w.fail("write canceled", name, err)
	}
	w.state = StateAppending

	if modified.IsZero() {
		modified = fallbackModified
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	hdr := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified.UTC(),
	}
	hdr.SetMode(perm)

	fw, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return w.fail("failed to create entry", name, errors.Wrap(err, "zip header"))
	}
	if _, err := fw.Write(content); err != nil {
		return w.fail("failed to write entry", name, errors.Wrap(err, "deflate"))
	}
	if !w.noFlush {
		if err := w.zw.Flush(); err != nil {
			return w.fail("failed to flush entry", name, errors.Wrap(err, "flush"))
		}
		if w.flush != nil {
			w.flush.Flush()
		}
	}
	w.entries++
	return nil
}

// Finalize writes the central directory and moves to Closed.
func (w *Writer) Finalize() error {
	if w.state != StateOpen && w.state != StateAppending {
		return w.stateError("finalize")
	}
	if err := w.ctx.Err(); err != nil {
		return w.fail("finalize canceled", "", err)
	}
	w.state = StateFinalizing
	if err := w.zw.Close(); err != nil {
		return w.fail("failed to finalize archive", "", errors.Wrap(err, "central directory"))
	}
	if w.flush != nil && !w.noFlush {
		w.flush.Flush()
	}
	w.state = StateClosed
	debug.Debug("[archive] Writer closed: %d entries, %d bytes", w.entries, w.sink.n)
	return nil
}

// Abort moves an open writer to Failed without writing the central
// directory, so the partial output is recognizably incomplete.
func (w *Writer) Abort(cause error) error {
	if w.state != StateOpen && w.state != StateAppending && w.state != StateFinalizing {
		return w.stateError("abort")
	}
	if cause == nil {
		cause = errors.New("aborted")
	}
	w.fail("archive aborted", "", cause)
	return nil
}

// State returns the current lifecycle state.
func (w *Writer) State() State {
	return w.state
}

// Err returns the error that moved the writer to Failed, if any.
func (w *Writer) Err() error {
	return w.err
}

// Written returns the number of bytes delivered to the sink.
func (w *Writer) Written() int64 {
	return w.sink.n
}

// Entries returns the number of entries appended.
func (w *Writer) Entries() int {
	return w.entries
}

func (w *Writer) fail(message, entry string, cause error) error {
	w.state = StateFailed
	w.err = newArchiveError(ArchiveWriteFailed, message, entry, cause)
	debug.Debug("[archive] Writer failed: %v", w.err)
	return w.err
}

func (w *Writer) stateError(op string) error {
	return newArchiveError(ArchiveStateInvalid, "cannot "+op+" in state "+w.state.String(), "", w.err)
}

func validateEntryName(name string) error {
	switch {
	case name == "":
		return newArchiveError(ArchiveEntryInvalid, "entry name is empty", name, nil)
	case strings.HasPrefix(name, "/"), strings.HasSuffix(name, "/"):
		return newArchiveError(ArchiveEntryInvalid, "entry name must be a relative file path", name, nil)
	case path.Clean(name) != name, name == "..", strings.HasPrefix(name, "../"):
		return newArchiveError(ArchiveEntryInvalid, "entry name is not clean", name, nil)
	}
	return nil
}
