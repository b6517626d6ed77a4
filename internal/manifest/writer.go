// Package manifest writes "<digest> <path>" lines to the output file.
//
// Lines are staged in memory and handed to the underlying file in whole-line
// batches, so an interrupted run leaves a file that ends on a line boundary.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path"
)

// DefaultBatchSize is the number of buffered bytes that triggers a flush.
const DefaultBatchSize = 64 << 10

type Options struct {
	// Prefix is prepended to every path as "<Prefix>/<path>" when non-empty.
	Prefix    string
	BatchSize int
}

// WriteError is returned once the output can no longer be written. It is
// sticky: every later call returns the same error.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type syncer interface {
	Sync() error
}

// Writer is not safe for concurrent use; the pipeline's collector is its only
// caller.
type Writer struct {
	name   string
	w      io.Writer
	closer io.Closer
	opts   Options

	batch []byte
	lines int64
	err   error
}

// Create truncates or creates the manifest at name.
func Create(name string, opts Options) (*Writer, error) {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644) // #nosec G302 G304
	if err != nil {
		return nil, err
	}
	w := NewWriter(f, opts)
	w.name = name
	w.closer = f
	return w, nil
}

// NewWriter wraps w. Close will not close w.
func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Writer{
		name:  "<stream>",
		w:     w,
		opts:  opts,
		batch: make([]byte, 0, opts.BatchSize),
	}
}

// Line formats a single manifest line including the trailing newline.
func Line(digest, p string) string {
	return digest + " " + p + "\n"
}

func (w *Writer) display(p string) string {
	if w.opts.Prefix == "" {
		return p
	}
	return path.Join(w.opts.Prefix, p)
}

// Write stages one line.
func (w *Writer) Write(digest, p string) error {
	if w.err != nil {
		return w.err
	}

	line := Line(digest, w.display(p))
	if len(w.batch)+len(line) > w.opts.BatchSize {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	w.batch = append(w.batch, line...)
	w.lines++
	return nil
}

// Flush hands every staged line to the underlying writer in one call.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.batch) == 0 {
		return nil
	}

	n, err := w.w.Write(w.batch)
	if err == nil && n < len(w.batch) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = &WriteError{Path: w.name, Err: err}
		return w.err
	}
	w.batch = w.batch[:0]
	return nil
}

// Lines reports how many lines have been accepted.
func (w *Writer) Lines() int64 { return w.lines }

// Close flushes, syncs and closes the file opened by Create.
func (w *Writer) Close() error {
	ferr := w.Flush()
	if w.closer == nil {
		return ferr
	}

	if s, ok := w.closer.(syncer); ok && ferr == nil {
		if err := s.Sync(); err != nil {
			ferr = &WriteError{Path: w.name, Err: err}
		}
	}
	if err := w.closer.Close(); err != nil && ferr == nil {
		ferr = &WriteError{Path: w.name, Err: err}
	}
	w.closer = nil
	return ferr
}
