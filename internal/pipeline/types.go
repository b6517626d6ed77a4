package pipeline

import (
	"errors"

	"ArchiveManifest/internal/digest"
	"ArchiveManifest/internal/index"
)

var ErrUnrepresentablePath = errors.New("path contains a line break and cannot be written to the manifest")

// Outcome is the result of hashing one FileRecord. Err is nil on success.
type Outcome struct {
	Record    index.FileRecord
	Digest    string
	BytesRead int64
	Kind      digest.ErrorKind
	Err       error
}

func (o Outcome) OK() bool { return o.Err == nil }

type Options struct {
	Threads    int
	BufferSize int
	Algorithm  string
	Walk       index.Options
}

// ErrorSink receives per-file events as they happen.
type ErrorSink interface {
	WalkFailed(path string, err error)
	FileFailed(path string, kind digest.ErrorKind, err error)
	ShortRead(path string, want, got int64)
	FileHashed(path, sum string, n int64)
}

// ProgressSink receives a report after every outcome. total is negative while
// the walker is still enumerating.
type ProgressSink interface {
	Report(completed, total, bytes int64)
}

// LineWriter persists successful outcomes.
type LineWriter interface {
	Write(digest, path string) error
	Flush() error
}

type Sinks struct {
	Errors   ErrorSink
	Progress ProgressSink
}

type nopSink struct{}

func (nopSink) WalkFailed(string, error)                   {}
func (nopSink) FileFailed(string, digest.ErrorKind, error) {}
func (nopSink) ShortRead(string, int64, int64)             {}
func (nopSink) FileHashed(string, string, int64)           {}
