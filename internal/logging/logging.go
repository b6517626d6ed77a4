// Package logging builds the run logger and the error sink the pipeline
// reports per-file problems to.
package logging

import (
	"io"
	"log/slog"

	"ArchiveManifest/internal/digest"
)

// New returns a text logger on w. Verbose enables per-file debug lines.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Sink writes one structured line per event as it happens.
type Sink struct {
	log *slog.Logger
}

func NewSink(log *slog.Logger) *Sink {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{log: log}
}

func (s *Sink) WalkFailed(path string, err error) {
	s.log.Error("walk failed", "path", path, "kind", "walk_error", "err", err)
}

func (s *Sink) FileFailed(path string, kind digest.ErrorKind, err error) {
	s.log.Error("hash failed", "path", path, "kind", string(kind), "err", err)
}

func (s *Sink) ShortRead(path string, want, got int64) {
	s.log.Warn("short read", "path", path, "size", want, "read", got)
}

func (s *Sink) FileHashed(path, sum string, n int64) {
	s.log.Debug("hashed", "path", path, "digest", sum, "bytes", n)
}
