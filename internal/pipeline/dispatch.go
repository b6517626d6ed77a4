package pipeline

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"strings"

	"ArchiveManifest/internal/digest"
	"ArchiveManifest/internal/index"
	"ArchiveManifest/internal/metrics"

	"golang.org/x/sync/errgroup"
)

const defaultBufferSize = 1 << 20

// Run hashes every regular file under the root of fsys with a fixed pool of
// opts.Threads workers and writes successful lines to out. Per-file failures
// are reported to sinks and counted in stats; they do not stop the run.
//
// Cancelling ctx stops the walk. Files already handed to a worker are still
// hashed and collected, so stats always satisfies
// Succeeded+Failed == Discovered. Run returns a *manifest.WriteError (or
// whatever out returned) if a line could not be persisted.
func Run(ctx context.Context, fsys fs.FS, opts Options, out LineWriter, sinks Sinks, stats *metrics.Stats) error {
	newHash, err := digest.Lookup(opts.Algorithm)
	if err != nil {
		return err
	}
	workers := opts.Threads
	if workers <= 0 {
		workers = 1
	}
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	if sinks.Errors == nil {
		sinks.Errors = nopSink{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan index.FileRecord)
	events := make(chan event, workers)

	stats.Start()

	var g errgroup.Group
	g.Go(func() error {
		defer close(records)
		n, err := index.Walk(runCtx, fsys, opts.Walk, records, func(we *index.WalkError) {
			events <- event{walkErr: we}
		})
		events <- event{walkDone: true, total: n}
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("walk: %w", err)
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			buf := make([]byte, bufSize)
			for rec := range records {
				o := hashOne(fsys, rec, newHash, buf)
				events <- event{outcome: &o}
			}
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(events)
	}()

	c := newCollector(out, sinks, stats, cancel)
	for ev := range events {
		c.ingest(ev)
	}
	werr := c.finish()
	gerr := <-waitErr

	if ctx.Err() != nil {
		stats.MarkCancelled()
	}
	stats.Stop()

	if werr != nil {
		return werr
	}
	return gerr
}

func hashOne(fsys fs.FS, rec index.FileRecord, newHash func() hash.Hash, buf []byte) Outcome {
	o := Outcome{Record: rec}
	if strings.ContainsAny(rec.Path, "\r\n") {
		o.Kind = digest.KindOther
		o.Err = ErrUnrepresentablePath
		return o
	}

	sum, n, err := digest.HashFile(fsys, rec.Path, newHash, buf)
	if err != nil {
		o.Kind = digest.Classify(err)
		o.Err = err
		return o
	}
	o.Digest = sum
	o.BytesRead = n
	return o
}
