package pipeline

import (
	"sync/atomic"

	"ArchiveManifest/internal/index"
	"ArchiveManifest/internal/metrics"
)

type event struct {
	outcome  *Outcome
	walkErr  *index.WalkError
	walkDone bool
	total    int64
}

// collector is the single consumer of pipeline events. It alone touches the
// manifest writer and the progress sink.
type collector struct {
	out    LineWriter
	sinks  Sinks
	stats  *metrics.Stats
	cancel func()

	total    int64
	writeErr error
}

func newCollector(out LineWriter, sinks Sinks, stats *metrics.Stats, cancel func()) *collector {
	return &collector{out: out, sinks: sinks, stats: stats, cancel: cancel, total: -1}
}

func (c *collector) ingest(ev event) {
	switch {
	case ev.walkErr != nil:
		atomic.AddInt64(&c.stats.WalkErrors, 1)
		c.sinks.Errors.WalkFailed(ev.walkErr.Path, ev.walkErr.Err)
	case ev.walkDone:
		c.total = ev.total
		atomic.StoreInt64(&c.stats.Discovered, ev.total)
		c.stats.SetPhase(metrics.PhaseDraining)
		c.report()
	case ev.outcome != nil:
		c.outcome(*ev.outcome)
		c.report()
	}
}

func (c *collector) outcome(o Outcome) {
	if !o.OK() {
		atomic.AddInt64(&c.stats.Failed, 1)
		c.sinks.Errors.FileFailed(o.Record.Path, o.Kind, o.Err)
		return
	}

	atomic.AddInt64(&c.stats.Succeeded, 1)
	atomic.AddInt64(&c.stats.BytesProcessed, o.BytesRead)
	if o.BytesRead != o.Record.Size {
		atomic.AddInt64(&c.stats.ShortReads, 1)
		c.sinks.Errors.ShortRead(o.Record.Path, o.Record.Size, o.BytesRead)
	}
	c.sinks.Errors.FileHashed(o.Record.Path, o.Digest, o.BytesRead)

	if c.writeErr != nil {
		return
	}
	if err := c.out.Write(o.Digest, o.Record.Path); err != nil {
		c.writeErr = err
		c.cancel()
	}
}

func (c *collector) report() {
	if c.sinks.Progress == nil {
		return
	}
	c.sinks.Progress.Report(c.stats.Completed(), c.total, atomic.LoadInt64(&c.stats.BytesProcessed))
}

// finish flushes the writer once every event has been ingested.
func (c *collector) finish() error {
	if c.writeErr != nil {
		return c.writeErr
	}
	if err := c.out.Flush(); err != nil {
		c.writeErr = err
	}
	return c.writeErr
}
