package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type update struct {
	completed int64
	total     int64
	bytes     int64
}

// Bar renders pipeline progress. It counts files; the byte rate goes into the
// description. While the total is unknown it renders as a spinner.
type Bar struct {
	bar  *progressbar.ProgressBar
	ch   chan update
	done chan struct{}
	stop chan struct{}

	completed atomic.Int64
	bytes     atomic.Int64
	lastB     int64
	lastAt    time.Time
}

// IsTerminal reports whether w is a terminal that understands ANSI codes.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func New(w io.Writer) *Bar {
	b := &Bar{
		ch:     make(chan update, 16384),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		lastAt: time.Now(),
	}

	b.bar = progressbar.NewOptions64(
		-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionUseANSICodes(IsTerminal(w)),
		progressbar.OptionSetDescription("hashing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(120*time.Millisecond),
	)

	_ = b.bar.RenderBlank()
	go func() {
		defer close(b.done)
		known := false
		for u := range b.ch {
			if u.total >= 0 && !known {
				b.bar.ChangeMax64(u.total)
				known = true
			}
			_ = b.bar.Set64(u.completed)
		}
		_ = b.bar.Finish()
	}()

	go func() {
		t := time.NewTicker(1 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				b.updateDescription()
			case <-b.stop:
				return
			}
		}
	}()

	return b
}

// Report records that completed of total files (total < 0 when still
// unknown) and bytes have been processed.
func (b *Bar) Report(completed, total, bytes int64) {
	b.completed.Store(completed)
	b.bytes.Store(bytes)
	b.ch <- update{completed: completed, total: total, bytes: bytes}
}

func (b *Bar) Close() {
	close(b.stop)
	close(b.ch)
	<-b.done
}

func (b *Bar) updateDescription() {
	bytesHashed := b.bytes.Load()

	now := time.Now()
	dt := now.Sub(b.lastAt).Seconds()

	mbps := 0.0
	if dt > 0 {
		mbps = (float64(bytesHashed-b.lastB) / 1_000_000.0) / dt
	}

	b.lastB = bytesHashed
	b.lastAt = now

	b.bar.Describe(fmt.Sprintf("hashing %d files | %.1f MB | %.1f MB/s",
		b.completed.Load(), float64(bytesHashed)/1_000_000.0, mbps,
	))
}
