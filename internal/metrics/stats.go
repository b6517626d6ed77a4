package metrics

import (
	"sync/atomic"
	"time"
)

// Phase is the run-level state.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDraining
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stats is the run summary. Counters are written by the pipeline's collector
// and may be read concurrently through the atomic package.
type Stats struct {
	RunID string

	// Discovered is -1 until the walker has finished.
	Discovered     int64
	Succeeded      int64
	Failed         int64
	WalkErrors     int64
	ShortReads     int64
	BytesProcessed int64

	phase     int32
	cancelled int32

	Started  time.Time
	Finished time.Time
}

func New(runID string) *Stats {
	return &Stats{RunID: runID, Discovered: -1}
}

func (s *Stats) Start() {
	s.Started = time.Now()
	s.SetPhase(PhaseRunning)
}

func (s *Stats) Stop() {
	s.Finished = time.Now()
	s.SetPhase(PhaseDone)
}

func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}

func (s *Stats) SetPhase(p Phase) { atomic.StoreInt32(&s.phase, int32(p)) }
func (s *Stats) Phase() Phase     { return Phase(atomic.LoadInt32(&s.phase)) }

func (s *Stats) MarkCancelled()   { atomic.StoreInt32(&s.cancelled, 1) }
func (s *Stats) Cancelled() bool  { return atomic.LoadInt32(&s.cancelled) == 1 }
func (s *Stats) Completed() int64 { return atomic.LoadInt64(&s.Succeeded) + atomic.LoadInt64(&s.Failed) }
