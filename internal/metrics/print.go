package metrics

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

type Snapshot struct {
	RunID          string
	Phase          Phase
	Cancelled      bool
	DurationMs     int64
	Discovered     int64
	Succeeded      int64
	Failed         int64
	WalkErrors     int64
	ShortReads     int64
	BytesProcessed int64
}

func (s *Stats) Snapshot() Snapshot {
	dur := s.Duration()

	return Snapshot{
		RunID:          s.RunID,
		Phase:          s.Phase(),
		Cancelled:      s.Cancelled(),
		DurationMs:     dur.Milliseconds(),
		Discovered:     atomic.LoadInt64(&s.Discovered),
		Succeeded:      atomic.LoadInt64(&s.Succeeded),
		Failed:         atomic.LoadInt64(&s.Failed),
		WalkErrors:     atomic.LoadInt64(&s.WalkErrors),
		ShortReads:     atomic.LoadInt64(&s.ShortReads),
		BytesProcessed: atomic.LoadInt64(&s.BytesProcessed),
	}
}

// ThroughputMBps is zero for runs shorter than a millisecond.
func (snap Snapshot) ThroughputMBps() float64 {
	if snap.DurationMs <= 0 {
		return 0
	}
	secs := float64(snap.DurationMs) / 1000.0
	return float64(snap.BytesProcessed) / secs / 1_000_000.0
}

// Line is the one-line summary printed at the end of every run.
func (snap Snapshot) Line() string {
	status := "complete"
	if snap.Cancelled {
		status = "cancelled"
	}
	return fmt.Sprintf("run %s: succeeded=%d failed=%d bytes_processed=%d",
		status, snap.Succeeded, snap.Failed, snap.BytesProcessed)
}

type row struct {
	label string
	value string
}

// Print renders the summary table.
func Print(w io.Writer, s *Stats) {
	snap := s.Snapshot()

	discovered := "unknown"
	if snap.Discovered >= 0 {
		discovered = fmt.Sprint(snap.Discovered)
	}

	rows := []row{
		{"run id", snap.RunID},
		{"duration_ms", fmt.Sprint(snap.DurationMs)},
		{"files discovered", discovered},
		{"files succeeded", fmt.Sprint(snap.Succeeded)},
		{"files failed", fmt.Sprint(snap.Failed)},
		{"walk errors", fmt.Sprint(snap.WalkErrors)},
		{"short reads", fmt.Sprint(snap.ShortReads)},
		{"bytes processed", fmt.Sprint(snap.BytesProcessed)},
		{"throughput_mb_per_sec", fmt.Sprintf("%.1f", snap.ThroughputMBps())},
	}
	if snap.Cancelled {
		rows = append(rows, row{"status", "cancelled"})
	}

	_, _ = fmt.Fprintln(w, renderTable(rows))
	_, _ = fmt.Fprintln(w, snap.Line())
}

func renderTable(rows []row) string {
	labelWidth, valueWidth := 0, 0
	for _, r := range rows {
		labelWidth = max(labelWidth, len(r.label))
		valueWidth = max(valueWidth, len(r.value))
	}

	hline := strings.Repeat("-", labelWidth+valueWidth+3)
	lines := []string{hline}
	for _, r := range rows {
		label := labelStyle.Width(labelWidth).Render(r.label)
		value := valueStyle.Render(r.value)
		lines = append(lines, label+" | "+value)
	}
	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8291"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E9F0")).Bold(true)
)
