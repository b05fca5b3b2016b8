package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/irahardianto/stopgate/internal/engine/formatter"
	"github.com/irahardianto/stopgate/internal/engine/gate"
)

// Progress renders gate execution status to an io.Writer (typically stderr)
// while a run is in flight. It implements gate.Sink.
type Progress struct {
	w          io.Writer
	suppressed bool
	total      int
	mu         sync.Mutex
	results    []formatter.GateOutcome
}

// NewProgress creates a new progress tracker writing to w.
// If suppressed is true, no output is produced.
func NewProgress(w io.Writer, suppressed bool, totalGates int) *Progress {
	p := &Progress{
		w:          w,
		suppressed: suppressed,
		total:      totalGates,
	}

	if !suppressed && totalGates > 0 {
		fmt.Fprintf(w, "⏳ Running %d gate(s)...\n", totalGates)
	}

	return p
}

// OnStart is called when a gate begins execution.
func (p *Progress) OnStart(name string) {
	if p.suppressed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "  ⏳ %s\n", name)
}

// OnOutput echoes a chunk of gate output as it arrives. Chunks from the two
// streams of a gate may interleave.
func (p *Progress) OnOutput(_ string, _ gate.Stream, chunk []byte) {
	if p.suppressed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = p.w.Write(chunk)
}

// OnComplete is called when a gate finishes or is skipped.
func (p *Progress) OnComplete(o formatter.GateOutcome) {
	if p.suppressed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.results = append(p.results, o)

	icon := formatter.GlyphPass
	switch {
	case o.Skipped:
		icon = formatter.GlyphSkip
	case !o.Passed:
		icon = formatter.GlyphFail
	}

	fmt.Fprintf(p.w, "  %s %s  %s\n", icon, o.Name, formatDuration(time.Duration(o.DurationMs)*time.Millisecond))
}

// Finish prints a tally line after all gates complete.
func (p *Progress) Finish() {
	if p.suppressed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	passed, failed, skipped := 0, 0, 0
	for _, r := range p.results {
		switch {
		case r.Skipped:
			skipped++
		case !r.Passed:
			failed++
		default:
			passed++
		}
	}

	fmt.Fprintf(p.w, "\n")
	if failed == 0 && skipped == 0 && passed == p.total {
		fmt.Fprintf(p.w, "✅ All %d gate(s) passed\n", passed)
	} else {
		fmt.Fprintf(p.w, "Results: %d of %d passed, %d failed, %d skipped\n", passed, p.total, failed, skipped)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
