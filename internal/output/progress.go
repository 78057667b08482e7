package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Progress shows a single status line for batch scans. A disabled Progress
// is a no-op.
type Progress struct {
	w         io.Writer
	total     int
	completed atomic.Int64
	vulnCount atomic.Int64
	errors    atomic.Int64
	started   atomic.Bool
	start     time.Time
	done      chan struct{}
	stopped   chan struct{}
	stopOnce  sync.Once
	mu        sync.Mutex
	enabled   bool
}

// NewProgress creates a progress tracker writing to w. Call Start() to
// begin display updates.
func NewProgress(w io.Writer, total int, enabled bool) *Progress {
	return &Progress{
		w:       w,
		total:   total,
		start:   time.Now(),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		enabled: enabled,
	}
}

// Start begins periodically redrawing the progress line.
func (p *Progress) Start() {
	if !p.enabled || !p.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(p.stopped)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.Redraw()
			case <-p.done:
				p.ClearLine()
				return
			}
		}
	}()
}

// Increment records a finished request.
func (p *Progress) Increment(vulnerable, failed bool) {
	p.completed.Add(1)
	if vulnerable {
		p.vulnCount.Add(1)
	}
	if failed {
		p.errors.Add(1)
	}
}

// ClearLine erases the progress line so regular output can be printed.
func (p *Progress) ClearLine() {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\033[K")
}

// Redraw prints the current progress line.
func (p *Progress) Redraw() {
	if !p.enabled {
		return
	}
	completed := p.completed.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}
	pct := float64(0)
	if p.total > 0 {
		pct = float64(completed) / float64(p.total) * 100
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\r\033[K[%3.0f%%] %d/%d | %.1f req/s | Vulnerable: %d | Errors: %d",
		pct, completed, p.total, rate, p.vulnCount.Load(), p.errors.Load())
}

// Stop ends the progress display and returns once the line is cleared.
func (p *Progress) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	if p.enabled && p.started.Load() {
		<-p.stopped
	}
}
