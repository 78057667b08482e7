package scanner

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Throttler provides optional adaptive rate limiting. Google answers
// quota bursts with 429 (and occasionally 503); on those the delay doubles,
// and it halves back toward the base once responses are healthy again.
// A nil Throttler imposes no delay.
type Throttler struct {
	mu          sync.Mutex
	base        time.Duration
	current     time.Duration
	consecutive int
	adaptive    bool
	logger      *slog.Logger
}

// NewThrottler creates a throttler with a fixed per-request delay. When
// adaptive is set, the delay reacts to rate-limit responses.
func NewThrottler(delay time.Duration, adaptive bool, logger *slog.Logger) *Throttler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Throttler{
		base:     delay,
		current:  delay,
		adaptive: adaptive,
		logger:   logger,
	}
}

// Delay returns the current per-request delay.
func (t *Throttler) Delay() time.Duration {
	if t == nil {
		return 0
	}
	if !t.adaptive {
		return t.base
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// RecordStatus updates the throttler based on a response status code.
func (t *Throttler) RecordStatus(code int) {
	if t == nil || !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable {
		t.consecutive++
		t.backoff("rate limited", code)
		return
	}
	if t.consecutive == 0 {
		return
	}
	t.consecutive = 0
	next := max(t.current/2, t.base)
	if next != t.current {
		t.current = next
		t.logger.Info("recovering from rate limit", "delay", t.current)
	}
}

// RecordError counts a transport error. Three in a row are treated as a
// rate-limit signal.
func (t *Throttler) RecordError() {
	if t == nil || !t.adaptive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 {
		t.backoff("repeated errors", 0)
	}
}

// backoff doubles the current delay. Caller holds mu.
func (t *Throttler) backoff(reason string, code int) {
	next := min(max(t.current*2, minBackoff), maxBackoff)
	if next == t.current {
		return
	}
	t.current = next
	t.logger.Warn("backing off", "reason", reason, "status", code, "delay", t.current)
}
