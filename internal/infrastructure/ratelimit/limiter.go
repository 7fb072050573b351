package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/pkg/clock"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

// Limiter is a fixed-window per-caller request limiter. It is owned by the
// composition root and swept on a schedule, not a package-level map: callers
// start the sweep with Start and release it with Stop.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit       int
	windowSize  time.Duration
	sweepPeriod time.Duration
	clk         clock.Clock
	logger      *logger.Logger
	stopChan    chan struct{}
	stopOnce    sync.Once
}

type window struct {
	count     int
	startedAt time.Time
}

func NewLimiter(requestsPerMinute int, sweepPeriod time.Duration, clk clock.Clock, log *logger.Logger) *Limiter {
	return &Limiter{
		windows:     make(map[string]*window),
		limit:       requestsPerMinute,
		windowSize:  time.Minute,
		sweepPeriod: sweepPeriod,
		clk:         clk,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Allow counts one request from the caller and reports whether it fits in
// the current window.
func (l *Limiter) Allow(caller string) bool {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[caller]
	if !ok || now.Sub(w.startedAt) >= l.windowSize {
		l.windows[caller] = &window{count: 1, startedAt: now}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Start runs the periodic sweep of expired windows until Stop is called or
// the context is cancelled.
func (l *Limiter) Start(ctx context.Context) {
	l.logger.Info("Starting rate limiter sweep", "period", l.sweepPeriod.String())

	ticker := time.NewTicker(l.sweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Rate limiter sweep stopped")
			return
		case <-l.stopChan:
			l.logger.Info("Rate limiter sweep stopped")
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
}

func (l *Limiter) sweep() {
	now := l.clk.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for caller, w := range l.windows {
		if now.Sub(w.startedAt) >= l.windowSize {
			delete(l.windows, caller)
		}
	}
}

// Size reports the number of tracked callers, for tests and diagnostics.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
