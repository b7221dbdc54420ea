// Package autosave runs a persistence callback once edits have been quiet for
// a fixed delay.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/coursedraft/internal/metrics"
)

// DefaultDelay is the quiet period before a scheduled flush runs.
const DefaultDelay = 3 * time.Second

const flushTimeout = 30 * time.Second

// FlushFunc persists the most recent state.
type FlushFunc func(ctx context.Context) error

// Scheduler is a restartable single-shot timer. Every Trigger pushes the
// deadline back; only the last trigger in a burst leads to a flush.
type Scheduler struct {
	delay time.Duration
	flush FlushFunc
	log   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool

	running sync.Mutex // one flush at a time
}

func New(delay time.Duration, flush FlushFunc, log *slog.Logger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Scheduler{delay: delay, flush: flush, log: log}
}

// Trigger cancels any pending flush and schedules a new one.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.pending = true
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
}

// fire runs when a timer expires. A timer that was superseded after it had
// already fired sees a newer generation and does nothing.
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = false
	s.timer = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	_ = s.run(ctx, "timer")
}

// Flush runs a pending flush now. It returns nil when nothing is pending.
func (s *Scheduler) Flush(ctx context.Context) error {
	if !s.take() {
		return nil
	}
	return s.run(ctx, "explicit")
}

// Pending reports whether a flush is scheduled.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Cancel drops a pending flush without running it.
func (s *Scheduler) Cancel() {
	s.take()
}

// Stop cancels any pending flush and ignores later triggers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.take()
}

// take clears the pending state and reports whether there was one.
func (s *Scheduler) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	was := s.pending
	s.pending = false
	return was
}

func (s *Scheduler) run(ctx context.Context, reason string) error {
	s.running.Lock()
	defer s.running.Unlock()

	start := time.Now()
	err := s.flush(ctx)
	metrics.AutosaveDuration.Observe(time.Since(start).Seconds())
	metrics.AutosaveFlushes.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("autosave flush failed", "reason", reason, "error", err)
		return err
	}
	s.log.Debug("autosave flushed", "reason", reason, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
