// Package embedding tracks backend document-embedding progress. The tracker
// hands out cancellable job handles that emit a monotonic 0-100 progress
// stream and signal completion exactly once. Progress can come from a real
// status endpoint via StatusSource, or from the built-in fixed-step advance
// used when the backend exposes no status API.
package embedding

import (
	"context"
	"sync"
	"time"
)

// Reference advancement policy: +10 every 500ms.
const (
	DefaultStep     = 10
	DefaultInterval = 500 * time.Millisecond
)

// StatusSource reports progress for an embedding job. Implementations may
// poll a backend status endpoint; values are clamped monotonic by the
// tracker, so a source may be sloppy about ordering.
type StatusSource interface {
	Progress(ctx context.Context, jobID string) (int, error)
}

// Config holds tracker configuration.
type Config struct {
	// Step is the simulated advance per tick. Ignored when Source is set.
	Step int
	// Interval is the tick cadence.
	Interval time.Duration
	// Source, when non-nil, replaces the simulated advance with real polling.
	Source StatusSource
}

// DefaultConfig returns the reference advancement policy.
func DefaultConfig() Config {
	return Config{Step: DefaultStep, Interval: DefaultInterval}
}

// Tracker starts and supervises embedding jobs. Starting a new job cancels
// the previous one, so at most one job ticks at a time.
type Tracker struct {
	cfg Config

	mu      sync.Mutex
	current *Job
}

// NewTracker creates a tracker, filling zero config fields with defaults.
func NewTracker(cfg Config) *Tracker {
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Tracker{cfg: cfg}
}

// Job is a cancellable handle on one embedding run.
type Job struct {
	id      string
	updates chan int
	done    chan struct{}
	cancel  context.CancelFunc
	stopped chan struct{}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Updates is the progress stream. Values are non-decreasing and end at 100
// on completion. The channel closes when the job finishes or is cancelled.
func (j *Job) Updates() <-chan int { return j.updates }

// Done closes exactly once, when progress reaches 100. A cancelled job's
// Done never closes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel releases the job's ticker and goroutine. Safe to call repeatedly
// and after completion.
func (j *Job) Cancel() { j.cancel() }

// Start begins tracking a job and returns its handle. Any previous job is
// cancelled first so stale ticks cannot reach the caller.
func (t *Tracker) Start(jobID string) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{
		id:      jobID,
		updates: make(chan int, 16),
		done:    make(chan struct{}),
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	t.mu.Lock()
	if t.current != nil {
		t.current.Cancel()
	}
	t.current = j
	t.mu.Unlock()

	go t.run(ctx, j)
	return j
}

// Cancel stops the current job, if any.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != nil {
		t.current.Cancel()
		t.current = nil
	}
}

func (t *Tracker) run(ctx context.Context, j *Job) {
	defer close(j.stopped)
	defer close(j.updates)

	ticker := time.NewTicker(t.cfg.Interval)
	defer ticker.Stop()

	progress := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next := progress + t.cfg.Step
			if t.cfg.Source != nil {
				p, err := t.cfg.Source.Progress(ctx, j.id)
				if err != nil {
					// Transient poll failure: keep the last value and retry
					// on the next tick.
					continue
				}
				next = p
			}
			if next < progress {
				next = progress
			}
			if next > 100 {
				next = 100
			}
			if next == progress {
				continue
			}
			progress = next

			select {
			case j.updates <- progress:
			case <-ctx.Done():
				return
			}

			if progress >= 100 {
				close(j.done)
				return
			}
		}
	}
}
