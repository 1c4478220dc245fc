package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// minInterval floors the refresh interval to prevent CPU thrashing.
const minInterval = time.Second

// Task is one unit of fetch work run by a [Scheduler].
type Task[T any] func(ctx context.Context) (T, error)

// Result holds the outcome of a single [Task] run.
type Result[T any] struct {
	// RunID identifies the run; it is the value returned by [Scheduler.Trigger].
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Latency is how long the task took.
	Latency time.Duration

	// Value is the task's result. Meaningless when Err is non-nil.
	Value T

	// Err is the task's error, or a recovered panic.
	Err error
}

// Scheduler runs a [Task] on demand and, optionally, on a fixed interval.
//
// At most one run is in flight at a time: a trigger that arrives while a run
// is pending is refused rather than queued. Results are emitted on
// [Scheduler.Results] in the order runs finish, which with a single run in
// flight is also the order they started.
//
// All lifecycle methods (Start, Stop, Trigger) are safe for concurrent use.
type Scheduler[T any] struct {
	task     Task[T]
	interval time.Duration
	results  chan Result[T]
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	inFlight  bool
	closeOnce sync.Once

	// sendMu keeps results ordered when a new run starts while the previous
	// one is still handing off its result.
	sendMu sync.Mutex
}

// NewScheduler creates a new [Scheduler] for task.
//
// Parameters:
//   - task: The work to run on each trigger
//   - interval: Time between automatic runs; 0 disables them. Non-zero
//     values below one second are raised to one second.
//   - logger: Logger for scheduler events (panic recovery, etc.)
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler[T any](task Task[T], interval time.Duration, logger *slog.Logger) *Scheduler[T] {
	if interval > 0 && interval < minInterval {
		interval = minInterval
	}
	if interval < 0 {
		interval = 0
	}
	return &Scheduler[T]{
		task:     task,
		interval: interval,
		results:  make(chan Result[T], 1),
		logger:   logger,
	}
}

// Results returns a receive-only channel that emits one [Result] per run.
//
// The channel is closed when the scheduler stops. Consumers should read
// until it is closed.
func (s *Scheduler[T]) Results() <-chan Result[T] {
	return s.results
}

// Interval returns the automatic run interval, or 0 if runs are manual only.
func (s *Scheduler[T]) Interval() time.Duration {
	return s.interval
}

// Start enables triggering and, if an interval is set, begins the ticker
// loop in a background goroutine. Start does not run the task itself.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent. If Stop was called before Start, Start is a no-op.
func (s *Scheduler[T]) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx // capture under lock to avoid race
	if s.interval > 0 {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	if s.interval == 0 {
		return
	}

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, ok := s.Trigger(); !ok {
					s.logger.Debug("scheduled run skipped", "reason", "run in flight")
				}
			}
		}
	}()
}

// Trigger starts a run in the background and returns its run ID.
//
// ok is false, and no run starts, if the scheduler is not running or a
// previous run has not yet delivered its result.
func (s *Scheduler[T]) Trigger() (runID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped || s.inFlight {
		return "", false
	}
	s.inFlight = true

	runID = uuid.NewString()
	runCtx := s.ctx
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(runCtx, runID)
	}()

	return runID, true
}

// InFlight reports whether a run is currently pending.
func (s *Scheduler[T]) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Stop halts the scheduler and waits for all goroutines to complete.
//
// Stop cancels the scheduler's context, which the in-flight task receives,
// and blocks until the ticker loop and any pending run exit. The results
// channel is then closed. Stop is idempotent and safe to call before Start.
func (s *Scheduler[T]) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// run executes the task once and delivers its result.
func (s *Scheduler[T]) run(ctx context.Context, runID string) {
	start := time.Now()
	value, err := s.safeRun(ctx, runID)
	result := Result[T]{
		RunID:     runID,
		StartedAt: start,
		Latency:   time.Since(start),
		Value:     value,
		Err:       err,
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	// clear before delivering so a consumer reacting to this result can
	// trigger the next run straight away
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()

	select {
	case s.results <- result:
	case <-ctx.Done():
	}
}

// safeRun calls the task with panic recovery.
// If the task panics, the full stack trace is logged with a correlation ID
// and an error carrying that ID is returned instead.
func (s *Scheduler[T]) safeRun(ctx context.Context, runID string) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			s.logger.Error("task panic",
				"correlation_id", correlationID,
				"run_id", runID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			var zero T
			value = zero
			err = fmt.Errorf("task panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.task(ctx)
}
