package userboard

import (
	"context"
	"time"
)

const defaultSimulatedDelay = time.Second

// Source loads the user list for a [Board].
//
// FetchUsers is called from the board's fetch scheduler, never concurrently
// with itself for the same board. Implementations must honour ctx
// cancellation.
type Source interface {
	FetchUsers(ctx context.Context) ([]User, error)
}

// Watcher is implemented by sources that can signal when their data changed.
//
// Watch blocks until ctx is cancelled, calling onChange after each change.
// A [Board] whose source implements Watcher refetches on every signal.
type Watcher interface {
	Watch(ctx context.Context, onChange func()) error
}

// SourceFunc adapts an ordinary function to the [Source] interface.
type SourceFunc func(ctx context.Context) ([]User, error)

// FetchUsers calls f(ctx).
func (f SourceFunc) FetchUsers(ctx context.Context) ([]User, error) {
	return f(ctx)
}

// SimulatedSource returns a fixed user list after an artificial delay.
//
// It stands in for a real API during demos and tests. The zero value is not
// usable; create one with [NewSimulatedSource].
type SimulatedSource struct {
	users []User
	delay time.Duration
}

// NewSimulatedSource creates a [SimulatedSource] that serves users after
// delay. A nil users slice serves [SampleUsers]; a zero delay uses 1 second
// and a negative delay is treated as no delay.
func NewSimulatedSource(users []User, delay time.Duration) *SimulatedSource {
	if users == nil {
		users = SampleUsers()
	}
	if delay == 0 {
		delay = defaultSimulatedDelay
	}
	if delay < 0 {
		delay = 0
	}
	return &SimulatedSource{
		users: append([]User(nil), users...),
		delay: delay,
	}
}

// Delay returns the artificial latency applied to each fetch.
func (s *SimulatedSource) Delay() time.Duration {
	return s.delay
}

// FetchUsers waits for the configured delay and returns a copy of the users.
// Returns ctx.Err() if ctx is cancelled first.
func (s *SimulatedSource) FetchUsers(ctx context.Context) ([]User, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return append([]User(nil), s.users...), nil
}
