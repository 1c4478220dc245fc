package userboard

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/jpalmerr/userboard/store"
)

// callbackQueue hands published states to the user callbacks on a goroutine
// of its own, in publish order.
//
// The event loop only appends, so a callback may call [Board.Fetch] or
// [Board.Transform] and wait for the loop without deadlocking it. The queue
// is unbounded; a slow callback delays later callbacks, never the board.
type callbackQueue struct {
	callbacks []func(store.State)
	logger    *slog.Logger

	mu      sync.Mutex
	pending []store.State
	closed  bool

	// wake holds at most one signal; a pending signal already covers any
	// states appended after it
	wake chan struct{}
}

func newCallbackQueue(callbacks []func(store.State), logger *slog.Logger) *callbackQueue {
	return &callbackQueue{
		callbacks: callbacks,
		logger:    logger,
		wake:      make(chan struct{}, 1),
	}
}

// push queues st for delivery. It never blocks.
func (q *callbackQueue) push(st store.State) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, st)
	q.mu.Unlock()

	q.signal()
}

// close stops accepting states. run delivers what is already queued and
// then returns.
func (q *callbackQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

func (q *callbackQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// run delivers queued states until close is called and the queue is drained.
func (q *callbackQueue) run() {
	for {
		q.mu.Lock()
		batch, closed := q.pending, q.closed
		q.pending = nil
		q.mu.Unlock()

		for _, st := range batch {
			for _, cb := range q.callbacks {
				invokeCallbackSafe(cb, st, q.logger)
			}
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged with a correlation ID but do not propagate.
func invokeCallbackSafe(cb func(store.State), st store.State, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	cb(st)
}
