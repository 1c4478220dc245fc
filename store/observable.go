package store

import (
	"sync"
	"sync/atomic"
)

// subscription is one registered callback. The pointer is its identity, so
// the same func subscribed twice yields two independent subscriptions.
type subscription struct {
	fn      Subscriber
	removed atomic.Bool
}

// ObservableStore holds a [State] and notifies subscribers when it changes.
//
// ObservableStore is safe for concurrent use: GetState, Subscribe and the
// returned [Unsubscribe] funcs may be called from any goroutine. No lock is
// held while subscribers run, which is what makes re-entrant SetState calls
// from inside a subscriber possible. Concurrent writers do not corrupt the
// store, but their notification passes may interleave; callers that need
// strictly ordered notifications should funnel writes through one goroutine.
type ObservableStore struct {
	mu    sync.RWMutex
	state State

	// subs is replaced, never modified in place, so a slice taken under the
	// lock stays valid for a whole notification pass.
	subs []*subscription
}

// New creates an [ObservableStore] holding a copy of initial.
//
// A nil initial state is treated as an empty mapping.
func New(initial State) *ObservableStore {
	return &ObservableStore{
		state: initial.Clone(),
	}
}

// GetState returns the current [State].
//
// The returned mapping is the store's own record, not a copy. The store
// replaces rather than modifies its record on every update, so the value
// stays consistent, but callers must treat it as read-only.
func (s *ObservableStore) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState merges partial into the current [State] and notifies subscribers.
//
// Fields present in partial overwrite same-named fields; all other fields are
// kept. Every subscriber registered when SetState is called is then invoked,
// in subscription order, with the merged state. All subscribers have returned
// by the time SetState returns.
func (s *ObservableStore) SetState(partial State) {
	s.mu.Lock()
	next := Merge(s.state, partial)
	s.state = next
	subs := s.subs
	s.mu.Unlock()

	for _, sub := range subs {
		// removed mid-pass, possibly by an earlier subscriber
		if sub.removed.Load() {
			continue
		}
		sub.fn(next)
	}
}

// Subscribe registers cb to be called after every [ObservableStore.SetState].
//
// The returned [Unsubscribe] removes exactly this subscription. Calling it
// again has no effect. A nil cb is ignored and a no-op Unsubscribe is
// returned.
func (s *ObservableStore) Subscribe(cb Subscriber) Unsubscribe {
	if cb == nil {
		return func() {}
	}

	sub := &subscription{fn: cb}

	s.mu.Lock()
	subs := make([]*subscription, len(s.subs), len(s.subs)+1)
	copy(subs, s.subs)
	s.subs = append(subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}

// Len returns the number of registered subscribers.
func (s *ObservableStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// remove drops sub from the subscriber list and marks it so an in-progress
// notification pass skips it.
func (s *ObservableStore) remove(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.removed.Store(true)
	for i, candidate := range s.subs {
		if candidate != sub {
			continue
		}
		subs := make([]*subscription, 0, len(s.subs)-1)
		subs = append(subs, s.subs[:i]...)
		s.subs = append(subs, s.subs[i+1:]...)
		return
	}
}
