package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservableStore_CounterScenario(t *testing.T) {
	s := New(State{"count": 0, "text": "Hello"})

	var received []State
	unsubscribe := s.Subscribe(func(st State) {
		received = append(received, st)
	})

	s.SetState(State{"count": s.GetState()["count"].(int) + 1})
	s.SetState(State{"text": "World"})

	unsubscribe()
	s.SetState(State{"count": s.GetState()["count"].(int) + 1})

	require.Len(t, received, 2)
	assert.Equal(t, State{"count": 1, "text": "Hello"}, received[0])
	assert.Equal(t, State{"count": 1, "text": "World"}, received[1])
	assert.Equal(t, State{"count": 2, "text": "World"}, s.GetState())
}

func TestObservableStore_StateIsLeftFoldOfUpdates(t *testing.T) {
	initial := State{"a": 1, "b": "x"}
	updates := []State{
		{"a": 2},
		{"c": true},
		{"b": nil},
		{},
		{"a": 3, "d": []int{1, 2}},
	}

	s := New(initial)
	want := initial
	for _, u := range updates {
		s.SetState(u)
		want = Merge(want, u)
	}

	assert.Equal(t, want, s.GetState())
	assert.Equal(t, State{"a": 3, "b": nil, "c": true, "d": []int{1, 2}}, s.GetState())
}

func TestObservableStore_NilInitialState(t *testing.T) {
	s := New(nil)
	require.NotNil(t, s.GetState())
	assert.Empty(t, s.GetState())

	s.SetState(State{"k": "v"})
	assert.Equal(t, State{"k": "v"}, s.GetState())
}

func TestObservableStore_DoesNotAliasInitialState(t *testing.T) {
	initial := State{"k": "v"}
	s := New(initial)

	initial["k"] = "changed"
	assert.Equal(t, "v", s.GetState()["k"])
}

func TestObservableStore_PreviousSnapshotUnchanged(t *testing.T) {
	s := New(State{"n": 1})
	before := s.GetState()

	s.SetState(State{"n": 2})

	assert.Equal(t, 1, before["n"])
	assert.Equal(t, 2, s.GetState()["n"])
}

func TestObservableStore_NotifiesInSubscriptionOrder(t *testing.T) {
	s := New(State{})

	var order []int
	for i := 0; i < 5; i++ {
		s.Subscribe(func(st State) {
			order = append(order, i)
			assert.Equal(t, "y", st["x"])
		})
	}

	s.SetState(State{"x": "y"})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestObservableStore_UnsubscribeRemovesOnlyThatSubscription(t *testing.T) {
	s := New(State{})

	var calls []string
	s.Subscribe(func(State) { calls = append(calls, "a") })
	unsubB := s.Subscribe(func(State) { calls = append(calls, "b") })
	s.Subscribe(func(State) { calls = append(calls, "c") })

	unsubB()
	s.SetState(State{"x": 1})

	assert.Equal(t, []string{"a", "c"}, calls)
	assert.Equal(t, 2, s.Len())
}

func TestObservableStore_UnsubscribeTwiceIsNoop(t *testing.T) {
	s := New(State{})

	calls := 0
	s.Subscribe(func(State) { calls++ })
	unsub := s.Subscribe(func(State) { calls += 100 })

	unsub()
	assert.NotPanics(t, func() { unsub() })
	assert.Equal(t, 1, s.Len())

	s.SetState(State{})
	assert.Equal(t, 1, calls)
}

func TestObservableStore_DuplicateCallbacksAreIndependent(t *testing.T) {
	s := New(State{})

	calls := 0
	cb := func(State) { calls++ }
	unsubFirst := s.Subscribe(cb)
	s.Subscribe(cb)

	s.SetState(State{})
	assert.Equal(t, 2, calls)

	unsubFirst()
	s.SetState(State{})
	assert.Equal(t, 3, calls)
}

func TestObservableStore_NilSubscriberIgnored(t *testing.T) {
	s := New(State{})

	unsub := s.Subscribe(nil)
	require.NotNil(t, unsub)
	assert.Equal(t, 0, s.Len())
	assert.NotPanics(t, func() { unsub() })
	assert.NotPanics(t, func() { s.SetState(State{"x": 1}) })
}

func TestObservableStore_SubscriberAddedDuringNotificationNotCalled(t *testing.T) {
	s := New(State{})

	lateCalls := 0
	added := false
	s.Subscribe(func(State) {
		if !added {
			added = true
			s.Subscribe(func(State) { lateCalls++ })
		}
	})

	s.SetState(State{"n": 1})
	assert.Equal(t, 0, lateCalls)

	s.SetState(State{"n": 2})
	assert.Equal(t, 1, lateCalls)
}

func TestObservableStore_SubscriberRemovedDuringNotificationSkipped(t *testing.T) {
	s := New(State{})

	var unsubSecond Unsubscribe
	secondCalls := 0
	s.Subscribe(func(State) { unsubSecond() })
	unsubSecond = s.Subscribe(func(State) { secondCalls++ })

	s.SetState(State{"n": 1})

	assert.Equal(t, 0, secondCalls)
	assert.Equal(t, 1, s.Len())
}

func TestObservableStore_SubscriberCanUnsubscribeItself(t *testing.T) {
	s := New(State{})

	calls := 0
	var unsub Unsubscribe
	unsub = s.Subscribe(func(State) {
		calls++
		unsub()
	})

	s.SetState(State{})
	s.SetState(State{})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Len())
}

func TestObservableStore_NestedSetStateCompletesFirst(t *testing.T) {
	s := New(State{"count": 0})

	var log []string
	s.Subscribe(func(st State) {
		log = append(log, "first", st["count"].(string))
		if st["count"] == "outer" {
			s.SetState(State{"count": "inner"})
		}
	})
	s.Subscribe(func(st State) {
		log = append(log, "second", st["count"].(string))
	})

	s.SetState(State{"count": "outer"})

	assert.Equal(t, []string{
		"first", "outer",
		"first", "inner",
		"second", "inner",
		"second", "outer",
	}, log)
	assert.Equal(t, "inner", s.GetState()["count"])
}

func TestObservableStore_PanicPropagatesToCaller(t *testing.T) {
	s := New(State{})
	s.Subscribe(func(State) { panic("boom") })

	assert.PanicsWithValue(t, "boom", func() { s.SetState(State{"x": 1}) })
	assert.Equal(t, 1, s.GetState()["x"])
}

func TestObservableStore_ConcurrentAccess(t *testing.T) {
	s := New(State{})

	var wg sync.WaitGroup
	const workers = 10
	const iterations = 100

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.SetState(State{"writer": id})
			}
		}(i)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = s.GetState()["writer"]
			}
		}()
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				unsub := s.Subscribe(func(State) {})
				unsub()
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, s.Len())
	assert.Contains(t, s.GetState(), "writer")
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		base    State
		partial State
		want    State
	}{
		{"both nil", nil, nil, State{}},
		{"nil partial", State{"a": 1}, nil, State{"a": 1}},
		{"nil base", nil, State{"a": 1}, State{"a": 1}},
		{"overwrite", State{"a": 1, "b": 2}, State{"b": 3}, State{"a": 1, "b": 3}},
		{"add field", State{"a": 1}, State{"b": 2}, State{"a": 1, "b": 2}},
		{"nil value overwrites", State{"a": 1}, State{"a": nil}, State{"a": nil}},
		{"nested replaced not merged", State{"m": map[string]int{"x": 1}}, State{"m": map[string]int{"y": 2}}, State{"m": map[string]int{"y": 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.base, tt.partial))
		})
	}
}

func TestMerge_DoesNotModifyArguments(t *testing.T) {
	base := State{"a": 1}
	partial := State{"a": 2, "b": 3}

	_ = Merge(base, partial)

	assert.Equal(t, State{"a": 1}, base)
	assert.Equal(t, State{"a": 2, "b": 3}, partial)
}
