package store

// State is the mapping held by an [ObservableStore].
//
// No shape is enforced; any mapping is valid. Updates are merged shallowly,
// so nested maps or slices are replaced wholesale, never merged.
type State map[string]any

// Subscriber is a callback that receives the post-update [State].
type Subscriber func(State)

// Unsubscribe removes the subscription that produced it.
// Calling it more than once is safe.
type Unsubscribe func()

// Merge returns a new [State] holding every field of base overwritten by the
// fields of partial. Neither argument is modified. Nil arguments are treated
// as empty mappings.
func Merge(base, partial State) State {
	next := make(State, len(base)+len(partial))
	for k, v := range base {
		next[k] = v
	}
	for k, v := range partial {
		next[k] = v
	}
	return next
}

// Clone returns a shallow copy of s, or an empty State if s is nil.
func (s State) Clone() State {
	return Merge(s, nil)
}
