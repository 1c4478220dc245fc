// Package store provides an observable state container.
//
// An [ObservableStore] holds a single [State] value, accepts partial updates
// that are shallow-merged into it, and notifies subscribers synchronously in
// the order they subscribed. It is the one piece of shared state in userboard:
// the board's event loop writes to it, and the renderer, the SSE stream and
// any user callbacks read from it.
//
// The main components are:
//
//   - [State]: an opaque field-name to value mapping
//   - [ObservableStore]: the container, with GetState, SetState and Subscribe
//   - [Merge]: the shallow merge applied by SetState
//
// # Notification semantics
//
// SetState snapshots the subscriber list before notifying. Subscribers added
// while a notification pass is running are not called for that update.
// Subscribers removed while it is running are skipped for the rest of it.
// A subscriber may itself call SetState; the nested update and its full
// notification pass complete before the outer pass moves on. Nothing guards
// against a subscriber that unconditionally sets state on every call.
//
// # Snapshots
//
// GetState returns the store's current record, not a copy. Every update
// builds a fresh map, so a record handed out is never written to again by the
// store; callers must not write to it either.
package store
