// Package poller provides HTTP fetching and fetch scheduling for userboard.
//
// This package is internal to userboard. It supplies the plumbing behind
// every data source: a pooled HTTP client, and a scheduler that guarantees
// only one fetch is pending at a time while still allowing periodic
// refreshes.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout and size limits
//   - [Scheduler]: Runs a [Task] on demand or on an interval, one at a time
//   - [Result]: Outcome of a single task run
//
// Users of the userboard library should not need to interact with this
// package directly. Configuration is done through the main userboard package.
package poller
