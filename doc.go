// Package userboard serves a live user list backed by an observable store.
//
// A [Board] loads users from a [Source], keeps them in a
// [store.ObservableStore] and renders them as a web page that follows every
// state change over Server-Sent Events. Users can be fetched and transformed
// into display profiles from the page or programmatically.
//
// # Quick Start
//
// Serve the built-in sample users with graceful shutdown:
//
//	b, _ := userboard.New(userboard.WithSource(userboard.NewSimulatedSource(nil, 0)))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	b.Start(ctx) // blocks until context is cancelled
//
// # Sources
//
//   - [SimulatedSource]: a fixed list returned after an artificial delay
//   - [HTTPSource]: a JSON API, optionally unwrapped with [WithRecordsPath]
//   - [FileSource]: a YAML or JSON file, refetched when it changes
//
// Any function can serve as a source through [SourceFunc].
//
// # State
//
// The board's state is a flat mapping with the keys [KeyUsers], [KeyLoading],
// [KeyTransformed], [KeyError] and [KeyFetchedAt]. Register
// [WithStateCallback] to observe it; every update arrives in order from a
// single goroutine separate from the board's event loop, so a callback may
// call [Board.Fetch] or [Board.Transform].
//
// # Architecture
//
//   - store: the observable state container (public, usable on its own)
//   - internal/poller: HTTP client and single-flight fetch scheduler
//   - internal/server: HTTP server with the page, JSON API and SSE
//   - dashboard: embedded page template
package userboard
