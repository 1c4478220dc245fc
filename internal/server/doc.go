// Package server provides the HTTP server for the userboard page and API.
//
// This package is internal to userboard and handles all HTTP concerns:
//
//   - Page rendering: Renders the embedded html/template at "/"
//   - REST API: Current state at "/api/state", actions at "/api/fetch" and "/api/transform"
//   - Server-Sent Events: Live state updates at "/api/sse"
//
// The server only reads state through a store subscription and never writes
// it; writes go through the [Actions] it is given.
//
// Users of the userboard library should not need to interact with this
// package directly. The server is started automatically by [userboard.Board.Start].
package server
