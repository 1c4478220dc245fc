package userboard

import "errors"

var (
	// ErrNoUsers is returned by [Board.Transform] when there is nothing to
	// transform yet.
	ErrNoUsers = errors.New("please fetch users first")

	// ErrAlreadyTransformed is returned by [Board.Transform] when the users
	// in state are already profiles.
	ErrAlreadyTransformed = errors.New("users are already transformed")

	// ErrFetchInProgress is returned by [Board.Fetch] while a previous fetch
	// is still pending.
	ErrFetchInProgress = errors.New("a fetch is already in progress")

	// ErrNotStarted is returned by [Board] actions before [Board.Start] runs.
	ErrNotStarted = errors.New("board is not started")
)
