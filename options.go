package userboard

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jpalmerr/userboard/store"
)

// minRefreshInterval floors automatic refreshes so a misconfigured board
// cannot hammer its source.
const minRefreshInterval = time.Second

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title           string
	source          Source
	port            int
	refreshInterval time.Duration
	layout          string
	logger          *slog.Logger
	initialState    store.State
	stateCallbacks  []func(store.State)
}

// Option is a function that configures a [Board] instance during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithSource sets where the board loads users from. Required.
//
// Example:
//
//	src, err := userboard.NewHTTPSource("https://api.example.com/users")
//	if err != nil {
//	    return err
//	}
//	b, err := userboard.New(userboard.WithSource(src))
//
// Returns an error if the source is nil.
func WithSource(s Source) Option {
	return func(cfg *boardConfig) error {
		if s == nil {
			return errors.New("source cannot be nil")
		}
		cfg.source = s
		return nil
	}
}

// WithPort sets the HTTP port for the page. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithTitle sets the page title displayed in the browser tab and header.
//
// If not specified, defaults to "User List".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Board instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRefreshInterval makes the board refetch users automatically.
//
// Scheduled refreshes replace the list without showing the loading banner,
// and are skipped while another fetch is pending. Zero disables them, which
// is the default.
//
// Returns an error if d is negative or below one second.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		if d > 0 && d < minRefreshInterval {
			return fmt.Errorf("refresh interval must be at least %v, got %v", minRefreshInterval, d)
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithLayout selects how users are rendered: "cards" (the default) or
// "table".
//
// Returns an error for any other value.
func WithLayout(layout string) Option {
	return func(cfg *boardConfig) error {
		switch layout {
		case "cards", "table":
			cfg.layout = layout
			return nil
		default:
			return fmt.Errorf("layout must be \"cards\" or \"table\", got %q", layout)
		}
	}
}

// WithInitialState merges extra fields over [InitialState] when the board
// starts. Later calls merge over earlier ones.
//
// Seeding [KeyUsers] with a []User lets a board render data before its
// first fetch. []User and []Profile values are copied, so the caller may
// reuse its slices; other values are stored as given.
func WithInitialState(st store.State) Option {
	return func(cfg *boardConfig) error {
		cfg.initialState = store.Merge(cfg.initialState, copyUserLists(st))
		return nil
	}
}

// copyUserLists returns a shallow copy of st with user slices cloned.
func copyUserLists(st store.State) store.State {
	out := make(store.State, len(st))
	for k, v := range st {
		switch list := v.(type) {
		case []User:
			out[k] = slices.Clone(list)
		case []Profile:
			out[k] = slices.Clone(list)
		default:
			out[k] = v
		}
	}
	return out
}

// WithStateCallback registers a function to be called on every state update.
//
// The callback receives the full post-update state. Multiple callbacks may be
// registered; they execute in registration order, once per update and in
// update order.
//
// Callbacks run on a goroutine of their own, not on the board's event loop,
// so a callback may call [Board.Fetch] or [Board.Transform]. A slow callback
// delays later callbacks but not the board. Callbacks must not mutate the
// state they receive.
//
// Panics within callbacks are recovered and logged; they do not stop the board.
//
// Nil callbacks are silently ignored.
func WithStateCallback(cb func(store.State)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}
