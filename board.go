package userboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/userboard/dashboard"
	"github.com/jpalmerr/userboard/internal/poller"
	"github.com/jpalmerr/userboard/internal/server"
	"github.com/jpalmerr/userboard/store"
)

const (
	defaultPort   = 8080
	defaultLayout = "cards"
)

// Board fetches users from a [Source], keeps them in an observable store and
// serves them as a live page.
//
// Board is created using [New] with functional options and started with
// [Board.Start]. The typical lifecycle is:
//
//	b, err := userboard.New(userboard.WithSource(userboard.NewSimulatedSource(nil, 0)))
//	if err != nil {
//	    slog.Error("failed to create userboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	b.Start(ctx) // blocks until context cancelled
//
// While running, every state change goes through a single event loop
// goroutine, so subscribers observe updates one at a time and in order.
type Board struct {
	title           string
	source          Source
	port            int
	refreshInterval time.Duration
	layout          string
	logger          *slog.Logger
	initialState    store.State
	stateCallbacks  []func(store.State)

	mu       sync.Mutex
	st       *store.ObservableStore
	requests chan request
	done     <-chan struct{}
}

// New creates a new [Board] with the given options.
//
// A source must be configured via [WithSource]. Other options have
// sensible defaults:
//   - Port: 8080
//   - Layout: cards
//   - Refresh interval: none (fetch on demand only)
//
// Returns an error if no source is configured or if any option is invalid.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		port:   defaultPort,
		layout: defaultLayout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.source == nil {
		return nil, errors.New("a source is required")
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:           cfg.title,
		source:          cfg.source,
		port:            cfg.port,
		refreshInterval: cfg.refreshInterval,
		layout:          cfg.layout,
		logger:          logger,
		initialState:    cfg.initialState,
		stateCallbacks:  cfg.stateCallbacks,
	}, nil
}

// Start begins serving the page and processing actions.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - The store is created from [InitialState] merged with [WithInitialState]
//   - Fetches run on demand via [Board.Fetch] and, if configured, on the
//     refresh interval
//   - Sources implementing [Watcher] trigger a fetch on every change; a
//     change seen during a fetch is fetched again once that fetch completes
//   - The page is available at http://localhost:<port>
//
// No fetch runs until one is requested, matching a page that waits for its
// "Fetch Users" button.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server
// fails to start.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("userboard starting", "source", fmt.Sprintf("%T", b.source), "layout", b.layout)
	if b.refreshInterval > 0 {
		b.logger.Info("refresh configured", "interval", b.refreshInterval.String())
	}
	b.logger.Info("page available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	if ctx.Err() != nil {
		return nil
	}

	st := store.New(store.Merge(InitialState(), b.initialState))
	st.Subscribe(b.logState)

	callbacks := newCallbackQueue(b.stateCallbacks, b.logger)
	if len(b.stateCallbacks) > 0 {
		st.Subscribe(callbacks.push)
	}
	callbacksDone := make(chan struct{})
	go func() {
		defer close(callbacksDone)
		callbacks.run()
	}()

	// runCtx lets a failed server start stop everything started before it
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := poller.NewScheduler[[]User](b.source.FetchUsers, b.refreshInterval, b.logger)
	scheduler.Start(runCtx)

	requests := make(chan request)

	b.mu.Lock()
	b.st = st
	b.requests = requests
	b.done = runCtx.Done()
	b.mu.Unlock()

	// track the event loop and watcher to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.loop(runCtx, st, scheduler, requests)
	}()

	if w, ok := b.source.(Watcher); ok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.watch(runCtx, w)
		}()
	}

	// callbacks drain last so they see every state the loop published
	cleanup := func() {
		cancel()
		scheduler.Stop()
		wg.Wait()
		callbacks.close()
		<-callbacksDone
	}

	httpServer := server.NewServer(st, serverActions{b: b}, b.port, dashboard.Assets, b.title, server.Layout(b.layout), b.logger)
	if err := httpServer.Start(runCtx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("userboard stopped")
	return nil
}

// Fetch asks the board to load users from its source.
//
// Fetch returns as soon as the fetch has started; the outcome arrives as a
// state update. While the fetch is pending the state has loading set to true.
//
// Returns [ErrFetchInProgress] if a fetch is already pending, including a
// scheduled refresh, and [ErrNotStarted] if the board is not running.
func (b *Board) Fetch() error {
	return b.do(context.Background(), actionFetch)
}

// Transform replaces the fetched users in state with their [Profile] form.
//
// Returns [ErrNoUsers] if there are no users yet, [ErrAlreadyTransformed] if
// the users are already profiles, and [ErrNotStarted] if the board is not
// running. ctx bounds the wait for the event loop.
func (b *Board) Transform(ctx context.Context) error {
	return b.do(ctx, actionTransform)
}

// Store returns the board's observable store, or nil before [Board.Start].
//
// Reads and subscriptions are safe from any goroutine. Writing through the
// returned store bypasses the event loop and should be reserved for tests
// and demos.
func (b *Board) Store() *store.ObservableStore {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

// Port returns the configured HTTP port for the page.
func (b *Board) Port() int {
	return b.port
}

// RefreshInterval returns the automatic refresh interval, or 0 if fetches
// only happen on demand.
func (b *Board) RefreshInterval() time.Duration {
	return b.refreshInterval
}

// Layout returns the configured page layout, "cards" or "table".
func (b *Board) Layout() string {
	return b.layout
}

// Title returns the configured page title. Empty means the default.
func (b *Board) Title() string {
	return b.title
}

// Source returns the configured user source.
func (b *Board) Source() Source {
	return b.source
}

type action int

const (
	actionFetch action = iota
	actionTransform
	// actionReload is a fetch requested by a source change
	actionReload
)

func (a action) String() string {
	switch a {
	case actionFetch:
		return "fetch"
	case actionTransform:
		return "transform"
	case actionReload:
		return "reload"
	default:
		return "unknown"
	}
}

// request is an action handed to the event loop.
type request struct {
	action action
	reply  chan error
}

// do hands an action to the event loop and waits for its outcome.
func (b *Board) do(ctx context.Context, a action) error {
	b.mu.Lock()
	requests, done := b.requests, b.done
	b.mu.Unlock()

	if requests == nil {
		return ErrNotStarted
	}

	req := request{action: a, reply: make(chan error, 1)}
	select {
	case requests <- req:
	case <-done:
		return ErrNotStarted
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop owns every SetState call on st until ctx is cancelled.
func (b *Board) loop(ctx context.Context, st *store.ObservableStore, scheduler *poller.Scheduler[[]User], requests <-chan request) {
	// run IDs of fetches requested through Fetch; scheduled refreshes are
	// not tracked so they update the list without a loading flash
	pending := make(map[string]struct{})
	// stale is set when the source changed while a fetch was running
	stale := false
	results := scheduler.Results()

	for {
		select {
		case <-ctx.Done():
			return

		case req := <-requests:
			var err error
			switch req.action {
			case actionFetch:
				err = b.startFetch(st, scheduler, pending)
				if err == nil {
					stale = false
				}
			case actionTransform:
				err = b.transform(st)
			case actionReload:
				err = b.startFetch(st, scheduler, pending)
				if errors.Is(err, ErrFetchInProgress) {
					stale = true
					err = nil
				}
			}
			if err != nil {
				b.logger.Debug("action refused", "action", req.action.String(), "reason", err.Error())
			}
			req.reply <- err

		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if ctx.Err() != nil {
				return
			}
			b.applyResult(st, pending, res)

			if stale {
				switch err := b.startFetch(st, scheduler, pending); {
				case err == nil:
					stale = false
				case !errors.Is(err, ErrFetchInProgress):
					stale = false
					b.logger.Warn("reload after change failed", "error", err)
				}
			}
		}
	}
}

func (b *Board) startFetch(st *store.ObservableStore, scheduler *poller.Scheduler[[]User], pending map[string]struct{}) error {
	if len(pending) > 0 {
		return ErrFetchInProgress
	}

	runID, ok := scheduler.Trigger()
	if !ok {
		return ErrFetchInProgress
	}
	pending[runID] = struct{}{}

	st.SetState(store.State{
		KeyLoading: true,
		KeyError:   nil,
	})
	return nil
}

func (b *Board) transform(st *store.ObservableStore) error {
	raw, transformed := usersFromState(st.GetState())
	if transformed {
		return ErrAlreadyTransformed
	}
	if len(raw) == 0 {
		return ErrNoUsers
	}

	st.SetState(store.State{
		KeyUsers:       TransformUsers(raw),
		KeyTransformed: true,
	})
	return nil
}

func (b *Board) applyResult(st *store.ObservableStore, pending map[string]struct{}, res poller.Result[[]User]) {
	_, requested := pending[res.RunID]
	delete(pending, res.RunID)

	logAttrs := []any{
		"run_id", res.RunID,
		"requested", requested,
		"latency_ms", res.Latency.Milliseconds(),
	}

	if res.Err != nil {
		b.logger.Warn("fetch failed", append(logAttrs, "error", res.Err.Error())...)
		if requested {
			st.SetState(failedState(res.Err))
		} else {
			// a failed refresh keeps what is on screen
			st.SetState(store.State{KeyError: res.Err.Error()})
		}
		return
	}

	b.logger.Debug("fetch completed", append(logAttrs, "user_count", len(res.Value))...)
	st.SetState(fetchedState(res.Value, res.StartedAt.Add(res.Latency)))
}

// watch refetches whenever the source reports a change.
func (b *Board) watch(ctx context.Context, w Watcher) {
	err := w.Watch(ctx, func() {
		if err := b.do(ctx, actionReload); err != nil && ctx.Err() == nil {
			b.logger.Debug("change-triggered fetch skipped", "reason", err.Error())
		}
	})
	if err != nil && ctx.Err() == nil {
		b.logger.Error("source watch stopped", "error", err)
	}
}

// logState is the board's own subscriber.
func (b *Board) logState(st store.State) {
	raw, transformed := usersFromState(st)
	count := len(raw)
	if profiles, ok := st[KeyUsers].([]Profile); ok {
		count = len(profiles)
	}
	loading, _ := st[KeyLoading].(bool)

	b.logger.Debug("state updated",
		"user_count", count,
		"loading", loading,
		"transformed", transformed,
	)
}

// serverActions exposes the board's actions to the HTTP server, marking
// refusals caused by the current state as conflicts.
type serverActions struct {
	b *Board
}

func (a serverActions) Fetch() error {
	return asConflict(a.b.Fetch())
}

func (a serverActions) Transform(ctx context.Context) error {
	return asConflict(a.b.Transform(ctx))
}

func asConflict(err error) error {
	if errors.Is(err, ErrFetchInProgress) || errors.Is(err, ErrNoUsers) || errors.Is(err, ErrAlreadyTransformed) {
		return &server.ConflictError{Err: err}
	}
	return err
}
