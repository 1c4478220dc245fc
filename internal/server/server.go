package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jpalmerr/userboard/store"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "User List"

	dashboardTemplate = "assets/index.html"
)

// StateSource is the read side of the observable store the server renders.
type StateSource interface {
	GetState() store.State
	Subscribe(cb store.Subscriber) store.Unsubscribe
}

// Actions are the state-changing operations exposed as POST endpoints.
//
// Implementations report conditions the client caused, such as transforming
// before any users were fetched, by returning a [ConflictError].
type Actions interface {
	Fetch() error
	Transform(ctx context.Context) error
}

// ConflictError marks an action refused because of the current state.
// The server answers it with 409 Conflict and the wrapped message.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return e.Err.Error() }

func (e *ConflictError) Unwrap() error { return e.Err }

// Server handles HTTP requests for the userboard page and API.
//
// Server provides these endpoints:
//   - GET /: The server-rendered user list page
//   - GET /api/state: The current state as JSON
//   - GET /api/sse: Server-Sent Events stream of state updates
//   - POST /api/fetch: Start fetching users
//   - POST /api/transform: Transform the fetched users
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	state      StateSource
	actions    Actions
	port       int
	httpServer *http.Server
	listener   net.Listener
	page       *template.Template
	title      string
	layout     Layout
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: The observable store to render and stream
//   - actions: Handlers for the fetch and transform endpoints
//   - port: TCP port to listen on (0 picks a free port)
//   - assets: Embedded filesystem containing the page template (may be nil)
//   - title: Page title (defaults to "User List" if empty)
//   - layout: How users are rendered; unknown values fall back to cards
//   - logger: Logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(st StateSource, actions Actions, port int, assets fs.FS, title string, layout Layout, logger *slog.Logger) *Server {
	if title == "" {
		title = defaultTitle
	}
	if !layout.Valid() {
		layout = LayoutCards
	}

	s := &Server{
		state:   st,
		actions: actions,
		port:    port,
		title:   title,
		layout:  layout,
		logger:  logger,
	}

	if assets != nil {
		page, err := template.ParseFS(assets, dashboardTemplate)
		if err != nil {
			logger.Error("failed to parse page template", "error", err)
		} else {
			s.page = page
		}
	}

	return s
}

// Handler returns the router serving every endpoint. It is what
// [Server.Start] serves and is exposed for tests.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/sse", s.handleSSE).Methods(http.MethodGet)
	api.HandleFunc("/fetch", s.handleFetch).Methods(http.MethodPost)
	api.HandleFunc("/transform", s.handleTransform).Methods(http.MethodPost)

	return router
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// all request contexts derive from ctx, so cancelling it also ends
		// long-running handlers like SSE
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// handleDashboard renders the user list page from the current state.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.page == nil {
		http.Error(w, "Page not found", http.StatusInternalServerError)
		return
	}

	view := newPageView(s.title, s.layout, s.state.GetState())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, view); err != nil {
		s.logger.Error("failed to render page", "error", err)
	}
}

// handleState returns the current state as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(s.state.GetState()); err != nil {
		s.logger.Error("failed to encode state response", "error", err)
	}
}

// handleFetch starts a fetch. The fetch itself completes asynchronously;
// clients watch /api/sse for the result.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if err := s.actions.Fetch(); err != nil {
		s.writeActionError(w, "fetch", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "fetching"})
}

// handleTransform transforms the fetched users synchronously.
func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	if err := s.actions.Transform(r.Context()); err != nil {
		s.writeActionError(w, "transform", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transformed"})
}

func (s *Server) writeActionError(w http.ResponseWriter, action string, err error) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflict.Error()})
		return
	}

	s.logger.Error("action failed", "action", action, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// handleSSE streams state updates via Server-Sent Events.
//
// Each event carries the full post-update state. The store notifies
// synchronously, so the subscription only parks the newest state in a
// one-slot channel; a slow client skips intermediate states but always ends
// on the latest one. Write deadlines stop a stuck client from pinning the
// handler goroutine.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before reading the initial state so no update is lost in between
	updates := make(chan store.State, 1)
	unsubscribe := s.state.Subscribe(func(st store.State) {
		offerLatest(updates, st)
	})
	defer unsubscribe()

	send := func(st store.State) error {
		data, err := json.Marshal(st)
		if err != nil {
			s.logger.Warn("failed to encode state for sse", "error", err)
			return nil
		}
		return writeAndFlush(data)
	}

	if err := send(s.state.GetState()); err != nil {
		return
	}

	for {
		select {
		case st := <-updates:
			if err := send(st); err != nil {
				return
			}
		case <-r.Context().Done():
			// fires on both client disconnect and server shutdown
			return
		}
	}
}

// offerLatest puts st in the one-slot channel ch, replacing a state the
// reader has not taken yet. Callers must be serialized, as store
// notifications are.
func offerLatest(ch chan store.State, st store.State) {
	for {
		select {
		case ch <- st:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
