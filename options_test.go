package userboard

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/userboard/store"
)

func testSource() Source {
	return NewSimulatedSource(nil, -1)
}

func TestNew_Valid(t *testing.T) {
	b, err := New(WithSource(testSource()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if b.Port() != 8080 {
		t.Errorf("Port() = %v, want %v", b.Port(), 8080)
	}
	if b.Layout() != "cards" {
		t.Errorf("Layout() = %q, want %q", b.Layout(), "cards")
	}
	if b.RefreshInterval() != 0 {
		t.Errorf("RefreshInterval() = %v, want 0", b.RefreshInterval())
	}
	if b.Store() != nil {
		t.Error("Store() should be nil before Start()")
	}
}

func TestNew_NoSource(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("New() expected error for no source, got nil")
	}
	if !strings.Contains(err.Error(), "source is required") {
		t.Errorf("New() error = %v, want error containing 'source is required'", err)
	}
}

func TestWithSource_Nil(t *testing.T) {
	if _, err := New(WithSource(nil)); err == nil {
		t.Error("WithSource(nil) expected error, got nil")
	}
}

func TestWithPort(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{1, false},
		{9090, false},
		{65535, false},
		{0, true},
		{-1, true},
		{65536, true},
	}

	for _, tt := range tests {
		b, err := New(WithSource(testSource()), WithPort(tt.port))
		if (err != nil) != tt.wantErr {
			t.Errorf("WithPort(%d) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			continue
		}
		if err == nil && b.Port() != tt.port {
			t.Errorf("Port() = %v, want %v", b.Port(), tt.port)
		}
	}
}

func TestWithTitle(t *testing.T) {
	b, err := New(WithSource(testSource()), WithTitle("Team Directory"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.Title() != "Team Directory" {
		t.Errorf("Title() = %q, want %q", b.Title(), "Team Directory")
	}
}

func TestWithRefreshInterval(t *testing.T) {
	tests := []struct {
		d       time.Duration
		wantErr bool
	}{
		{0, false},
		{time.Second, false},
		{time.Minute, false},
		{500 * time.Millisecond, true},
		{-time.Second, true},
	}

	for _, tt := range tests {
		b, err := New(WithSource(testSource()), WithRefreshInterval(tt.d))
		if (err != nil) != tt.wantErr {
			t.Errorf("WithRefreshInterval(%v) error = %v, wantErr %v", tt.d, err, tt.wantErr)
			continue
		}
		if err == nil && b.RefreshInterval() != tt.d {
			t.Errorf("RefreshInterval() = %v, want %v", b.RefreshInterval(), tt.d)
		}
	}
}

func TestWithLayout(t *testing.T) {
	tests := []struct {
		layout  string
		wantErr bool
	}{
		{"cards", false},
		{"table", false},
		{"", true},
		{"grid", true},
		{"Table", true},
	}

	for _, tt := range tests {
		b, err := New(WithSource(testSource()), WithLayout(tt.layout))
		if (err != nil) != tt.wantErr {
			t.Errorf("WithLayout(%q) error = %v, wantErr %v", tt.layout, err, tt.wantErr)
			continue
		}
		if err == nil && b.Layout() != tt.layout {
			t.Errorf("Layout() = %q, want %q", b.Layout(), tt.layout)
		}
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	b, err := New(WithSource(testSource()), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != logger {
		t.Error("logger should be the one passed to WithLogger")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	if _, err := New(WithSource(testSource()), WithLogger(nil)); err == nil {
		t.Error("WithLogger(nil) expected error, got nil")
	}
}

func TestWithLogger_DefaultsToSlogDefault(t *testing.T) {
	b, err := New(WithSource(testSource()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if b.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestWithInitialState_Merges(t *testing.T) {
	b, err := New(
		WithSource(testSource()),
		WithInitialState(store.State{"a": 1, "b": 1}),
		WithInitialState(store.State{"b": 2}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if b.initialState["a"] != 1 || b.initialState["b"] != 2 {
		t.Errorf("initialState = %v, want a=1 b=2", b.initialState)
	}
}

func TestWithInitialState_CopiesUserLists(t *testing.T) {
	users := SampleUsers()
	profiles := TransformUsers(SampleUsers())
	b, err := New(
		WithSource(testSource()),
		WithInitialState(store.State{KeyUsers: users, "profiles": profiles}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	users[0].FirstName = "Mallory"
	profiles[0].FullName = "Mallory Smith"

	seeded := b.initialState[KeyUsers].([]User)
	if seeded[0].FirstName != "Alice" {
		t.Errorf("seeded FirstName = %q, want %q", seeded[0].FirstName, "Alice")
	}
	seededProfiles := b.initialState["profiles"].([]Profile)
	if seededProfiles[0].FullName != "Alice Smith" {
		t.Errorf("seeded FullName = %q, want %q", seededProfiles[0].FullName, "Alice Smith")
	}
}

func TestCopyUserLists_KeepsNilAndOtherValues(t *testing.T) {
	got := copyUserLists(store.State{"none": []User(nil), "n": 3})

	if list, ok := got["none"].([]User); !ok || list != nil {
		t.Errorf("none = %#v, want a nil []User", got["none"])
	}
	if got["n"] != 3 {
		t.Errorf("n = %v, want 3", got["n"])
	}
}

func TestWithStateCallback_NilIgnored(t *testing.T) {
	b, err := New(
		WithSource(testSource()),
		WithStateCallback(nil),
		WithStateCallback(func(store.State) {}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(b.stateCallbacks) != 1 {
		t.Errorf("len(stateCallbacks) = %d, want 1", len(b.stateCallbacks))
	}
}

func TestNew_OptionErrorStopsConstruction(t *testing.T) {
	b, err := New(WithSource(testSource()), WithPort(0), WithTitle("never applied"))
	if err == nil {
		t.Fatal("New() expected error, got nil")
	}
	if b != nil {
		t.Error("New() should return nil board on error")
	}
}
