package userboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileSource reads users from a local YAML or JSON file.
//
// The file holds either a list of users or a mapping with a "users" key.
// FileSource implements [Watcher], so a [Board] using it refetches whenever
// the file is written, created or renamed into place.
type FileSource struct {
	path string
	// debounce is the quiet period Watch waits for after the last event
	debounce time.Duration
}

// defaultWatchDebounce covers editors that save as a truncate followed by
// one or more writes.
const defaultWatchDebounce = 100 * time.Millisecond

// NewFileSource creates a [FileSource] for path. The file is not read until
// the first fetch, but it must exist.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, errors.New("file path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	return &FileSource{path: abs, debounce: defaultWatchDebounce}, nil
}

// Path returns the absolute path of the data file.
func (s *FileSource) Path() string {
	return s.path
}

// FetchUsers reads and decodes the data file.
func (s *FileSource) FetchUsers(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	users, err := parseUsersDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", s.path, err)
	}
	return users, nil
}

// Watch calls onChange once the data file has changed and then stayed quiet
// for a short debounce period, until ctx is cancelled. A burst of events
// from one save produces a single call.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temp file over the original are still
// seen.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	// settled never holds more than one signal; a pending one already
	// covers every event before it
	settled := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(s.debounce, func() {
					select {
					case settled <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(s.debounce)
			}
		case <-settled:
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher: %w", err)
		}
	}
}

// parseUsersDocument decodes either a top-level user list or a mapping with
// a "users" key. JSON input works because YAML is a superset of it.
func parseUsersDocument(data []byte) ([]User, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	// empty file
	if len(doc.Content) == 0 {
		return []User{}, nil
	}

	root := doc.Content[0]
	users := []User{}
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&users); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var wrapped struct {
			Users []User `yaml:"users"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, err
		}
		if wrapped.Users != nil {
			users = wrapped.Users
		}
	default:
		return nil, fmt.Errorf("expected a list of users or a mapping with a users key, got %v", root.Kind)
	}
	return users, nil
}
