package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/userboard"
	"github.com/jpalmerr/userboard/store"
)

// BuildSource converts the source section into an SDK [userboard.Source].
func BuildSource(sc SourceConfig) (userboard.Source, error) {
	switch sc.Type {
	case "", SourceSimulated:
		return userboard.NewSimulatedSource(sc.Users, sc.Delay.Duration()), nil

	case SourceHTTP:
		var opts []userboard.SourceOption

		if sc.Method != "" {
			opts = append(opts, userboard.WithMethod(sc.Method))
		}

		if sc.Timeout != 0 {
			opts = append(opts, userboard.WithTimeout(sc.Timeout.Duration()))
		}

		if len(sc.Headers) > 0 {
			opts = append(opts, userboard.WithHeaders(mapToKeyValuePairs(sc.Headers)...))
		}

		if sc.RecordsPath != "" {
			opts = append(opts, userboard.WithRecordsPath(sc.RecordsPath))
		}

		return userboard.NewHTTPSource(sc.URL, opts...)

	case SourceFile:
		return userboard.NewFileSource(sc.Path)

	default:
		return nil, fmt.Errorf("unknown source type %q", sc.Type)
	}
}

// BuildOptions converts the whole configuration into [userboard.Option]
// values, including the source. Callers typically append WithLogger.
func BuildOptions(cfg *Config) ([]userboard.Option, error) {
	src, err := BuildSource(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	opts := []userboard.Option{
		userboard.WithSource(src),
		userboard.WithPort(cfg.Port),
	}

	if cfg.Title != "" {
		opts = append(opts, userboard.WithTitle(cfg.Title))
	}

	if cfg.Layout != "" {
		opts = append(opts, userboard.WithLayout(cfg.Layout))
	}

	if cfg.RefreshInterval != 0 {
		opts = append(opts, userboard.WithRefreshInterval(cfg.RefreshInterval.Duration()))
	}

	if len(cfg.InitialState) > 0 {
		opts = append(opts, userboard.WithInitialState(store.State(cfg.InitialState)))
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
