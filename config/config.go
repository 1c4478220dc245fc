// Package config provides file-based configuration for userboard.
//
// This package enables running userboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// Files ending in .toml are read as TOML; anything else is read as YAML.
//
// Example configuration:
//
//	title: Team Directory
//	port: 8080
//	layout: table
//	refresh_interval: 1m
//
//	source:
//	  type: http
//	  url: https://${API_HOST:-api.example.com}/users
//	  headers:
//	    Authorization: Bearer ${API_TOKEN}
//	  records_path: data.users
//
// USERBOARD_TITLE, USERBOARD_PORT, USERBOARD_LAYOUT and
// USERBOARD_REFRESH_INTERVAL override the matching settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/userboard"
)

const (
	defaultPort   = 8080
	defaultLayout = "cards"

	// minRefreshInterval prevents accidental hammering of the source.
	minRefreshInterval = 1 * time.Second

	envPrefix = "USERBOARD_"
)

// Source types accepted in source.type.
const (
	SourceSimulated = "simulated"
	SourceHTTP      = "http"
	SourceFile      = "file"
)

// Config is the root configuration structure for userboard.
//
// It maps directly to the configuration file structure.
// Use [Load], [Parse] or [ParseTOML] to create one.
type Config struct {
	// Title is the page title. Defaults to "User List" if not set.
	Title string `yaml:"title" toml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port" toml:"port"`

	// Layout is "cards" (the default) or "table".
	Layout string `yaml:"layout" toml:"layout"`

	// RefreshInterval refetches users automatically when set.
	// Accepts duration strings like "30s" or "5m". Must be at least 1s.
	RefreshInterval Duration `yaml:"refresh_interval" toml:"refresh_interval"`

	// InitialState holds extra fields merged into the board's first state.
	// Keys the board manages itself are rejected.
	InitialState map[string]any `yaml:"initial_state" toml:"initial_state"`

	// Source selects where users come from.
	Source SourceConfig `yaml:"source" toml:"source"`
}

// SourceConfig defines the user source. Which fields apply depends on Type.
type SourceConfig struct {
	// Type is "simulated" (the default), "http" or "file".
	Type string `yaml:"type" toml:"type"`

	// URL is the API endpoint (type: http).
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url" toml:"url"`

	// Method is GET (the default) or POST (type: http).
	Method string `yaml:"method" toml:"method"`

	// Headers are custom HTTP headers sent with each request (type: http).
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers" toml:"headers"`

	// Timeout is the request timeout (type: http). Defaults to 10s.
	Timeout Duration `yaml:"timeout" toml:"timeout"`

	// RecordsPath is the dot path to the user array in the response
	// (type: http). Empty means the response is the array.
	RecordsPath string `yaml:"records_path" toml:"records_path"`

	// Path is the YAML or JSON data file (type: file). Relative paths are
	// resolved against the working directory. Supports substitution.
	Path string `yaml:"path" toml:"path"`

	// Delay is the artificial latency (type: simulated). Defaults to 1s.
	Delay Duration `yaml:"delay" toml:"delay"`

	// Users replaces the sample dataset (type: simulated).
	Users []userboard.User `yaml:"users" toml:"users"`
}

// Duration wraps time.Duration for YAML, TOML and environment decoding.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration. TOML and
// environment overrides decode through it.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envOverrides lists the settings that environment variables may override.
type envOverrides struct {
	Title           string   `env:"TITLE"`
	Port            int      `env:"PORT"`
	Layout          string   `env:"LAYOUT"`
	RefreshInterval Duration `env:"REFRESH_INTERVAL"`
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a configuration file.
//
// Files with a .toml extension are parsed as TOML, all others as YAML.
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment overrides are applied, then defaults, then environment
// variables are expanded in the source URL, headers and path.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return finish(&cfg)
}

// ParseTOML parses TOML configuration data. It otherwise behaves like
// [Parse].
func ParseTOML(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Layout == "" {
		cfg.Layout = defaultLayout
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = SourceSimulated
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays USERBOARD_* environment variables. Unset or empty
// variables leave the file's value in place.
func (c *Config) applyEnv() error {
	o := envOverrides{
		Title:           c.Title,
		Port:            c.Port,
		Layout:          c.Layout,
		RefreshInterval: c.RefreshInterval,
	}
	if err := env.ParseWithOptions(&o, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}

	c.Title = o.Title
	c.Port = o.Port
	c.Layout = o.Layout
	c.RefreshInterval = o.RefreshInterval
	return nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Layout != "cards" && c.Layout != "table" {
		return fmt.Errorf("layout must be \"cards\" or \"table\", got %q", c.Layout)
	}

	if c.RefreshInterval != 0 && c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}

	for _, key := range []string{
		userboard.KeyUsers,
		userboard.KeyLoading,
		userboard.KeyTransformed,
		userboard.KeyError,
		userboard.KeyFetchedAt,
	} {
		if _, ok := c.InitialState[key]; ok {
			return fmt.Errorf("initial_state: key %q is managed by the board", key)
		}
	}

	return c.Source.expandAndValidate()
}

func (s *SourceConfig) expandAndValidate() error {
	switch s.Type {
	case SourceSimulated:
		if err := s.rejectFields("url", "method", "headers", "timeout", "records_path", "path"); err != nil {
			return err
		}
		if s.Delay.Duration() < 0 {
			return fmt.Errorf("source: delay cannot be negative, got %s", s.Delay.Duration())
		}
		return nil

	case SourceHTTP:
		if err := s.rejectFields("path", "delay", "users"); err != nil {
			return err
		}
		return s.validateHTTP()

	case SourceFile:
		if err := s.rejectFields("url", "method", "headers", "timeout", "records_path", "delay", "users"); err != nil {
			return err
		}
		if s.Path == "" {
			return errors.New("source: path is required for type file")
		}
		expanded, err := expandEnvVars(s.Path)
		if err != nil {
			return fmt.Errorf("source: path: %w", err)
		}
		s.Path = expanded
		return nil

	default:
		return fmt.Errorf("source: unknown type %q (expected simulated, http or file)", s.Type)
	}
}

func (s *SourceConfig) validateHTTP() error {
	if s.URL == "" {
		return errors.New("source: url is required for type http")
	}
	expanded, err := expandEnvVars(s.URL)
	if err != nil {
		return fmt.Errorf("source: url: %w", err)
	}
	s.URL = expanded

	parsedURL, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("source: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return errors.New("source: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("source: url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range s.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("source: headers[%s]: %w", k, err)
		}
		s.Headers[k] = expanded
	}

	if s.Method != "" && s.Method != "GET" && s.Method != "POST" {
		return errors.New("source: method must be GET or POST")
	}

	if s.Timeout != 0 {
		if s.Timeout.Duration() < 0 {
			return fmt.Errorf("source: timeout cannot be negative, got %s", s.Timeout.Duration())
		}
		if s.Timeout.Duration() < time.Second {
			return fmt.Errorf("source: timeout must be at least 1s if specified, got %s", s.Timeout.Duration())
		}
	}

	if s.RecordsPath != "" {
		for _, part := range strings.Split(s.RecordsPath, ".") {
			if part == "" {
				return fmt.Errorf("source: records_path %q has an empty segment", s.RecordsPath)
			}
		}
	}

	return nil
}

// rejectFields fails if any of the named fields is set, since they belong to
// a different source type.
func (s *SourceConfig) rejectFields(names ...string) error {
	set := map[string]bool{
		"url":          s.URL != "",
		"method":       s.Method != "",
		"headers":      len(s.Headers) > 0,
		"timeout":      s.Timeout != 0,
		"records_path": s.RecordsPath != "",
		"path":         s.Path != "",
		"delay":        s.Delay != 0,
		"users":        s.Users != nil,
	}
	for _, name := range names {
		if set[name] {
			return fmt.Errorf("source: %s is not valid for type %s", name, s.Type)
		}
	}
	return nil
}
