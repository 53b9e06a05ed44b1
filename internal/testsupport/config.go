// Package testsupport provides helpers shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"podscout/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.YouTube.APIKey = "test-key"
	cfg.SearchCache.Backend = "file"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithSearchAPIKey sets the search provider API key on the test config.
func WithSearchAPIKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.YouTube.APIKey = key
	}
}

// WithCacheBackend overrides the query cache backend on the test config.
func WithCacheBackend(backend string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.SearchCache.Backend = backend
	}
}
