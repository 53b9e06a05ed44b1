package searchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"podscout/internal/logging"
	"podscout/internal/media"
)

// FileStore persists the cache as a single JSON file. The full mapping is
// loaded into memory at construction and rewritten atomically on every
// mutation. A missing or corrupt file starts an empty cache.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	entries map[string]Entry
}

// FileStoreOption customizes a FileStore.
type FileStoreOption func(*FileStore)

// WithFileStoreNow overrides the clock used to stamp entries.
func WithFileStoreNow(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore creates a file-backed store at path. If path is empty, the
// store is memory-only (nothing survives the process).
func NewFileStore(path string, logger *slog.Logger, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "searchcache"),
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != "" {
		if err := s.load(); err != nil {
			s.logger.Warn("failed to load query cache, starting empty",
				logging.Error(err),
				logging.String("path", path))
		}
	}
	return s
}

// Get returns the stored entry for key, fresh or stale.
func (s *FileStore) Get(_ context.Context, key string) (Entry, bool) {
	key = NormalizeKey(key)
	if key == "" {
		return Entry{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.entries[key]
	return entry, found
}

// Put stores results under key with FetchedAt set to now, overwriting any
// prior entry, and persists the full mapping.
func (s *FileStore) Put(_ context.Context, key string, results []media.Candidate) error {
	key = NormalizeKey(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Key:       key,
		Results:   append([]media.Candidate(nil), results...),
		FetchedAt: s.now(),
	}

	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	s.logger.Debug("cached query results",
		logging.String("key", key),
		logging.Int("result_count", len(results)))
	return nil
}

// Keys returns all cache keys, newest entry first.
func (s *FileStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FetchedAt.After(entries[j].FetchedAt)
	})

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	return keys, nil
}

// Clear removes all entries and persists the empty cache.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.logger.Debug("cleared query cache")
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	s.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			s.entries[entry.Key] = entry
		}
	}

	s.logger.Debug("loaded query cache",
		logging.Int("entry_count", len(s.entries)),
		logging.String("path", s.path))
	return nil
}

// save writes the cache to disk atomically. Callers must hold s.mu.
func (s *FileStore) save() error {
	if s.path == "" {
		return nil
	}

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FetchedAt.After(entries[j].FetchedAt)
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
