package searchcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"podscout/internal/logging"
	"podscout/internal/media"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_cache (
    key          TEXT PRIMARY KEY,
    fetched_at   TEXT NOT NULL,
    results_json TEXT NOT NULL
);
`

// SQLiteStore persists the cache in a SQLite database. Unlike the file
// store it does not hold the mapping in memory, so large caches stay cheap.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// SQLiteStoreOption customizes a SQLiteStore.
type SQLiteStoreOption func(*SQLiteStore)

// WithSQLiteStoreNow overrides the clock used to stamp entries.
func WithSQLiteStoreNow(now func() time.Time) SQLiteStoreOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// OpenSQLiteStore initializes or connects to the cache database at path.
func OpenSQLiteStore(path string, logger *slog.Logger, opts ...SQLiteStoreOption) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "searchcache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Get returns the stored entry for key, fresh or stale. Row corruption is
// treated as a miss, not a failure.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool) {
	key = NormalizeKey(key)
	if key == "" {
		return Entry{}, false
	}

	var fetchedAt, resultsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, results_json FROM search_cache WHERE key = ?`, key,
	).Scan(&fetchedAt, &resultsJSON)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("cache lookup failed", logging.Error(err), logging.String("key", key))
		}
		return Entry{}, false
	}

	stamp, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		s.logger.Warn("cache entry has invalid timestamp, treating as miss",
			logging.String("key", key),
			logging.String("fetched_at", fetchedAt))
		return Entry{}, false
	}

	var results []media.Candidate
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		s.logger.Warn("cache entry has invalid payload, treating as miss",
			logging.Error(err),
			logging.String("key", key))
		return Entry{}, false
	}

	return Entry{Key: key, Results: results, FetchedAt: stamp}, true
}

// Put stores results under key, overwriting any prior entry.
func (s *SQLiteStore) Put(ctx context.Context, key string, results []media.Candidate) error {
	key = NormalizeKey(key)
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO search_cache (key, fetched_at, results_json) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET fetched_at = excluded.fetched_at, results_json = excluded.results_json`,
		key,
		s.now().UTC().Format(time.RFC3339Nano),
		string(resultsJSON),
	)
	if err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	s.logger.Debug("cached query results",
		logging.String("key", key),
		logging.Int("result_count", len(results)))
	return nil
}

// Keys returns all cache keys, newest entry first.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM search_cache ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache keys: %w", err)
	}
	return keys, nil
}

// Clear removes all entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_cache`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	s.logger.Debug("cleared query cache")
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
