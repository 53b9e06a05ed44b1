package searchcache

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"podscout/internal/media"
)

// Entry is one cached query result set.
type Entry struct {
	Key       string            `json:"key"`
	Results   []media.Candidate `json:"results"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Fresh reports whether the entry is within the freshness window. Stale
// entries stay in the store until a fresh fetch overwrites them; they are
// simply never served as fresh.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if e.FetchedAt.IsZero() {
		return false
	}
	return now.Sub(e.FetchedAt) < ttl
}

// Age returns how long ago the entry was fetched.
func (e Entry) Age(now time.Time) time.Duration {
	if e.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(e.FetchedAt)
}

// Store is the persistent query cache. Get returns whatever is stored for
// the key regardless of freshness; freshness is the caller's decision. Put
// overwrites any prior entry and stamps FetchedAt. Implementations persist
// on every Put; concurrent writers race last-write-wins.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Put(ctx context.Context, key string, results []media.Candidate) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}

var keyFolder = cases.Fold()

// NormalizeKey derives the cache key for a raw query string: trimmed,
// inner whitespace collapsed, Unicode case-folded. Semantically identical
// queries collide on the same key.
func NormalizeKey(raw string) string {
	collapsed := strings.Join(strings.Fields(strings.TrimSpace(raw)), " ")
	return keyFolder.String(collapsed)
}
