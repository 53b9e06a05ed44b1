package recommend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"podscout/internal/logging"
	"podscout/internal/media"
	"podscout/internal/searchcache"
)

const (
	defaultMaxKeywords = 3
	defaultTotalLimit  = 6
	defaultQuerySuffix = "podcast"
	defaultCacheTTL    = 24 * time.Hour
)

// Searcher is the slice of the search client the aggregator needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]media.Candidate, error)
}

// Aggregator fans a keyword list out into cached searches and merges the
// results into a single bounded, deduplicated candidate list.
type Aggregator struct {
	store    searchcache.Store
	ttl      time.Duration
	searcher Searcher
	logger   *slog.Logger

	maxKeywords int
	totalLimit  int
	querySuffix string
	now         func() time.Time
}

// Option customizes the aggregator.
type Option func(*Aggregator)

// WithMaxKeywords bounds how many keywords are considered per call.
func WithMaxKeywords(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxKeywords = n
		}
	}
}

// WithTotalLimit bounds the merged candidate list.
func WithTotalLimit(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.totalLimit = n
		}
	}
}

// WithQuerySuffix overrides the word appended to every keyword query.
func WithQuerySuffix(suffix string) Option {
	return func(a *Aggregator) {
		a.querySuffix = strings.TrimSpace(suffix)
	}
}

// WithNow overrides the clock used for cache freshness (useful for tests).
func WithNow(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAggregator builds an aggregator over the supplied cache and searcher.
// A zero ttl falls back to the 24 hour default.
func NewAggregator(store searchcache.Store, ttl time.Duration, searcher Searcher, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	agg := &Aggregator{
		store:       store,
		ttl:         ttl,
		searcher:    searcher,
		logger:      logger,
		maxKeywords: defaultMaxKeywords,
		totalLimit:  defaultTotalLimit,
		querySuffix: defaultQuerySuffix,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(agg)
	}
	return agg
}

// Recommend resolves candidates for the supplied keywords. Only the first
// few keywords are considered, each keyword's results come from the cache
// when fresh, and the merged list is deduplicated by video id with the
// earliest occurrence winning. Recommend absorbs every per-keyword failure;
// a keyword that cannot be resolved simply contributes nothing.
func (a *Aggregator) Recommend(ctx context.Context, keywords []string) []media.Candidate {
	if len(keywords) > a.maxKeywords {
		keywords = keywords[:a.maxKeywords]
	}

	merged := make([]media.Candidate, 0, a.totalLimit)
	seenIDs := make(map[string]struct{})
	seenKeys := make(map[string]struct{})

	for _, keyword := range keywords {
		if len(merged) >= a.totalLimit {
			break
		}
		query := a.buildQuery(keyword)
		key := searchcache.NormalizeKey(query)
		if key == "" {
			continue
		}
		if _, dup := seenKeys[key]; dup {
			continue
		}
		seenKeys[key] = struct{}{}

		results := a.resolve(ctx, query, key)
		for _, candidate := range results {
			if len(merged) >= a.totalLimit {
				return merged
			}
			if !candidate.Valid() {
				continue
			}
			if _, dup := seenIDs[candidate.VideoID]; dup {
				continue
			}
			seenIDs[candidate.VideoID] = struct{}{}
			merged = append(merged, candidate)
		}
	}
	return merged
}

// resolve returns the candidates for one query, consulting the cache first.
// Only non-empty search successes are written back; an empty response must
// not suppress re-querying for a full TTL.
func (a *Aggregator) resolve(ctx context.Context, query, key string) []media.Candidate {
	if a.store != nil {
		if entry, found := a.store.Get(ctx, key); found && entry.Fresh(a.now(), a.ttl) {
			a.logger.Debug("cache hit",
				logging.String("query", query),
				logging.Int("results", len(entry.Results)))
			return entry.Results
		}
	}
	if a.searcher == nil {
		return nil
	}
	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		a.logger.Warn("search failed, skipping keyword",
			logging.String("query", query),
			logging.Error(err))
		return nil
	}
	if a.store != nil && len(results) > 0 {
		if err := a.store.Put(ctx, key, results); err != nil {
			a.logger.Warn("cache write failed",
				logging.String("query", query),
				logging.Error(err))
		}
	}
	return results
}

func (a *Aggregator) buildQuery(keyword string) string {
	keyword = strings.Join(strings.Fields(keyword), " ")
	if keyword == "" {
		return ""
	}
	if a.querySuffix == "" {
		return keyword
	}
	return keyword + " " + a.querySuffix
}
