package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"podscout/internal/media"
	"podscout/internal/searchcache"
)

type stubSearcher struct {
	results map[string][]media.Candidate
	errs    map[string]error
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]media.Candidate, error) {
	s.queries = append(s.queries, query)
	if err, ok := s.errs[query]; ok {
		return nil, err
	}
	return s.results[query], nil
}

func candidates(ids ...string) []media.Candidate {
	out := make([]media.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, media.Candidate{VideoID: id, Title: "Episode " + id, Channel: "Channel"})
	}
	return out
}

func memoryStore() *searchcache.FileStore {
	return searchcache.NewFileStore("", nil)
}

func TestRecommendMergesKeywordResults(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": candidates("a", "b"),
		"salary podcast":    candidates("c"),
	}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil)

	got := agg.Recommend(context.Background(), []string{"interview", "salary"})
	if len(got) != 3 {
		t.Fatalf("result count = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].VideoID != want {
			t.Errorf("result %d = %q, want %q", i, got[i].VideoID, want)
		}
	}
}

func TestRecommendUsesOnlyFirstKeywords(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil, WithMaxKeywords(3))

	agg.Recommend(context.Background(), []string{"one", "two", "three", "four", "five"})
	if len(searcher.queries) != 3 {
		t.Fatalf("queries = %v, want 3 entries", searcher.queries)
	}
	for _, query := range searcher.queries {
		if query == "four podcast" || query == "five podcast" {
			t.Errorf("keyword past the limit was queried: %q", query)
		}
	}
}

func TestRecommendQueriesDuplicateKeywordsOnce(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": candidates("a"),
	}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil)

	got := agg.Recommend(context.Background(), []string{"Interview", "  interview ", "INTERVIEW"})
	if len(searcher.queries) != 1 {
		t.Errorf("queries = %v, want exactly 1", searcher.queries)
	}
	if len(got) != 1 {
		t.Errorf("result count = %d, want 1", len(got))
	}
}

func TestRecommendDeduplicatesByVideoID(t *testing.T) {
	first := candidates("a", "b")
	first[0].Title = "First Sighting"
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": first,
		"salary podcast":    candidates("a", "c"),
	}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil)

	got := agg.Recommend(context.Background(), []string{"interview", "salary"})
	if len(got) != 3 {
		t.Fatalf("result count = %d, want 3", len(got))
	}
	if got[0].VideoID != "a" || got[0].Title != "First Sighting" {
		t.Errorf("first occurrence must win, got %+v", got[0])
	}
	if got[1].VideoID != "b" || got[2].VideoID != "c" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestRecommendHonorsTotalLimit(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"one podcast": candidates("a", "b", "c"),
		"two podcast": candidates("d", "e", "f"),
	}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil, WithTotalLimit(4))

	got := agg.Recommend(context.Background(), []string{"one", "two", "three"})
	if len(got) != 4 {
		t.Fatalf("result count = %d, want 4", len(got))
	}
	// the limit was hit inside the second keyword, so the third is never searched
	if len(searcher.queries) != 2 {
		t.Errorf("queries = %v, want 2 entries", searcher.queries)
	}
}

func TestRecommendStopsSearchingAtExactLimit(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"one podcast": candidates("a", "b"),
		"two podcast": candidates("c"),
	}}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil, WithTotalLimit(2))

	got := agg.Recommend(context.Background(), []string{"one", "two"})
	if len(got) != 2 {
		t.Fatalf("result count = %d, want 2", len(got))
	}
	// the first keyword filled the limit, so no further search may spend quota
	if len(searcher.queries) != 1 {
		t.Errorf("queries = %v, want only the first keyword", searcher.queries)
	}
}

func TestRecommendDoesNotCacheEmptyResults(t *testing.T) {
	store := memoryStore()
	searcher := &stubSearcher{results: map[string][]media.Candidate{}}
	agg := NewAggregator(store, time.Hour, searcher, nil)
	ctx := context.Background()

	agg.Recommend(ctx, []string{"golang"})
	if _, found := store.Get(ctx, "golang podcast"); found {
		t.Error("empty search success must not be written to the cache")
	}

	agg.Recommend(ctx, []string{"golang"})
	if len(searcher.queries) != 2 {
		t.Errorf("queries = %v, want 2 (empty result must not suppress re-querying)", searcher.queries)
	}
}

func TestRecommendServesFreshCacheWithoutSearching(t *testing.T) {
	store := memoryStore()
	ctx := context.Background()
	if err := store.Put(ctx, "interview podcast", candidates("cached")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	searcher := &stubSearcher{}
	agg := NewAggregator(store, time.Hour, searcher, nil)

	got := agg.Recommend(ctx, []string{"interview"})
	if len(searcher.queries) != 0 {
		t.Errorf("queries = %v, want none (fresh cache must short-circuit)", searcher.queries)
	}
	if len(got) != 1 || got[0].VideoID != "cached" {
		t.Errorf("results = %+v", got)
	}
}

func TestRecommendRefreshesStaleCacheEntries(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	store := searchcache.NewFileStore("", nil, searchcache.WithFileStoreNow(func() time.Time { return past }))
	ctx := context.Background()
	if err := store.Put(ctx, "interview podcast", candidates("stale")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": candidates("fresh"),
	}}
	agg := NewAggregator(store, 24*time.Hour, searcher, nil)

	got := agg.Recommend(ctx, []string{"interview"})
	if len(searcher.queries) != 1 {
		t.Errorf("queries = %v, want 1 (stale entry must be refreshed)", searcher.queries)
	}
	if len(got) != 1 || got[0].VideoID != "fresh" {
		t.Errorf("results = %+v", got)
	}
}

func TestRecommendCachesSearchResults(t *testing.T) {
	store := memoryStore()
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": candidates("a"),
	}}
	agg := NewAggregator(store, time.Hour, searcher, nil)
	ctx := context.Background()

	agg.Recommend(ctx, []string{"interview"})
	agg.Recommend(ctx, []string{"interview"})
	if len(searcher.queries) != 1 {
		t.Errorf("queries = %v, want 1 (second call must hit the cache)", searcher.queries)
	}
}

func TestRecommendAbsorbsSearchFailures(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string][]media.Candidate{
			"salary podcast": candidates("c"),
		},
		errs: map[string]error{
			"interview podcast": errors.New("search exploded"),
		},
	}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil)

	got := agg.Recommend(context.Background(), []string{"interview", "salary"})
	if len(got) != 1 || got[0].VideoID != "c" {
		t.Errorf("results = %+v, want the surviving keyword's candidate", got)
	}
}

func TestRecommendEmptyKeywords(t *testing.T) {
	agg := NewAggregator(memoryStore(), time.Hour, &stubSearcher{}, nil)
	if got := agg.Recommend(context.Background(), nil); len(got) != 0 {
		t.Errorf("results = %+v, want empty", got)
	}
	if got := agg.Recommend(context.Background(), []string{"  ", ""}); len(got) != 0 {
		t.Errorf("results = %+v, want empty", got)
	}
}

func TestRecommendWithoutStore(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]media.Candidate{
		"interview podcast": candidates("a"),
	}}
	agg := NewAggregator(nil, time.Hour, searcher, nil)

	got := agg.Recommend(context.Background(), []string{"interview"})
	if len(got) != 1 {
		t.Fatalf("result count = %d, want 1", len(got))
	}
}

func TestRecommendQuerySuffix(t *testing.T) {
	searcher := &stubSearcher{}
	agg := NewAggregator(memoryStore(), time.Hour, searcher, nil, WithQuerySuffix(""))
	agg.Recommend(context.Background(), []string{"interview"})
	if len(searcher.queries) != 1 || searcher.queries[0] != "interview" {
		t.Fatalf("queries = %v, want bare keyword", searcher.queries)
	}

	suffix := &stubSearcher{}
	agg = NewAggregator(memoryStore(), time.Hour, suffix, nil)
	agg.Recommend(context.Background(), []string{"  deep   work "})
	if len(suffix.queries) != 1 || suffix.queries[0] != "deep work podcast" {
		t.Fatalf("queries = %v, want normalized keyword with suffix", suffix.queries)
	}
}
