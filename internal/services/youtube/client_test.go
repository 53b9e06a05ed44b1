package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podscout/internal/services"
)

type fakeMeter struct {
	allow   bool
	records int
}

func (m *fakeMeter) CanSpend() bool { return m.allow }

func (m *fakeMeter) Record() error {
	m.records++
	return nil
}

func newTestClient(baseURL string, meter Meter, opts ...Option) *Client {
	cfg := Config{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		ResultsPerQuery: 3,
		DurationFilter:  "long",
	}
	opts = append([]Option{WithSleeper(func(time.Duration) {})}, opts...)
	return NewClient(cfg, meter, nil, opts...)
}

const searchPayload = `{
	"items": [
		{"id": {"videoId": "vid-1"}, "snippet": {"title": "Negotiation Tactics", "description": "How to negotiate", "channelTitle": "Career Radio"}},
		{"id": {"videoId": "vid-2"}, "snippet": {"title": "Interview Prep", "description": "", "channelTitle": "Hiring Signals"}},
		{"id": {"videoId": ""}, "snippet": {"title": "No ID", "description": "", "channelTitle": "Broken"}}
	]
}`

func TestSearchParsesCandidates(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"part":          q.Get("part"),
			"q":             q.Get("q"),
			"type":          q.Get("type"),
			"videoDuration": q.Get("videoDuration"),
			"maxResults":    q.Get("maxResults"),
			"key":           q.Get("key"),
		}
		fmt.Fprint(w, searchPayload)
	}))
	defer server.Close()

	meter := &fakeMeter{allow: true}
	client := newTestClient(server.URL, meter)

	results, err := client.Search(context.Background(), "interview podcast")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2 (entry without a video id is dropped)", len(results))
	}
	if results[0].VideoID != "vid-1" || results[1].VideoID != "vid-2" {
		t.Errorf("results out of order: %+v", results)
	}
	if results[0].Channel != "Career Radio" {
		t.Errorf("channel = %q, want Career Radio", results[0].Channel)
	}

	want := map[string]string{
		"part":          "snippet",
		"q":             "interview podcast",
		"type":          "video",
		"videoDuration": "long",
		"maxResults":    "3",
		"key":           "test-key",
	}
	for key, value := range want {
		if gotQuery[key] != value {
			t.Errorf("query param %s = %q, want %q", key, gotQuery[key], value)
		}
	}
	if meter.records != 1 {
		t.Errorf("meter records = %d, want 1", meter.records)
	}
}

func TestSearchSkipsRequestWhenBudgetSpent(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, searchPayload)
	}))
	defer server.Close()

	meter := &fakeMeter{allow: false}
	client := newTestClient(server.URL, meter)

	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrQuotaExhausted) {
		t.Fatalf("error = %v, want ErrQuotaExhausted", err)
	}
	if calls != 0 {
		t.Errorf("server calls = %d, want 0 (exhausted budget must not reach the network)", calls)
	}
	if meter.records != 0 {
		t.Errorf("meter records = %d, want 0", meter.records)
	}
}

func TestSearchQuotaStatusesAreNotChargedOrRetried(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusTooManyRequests} {
		t.Run(fmt.Sprintf("http %d", status), func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(status)
			}))
			defer server.Close()

			meter := &fakeMeter{allow: true}
			client := newTestClient(server.URL, meter)

			_, err := client.Search(context.Background(), "interview podcast")
			if !errors.Is(err, services.ErrQuotaExhausted) {
				t.Fatalf("error = %v, want ErrQuotaExhausted", err)
			}
			if calls != 1 {
				t.Errorf("server calls = %d, want 1 (quota failures must not retry)", calls)
			}
			if meter.records != 0 {
				t.Errorf("meter records = %d, want 0 (provider refused the spend)", meter.records)
			}
		})
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, searchPayload)
	}))
	defer server.Close()

	meter := &fakeMeter{allow: true}
	var slept []time.Duration
	client := newTestClient(server.URL, meter,
		WithRetryBackoff(4*time.Second, 10*time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	results, err := client.Search(context.Background(), "interview podcast")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2", len(results))
	}
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
	// each attempt produced a response, so each one is charged
	if meter.records != 3 {
		t.Errorf("meter records = %d, want 3", meter.records)
	}
	wantDelays := []time.Duration{4 * time.Second, 8 * time.Second}
	if len(slept) != len(wantDelays) {
		t.Fatalf("sleep count = %d, want %d", len(slept), len(wantDelays))
	}
	for i, want := range wantDelays {
		if slept[i] != want {
			t.Errorf("delay %d = %s, want %s", i, slept[i], want)
		}
	}
}

func TestSearchGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	meter := &fakeMeter{allow: true}
	client := newTestClient(server.URL, meter)

	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want ErrTransient", err)
	}
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
	if meter.records != 3 {
		t.Errorf("meter records = %d, want 3", meter.records)
	}
}

func TestSearchClientErrorIsMalformedAndFinal(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL, &fakeMeter{allow: true})

	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (client errors must not retry)", calls)
	}
}

func TestSearchUndecodableBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>definitely not json</html>")
	}))
	defer server.Close()

	meter := &fakeMeter{allow: true}
	client := newTestClient(server.URL, meter)

	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
	// a response arrived, so the call still counts against the budget
	if meter.records != 1 {
		t.Errorf("meter records = %d, want 1", meter.records)
	}
}

func TestSearchConnectionFailureIsTransientAndUncharged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	meter := &fakeMeter{allow: true}
	client := newTestClient(server.URL, meter)

	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("error = %v, want ErrTransient", err)
	}
	if meter.records != 0 {
		t.Errorf("meter records = %d, want 0 (no response means no charge)", meter.records)
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{}, nil, nil)
	_, err := client.Search(context.Background(), "interview podcast")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", nil)
	_, err := client.Search(context.Background(), "   ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("error = %v, want ErrConfiguration", err)
	}
}
