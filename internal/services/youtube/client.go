package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"podscout/internal/logging"
	"podscout/internal/media"
	"podscout/internal/services"
)

const (
	defaultBaseURL         = "https://www.googleapis.com/youtube/v3"
	defaultHTTPTimeout     = 10 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 4 * time.Second
	defaultRetryMaxDelay   = 10 * time.Second
	defaultResultsPerQuery = 3

	// Restricting the response to the fields we read keeps the payload small.
	searchFields = "items(id/videoId,snippet/title,snippet/description,snippet/channelTitle)"
)

// Config captures the runtime settings required to talk to the search API.
type Config struct {
	APIKey          string
	BaseURL         string
	ResultsPerQuery int
	DurationFilter  string
	TimeoutSeconds  int
}

// Meter accounts external API calls against a daily budget. A nil Meter
// disables accounting entirely.
type Meter interface {
	CanSpend() bool
	Record() error
}

// Client wraps the YouTube Data API v3 search endpoint with retry and
// quota accounting.
type Client struct {
	cfg        Config
	meter      Meter
	httpClient *http.Client
	logger     *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a search client using the supplied configuration.
func NewClient(cfg Config, meter Meter, logger *slog.Logger, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		cfg: Config{
			APIKey:          strings.TrimSpace(cfg.APIKey),
			BaseURL:         strings.TrimSpace(cfg.BaseURL),
			ResultsPerQuery: cfg.ResultsPerQuery,
			DurationFilter:  strings.TrimSpace(cfg.DurationFilter),
			TimeoutSeconds:  cfg.TimeoutSeconds,
		},
		meter:            meter,
		httpClient:       &http.Client{Timeout: timeout},
		logger:           logger,
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.ResultsPerQuery <= 0 {
		client.cfg.ResultsPerQuery = defaultResultsPerQuery
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Search issues a video search for the supplied query and returns the
// candidates in API order. Only transient failures are retried; quota and
// malformed-response failures surface immediately with their marker so
// callers can branch with errors.Is.
func (c *Client) Search(ctx context.Context, query string) ([]media.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "search", "query required", nil)
	}
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "search", "api key required", nil)
	}
	if c.meter != nil && !c.meter.CanSpend() {
		return nil, services.Wrap(services.ErrQuotaExhausted, "youtube", "search", "daily quota exhausted", nil)
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		results, err := c.searchOnce(ctx, query)
		if err == nil {
			return results, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return nil, err
		}
		c.logger.Warn("search attempt failed, retrying",
			logging.String("query", query),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("youtube search: failed after %d attempts: %w", attempts, lastErr)
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *Client) searchOnce(ctx context.Context, query string) ([]media.Candidate, error) {
	endpoint, err := c.searchURL(query)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "search", "build url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "search", "new request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The request never produced a response, so nothing is charged
		// against the quota.
		return nil, services.Wrap(services.ErrTransient, "youtube", "search", "http error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return nil, services.Wrap(services.ErrQuotaExhausted, "youtube", "search",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	c.recordSpend()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "youtube", "search", "read body", err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, services.Wrap(services.ErrTransient, "youtube", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body)), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, services.Wrap(services.ErrMalformed, "youtube", "search",
			fmt.Sprintf("http %d: %s", resp.StatusCode, summarizeBody(body)), nil)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "youtube", "search", "decode response", err)
	}
	results := make([]media.Candidate, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		candidate := media.Candidate{
			VideoID:     strings.TrimSpace(item.ID.VideoID),
			Title:       strings.TrimSpace(item.Snippet.Title),
			Description: item.Snippet.Description,
			Channel:     strings.TrimSpace(item.Snippet.ChannelTitle),
		}
		if !candidate.Valid() {
			continue
		}
		results = append(results, candidate)
	}
	return results, nil
}

// recordSpend charges one call against the meter. A response was already
// received at this point, so a full budget only gets logged.
func (c *Client) recordSpend() {
	if c.meter == nil {
		return
	}
	if err := c.meter.Record(); err != nil {
		c.logger.Warn("quota accounting failed", logging.Error(err))
	}
}

func (c *Client) searchURL(query string) (string, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	endpoint := base.JoinPath("search")
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	if c.cfg.DurationFilter != "" && c.cfg.DurationFilter != "any" {
		params.Set("videoDuration", c.cfg.DurationFilter)
	}
	params.Set("maxResults", strconv.Itoa(c.cfg.ResultsPerQuery))
	params.Set("fields", searchFields)
	params.Set("key", c.cfg.APIKey)
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts {
		return 0, false
	}
	if err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if !errors.Is(err, services.ErrTransient) {
		return 0, false
	}
	return c.backoffDelay(attempt), true
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	maxDelay := c.retryMaxDelay
	if base <= 0 {
		return 0
	}
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func summarizeBody(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
