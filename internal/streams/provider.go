package streams

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podscout/internal/services"
)

const defaultProviderTimeout = 30 * time.Second

// ProviderConfig captures the runtime settings for the media-info service.
type ProviderConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// Provider fetches media-info documents from the local extractor service.
type Provider struct {
	cfg        ProviderConfig
	httpClient *http.Client
}

// ProviderOption customizes the provider.
type ProviderOption func(*Provider)

// WithProviderHTTPClient overrides the default HTTP client.
func WithProviderHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewProvider constructs a media-info provider.
func NewProvider(cfg ProviderConfig, opts ...ProviderOption) *Provider {
	timeout := defaultProviderTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	provider := &Provider{
		cfg: ProviderConfig{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

// Fetch retrieves the media-info document for one video.
func (p *Provider) Fetch(ctx context.Context, videoID string) (Info, error) {
	var info Info
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return info, services.Wrap(services.ErrConfiguration, "streams", "fetch", "video id required", nil)
	}
	if p.cfg.BaseURL == "" {
		return info, services.Wrap(services.ErrConfiguration, "streams", "fetch", "base url required", nil)
	}
	base, err := url.Parse(p.cfg.BaseURL)
	if err != nil {
		return info, services.Wrap(services.ErrConfiguration, "streams", "fetch", "parse base url", err)
	}
	endpoint := base.JoinPath("info")
	params := url.Values{}
	params.Set("id", videoID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return info, services.Wrap(services.ErrConfiguration, "streams", "fetch", "new request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return info, services.Wrap(services.ErrTransient, "streams", "fetch", "http error", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return info, services.Wrap(services.ErrNotFound, "streams", "fetch", videoID, nil)
	case resp.StatusCode >= http.StatusInternalServerError:
		return info, services.Wrap(services.ErrTransient, "streams", "fetch",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return info, services.Wrap(services.ErrMalformed, "streams", "fetch",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return info, services.Wrap(services.ErrTransient, "streams", "fetch", "read body", err)
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return info, services.Wrap(services.ErrMalformed, "streams", "fetch", "decode response", err)
	}
	return info, nil
}

// Ping verifies the media-info service is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	if p.cfg.BaseURL == "" {
		return services.Wrap(services.ErrConfiguration, "streams", "ping", "base url required", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "streams", "ping", "new request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "streams", "ping", "http error", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return services.Wrap(services.ErrTransient, "streams", "ping",
			fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	return nil
}
