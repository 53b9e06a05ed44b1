package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	if err := c.normalizeSearchCache(); err != nil {
		return err
	}
	c.normalizeStreams()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.DailyQuota <= 0 {
		c.YouTube.DailyQuota = defaultDailyQuota
	}
	if c.YouTube.ResultsPerQuery <= 0 {
		c.YouTube.ResultsPerQuery = defaultResultsPerQuery
	}
	if c.YouTube.MaxKeywords <= 0 {
		c.YouTube.MaxKeywords = defaultMaxKeywords
	}
	if c.YouTube.TotalLimit <= 0 {
		c.YouTube.TotalLimit = defaultTotalLimit
	}
	c.YouTube.QuerySuffix = strings.TrimSpace(c.YouTube.QuerySuffix)
	if c.YouTube.QuerySuffix == "" {
		c.YouTube.QuerySuffix = defaultQuerySuffix
	}
	c.YouTube.DurationFilter = strings.ToLower(strings.TrimSpace(c.YouTube.DurationFilter))
	if c.YouTube.DurationFilter == "" {
		c.YouTube.DurationFilter = defaultDurationFilter
	}
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeout
	}
}

func (c *Config) normalizeSearchCache() error {
	c.SearchCache.Backend = strings.ToLower(strings.TrimSpace(c.SearchCache.Backend))
	if c.SearchCache.Backend == "" {
		c.SearchCache.Backend = defaultCacheBackend
	}
	if c.SearchCache.TTLHours <= 0 {
		c.SearchCache.TTLHours = defaultCacheTTLHours
	}
	if strings.TrimSpace(c.SearchCache.Path) != "" {
		var err error
		if c.SearchCache.Path, err = expandPath(c.SearchCache.Path); err != nil {
			return fmt.Errorf("search_cache.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeStreams() {
	c.Streams.BaseURL = strings.TrimRight(strings.TrimSpace(c.Streams.BaseURL), "/")
	if c.Streams.BaseURL == "" {
		c.Streams.BaseURL = defaultStreamsBaseURL
	}
	if c.Streams.TimeoutSeconds <= 0 {
		c.Streams.TimeoutSeconds = defaultStreamsTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("PODSCOUT_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
