package config

import (
	"errors"
	"fmt"
)

var validDurationFilters = map[string]struct{}{
	"any":    {},
	"short":  {},
	"medium": {},
	"long":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateSearchCache(); err != nil {
		return err
	}
	if err := c.validateStreams(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/podscout/config.toml"
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'podscout config init')", defaultPath)
	}
	if _, ok := validDurationFilters[c.YouTube.DurationFilter]; !ok {
		return fmt.Errorf("youtube.duration_filter must be one of any, short, medium, long (got %q)", c.YouTube.DurationFilter)
	}
	return nil
}

func (c *Config) validateSearchCache() error {
	switch c.SearchCache.Backend {
	case "file", "sqlite":
		return nil
	default:
		return fmt.Errorf("search_cache.backend must be \"file\" or \"sqlite\" (got %q)", c.SearchCache.Backend)
	}
}

func (c *Config) validateStreams() error {
	if c.Streams.BaseURL == "" {
		return errors.New("streams.base_url must be set")
	}
	return nil
}
