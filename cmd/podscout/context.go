package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"podscout/internal/config"
	"podscout/internal/logging"
	"podscout/internal/quota"
	"podscout/internal/recommend"
	"podscout/internal/searchcache"
	"podscout/internal/services/llm"
	"podscout/internal/services/youtube"
	"podscout/internal/streams"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once, tagging every record of this
// invocation with a fresh request id.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger.With(logging.String(logging.FieldRequestID, uuid.NewString()))
	})
	return c.logger, c.loggerErr
}

// acquireStateLock guards mutating commands against concurrent podscout
// invocations sharing the same state directory. The returned release func
// is safe to call once.
func (c *commandContext) acquireStateLock() (func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another podscout command is using %s", cfg.Paths.StateDir)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}

func (c *commandContext) openStore() (searchcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	cacheLogger := logging.NewComponentLogger(logger, "searchcache")
	if cfg.SearchCache.Backend == "sqlite" {
		return searchcache.OpenSQLiteStore(cfg.CachePath(), cacheLogger)
	}
	return searchcache.NewFileStore(cfg.CachePath(), cacheLogger), nil
}

func (c *commandContext) newTracker() (*quota.Tracker, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return quota.NewTracker(cfg.QuotaStatePath(), cfg.YouTube.DailyQuota, logger), nil
}

func (c *commandContext) newSearchClient(tracker *quota.Tracker) (*youtube.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client := youtube.NewClient(youtube.Config{
		APIKey:          cfg.YouTube.APIKey,
		BaseURL:         cfg.YouTube.BaseURL,
		ResultsPerQuery: cfg.YouTube.ResultsPerQuery,
		DurationFilter:  cfg.YouTube.DurationFilter,
		TimeoutSeconds:  cfg.YouTube.TimeoutSeconds,
	}, tracker, logging.NewComponentLogger(logger, "youtube"))
	return client, nil
}

func (c *commandContext) newAggregator(store searchcache.Store, searcher recommend.Searcher) (*recommend.Aggregator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	agg := recommend.NewAggregator(store, cfg.CacheTTL(), searcher,
		logging.NewComponentLogger(logger, "recommend"),
		recommend.WithMaxKeywords(cfg.YouTube.MaxKeywords),
		recommend.WithTotalLimit(cfg.YouTube.TotalLimit),
		recommend.WithQuerySuffix(cfg.YouTube.QuerySuffix))
	return agg, nil
}

func (c *commandContext) newLLMClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return nil, fmt.Errorf("llm.api_key is not set; configure it (or export OPENROUTER_API_KEY) to extract keywords from a description")
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}), nil
}

func (c *commandContext) newStreamResolver() (*streams.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	provider := streams.NewProvider(streams.ProviderConfig{
		BaseURL:        cfg.Streams.BaseURL,
		TimeoutSeconds: cfg.Streams.TimeoutSeconds,
	})
	return streams.NewResolver(provider, logging.NewComponentLogger(logger, "streams")), nil
}
