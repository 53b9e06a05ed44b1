package config

const (
	defaultStateDir = "~/.local/share/podscout"
	defaultLogDir   = "~/.local/share/podscout/logs"

	defaultYouTubeBaseURL  = "https://www.googleapis.com/youtube/v3"
	defaultDailyQuota      = 95
	defaultResultsPerQuery = 3
	defaultMaxKeywords     = 3
	defaultTotalLimit      = 6
	defaultQuerySuffix     = "podcast"
	defaultDurationFilter  = "long"
	defaultYouTubeTimeout  = 15

	defaultCacheBackend  = "file"
	defaultCacheTTLHours = 24

	defaultStreamsBaseURL = "http://127.0.0.1:8090"
	defaultStreamsTimeout = 30

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/podscout/podscout"
	defaultLLMTitle          = "Podscout Keyword Extractor"
	defaultLLMTimeoutSeconds = 60

	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:         defaultYouTubeBaseURL,
			DailyQuota:      defaultDailyQuota,
			ResultsPerQuery: defaultResultsPerQuery,
			MaxKeywords:     defaultMaxKeywords,
			TotalLimit:      defaultTotalLimit,
			QuerySuffix:     defaultQuerySuffix,
			DurationFilter:  defaultDurationFilter,
			TimeoutSeconds:  defaultYouTubeTimeout,
		},
		SearchCache: SearchCache{
			Backend:  defaultCacheBackend,
			TTLHours: defaultCacheTTLHours,
		},
		Streams: Streams{
			BaseURL:        defaultStreamsBaseURL,
			TimeoutSeconds: defaultStreamsTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
