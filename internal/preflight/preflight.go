package preflight

import (
	"context"

	"podscout/internal/config"
	"podscout/internal/quota"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, tracker *quota.Tracker) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDiskSpace("State directory space", cfg.Paths.StateDir))
	results = append(results, CheckSearchProvider(cfg.YouTube))
	results = append(results, CheckQuota(tracker))
	results = append(results, CheckMediaInfo(ctx, cfg.Streams))

	// LLM keyword extraction is optional; only check it when configured.
	if cfg.LLM.APIKey != "" {
		results = append(results, CheckLLM(ctx, "Keyword LLM", cfg.LLM))
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
