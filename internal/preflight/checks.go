package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"podscout/internal/config"
	"podscout/internal/quota"
	"podscout/internal/services/llm"
	"podscout/internal/streams"
)

// minFreeBytes is the floor below which the state directory's filesystem is
// considered too full for cache and state writes.
const minFreeBytes = 64 * 1024 * 1024

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding the state directory has
// room left for cache and quota writes.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (only %d MiB free)", path, free/(1024*1024))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free/(1024*1024))}
}

// CheckSearchProvider verifies the search API is configured. No request is
// issued because every search call costs daily quota.
func CheckSearchProvider(cfg config.YouTube) Result {
	const name = "Search provider"
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}
	return Result{Name: name, Passed: true, Detail: "API key configured"}
}

// CheckQuota reports today's remaining search budget.
func CheckQuota(tracker *quota.Tracker) Result {
	const name = "Daily quota"
	if tracker == nil {
		return Result{Name: name, Detail: "tracker unavailable"}
	}
	remaining := tracker.Remaining()
	detail := fmt.Sprintf("%d of %d calls remaining", remaining, tracker.Budget())
	if remaining == 0 {
		return Result{Name: name, Detail: detail + " (exhausted until tomorrow)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckMediaInfo verifies the media-info service is reachable.
func CheckMediaInfo(ctx context.Context, cfg config.Streams) Result {
	const name = "Media-info service"
	if cfg.BaseURL == "" {
		return Result{Name: name, Detail: "base url missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	provider := streams.NewProvider(streams.ProviderConfig{BaseURL: cfg.BaseURL, TimeoutSeconds: 5})
	if err := provider.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
