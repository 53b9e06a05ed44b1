package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// StateDir holds the durable pipeline state: quota counter, query cache
	// and the state lock file.
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// YouTube contains configuration for the YouTube Data API search provider.
type YouTube struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	DailyQuota      int    `toml:"daily_quota"`
	ResultsPerQuery int    `toml:"results_per_query"`
	MaxKeywords     int    `toml:"max_keywords"`
	TotalLimit      int    `toml:"total_limit"`
	QuerySuffix     string `toml:"query_suffix"`
	DurationFilter  string `toml:"duration_filter"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// SearchCache contains configuration for the persistent query cache.
type SearchCache struct {
	Backend  string `toml:"backend"` // "file" or "sqlite"
	Path     string `toml:"path"`    // defaults under state_dir
	TTLHours int    `toml:"ttl_hours"`
}

// Streams contains configuration for the media-info provider used to
// resolve playable audio URLs.
type Streams struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains connection settings for the keyword-extraction model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for podscout.
//
// Sections by subsystem:
//   - Paths: state and log directories
//   - YouTube: search provider credentials, limits and daily quota budget
//   - SearchCache: query cache backend, location and freshness TTL
//   - Streams: media-info provider for audio stream resolution
//   - LLM: keyword extraction model connection
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	YouTube     YouTube     `toml:"youtube"`
	SearchCache SearchCache `toml:"search_cache"`
	Streams     Streams     `toml:"streams"`
	LLM         LLM         `toml:"llm"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/podscout/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("podscout.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QuotaStatePath returns the location of the persisted daily quota counter.
func (c *Config) QuotaStatePath() string {
	return filepath.Join(c.Paths.StateDir, "quota_state.json")
}

// CachePath returns the query cache location, deriving a backend-appropriate
// default under the state directory when unset.
func (c *Config) CachePath() string {
	if strings.TrimSpace(c.SearchCache.Path) != "" {
		return c.SearchCache.Path
	}
	if c.SearchCache.Backend == "sqlite" {
		return filepath.Join(c.Paths.StateDir, "search_cache.db")
	}
	return filepath.Join(c.Paths.StateDir, "search_cache.json")
}

// CacheTTL returns the freshness window for cached query results.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.SearchCache.TTLHours) * time.Hour
}

// LockPath returns the state-dir lock file guarding mutating commands.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "podscout.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
