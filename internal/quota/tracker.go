package quota

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"podscout/internal/logging"
)

const dayFormat = "2006-01-02"

const defaultBudget = 95

// ErrExhausted is returned by Record once the daily budget is spent.
var ErrExhausted = errors.New("quota: daily budget exhausted")

// State is the persisted daily counter.
type State struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Tracker gates calls to the external search provider against a per-day
// budget. The state file is rewritten after every accepted mutation; a
// missing or corrupt file starts a fresh day. Exhaustion is a signal to fall
// back to cached results, never a fatal condition.
type Tracker struct {
	path   string
	budget int
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	state State
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithNow overrides the clock, used by date-rollover tests.
func WithNow(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker creates a tracker persisting to path with the given daily
// budget. If path is empty the tracker is memory-only.
func NewTracker(path string, budget int, logger *slog.Logger, opts ...Option) *Tracker {
	if budget <= 0 {
		budget = defaultBudget
	}
	t := &Tracker{
		path:   path,
		budget: budget,
		logger: logging.NewComponentLogger(logger, "quota"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if path != "" {
		if err := t.load(); err != nil {
			t.logger.Warn("failed to load quota state, starting fresh",
				logging.Error(err),
				logging.String("path", path))
		}
	}
	return t
}

// Budget returns the configured daily budget.
func (t *Tracker) Budget() int {
	return t.budget
}

// CanSpend reports whether another external call fits in today's budget.
func (t *Tracker) CanSpend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	return t.state.Count < t.budget
}

// Remaining returns the number of calls left in today's budget.
func (t *Tracker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	remaining := t.budget - t.state.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Record accounts one accepted external call and persists the new state.
// It returns ErrExhausted when the budget is already spent.
func (t *Tracker) Record() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	if t.state.Count >= t.budget {
		return ErrExhausted
	}
	t.state.Count++
	t.persistLocked()
	return nil
}

// Reset zeroes today's counter and persists the cleared state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	t.state.Count = 0
	t.persistLocked()
}

// Snapshot returns the current state after applying any day rollover.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollLocked()
	return t.state
}

// rollLocked resets the counter when the stored day is not today.
// Callers must hold t.mu.
func (t *Tracker) rollLocked() {
	today := t.now().Format(dayFormat)
	if t.state.Day == today {
		return
	}
	previous := t.state
	t.state = State{Day: today}
	if previous.Day != "" {
		t.logger.Debug("reset quota counter for new day",
			logging.String("previous_day", previous.Day),
			logging.Int("previous_count", previous.Count))
		t.persistLocked()
	}
}

func (t *Tracker) load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read quota state: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse quota state: %w", err)
	}
	if state.Count < 0 {
		state.Count = 0
	}
	t.state = state
	return nil
}

// persistLocked rewrites the state file atomically. Persistence failures are
// logged and otherwise ignored so quota accounting keeps working in memory.
// Callers must hold t.mu.
func (t *Tracker) persistLocked() {
	if t.path == "" {
		return
	}
	data, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		t.logger.Warn("failed to marshal quota state", logging.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		t.logger.Warn("failed to create state directory", logging.Error(err))
		return
	}
	tmpPath := t.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		t.logger.Warn("failed to write quota state", logging.Error(err))
		return
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		os.Remove(tmpPath)
		t.logger.Warn("failed to replace quota state", logging.Error(err))
	}
}
