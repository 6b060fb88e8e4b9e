// Package store provides the durable price-history store: one JSON file
// mapping calendar dates to per-series prices.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/chineseneo/fuel-bot/internal/common"
)

// DateFormat is the calendar-day key format. ISO-8601 dates sort
// lexicographically in chronological order, so date keys double as sort keys.
const DateFormat = "2006-01-02"

// History is the rolling price history: date -> (display key -> price).
// It is loaded once per run, mutated in memory, pruned, and persisted with a
// single atomic write. Reads are concurrency-safe for the daemon-mode API.
type History struct {
	mu     sync.RWMutex
	path   string
	days   map[string]map[string]float64
	logger *common.Logger
}

// Load reads the history file at path. A missing or corrupt file yields an
// empty store and a warning; it never fails the run.
func Load(path string, logger *common.Logger) *History {
	h := &History{
		path:   path,
		days:   make(map[string]map[string]float64),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("path", path).Msg("history unreadable; starting empty")
		}
		return h
	}

	if err := json.Unmarshal(data, &h.days); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("history corrupt; starting empty")
		h.days = make(map[string]map[string]float64)
		return h
	}

	return h
}

// Record upserts one (date, key) -> price entry. Re-running on the same day
// overwrites the prior value, so repeated runs converge to the latest
// observation.
func (h *History) Record(date, key string, price float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	day, ok := h.days[date]
	if !ok {
		day = make(map[string]float64)
		h.days[date] = day
	}
	day[key] = price
}

// Prune removes all days strictly older than reference - retentionDays.
func (h *History) Prune(retentionDays int, reference time.Time) {
	cutoff := reference.AddDate(0, 0, -retentionDays).Format(DateFormat)

	h.mu.Lock()
	defer h.mu.Unlock()

	for date := range h.days {
		if date < cutoff {
			delete(h.days, date)
		}
	}
}

// Save persists the full store with a single atomic write: marshal to a temp
// file in the same directory, then rename over the target. A crash mid-write
// leaves the previous durable state intact.
func (h *History) Save() error {
	h.mu.RLock()
	data, err := json.MarshalIndent(h.days, "", "  ")
	h.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp history file: %w", err)
	}

	if err := os.Rename(tmpPath, h.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing history file: %w", err)
	}

	h.logger.Debug().Str("path", h.path).Msg("history saved")
	return nil
}

// Dates returns all retained dates in ascending order.
func (h *History) Dates() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dates := make([]string, 0, len(h.days))
	for date := range h.days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Day returns a copy of one day's record.
func (h *History) Day(date string) (map[string]float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	day, ok := h.days[date]
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(day))
	for k, v := range day {
		out[k] = v
	}
	return out, true
}

// Snapshot returns a deep copy of the full store for read-only consumers.
func (h *History) Snapshot() map[string]map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]map[string]float64, len(h.days))
	for date, day := range h.days {
		dayCopy := make(map[string]float64, len(day))
		for k, v := range day {
			dayCopy[k] = v
		}
		out[date] = dayCopy
	}
	return out
}

// Range returns a copy of all days d with from <= d <= to, inclusive.
func (h *History) Range(from, to string) map[string]map[string]float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]map[string]float64)
	for date, day := range h.days {
		if date < from || date > to {
			continue
		}
		dayCopy := make(map[string]float64, len(day))
		for k, v := range day {
			dayCopy[k] = v
		}
		out[date] = dayCopy
	}
	return out
}

// Latest returns the most recent day and its record.
func (h *History) Latest() (string, map[string]float64, bool) {
	dates := h.Dates()
	if len(dates) == 0 {
		return "", nil, false
	}
	latest := dates[len(dates)-1]
	day, _ := h.Day(latest)
	return latest, day, true
}
