package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Entry records a single application removal.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	App        string    `json:"app"`
	BundleID   string    `json:"bundle_id,omitempty"`
	Path       string    `json:"path"`
	Items      int       `json:"items"`
	BytesFreed int64     `json:"bytes_freed"`
	Failures   int       `json:"failures"`
}

// Stats holds aggregate removal statistics.
type Stats struct {
	TotalFreed    int64   `json:"total_freed"`
	TotalRemovals int     `json:"total_removals"`
	TotalItems    int     `json:"total_items"`
	Recent        []Entry `json:"recent"`
}

// History manages the removal log file.
type History struct {
	path string
}

// New creates a new History that reads/writes the given file path.
func New(path string) *History {
	return &History{path: path}
}

// Path returns the backing file.
func (h *History) Path() string {
	return h.path
}

// DefaultPath returns the default history file location:
// ~/.local/share/appsweep/history.json
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.json"
	}
	return filepath.Join(home, ".local", "share", "appsweep", "history.json")
}

// Record appends an entry to the history file. A missing or corrupt file is
// replaced.
func (h *History) Record(e Entry) error {
	entries, err := h.Load()
	if err != nil {
		entries = nil
	}

	entries = append(entries, e)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// Load reads all entries from the history file. A missing file yields an
// error wrapping fs.ErrNotExist.
func (h *History) Load() ([]Entry, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	return entries, nil
}

// Stats computes aggregate statistics. Recent holds up to limit entries,
// newest first.
func (h *History) Stats(limit int) Stats {
	entries, err := h.Load()
	if err != nil || len(entries) == 0 {
		return Stats{Recent: []Entry{}}
	}

	s := Stats{TotalRemovals: len(entries)}
	for _, e := range entries {
		s.TotalFreed += e.BytesFreed
		s.TotalItems += e.Items
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if limit <= 0 || limit > len(sorted) {
		limit = len(sorted)
	}
	s.Recent = sorted[:limit]

	return s
}
