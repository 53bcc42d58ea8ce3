package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/iishyfishyy/recoforge/internal/config"
)

const (
	HistoryFileName = "history.json"

	// MaxEntries bounds the history file; older entries are dropped first
	MaxEntries = 500
)

// Query modes recorded in entries
const (
	ModeDescribe = "describe"
	ModeSimilar  = "similar"
)

// Entry represents a single answered query
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode"`
	Query     string    `json:"query"`
	Tags      string    `json:"tags"`
	K         int       `json:"k"`
	Catalog   string    `json:"catalog,omitempty"`
	Results   []string  `json:"results"`
}

// History manages query history
type History struct {
	Entries []Entry `json:"entries"`

	path string
}

// GetHistoryPath returns the path to the history file
func GetHistoryPath() (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

// Load reads the history from its default location
func Load() (*History, error) {
	historyPath, err := GetHistoryPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(historyPath)
}

// LoadFrom reads the history at path. A missing file is an empty history.
func LoadFrom(historyPath string) (*History, error) {
	hist := &History{Entries: []Entry{}, path: historyPath}

	data, err := os.ReadFile(historyPath)
	if os.IsNotExist(err) {
		return hist, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	if err := json.Unmarshal(data, hist); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if hist.Entries == nil {
		hist.Entries = []Entry{}
	}
	return hist, nil
}

// Path returns the file this history is stored in
func (h *History) Path() string {
	return h.path
}

// Save writes the history to disk while holding the history lock
func (h *History) Save() error {
	return withLock(h.path, func() error {
		return h.write()
	})
}

// Record appends entry to the file on disk. The file is re-read under the
// lock so entries written by other processes are kept.
func (h *History) Record(entry Entry) error {
	return withLock(h.path, func() error {
		current, err := LoadFrom(h.path)
		if err != nil {
			return err
		}
		current.Add(entry)
		h.Entries = current.Entries
		return h.write()
	})
}

func (h *History) write() error {
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmp := h.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	if err := os.Rename(tmp, h.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

func withLock(historyPath string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(historyPath), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	lock := flock.New(historyPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock history: %w", err)
	}
	defer lock.Unlock()

	return fn()
}

// Add appends an entry in memory, filling in ID and timestamp when unset
func (h *History) Add(entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	h.Entries = append(h.Entries, entry)
	if over := len(h.Entries) - MaxEntries; over > 0 {
		h.Entries = append([]Entry(nil), h.Entries[over:]...)
	}
}

// Recent returns up to n entries, newest first. n < 1 returns all of them.
func (h *History) Recent(n int) []Entry {
	if n < 1 || n > len(h.Entries) {
		n = len(h.Entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.Entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.Entries[i])
	}
	return out
}

// Clear removes every entry in memory; call Save to persist
func (h *History) Clear() {
	h.Entries = []Entry{}
}

// NewEntry creates a new history entry
func NewEntry(mode, query, tags string, k int, results []string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Mode:      mode,
		Query:     query,
		Tags:      tags,
		K:         k,
		Results:   results,
	}
}
