// Package history keeps the short list of recently converted URLs.
package history

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// storageKey is the fixed key the entry list is persisted under.
const storageKey = "recent-urls"

// MaxEntries caps the history at the five most recent URLs.
const MaxEntries = 5

// Entry is a single recent URL with the time it was last generated.
type Entry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Time returns the entry timestamp as a time.Time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Store manages the recent-URL list: newest first, unique by URL, capped
// at MaxEntries. All mutations are persisted through the KV backend.
type Store struct {
	mu      sync.Mutex
	kv      KV
	entries []Entry
	log     *slog.Logger
	now     func() time.Time
}

// NewStore loads the persisted history from kv. A corrupt persisted record
// is non-fatal: the store starts empty and logs a warning.
func NewStore(kv KV, log *slog.Logger) *Store {
	s := &Store{kv: kv, log: log, now: time.Now}
	s.load()
	return s
}

func (s *Store) load() {
	data, ok, err := s.kv.Get(storageKey)
	if err != nil {
		s.log.Warn("loading history", "error", err)
		return
	}
	if !ok {
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("history record is corrupt, starting empty", "error", err)
		return
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	s.entries = entries
}

// Add prepends url with the current timestamp, removes any prior entry with
// the same URL, truncates to MaxEntries and persists the result.
func (s *Store) Add(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, Entry{URL: url, Timestamp: s.now().UnixMilli()})
	for _, e := range s.entries {
		if e.URL == url {
			continue
		}
		next = append(next, e)
	}
	if len(next) > MaxEntries {
		next = next[:MaxEntries]
	}
	s.entries = next
	return s.persist()
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear empties the list and removes the persisted record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return s.kv.Delete(storageKey)
}

func (s *Store) persist() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}
	return s.kv.Set(storageKey, data)
}
