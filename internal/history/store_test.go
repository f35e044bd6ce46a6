package history

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryKV(), slog.Default())
}

func TestStore_AddDedupesAndMovesToFront(t *testing.T) {
	s := newTestStore(t)
	base := time.UnixMilli(1_700_000_000_000)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	require.NoError(t, s.Add("https://example.com"))
	require.NoError(t, s.Add("https://other.com"))
	require.NoError(t, s.Add("https://example.com"))

	entries := s.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://example.com", entries[0].URL)
	assert.Equal(t, "https://other.com", entries[1].URL)
	// Re-adding refreshed the timestamp.
	assert.Greater(t, entries[0].Timestamp, entries[1].Timestamp)
}

func TestStore_CapsAtFive(t *testing.T) {
	s := newTestStore(t)
	urls := []string{
		"https://a.example", "https://b.example", "https://c.example",
		"https://d.example", "https://e.example", "https://f.example",
	}
	for _, u := range urls {
		require.NoError(t, s.Add(u))
	}

	entries := s.List()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "https://f.example", entries[0].URL)
	assert.Equal(t, "https://b.example", entries[MaxEntries-1].URL)
	for _, e := range entries {
		assert.NotEqual(t, "https://a.example", e.URL)
	}
}

func TestStore_PersistsAcrossReload(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv, slog.Default())
	require.NoError(t, s.Add("https://example.com"))

	reloaded := NewStore(kv, slog.Default())
	entries := reloaded.List()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://example.com", entries[0].URL)
}

func TestStore_ClearRemovesPersistedRecord(t *testing.T) {
	kv := NewMemoryKV()
	s := NewStore(kv, slog.Default())
	require.NoError(t, s.Add("https://example.com"))
	require.NoError(t, s.Clear())

	assert.Empty(t, s.List())
	_, ok, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptRecordStartsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(storageKey, []byte("{not json")))

	s := NewStore(kv, slog.Default())
	assert.Empty(t, s.List())
}

func TestSQLiteKV_RoundTrip(t *testing.T) {
	kv, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer kv.Close()

	_, ok, err := kv.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set("k", []byte("v1")))
	require.NoError(t, kv.Set("k", []byte("v2")))

	got, ok, err := kv.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, kv.Delete("k"))
	_, ok, err = kv.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SQLiteBacked(t *testing.T) {
	kv, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer kv.Close()

	s := NewStore(kv, slog.Default())
	require.NoError(t, s.Add("https://example.com"))
	require.NoError(t, s.Add("https://other.com"))

	reloaded := NewStore(kv, slog.Default())
	entries := reloaded.List()
	require.Len(t, entries, 2)
	assert.Equal(t, "https://other.com", entries[0].URL)
}
