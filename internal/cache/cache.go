// Package cache provides the process-wide expiring store for loaded config sources.
package cache

import (
	"sort"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// DefaultTTL is how long a loaded source is served before it is re-read.
const DefaultTTL = 10 * time.Minute

// Store keys loaded values by source and expires them after a fixed TTL.
// Values must be treated as immutable by callers: Put replaces, never merges.
type Store interface {
	// Get returns the value if it was stored no longer than the TTL ago.
	// A stale entry is evicted and reported absent.
	Get(key string) (any, bool)
	// Put stores value, replacing any previous entry for key.
	Put(key string, value any)
	// Clear removes every entry regardless of age and returns how many there were.
	Clear() int
	// Len returns the number of live entries.
	Len() int
	// Entries describes the live entries without exposing their values.
	Entries() []EntryInfo
	// Close releases the store.
	Close()
}

// EntryInfo describes a cached entry for diagnostics.
type EntryInfo struct {
	Key       string    `json:"key"`
	LoadedAt  time.Time `json:"loaded_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// entry is what the underlying cache holds.
type entry struct {
	value    any
	loadedAt time.Time
}

// Memory is the in-process Store backed by ttlcache.
//
// The ttlcache janitor goroutine is never started: expiry is checked lazily
// on read, and a hit never extends an entry's lifetime.
type Memory struct {
	items *ttlcache.Cache[string, entry]
}

var _ Store = (*Memory)(nil)

// NewMemory creates an in-memory store with a uniform TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		items: ttlcache.New(
			ttlcache.WithTTL[string, entry](ttl),
			ttlcache.WithDisableTouchOnHit[string, entry](),
		),
	}
}

// Get implements Store.
func (m *Memory) Get(key string) (any, bool) {
	item := m.items.Get(key)
	if item == nil {
		// Expired items are invisible to Get but still held; drop them now.
		// DeleteExpired rather than Delete so a concurrent fresh Put survives.
		m.items.DeleteExpired()
		return nil, false
	}
	return item.Value().value, true
}

// Put implements Store.
func (m *Memory) Put(key string, value any) {
	m.items.Set(key, entry{value: value, loadedAt: time.Now()}, ttlcache.DefaultTTL)
}

// Clear implements Store.
func (m *Memory) Clear() int {
	n := m.Len()
	m.items.DeleteAll()
	return n
}

// Len implements Store.
func (m *Memory) Len() int {
	return len(m.Entries())
}

// Entries implements Store.
func (m *Memory) Entries() []EntryInfo {
	items := m.items.Items()
	out := make([]EntryInfo, 0, len(items))
	for key, item := range items {
		if item.IsExpired() {
			continue
		}
		out = append(out, EntryInfo{
			Key:       key,
			LoadedAt:  item.Value().loadedAt,
			ExpiresAt: item.ExpiresAt(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Close implements Store.
func (m *Memory) Close() {
	m.items.DeleteAll()
}
