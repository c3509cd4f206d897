package cache

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// TermCache keeps the normalized term lists of recent queries. It is safe
// for concurrent use. Entries are keyed by the xxhash of the query; the
// query itself is kept to detect hash collisions, which count as misses.
type TermCache struct {
	entries sync.Map // map[uint64]*termEntry

	// Configuration (read-only after creation)
	maxEntries int

	// Atomic counters
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	count     atomic.Int64

	// Logical clock for least recently used eviction
	clock atomic.Int64
}

type termEntry struct {
	query    string
	terms    []string
	lastUsed atomic.Int64
}

// Stats is a snapshot of the cache counters
type Stats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Evictions  int64   `json:"evictions"`
	Entries    int64   `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	HitRate    float64 `json:"hit_rate"`
}

// NewTermCache creates a cache holding at most maxEntries queries. A
// non-positive size returns nil, which behaves as an always empty cache.
func NewTermCache(maxEntries int) *TermCache {
	if maxEntries <= 0 {
		return nil
	}
	return &TermCache{maxEntries: maxEntries}
}

// Get returns a copy of the terms cached for query
func (tc *TermCache) Get(query string) ([]string, bool) {
	if tc == nil {
		return nil, false
	}

	if val, ok := tc.entries.Load(xxhash.Sum64String(query)); ok {
		entry := val.(*termEntry)
		if entry.query == query {
			entry.lastUsed.Store(tc.clock.Add(1))
			tc.hits.Add(1)
			return append([]string(nil), entry.terms...), true
		}
	}

	tc.misses.Add(1)
	return nil, false
}

// Put stores the terms for query, evicting the least recently used entries
// when the cache is full
func (tc *TermCache) Put(query string, terms []string) {
	if tc == nil {
		return
	}

	entry := &termEntry{
		query: query,
		terms: append([]string(nil), terms...),
	}
	entry.lastUsed.Store(tc.clock.Add(1))

	key := xxhash.Sum64String(query)
	if _, loaded := tc.entries.Swap(key, entry); loaded {
		return
	}

	count := tc.count.Add(1)
	for count > int64(tc.maxEntries) {
		if !tc.evictOldest(key) {
			break
		}
		count = tc.count.Load()
	}
}

// evictOldest removes the least recently used entry other than keep
func (tc *TermCache) evictOldest(keep uint64) bool {
	var oldestKey any
	var oldestTime int64 = math.MaxInt64

	tc.entries.Range(func(key, value any) bool {
		if key.(uint64) == keep {
			return true
		}
		lastUsed := value.(*termEntry).lastUsed.Load()
		if lastUsed < oldestTime {
			oldestTime = lastUsed
			oldestKey = key
		}
		return true
	})

	if oldestKey == nil {
		return false
	}
	if _, loaded := tc.entries.LoadAndDelete(oldestKey); loaded {
		tc.count.Add(-1)
		tc.evictions.Add(1)
	}
	return true
}

// Clear drops every entry. Counters other than the entry count are kept.
func (tc *TermCache) Clear() {
	if tc == nil {
		return
	}
	tc.entries.Range(func(key, _ any) bool {
		if _, loaded := tc.entries.LoadAndDelete(key); loaded {
			tc.count.Add(-1)
		}
		return true
	})
}

// Stats returns the current counters
func (tc *TermCache) Stats() Stats {
	if tc == nil {
		return Stats{}
	}

	hits := tc.hits.Load()
	misses := tc.misses.Load()
	stats := Stats{
		Hits:       hits,
		Misses:     misses,
		Evictions:  tc.evictions.Load(),
		Entries:    tc.count.Load(),
		MaxEntries: tc.maxEntries,
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}
