package duckvec

import (
	"sync"
)

// StringCache deduplicates strings materialized from vector cells. Columns
// with repetitive values (dimension keys, enum-like varchars) otherwise
// allocate one Go string per row per pass; the cache returns the same
// backing string for repeated byte content.
//
// Two layers: a per-column last-value slot that catches runs of identical
// values without locking a map, and an intern map shared across columns for
// values short enough to be worth keeping.
type StringCache struct {
	mu     sync.Mutex
	last   []string
	intern map[string]string

	// internLimit is the longest value the intern map keeps; longer values
	// are returned as fresh strings.
	internLimit int
	// maxEntries caps the intern map; when full, new values are returned
	// uncached rather than evicting.
	maxEntries int

	hits   uint64
	misses uint64
}

const (
	defaultInternLimit = 64
	defaultMaxEntries  = 4096
)

// NewStringCache creates a cache sized for the given column count.
func NewStringCache(columns int) *StringCache {
	return &StringCache{
		last:        make([]string, columns),
		intern:      make(map[string]string, 256),
		internLimit: defaultInternLimit,
		maxEntries:  defaultMaxEntries,
	}
}

// GetFromBytes returns a Go string for the cell bytes of column colIdx,
// reusing a cached string when the content was seen before.
func (sc *StringCache) GetFromBytes(colIdx int, b []byte) string {
	if len(b) == 0 {
		return ""
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if colIdx >= len(sc.last) {
		grown := make([]string, colIdx+1)
		copy(grown, sc.last)
		sc.last = grown
	}

	// Runs of the same value per column are the common case in sorted or
	// grouped results.
	if sc.last[colIdx] == string(b) {
		sc.hits++
		return sc.last[colIdx]
	}

	if len(b) <= sc.internLimit {
		if cached, ok := sc.intern[string(b)]; ok {
			sc.hits++
			sc.last[colIdx] = cached
			return cached
		}
		s := string(b)
		if len(sc.intern) < sc.maxEntries {
			sc.intern[s] = s
		}
		sc.misses++
		sc.last[colIdx] = s
		return s
	}

	sc.misses++
	s := string(b)
	sc.last[colIdx] = s
	return s
}

// Get is GetFromBytes for an already-materialized string.
func (sc *StringCache) Get(colIdx int, value string) string {
	if value == "" {
		return ""
	}
	return sc.GetFromBytes(colIdx, []byte(value))
}

// Stats returns cumulative hit and miss counts.
func (sc *StringCache) Stats() (hits, misses uint64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.hits, sc.misses
}

// Reset drops all cached strings but keeps the configured limits.
func (sc *StringCache) Reset() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for i := range sc.last {
		sc.last[i] = ""
	}
	sc.intern = make(map[string]string, 256)
}
