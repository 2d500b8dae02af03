package cache

import (
	"strings"
	"sync"

	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

// Cache stores transcriptions in memory and writes every new entry through
// to its Store. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	store   Store
	hits    int
	misses  int
}

// Stats summarizes cache usage for the current process
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// New creates a memory-only cache
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Open loads every entry from store. A missing or malformed store is not an
// error: the cache starts empty and a warning is logged.
func Open(store Store) *Cache {
	c := New()
	c.store = store
	if store == nil {
		return c
	}

	entries, err := store.Load()
	if err != nil {
		logging.Warn("pronunciation cache unreadable, starting empty",
			"path", store.Path(),
			"error", err)
		return c
	}
	for k, v := range entries {
		c.entries[k] = v
	}
	logging.Debug("pronunciation cache loaded",
		"path", store.Path(),
		"entries", len(c.entries))
	return c
}

// Key combines a word and a scheme key into the store key. The format is a
// tuple literal, e.g. ('λόγος', 'cla.cla.IPA').
func Key(word, schemeKey string) string {
	return "(" + quote(word) + ", " + quote(schemeKey) + ")"
}

// Lookup returns the cached transcription for word under s
func (c *Cache) Lookup(word string, s scheme.Scheme) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.entries[Key(word, s.Key())]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return t, ok
}

// Peek is Lookup without touching the hit and miss counters
func (c *Cache) Peek(word string, s scheme.Scheme) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[Key(word, s.Key())]
	return t, ok
}

// Store records a transcription and immediately persists the cache
func (c *Cache) Store(word string, s scheme.Scheme, transcription string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(word, s.Key())
	c.entries[key] = transcription
	if c.store == nil {
		return nil
	}
	return c.store.Persist(c.entries, key)
}

// Len returns the number of cached entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CountValue returns how many entries hold exactly value
func (c *Cache) CountValue(value string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, v := range c.entries {
		if v == value {
			n++
		}
	}
	return n
}

// Entries returns a copy of all cached entries
func (c *Cache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		result[k] = v
	}
	return result
}

// Stats returns usage counters
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Path returns the file backing the cache, or "" for a memory-only cache
func (c *Cache) Path() string {
	if c.store == nil {
		return ""
	}
	return c.store.Path()
}

// Close releases the underlying store
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// quote renders s the way a tuple literal quotes a string: single quotes
// unless s contains a single quote and no double quote.
func quote(s string) string {
	q := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteRune(q)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case q:
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(q)
	return b.String()
}
