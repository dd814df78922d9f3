package pos

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache is a time-boxed read-through cache for POS responses. Entries live
// in memory and as JSON files on disk; the disk copy survives restarts and
// doubles as a stale fallback when the upstream API is unreachable.
type Cache struct {
	dir string
	ttl time.Duration

	mu  sync.Mutex
	mem map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// NewCache builds a cache rooted at dir with the given freshness window.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Cache{
		dir: dir,
		ttl: ttl,
		mem: make(map[string]cacheEntry),
		now: time.Now,
	}, nil
}

// Fetch returns the cached payload for key when it is still fresh,
// otherwise invokes fetch and stores the result. When fetch fails, a stale
// disk copy is returned instead, so a POS outage degrades to old data
// rather than an error.
func (c *Cache) Fetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.mem[key]; ok && c.fresh(entry) {
		return entry.Payload, nil
	}

	if entry, ok := c.readDisk(key); ok {
		c.mem[key] = entry
		if c.fresh(entry) {
			return entry.Payload, nil
		}
	}

	payload, err := fetch()
	if err != nil {
		if stale, ok := c.mem[key]; ok {
			return stale.Payload, nil
		}
		return nil, err
	}

	entry := cacheEntry{FetchedAt: c.now().UTC(), Payload: payload}
	c.mem[key] = entry
	c.writeDisk(key, entry)

	return payload, nil
}

func (c *Cache) fresh(entry cacheEntry) bool {
	return c.now().Sub(entry.FetchedAt) < c.ttl
}

func (c *Cache) path(key string) string {
	sum := md5.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

func (c *Cache) readDisk(key string) (cacheEntry, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

// writeDisk is best-effort: a failed cache write never fails the fetch.
func (c *Cache) writeDisk(key string, entry cacheEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path(key), raw, 0o644)
}
