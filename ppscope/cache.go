package ppscope

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// bump when the on-disk entry format changes
const cacheSchemaVersion uint16 = 1

type cacheKey [sha256.Size]byte

// Cache memoizes comment extraction keyed on the language and the exact file
// content, so a hit always equals a fresh parse. A nil *Cache disables caching.
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]Comment
	dir     string
}

type diskEntry struct {
	Schema   uint16
	Language string
	Comments []Comment
}

// NewCache returns an in-memory cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]Comment)}
}

// OpenDiskCache returns a cache that also persists entries under dir.
func OpenDiskCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	c := NewCache()
	c.dir = dir
	return c, nil
}

func keyFor(language Language, source []byte) cacheKey {
	h := sha256.New()
	h.Write([]byte(language.Name()))
	h.Write([]byte{0})
	h.Write(source)
	var k cacheKey
	copy(k[:], h.Sum(nil))
	return k
}

// comments returns the cached comments for source or extracts them with p.
func (c *Cache) comments(p *parser, source []byte) ([]Comment, error) {
	if c == nil {
		return p.comments(source)
	}
	key := keyFor(p.lang, source)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if cached, ok := c.load(key, p.lang); ok {
		c.store(key, cached)
		return cached, nil
	}

	comments, err := p.comments(source)
	if err != nil {
		return nil, err
	}
	c.store(key, comments)
	if err := c.save(key, p.lang, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) store(key cacheKey, comments []Comment) {
	c.mu.Lock()
	c.entries[key] = comments
	c.mu.Unlock()
}

func (c *Cache) pathFor(key cacheKey) string {
	return filepath.Join(c.dir, hex.EncodeToString(key[:])+".mp")
}

// load reads a disk entry; corrupt or stale entries count as misses.
func (c *Cache) load(key cacheKey, language Language) ([]Comment, bool) {
	if c.dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var entry diskEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Schema != cacheSchemaVersion || entry.Language != language.Name() {
		return nil, false
	}
	return entry.Comments, true
}

func (c *Cache) save(key cacheKey, language Language, comments []Comment) error {
	if c.dir == "" {
		return nil
	}
	data, err := msgpack.Marshal(diskEntry{
		Schema:   cacheSchemaVersion,
		Language: language.Name(),
		Comments: comments,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.pathFor(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}
