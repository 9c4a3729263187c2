package hmm

import (
	"container/list"
	"strconv"
	"sync"

	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

// lruCache is a bounded, least-recently-used-eviction cache of k-best
// decode results, modeled on the original's persisted
// cachetools.LRUCache (§4.4, §9): a by-name-style constructor that
// tolerates a missing or corrupt file, a dirty flag, and a Save/Delete
// pair. No third-party LRU package appears anywhere in the example
// corpus; see DESIGN.md for why this one component is hand-rolled.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	path     string
	dirty    bool
	order    *list.List
	items    map[string]*list.Element
}

type cacheRecord struct {
	key   string
	value []tokens.KBestItem
}

// newLRUCache returns an empty cache bounded to capacity entries.
func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// loadLRUCache is the by-name constructor: it loads a persisted cache
// file if present, and silently starts empty if the file is missing
// or unreadable.
func loadLRUCache(path string, capacity int) *lruCache {
	c := newLRUCache(capacity)
	c.path = path
	if path == "" {
		return c
	}
	var raw map[string][]tokens.KBestItem
	if err := fileio.LoadJSON(path, &raw); err == nil {
		for k, v := range raw {
			c.put(k, v)
		}
	}
	c.dirty = false
	return c
}

func cacheKey(word string, k int) string {
	return word + "\x00" + strconv.Itoa(k)
}

func (c *lruCache) get(word string, k int) ([]tokens.KBestItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := cacheKey(word, k)
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheRecord).value, true
}

func (c *lruCache) put(key string, value []tokens.KBestItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheRecord).value = value
		c.order.MoveToFront(el)
	} else {
		el := c.order.PushFront(&cacheRecord{key: key, value: value})
		c.items[key] = el
		if c.capacity > 0 && c.order.Len() > c.capacity {
			oldest := c.order.Back()
			if oldest != nil {
				c.order.Remove(oldest)
				delete(c.items, oldest.Value.(*cacheRecord).key)
			}
		}
	}
	c.dirty = true
}

func (c *lruCache) Put(word string, k int, value []tokens.KBestItem) {
	c.put(cacheKey(word, k), value)
}

// Save flushes the cache to disk if dirty; a clean cache is a no-op.
func (c *lruCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty || c.path == "" {
		return nil
	}
	raw := make(map[string][]tokens.KBestItem, len(c.items))
	for e := c.order.Front(); e != nil; e = e.Next() {
		rec := e.Value.(*cacheRecord)
		raw[rec.key] = rec.value
	}
	if err := fileio.SaveJSON(c.path, raw); err != nil {
		return &fileio.IOError{Path: c.path, Err: err}
	}
	c.dirty = false
	return nil
}

// Delete clears the cache in memory and removes its backing file;
// called by HMM.Save after a retrain, per §4.4's "invalidated on
// rebuild" invariant.
func (c *lruCache) Delete() error {
	c.mu.Lock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.dirty = false
	path := c.path
	c.mu.Unlock()
	if path == "" {
		return nil
	}
	if err := fileio.Delete(path); err != nil {
		return &fileio.IOError{Path: path, Err: err}
	}
	return nil
}
