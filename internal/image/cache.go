package image

import (
	"image"
	"sync"
)

// Cache holds images by key for the duration of a run.
//
// Caches are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	content map[string]image.Image
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{content: make(map[string]image.Image)}
}

// Get returns the image stored under key, or nil.
func (c *Cache) Get(key string) image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.content[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img
}

// Put stores img under key, replacing any earlier entry.
func (c *Cache) Put(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content[key] = img
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.content)
}

// Stats returns lookup hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
