package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/oncostat/dosepath/internal/dosepath"
)

// InMemory caches compiled dose selectors keyed by their design source, so a
// hot design is compiled once. Bounded: once full, new entries are computed
// but not retained.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]dosepath.Selector
}

func NewInMemory(max int) *InMemory {
	return &InMemory{
		max:   max,
		items: make(map[string]dosepath.Selector, max),
	}
}

func (c *InMemory) GetOrCompute(design string, fn func() (dosepath.Selector, error)) (dosepath.Selector, error) {
	key := hash(design)

	c.mu.RLock()
	if v, ok := c.items[key]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.items[key]; ok {
		return v, nil
	}

	sel, err := fn()
	if err != nil {
		return nil, err
	}

	if len(c.items) < c.max {
		c.items[key] = sel
	}

	return sel, nil
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
