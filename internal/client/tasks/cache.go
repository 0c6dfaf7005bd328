// Package tasks keeps the local task list in step with the backend and
// submits task changes.
package tasks

import (
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// Cache is the local, newest-first projection of the signed-in user's rows.
// Events arrive on another goroutine, hence the lock.
type Cache struct {
	mu    sync.RWMutex
	items []*models.Task
}

func NewCache() *Cache {
	return &Cache{}
}

func cloneAll(list []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(list))
	for _, t := range list {
		out = append(out, t.Clone())
	}
	return out
}

// Replace overwrites the whole cache with list.
func (c *Cache) Replace(list []*models.Task) {
	items := cloneAll(list)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// Prepend puts t in front. No de-duplication: each delivery is one entry.
func (c *Cache) Prepend(t *models.Task) {
	c.mu.Lock()
	c.items = append([]*models.Task{t.Clone()}, c.items...)
	c.mu.Unlock()
}

// Apply swaps in t for the entry with the same id. Reports whether one
// was found.
func (c *Cache) Apply(t *models.Task) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, it := range c.items {
		if it.ID == t.ID {
			c.items[i] = t.Clone()
			return true
		}
	}
	return false
}

// Remove drops every entry with id.
func (c *Cache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	removed := false
	for _, it := range c.items {
		if it.ID == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept
	return removed
}

func (c *Cache) Find(id string) (*models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if it.ID == id {
			return it.Clone(), true
		}
	}
	return nil, false
}

// Snapshot returns a copy safe to use without the lock.
func (c *Cache) Snapshot() []*models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.items)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Reset empties the cache, e.g. on sign-out.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
