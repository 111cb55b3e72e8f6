package cache

import (
	"slices"
	"sync"
)

// Store maps ids to values and remembers insertion order, so iteration over
// lines is stable between rebuilds.
type Store[V any] struct {
	mu     sync.RWMutex
	values map[string]V
	order  []string
}

// New creates an empty Store.
func New[V any]() *Store[V] {
	return &Store[V]{
		values: make(map[string]V),
	}
}

// Get retrieves a value by id
func (c *Store[V]) Get(id string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[id]
	return v, ok
}

// Set stores a value. Replacing keeps the original position.
func (c *Store[V]) Set(id string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[id]; !ok {
		c.order = append(c.order, id)
	}
	c.values[id] = v
}

// Delete removes a value by id and reports whether it was present.
func (c *Store[V]) Delete(id string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[id]
	if !ok {
		return v, false
	}
	delete(c.values, id)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == id })
	return v, true
}

// Keys returns the ids in insertion order.
func (c *Store[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Values returns the values in insertion order.
func (c *Store[V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.values[id])
	}
	return out
}

// Len returns the number of stored values.
func (c *Store[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// Reset clears the store.
func (c *Store[V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]V)
	c.order = nil
}
