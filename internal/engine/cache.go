// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache.go provides an in-memory cache of extracted template text.
// This is the L1 cache: it avoids decoding and unzipping a template binary
// on every preview. Templates are immutable once uploaded, so entries are
// keyed by template ID alone and only removed when a template is deleted.
package engine

import (
	"log/slog"
	"sync"
)

// textCache is a concurrency-safe in-memory cache of template text.
type textCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// newTextCache creates an empty text cache.
func newTextCache() *textCache {
	return &textCache{
		entries: make(map[string]string),
	}
}

// get retrieves cached text. The bool is false on a miss.
func (c *textCache) get(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.entries[id]
	return text, ok
}

// put stores the text of a template.
func (c *textCache) put(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = text
	slog.Debug("template text cached", "id", id, "size", len(c.entries))
}

// invalidate removes a template's text.
func (c *textCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	slog.Debug("template text cache invalidated", "id", id)
}

// len returns the number of cached templates.
func (c *textCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
