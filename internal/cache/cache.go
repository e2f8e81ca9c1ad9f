// Copyright 2026 The puf Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package cache is a small, bounded LRU of decoded strings keyed by id.
package cache

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Cache holds owned copies of hot strings.  Get and Put both take the same
// exclusive lock: Get has to promote the entry, so there are no read-only
// operations.
type Cache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[uint64, string]
	cap int
}

// New returns a Cache holding at most capacity entries.  Capacities below
// 1 are treated as 1.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	lru, err := simplelru.NewLRU[uint64, string](capacity, nil)
	if err != nil {
		// only possible for a non-positive size
		panic(err)
	}
	return &Cache{
		lru: lru,
		cap: capacity,
	}
}

// Get returns the cached string for id and marks it most recently used.
func (c *Cache) Get(id uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Get(id)
}

// Put caches s under id, evicting the least recently used entry if the
// cache is full.  s must not alias memory that can go away, like a mapping.
func (c *Cache) Put(id uint64, s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(id, s)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.cap
}
