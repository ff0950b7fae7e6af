/**
 * Copyright 2024 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"container/list"
	"fmt"
	"sync"
)

const maxPreallocateCapacity = 10000

// LRUCache evicts the least recently used entry once capacity is reached
type LRUCache[K comparable, V any] struct {
	lock        sync.Mutex
	capacity    int
	entries     map[K]V
	lruElements map[K]*list.Element
	lruKeys     *list.List
}

// NewLRUCache creates a Least Recently Used (LRU) cache
//
// Parameters:
//   - `capacity` - a positive integer indicating the max capacity of this cache
func NewLRUCache[K comparable, V any](capacity int) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be a positive integer, got %d", capacity)
	}
	c := &LRUCache[K, V]{capacity: capacity, lruKeys: list.New()}
	if capacity <= maxPreallocateCapacity {
		c.entries = make(map[K]V, capacity)
		c.lruElements = make(map[K]*list.Element, capacity)
	} else {
		c.entries = make(map[K]V)
		c.lruElements = make(map[K]*list.Element)
	}
	return c, nil
}

// Get returns the value cached for key and marks it as recently used
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	value, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if element, found := c.lruElements[key]; found {
		c.lruKeys.MoveToFront(element)
	}
	return value, true
}

// Put caches value under key, evicting the least recently used entry when
// the cache is full
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if element, ok := c.lruElements[key]; ok {
		c.lruKeys.MoveToFront(element)
		c.entries[key] = value
		return
	}
	// evict first to avoid growing the maps past capacity
	if c.lruKeys.Len() == c.capacity {
		if back := c.lruKeys.Back(); back != nil {
			evicted := c.lruKeys.Remove(back).(K)
			delete(c.lruElements, evicted)
			delete(c.entries, evicted)
		}
	}
	c.lruElements[key] = c.lruKeys.PushFront(key)
	c.entries[key] = value
}

// Len returns the number of entries
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}
