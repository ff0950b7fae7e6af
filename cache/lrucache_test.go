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
	"fmt"
	"sync"
	"testing"
)

func TestWrongCapacity(t *testing.T) {
	for _, capacity := range []int{-1, 0} {
		_, err := NewLRUCache[string, int](capacity)
		if err == nil {
			t.Fatalf("expected capacity error for %d, not nil\n", capacity)
		}
	}
}

func TestCRUD(t *testing.T) {
	lru, err := NewLRUCache[string, string](2)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}
	for name, c := range map[string]Cache[string, string]{
		"lru": lru,
		"map": NewMapCache[string, string](),
	} {
		for key, values := range map[string][]string{
			"com.shop.Order":   {"order", "order2"},
			"com.shop.Payment": {"payment", "payment2"},
		} {
			firstValue, secondValue := values[0], values[1]
			c.Put(key, firstValue)
			readValue, ok := c.Get(key)
			if !ok {
				t.Fatalf("%s: expected to find key \"%v\"\n", name, key)
			}
			if readValue != firstValue {
				t.Fatalf("%s: expected to find value \"%v\", not \"%v\"\n", name, firstValue, readValue)
			}
			c.Put(key, secondValue)
			readValue, ok = c.Get(key)
			if !ok {
				t.Fatalf("%s: expected to find key \"%v\"\n", name, key)
			}
			if readValue != secondValue {
				t.Fatalf("%s: expected to find value \"%v\", not \"%v\"\n", name, secondValue, readValue)
			}
		}
		if c.Len() != 2 {
			t.Fatalf("%s: expected 2 entries, found %d\n", name, c.Len())
		}
	}
}

func TestMaxCapacity(t *testing.T) {
	c, err := NewLRUCache[int, string](2)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}

	c.Put(1, "test1")
	c.Put(2, "test2")
	c.Put(3, "test3")

	if _, ok := c.Get(1); ok {
		t.Fatalf("not expected to find key 1\n")
	}
	if _, ok := c.Get(2); !ok {
		t.Fatalf("expected to find key 2\n")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatalf("expected to find key 3\n")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, found %d\n", c.Len())
	}
}

func TestMaxCapacityWithGet(t *testing.T) {
	c, err := NewLRUCache[int, string](2)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}

	c.Put(1, "test1")
	c.Put(2, "test2")
	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected value \"test1\" not found for key 1\n")
	}
	c.Put(3, "test3")

	if _, ok := c.Get(1); !ok {
		t.Fatalf("expected to find key 1\n")
	}
	if _, ok := c.Get(2); ok {
		t.Fatalf("not expected to find key 2\n")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatalf("expected to find key 3\n")
	}
}

func TestEvictionKeepsIndexConsistent(t *testing.T) {
	c, err := NewLRUCache[int, int](1)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}
	for i := 0; i < 10; i++ {
		c.Put(i, i)
	}
	if len(c.lruElements) != 1 || len(c.entries) != 1 {
		t.Fatalf("expected a single tracked entry, found %d elements and %d entries\n",
			len(c.lruElements), len(c.entries))
	}
	if v, ok := c.Get(9); !ok || v != 9 {
		t.Fatalf("expected to find 9, found %v\n", v)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c, err := NewLRUCache[string, int](16)
	if err != nil {
		t.Fatalf("expected nil error, not \"%s\"\n", err.Error())
	}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("k%d", (w*100+i)%32)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Fatalf("expected at most 16 entries, found %d\n", c.Len())
	}
}
