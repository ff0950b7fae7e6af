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

// Package cache holds derived schemas across derivation passes.
package cache

// Cache is a key-value storage for finished derivation results
type Cache[K comparable, V any] interface {
	// Get returns the value cached for key and false when there is none
	Get(key K) (V, bool)
	// Put caches value under key
	Put(key K, value V)
	// Len returns the number of entries
	Len() int
}
