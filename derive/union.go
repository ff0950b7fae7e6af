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

package derive

import (
	"github.com/sv3ndk/avro4s/schema"
)

// SafeUnion merges candidates into a single valid union. Nested unions are
// flattened in place, members equal to an earlier one are dropped, and two
// remaining members of the same kind fail with ErrInvalidUnion. Member order
// is the flatten order.
func SafeUnion(candidates ...schema.Schema) (*schema.UnionSchema, error) {
	var flat []schema.Schema
	for _, c := range candidates {
		if u, ok := c.(*schema.UnionSchema); ok {
			flat = append(flat, u.Types()...)
		} else {
			flat = append(flat, c)
		}
	}

	members := make([]schema.Schema, 0, len(flat))
	for _, s := range flat {
		dup := false
		for _, m := range members {
			if schema.Equal(m, s) {
				dup = true
				break
			}
		}
		if !dup {
			members = append(members, s)
		}
	}

	seen := make(map[string]schema.Schema, len(members))
	for _, m := range members {
		key := schema.UnionKey(m)
		if prev, ok := seen[key]; ok {
			return nil, newError(ErrInvalidUnion, "",
				"union cannot hold both %s and %s", prev, m)
		}
		seen[key] = m
	}
	return schema.NewUnion(members...), nil
}
