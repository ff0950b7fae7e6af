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

package schema

// WithNamespace returns s with the namespace of every named node it contains
// replaced by namespace. Nodes are copied, s is left untouched, and
// recursive records stay recursive in the copy.
func WithNamespace(s Schema, namespace string) Schema {
	r := &renamespacer{namespace: namespace, records: map[*RecordSchema]*RecordSchema{}}
	return r.rewrite(s)
}

type renamespacer struct {
	namespace string
	records   map[*RecordSchema]*RecordSchema
}

func (r *renamespacer) rewrite(s Schema) Schema {
	switch x := s.(type) {
	case *ArraySchema:
		return NewArray(r.rewrite(x.items))
	case *MapSchema:
		return NewMap(r.rewrite(x.values))
	case *UnionSchema:
		types := make([]Schema, len(x.types))
		for i, t := range x.types {
			types[i] = r.rewrite(t)
		}
		return &UnionSchema{types: types}
	case *FixedSchema:
		return NewFixed(x.name, r.namespace, x.size)
	case *EnumSchema:
		e := *x
		e.namespace = r.namespace
		return &e
	case *RecordSchema:
		if done, ok := r.records[x]; ok {
			return done
		}
		if !x.defined {
			// a record still being derived keeps its name, the reference
			// resolves to the enclosing definition
			return x
		}
		rec := &RecordSchema{name: x.name, namespace: r.namespace, meta: x.meta}
		r.records[x] = rec
		fields := make([]*Field, len(x.fields))
		for i, f := range x.fields {
			g := *f
			g.typ = r.rewrite(f.typ)
			fields[i] = &g
		}
		return rec.Define(fields)
	default:
		return s
	}
}
