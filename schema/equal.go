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

import (
	"reflect"
)

// Equal reports whether a and b are the same schema as far as a union is
// concerned: primitives and logical types compare by kind and parameters,
// named types by full name, arrays, maps and unions by their members.
func Equal(a, b Schema) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *PrimitiveSchema:
		_, ok := b.(*PrimitiveSchema)
		return ok
	case *LogicalSchema:
		y, ok := b.(*LogicalSchema)
		return ok && x.logical == y.logical && reflect.DeepEqual(x.params, y.params)
	case *ArraySchema:
		return Equal(x.items, b.(*ArraySchema).items)
	case *MapSchema:
		return Equal(x.values, b.(*MapSchema).values)
	case *UnionSchema:
		y := b.(*UnionSchema)
		if len(x.types) != len(y.types) {
			return false
		}
		for i := range x.types {
			if !Equal(x.types[i], y.types[i]) {
				return false
			}
		}
		return true
	case Named:
		return x.FullName() == b.(Named).FullName()
	}
	return false
}

// UnionKey returns the identity of s among union members. Avro allows one
// member per key: the primitive type, the primitive type with its logical
// type, array, map, or the full name of a named type.
func UnionKey(s Schema) string {
	switch x := s.(type) {
	case *LogicalSchema:
		return string(x.typ) + "." + string(x.logical)
	case Named:
		return x.FullName()
	default:
		return string(s.Type())
	}
}

// SameDefinition reports whether two named schemas sharing a full name have
// identical definitions, descending into record fields.
func SameDefinition(a, b Named) bool {
	return sameDefinition(a, b, map[[2]Named]bool{})
}

func sameDefinition(a, b Named, visiting map[[2]Named]bool) bool {
	if a == b {
		return true
	}
	if a.FullName() != b.FullName() || a.Type() != b.Type() {
		return false
	}
	pair := [2]Named{a, b}
	if visiting[pair] {
		return true
	}
	visiting[pair] = true
	switch x := a.(type) {
	case *FixedSchema:
		return x.size == b.(*FixedSchema).size
	case *EnumSchema:
		y := b.(*EnumSchema)
		return reflect.DeepEqual(x.symbols, y.symbols) && x.symbol == y.symbol
	case *RecordSchema:
		y := b.(*RecordSchema)
		if len(x.fields) != len(y.fields) {
			return false
		}
		for i, f := range x.fields {
			g := y.fields[i]
			if f.name != g.name || !sameType(f.typ, g.typ, visiting) {
				return false
			}
		}
		return true
	}
	return false
}

func sameType(a, b Schema, visiting map[[2]Named]bool) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case *ArraySchema:
		return sameType(x.items, b.(*ArraySchema).items, visiting)
	case *MapSchema:
		return sameType(x.values, b.(*MapSchema).values, visiting)
	case *UnionSchema:
		y := b.(*UnionSchema)
		if len(x.types) != len(y.types) {
			return false
		}
		for i := range x.types {
			if !sameType(x.types[i], y.types[i], visiting) {
				return false
			}
		}
		return true
	case Named:
		y, ok := b.(Named)
		return ok && sameDefinition(x, y, visiting)
	default:
		return Equal(a, b)
	}
}
