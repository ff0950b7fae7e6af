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

// Package descriptor describes the static shape of a type: the read-only input
// from which schemas are derived.
package descriptor

import (
	"strings"
)

// Kind classifies a type descriptor
type Kind int

const (
	// Primitive is a leaf type resolved through the primitive registry
	Primitive Kind = iota
	// Container wraps other types (option, either, collections, maps, tuples, coproducts)
	Container
	// Product is a type made of named fields
	Product
	// Sum is a tagged union of variant types
	Sum
	// Enum is a plain enumeration of symbols
	Enum
)

// String returns the lower case kind name
func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Container:
		return "container"
	case Product:
		return "product"
	case Sum:
		return "sum"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// Container identifiers
const (
	Option    = "option"
	Either    = "either"
	Array     = "array"
	List      = "list"
	Set       = "set"
	Vector    = "vector"
	Seq       = "seq"
	Iterable  = "iterable"
	Map       = "map"
	Tuple     = "tuple"
	Coproduct = "coproduct"
	CNil      = "cnil"
)

// DecimalParams overrides the precision and scale of a decimal
type DecimalParams struct {
	Precision int
	Scale     int
}

// Annotations carries the per-type or per-field customization
type Annotations struct {
	// Name replaces the declared name
	Name string
	// Namespace replaces the enclosing namespace
	Namespace string
	Doc       string
	Aliases   []string
	Props     map[string]string
	// Fixed, when positive, encodes the type or field as a fixed of that size
	Fixed int
	// Transient excludes a field from its record
	Transient bool
	// SortPriority orders sum type variants, highest first
	SortPriority float64
	// NoDefault ignores the declared default of a field
	NoDefault bool
	// EnumDefault marks the singleton variant used as enum default
	EnumDefault bool
	// ErasedName drops the type argument suffix from generic type names
	ErasedName bool
	// Decimal overrides the configured decimal precision and scale
	Decimal *DecimalParams
}

// Default is the declared default value of a field.
// A nil Value is an explicit null default.
type Default struct {
	Value any
}

// NullDefault returns an explicit null default
func NullDefault() *Default {
	return &Default{}
}

// DefaultOf returns a default holding v
func DefaultOf(v any) *Default {
	return &Default{Value: v}
}

// IsNull reports whether the default is the explicit null
func (d *Default) IsNull() bool {
	return d != nil && d.Value == nil
}

// Tagged selects a named union member for a default value, for instance a
// specific variant record of a sum type.
type Tagged struct {
	// Name is the short or full name of the member
	Name  string
	Value any
}

// Field is a member of a product type
type Field struct {
	Name        string
	Type        *Type
	Annotations Annotations
	Default     *Default
}

// Type is the structural description of a type
type Type struct {
	Kind Kind
	// ID identifies primitives and containers
	ID          string
	Name        string
	Namespace   string
	Annotations Annotations
	// TypeArgs are the constituents of a container or the type parameters
	// of a generic product or sum
	TypeArgs []*Type
	Fields   []*Field
	Variants []*Type
	// Symbols and DefaultSymbol describe an Enum
	Symbols       []string
	DefaultSymbol string
}

// FullName returns the dotted namespace and name
func (t *Type) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Key identifies the type within a derivation pass
func (t *Type) Key() string {
	var b strings.Builder
	switch t.Kind {
	case Primitive, Container:
		b.WriteString(t.ID)
	default:
		b.WriteString(t.FullName())
	}
	if len(t.TypeArgs) > 0 {
		b.WriteByte('[')
		for i, arg := range t.TypeArgs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(arg.Key())
		}
		b.WriteByte(']')
	}
	return b.String()
}

// IsSingleton reports whether t is a product without fields
func (t *Type) IsSingleton() bool {
	return t.Kind == Product && len(t.Fields) == 0
}

// String returns the type key
func (t *Type) String() string {
	return t.Key()
}
