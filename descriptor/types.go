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

package descriptor

// Built-in primitive identifiers
const (
	Null                 = "null"
	Boolean              = "boolean"
	Byte                 = "byte"
	Short                = "short"
	Int                  = "int"
	Long                 = "long"
	Float                = "float"
	Double               = "double"
	String               = "string"
	Bytes                = "bytes"
	ByteArray            = "byte-array"
	ByteList             = "byte-list"
	ByteSeq              = "byte-seq"
	ByteVector           = "byte-vector"
	UUID                 = "uuid"
	Decimal              = "decimal"
	Date                 = "date"
	TimeMillis           = "time-millis"
	TimeMicros           = "time-micros"
	TimestampMillis      = "timestamp-millis"
	TimestampMicros      = "timestamp-micros"
	LocalTimestampMillis = "local-timestamp-millis"
	LocalTimestampMicros = "local-timestamp-micros"
)

// Prim returns a primitive descriptor
func Prim(id string) *Type {
	return &Type{Kind: Primitive, ID: id}
}

// OptionOf returns an optional t
func OptionOf(t *Type) *Type {
	return container(Option, t)
}

// EitherOf returns an either of left and right
func EitherOf(left, right *Type) *Type {
	return container(Either, left, right)
}

// CollectionOf returns a collection of elem. id is one of Array, List, Set,
// Vector, Seq or Iterable.
func CollectionOf(id string, elem *Type) *Type {
	return container(id, elem)
}

// ListOf returns a list of elem
func ListOf(elem *Type) *Type {
	return container(List, elem)
}

// MapOf returns a map from key to value
func MapOf(key, value *Type) *Type {
	return container(Map, key, value)
}

// TupleOf returns a tuple of the given components
func TupleOf(components ...*Type) *Type {
	return container(Tuple, components...)
}

// CoproductOf chains alternatives into nested coproducts terminated by cnil
func CoproductOf(alternatives ...*Type) *Type {
	tail := &Type{Kind: Container, ID: CNil}
	for i := len(alternatives) - 1; i >= 0; i-- {
		tail = container(Coproduct, alternatives[i], tail)
	}
	return tail
}

func container(id string, args ...*Type) *Type {
	return &Type{Kind: Container, ID: id, TypeArgs: args}
}

// NewProduct returns a product type
func NewProduct(namespace, name string, fields ...*Field) *Type {
	return &Type{Kind: Product, Namespace: namespace, Name: name, Fields: fields}
}

// NewSum returns a sum type over variants
func NewSum(namespace, name string, variants ...*Type) *Type {
	return &Type{Kind: Sum, Namespace: namespace, Name: name, Variants: variants}
}

// NewEnum returns an enumeration
func NewEnum(namespace, name string, symbols ...string) *Type {
	return &Type{Kind: Enum, Namespace: namespace, Name: name, Symbols: symbols}
}

// NewField returns a field without annotations or default
func NewField(name string, t *Type) *Field {
	return &Field{Name: name, Type: t}
}
