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

// Package schema is the Avro schema AST produced by derivation.
//
// Nodes are immutable once published. Named nodes may be shared and records may
// refer back to themselves, so the AST is a graph: walkers must stop at named
// nodes they have already visited.
package schema

import (
	"fmt"
	"strings"
)

// Type is an Avro schema type
type Type string

// Schema types
const (
	Null    Type = "null"
	Boolean Type = "boolean"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Bytes   Type = "bytes"
	String  Type = "string"
	Array   Type = "array"
	Map     Type = "map"
	Fixed   Type = "fixed"
	Enum    Type = "enum"
	Union   Type = "union"
	Record  Type = "record"
)

// LogicalType is an interpretation tag on a primitive
type LogicalType string

// Logical types
const (
	Decimal              LogicalType = "decimal"
	UUID                 LogicalType = "uuid"
	Date                 LogicalType = "date"
	TimeMillis           LogicalType = "time-millis"
	TimeMicros           LogicalType = "time-micros"
	TimestampMillis      LogicalType = "timestamp-millis"
	TimestampMicros      LogicalType = "timestamp-micros"
	LocalTimestampMillis LogicalType = "local-timestamp-millis"
	LocalTimestampMicros LogicalType = "local-timestamp-micros"
)

// Schema is a node of the schema AST
type Schema interface {
	// Type returns the Avro type of the node
	Type() Type
	// String returns a short description, named types print their full name
	String() string
}

// Named is a schema identified by its full name: records, enums and fixeds
type Named interface {
	Schema
	Name() string
	Namespace() string
	FullName() string
	Aliases() []string
	Doc() string
	Props() map[string]string
}

type meta struct {
	doc        string
	aliases    []string
	props      map[string]string
	symbol     string
	hasDefault bool
	def        *Default
}

// Option configures the optional attributes of a node or field
type Option func(*meta)

// WithDoc sets the doc string
func WithDoc(doc string) Option {
	return func(m *meta) { m.doc = doc }
}

// WithAliases sets the aliases, duplicates are dropped
func WithAliases(aliases ...string) Option {
	return func(m *meta) {
		seen := make(map[string]bool, len(aliases))
		m.aliases = nil
		for _, a := range aliases {
			if a == "" || seen[a] {
				continue
			}
			seen[a] = true
			m.aliases = append(m.aliases, a)
		}
	}
}

// WithProps sets custom properties
func WithProps(props map[string]string) Option {
	return func(m *meta) {
		if len(props) == 0 {
			m.props = nil
			return
		}
		m.props = make(map[string]string, len(props))
		for k, v := range props {
			m.props[k] = v
		}
	}
}

// WithDefaultSymbol sets the default symbol of an enum
func WithDefaultSymbol(symbol string) Option {
	return func(m *meta) { m.symbol = symbol }
}

// WithDefault sets the default of a field
func WithDefault(def *Default) Option {
	return func(m *meta) {
		m.def = def
		m.hasDefault = def != nil
	}
}

func newMeta(opts []Option) meta {
	var m meta
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func fullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// PrimitiveSchema is a primitive type without logical annotation
type PrimitiveSchema struct {
	typ Type
}

// NewPrimitive returns a primitive schema
func NewPrimitive(typ Type) *PrimitiveSchema {
	return &PrimitiveSchema{typ: typ}
}

// Type returns the primitive type
func (s *PrimitiveSchema) Type() Type {
	return s.typ
}

func (s *PrimitiveSchema) String() string {
	return string(s.typ)
}

// LogicalSchema is a primitive annotated with a logical type and its parameters
type LogicalSchema struct {
	typ     Type
	logical LogicalType
	params  map[string]int
}

// NewLogical returns a logical primitive of the given physical type
func NewLogical(typ Type, logical LogicalType) *LogicalSchema {
	return &LogicalSchema{typ: typ, logical: logical}
}

// NewDecimal returns bytes annotated as decimal(precision, scale)
func NewDecimal(precision, scale int) *LogicalSchema {
	return &LogicalSchema{
		typ:     Bytes,
		logical: Decimal,
		params:  map[string]int{"precision": precision, "scale": scale},
	}
}

// Type returns the physical type
func (s *LogicalSchema) Type() Type {
	return s.typ
}

// Logical returns the logical type
func (s *LogicalSchema) Logical() LogicalType {
	return s.logical
}

// Param returns a logical type parameter
func (s *LogicalSchema) Param(name string) (int, bool) {
	v, ok := s.params[name]
	return v, ok
}

// Precision returns the decimal precision, 0 for other logical types
func (s *LogicalSchema) Precision() int {
	return s.params["precision"]
}

// Scale returns the decimal scale, 0 for other logical types
func (s *LogicalSchema) Scale() int {
	return s.params["scale"]
}

func (s *LogicalSchema) String() string {
	if s.logical == Decimal {
		return fmt.Sprintf("%s(%s,%d,%d)", s.typ, s.logical, s.Precision(), s.Scale())
	}
	return fmt.Sprintf("%s(%s)", s.typ, s.logical)
}

// ArraySchema is an array of items
type ArraySchema struct {
	items Schema
}

// NewArray returns an array of items
func NewArray(items Schema) *ArraySchema {
	return &ArraySchema{items: items}
}

// Type returns Array
func (s *ArraySchema) Type() Type {
	return Array
}

// Items returns the element schema
func (s *ArraySchema) Items() Schema {
	return s.items
}

func (s *ArraySchema) String() string {
	return "array<" + s.items.String() + ">"
}

// MapSchema is a map with string keys
type MapSchema struct {
	values Schema
}

// NewMap returns a map of values
func NewMap(values Schema) *MapSchema {
	return &MapSchema{values: values}
}

// Type returns Map
func (s *MapSchema) Type() Type {
	return Map
}

// Values returns the value schema
func (s *MapSchema) Values() Schema {
	return s.values
}

func (s *MapSchema) String() string {
	return "map<" + s.values.String() + ">"
}

// FixedSchema is a fixed size byte sequence
type FixedSchema struct {
	name      string
	namespace string
	size      int
}

// NewFixed returns a fixed schema
func NewFixed(name, namespace string, size int) *FixedSchema {
	return &FixedSchema{name: name, namespace: namespace, size: size}
}

// Type returns Fixed
func (s *FixedSchema) Type() Type {
	return Fixed
}

func (s *FixedSchema) Name() string {
	return s.name
}

func (s *FixedSchema) Namespace() string {
	return s.namespace
}

func (s *FixedSchema) FullName() string {
	return fullName(s.namespace, s.name)
}

func (s *FixedSchema) Aliases() []string {
	return nil
}

func (s *FixedSchema) Doc() string {
	return ""
}

func (s *FixedSchema) Props() map[string]string {
	return nil
}

func (s *FixedSchema) String() string {
	return s.FullName()
}

// Size returns the number of bytes
func (s *FixedSchema) Size() int {
	return s.size
}

// EnumSchema is an enumeration of symbols
type EnumSchema struct {
	name      string
	namespace string
	symbols   []string
	meta
}

// NewEnum returns an enum schema
func NewEnum(name, namespace string, symbols []string, opts ...Option) *EnumSchema {
	return &EnumSchema{
		name:      name,
		namespace: namespace,
		symbols:   append([]string(nil), symbols...),
		meta:      newMeta(opts),
	}
}

// Type returns Enum
func (s *EnumSchema) Type() Type {
	return Enum
}

func (s *EnumSchema) Name() string {
	return s.name
}

func (s *EnumSchema) Namespace() string {
	return s.namespace
}

func (s *EnumSchema) FullName() string {
	return fullName(s.namespace, s.name)
}

func (s *EnumSchema) Aliases() []string {
	return s.aliases
}

func (s *EnumSchema) Doc() string {
	return s.doc
}

func (s *EnumSchema) Props() map[string]string {
	return s.props
}

func (s *EnumSchema) String() string {
	return s.FullName()
}

// Symbols returns the ordered symbols
func (s *EnumSchema) Symbols() []string {
	return s.symbols
}

// Default returns the default symbol, empty when none
func (s *EnumSchema) Default() string {
	return s.symbol
}

// HasSymbol reports whether symbol belongs to the enum
func (s *EnumSchema) HasSymbol(symbol string) bool {
	for _, sym := range s.symbols {
		if sym == symbol {
			return true
		}
	}
	return false
}

// UnionSchema is an ordered set of alternatives.
// NewUnion does not validate its members, see derive.SafeUnion.
type UnionSchema struct {
	types []Schema
}

// NewUnion returns a union of types
func NewUnion(types ...Schema) *UnionSchema {
	return &UnionSchema{types: append([]Schema(nil), types...)}
}

// Type returns Union
func (s *UnionSchema) Type() Type {
	return Union
}

// Types returns a copy of the members
func (s *UnionSchema) Types() []Schema {
	return append([]Schema(nil), s.types...)
}

// Len returns the number of members
func (s *UnionSchema) Len() int {
	return len(s.types)
}

// Member returns the member at position i
func (s *UnionSchema) Member(i int) Schema {
	return s.types[i]
}

// NullIndex returns the position of the null member, -1 when absent
func (s *UnionSchema) NullIndex() int {
	for i, t := range s.types {
		if t.Type() == Null {
			return i
		}
	}
	return -1
}

// MoveFirst returns a union with member i moved to position 0, the relative
// order of the other members is kept.
func (s *UnionSchema) MoveFirst(i int) *UnionSchema {
	if i <= 0 || i >= len(s.types) {
		return s
	}
	types := make([]Schema, 0, len(s.types))
	types = append(types, s.types[i])
	types = append(types, s.types[:i]...)
	types = append(types, s.types[i+1:]...)
	return &UnionSchema{types: types}
}

func (s *UnionSchema) String() string {
	parts := make([]string, len(s.types))
	for i, t := range s.types {
		parts[i] = t.String()
	}
	return "union[" + strings.Join(parts, ",") + "]"
}

// RecordSchema is a named sequence of fields
type RecordSchema struct {
	name      string
	namespace string
	fields    []*Field
	defined   bool
	meta
}

// NewRecord returns a record without fields. Define closes it; until then it
// may only be referenced, which is how recursive records are built.
func NewRecord(name, namespace string, opts ...Option) *RecordSchema {
	return &RecordSchema{name: name, namespace: namespace, meta: newMeta(opts)}
}

// Define sets the fields of the record. It must be called once, before the
// record is handed out of the pass that created it.
func (s *RecordSchema) Define(fields []*Field) *RecordSchema {
	if s.defined {
		panic(fmt.Sprintf("schema: record %s defined twice", s.FullName()))
	}
	s.fields = append([]*Field(nil), fields...)
	s.defined = true
	return s
}

// Defined reports whether Define was called
func (s *RecordSchema) Defined() bool {
	return s.defined
}

// Type returns Record
func (s *RecordSchema) Type() Type {
	return Record
}

func (s *RecordSchema) Name() string {
	return s.name
}

func (s *RecordSchema) Namespace() string {
	return s.namespace
}

func (s *RecordSchema) FullName() string {
	return fullName(s.namespace, s.name)
}

func (s *RecordSchema) Aliases() []string {
	return s.aliases
}

func (s *RecordSchema) Doc() string {
	return s.doc
}

func (s *RecordSchema) Props() map[string]string {
	return s.props
}

func (s *RecordSchema) String() string {
	return s.FullName()
}

// Fields returns the ordered fields
func (s *RecordSchema) Fields() []*Field {
	return s.fields
}

// Field returns the field called name
func (s *RecordSchema) Field(name string) (*Field, bool) {
	for _, f := range s.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// Field is a record field
type Field struct {
	name string
	typ  Schema
	meta
}

// NewField returns a field
func NewField(name string, typ Schema, opts ...Option) *Field {
	return &Field{name: name, typ: typ, meta: newMeta(opts)}
}

func (f *Field) Name() string {
	return f.name
}

func (f *Field) Type() Schema {
	return f.typ
}

func (f *Field) Doc() string {
	return f.doc
}

func (f *Field) Aliases() []string {
	return f.aliases
}

func (f *Field) Props() map[string]string {
	return f.props
}

// Default returns the encoded default, nil when the field has none
func (f *Field) Default() *Default {
	if !f.hasDefault {
		return nil
	}
	return f.def
}

// HasDefault reports whether the field declares a default
func (f *Field) HasDefault() bool {
	return f.hasDefault
}

// Default is a default value normalized to the Avro JSON encoding of its
// schema. For union schemas Index is the position of the member the value
// was encoded against, otherwise it is -1.
type Default struct {
	value any
	index int
}

// NewDefault returns an encoded default
func NewDefault(value any, index int) *Default {
	return &Default{value: value, index: index}
}

// Value returns the encoded value, nil for the null default
func (d *Default) Value() any {
	return d.value
}

// Index returns the union member position, -1 when not a union default
func (d *Default) Index() int {
	return d.index
}

// IsNull reports whether the default is null
func (d *Default) IsNull() bool {
	return d.value == nil
}

// WithIndex returns a copy of d keyed to union position i
func (d *Default) WithIndex(i int) *Default {
	return &Default{value: d.value, index: i}
}
