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
	"sync"

	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/schema"
)

// Mapping returns the schema of a primitive type
type Mapping func(t *descriptor.Type, conf *Config) (schema.Schema, error)

type mappingRule struct {
	id      string
	match   func(t *descriptor.Type) bool
	mapping Mapping
}

func (r mappingRule) matches(t *descriptor.Type) bool {
	if r.match != nil {
		return r.match(t)
	}
	return r.id == t.ID
}

// Registry resolves primitive types to schemas.
//
// Rules registered by the user are checked first, in registration order, so
// they may override a built-in identifier. Built-ins are checked last. A type
// matched by neither fails the derivation with ErrUnsupportedType.
type Registry struct {
	mu    sync.RWMutex
	rules []mappingRule
}

// NewRegistry returns a registry holding only the built-in mappings
func NewRegistry() *Registry {
	return &Registry{}
}

// Register maps the primitive identifier id
func (r *Registry) Register(id string, mapping Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, mappingRule{id: id, mapping: mapping})
}

// RegisterFunc maps every primitive type accepted by match
func (r *Registry) RegisterFunc(match func(t *descriptor.Type) bool, mapping Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, mappingRule{match: match, mapping: mapping})
}

// Lookup returns the schema of the primitive type t. ok is false when no rule
// matches t.
func (r *Registry) Lookup(t *descriptor.Type, conf *Config) (s schema.Schema, ok bool, err error) {
	r.mu.RLock()
	rules := r.rules
	r.mu.RUnlock()
	for _, rule := range rules {
		if rule.matches(t) {
			s, err = rule.mapping(t, conf)
			return s, true, err
		}
	}
	if mapping, found := builtins[t.ID]; found {
		s, err = mapping(t, conf)
		return s, true, err
	}
	return nil, false, nil
}

// Builtin reports whether id is a built-in primitive identifier
func Builtin(id string) bool {
	_, ok := builtins[id]
	return ok
}

var builtins = map[string]Mapping{
	descriptor.Null:                 primitive(schema.Null),
	descriptor.Boolean:              primitive(schema.Boolean),
	descriptor.Byte:                 primitive(schema.Int),
	descriptor.Short:                primitive(schema.Int),
	descriptor.Int:                  primitive(schema.Int),
	descriptor.Long:                 primitive(schema.Long),
	descriptor.Float:                primitive(schema.Float),
	descriptor.Double:               primitive(schema.Double),
	descriptor.String:               primitive(schema.String),
	descriptor.Bytes:                primitive(schema.Bytes),
	descriptor.ByteArray:            primitive(schema.Bytes),
	descriptor.ByteList:             primitive(schema.Bytes),
	descriptor.ByteSeq:              primitive(schema.Bytes),
	descriptor.ByteVector:           primitive(schema.Bytes),
	descriptor.UUID:                 logical(schema.String, schema.UUID),
	descriptor.Date:                 logical(schema.Int, schema.Date),
	descriptor.TimeMillis:           logical(schema.Int, schema.TimeMillis),
	descriptor.TimeMicros:           logical(schema.Long, schema.TimeMicros),
	descriptor.TimestampMillis:      logical(schema.Long, schema.TimestampMillis),
	descriptor.TimestampMicros:      logical(schema.Long, schema.TimestampMicros),
	descriptor.LocalTimestampMillis: logical(schema.Long, schema.LocalTimestampMillis),
	descriptor.LocalTimestampMicros: logical(schema.Long, schema.LocalTimestampMicros),
	descriptor.Decimal:              decimalMapping,
}

func primitive(typ schema.Type) Mapping {
	return func(*descriptor.Type, *Config) (schema.Schema, error) {
		return schema.NewPrimitive(typ), nil
	}
}

func logical(typ schema.Type, l schema.LogicalType) Mapping {
	return func(*descriptor.Type, *Config) (schema.Schema, error) {
		return schema.NewLogical(typ, l), nil
	}
}

func decimalMapping(t *descriptor.Type, conf *Config) (schema.Schema, error) {
	if d := t.Annotations.Decimal; d != nil {
		return schema.NewDecimal(d.Precision, d.Scale), nil
	}
	return schema.NewDecimal(conf.DecimalPrecision, conf.DecimalScale), nil
}
