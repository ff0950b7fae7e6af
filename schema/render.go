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
	"fmt"

	"github.com/goccy/go-json"
	"github.com/hamba/avro/v2"
)

// Avro renders s into hamba/avro schema objects. The first occurrence of a
// named type carries its definition, later ones are name references. Two
// different definitions sharing a full name are an error.
func Avro(s Schema) (avro.Schema, error) {
	r := &renderer{
		nodes:   make(map[string]Named),
		defined: make(map[string]avro.NamedSchema),
		pending: make(map[string]avro.NamedSchema),
	}
	return r.render(s)
}

// JSON renders s to the Avro schema JSON grammar, including docs, aliases,
// custom properties and defaults.
func JSON(s Schema) ([]byte, error) {
	a, err := Avro(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(a)
}

// PrettyJSON is JSON with indentation
func PrettyJSON(s Schema) ([]byte, error) {
	a, err := Avro(s)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(a, "", "  ")
}

// Parse renders s and parses the result back, which links recursive name
// references to their definitions. Each call uses its own schema cache so
// unrelated schemas sharing names do not interfere.
func Parse(s Schema) (avro.Schema, error) {
	text, err := JSON(s)
	if err != nil {
		return nil, err
	}
	parsed, err := avro.ParseWithCache(string(text), "", &avro.SchemaCache{})
	if err != nil {
		return nil, fmt.Errorf("schema: parse rendered schema: %w", err)
	}
	return parsed, nil
}

// Fingerprint returns the CRC-64-AVRO fingerprint of the parsing canonical
// form of s.
func Fingerprint(s Schema) ([]byte, error) {
	parsed, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return parsed.FingerprintUsing(avro.CRC64Avro)
}

type renderer struct {
	nodes   map[string]Named
	defined map[string]avro.NamedSchema
	pending map[string]avro.NamedSchema
}

func (r *renderer) render(s Schema) (avro.Schema, error) {
	switch x := s.(type) {
	case *PrimitiveSchema:
		return avro.NewPrimitiveSchema(avro.Type(x.typ), nil), nil
	case *LogicalSchema:
		var logical avro.LogicalSchema
		if x.logical == Decimal {
			logical = avro.NewDecimalLogicalSchema(x.Precision(), x.Scale())
		} else {
			logical = avro.NewPrimitiveLogicalSchema(avro.LogicalType(x.logical))
		}
		return avro.NewPrimitiveSchema(avro.Type(x.typ), logical), nil
	case *ArraySchema:
		items, err := r.render(x.items)
		if err != nil {
			return nil, err
		}
		return avro.NewArraySchema(items), nil
	case *MapSchema:
		values, err := r.render(x.values)
		if err != nil {
			return nil, err
		}
		return avro.NewMapSchema(values), nil
	case *UnionSchema:
		types := make([]avro.Schema, len(x.types))
		for i, t := range x.types {
			rt, err := r.render(t)
			if err != nil {
				return nil, err
			}
			types[i] = rt
		}
		u, err := avro.NewUnionSchema(types)
		if err != nil {
			return nil, fmt.Errorf("schema: union %s: %w", x, err)
		}
		return u, nil
	case Named:
		return r.renderNamed(x)
	default:
		return nil, fmt.Errorf("schema: cannot render %T", s)
	}
}

func (r *renderer) renderNamed(s Named) (avro.Schema, error) {
	name := s.FullName()
	if seen, ok := r.nodes[name]; ok {
		if seen != s && !SameDefinition(seen, s) {
			return nil, fmt.Errorf("schema: conflicting definitions for %s", name)
		}
		if done, ok := r.defined[name]; ok {
			return avro.NewRefSchema(done), nil
		}
		return avro.NewRefSchema(r.pending[name]), nil
	}
	r.nodes[name] = s

	var (
		out avro.NamedSchema
		err error
	)
	switch x := s.(type) {
	case *FixedSchema:
		out, err = avro.NewFixedSchema(x.name, x.namespace, x.size, nil)
	case *EnumSchema:
		opts := namedOptions(x.meta)
		if x.symbol != "" {
			opts = append(opts, avro.WithDefault(x.symbol))
		}
		out, err = avro.NewEnumSchema(x.name, x.namespace, x.symbols, opts...)
	case *RecordSchema:
		out, err = r.renderRecord(x)
	default:
		err = fmt.Errorf("schema: cannot render %T", s)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", name, err)
	}
	r.defined[name] = out
	return out, nil
}

func (r *renderer) renderRecord(s *RecordSchema) (avro.NamedSchema, error) {
	// recursive references point at a placeholder carrying the same name,
	// only the name is written for a reference
	placeholder, err := avro.NewRecordSchema(s.name, s.namespace, nil)
	if err != nil {
		return nil, err
	}
	r.pending[s.FullName()] = placeholder

	fields := make([]*avro.Field, 0, len(s.fields))
	for _, f := range s.fields {
		typ, err := r.render(f.typ)
		if err != nil {
			return nil, err
		}
		opts := namedOptions(f.meta)
		if f.hasDefault {
			opts = append(opts, avro.WithDefault(f.def.value))
		}
		af, err := avro.NewField(f.name, typ, opts...)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.name, err)
		}
		fields = append(fields, af)
	}
	return avro.NewRecordSchema(s.name, s.namespace, fields, namedOptions(s.meta)...)
}

func namedOptions(m meta) []avro.SchemaOption {
	var opts []avro.SchemaOption
	if m.doc != "" {
		opts = append(opts, avro.WithDoc(m.doc))
	}
	if len(m.aliases) > 0 {
		opts = append(opts, avro.WithAliases(m.aliases))
	}
	if len(m.props) > 0 {
		props := make(map[string]any, len(m.props))
		for k, v := range m.props {
			props[k] = v
		}
		opts = append(opts, avro.WithProps(props))
	}
	return opts
}
