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
	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/naming"
	"github.com/sv3ndk/avro4s/schema"
)

// field derives the schema of f within a record of the given namespace
func (p *pass) field(f *descriptor.Field, namespace string) (*schema.Field, error) {
	defer p.enter(f.Name)()
	if f.Type == nil {
		return nil, p.errorf(ErrUnsupportedType, "field %s has no type", f.Name)
	}

	saved := p.decimal
	p.decimal = f.Annotations.Decimal
	s, err := p.derive(f.Type)
	p.decimal = saved
	if err != nil {
		return nil, err
	}

	var inheritedDoc string
	if f.Type.Kind == descriptor.Product && len(f.Type.Fields) == 1 {
		inheritedDoc = f.Type.Annotations.Doc
	}
	return p.buildField(fieldSpec{
		label:        f.Name,
		namespace:    namespace,
		annotations:  f.Annotations,
		schema:       s,
		def:          f.Default,
		inheritedDoc: inheritedDoc,
	})
}

// fieldSpec is the input of buildField
type fieldSpec struct {
	label        string
	namespace    string
	annotations  descriptor.Annotations
	schema       schema.Schema
	def          *descriptor.Default
	inheritedDoc string
}

// buildField turns a derived field schema into a record field: it resolves
// the name and doc, applies the fixed override, encodes the default and
// moves the union member matching the default first.
func (p *pass) buildField(in fieldSpec) (*schema.Field, error) {
	a := in.annotations

	label := in.label
	if a.Name != "" {
		label = a.Name
	}
	name := p.conf.FieldMapper(label)

	doc := a.Doc
	if doc == "" {
		doc = in.inheritedDoc
	}

	def := in.def
	if a.NoDefault {
		def = nil
	}

	namespace := in.namespace
	if a.Namespace != "" {
		namespace = naming.SanitizeNamespace(a.Namespace)
	}

	s := in.schema
	if a.Fixed != 0 {
		if a.Fixed < 0 {
			return nil, p.errorf(ErrInvalidFixedAnnotation, "fixed size of field %s must be positive, got %d", name, a.Fixed)
		}
		s = schema.NewFixed(naming.SanitizeName(name), namespace, a.Fixed)
	}

	if def.IsNull() && s.Type() != schema.Union {
		u, err := p.union(s, schema.NewPrimitive(schema.Null))
		if err != nil {
			return nil, err
		}
		s = u
	}

	var encoded *schema.Default
	if def != nil {
		value, index, err := encodeDefault(def.Value, s)
		if err != nil {
			e := p.errorf(ErrUnsupportedDefault, "default of field %s does not match %s", name, s)
			e.err = err
			return nil, e
		}
		encoded = schema.NewDefault(value, index)
	}

	if u, ok := s.(*schema.UnionSchema); ok {
		switch {
		case encoded != nil:
			u = u.MoveFirst(encoded.Index())
			encoded = encoded.WithIndex(0)
		case u.NullIndex() > 0:
			u = u.MoveFirst(u.NullIndex())
		}
		s = u
	}

	if a.Namespace != "" {
		s = schema.WithNamespace(s, namespace)
	}

	opts := []schema.Option{
		schema.WithDoc(doc),
		schema.WithAliases(a.Aliases...),
		schema.WithProps(a.Props),
	}
	if encoded != nil {
		opts = append(opts, schema.WithDefault(encoded))
	}
	return schema.NewField(name, s, opts...), nil
}
