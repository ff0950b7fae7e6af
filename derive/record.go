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

func (p *pass) product(t *descriptor.Type) (schema.Schema, error) {
	key := t.Key()
	if s, ok := p.memo[key]; ok {
		return s, nil
	}
	if p.inProgress[key] {
		return nil, p.errorf(ErrUnsupportedType, "recursive value type %s", t.FullName())
	}
	defer p.named()()

	if size := t.Annotations.Fixed; size != 0 {
		return p.fixed(t, size)
	}
	if len(t.Fields) == 1 {
		p.inProgress[key] = true
		s, err := p.valueType(t)
		delete(p.inProgress, key)
		if err != nil {
			return nil, err
		}
		p.remember(t, s)
		return s, nil
	}
	rec, fill := p.declareRecord(t)
	if err := fill(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *pass) fixed(t *descriptor.Type, size int) (schema.Schema, error) {
	if size < 1 {
		return nil, p.errorf(ErrInvalidFixedAnnotation, "fixed size of %s must be positive, got %d", t.FullName(), size)
	}
	if len(t.Fields) != 1 {
		p.log.Warn("fixed annotation replaces the fields of a record",
			"type", t.FullName(), "fields", len(t.Fields), "size", size)
	}
	name, namespace := p.names(t)
	s := schema.NewFixed(name, namespace, size)
	p.remember(t, s)
	return s, nil
}

// valueType replaces a single field wrapper with the schema of its field
func (p *pass) valueType(t *descriptor.Type) (schema.Schema, error) {
	defer p.enter(t.FullName())()
	f := t.Fields[0]
	defer p.enter(f.Name)()
	p.decimal = f.Annotations.Decimal
	defer func() { p.decimal = nil }()
	return p.derive(f.Type)
}

// declareRecord memoizes the record shell of t before any field is derived.
// fill derives the fields and completes the shell.
func (p *pass) declareRecord(t *descriptor.Type) (*schema.RecordSchema, func() error) {
	name, namespace := p.names(t)
	a := t.Annotations
	rec := schema.NewRecord(name, namespace,
		schema.WithDoc(a.Doc),
		schema.WithAliases(a.Aliases...),
		schema.WithProps(a.Props),
	)
	p.memo[t.Key()] = rec

	fill := func() error {
		defer p.enter(t.FullName())()
		defer p.named()()
		fields := make([]*schema.Field, 0, len(t.Fields))
		seen := make(map[string]bool, len(t.Fields))
		for _, f := range t.Fields {
			if f.Annotations.Transient {
				continue
			}
			sf, err := p.field(f, namespace)
			if err != nil {
				return err
			}
			if seen[sf.Name()] {
				return p.errorf(ErrUnsupportedType, "duplicate field name %q in %s", sf.Name(), rec.FullName())
			}
			seen[sf.Name()] = true
			fields = append(fields, sf)
		}
		rec.Define(fields)
		p.log.Debug("derived record", "record", rec.FullName(), "fields", len(fields))
		return nil
	}
	return rec, fill
}

// names resolves the schema name and namespace of a named type
func (p *pass) names(t *descriptor.Type) (name, namespace string) {
	a := t.Annotations
	name = t.Name
	switch {
	case a.Name != "":
		name = a.Name
	case len(t.TypeArgs) > 0 && !a.ErasedName:
		args := make([]string, 0, len(t.TypeArgs))
		for _, arg := range t.TypeArgs {
			args = append(args, typeArgName(arg))
		}
		name = naming.GenericName(name, args...)
	}
	namespace = t.Namespace
	if a.Namespace != "" {
		namespace = a.Namespace
	}
	return naming.SanitizeName(name), naming.SanitizeNamespace(namespace)
}

func typeArgName(t *descriptor.Type) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case descriptor.Primitive, descriptor.Container:
		return t.ID
	}
	if t.Annotations.Name != "" {
		return t.Annotations.Name
	}
	return t.Name
}
