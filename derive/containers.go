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
	"fmt"

	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/schema"
)

// TupleNamespace is the namespace of the records derived for tuples
const TupleNamespace = "tuple"

const maxTupleArity = 5

func (p *pass) container(t *descriptor.Type) (schema.Schema, error) {
	switch t.ID {
	case descriptor.Option:
		if err := p.arity(t, 1); err != nil {
			return nil, err
		}
		elem, err := p.derive(t.TypeArgs[0])
		if err != nil {
			return nil, err
		}
		return p.union(elem, schema.NewPrimitive(schema.Null))
	case descriptor.Either:
		if err := p.arity(t, 2); err != nil {
			return nil, err
		}
		left, err := p.derive(t.TypeArgs[0])
		if err != nil {
			return nil, err
		}
		right, err := p.derive(t.TypeArgs[1])
		if err != nil {
			return nil, err
		}
		return p.union(left, right)
	case descriptor.Array, descriptor.List, descriptor.Set, descriptor.Vector,
		descriptor.Seq, descriptor.Iterable:
		if err := p.arity(t, 1); err != nil {
			return nil, err
		}
		defer p.enter("[]")()
		items, err := p.derive(t.TypeArgs[0])
		if err != nil {
			return nil, err
		}
		return schema.NewArray(items), nil
	case descriptor.Map:
		return p.mapOf(t)
	case descriptor.Tuple:
		return p.tuple(t)
	case descriptor.Coproduct:
		return p.coproduct(t)
	case descriptor.CNil:
		return nil, p.errorf(ErrUnsupportedType, "cnil outside of a coproduct")
	}

	// user mappings may cover further containers
	s, ok, err := p.conf.Registry.Lookup(t, p.conf)
	if err != nil {
		e := p.errorf(ErrUnsupportedType, "mapping %q failed", t.ID)
		e.err = err
		return nil, e
	}
	if !ok {
		return nil, p.errorf(ErrUnsupportedType, "no schema for container %q", t.ID)
	}
	return s, nil
}

func (p *pass) arity(t *descriptor.Type, n int) error {
	if len(t.TypeArgs) != n {
		return p.errorf(ErrUnsupportedType, "%s takes %d type arguments, got %d", t.ID, n, len(t.TypeArgs))
	}
	return nil
}

func (p *pass) union(members ...schema.Schema) (schema.Schema, error) {
	u, err := SafeUnion(members...)
	if err != nil {
		return nil, p.at(err)
	}
	return u, nil
}

func (p *pass) mapOf(t *descriptor.Type) (schema.Schema, error) {
	if err := p.arity(t, 2); err != nil {
		return nil, err
	}
	key := t.TypeArgs[0]
	if key == nil || key.Kind != descriptor.Primitive || key.ID != descriptor.String {
		return nil, p.errorf(ErrUnsupportedType, "map keys must be strings, got %s", key)
	}
	defer p.enter("{}")()
	values, err := p.derive(t.TypeArgs[1])
	if err != nil {
		return nil, err
	}
	return schema.NewMap(values), nil
}

// tuple derives a record TupleN with positional fields _1.._N
func (p *pass) tuple(t *descriptor.Type) (schema.Schema, error) {
	n := len(t.TypeArgs)
	if n < 2 || n > maxTupleArity {
		return nil, p.errorf(ErrUnsupportedType, "tuples of arity %d are not supported", n)
	}
	key := t.Key()
	if s, ok := p.memo[key]; ok {
		return s, nil
	}
	rec := schema.NewRecord(fmt.Sprintf("Tuple%d", n), TupleNamespace)
	fields := make([]*schema.Field, 0, n)
	for i, arg := range t.TypeArgs {
		name := fmt.Sprintf("_%d", i+1)
		restore := p.enter(name)
		s, err := p.derive(arg)
		restore()
		if err != nil {
			return nil, err
		}
		fields = append(fields, schema.NewField(name, s))
	}
	rec.Define(fields)
	p.remember(t, rec)
	return rec, nil
}

// coproduct derives the innermost alternative first and folds each head into
// the union of its tail
func (p *pass) coproduct(t *descriptor.Type) (schema.Schema, error) {
	if err := p.arity(t, 2); err != nil {
		return nil, err
	}
	head, tail := t.TypeArgs[0], t.TypeArgs[1]
	if tail != nil && tail.Kind == descriptor.Container && tail.ID == descriptor.CNil {
		hs, err := p.derive(head)
		if err != nil {
			return nil, err
		}
		return p.union(hs)
	}
	if tail == nil || tail.Kind != descriptor.Container || tail.ID != descriptor.Coproduct {
		return nil, p.errorf(ErrUnsupportedType, "coproduct tail must be a coproduct or cnil, got %s", tail)
	}
	ts, err := p.derive(tail)
	if err != nil {
		return nil, err
	}
	hs, err := p.derive(head)
	if err != nil {
		return nil, err
	}
	return p.union(hs, ts)
}
