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
	"sort"

	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/naming"
	"github.com/sv3ndk/avro4s/schema"
)

// sum derives an enum when every variant is a singleton and a union of the
// variant schemas otherwise. Variants are ordered by descending sort
// priority, ties keep their declaration order.
func (p *pass) sum(t *descriptor.Type) (schema.Schema, error) {
	key := t.Key()
	if s, ok := p.memo[key]; ok {
		return s, nil
	}
	if p.inProgress[key] {
		return nil, p.errorf(ErrUnsupportedType, "%s refers to itself outside of a record", t.FullName())
	}
	defer p.enter(t.FullName())()
	defer p.named()()

	s, fills, err := p.declareSum(t)
	if err != nil {
		return nil, err
	}

	// variant records may refer back to the sum
	for _, fill := range fills {
		if err := fill(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// declareSum memoizes the schema of t and returns the fill functions of the
// variant records still to be completed, nested sums included.
func (p *pass) declareSum(t *descriptor.Type) (schema.Schema, []func() error, error) {
	key := t.Key()
	if len(t.Variants) == 0 {
		return nil, nil, p.errorf(ErrUnsupportedType, "sum type %s has no variants", t.FullName())
	}
	variants := sortVariants(t.Variants)
	if allSingletons(variants) {
		s, err := p.enumOfSingletons(t, variants)
		return s, nil, err
	}

	p.inProgress[key] = true
	defer delete(p.inProgress, key)
	members := make([]schema.Schema, 0, len(variants))
	var fills []func() error
	for _, v := range variants {
		s, vf, err := p.declareVariant(v)
		if err != nil {
			return nil, nil, err
		}
		members = append(members, s)
		fills = append(fills, vf...)
	}
	u, err := p.union(members...)
	if err != nil {
		return nil, nil, err
	}
	p.remember(t, u)
	return u, fills, nil
}

// declareVariant returns the schema of a variant. Records and the records of
// nested sums come back as shells with the fill functions completing them.
func (p *pass) declareVariant(v *descriptor.Type) (schema.Schema, []func() error, error) {
	if v != nil && v.Kind == descriptor.Sum {
		key := v.Key()
		if s, ok := p.memo[key]; ok {
			return s, nil, nil
		}
		if p.inProgress[key] {
			return nil, nil, p.errorf(ErrUnsupportedType, "%s refers to itself outside of a record", v.FullName())
		}
		defer p.enter(v.FullName())()
		return p.declareSum(v)
	}
	if v == nil || v.Kind != descriptor.Product || len(v.Fields) == 1 || v.Annotations.Fixed != 0 {
		s, err := p.derive(v)
		return s, nil, err
	}
	if s, ok := p.memo[v.Key()]; ok {
		return s, nil, nil
	}
	rec, fill := p.declareRecord(v)
	return rec, []func() error{fill}, nil
}

func sortVariants(variants []*descriptor.Type) []*descriptor.Type {
	sorted := append([]*descriptor.Type(nil), variants...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priority(sorted[i]) > priority(sorted[j])
	})
	return sorted
}

func priority(t *descriptor.Type) float64 {
	if t == nil {
		return 0
	}
	return t.Annotations.SortPriority
}

func allSingletons(variants []*descriptor.Type) bool {
	for _, v := range variants {
		if v == nil || !v.IsSingleton() {
			return false
		}
	}
	return true
}

func (p *pass) enumOfSingletons(t *descriptor.Type, variants []*descriptor.Type) (schema.Schema, error) {
	symbols := make([]string, 0, len(variants))
	var defaults []string
	for _, v := range variants {
		symbol := v.Name
		if v.Annotations.Name != "" {
			symbol = v.Annotations.Name
		}
		symbol = naming.SanitizeName(symbol)
		symbols = append(symbols, symbol)
		if v.Annotations.EnumDefault {
			defaults = append(defaults, symbol)
		}
	}
	var symbol string
	switch len(defaults) {
	case 0:
	case 1:
		symbol = defaults[0]
	default:
		p.log.Warn("several enum defaults, none is used", "type", t.FullName(), "symbols", defaults)
	}
	return p.newEnum(t, symbols, symbol)
}

func (p *pass) enum(t *descriptor.Type) (schema.Schema, error) {
	key := t.Key()
	if s, ok := p.memo[key]; ok {
		return s, nil
	}
	defer p.enter(t.FullName())()
	if len(t.Symbols) == 0 {
		return nil, p.errorf(ErrUnsupportedType, "enum %s has no symbols", t.FullName())
	}
	symbols := make([]string, 0, len(t.Symbols))
	for _, s := range t.Symbols {
		symbols = append(symbols, naming.SanitizeName(s))
	}
	symbol := t.DefaultSymbol
	if symbol != "" {
		symbol = naming.SanitizeName(symbol)
	}
	return p.newEnum(t, symbols, symbol)
}

func (p *pass) newEnum(t *descriptor.Type, symbols []string, symbol string) (schema.Schema, error) {
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s == "" {
			return nil, p.errorf(ErrUnsupportedType, "%s has a symbol without valid characters", t.FullName())
		}
		if seen[s] {
			return nil, p.errorf(ErrUnsupportedType, "%s has duplicate symbol %q", t.FullName(), s)
		}
		seen[s] = true
	}
	if symbol != "" && !seen[symbol] {
		return nil, p.errorf(ErrUnsupportedDefault, "default symbol %q is not a symbol of %s", symbol, t.FullName())
	}
	name, namespace := p.names(t)
	a := t.Annotations
	e := schema.NewEnum(name, namespace, symbols,
		schema.WithDoc(a.Doc),
		schema.WithAliases(a.Aliases...),
		schema.WithProps(a.Props),
		schema.WithDefaultSymbol(symbol),
	)
	p.remember(t, e)
	return e, nil
}
