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

// Package derive derives Avro schemas from type descriptors.
//
// A derivation pass walks a descriptor.Type recursively. Primitives resolve
// through the Registry, containers compose the schemas of their constituents,
// products become records and sums become enums or unions. Every named type
// is memoized for the duration of the pass, which makes recursive types
// terminate: a record refers to itself through the same schema instance.
package derive

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/sv3ndk/avro4s/cache"
	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/schema"
)

// Deriver derives schemas with a fixed configuration. It is safe for
// concurrent use, every call runs its own pass with its own memo table.
type Deriver struct {
	conf  *Config
	cache cache.Cache[uint64, schema.Schema]
}

// NewDeriver creates a Deriver. A nil conf selects NewConfig().
func NewDeriver(conf *Config) (*Deriver, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	d := &Deriver{conf: conf}
	switch {
	case conf.CacheCapacity > 0:
		c, err := cache.NewLRUCache[uint64, schema.Schema](conf.CacheCapacity)
		if err != nil {
			return nil, err
		}
		d.cache = c
	case conf.CacheCapacity == -1:
		d.cache = cache.NewMapCache[uint64, schema.Schema]()
	}
	return d, nil
}

// Derive runs a derivation pass for t. Finished schemas are cached by the
// hash of the descriptor signature when the configuration enables caching.
func (d *Deriver) Derive(t *descriptor.Type) (schema.Schema, error) {
	if t == nil {
		return nil, errors.New("avro4s: nil type descriptor")
	}
	if d.cache == nil {
		return newPass(d.conf).derive(t)
	}
	key := xxhash.Sum64String(t.Signature())
	if s, ok := d.cache.Get(key); ok {
		return s, nil
	}
	s, err := newPass(d.conf).derive(t)
	if err != nil {
		return nil, err
	}
	d.cache.Put(key, s)
	d.conf.logger().Debug("cached schema", "type", t.String(), "entries", d.cache.Len())
	return s, nil
}

// JSON derives t and renders the schema JSON
func (d *Deriver) JSON(t *descriptor.Type) ([]byte, error) {
	s, err := d.Derive(t)
	if err != nil {
		return nil, err
	}
	text, err := schema.JSON(s)
	if err != nil {
		return nil, fmt.Errorf("avro4s: render %s: %w", t, err)
	}
	return text, nil
}

// Derive runs a derivation pass for t with the default configuration
func Derive(t *descriptor.Type) (schema.Schema, error) {
	d, err := NewDeriver(nil)
	if err != nil {
		return nil, err
	}
	return d.Derive(t)
}

// pass is a single derivation. It is not safe for concurrent use.
type pass struct {
	conf       *Config
	log        *slog.Logger
	memo       map[string]schema.Schema
	inProgress map[string]bool
	path       []string
	// decimal is the precision and scale override of the field being derived
	decimal *descriptor.DecimalParams
}

func newPass(conf *Config) *pass {
	return &pass{
		conf:       conf,
		log:        conf.logger(),
		memo:       make(map[string]schema.Schema),
		inProgress: make(map[string]bool),
	}
}

func (p *pass) derive(t *descriptor.Type) (schema.Schema, error) {
	if t == nil {
		return nil, p.errorf(ErrUnsupportedType, "missing type descriptor")
	}
	switch t.Kind {
	case descriptor.Primitive:
		return p.primitive(t)
	case descriptor.Container:
		return p.container(t)
	case descriptor.Product:
		return p.product(t)
	case descriptor.Sum:
		return p.sum(t)
	case descriptor.Enum:
		return p.enum(t)
	default:
		return nil, p.errorf(ErrUnsupportedType, "unknown kind %s", t.Kind)
	}
}

func (p *pass) primitive(t *descriptor.Type) (schema.Schema, error) {
	conf := p.conf
	if p.decimal != nil && t.Annotations.Decimal == nil {
		overridden := *p.conf
		overridden.DecimalPrecision = p.decimal.Precision
		overridden.DecimalScale = p.decimal.Scale
		conf = &overridden
	}
	s, ok, err := conf.Registry.Lookup(t, conf)
	if err != nil {
		e := p.errorf(ErrUnsupportedType, "mapping %q failed", t.ID)
		e.err = err
		return nil, e
	}
	if !ok {
		return nil, p.errorf(ErrUnsupportedType, "no schema for %q", t.ID)
	}
	return s, nil
}

// named keeps the memo entry of a named type and detaches the decimal
// override, which only applies through containers of the field it is set on
func (p *pass) named() func() {
	saved := p.decimal
	p.decimal = nil
	return func() { p.decimal = saved }
}

func (p *pass) remember(t *descriptor.Type, s schema.Schema) {
	p.memo[t.Key()] = s
	p.log.Debug("derived schema", "type", t.FullName(), "kind", t.Kind.String(),
		"schema", s.Type(), "path", p.pathString())
}

func (p *pass) enter(segment string) func() {
	p.path = append(p.path, segment)
	return func() { p.path = p.path[:len(p.path)-1] }
}

func (p *pass) pathString() string {
	var b strings.Builder
	for i, s := range p.path {
		if i > 0 && !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
			b.WriteByte('.')
		}
		b.WriteString(s)
	}
	return b.String()
}

func (p *pass) errorf(code ErrorCode, format string, args ...interface{}) Error {
	return newError(code, p.pathString(), format, args...)
}

// at sets the current path on errors raised without one
func (p *pass) at(err error) error {
	var e Error
	if errors.As(err, &e) && e.path == "" {
		e.path = p.pathString()
		return e
	}
	return err
}
