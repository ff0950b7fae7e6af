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

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sv3ndk/avro4s/naming"
)

// Annotated is implemented by Go types carrying type level annotations.
// The method is called on the zero value of the type.
type Annotated interface {
	AvroAnnotations() Annotations
}

var annotatedType = reflect.TypeOf((*Annotated)(nil)).Elem()

// Builder builds type descriptors from Go types.
//
// Struct fields are read from their tags:
//   - `avro:"name"` renames the field, `avro:"-"` marks it transient
//   - `avro_doc`, `avro_namespace` and `avro_aliases` (comma separated)
//   - `avro_fixed:"16"` encodes the field as a fixed of that size
//   - `avro_default` holds the default as JSON, `avro_nodefault:"true"` drops it
//   - `avro_decimal:"precision,scale"` overrides the decimal parameters
//   - `avro_props:"k=v,k2=v2"` adds custom properties
type Builder struct {
	mu         sync.Mutex
	primitives map[reflect.Type]string
	sums       map[reflect.Type][]reflect.Type
	// Namespace returns the namespace of a named Go type. The default turns
	// the package path into a dotted namespace.
	Namespace func(t reflect.Type) string
}

// NewBuilder creates a Builder knowing the time, uuid and decimal types
func NewBuilder() *Builder {
	b := &Builder{
		primitives: make(map[reflect.Type]string),
		sums:       make(map[reflect.Type][]reflect.Type),
		Namespace:  PackageNamespace,
	}
	b.RegisterPrimitive(reflect.TypeOf(time.Time{}), TimestampMillis)
	b.RegisterPrimitive(reflect.TypeOf(time.Duration(0)), TimeMicros)
	b.RegisterPrimitive(reflect.TypeOf(uuid.UUID{}), UUID)
	b.RegisterPrimitive(reflect.TypeOf(decimal.Decimal{}), Decimal)
	return b
}

// RegisterPrimitive maps goType to the primitive id
func (b *Builder) RegisterPrimitive(goType reflect.Type, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.primitives[goType] = id
}

// RegisterSum declares the variants of the interface type iface. Variants
// are kept in the given order, which is their declaration order.
func (b *Builder) RegisterSum(iface reflect.Type, variants ...reflect.Type) error {
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("sum type %s must be an interface", iface)
	}
	if len(variants) == 0 {
		return fmt.Errorf("sum type %s needs at least one variant", iface)
	}
	for _, v := range variants {
		if !v.Implements(iface) {
			return fmt.Errorf("variant %s does not implement %s", v, iface)
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sums[iface] = append([]reflect.Type(nil), variants...)
	return nil
}

// Of returns the descriptor of the type of v
func (b *Builder) Of(v any) (*Type, error) {
	return b.Type(reflect.TypeOf(v))
}

// Type returns the descriptor of t
func (b *Builder) Type(t reflect.Type) (*Type, error) {
	if t == nil {
		return nil, fmt.Errorf("nil type")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	w := &walker{b: b, seen: make(map[reflect.Type]*Type)}
	return w.typeOf(t)
}

// FromType builds the descriptor of t with a new Builder
func FromType(t reflect.Type) (*Type, error) {
	return NewBuilder().Type(t)
}

// PackageNamespace returns the package path of t as a dotted namespace
func PackageNamespace(t reflect.Type) string {
	return strings.ReplaceAll(t.PkgPath(), "/", ".")
}

type walker struct {
	b    *Builder
	seen map[reflect.Type]*Type
}

func (w *walker) typeOf(t reflect.Type) (*Type, error) {
	if id, ok := w.b.primitives[t]; ok {
		return Prim(id), nil
	}
	if d, ok := w.seen[t]; ok {
		return d, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return Prim(Boolean), nil
	case reflect.Int8:
		return Prim(Byte), nil
	case reflect.Int16:
		return Prim(Short), nil
	case reflect.Int32, reflect.Uint8, reflect.Uint16:
		return Prim(Int), nil
	case reflect.Int, reflect.Int64, reflect.Uint32:
		return Prim(Long), nil
	case reflect.Float32:
		return Prim(Float), nil
	case reflect.Float64:
		return Prim(Double), nil
	case reflect.String:
		return Prim(String), nil
	case reflect.Pointer:
		elem, err := w.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return OptionOf(elem), nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			if t.Kind() == reflect.Slice {
				return Prim(Bytes), nil
			}
			return Prim(ByteArray), nil
		}
		elem, err := w.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return CollectionOf(Array, elem), nil
	case reflect.Map:
		key, err := w.typeOf(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := w.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return MapOf(key, value), nil
	case reflect.Interface:
		return w.sum(t)
	case reflect.Struct:
		return w.product(t)
	}
	return nil, fmt.Errorf("unsupported Go type %s", t)
}

func (w *walker) named(t reflect.Type, kind Kind) *Type {
	name := t.Name()
	if name == "" {
		name = "anonymous"
	}
	d := &Type{Kind: kind, Name: genericName(name), Namespace: w.b.Namespace(t)}
	if t.Implements(annotatedType) {
		d.Annotations = reflect.Zero(t).Interface().(Annotated).AvroAnnotations()
	}
	return d
}

func (w *walker) sum(t reflect.Type) (*Type, error) {
	variants, ok := w.b.sums[t]
	if !ok {
		return nil, fmt.Errorf("interface %s is not a registered sum type", t)
	}
	d := w.named(t, Sum)
	w.seen[t] = d
	for _, v := range variants {
		for v.Kind() == reflect.Pointer {
			v = v.Elem()
		}
		vd, err := w.typeOf(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t, err)
		}
		d.Variants = append(d.Variants, vd)
	}
	return d, nil
}

func (w *walker) product(t reflect.Type) (*Type, error) {
	d := w.named(t, Product)
	w.seen[t] = d
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		f, err := w.field(sf)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, sf.Name, err)
		}
		d.Fields = append(d.Fields, f)
	}
	return d, nil
}

func (w *walker) field(sf reflect.StructField) (*Field, error) {
	f := &Field{Name: sf.Name}
	tag := sf.Tag
	switch name := tag.Get("avro"); name {
	case "":
	case "-":
		f.Annotations.Transient = true
		return f, nil
	default:
		f.Name = name
	}

	ft, err := w.typeOf(sf.Type)
	if err != nil {
		return nil, err
	}
	f.Type = ft

	a := &f.Annotations
	a.Doc = tag.Get("avro_doc")
	a.Namespace = tag.Get("avro_namespace")
	if aliases := tag.Get("avro_aliases"); aliases != "" {
		a.Aliases = splitList(aliases)
	}
	if fixed := tag.Get("avro_fixed"); fixed != "" {
		if a.Fixed, err = strconv.Atoi(fixed); err != nil {
			return nil, fmt.Errorf("avro_fixed: %w", err)
		}
	}
	if v, ok := tag.Lookup("avro_nodefault"); ok {
		if a.NoDefault, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("avro_nodefault: %w", err)
		}
	}
	if v := tag.Get("avro_decimal"); v != "" {
		if a.Decimal, err = parseDecimalParams(v); err != nil {
			return nil, fmt.Errorf("avro_decimal: %w", err)
		}
	}
	if v := tag.Get("avro_props"); v != "" {
		a.Props = make(map[string]string)
		for _, kv := range splitList(v) {
			k, val, _ := strings.Cut(kv, "=")
			a.Props[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
	}
	if v, ok := tag.Lookup("avro_default"); ok {
		var value any
		if err := json.Unmarshal([]byte(v), &value); err != nil {
			return nil, fmt.Errorf("avro_default: %w", err)
		}
		f.Default = DefaultOf(value)
	}
	return f, nil
}

// genericName turns an instantiated Go generic name such as
// Page[github.com/acme/shop.Item,int] into its descriptor name Page__Item_Int
func genericName(name string) string {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name
	}
	base := name[:open]
	var args []string
	for _, arg := range splitList(name[open+1 : len(name)-1]) {
		arg = strings.TrimLeft(arg, "*[]")
		if i := strings.LastIndexByte(arg, '.'); i >= 0 {
			arg = arg[i+1:]
		}
		args = append(args, arg)
	}
	return naming.GenericName(base, args...)
}

func parseDecimalParams(v string) (*DecimalParams, error) {
	parts := splitList(v)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected precision,scale, got %q", v)
	}
	precision, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, err
	}
	scale, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, err
	}
	return &DecimalParams{Precision: precision, Scale: scale}, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
