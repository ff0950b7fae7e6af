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
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/schema"
)

// encodeDefault encodes v against s. For a union the first member accepting
// v wins and its position is returned; index is -1 for other schemas.
func encodeDefault(v any, s schema.Schema) (encoded any, index int, err error) {
	u, ok := s.(*schema.UnionSchema)
	if !ok {
		encoded, err = encodeValue(v, s)
		return encoded, -1, err
	}
	// strings go to bytes and fixed members only when nothing else accepts them
	for _, fallback := range []bool{false, true} {
		for i, m := range u.Types() {
			if bytesFallback(v, m) != fallback {
				continue
			}
			if encoded, err = encodeValue(v, m); err == nil {
				return encoded, i, nil
			}
		}
	}
	return nil, -1, fmt.Errorf("no member of %s accepts %v (%T)", s, v, v)
}

// bytesFallback reports whether m would accept v only as the raw bytes of a string
func bytesFallback(v any, m schema.Schema) bool {
	if _, ok := deref(v).(string); !ok {
		return false
	}
	switch x := m.(type) {
	case *schema.FixedSchema:
		return true
	case *schema.PrimitiveSchema:
		return x.Type() == schema.Bytes
	}
	return false
}

// encodeNested encodes a value held inside an array, map or record default.
// Avro checks such values against the first member of a union only.
func encodeNested(v any, s schema.Schema) (any, error) {
	if u, ok := s.(*schema.UnionSchema); ok {
		if u.Len() == 0 {
			return nil, fmt.Errorf("empty union")
		}
		return encodeValue(v, u.Member(0))
	}
	return encodeValue(v, s)
}

func encodeValue(v any, s schema.Schema) (any, error) {
	v = deref(v)
	if tagged, ok := v.(descriptor.Tagged); ok {
		named, isNamed := s.(schema.Named)
		if !isNamed || (named.Name() != tagged.Name && named.FullName() != tagged.Name) {
			return nil, fmt.Errorf("%s is not %s", s, tagged.Name)
		}
		return encodeValue(tagged.Value, s)
	}

	switch x := s.(type) {
	case *schema.LogicalSchema:
		return encodeLogical(v, x)
	case *schema.PrimitiveSchema:
		return encodePrimitive(v, x.Type())
	case *schema.ArraySchema:
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, reject(v, s)
		}
		items := make([]any, rv.Len())
		for i := range items {
			item, err := encodeNested(rv.Index(i).Interface(), x.Items())
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			items[i] = item
		}
		return items, nil
	case *schema.MapSchema:
		entries, ok := stringMap(v)
		if !ok {
			return nil, reject(v, s)
		}
		out := make(map[string]any, len(entries))
		for k, e := range entries {
			enc, err := encodeNested(e, x.Values())
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = enc
		}
		return out, nil
	case *schema.FixedSchema:
		b, ok := rawBytes(v)
		if !ok || len(b) != x.Size() {
			return nil, reject(v, s)
		}
		return latin1(b), nil
	case *schema.EnumSchema:
		sym, ok := v.(string)
		if !ok || !x.HasSymbol(sym) {
			return nil, reject(v, s)
		}
		return sym, nil
	case *schema.RecordSchema:
		return encodeRecord(v, x)
	}
	return nil, reject(v, s)
}

func encodeRecord(v any, s *schema.RecordSchema) (any, error) {
	entries, ok := stringMap(v)
	if !ok {
		return nil, reject(v, s)
	}
	out := make(map[string]any, len(s.Fields()))
	for _, f := range s.Fields() {
		e, present := entries[f.Name()]
		if !present {
			if !f.HasDefault() {
				return nil, fmt.Errorf("%s: missing field %s", s, f.Name())
			}
			out[f.Name()] = f.Default().Value()
			continue
		}
		enc, err := encodeNested(e, f.Type())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s, f.Name(), err)
		}
		out[f.Name()] = enc
	}
	for k := range entries {
		if _, known := s.Field(k); !known {
			return nil, fmt.Errorf("%s: unknown field %s", s, k)
		}
	}
	return out, nil
}

func encodePrimitive(v any, typ schema.Type) (any, error) {
	switch typ {
	case schema.Null:
		if v == nil {
			return nil, nil
		}
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case schema.Int:
		if i, ok := asInt64(v); ok && i >= math.MinInt32 && i <= math.MaxInt32 {
			return int(i), nil
		}
	case schema.Long:
		if i, ok := asInt64(v); ok {
			return i, nil
		}
	case schema.Float:
		if f, ok := asFloat64(v); ok {
			return float32(f), nil
		}
	case schema.Double:
		if f, ok := asFloat64(v); ok {
			return f, nil
		}
	case schema.String:
		if str, ok := v.(string); ok {
			return str, nil
		}
	case schema.Bytes:
		if b, ok := rawBytes(v); ok {
			return latin1(b), nil
		}
	}
	return nil, reject(v, schema.NewPrimitive(typ))
}

func encodeLogical(v any, s *schema.LogicalSchema) (any, error) {
	switch s.Logical() {
	case schema.UUID:
		switch x := v.(type) {
		case uuid.UUID:
			return x.String(), nil
		case string:
			if _, err := uuid.Parse(x); err != nil {
				return nil, err
			}
			return x, nil
		}
	case schema.Decimal:
		d, ok := asDecimal(v)
		if !ok {
			break
		}
		b, err := decimalBytes(d, s.Precision(), s.Scale())
		if err != nil {
			return nil, err
		}
		return latin1(b), nil
	case schema.Date:
		if t, ok := v.(time.Time); ok {
			return int(epochDays(t)), nil
		}
	case schema.TimeMillis:
		if d, ok := v.(time.Duration); ok {
			return int(d.Milliseconds()), nil
		}
	case schema.TimeMicros:
		if d, ok := v.(time.Duration); ok {
			return d.Microseconds(), nil
		}
	case schema.TimestampMillis, schema.LocalTimestampMillis:
		if t, ok := v.(time.Time); ok {
			return t.UnixMilli(), nil
		}
	case schema.TimestampMicros, schema.LocalTimestampMicros:
		if t, ok := v.(time.Time); ok {
			return t.UnixMicro(), nil
		}
	}
	if _, isTime := v.(time.Time); isTime {
		return nil, reject(v, s)
	}
	if _, isDuration := v.(time.Duration); isDuration {
		return nil, reject(v, s)
	}
	// the physical encoding is accepted as is, e.g. a day count for a date
	if s.Logical() == schema.UUID || s.Logical() == schema.Decimal {
		return nil, reject(v, s)
	}
	return encodePrimitive(v, s.Type())
}

func reject(v any, s schema.Schema) error {
	return fmt.Errorf("%v (%T) is not a valid %s", v, v, s)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func asInt64(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if _, isDuration := v.(time.Duration); isDuration {
			return 0, false
		}
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case float32:
		return decimal.NewFromFloat32(x), true
	case float64:
		return decimal.NewFromFloat(x), true
	}
	if i, ok := asInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	return decimal.Decimal{}, false
}

// decimalBytes returns the big-endian two's complement of the unscaled value
func decimalBytes(d decimal.Decimal, precision, scale int) ([]byte, error) {
	rounded := d.Round(int32(scale))
	if !rounded.Equal(d) {
		return nil, fmt.Errorf("%s has more than %d fractional digits", d, scale)
	}
	unscaled := rounded.Shift(int32(scale)).BigInt()
	if digits := len(new(big.Int).Abs(unscaled).String()); digits > precision {
		return nil, fmt.Errorf("%s exceeds precision %d", d, precision)
	}
	return twosComplement(unscaled), nil
}

func twosComplement(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	magnitude := new(big.Int).Neg(n)
	size := (new(big.Int).Sub(magnitude, big.NewInt(1)).BitLen() + 8) / 8
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*size))
	b := new(big.Int).Add(mod, n).Bytes()
	for len(b) < size {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func epochDays(t time.Time) int64 {
	secs := t.UTC().Unix()
	days := secs / 86400
	if secs%86400 < 0 {
		days--
	}
	return days
}

func rawBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case string:
		return []byte(x), true
	}
	return nil, false
}

// latin1 maps every byte to the code point of the same value, which is how
// Avro writes bytes and fixed defaults in JSON
func latin1(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func stringMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
