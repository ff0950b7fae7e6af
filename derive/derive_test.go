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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sv3ndk/avro4s/descriptor"
	"github.com/sv3ndk/avro4s/schema"
)

var (
	intType    = descriptor.Prim(descriptor.Int)
	longType   = descriptor.Prim(descriptor.Long)
	stringType = descriptor.Prim(descriptor.String)
	doubleType = descriptor.Prim(descriptor.Double)
)

func deriveWith(t *testing.T, typ *descriptor.Type, conf *Config) schema.Schema {
	t.Helper()
	d, err := NewDeriver(conf)
	require.NoError(t, err)
	s, err := d.Derive(typ)
	require.NoError(t, err)
	return s
}

func mustDerive(t *testing.T, typ *descriptor.Type) schema.Schema {
	t.Helper()
	return deriveWith(t, typ, nil)
}

func requireCode(t *testing.T, err error, code ErrorCode) Error {
	t.Helper()
	require.Error(t, err)
	var e Error
	require.True(t, errors.As(err, &e), "expected a derive.Error, got %T: %v", err, err)
	require.Equal(t, code, e.Code(), e.Error())
	return e
}

func fieldOf(t *testing.T, s schema.Schema, name string) *schema.Field {
	t.Helper()
	rec, ok := s.(*schema.RecordSchema)
	require.True(t, ok, "%s is not a record", s)
	f, ok := rec.Field(name)
	require.True(t, ok, "%s has no field %s", rec, name)
	return f
}

func withDefault(f *descriptor.Field, def *descriptor.Default) *descriptor.Field {
	f.Default = def
	return f
}

func annotated(f *descriptor.Field, a descriptor.Annotations) *descriptor.Field {
	f.Annotations = a
	return f
}

func TestSmokeRecord(t *testing.T) {
	person := descriptor.NewProduct("com.example", "Person",
		descriptor.NewField("name", stringType),
		descriptor.NewField("tags", descriptor.ListOf(stringType)),
		descriptor.NewField("score", descriptor.OptionOf(doubleType)),
	)
	s := mustDerive(t, person)

	rec := s.(*schema.RecordSchema)
	assert.Equal(t, "com.example.Person", rec.FullName())
	require.Len(t, rec.Fields(), 3)

	assert.Equal(t, schema.String, fieldOf(t, s, "name").Type().Type())
	tags := fieldOf(t, s, "tags").Type().(*schema.ArraySchema)
	assert.Equal(t, schema.String, tags.Items().Type())

	score := fieldOf(t, s, "score")
	assert.Equal(t, "union[null,double]", score.Type().String())
	assert.False(t, score.HasDefault())

	_, err := schema.Parse(s)
	require.NoError(t, err)
}

func TestPrimitiveTable(t *testing.T) {
	for id, want := range map[string]string{
		descriptor.Null:                 "null",
		descriptor.Boolean:              "boolean",
		descriptor.Byte:                 "int",
		descriptor.Short:                "int",
		descriptor.Int:                  "int",
		descriptor.Long:                 "long",
		descriptor.Float:                "float",
		descriptor.Double:               "double",
		descriptor.String:               "string",
		descriptor.Bytes:                "bytes",
		descriptor.ByteArray:            "bytes",
		descriptor.ByteList:             "bytes",
		descriptor.ByteSeq:              "bytes",
		descriptor.ByteVector:           "bytes",
		descriptor.UUID:                 "string(uuid)",
		descriptor.Decimal:              "bytes(decimal,8,2)",
		descriptor.Date:                 "int(date)",
		descriptor.TimeMillis:           "int(time-millis)",
		descriptor.TimeMicros:           "long(time-micros)",
		descriptor.TimestampMillis:      "long(timestamp-millis)",
		descriptor.TimestampMicros:      "long(timestamp-micros)",
		descriptor.LocalTimestampMillis: "long(local-timestamp-millis)",
		descriptor.LocalTimestampMicros: "long(local-timestamp-micros)",
	} {
		assert.True(t, Builtin(id), id)
		assert.Equal(t, want, mustDerive(t, descriptor.Prim(id)).String(), id)
	}
}

func TestDecimalParameters(t *testing.T) {
	s := mustDerive(t, descriptor.Prim(descriptor.Decimal))
	text, err := schema.JSON(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"bytes","logicalType":"decimal","precision":8,"scale":2}`, string(text))

	conf := NewConfig()
	conf.DecimalPrecision = 10
	conf.DecimalScale = 3
	assert.Equal(t, "bytes(decimal,10,3)", deriveWith(t, descriptor.Prim(descriptor.Decimal), conf).String())
}

func TestDecimalFieldOverride(t *testing.T) {
	money := descriptor.NewProduct("com.shop", "Money",
		descriptor.NewField("amount", descriptor.Prim(descriptor.Decimal)),
		descriptor.NewField("currency", stringType),
	)
	override := descriptor.Annotations{Decimal: &descriptor.DecimalParams{Precision: 12, Scale: 4}}
	invoice := descriptor.NewProduct("com.shop", "Invoice",
		annotated(descriptor.NewField("total", descriptor.Prim(descriptor.Decimal)), override),
		annotated(descriptor.NewField("lines", descriptor.ListOf(descriptor.OptionOf(descriptor.Prim(descriptor.Decimal)))), override),
		annotated(descriptor.NewField("price", money), override),
	)
	s := mustDerive(t, invoice)

	assert.Equal(t, "bytes(decimal,12,4)", fieldOf(t, s, "total").Type().String())
	assert.Equal(t, "array<union[bytes(decimal,12,4),null]>", fieldOf(t, s, "lines").Type().String())
	price := fieldOf(t, s, "price").Type()
	assert.Equal(t, "bytes(decimal,8,2)", fieldOf(t, price, "amount").Type().String())
}

func TestDeterminism(t *testing.T) {
	build := func() *descriptor.Type {
		item := descriptor.NewProduct("com.shop", "Item",
			descriptor.NewField("sku", stringType),
			descriptor.NewField("qty", intType),
		)
		return descriptor.NewProduct("com.shop", "Order",
			descriptor.NewField("items", descriptor.ListOf(item)),
			descriptor.NewField("meta", descriptor.MapOf(stringType, descriptor.OptionOf(longType))),
			descriptor.NewField("pick", descriptor.EitherOf(item, stringType)),
		)
	}
	a := mustDerive(t, build())
	b := mustDerive(t, build())
	require.True(t, schema.SameDefinition(a.(schema.Named), b.(schema.Named)))

	ca, err := schema.Canonical(a)
	require.NoError(t, err)
	cb, err := schema.Canonical(b)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestValueTypeCollapse(t *testing.T) {
	userID := descriptor.NewProduct("com.shop", "UserId", descriptor.NewField("value", stringType))
	userID.Annotations.Doc = "identifies a user"
	assert.Equal(t, schema.String, mustDerive(t, userID).Type())

	account := descriptor.NewProduct("com.shop", "Account",
		descriptor.NewField("owner", userID),
		annotated(descriptor.NewField("backup", userID), descriptor.Annotations{Doc: "own doc"}),
	)
	s := mustDerive(t, account)
	assert.Equal(t, "identifies a user", fieldOf(t, s, "owner").Doc())
	assert.Equal(t, "own doc", fieldOf(t, s, "backup").Doc())
	assert.Equal(t, schema.String, fieldOf(t, s, "owner").Type().Type())
}

func TestRecursiveValueType(t *testing.T) {
	wrapper := descriptor.NewProduct("com.x", "Wrapper")
	wrapper.Fields = []*descriptor.Field{descriptor.NewField("inner", descriptor.OptionOf(wrapper))}
	_, err := Derive(wrapper)
	requireCode(t, err, ErrUnsupportedType)
}

func TestRecursiveRecord(t *testing.T) {
	tree := descriptor.NewProduct("com.x", "Tree")
	tree.Fields = []*descriptor.Field{
		descriptor.NewField("value", intType),
		descriptor.NewField("children", descriptor.ListOf(tree)),
		descriptor.NewField("parent", descriptor.OptionOf(tree)),
	}
	s := mustDerive(t, tree)
	rec := s.(*schema.RecordSchema)
	children := fieldOf(t, s, "children").Type().(*schema.ArraySchema)
	assert.Same(t, rec, children.Items())
	parent := fieldOf(t, s, "parent").Type().(*schema.UnionSchema)
	assert.Same(t, rec, parent.Member(1))

	parsed, err := schema.Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "com.x.Tree", parsed.(interface{ FullName() string }).FullName())
}

func TestRecursiveSum(t *testing.T) {
	expr := descriptor.NewSum("com.calc", "Expr")
	lit := descriptor.NewProduct("com.calc", "Lit", descriptor.NewField("value", intType), descriptor.NewField("label", stringType))
	add := descriptor.NewProduct("com.calc", "Add", descriptor.NewField("left", expr), descriptor.NewField("right", expr))
	expr.Variants = []*descriptor.Type{lit, add}

	s := mustDerive(t, expr)
	u := s.(*schema.UnionSchema)
	require.Equal(t, 2, u.Len())
	assert.Equal(t, "com.calc.Lit", u.Member(0).String())
	addRec := u.Member(1).(*schema.RecordSchema)
	require.True(t, addRec.Defined())
	left := fieldOf(t, addRec, "left").Type().(*schema.UnionSchema)
	assert.Same(t, addRec, left.Member(1))

	_, err := schema.Parse(s)
	require.NoError(t, err)
}

func TestRecursiveNestedSum(t *testing.T) {
	expr := descriptor.NewSum("com.calc", "Expr")
	lit := descriptor.NewProduct("com.calc", "Lit", descriptor.NewField("value", intType), descriptor.NewField("label", stringType))
	add := descriptor.NewProduct("com.calc", "Add", descriptor.NewField("left", expr), descriptor.NewField("right", expr))
	mul := descriptor.NewProduct("com.calc", "Mul", descriptor.NewField("left", expr), descriptor.NewField("right", expr))
	expr.Variants = []*descriptor.Type{lit, descriptor.NewSum("com.calc", "BinOp", add, mul)}

	s := mustDerive(t, expr)
	u := s.(*schema.UnionSchema)
	require.Equal(t, 3, u.Len())
	assert.Equal(t, "com.calc.Lit", u.Member(0).String())
	assert.Equal(t, "com.calc.Add", u.Member(1).String())
	assert.Equal(t, "com.calc.Mul", u.Member(2).String())
	for i := 1; i < 3; i++ {
		rec := u.Member(i).(*schema.RecordSchema)
		require.True(t, rec.Defined())
		left := fieldOf(t, rec, "left").Type().(*schema.UnionSchema)
		assert.Equal(t, 3, left.Len())
		assert.Same(t, rec, left.Member(i))
	}

	_, err := schema.Parse(s)
	require.NoError(t, err)
}

func TestSumEnumMode(t *testing.T) {
	singleton := func(name string, priority float64) *descriptor.Type {
		v := descriptor.NewProduct("com.x", name)
		v.Annotations.SortPriority = priority
		return v
	}
	d := singleton("D", 0)
	d.Annotations.EnumDefault = true
	sum := descriptor.NewSum("com.x", "Letter",
		singleton("A", 1), singleton("B", 3), singleton("C", 3), d)
	sum.Annotations.Doc = "letters"

	e, ok := mustDerive(t, sum).(*schema.EnumSchema)
	require.True(t, ok)
	assert.Equal(t, []string{"B", "C", "A", "D"}, e.Symbols())
	assert.Equal(t, "D", e.Default())
	assert.Equal(t, "letters", e.Doc())
	assert.Equal(t, "com.x.Letter", e.FullName())
}

func TestSumUnionMode(t *testing.T) {
	card := descriptor.NewProduct("com.pay", "Card", descriptor.NewField("number", stringType), descriptor.NewField("cvc", intType))
	cash := descriptor.NewProduct("com.pay", "Cash")
	cash.Annotations.SortPriority = 1
	payment := descriptor.NewSum("com.pay", "Payment", card, cash)

	u := mustDerive(t, payment).(*schema.UnionSchema)
	assert.Equal(t, "union[com.pay.Cash,com.pay.Card]", u.String())
	assert.Empty(t, u.Member(0).(*schema.RecordSchema).Fields())
}

func TestEnumKind(t *testing.T) {
	color := descriptor.NewEnum("com.x", "Color", "RED", "GREEN", "dark-blue")
	color.DefaultSymbol = "RED"
	e := mustDerive(t, color).(*schema.EnumSchema)
	assert.Equal(t, []string{"RED", "GREEN", "darkblue"}, e.Symbols())
	assert.Equal(t, "RED", e.Default())

	color.DefaultSymbol = "PURPLE"
	_, err := Derive(color)
	requireCode(t, err, ErrUnsupportedDefault)

	_, err = Derive(descriptor.NewEnum("com.x", "Twice", "A", "A"))
	requireCode(t, err, ErrUnsupportedType)
}

func TestUnionFieldOrdering(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "Choices",
		withDefault(descriptor.NewField("pick", descriptor.EitherOf(stringType, intType)), descriptor.DefaultOf(5)),
		withDefault(descriptor.NewField("count", descriptor.OptionOf(intType)), descriptor.DefaultOf(3)),
		withDefault(descriptor.NewField("label", descriptor.OptionOf(stringType)), descriptor.NullDefault()),
		descriptor.NewField("maybe", descriptor.OptionOf(longType)),
		withDefault(descriptor.NewField("plain", intType), descriptor.NullDefault()),
	)
	s := mustDerive(t, rec)

	for name, want := range map[string]string{
		"pick":  "union[int,string]",
		"count": "union[int,null]",
		"label": "union[null,string]",
		"maybe": "union[null,long]",
		"plain": "union[null,int]",
	} {
		assert.Equal(t, want, fieldOf(t, s, name).Type().String(), name)
	}

	pick := fieldOf(t, s, "pick").Default()
	require.NotNil(t, pick)
	assert.Equal(t, 5, pick.Value())
	assert.Equal(t, 0, pick.Index())
	assert.True(t, fieldOf(t, s, "label").Default().IsNull())
	assert.True(t, fieldOf(t, s, "plain").Default().IsNull())

	// every union default is accepted by the first member
	for _, f := range s.(*schema.RecordSchema).Fields() {
		if u, ok := f.Type().(*schema.UnionSchema); ok && f.HasDefault() {
			_, err := encodeValue(f.Default().Value(), u.Member(0))
			assert.NoError(t, err, f.Name())
		}
	}
	_, err := schema.Parse(s)
	require.NoError(t, err)
}

func TestSumFieldDefault(t *testing.T) {
	card := descriptor.NewProduct("com.pay", "Card", descriptor.NewField("number", stringType), descriptor.NewField("cvc", intType))
	cash := descriptor.NewProduct("com.pay", "Cash")
	payment := descriptor.NewSum("com.pay", "Payment", card, cash)
	order := descriptor.NewProduct("com.pay", "Checkout",
		withDefault(descriptor.NewField("payment", payment), descriptor.DefaultOf(descriptor.Tagged{Name: "Cash", Value: map[string]any{}})),
		descriptor.NewField("fallback", payment),
	)
	s := mustDerive(t, order)
	assert.Equal(t, "union[com.pay.Cash,com.pay.Card]", fieldOf(t, s, "payment").Type().String())
	assert.Equal(t, map[string]any{}, fieldOf(t, s, "payment").Default().Value())
	assert.Equal(t, "union[com.pay.Card,com.pay.Cash]", fieldOf(t, s, "fallback").Type().String())

	_, err := schema.Parse(s)
	require.NoError(t, err)
}

func TestTuple(t *testing.T) {
	s := mustDerive(t, descriptor.TupleOf(intType, stringType))
	rec := s.(*schema.RecordSchema)
	assert.Equal(t, TupleNamespace+".Tuple2", rec.FullName())
	require.Len(t, rec.Fields(), 2)
	assert.Equal(t, "_1", rec.Fields()[0].Name())
	assert.Equal(t, schema.Int, rec.Fields()[0].Type().Type())
	assert.Equal(t, "_2", rec.Fields()[1].Name())
	assert.Equal(t, schema.String, rec.Fields()[1].Type().Type())

	_, err := Derive(descriptor.TupleOf(intType))
	requireCode(t, err, ErrUnsupportedType)
	_, err = Derive(descriptor.TupleOf(intType, intType, intType, intType, intType, intType))
	requireCode(t, err, ErrUnsupportedType)
}

func TestCoproduct(t *testing.T) {
	s := mustDerive(t, descriptor.CoproductOf(intType, stringType, descriptor.Prim(descriptor.Boolean)))
	assert.Equal(t, "union[int,string,boolean]", s.String())

	single := mustDerive(t, descriptor.CoproductOf(longType))
	assert.Equal(t, "union[long]", single.String())

	nested := mustDerive(t, descriptor.CoproductOf(descriptor.OptionOf(intType), stringType))
	assert.Equal(t, "union[int,null,string]", nested.String())

	_, err := Derive(descriptor.CoproductOf())
	requireCode(t, err, ErrUnsupportedType)
}

func TestOptionOfUnionFlattens(t *testing.T) {
	s := mustDerive(t, descriptor.OptionOf(descriptor.EitherOf(intType, stringType)))
	assert.Equal(t, "union[int,string,null]", s.String())
	s = mustDerive(t, descriptor.OptionOf(descriptor.OptionOf(intType)))
	assert.Equal(t, "union[int,null]", s.String())
}

func TestMapKeys(t *testing.T) {
	s := mustDerive(t, descriptor.MapOf(stringType, longType))
	assert.Equal(t, "map<long>", s.String())

	bad := descriptor.NewProduct("com.shop", "Bad",
		descriptor.NewField("id", intType),
		descriptor.NewField("lookup", descriptor.MapOf(intType, stringType)),
	)
	_, err := Derive(bad)
	e := requireCode(t, err, ErrUnsupportedType)
	assert.Equal(t, "com.shop.Bad.lookup", e.Path())
	assert.Contains(t, e.Error(), "map keys must be strings")
}

func TestInvalidUnion(t *testing.T) {
	_, err := Derive(descriptor.EitherOf(descriptor.ListOf(intType), descriptor.ListOf(stringType)))
	requireCode(t, err, ErrInvalidUnion)
}

func TestBadDefault(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "Bad",
		withDefault(descriptor.NewField("count", intType), descriptor.DefaultOf("many")),
		descriptor.NewField("other", intType),
	)
	_, err := Derive(rec)
	e := requireCode(t, err, ErrUnsupportedDefault)
	assert.Equal(t, "com.x.Bad.count", e.Path())
	assert.NotNil(t, errors.Unwrap(e))

	rec.Fields[0].Annotations.NoDefault = true
	s := mustDerive(t, rec)
	assert.False(t, fieldOf(t, s, "count").HasDefault())
}

func TestNamespaceOverride(t *testing.T) {
	address := descriptor.NewProduct("com.x", "Address",
		descriptor.NewField("street", stringType),
		descriptor.NewField("kind", descriptor.NewEnum("com.x", "Kind", "HOME", "WORK")),
	)
	user := descriptor.NewProduct("com.x", "User",
		annotated(descriptor.NewField("home", address), descriptor.Annotations{Namespace: "org.y"}),
		descriptor.NewField("work", address),
	)
	s := mustDerive(t, user)

	home := fieldOf(t, s, "home").Type().(*schema.RecordSchema)
	assert.Equal(t, "org.y.Address", home.FullName())
	kind := fieldOf(t, home, "kind").Type().(schema.Named)
	assert.Equal(t, "org.y.Kind", kind.FullName())
	assert.Equal(t, "com.x.Address", fieldOf(t, s, "work").Type().String())

	text, err := schema.JSON(s)
	require.NoError(t, err)
	assert.Contains(t, string(text), "org.y.Address")
}

func TestTypeNamespaceAndRename(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "My-Type", descriptor.NewField("a", intType), descriptor.NewField("b", intType))
	assert.Equal(t, "com.x.MyType", mustDerive(t, rec).String())

	rec.Annotations.Name = "Renamed"
	rec.Annotations.Namespace = "org.2y.z"
	assert.Equal(t, "org.y.z.Renamed", mustDerive(t, rec).String())
}

func TestGenericNames(t *testing.T) {
	page := descriptor.NewProduct("com.x", "Page", descriptor.NewField("items", descriptor.ListOf(stringType)), descriptor.NewField("next", intType))
	page.TypeArgs = []*descriptor.Type{stringType}
	assert.Equal(t, "com.x.Page__String", mustDerive(t, page).String())

	page.Annotations.ErasedName = true
	assert.Equal(t, "com.x.Page", mustDerive(t, page).String())
}

func TestFixedOverrides(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "Blob",
		annotated(descriptor.NewField("hash", descriptor.Prim(descriptor.Bytes)), descriptor.Annotations{Fixed: 16}),
		descriptor.NewField("size", longType),
	)
	hash := fieldOf(t, mustDerive(t, rec), "hash").Type().(*schema.FixedSchema)
	assert.Equal(t, "com.x.hash", hash.FullName())
	assert.Equal(t, 16, hash.Size())

	rec.Fields[0].Annotations.Fixed = -1
	_, err := Derive(rec)
	requireCode(t, err, ErrInvalidFixedAnnotation)

	ip := descriptor.NewProduct("com.net", "IPv4", descriptor.NewField("a", intType), descriptor.NewField("b", intType))
	ip.Annotations.Fixed = 4
	fixed := mustDerive(t, ip).(*schema.FixedSchema)
	assert.Equal(t, "com.net.IPv4", fixed.FullName())
	assert.Equal(t, 4, fixed.Size())

	ip.Annotations.Fixed = -4
	_, err = Derive(ip)
	requireCode(t, err, ErrInvalidFixedAnnotation)
}

func TestTransientAndMapper(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "Profile",
		descriptor.NewField("firstName", stringType),
		annotated(descriptor.NewField("cachedValue", stringType), descriptor.Annotations{Transient: true}),
		annotated(descriptor.NewField("lastName", stringType), descriptor.Annotations{Name: "familyName", Aliases: []string{"surname"}}),
	)
	conf := NewConfig()
	conf.FieldMapper = func(label string) string { return "f_" + label }
	s := deriveWith(t, rec, conf)

	fields := s.(*schema.RecordSchema).Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, "f_firstName", fields[0].Name())
	assert.Equal(t, "f_familyName", fields[1].Name())
	assert.Equal(t, []string{"surname"}, fields[1].Aliases())
}

func TestDuplicateFieldNames(t *testing.T) {
	rec := descriptor.NewProduct("com.x", "Dup",
		descriptor.NewField("a", stringType),
		annotated(descriptor.NewField("b", stringType), descriptor.Annotations{Name: "a"}),
	)
	_, err := Derive(rec)
	requireCode(t, err, ErrUnsupportedType)
}

func TestUnsupportedTypes(t *testing.T) {
	for name, typ := range map[string]*descriptor.Type{
		"unknown primitive": descriptor.Prim("thing"),
		"unknown container": {Kind: descriptor.Container, ID: "stream", TypeArgs: []*descriptor.Type{intType}},
		"bare cnil":         {Kind: descriptor.Container, ID: descriptor.CNil},
		"option arity":      {Kind: descriptor.Container, ID: descriptor.Option},
		"empty sum":         descriptor.NewSum("com.x", "Nothing"),
		"unknown kind":      {Kind: descriptor.Kind(99)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Derive(typ)
			requireCode(t, err, ErrUnsupportedType)
		})
	}
	_, err := Derive(nil)
	require.Error(t, err)
}
