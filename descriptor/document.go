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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Document declares named types in YAML or JSON:
//
//	namespace: com.shop
//	types:
//	  Order:
//	    kind: record
//	    fields:
//	      - {name: id, type: uuid}
//	      - {name: lines, type: "list<LineItem>"}
//	      - {name: note, type: "option<string>", nullDefault: true}
//
// Field types are type expressions, see ParseTypeExpr.
type Document struct {
	Namespace string               `json:"namespace" yaml:"namespace"`
	Types     map[string]*TypeSpec `json:"types" yaml:"types"`
}

// TypeSpec declares a record, sum or enum
type TypeSpec struct {
	// Kind is record, sum or enum
	Kind         string            `json:"kind" yaml:"kind"`
	Namespace    string            `json:"namespace" yaml:"namespace"`
	Rename       string            `json:"rename" yaml:"rename"`
	Doc          string            `json:"doc" yaml:"doc"`
	Aliases      []string          `json:"aliases" yaml:"aliases"`
	Props        map[string]string `json:"props" yaml:"props"`
	Fixed        int               `json:"fixed" yaml:"fixed"`
	SortPriority float64           `json:"sortPriority" yaml:"sortPriority"`
	EnumDefault  bool              `json:"enumDefault" yaml:"enumDefault"`
	ErasedName   bool              `json:"erasedName" yaml:"erasedName"`
	// Params name the type parameters of a generic record or sum
	Params   []string     `json:"params" yaml:"params"`
	Fields   []*FieldSpec `json:"fields" yaml:"fields"`
	Variants []string     `json:"variants" yaml:"variants"`
	Symbols  []string     `json:"symbols" yaml:"symbols"`
	Default  string       `json:"default" yaml:"default"`
}

// FieldSpec declares a record field
type FieldSpec struct {
	Name      string            `json:"name" yaml:"name"`
	Type      string            `json:"type" yaml:"type"`
	Rename    string            `json:"rename" yaml:"rename"`
	Namespace string            `json:"namespace" yaml:"namespace"`
	Doc       string            `json:"doc" yaml:"doc"`
	Aliases   []string          `json:"aliases" yaml:"aliases"`
	Props     map[string]string `json:"props" yaml:"props"`
	Fixed     int               `json:"fixed" yaml:"fixed"`
	Transient bool              `json:"transient" yaml:"transient"`
	NoDefault bool              `json:"noDefault" yaml:"noDefault"`
	Default   any               `json:"default" yaml:"default"`
	// NullDefault declares an explicit null default, which a plain null
	// default value cannot express
	NullDefault bool           `json:"nullDefault" yaml:"nullDefault"`
	Decimal     *DecimalParams `json:"decimal" yaml:"decimal"`
}

// LoadDocument reads a document from path. Files ending in .json are read
// as JSON, anything else as YAML.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSONDocument(data)
	}
	return parseYAMLDocument(data)
}

// ParseDocument parses a JSON document when data starts with '{' and a
// YAML document otherwise
func ParseDocument(data []byte) (*Document, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSONDocument(data)
	}
	return parseYAMLDocument(data)
}

func parseJSONDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, doc.validate()
}

func parseYAMLDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, doc.validate()
}

func (d *Document) validate() error {
	for name, spec := range d.Types {
		if spec == nil {
			return fmt.Errorf("type %s: empty declaration", name)
		}
		switch spec.Kind {
		case "record", "sum", "enum":
		default:
			return fmt.Errorf("type %s: unknown kind %q", name, spec.Kind)
		}
		for i, f := range spec.Fields {
			if f == nil || f.Name == "" || f.Type == "" {
				return fmt.Errorf("type %s: field %d needs a name and a type", name, i)
			}
		}
	}
	return nil
}

// Type returns the descriptor of the type expression expr, whose names
// refer to the declarations of the document
func (d *Document) Type(expr string) (*Type, error) {
	node, err := parseExpr(expr)
	if err != nil {
		return nil, err
	}
	r := &resolver{doc: d, built: make(map[string]*Type)}
	return r.resolve(node, nil)
}

// Names returns the declared type names
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Types))
	for name := range d.Types {
		names = append(names, name)
	}
	return names
}

// ParseTypeExpr parses a type expression over the built-in primitives and
// containers, for instance "map<string,option<long>>" or
// "either<int,array<string>>". coproduct takes any number of alternatives.
func ParseTypeExpr(expr string) (*Type, error) {
	return (&Document{}).Type(expr)
}

type resolver struct {
	doc   *Document
	built map[string]*Type
}

func (r *resolver) resolve(n *exprNode, env map[string]*Type) (*Type, error) {
	if t, ok := env[n.name]; ok && len(n.args) == 0 {
		return t, nil
	}
	args := make([]*Type, 0, len(n.args))
	for _, a := range n.args {
		t, err := r.resolve(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}

	if isPrimitiveID(n.name) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s takes no type arguments", n.name)
		}
		return Prim(n.name), nil
	}
	switch n.name {
	case Coproduct:
		return CoproductOf(args...), nil
	case CNil:
		return &Type{Kind: Container, ID: CNil}, nil
	case Option, Either, Array, List, Set, Vector, Seq, Iterable, Map, Tuple:
		return container(n.name, args...), nil
	}
	return r.named(n.name, args)
}

func (r *resolver) named(name string, args []*Type) (*Type, error) {
	spec, key := r.lookup(name)
	if spec == nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	if len(args) != len(spec.Params) {
		return nil, fmt.Errorf("%s takes %d type arguments, got %d", key, len(spec.Params), len(args))
	}
	namespace := r.doc.Namespace
	if spec.Namespace != "" {
		namespace = spec.Namespace
	}
	simple := key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		namespace, simple = key[:i], key[i+1:]
	}
	t := &Type{
		Name:      simple,
		Namespace: namespace,
		TypeArgs:  args,
		Annotations: Annotations{
			Name:         spec.Rename,
			Doc:          spec.Doc,
			Aliases:      spec.Aliases,
			Props:        spec.Props,
			Fixed:        spec.Fixed,
			SortPriority: spec.SortPriority,
			EnumDefault:  spec.EnumDefault,
			ErasedName:   spec.ErasedName,
		},
	}
	if built, ok := r.built[t.Key()]; ok {
		return built, nil
	}
	r.built[t.Key()] = t

	env := make(map[string]*Type, len(args))
	for i, p := range spec.Params {
		env[p] = args[i]
	}
	switch spec.Kind {
	case "record":
		t.Kind = Product
		for _, fs := range spec.Fields {
			f, err := r.field(fs, env)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", key, fs.Name, err)
			}
			t.Fields = append(t.Fields, f)
		}
	case "sum":
		t.Kind = Sum
		for _, v := range spec.Variants {
			node, err := parseExpr(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			vt, err := r.resolve(node, env)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			t.Variants = append(t.Variants, vt)
		}
	case "enum":
		t.Kind = Enum
		t.Symbols = spec.Symbols
		t.DefaultSymbol = spec.Default
	}
	return t, nil
}

// lookup finds a declaration by its key or by its name relative to the
// document namespace
func (r *resolver) lookup(name string) (*TypeSpec, string) {
	if spec, ok := r.doc.Types[name]; ok {
		return spec, name
	}
	if ns := r.doc.Namespace; ns != "" {
		if local, ok := strings.CutPrefix(name, ns+"."); ok {
			if spec, ok := r.doc.Types[local]; ok {
				return spec, local
			}
		}
	}
	return nil, name
}

func (r *resolver) field(fs *FieldSpec, env map[string]*Type) (*Field, error) {
	node, err := parseExpr(fs.Type)
	if err != nil {
		return nil, err
	}
	ft, err := r.resolve(node, env)
	if err != nil {
		return nil, err
	}
	f := &Field{
		Name: fs.Name,
		Type: ft,
		Annotations: Annotations{
			Name:      fs.Rename,
			Namespace: fs.Namespace,
			Doc:       fs.Doc,
			Aliases:   fs.Aliases,
			Props:     fs.Props,
			Fixed:     fs.Fixed,
			Transient: fs.Transient,
			NoDefault: fs.NoDefault,
			Decimal:   fs.Decimal,
		},
	}
	switch {
	case fs.NullDefault:
		f.Default = NullDefault()
	case fs.Default != nil:
		f.Default = DefaultOf(fs.Default)
	}
	return f, nil
}

func isPrimitiveID(id string) bool {
	switch id {
	case Null, Boolean, Byte, Short, Int, Long, Float, Double, String, Bytes,
		ByteArray, ByteList, ByteSeq, ByteVector, UUID, Decimal, Date,
		TimeMillis, TimeMicros, TimestampMillis, TimestampMicros,
		LocalTimestampMillis, LocalTimestampMicros:
		return true
	}
	return false
}

type exprNode struct {
	name string
	args []*exprNode
}

func parseExpr(expr string) (*exprNode, error) {
	p := &exprParser{src: expr}
	n, err := p.node()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type expression %q: unexpected %q at %d", expr, p.src[p.pos], p.pos)
	}
	return n, nil
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) node() (*exprNode, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("type expression %q: expected a name at %d", p.src, start)
	}
	n := &exprNode{name: p.src[start:p.pos]}
	p.skipSpace()
	if p.pos == len(p.src) || p.src[p.pos] != '<' {
		return n, nil
	}
	p.pos++
	for {
		arg, err := p.node()
		if err != nil {
			return nil, err
		}
		n.args = append(n.args, arg)
		p.skipSpace()
		if p.pos == len(p.src) {
			return nil, fmt.Errorf("type expression %q: missing '>'", p.src)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return n, nil
		default:
			return nil, fmt.Errorf("type expression %q: unexpected %q at %d", p.src, p.src[p.pos], p.pos)
		}
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
