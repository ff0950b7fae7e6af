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

// Package naming holds the rules that turn declared type and field labels into
// valid Avro names.
package naming

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldMapper maps a declared field label to the name written into the schema
type FieldMapper func(label string) string

// Identity leaves the label untouched
func Identity(label string) string {
	return label
}

// SnakeCase maps firstName to first_name
func SnakeCase(label string) string {
	return inflect.Underscore(label)
}

// PascalCase maps first_name to FirstName
func PascalCase(label string) string {
	return inflect.Camelize(label)
}

// CamelCase maps first_name to firstName
func CamelCase(label string) string {
	return inflect.CamelizeDownFirst(label)
}

// MapperByName returns the built-in mapper registered under name.
// The empty string selects Identity.
func MapperByName(name string) (FieldMapper, error) {
	switch strings.ToLower(name) {
	case "", "identity":
		return Identity, nil
	case "snake", "snake_case":
		return SnakeCase, nil
	case "pascal", "pascalcase":
		return PascalCase, nil
	case "camel", "camelcase":
		return CamelCase, nil
	default:
		return nil, fmt.Errorf("unknown field mapper %q", name)
	}
}

// SanitizeName strips every character that is not allowed in an Avro name.
// Leading digits are dropped since a name must start with a letter or underscore.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// SanitizeNamespace sanitizes every dot separated component of namespace and
// drops the components that end up empty.
func SanitizeNamespace(namespace string) string {
	if namespace == "" {
		return ""
	}
	parts := strings.Split(namespace, ".")
	kept := parts[:0]
	for _, p := range parts {
		if s := SanitizeName(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ".")
}

// GenericName appends the type argument names to base, e.g.
// GenericName("Page", "string", "long") is Page__String_Long.
func GenericName(base string, args ...string) string {
	if len(args) == 0 {
		return base
	}
	title := cases.Title(language.Und, cases.NoLower)
	suffix := make([]string, len(args))
	for i, a := range args {
		suffix[i] = title.String(SanitizeName(a))
	}
	return base + "__" + strings.Join(suffix, "_")
}
