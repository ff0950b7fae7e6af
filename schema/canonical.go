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

package schema

import (
	"fmt"
	"sort"

	"github.com/actgardner/gogen-avro/v10/parser"
	heetch "github.com/heetch/avro"
)

// Canonical returns the parsing canonical form of s, keeping defaults and
// logical types so that two schemas differing only there do not compare equal.
func Canonical(s Schema) (string, error) {
	text, err := JSON(s)
	if err != nil {
		return "", err
	}
	t, err := heetch.ParseType(string(text))
	if err != nil {
		return "", fmt.Errorf("schema: canonical form: %w", err)
	}
	return t.CanonicalString(heetch.RetainAll), nil
}

// NamedTypes returns the sorted full names of the named types defined by s
func NamedTypes(s Schema) ([]string, error) {
	text, err := JSON(s)
	if err != nil {
		return nil, err
	}
	ns := parser.NewNamespace(false)
	if _, err := ns.TypeForSchema(text); err != nil {
		return nil, fmt.Errorf("schema: named types: %w", err)
	}
	seen := make(map[string]bool, len(ns.Definitions))
	var names []string
	for _, def := range ns.Definitions {
		name := def.AvroName().String()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
