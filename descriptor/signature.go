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
	"strings"
)

// Signature describes the whole type graph reachable from t, annotations and
// defaults included. Types with equal signatures derive equal schemas under
// one configuration. Types reached again are written as back references.
func (t *Type) Signature() string {
	s := &signer{seen: make(map[*Type]int)}
	s.typ(t)
	return s.b.String()
}

type signer struct {
	b    strings.Builder
	seen map[*Type]int
}

func (s *signer) typ(t *Type) {
	if t == nil {
		s.b.WriteString("nil")
		return
	}
	if n, ok := s.seen[t]; ok {
		fmt.Fprintf(&s.b, "@%d", n)
		return
	}
	s.seen[t] = len(s.seen)
	fmt.Fprintf(&s.b, "%s(%q %q %q", t.Kind, t.ID, t.Namespace, t.Name)
	s.annotations(t.Annotations)
	s.list("args", t.TypeArgs)
	for _, f := range t.Fields {
		if f == nil {
			s.b.WriteString(" field(nil)")
			continue
		}
		fmt.Fprintf(&s.b, " field(%q", f.Name)
		s.annotations(f.Annotations)
		if f.Default != nil {
			fmt.Fprintf(&s.b, " default=%#v", f.Default.Value)
		}
		s.b.WriteByte(' ')
		s.typ(f.Type)
		s.b.WriteByte(')')
	}
	s.list("variants", t.Variants)
	if t.Kind == Enum {
		fmt.Fprintf(&s.b, " symbols=%q default=%q", t.Symbols, t.DefaultSymbol)
	}
	s.b.WriteByte(')')
}

func (s *signer) list(label string, types []*Type) {
	if len(types) == 0 {
		return
	}
	fmt.Fprintf(&s.b, " %s[", label)
	for i, t := range types {
		if i > 0 {
			s.b.WriteByte(',')
		}
		s.typ(t)
	}
	s.b.WriteByte(']')
}

func (s *signer) annotations(a Annotations) {
	decimal := a.Decimal
	a.Decimal = nil
	fmt.Fprintf(&s.b, " %#v", a)
	if decimal != nil {
		fmt.Fprintf(&s.b, " decimal(%d,%d)", decimal.Precision, decimal.Scale)
	}
}
