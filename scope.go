// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package mdscope

import (
	"errors"
	"sort"
	"strings"
)

// RootScope is the name of the scope that covers an entire document.
const RootScope = "text.html.markdown"

// ErrOutOfRange is returned by [*Document] methods
// when given a span or offset outside the document.
var ErrOutOfRange = errors.New("out of range")

// A Scope is a named span of a document.
type Scope struct {
	Name string
	Span Span
}

// Matches reports whether the scope's name equals selector
// or extends it at a dot boundary.
// For example, "markup.heading.1" matches "markup.heading"
// but not "markup.head".
func (s Scope) Matches(selector string) bool {
	return scopeMatches(s.Name, selector)
}

func scopeMatches(name, selector string) bool {
	return name == selector ||
		len(name) > len(selector) && name[len(selector)] == '.' && strings.HasPrefix(name, selector)
}

// String formats the scope as its span followed by its name.
func (s Scope) String() string {
	return s.Span.String() + " " + s.Name
}

// A Document is a parsed source annotated with scopes.
// It is immutable and safe to use from multiple goroutines.
type Document struct {
	source []byte
	scopes []Scope
	lines  lineIndex
	refs   ReferenceMap
}

func newDocument(source []byte, scopes []Scope, refs ReferenceMap) *Document {
	sort.SliceStable(scopes, func(i, j int) bool {
		si, sj := scopes[i].Span, scopes[j].Span
		if si.Start != sj.Start {
			return si.Start < sj.Start
		}
		return si.End > sj.End
	})
	return &Document{
		source: source,
		scopes: scopes,
		lines:  newLineIndex(source),
		refs:   refs,
	}
}

// Source returns the document's source text.
// The caller must not modify the returned slice.
func (doc *Document) Source() []byte {
	return doc.source
}

// Len returns the length of the document's source in bytes.
func (doc *Document) Len() int {
	return len(doc.source)
}

// Scopes returns a copy of the document's scopes
// ordered by start ascending, then end descending.
// Outer scopes come before the scopes they contain.
func (doc *Document) Scopes() []Scope {
	scopes := make([]Scope, len(doc.scopes))
	copy(scopes, doc.scopes)
	return scopes
}

// LookupReference returns the link reference definition
// for the given label, if the document defines one.
func (doc *Document) LookupReference(label string) (LinkDefinition, bool) {
	def, ok := doc.refs[NormalizeLinkLabel(label)]
	return def, ok
}
