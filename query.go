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
	"fmt"
	"strings"
)

func (doc *Document) checkSpan(op string, span Span) error {
	if !span.IsValid() || span.End > len(doc.source) {
		return fmt.Errorf("%s %v: %w", op, span, ErrOutOfRange)
	}
	return nil
}

// FindFirstScope returns the span of the first scope in document order
// that intersects span and whose name matches selector.
// It returns [NullSpan] if there is no such scope.
func (doc *Document) FindFirstScope(selector string, span Span) (Span, error) {
	if err := doc.checkSpan("find scope in", span); err != nil {
		return NullSpan(), err
	}
	for _, s := range doc.scopes {
		if s.Span.Start > span.End {
			break
		}
		if s.Matches(selector) && s.Span.Intersects(span) {
			return s.Span, nil
		}
	}
	return NullSpan(), nil
}

// CountScopes returns the number of distinct scopes that intersect span.
// The root scope intersects every span, so plain text counts 1.
func (doc *Document) CountScopes(span Span) (int, error) {
	if err := doc.checkSpan("count scopes in", span); err != nil {
		return 0, err
	}
	return len(doc.intersecting(span)), nil
}

// intersecting returns the scopes that intersect span in document order.
// The root scope is always included.
func (doc *Document) intersecting(span Span) []Scope {
	var result []Scope
	for _, s := range doc.scopes {
		if s.Span.Start > span.End {
			break
		}
		if s.Name == RootScope || s.Span.Intersects(span) {
			result = append(result, s)
		}
	}
	return result
}

// Text returns the source text covered by span.
func (doc *Document) Text(span Span) (string, error) {
	if err := doc.checkSpan("text of", span); err != nil {
		return "", err
	}
	return string(spanSlice(doc.source, span)), nil
}

// ScopesAt returns the scopes that cover the byte at offset,
// outermost first.
// An offset equal to the document length returns the root scope.
func (doc *Document) ScopesAt(offset int) ([]Scope, error) {
	if offset < 0 || offset > len(doc.source) {
		return nil, fmt.Errorf("scopes at %d: %w", offset, ErrOutOfRange)
	}
	return doc.intersecting(Span{Start: offset, End: offset}), nil
}

// ScopeName returns the space-separated names of the scopes
// that cover the byte at offset, outermost first.
func (doc *Document) ScopeName(offset int) (string, error) {
	stack, err := doc.ScopesAt(offset)
	if err != nil {
		return "", err
	}
	names := make([]string, len(stack))
	for i, s := range stack {
		names[i] = s.Name
	}
	return strings.Join(names, " "), nil
}

// InScope reports whether some scope matching selector contains span.
func (doc *Document) InScope(span Span, selector string) (bool, error) {
	if err := doc.checkSpan("in scope", span); err != nil {
		return false, err
	}
	for _, s := range doc.scopes {
		if s.Span.Start > span.Start {
			break
		}
		if s.Matches(selector) && s.Span.Contains(span) {
			return true, nil
		}
	}
	return false, nil
}

// EqScope reports whether some scope matching selector covers exactly span.
func (doc *Document) EqScope(span Span, selector string) (bool, error) {
	if err := doc.checkSpan("equal scope", span); err != nil {
		return false, err
	}
	for _, s := range doc.scopes {
		if s.Span.Start > span.Start {
			break
		}
		if s.Span == span && s.Matches(selector) {
			return true, nil
		}
	}
	return false, nil
}

// NoScope reports whether no scope matching selector intersects span.
func (doc *Document) NoScope(span Span, selector string) (bool, error) {
	found, err := doc.FindFirstScope(selector, span)
	if err != nil {
		return false, err
	}
	return !found.IsValid(), nil
}

// InSingleScope reports whether exactly one scope intersects span
// and that scope matches selector.
// Every byte of span is then covered by that scope alone.
func (doc *Document) InSingleScope(span Span, selector string) (bool, error) {
	if err := doc.checkSpan("single scope", span); err != nil {
		return false, err
	}
	scopes := doc.intersecting(span)
	return len(scopes) == 1 && scopes[0].Matches(selector), nil
}
