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

// Package scopetest provides pattern-based assertions
// about the scopes of a parsed document.
//
// Each check finds every match of a regular expression in the document's source
// and asserts a scope relationship for the matched text.
// Patterns are compiled in multi-line mode, so ^ and $ match at line boundaries.
// If a pattern has a capturing group, the first group is checked
// instead of the whole match.
package scopetest

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"zombiezen.com/go/mdscope"
)

// DefaultSelector matches only the root scope of a document.
const DefaultSelector = "text"

// Relation is the scope relationship asserted by a [Check].
type Relation int

const (
	// Equal asserts that some matching scope covers exactly the text.
	Equal Relation = 1 + iota
	// Within asserts that some matching scope contains the text.
	Within
	// Outside asserts that no matching scope intersects the text.
	Outside
	// Single asserts that the text is covered by exactly one scope,
	// which matches the selector.
	Single
)

func (r Relation) String() string {
	switch r {
	case Equal:
		return "equal to"
	case Within:
		return "within"
	case Outside:
		return "outside"
	case Single:
		return "only in"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// A Check asserts a relation between the text matched by patterns
// and scopes matching a selector.
type Check struct {
	Relation Relation
	Selector string
	Patterns []string
}

// Eq returns a check that each match is exactly covered by a scope matching selector.
func Eq(selector string, patterns ...string) Check {
	return Check{Relation: Equal, Selector: selector, Patterns: patterns}
}

// In returns a check that each match is within a scope matching selector.
func In(selector string, patterns ...string) Check {
	return Check{Relation: Within, Selector: selector, Patterns: patterns}
}

// No returns a check that no scope matching selector intersects any match.
func No(selector string, patterns ...string) Check {
	return Check{Relation: Outside, Selector: selector, Patterns: patterns}
}

// Default returns a check that each match is plain text,
// covered only by the root scope.
func Default(patterns ...string) Check {
	return Check{Relation: Single, Selector: DefaultSelector, Patterns: patterns}
}

// Chars splits s into one pattern per character,
// quoting any regular expression metacharacters.
func Chars(s string) []string {
	var patterns []string
	for _, c := range s {
		patterns = append(patterns, regexp.QuoteMeta(string(c)))
	}
	return patterns
}

// Run applies the checks to doc, reporting failures to tb.
// A pattern that does not match anywhere is a failure.
func Run(tb testing.TB, doc *mdscope.Document, checks ...Check) {
	tb.Helper()
	source := doc.Source()
	for _, check := range checks {
		for _, pattern := range check.Patterns {
			re, err := regexp.Compile("(?m)" + pattern)
			if err != nil {
				tb.Errorf("pattern /%s/: %v", pattern, err)
				continue
			}
			matches := re.FindAllSubmatchIndex(source, -1)
			if len(matches) == 0 {
				tb.Errorf("cannot find pattern /%s/", pattern)
				continue
			}
			for _, m := range matches {
				span := mdscope.Span{Start: m[0], End: m[1]}
				if len(m) >= 4 && m[2] >= 0 {
					span = mdscope.Span{Start: m[2], End: m[3]}
				}
				ok, err := holds(doc, check.Relation, span, check.Selector)
				if err != nil {
					tb.Errorf("pattern /%s/ at %v: %v", pattern, span, err)
					continue
				}
				if !ok {
					name, _ := doc.ScopeName(span.Start)
					tb.Errorf("text \"%s\" at %v found by /%s/ is not %v scope %q (scopes: %s)",
						readable(source[span.Start:span.End]), span, pattern, check.Relation, check.Selector, name)
				}
			}
		}
	}
}

func holds(doc *mdscope.Document, r Relation, span mdscope.Span, selector string) (bool, error) {
	switch r {
	case Equal:
		return doc.EqScope(span, selector)
	case Within:
		return doc.InScope(span, selector)
	case Outside:
		return doc.NoScope(span, selector)
	case Single:
		return doc.InSingleScope(span, selector)
	default:
		return false, fmt.Errorf("unknown relation %v", r)
	}
}

var readableReplacer = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

func readable(b []byte) string {
	return readableReplacer.Replace(string(b))
}
