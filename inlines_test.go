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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDelimiterFlags(t *testing.T) {
	tests := []struct {
		prefix string
		run    string
		suffix string
		want   uint8
	}{
		// Official examples for left-flanking and right-flanking:
		{"", "***", "abc", openerFlag},
		{"  ", "_", "abc", openerFlag},
		{"", "**", `"abc"`, openerFlag},
		{" ", "_", `"abc"`, openerFlag},
		{" abc", "***", "", closerFlag},
		{" abc", "_", "", closerFlag},
		{`"abc"`, "**", "", closerFlag},
		{`"abc"`, "_", "", closerFlag},
		{" abc", "***", "def", openerFlag | closerFlag},
		{`"abc"`, "_", `"def"`, openerFlag | closerFlag},
		{"abc ", "***", " def", 0},
		{"a ", "_", " b", 0},

		// Extra examples to demonstrate
		// https://spec.commonmark.org/0.30/#can-open-emphasis
		// and
		// https://spec.commonmark.org/0.30/#can-close-emphasis.
		{"aa", "_", `"bb"`, closerFlag},
		{`"bb"`, "_", "cc", openerFlag},
		{"foo-", "_", "(bar)", openerFlag | closerFlag},
		{"(bar)", "_", "", closerFlag},
		{"abc", "_", "def", 0},

		// Tildes follow the underscore rules.
		{"", "~~", "abc", openerFlag},
		{"abc", "~~", "", closerFlag},
		{"E", "~~", "F", 0},
		{"a", "**", "b", openerFlag | closerFlag},
	}
	for _, test := range tests {
		source := test.prefix + test.run + test.suffix
		span := Span{
			Start: len(test.prefix),
			End:   len(test.prefix) + len(test.run),
		}
		got := emphasisFlags([]byte(source), span)
		if got != test.want {
			t.Errorf("emphasisFlags(%q, %v) = %#03b; want %#03b", source, span, got, test.want)
		}
	}
}

func TestParseCodeSpan(t *testing.T) {
	tests := []struct {
		source string
		ok     bool
		want   codeSpan
	}{
		{
			source: "`a`",
			ok:     true,
			want:   codeSpan{start: 0, contentStart: 1, contentEnd: 2, end: 3},
		},
		{
			source: "``a``",
			ok:     true,
			want:   codeSpan{start: 0, contentStart: 2, contentEnd: 3, end: 5},
		},
		{
			// The opener shrinks to match the closer.
			source: "```B``",
			ok:     true,
			want:   codeSpan{start: 0, contentStart: 2, contentEnd: 4, end: 6},
		},
		{
			// A longer closer supplies only the opener's length.
			source: "``C```",
			ok:     true,
			want:   codeSpan{start: 0, contentStart: 2, contentEnd: 3, end: 5},
		},
		{
			source: "`a",
			ok:     false,
			want:   codeSpan{start: 0, contentStart: 1, contentEnd: 1, end: 1},
		},
		{
			source: "```",
			ok:     false,
			want:   codeSpan{start: 0, contentStart: 3, contentEnd: 3, end: 3},
		},
	}
	for _, test := range tests {
		got, ok := parseCodeSpan([]byte(test.source), len(test.source), 0)
		if got != test.want || ok != test.ok {
			t.Errorf("parseCodeSpan(%q, %d, 0) = %+v, %t; want %+v, %t",
				test.source, len(test.source), got, ok, test.want, test.ok)
		}
	}
}

func TestScanURL(t *testing.T) {
	tests := []struct {
		s    string
		bare bool
		want int
	}{
		{"http://A.IT", true, len("http://A.IT")},
		{"https://C.COM Z", true, len("https://C.COM")},
		{"http://Q.XX:123 Z", true, len("http://Q.XX:123")},
		{"http://M.XX/O?P=Q&R=S Z", true, len("http://M.XX/O?P=Q&R=S")},
		{"http://ПРИВЕТ.МИР", true, len("http://ПРИВЕТ.МИР")},
		{"http://K.com_", true, len("http://K.com")},
		{"http://M.com?a=b_", true, len("http://M.com?a=b")},
		{"http://M.com?a=b_", false, len("http://M.com?a=b_")},
		{"http://a.com/x](b)", true, len("http://a.com/x")},
		{"http://a.com/x)", true, len("http://a.com/x")},
		{"http://a.com/f(x)).", true, len("http://a.com/f(x)")},
		{"http://a.com/x](b)", false, len("http://a.com/x](b)")},
		{"http://A", true, -1},
		{"http://A.B", true, -1},
		{"http://A:80", true, -1},
		{"http://A:80.C", true, -1},
		{"ssh://B.C", true, -1},
		{"http://D/E", true, -1},
		{"http://A?B.C", true, -1},
	}
	for _, test := range tests {
		if got := scanURL([]byte(test.s), 0, len(test.s), test.bare); got != test.want {
			t.Errorf("scanURL(%q, 0, %d, %t) = %d; want %d", test.s, len(test.s), test.bare, got, test.want)
		}
	}
}

func TestScanEmail(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"A@B.XX", len("A@B.XX")},
		{"mailto:R@S.XX", len("mailto:R@S.XX")},
		{"first.last+tag@example.com>", len("first.last+tag@example.com")},
		{"@B.XX", -1},
		{"A@B", -1},
		{"mailto:", -1},
	}
	for _, test := range tests {
		if got := scanEmail([]byte(test.s), 0, len(test.s)); got != test.want {
			t.Errorf("scanEmail(%q, 0, %d) = %d; want %d", test.s, len(test.s), got, test.want)
		}
	}
}

// inlineSummary is a comparable description of an inline tree.
type inlineSummary struct {
	Kind     InlineKind
	Text     string
	Children []inlineSummary
}

func summarizeInlines(source []byte, inlines []*Inline) []inlineSummary {
	var result []inlineSummary
	for _, inline := range inlines {
		s := inlineSummary{
			Kind: inline.Kind(),
			Text: inline.Text(source),
		}
		for i := 0; i < inline.ChildCount(); i++ {
			s.Children = append(s.Children, summarizeInlines(source, []*Inline{inline.Child(i)})...)
		}
		result = append(result, s)
	}
	return result
}

func TestParseInlines(t *testing.T) {
	tests := []struct {
		source string
		want   []inlineSummary
	}{
		{
			source: "A *B* C",
			want: []inlineSummary{
				{Kind: TextKind, Text: "A "},
				{Kind: EmphasisKind, Text: "*B*", Children: []inlineSummary{
					{Kind: TextKind, Text: "B"},
				}},
				{Kind: TextKind, Text: " C"},
			},
		},
		{
			source: "***EB***",
			want: []inlineSummary{
				{Kind: StrongEmphasisKind, Text: "***EB***", Children: []inlineSummary{
					{Kind: TextKind, Text: "EB"},
				}},
			},
		},
		{
			source: "~~B~~",
			want: []inlineSummary{
				{Kind: StrikethroughKind, Text: "~~B~~", Children: []inlineSummary{
					{Kind: TextKind, Text: "B"},
				}},
			},
		},
		{
			source: "`L **M` N**",
			want: []inlineSummary{
				{Kind: CodeSpanKind, Text: "`L **M`", Children: []inlineSummary{
					{Kind: CodeContentKind, Text: "L **M"},
				}},
				{Kind: TextKind, Text: " N**"},
			},
		},
		{
			source: `[E](F "G")`,
			want: []inlineSummary{
				{Kind: InlineLinkKind, Text: `[E](F "G")`, Children: []inlineSummary{
					{Kind: LinkTextKind, Text: "E", Children: []inlineSummary{
						{Kind: TextKind, Text: "E"},
					}},
					{Kind: LinkDestinationKind, Text: "F"},
					{Kind: LinkTitleKind, Text: "G"},
				}},
			},
		},
		{
			source: "![G]  [H]",
			want: []inlineSummary{
				{Kind: ReferenceImageKind, Text: "![G]  [H]", Children: []inlineSummary{
					{Kind: LinkTextKind, Text: "G", Children: []inlineSummary{
						{Kind: TextKind, Text: "G"},
					}},
					{Kind: LinkLabelKind, Text: "H"},
				}},
			},
		},
		{
			source: "[A][]",
			want: []inlineSummary{
				{Kind: ReferenceLinkKind, Text: "[A][]", Children: []inlineSummary{
					{Kind: LinkTextKind, Text: "A", Children: []inlineSummary{
						{Kind: TextKind, Text: "A"},
					}},
				}},
			},
		},
		{
			source: "<http://A.IT> x",
			want: []inlineSummary{
				{Kind: URLAutolinkKind, Text: "<http://A.IT>", Children: []inlineSummary{
					{Kind: LinkDestinationKind, Text: "http://A.IT"},
				}},
				{Kind: TextKind, Text: " x"},
			},
		},
		{
			source: "O@P.XX",
			want: []inlineSummary{
				{Kind: EmailAutolinkKind, Text: "O@P.XX", Children: []inlineSummary{
					{Kind: LinkDestinationKind, Text: "O@P.XX"},
				}},
			},
		},
		{
			source: "&amp; <!-- c -->",
			want: []inlineSummary{
				{Kind: CharacterReferenceKind, Text: "&amp;"},
				{Kind: TextKind, Text: " "},
				{Kind: HTMLCommentKind, Text: "<!-- c -->"},
			},
		},
		{
			source: "A_B C_D_E",
			want: []inlineSummary{
				{Kind: TextKind, Text: "A_B C_D_E"},
			},
		},
	}
	for _, test := range tests {
		source := []byte(test.source)
		inlines := parseInlines(source, Span{Start: 0, End: len(source)})
		got := summarizeInlines(source, mergeText(inlines))
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("parseInlines(%q) (-want +got):\n%s", test.source, diff)
		}
	}
}

// mergeText joins adjacent top-level text nodes
// so that tests do not depend on how text runs are split.
func mergeText(inlines []*Inline) []*Inline {
	var result []*Inline
	for _, inline := range inlines {
		if n := len(result); n > 0 && inline.Kind() == TextKind && result[n-1].Kind() == TextKind &&
			result[n-1].Span().End == inline.Span().Start && result[n-1].ChildCount() == 0 && inline.ChildCount() == 0 {
			result[n-1] = &Inline{
				kind: TextKind,
				span: Span{Start: result[n-1].Span().Start, End: inline.Span().End},
			}
			continue
		}
		result = append(result, inline)
	}
	return result
}
