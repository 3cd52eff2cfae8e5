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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseATXHeading(t *testing.T) {
	tests := []struct {
		line string
		want atxHeading
	}{
		{"# A", atxHeading{level: 1, contentStart: 2, contentEnd: 3, closeStart: 3, closeEnd: 3}},
		{"###### F", atxHeading{level: 6, contentStart: 7, contentEnd: 8, closeStart: 8, closeEnd: 8}},
		{"### M ##", atxHeading{level: 3, contentStart: 4, contentEnd: 5, closeStart: 6, closeEnd: 8}},
		{"## L #  ", atxHeading{level: 2, contentStart: 3, contentEnd: 4, closeStart: 5, closeEnd: 6}},
		{"# A#", atxHeading{level: 1, contentStart: 2, contentEnd: 4, closeStart: 4, closeEnd: 4}},
		{"#", atxHeading{level: 1, contentStart: 1, contentEnd: 1, closeStart: 1, closeEnd: 1}},
		{"#\tTab", atxHeading{level: 1, contentStart: 2, contentEnd: 5, closeStart: 5, closeEnd: 5}},
		{"#K", atxHeading{}},
		{"##L#", atxHeading{}},
		{"####### G", atxHeading{}},
		{"A", atxHeading{}},
	}
	for _, test := range tests {
		if got := parseATXHeading([]byte(test.line)); got != test.want {
			t.Errorf("parseATXHeading(%q) = %+v; want %+v", test.line, got, test.want)
		}
	}
}

func TestParseThematicBreak(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"***", 3},
		{"* * *", 5},
		{"___", 3},
		{"__ __ __", 8},
		{"- - - ", 5},
		{"----------------      ", 16},
		{"---_---", -1},
		{"--", -1},
		{"- A", -1},
	}
	for _, test := range tests {
		if got := parseThematicBreak([]byte(test.line)); got != test.want {
			t.Errorf("parseThematicBreak(%q) = %d; want %d", test.line, got, test.want)
		}
	}
}

func TestParseSetextUnderline(t *testing.T) {
	tests := []struct {
		line      string
		wantLevel int
		wantEnd   int
	}{
		{"===", 1, 3},
		{"======= ", 1, 7},
		{"-------   ", 2, 7},
		{"--", 0, 0},
		{" ===", 0, 0},
		{"- - -", 0, 0},
		{"==x", 0, 0},
		{"", 0, 0},
	}
	for _, test := range tests {
		level, end := parseSetextUnderline([]byte(test.line))
		if level != test.wantLevel || end != test.wantEnd {
			t.Errorf("parseSetextUnderline(%q) = %d, %d; want %d, %d",
				test.line, level, end, test.wantLevel, test.wantEnd)
		}
	}
}

func TestParseListMarker(t *testing.T) {
	tests := []struct {
		line   string
		want   listMarker
		wantOK bool
	}{
		{"- A", listMarker{end: 1, contentStart: 2}, true},
		{"+ B", listMarker{end: 1, contentStart: 2}, true},
		{"*    C", listMarker{end: 1, contentStart: 5}, true},
		{"12345. C", listMarker{end: 6, contentStart: 7}, true},
		{"0.\tA", listMarker{end: 2, contentStart: 3}, true},
		{"- ", listMarker{end: 1, contentStart: 2}, true},
		{"-A", listMarker{}, false},
		{"-", listMarker{}, false},
		{"1.A", listMarker{}, false},
		{"1) A", listMarker{}, false},
		{"1234567890. A", listMarker{}, false},
	}
	for _, test := range tests {
		got, ok := parseListMarker([]byte(test.line))
		if got != test.want || ok != test.wantOK {
			t.Errorf("parseListMarker(%q) = %+v, %t; want %+v, %t", test.line, got, ok, test.want, test.wantOK)
		}
	}
}

func TestParseCodeFence(t *testing.T) {
	tests := []struct {
		line   string
		want   codeFence
		wantOK bool
	}{
		{"```", codeFence{char: '`', n: 3, infoStart: 3, infoEnd: 3}, true},
		{"``` c++", codeFence{char: '`', n: 3, infoStart: 4, infoEnd: 7}, true},
		{"````python extra", codeFence{char: '`', n: 4, infoStart: 4, infoEnd: 10}, true},
		{"~~~ `ok`", codeFence{char: '~', n: 3, infoStart: 4, infoEnd: 8}, true},
		{"``", codeFence{}, false},
		{"```A```", codeFence{}, false},
		{"~~", codeFence{}, false},
	}
	for _, test := range tests {
		got, ok := parseCodeFence([]byte(test.line))
		if got != test.want || ok != test.wantOK {
			t.Errorf("parseCodeFence(%q) = %+v, %t; want %+v, %t", test.line, got, ok, test.want, test.wantOK)
		}
	}
}

func TestClosingFenceLength(t *testing.T) {
	f := codeFence{char: '`', n: 3}
	tests := []struct {
		line string
		want int
	}{
		{"```", 3},
		{"`````  ", 5},
		{"``", 0},
		{"```python", 0},
		{"~~~", 0},
	}
	for _, test := range tests {
		if got := f.closingFenceLength([]byte(test.line)); got != test.want {
			t.Errorf("closingFenceLength(%q) = %d; want %d", test.line, got, test.want)
		}
	}
}

func TestMeasureIndent(t *testing.T) {
	tests := []struct {
		text       string
		wantIndent int
		wantOffset int
	}{
		{"", 0, 0},
		{"A", 0, 0},
		{"   A", 3, 3},
		{"\tA", 4, 1},
		{"  \tA", 4, 3},
		{"     \tA", 8, 6},
		{"    ", 4, 4},
	}
	for _, test := range tests {
		indent, offset := measureIndent([]byte(test.text))
		if indent != test.wantIndent || offset != test.wantOffset {
			t.Errorf("measureIndent(%q) = %d, %d; want %d, %d",
				test.text, indent, offset, test.wantIndent, test.wantOffset)
		}
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines([]byte("a\nb\r\nc\rd"))
	want := []line{
		{start: 0, end: 1, eol: 2},
		{start: 2, end: 3, eol: 5},
		{start: 5, end: 6, eol: 7},
		{start: 7, end: 8, eol: 8},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(line{})); diff != "" {
		t.Errorf("splitLines(...) (-want +got):\n%s", diff)
	}
}

// blockOutline lists the blocks of the tree rooted at root in pre-order,
// one per line, indented by depth.
func blockOutline(root *Block) []string {
	var lines []string
	Walk(root.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			b := c.Node().Block()
			if b == nil {
				return false
			}
			if c.Depth() > 0 {
				lines = append(lines, fmt.Sprintf("%s%v %v", strings.Repeat("  ", c.Depth()-1), b.Kind(), b.Span()))
			}
			return true
		},
	})
	return lines
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name: "Mixed",
			source: "# A\n" +
				"\n" +
				"B\n" +
				"===\n" +
				"> C\n" +
				"D\n" +
				"\n" +
				"- E\n" +
				"  - F\n" +
				"\n" +
				"***\n",
			want: []string{
				"ATXHeading [0,4)",
				"SetextHeading [5,11)",
				"BlockQuote [11,17)",
				"  Paragraph [13,17)",
				"List [18,28)",
				"  ListItem [18,28)",
				"    Paragraph [20,22)",
				"    List [22,28)",
				"      ListItem [22,28)",
				"        Paragraph [26,28)",
				"ThematicBreak [29,33)",
			},
		},
		{
			name:   "CodeBlocks",
			source: "    a\n\n    b\n\n\nc\n```go\nx\n```\n",
			want: []string{
				"IndentedCodeBlock [0,13)",
				"Paragraph [15,17)",
				"FencedCodeBlock [17,29)",
			},
		},
		{
			name:   "UnterminatedFence",
			source: "~~~\nA\n\nB",
			want: []string{
				"FencedCodeBlock [0,8)",
			},
		},
		{
			name:   "ReferenceDefinitions",
			source: "[A]: B \"C\"\n  [K]: L (M)  \nZ\n[N]: O\n",
			want: []string{
				"LinkReferenceDefinition [0,10)",
				"LinkReferenceDefinition [13,23)",
				"Paragraph [26,35)",
			},
		},
		{
			name:   "HTMLBlock",
			source: "<div>\n\n*A* __C__\n\n</div> *D*\nE\n",
			want: []string{
				"HTMLBlock [0,29)",
				"Paragraph [29,31)",
			},
		},
		{
			name:   "HTMLBlockInterruptsParagraph",
			source: "A\n<div>\nB\n</div>\n",
			want: []string{
				"Paragraph [0,2)",
				"HTMLBlock [2,17)",
			},
		},
		{
			name:   "UnclosedBlockTag",
			source: "<div>\n\nA\n",
			want: []string{
				"Paragraph [0,6)",
				"Paragraph [7,9)",
			},
		},
		{
			name:   "ListRegions",
			source: "- A\n\n B\nC\n- D\n\nZ\n",
			want: []string{
				"List [0,14)",
				"  ListItem [0,10)",
				"    Paragraph [2,4)",
				"    Paragraph [6,10)",
				"  ListItem [10,14)",
				"    Paragraph [12,14)",
				"Paragraph [15,17)",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := blockOutline(ParseTree([]byte(test.source)))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("outline (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListRegions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "BlankLines",
			source: "\n- A\n\n B\nC\n- D\n\n E\nF\n\nZ\n",
			want:   []string{"- A\n", " B\nC\n- D\n", " E\nF\n"},
		},
		{
			name:   "InsideBlockQuote",
			source: "> - A\n> - B\n>   C\n",
			want:   []string{"- A\n", "- B\n", "  C\n"},
		},
		{
			name:   "LazyQuoteLine",
			source: "> - A\nB\n",
			want:   []string{"- A\nB\n"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var list *Block
			Walk(ParseTree([]byte(test.source)).AsNode(), &WalkOptions{
				Pre: func(c *Cursor) bool {
					if b := c.Node().Block(); list == nil && b.Kind() == ListKind {
						list = b
					}
					return list == nil
				},
			})
			if list == nil {
				t.Fatal("no list found")
			}
			var got []string
			for _, r := range list.Regions() {
				got = append(got, test.source[r.Start:r.End])
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("list.Regions() (-want +got):\n%s", diff)
			}
		})
	}
}
