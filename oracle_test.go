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

package mdscope_test

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"zombiezen.com/go/mdscope"
)

// Documents on which Markdown Light and CommonMark agree
// about headings and fenced code blocks.
var oracleDocuments = []string{
	"# A\n## B\n### C ###\n#### D\n##### E\n###### F\n",
	"A\n===\n\nB\n---\n",
	"Para\n# Heading\ntext\n",
	"```go\nx := 1\n```\n\n~~~ python extra words\nprint()\n~~~\n",
	"```\nplain\n```\n",
	"> # Quoted\n> ```sh\n> ls\n> ```\n",
	"- item\n\n# After\n",
}

// goldmarkSummary returns the heading levels and fence languages
// in a document, in source order.
func goldmarkSummary(source []byte) []string {
	var summary []string
	doc := goldmark.New().Parser().Parse(text.NewReader(source))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			summary = append(summary, "h"+strconv.Itoa(n.Level))
		case *ast.FencedCodeBlock:
			summary = append(summary, "fence:"+string(n.Language(source)))
		}
		return ast.WalkContinue, nil
	})
	return summary
}

func mdscopeSummary(source []byte) []string {
	var summary []string
	mdscope.Walk(mdscope.ParseTree(source).AsNode(), &mdscope.WalkOptions{
		Pre: func(c *mdscope.Cursor) bool {
			b := c.Node().Block()
			if b == nil {
				return false
			}
			switch b.Kind() {
			case mdscope.ATXHeadingKind, mdscope.SetextHeadingKind:
				summary = append(summary, "h"+strconv.Itoa(b.Level()))
			case mdscope.FencedCodeBlockKind:
				lang := ""
				if info := b.Info(); info.IsValid() {
					lang = string(source[info.Start:info.End])
				}
				summary = append(summary, "fence:"+lang)
			}
			return true
		},
	})
	return summary
}

func TestGoldmarkAgreement(t *testing.T) {
	for _, source := range oracleDocuments {
		want := goldmarkSummary([]byte(source))
		got := mdscopeSummary([]byte(source))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ParseTree(%q) headings and fences (-goldmark +mdscope):\n%s", source, diff)
		}
	}
}
