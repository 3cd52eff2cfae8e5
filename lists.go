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

type listMarker struct {
	end          int // end of the bullet or ordinal
	contentStart int
}

// maxOrdinalDigits is the maximum number of digits in an ordered list marker.
const maxOrdinalDigits = 9

// parseListMarker attempts to parse a [list marker] from the beginning of the line.
// The marker must be followed by a space or tab.
// parseListMarker assumes that the caller has stripped any leading indentation.
//
// [list marker]: https://spec.commonmark.org/0.30/#list-marker
func parseListMarker(line []byte) (listMarker, bool) {
	var m listMarker
	if len(line) > 0 && (line[0] == '-' || line[0] == '+' || line[0] == '*') {
		m.end = 1
	} else {
		n := 0
		for n < len(line) && n <= maxOrdinalDigits && isASCIIDigit(line[n]) {
			n++
		}
		if n == 0 || n > maxOrdinalDigits || n >= len(line) || line[n] != '.' {
			return listMarker{}, false
		}
		m.end = n + 1
	}
	if m.end >= len(line) || line[m.end] != ' ' && line[m.end] != '\t' {
		return listMarker{}, false
	}
	m.contentStart = m.end
	for m.contentStart < len(line) && (line[m.contentStart] == ' ' || line[m.contentStart] == '\t') {
		m.contentStart++
	}
	return m, true
}

// listFrame is an open list on the nesting stack.
type listFrame struct {
	indent int
	list   *Block
	item   *Block
	para   *paragraphBuilder
}

func (p *blockParser) flushListParagraph(f *listFrame) {
	if f.para != nil {
		f.item.children = append(f.item.children, p.finishParagraph(f.para).AsNode())
		f.para = nil
	}
}

// parseList parses a list starting at the marker line lines[0].
// It returns the list and the number of lines consumed,
// which never includes trailing blank lines.
//
// Nesting is determined by marker indentation:
// a marker indented at least two columns past the enclosing list's markers
// starts a nested list inside the current item.
// Non-marker lines continue the current item's paragraph,
// and after blank lines, indented lines start a new paragraph in the item.
func (p *blockParser) parseList(lines []line) (*Block, int) {
	root := newBlock(ListKind, Span{Start: lines[0].start, End: lines[0].eol})
	var stack []*listFrame
	consumed := 0
	blankSeen := false
	extend := func(l line) {
		for _, f := range stack {
			f.list.span.End = l.eol
			f.item.span.End = l.eol
		}
		// Regions only join physically adjacent lines,
		// so quote markers between lines stay outside them.
		if last := len(root.regions) - 1; !blankSeen && last >= 0 && root.regions[last].End == l.start {
			root.regions[last].End = l.eol
		} else {
			root.regions = append(root.regions, Span{Start: l.start, End: l.eol})
		}
		blankSeen = false
	}

lineLoop:
	for n, l := range lines {
		text := p.text(l)
		indent, off := measureIndent(text)
		rest := text[off:]
		if len(rest) == 0 {
			blankSeen = true
			for _, f := range stack {
				p.flushListParagraph(f)
			}
			continue
		}
		if _, ok := parseCodeFence(rest); ok {
			break
		}
		if indent < codeBlockIndentLimit &&
			(parseATXHeading(rest).level > 0 || parseThematicBreak(rest) >= 0 || parseBlockQuote(rest) >= 0) {
			break
		}

		m, isMarker := parseListMarker(rest)
		switch {
		case isMarker && len(stack) == 0:
			stack = append(stack, &listFrame{indent: indent, list: root})
		case isMarker && indent >= stack[len(stack)-1].indent+2:
			top := stack[len(stack)-1]
			p.flushListParagraph(top)
			nested := newBlock(ListKind, Span{Start: l.start, End: l.eol})
			nested.level = len(stack)
			top.item.children = append(top.item.children, nested.AsNode())
			stack = append(stack, &listFrame{indent: indent, list: nested})
		case isMarker:
			for len(stack) > 1 && indent < stack[len(stack)-2].indent+2 {
				p.flushListParagraph(stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			p.flushListParagraph(stack[len(stack)-1])
		case blankSeen && indent == 0:
			break lineLoop
		}

		top := stack[len(stack)-1]
		if isMarker {
			item := newBlock(ListItemKind, Span{Start: l.start, End: l.eol})
			item.markers = []Span{{Start: l.start + off, End: l.start + off + m.end}}
			top.list.children = append(top.list.children, item.AsNode())
			top.item = item
			if m.contentStart < len(rest) {
				top.para = &paragraphBuilder{start: l.start + off + m.contentStart}
				top.para.add(l, off+m.contentStart)
			}
		} else {
			if top.para == nil {
				top.para = &paragraphBuilder{start: l.start + off}
			}
			top.para.add(l, off)
		}
		extend(l)
		consumed = n + 1
	}
	for _, f := range stack {
		p.flushListParagraph(f)
	}
	return root, consumed
}
