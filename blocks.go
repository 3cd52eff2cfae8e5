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

import "log/slog"

// tabStopSize is the multiple of columns that a [tab] advances to.
//
// [tab]: https://spec.commonmark.org/0.30/#tabs
const tabStopSize = 4

// codeBlockIndentLimit is the column width of an indent
// required to start an indented code block.
const codeBlockIndentLimit = 4

// A line is a single line of a container's content.
// For top-level lines, start is the beginning of the physical line.
// Inside a block quote, start is just past the quote marker.
type line struct {
	start int
	end   int // end of content, before the line terminator
	eol   int // end of line, after the line terminator
	lazy  bool
}

func splitLines(source []byte) []line {
	var lines []line
	for start := 0; start < len(source); {
		end := start
		for end < len(source) && source[end] != '\n' && source[end] != '\r' {
			end++
		}
		eol := end
		switch {
		case eol+1 < len(source) && source[eol] == '\r' && source[eol+1] == '\n':
			eol += 2
		case eol < len(source):
			eol++
		}
		lines = append(lines, line{start: start, end: end, eol: eol})
		start = eol
	}
	return lines
}

// measureIndent returns the number of columns of leading whitespace in text
// and the byte offset of the first non-whitespace character.
func measureIndent(text []byte) (indent, offset int) {
	for ; offset < len(text); offset++ {
		switch text[offset] {
		case ' ':
			indent++
		case '\t':
			indent += tabStopSize - indent%tabStopSize
		default:
			return indent, offset
		}
	}
	return indent, offset
}

// blockParser splits a document into blocks.
// It holds no state between calls to parse other than its configuration.
type blockParser struct {
	source    []byte
	tokenizer Tokenizer
	logger    *slog.Logger
}

func (p *blockParser) text(l line) []byte {
	return p.source[l.start:l.end]
}

func (p *blockParser) parse() *Block {
	doc := newBlock(documentKind, Span{Start: 0, End: len(p.source)})
	doc.children = p.parseContainer(splitLines(p.source))
	return doc
}

// parseContainer classifies a container's lines into blocks.
func (p *blockParser) parseContainer(lines []line) []Node {
	var nodes []Node
	var para *paragraphBuilder
	closeParagraph := func() {
		if para != nil {
			nodes = append(nodes, p.finishParagraph(para).AsNode())
			para = nil
		}
	}
	afterList := false
	for i := 0; i < len(lines); {
		l := lines[i]
		text := p.text(l)
		indent, off := measureIndent(text)
		rest := text[off:]
		if len(rest) == 0 {
			closeParagraph()
			i++
			continue
		}

		if indent < codeBlockIndentLimit || afterList {
			if f, ok := parseCodeFence(rest); ok {
				closeParagraph()
				block, n := p.parseFencedCodeBlock(lines[i:], off, f)
				nodes = append(nodes, block.AsNode())
				afterList = false
				i += n
				continue
			}
		}
		afterList = false

		if indent >= codeBlockIndentLimit && para == nil {
			block, n := p.parseIndentedCodeBlock(lines[i:])
			nodes = append(nodes, block.AsNode())
			i += n
			continue
		}

		// Only a single-line paragraph may be underlined.
		if para != nil && len(para.contents) == 1 && indent == 0 && !l.lazy {
			if level, runEnd := parseSetextUnderline(text); level > 0 {
				h := newBlock(SetextHeadingKind, Span{Start: para.start, End: l.eol})
				h.level = level
				h.markers = []Span{{Start: l.start, End: l.start + runEnd}}
				h.children = p.resolveParagraphLines(para)
				nodes = append(nodes, h.AsNode())
				para = nil
				i++
				continue
			}
		}

		if indent < codeBlockIndentLimit {
			if h := parseATXHeading(rest); h.level > 0 {
				closeParagraph()
				nodes = append(nodes, p.newATXHeading(l, off, h).AsNode())
				i++
				continue
			}
			if end := parseThematicBreak(rest); end >= 0 {
				closeParagraph()
				nodes = append(nodes, newBlock(ThematicBreakKind, Span{Start: l.start, End: l.eol}).AsNode())
				i++
				continue
			}
			if parseBlockQuote(rest) >= 0 {
				closeParagraph()
				block, n := p.parseBlockQuote(lines[i:])
				nodes = append(nodes, block.AsNode())
				i += n
				continue
			}
			if _, ok := parseListMarker(rest); ok {
				closeParagraph()
				block, n := p.parseList(lines[i:])
				nodes = append(nodes, block.AsNode())
				i += n
				afterList = true
				continue
			}
			if rest[0] == '<' {
				if block, n := p.parseHTMLBlock(lines[i:], off); block != nil {
					closeParagraph()
					nodes = append(nodes, block.AsNode())
					i += n
					continue
				}
			}
			if para == nil {
				if def := p.parseLinkReferenceDefinition(l, off); def != nil {
					nodes = append(nodes, def.AsNode())
					i++
					continue
				}
			}
		}

		if para == nil {
			para = &paragraphBuilder{start: l.start}
		}
		para.add(l, off)
		i++
	}
	closeParagraph()
	return nodes
}

// paragraphBuilder accumulates the lines of a paragraph.
type paragraphBuilder struct {
	start    int
	end      int
	contents []Span
}

func (para *paragraphBuilder) add(l line, offset int) {
	para.contents = append(para.contents, Span{Start: l.start + offset, End: l.end})
	para.end = l.eol
}

func (p *blockParser) finishParagraph(para *paragraphBuilder) *Block {
	b := newBlock(ParagraphKind, Span{Start: para.start, End: para.end})
	b.children = p.resolveParagraphLines(para)
	return b
}

func (p *blockParser) resolveParagraphLines(para *paragraphBuilder) []Node {
	return inlineNodes(resolveParagraph(p.source, para.contents))
}

// resolveParagraph resolves the inlines of a paragraph's lines.
// Regions enclosed by block-level HTML tags only recognize tags.
func resolveParagraph(source []byte, contents []Span) []*Inline {
	zones := htmlZones(source, contents)
	var out []*Inline
	for _, c := range contents {
		pos := c.Start
		for _, z := range zones {
			if z.End <= c.Start || z.Start >= c.End {
				continue
			}
			s, e := max(z.Start, c.Start), min(z.End, c.End)
			if pos < s {
				out = append(out, parseInlines(source, Span{Start: pos, End: s})...)
			}
			out = append(out, parseHTMLZone(source, Span{Start: s, End: e})...)
			pos = e
		}
		if pos < c.End {
			out = append(out, parseInlines(source, Span{Start: pos, End: c.End})...)
		}
	}
	return out
}

func inlineNodes(inlines []*Inline) []Node {
	if len(inlines) == 0 {
		return nil
	}
	nodes := make([]Node, len(inlines))
	for i, inline := range inlines {
		nodes[i] = inline.AsNode()
	}
	return nodes
}

func (p *blockParser) parseIndentedCodeBlock(lines []line) (*Block, int) {
	last := 0
	n := 0
	for ; n < len(lines); n++ {
		indent, off := measureIndent(p.text(lines[n]))
		if off == len(p.text(lines[n])) {
			continue
		}
		if indent < codeBlockIndentLimit {
			break
		}
		last = n
	}
	return newBlock(IndentedCodeBlockKind, Span{Start: lines[0].start, End: lines[last].eol}), last + 1
}

func (p *blockParser) newATXHeading(l line, off int, h atxHeading) *Block {
	b := newBlock(ATXHeadingKind, Span{Start: l.start, End: l.eol})
	b.level = h.level
	base := l.start + off
	b.markers = []Span{{Start: base, End: base + h.level}}
	if h.closeStart < h.closeEnd {
		b.markers = append(b.markers, Span{Start: base + h.closeStart, End: base + h.closeEnd})
	}
	b.info = Span{Start: base + h.contentStart, End: base + h.contentEnd}
	if h.contentStart < h.contentEnd {
		b.children = inlineNodes(resolveParagraph(p.source, []Span{b.info}))
	}
	return b
}

// parseBlockQuote collects the lines of a block quote starting at lines[0]
// and parses the quote's content.
func (p *blockParser) parseBlockQuote(lines []line) (*Block, int) {
	b := newBlock(BlockQuoteKind, Span{Start: lines[0].start, End: lines[0].eol})
	var content []line
	lastBlank := false
	n := 0
	for ; n < len(lines); n++ {
		l := lines[n]
		text := p.text(l)
		indent, off := measureIndent(text)
		if indent < codeBlockIndentLimit {
			if end := parseBlockQuote(text[off:]); end >= 0 {
				b.markers = append(b.markers, Span{Start: l.start + off, End: l.start + off + 1})
				inner := line{start: l.start + off + end, end: l.end, eol: l.eol}
				content = append(content, inner)
				lastBlank = inner.start == inner.end
				b.span.End = l.eol
				continue
			}
		}
		if off == len(text) || lastBlank || !isLazyContinuation(text[off:], indent) {
			break
		}
		l.lazy = true
		content = append(content, l)
		b.span.End = l.eol
	}
	b.children = p.parseContainer(content)
	return b, n
}

// isLazyContinuation reports whether a non-blank line without a quote marker
// continues the paragraph of a preceding block quote.
func isLazyContinuation(rest []byte, indent int) bool {
	if indent >= codeBlockIndentLimit {
		return true
	}
	if _, ok := parseCodeFence(rest); ok {
		return false
	}
	if parseATXHeading(rest).level > 0 || parseThematicBreak(rest) >= 0 {
		return false
	}
	_, isListItem := parseListMarker(rest)
	return !isListItem
}

// parseThematicBreak attempts to parse the line as a [thematic break].
// It returns the end of the thematic break characters
// or -1 if the line is not a thematic break.
// parseThematicBreak assumes that the caller has stripped any leading indentation.
//
// [thematic break]: https://spec.commonmark.org/0.30/#thematic-breaks
func parseThematicBreak(line []byte) (end int) {
	n := 0
	var want byte
	for i, b := range line {
		switch b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return -1
			}
			n++
			end = i + 1
		case ' ', '\t':
			// Ignore
		default:
			return -1
		}
	}
	if n < 3 {
		return -1
	}
	return end
}

// parseSetextUnderline attempts to parse the line as a setext heading underline.
// The underline must start at the first column
// and consist of at least 3 '=' or '-' characters followed by optional spaces.
// It returns the heading level and the end of the underline characters,
// or a level of zero if the line is not an underline.
func parseSetextUnderline(line []byte) (level, end int) {
	const minLength = 3
	if len(line) == 0 {
		return 0, 0
	}
	c := line[0]
	switch c {
	case '=':
		level = 1
	case '-':
		level = 2
	default:
		return 0, 0
	}
	for end < len(line) && line[end] == c {
		end++
	}
	if end < minLength {
		return 0, 0
	}
	for _, b := range line[end:] {
		if b != ' ' && b != '\t' {
			return 0, 0
		}
	}
	return level, end
}

// parseBlockQuote attempts to parse a [block quote marker] from the beginning of the line.
// It returns the end of the block quote marker
// or -1 if the line does not begin with the marker.
// parseBlockQuote assumes that the caller has stripped any leading indentation.
//
// [block quote marker]: https://spec.commonmark.org/0.30/#block-quote-marker
func parseBlockQuote(line []byte) (end int) {
	if len(line) == 0 || line[0] != '>' {
		return -1
	}
	if len(line) > 1 && line[1] == ' ' {
		return 2
	}
	return 1
}

type atxHeading struct {
	level        int // 1-6
	contentStart int
	contentEnd   int
	closeStart   int
	closeEnd     int
}

// parseATXHeading attempts to parse the line as an [ATX heading].
// The level is zero if the line is not an ATX heading.
// parseATXHeading assumes that the caller has stripped any leading indentation.
//
// [ATX heading]: https://spec.commonmark.org/0.30/#atx-headings
func parseATXHeading(line []byte) atxHeading {
	var h atxHeading
	for h.level < len(line) && line[h.level] == '#' {
		h.level++
	}
	if h.level == 0 || h.level > 6 {
		return atxHeading{}
	}
	if h.level < len(line) && line[h.level] != ' ' && line[h.level] != '\t' {
		return atxHeading{}
	}

	end := len(line)
	for end > h.level && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	h.closeStart, h.closeEnd = end, end

	// An optional closing sequence must be preceded by a space or tab.
	closeStart := end
	for closeStart > h.level && line[closeStart-1] == '#' {
		closeStart--
	}
	if closeStart < end && closeStart > h.level && (line[closeStart-1] == ' ' || line[closeStart-1] == '\t') {
		h.closeStart = closeStart
		end = closeStart
	}

	h.contentStart = h.level
	for h.contentStart < end && (line[h.contentStart] == ' ' || line[h.contentStart] == '\t') {
		h.contentStart++
	}
	h.contentEnd = end
	for h.contentEnd > h.contentStart && (line[h.contentEnd-1] == ' ' || line[h.contentEnd-1] == '\t') {
		h.contentEnd--
	}
	return h
}
