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
	"unicode"
	"unicode/utf8"
)

// Inline represents Markdown content elements like text, links, or emphasis.
type Inline struct {
	kind     InlineKind
	span     Span
	scope    string
	markers  []Span
	children []*Inline
}

// Kind returns the type of inline node
// or zero if the node is nil.
func (inline *Inline) Kind() InlineKind {
	if inline == nil {
		return 0
	}
	return inline.kind
}

// Span returns the span of the inline node,
// including any delimiters,
// or an invalid span if the node is nil.
func (inline *Inline) Span() Span {
	if inline == nil {
		return NullSpan()
	}
	return inline.span
}

// Markers returns the spans of the node's delimiters,
// like the asterisks around emphasis or the brackets of a link.
func (inline *Inline) Markers() []Span {
	if inline == nil {
		return nil
	}
	return inline.markers
}

// Scope returns the scope name assigned by a [Tokenizer]
// to a [ForeignKind] node.
func (inline *Inline) Scope() string {
	if inline == nil {
		return ""
	}
	return inline.scope
}

// Text returns the source text covered by the node.
func (inline *Inline) Text(source []byte) string {
	if !inline.Span().IsValid() {
		return ""
	}
	return string(spanSlice(source, inline.span))
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (inline *Inline) ChildCount() int {
	if inline == nil {
		return 0
	}
	return len(inline.children)
}

// Child returns the i'th child of the node.
func (inline *Inline) Child(i int) *Inline {
	return inline.children[i]
}

// InlineKind is an enumeration of values returned by [*Inline.Kind].
type InlineKind uint16

const (
	// TextKind is plain text, including backslash escapes
	// and delimiters that did not match.
	TextKind InlineKind = 1 + iota
	EmphasisKind
	StrongKind
	// StrongEmphasisKind is emphasis and strong emphasis
	// sharing the same delimiter run, as in "***x***".
	StrongEmphasisKind
	StrikethroughKind
	CodeSpanKind
	// CodeContentKind is the text between the backticks of a [CodeSpanKind].
	CodeContentKind

	InlineLinkKind
	InlineImageKind
	// ReferenceLinkKind is a link of the form "[text][label]" or "[text][]".
	// An implicit reference has no [LinkLabelKind] child.
	ReferenceLinkKind
	ReferenceImageKind
	// LinkTextKind holds the inline content between a link's brackets.
	LinkTextKind
	LinkDestinationKind
	LinkTitleKind
	LinkLabelKind

	// URLAutolinkKind is a URL, either bare or enclosed in angle brackets.
	// Its [LinkDestinationKind] child covers the URL itself.
	URLAutolinkKind
	// EmailAutolinkKind is an email address, either bare or enclosed in angle brackets.
	EmailAutolinkKind
	RawHTMLKind
	HTMLCommentKind
	CharacterReferenceKind

	// ForeignKind is a token produced by a [Tokenizer]
	// inside a fenced code block.
	ForeignKind
)

var inlineKindNames = [...]string{
	TextKind:               "Text",
	EmphasisKind:           "Emphasis",
	StrongKind:             "Strong",
	StrongEmphasisKind:     "StrongEmphasis",
	StrikethroughKind:      "Strikethrough",
	CodeSpanKind:           "CodeSpan",
	CodeContentKind:        "CodeContent",
	InlineLinkKind:         "InlineLink",
	InlineImageKind:        "InlineImage",
	ReferenceLinkKind:      "ReferenceLink",
	ReferenceImageKind:     "ReferenceImage",
	LinkTextKind:           "LinkText",
	LinkDestinationKind:    "LinkDestination",
	LinkTitleKind:          "LinkTitle",
	LinkLabelKind:          "LinkLabel",
	URLAutolinkKind:        "URLAutolink",
	EmailAutolinkKind:      "EmailAutolink",
	RawHTMLKind:            "RawHTML",
	HTMLCommentKind:        "HTMLComment",
	CharacterReferenceKind: "CharacterReference",
	ForeignKind:            "Foreign",
}

// String returns the name of the kind.
func (kind InlineKind) String() string {
	if int(kind) < len(inlineKindNames) && inlineKindNames[kind] != "" {
		return inlineKindNames[kind]
	}
	return fmt.Sprintf("InlineKind(%d)", uint16(kind))
}

type inlineState struct {
	source    []byte
	line      Span
	container *Inline
	stack     []delimiterStackElement
	parentMap map[*Inline]*Inline
}

// parseInlines resolves the inline structure of a single run of text
// that does not span a line break.
// Constructs never extend past the run's bounds.
func parseInlines(source []byte, span Span) []*Inline {
	state := &inlineState{
		source:    source,
		line:      span,
		container: &Inline{span: span},
		parentMap: make(map[*Inline]*Inline),
	}
	plainStart := span.Start
	flush := func(end int) {
		if plainStart < end {
			state.add(&Inline{
				kind: TextKind,
				span: Span{Start: plainStart, End: end},
			})
		}
	}
	for pos := span.Start; pos < span.End; {
		if node := state.parseAtom(pos); node != nil {
			flush(pos)
			state.add(node)
			pos = node.span.End
			plainStart = pos
			continue
		}
		switch source[pos] {
		case '*', '_', '~':
			flush(pos)
			pos = state.parseDelimiterRun(pos)
			plainStart = pos
		case '`':
			cs, ok := parseCodeSpan(source, span.End, pos)
			if !ok {
				// Advance past literal backtick string.
				pos = cs.end
				continue
			}
			flush(pos)
			state.add(cs.node())
			pos = cs.end
			plainStart = pos
		case '[':
			flush(pos)
			state.pushBracket(inlineDelimiterLink, pos, pos+1)
			pos++
			plainStart = pos
		case '!':
			if pos+1 >= span.End || source[pos+1] != '[' {
				pos++
				continue
			}
			flush(pos)
			state.pushBracket(inlineDelimiterImage, pos, pos+2)
			pos += 2
			plainStart = pos
		case ']':
			flush(pos)
			pos = state.closeBracket(pos)
			plainStart = pos
		case '\\':
			if pos+1 >= span.End || !isASCIIPunctuation(source[pos+1]) {
				pos++
				continue
			}
			// Escaped characters stay literal text.
			flush(pos)
			state.add(&Inline{
				kind: TextKind,
				span: Span{Start: pos, End: pos + 2},
			})
			pos += 2
			plainStart = pos
		default:
			_, size := utf8.DecodeRune(source[pos:span.End])
			pos += size
		}
	}
	flush(span.End)
	state.processEmphasis(0)
	return state.container.children
}

func (state *inlineState) parseDelimiterRun(start int) (end int) {
	node := &Inline{
		kind: TextKind,
		span: Span{Start: start, End: start + 1},
	}
	for node.span.End < state.line.End && state.source[node.span.End] == state.source[start] {
		node.span.End++
	}

	line := spanSlice(state.source, state.line)
	elem := delimiterStackElement{
		flags: activeFlag | emphasisFlags(line, Span{
			Start: node.span.Start - state.line.Start,
			End:   node.span.End - state.line.Start,
		}),
		n:    node.span.Len(),
		node: node,
	}
	switch state.source[start] {
	case '*':
		elem.typ = inlineDelimiterStar
	case '_':
		elem.typ = inlineDelimiterUnderscore
	default:
		elem.typ = inlineDelimiterTilde
	}

	state.add(node)
	state.stack = append(state.stack, elem)
	return node.span.End
}

// emphasisFlags determines whether the given delimiter run
// can open and/or close emphasis.
// The edges of line count as whitespace.
// Underscores and tildes may not open or close inside a word.
func emphasisFlags(line []byte, span Span) uint8 {
	var flags uint8
	prevChar := ' '
	if span.Start > 0 {
		prevChar, _ = utf8.DecodeLastRune(line[:span.Start])
	}
	nextChar := ' '
	if span.End < len(line) {
		nextChar, _ = utf8.DecodeRune(line[span.End:])
	}
	leftFlanking := !isUnicodeWhitespace(nextChar) &&
		(!isUnicodePunctuation(nextChar) || isUnicodeWhitespace(prevChar) || isUnicodePunctuation(prevChar))
	rightFlanking := !isUnicodeWhitespace(prevChar) &&
		(!isUnicodePunctuation(prevChar) || isUnicodeWhitespace(nextChar) || isUnicodePunctuation(nextChar))
	star := line[span.Start] == '*'
	if leftFlanking && (star || !rightFlanking || isUnicodePunctuation(prevChar)) {
		flags |= openerFlag
	}
	if rightFlanking && (star || !leftFlanking || isUnicodePunctuation(nextChar)) {
		flags |= closerFlag
	}
	return flags
}

// processEmphasis converts the delimiter runs above stackBottom
// into emphasis, strong emphasis, and strikethrough nodes.
func (state *inlineState) processEmphasis(stackBottom int) {
	currentPosition := stackBottom
	var openersBottom [openersBottomCount]int
	for i := range openersBottom {
		openersBottom[i] = stackBottom
	}
closerLoop:
	for {
		// Move forward to the next potential closer.
		for {
			if currentPosition >= len(state.stack) {
				break closerLoop
			}
			if state.stack[currentPosition].typ.isEmphasis() &&
				state.stack[currentPosition].flags&closerFlag != 0 {
				break
			}
			currentPosition++
		}

		// Look back for the nearest compatible opener.
		openerIndex := currentPosition - 1
		openersBottomIndex := state.stack[currentPosition].openersBottomIndex()
		for openerIndex >= openersBottom[openersBottomIndex] &&
			!isEmphasisDelimiterMatch(state.stack[openerIndex], state.stack[currentPosition]) {
			openerIndex--
		}
		if openerIndex < openersBottom[openersBottomIndex] {
			// No openers for this kind of closer up to this point.
			openersBottom[openersBottomIndex] = currentPosition
			if state.stack[currentPosition].flags&openerFlag == 0 {
				state.stack = deleteDelimiterStack(state.stack, currentPosition, currentPosition+1)
			} else {
				currentPosition++
			}
			continue
		}

		opener := state.stack[openerIndex].node
		closer := state.stack[currentPosition].node
		kind, use := EmphasisKind, 1
		switch {
		case state.stack[openerIndex].typ == inlineDelimiterTilde:
			kind, use = StrikethroughKind, 2
		case opener.span.Len() >= 2 && closer.span.Len() >= 2:
			kind, use = StrongKind, 2
		}
		opener.span.End -= use
		closer.span.Start += use
		state.wrapDelimited(kind, opener, closer, use)

		// Delimiters between the opener and closer can no longer match.
		state.stack = deleteDelimiterStack(state.stack, openerIndex+1, currentPosition)
		currentPosition = openerIndex + 1

		if opener.span.IsEmpty() {
			state.remove(opener)
			state.stack = deleteDelimiterStack(state.stack, openerIndex, openerIndex+1)
			currentPosition--
		}
		if closer.span.IsEmpty() {
			state.remove(closer)
			state.stack = deleteDelimiterStack(state.stack, currentPosition, currentPosition+1)
		}
	}

	state.stack = deleteDelimiterStack(state.stack, stackBottom, len(state.stack))
}

// wrapDelimited wraps the nodes between opener and closer
// in a new node whose span includes use delimiter characters on each side.
// Emphasis directly around strong emphasis of the same character
// is merged into a single [StrongEmphasisKind] node.
func (state *inlineState) wrapDelimited(kind InlineKind, opener, closer *Inline, use int) {
	newNode := state.wrap(kind, opener, closer)
	newNode.markers = []Span{
		{Start: newNode.span.Start, End: newNode.span.Start + use},
		{Start: newNode.span.End - use, End: newNode.span.End},
	}
	if kind != EmphasisKind || len(newNode.children) != 1 {
		return
	}
	inner := newNode.children[0]
	if inner.kind != StrongKind ||
		inner.span.Start != newNode.span.Start+1 ||
		inner.span.End != newNode.span.End-1 ||
		state.source[inner.span.Start] != state.source[newNode.span.Start] {
		return
	}
	newNode.kind = StrongEmphasisKind
	newNode.markers = []Span{
		{Start: newNode.span.Start, End: inner.markers[0].End},
		{Start: inner.markers[1].Start, End: newNode.span.End},
	}
	newNode.children = inner.children
	for _, c := range newNode.children {
		state.parentMap[c] = newNode
	}
	delete(state.parentMap, inner)
}

type codeSpan struct {
	start        int
	contentStart int
	contentEnd   int
	end          int
}

// parseCodeSpan looks for a code span starting with the backtick run at start.
// The opener tries the full run length first, then shorter prefixes of it.
// The first later run on the line that is at least as long closes the span,
// and only the opener's length is taken from it.
// If no code span is found, parseCodeSpan returns false
// and the end of the backtick run.
func parseCodeSpan(source []byte, lineEnd int, start int) (codeSpan, bool) {
	runEnd := start
	for runEnd < lineEnd && source[runEnd] == '`' {
		runEnd++
	}
	for n := runEnd - start; n > 0; n-- {
		for i := runEnd; i < lineEnd; {
			if source[i] != '`' {
				i++
				continue
			}
			j := i
			for j < lineEnd && source[j] == '`' {
				j++
			}
			if j-i >= n {
				return codeSpan{
					start:        start,
					contentStart: start + n,
					contentEnd:   i,
					end:          i + n,
				}, true
			}
			i = j
		}
	}
	return codeSpan{start: start, contentStart: runEnd, contentEnd: runEnd, end: runEnd}, false
}

func (cs codeSpan) node() *Inline {
	return &Inline{
		kind: CodeSpanKind,
		span: Span{Start: cs.start, End: cs.end},
		markers: []Span{
			{Start: cs.start, End: cs.contentStart},
			{Start: cs.contentEnd, End: cs.end},
		},
		children: []*Inline{{
			kind: CodeContentKind,
			span: Span{Start: cs.contentStart, End: cs.contentEnd},
		}},
	}
}

func (state *inlineState) pushBracket(typ inlineDelimiter, start, end int) {
	node := &Inline{
		kind: TextKind,
		span: Span{Start: start, End: end},
	}
	state.add(node)
	state.stack = append(state.stack, delimiterStackElement{
		typ:   typ,
		flags: activeFlag,
		n:     end - start,
		node:  node,
	})
}

// closeBracket handles a ']' at pos,
// forming a link or image if a matching opener and a link tail are present.
// It returns the position after the consumed text.
func (state *inlineState) closeBracket(pos int) (end int) {
	literal := func() int {
		state.add(&Inline{
			kind: TextKind,
			span: Span{Start: pos, End: pos + 1},
		})
		return pos + 1
	}
	openerIndex := len(state.stack) - 1
	for ; openerIndex >= 0; openerIndex-- {
		if typ := state.stack[openerIndex].typ; typ == inlineDelimiterLink || typ == inlineDelimiterImage {
			break
		}
	}
	if openerIndex < 0 {
		return literal()
	}
	opener := state.stack[openerIndex]
	if opener.flags&activeFlag == 0 {
		state.stack = deleteDelimiterStack(state.stack, openerIndex, openerIndex+1)
		return literal()
	}
	tail, ok := parseLinkTail(state.source, state.line.End, pos+1)
	if !ok {
		state.stack = deleteDelimiterStack(state.stack, openerIndex, openerIndex+1)
		return literal()
	}

	closer := &Inline{
		kind: TextKind,
		span: Span{Start: pos, End: pos + 1},
	}
	state.add(closer)
	state.processEmphasis(openerIndex + 1)
	text := state.wrap(LinkTextKind, opener.node, closer)

	link := &Inline{
		span: Span{Start: opener.node.span.Start, End: tail.end},
	}
	switch {
	case opener.typ == inlineDelimiterLink && !tail.reference:
		link.kind = InlineLinkKind
	case opener.typ == inlineDelimiterLink && tail.reference:
		link.kind = ReferenceLinkKind
	case !tail.reference:
		link.kind = InlineImageKind
	default:
		link.kind = ReferenceImageKind
	}
	if opener.typ == inlineDelimiterImage {
		link.markers = append(link.markers, Span{Start: opener.node.span.Start, End: opener.node.span.Start + 1})
	}
	link.markers = append(link.markers,
		Span{Start: opener.node.span.End - 1, End: opener.node.span.End},
		closer.span,
	)
	link.markers = append(link.markers, tail.markers...)
	link.children = append([]*Inline{text}, tail.children...)
	state.replace(opener.node, closer, link)

	state.stack = deleteDelimiterStack(state.stack, openerIndex, len(state.stack))
	if opener.typ == inlineDelimiterLink {
		// Links may not contain other links.
		for i := range state.stack {
			if state.stack[i].typ == inlineDelimiterLink {
				state.stack[i].flags &^= activeFlag
			}
		}
	}
	return tail.end
}

func (state *inlineState) add(newNode *Inline) {
	state.parentMap[newNode] = state.container
	state.container.children = append(state.container.children, newNode)
}

// wrap inserts a new inline that wraps the nodes between two nodes, exclusive.
// The new node spans from the end of startNode to the start of endNode.
func (state *inlineState) wrap(kind InlineKind, startNode, endNode *Inline) *Inline {
	parent := state.parentMap[startNode]
	newNode := &Inline{
		kind: kind,
		span: Span{Start: startNode.span.End, End: endNode.span.Start},
	}
	state.parentMap[newNode] = parent
	startIndex := indexInline(parent.children, startNode) + 1
	if startIndex == 0 {
		panic("could not find startNode")
	}
	endIndex := startIndex + indexInline(parent.children[startIndex:], endNode)
	if endIndex < startIndex {
		panic("could not find endNode")
	}

	newNode.children = append(newNode.children, parent.children[startIndex:endIndex]...)
	if startIndex == endIndex {
		parent.children = append(parent.children, nil)
		copy(parent.children[startIndex+1:], parent.children[startIndex:])
	} else {
		parent.children = deleteInlineNodes(parent.children, startIndex+1, endIndex)
	}
	parent.children[startIndex] = newNode

	for _, c := range newNode.children {
		state.parentMap[c] = newNode
	}
	return newNode
}

// replace substitutes newNode for the sibling nodes from first to last, inclusive.
func (state *inlineState) replace(first, last, newNode *Inline) {
	parent := state.parentMap[first]
	i := indexInline(parent.children, first)
	j := i + indexInline(parent.children[i:], last)
	for _, c := range parent.children[i : j+1] {
		delete(state.parentMap, c)
	}
	parent.children[i] = newNode
	parent.children = deleteInlineNodes(parent.children, i+1, j+1)
	state.parentMap[newNode] = parent
	for _, c := range newNode.children {
		state.parentMap[c] = newNode
	}
}

func (state *inlineState) remove(node *Inline) {
	parent := state.parentMap[node]
	if i := indexInline(parent.children, node); i >= 0 {
		parent.children = deleteInlineNodes(parent.children, i, i+1)
	}
	delete(state.parentMap, node)
}

func indexInline(slice []*Inline, node *Inline) int {
	for i, c := range slice {
		if c == node {
			return i
		}
	}
	return -1
}

func deleteInlineNodes(slice []*Inline, i, j int) []*Inline {
	copy(slice[i:], slice[j:])
	newEnd := len(slice) - (j - i)
	clear := slice[newEnd:]
	for ci := range clear {
		clear[ci] = nil
	}
	return slice[:newEnd]
}

type delimiterStackElement struct {
	typ   inlineDelimiter
	flags uint8
	n     int
	node  *Inline
}

const openersBottomCount = 10

func (elem delimiterStackElement) openersBottomIndex() int {
	switch elem.typ {
	case inlineDelimiterStar:
		if elem.flags&openerFlag == 0 {
			return elem.n % 3
		}
		return 3 + elem.n%3
	case inlineDelimiterUnderscore:
		return 6
	case inlineDelimiterTilde:
		return 7
	case inlineDelimiterLink:
		return 8
	case inlineDelimiterImage:
		return 9
	default:
		panic("unreachable")
	}
}

func isEmphasisDelimiterMatch(open, close delimiterStackElement) bool {
	if !open.typ.isEmphasis() ||
		open.typ != close.typ ||
		open.flags&openerFlag == 0 ||
		close.flags&closerFlag == 0 {
		return false
	}
	if open.typ == inlineDelimiterTilde {
		return open.n == 2 && close.n == 2
	}
	// Rule of three: a delimiter that can both open and close
	// only matches when the lengths don't sum to a multiple of 3.
	return open.flags&closerFlag == 0 && close.flags&openerFlag == 0 ||
		(open.n+close.n)%3 != 0 ||
		open.n%3 == 0 && close.n%3 == 0
}

func deleteDelimiterStack(stack []delimiterStackElement, i, j int) []delimiterStackElement {
	copy(stack[i:], stack[j:])
	newEnd := len(stack) - (j - i)
	clear := stack[newEnd:]
	for ci := range clear {
		clear[ci] = delimiterStackElement{}
	}
	return stack[:newEnd]
}

const (
	activeFlag = 1 << iota
	openerFlag
	closerFlag
)

type inlineDelimiter int8

const (
	inlineDelimiterStar inlineDelimiter = 1 + iota
	inlineDelimiterUnderscore
	inlineDelimiterTilde
	inlineDelimiterLink
	inlineDelimiterImage
)

func (d inlineDelimiter) isEmphasis() bool {
	return d == inlineDelimiterStar || d == inlineDelimiterUnderscore || d == inlineDelimiterTilde
}

func (d inlineDelimiter) String() string {
	switch d {
	case inlineDelimiterStar:
		return "*"
	case inlineDelimiterUnderscore:
		return "_"
	case inlineDelimiterTilde:
		return "~"
	case inlineDelimiterLink:
		return "["
	case inlineDelimiterImage:
		return "!["
	default:
		return fmt.Sprintf("inlineDelimiter(%d)", int8(d))
	}
}

func isUnicodeWhitespace(c rune) bool {
	return unicode.Is(unicode.Zs, c) || c == '\t' || c == '\n' || c == '\f' || c == '\r'
}

func isUnicodePunctuation(c rune) bool {
	return unicode.In(c, unicode.P, unicode.S)
}

func isASCIIPunctuation(c byte) bool {
	return '!' <= c && c <= '/' ||
		':' <= c && c <= '@' ||
		'[' <= c && c <= '`' ||
		'{' <= c && c <= '~'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
