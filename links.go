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
	"strings"
	"unicode"
	"unicode/utf8"
)

// parseAtom parses a construct at pos that cannot contain other inlines:
// autolinks, raw HTML, HTML comments, and character references.
// It returns nil if there is no such construct at pos.
func (state *inlineState) parseAtom(pos int) *Inline {
	source, end := state.source, state.line.End
	switch source[pos] {
	case '<':
		return parseAngleBracket(source, pos, end)
	case '&':
		if refEnd := parseCharacterReference(source, pos, end); refEnd >= 0 {
			return &Inline{
				kind: CharacterReferenceKind,
				span: Span{Start: pos, End: refEnd},
			}
		}
		return nil
	}
	if !state.atWordStart(pos) {
		return nil
	}
	if urlEnd := scanURL(source, pos, end, true); urlEnd >= 0 {
		return newAutolink(URLAutolinkKind, Span{Start: pos, End: urlEnd}, false)
	}
	if state.atEmailStart(pos) {
		if emailEnd := scanEmail(source, pos, end); emailEnd >= 0 {
			return newAutolink(EmailAutolinkKind, Span{Start: pos, End: emailEnd}, false)
		}
	}
	return nil
}

func (state *inlineState) atWordStart(pos int) bool {
	if c := state.source[pos]; !isASCIILetter(c) && !isASCIIDigit(c) {
		return false
	}
	if pos == state.line.Start {
		return true
	}
	prev, _ := utf8.DecodeLastRune(state.source[state.line.Start:pos])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

func (state *inlineState) atEmailStart(pos int) bool {
	return pos == state.line.Start || !isEmailLocalChar(state.source[pos-1])
}

// newAutolink returns an autolink node for the given span.
// If bracketed is true, the span includes the surrounding angle brackets.
func newAutolink(kind InlineKind, span Span, bracketed bool) *Inline {
	dest := span
	var markers []Span
	if bracketed {
		dest = Span{Start: span.Start + 1, End: span.End - 1}
		markers = []Span{
			{Start: span.Start, End: span.Start + 1},
			{Start: span.End - 1, End: span.End},
		}
	}
	return &Inline{
		kind:    kind,
		span:    span,
		markers: markers,
		children: []*Inline{{
			kind: LinkDestinationKind,
			span: dest,
		}},
	}
}

// parseAngleBracket parses an autolink, HTML comment, or raw HTML tag
// starting at s[start] == '<'.
func parseAngleBracket(s []byte, start, end int) *Inline {
	gt := start + 1
	for gt < end && s[gt] != '>' && s[gt] != '<' && !isSpaceTabOrLineEnding(s[gt]) {
		gt++
	}
	if gt < end && s[gt] == '>' && gt > start+1 {
		span := Span{Start: start, End: gt + 1}
		if scanURL(s, start+1, gt, false) == gt {
			return newAutolink(URLAutolinkKind, span, true)
		}
		if scanEmail(s, start+1, gt) == gt {
			return newAutolink(EmailAutolinkKind, span, true)
		}
	}
	if commentEnd := parseHTMLComment(s, start, end); commentEnd >= 0 {
		return &Inline{
			kind: HTMLCommentKind,
			span: Span{Start: start, End: commentEnd},
		}
	}
	if tagEnd := parseHTMLTag(s, start, end); tagEnd >= 0 {
		return &Inline{
			kind: RawHTMLKind,
			span: Span{Start: start, End: tagEnd},
		}
	}
	return nil
}

var urlSchemes = []string{"http://", "https://", "ftp://"}

// urlTrailingPunctuation is the set of characters
// that are not considered part of a bare URL when they end it.
const urlTrailingPunctuation = "*_~.,:;!?'\""

// scanURL returns the end of the URL starting at s[i] or -1.
// If bare is true, trailing punctuation is excluded
// and the path stops at ']' or at an unbalanced ')';
// otherwise the URL extends over every non-space character before end.
func scanURL(s []byte, i, end int, bare bool) int {
	hostStart := -1
	for _, scheme := range urlSchemes {
		if hasCaseInsensitiveBytePrefix(s[i:end], scheme) {
			hostStart = i + len(scheme)
			break
		}
	}
	if hostStart < 0 {
		return -1
	}
	hostEnd := scanHost(s, hostStart, end)
	if hostEnd < 0 {
		return -1
	}
	j := hostEnd
	if j < end && s[j] == ':' {
		k := j + 1
		for k < end && isASCIIDigit(s[k]) {
			k++
		}
		if k > j+1 {
			j = k
		}
	}
	if j < end && strings.IndexByte("/?#", s[j]) >= 0 {
		parens := 0
	path:
		for j < end && !isSpaceTabOrLineEnding(s[j]) && s[j] != '<' && s[j] != '>' {
			if bare {
				// A bare URL may sit inside link text or parentheses.
				switch s[j] {
				case ']':
					break path
				case '(':
					parens++
				case ')':
					if parens == 0 {
						break path
					}
					parens--
				}
			}
			j++
		}
	}
	if !bare {
		return j
	}
	for j > hostEnd && strings.IndexByte(urlTrailingPunctuation, s[j-1]) >= 0 {
		j--
	}
	return j
}

// scanHost returns the end of the host name starting at s[i] or -1.
// A host has at least two dot-separated labels of letters, digits, and hyphens.
// The last label has at least two characters and contains a letter.
func scanHost(s []byte, i, end int) int {
	labels := 0
	lastStart, lastEnd := -1, -1
	for {
		j := i
		for j < end {
			c, size := utf8.DecodeRune(s[j:end])
			if !isHostRune(c) {
				break
			}
			j += size
		}
		if j == i {
			break
		}
		labels++
		lastStart, lastEnd = i, j
		if j+1 >= end || s[j] != '.' {
			break
		}
		if next, _ := utf8.DecodeRune(s[j+1 : end]); !isHostRune(next) {
			break
		}
		i = j + 1
	}
	if labels < 2 {
		return -1
	}
	top := s[lastStart:lastEnd]
	if utf8.RuneCount(top) < 2 || !hasLetter(top) {
		return -1
	}
	return lastEnd
}

func isHostRune(c rune) bool {
	return c == '-' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func hasLetter(b []byte) bool {
	for len(b) > 0 {
		c, size := utf8.DecodeRune(b)
		if unicode.IsLetter(c) {
			return true
		}
		b = b[size:]
	}
	return false
}

// scanEmail returns the end of the email address starting at s[i] or -1.
// The address may be prefixed with "mailto:".
func scanEmail(s []byte, i, end int) int {
	if hasCaseInsensitiveBytePrefix(s[i:end], "mailto:") {
		i += len("mailto:")
	}
	j := i
	for j < end && isEmailLocalChar(s[j]) {
		j++
	}
	if j == i || j >= end || s[j] != '@' {
		return -1
	}
	return scanHost(s, j+1, end)
}

func isEmailLocalChar(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c) || strings.IndexByte("._+-", c) >= 0
}

// linkTail is the part of a link after the closing bracket of its text.
type linkTail struct {
	end       int
	reference bool
	markers   []Span
	children  []*Inline
}

// parseLinkTail parses an inline link's "(destination "title")"
// or a reference link's "[label]" starting at s[pos].
// Spaces and tabs may precede the tail.
func parseLinkTail(s []byte, end int, pos int) (linkTail, bool) {
	i := skipSpaceTab(s, pos, end)
	if i >= end {
		return linkTail{}, false
	}
	switch s[i] {
	case '(':
		return parseInlineLinkTail(s, end, i)
	case '[':
		return parseReferenceLinkTail(s, end, i)
	default:
		return linkTail{}, false
	}
}

func parseInlineLinkTail(s []byte, end int, open int) (linkTail, bool) {
	tail := linkTail{
		markers: []Span{{Start: open, End: open + 1}},
	}
	i := skipSpaceTab(s, open+1, end)
	dest, destEnd, ok := parseLinkDestination(s, i, end)
	if !ok {
		return linkTail{}, false
	}
	if dest.node != nil {
		tail.children = append(tail.children, dest.node)
		tail.markers = append(tail.markers, dest.markers...)
	}
	i = skipSpaceTab(s, destEnd, end)
	if i < end && i > destEnd && strings.IndexByte(`"'(`, s[i]) >= 0 {
		title, titleEnd, ok := parseLinkTitle(s, i, end)
		if !ok {
			return linkTail{}, false
		}
		tail.children = append(tail.children, title.node)
		tail.markers = append(tail.markers, title.markers...)
		i = skipSpaceTab(s, titleEnd, end)
	}
	if i >= end || s[i] != ')' {
		return linkTail{}, false
	}
	tail.markers = append(tail.markers, Span{Start: i, End: i + 1})
	tail.end = i + 1
	return tail, true
}

func parseReferenceLinkTail(s []byte, end int, open int) (linkTail, bool) {
	i := open + 1
	for ; i < end && s[i] != ']'; i++ {
		switch s[i] {
		case '[':
			return linkTail{}, false
		case '\\':
			if i+1 < end && isASCIIPunctuation(s[i+1]) {
				i++
			}
		}
	}
	if i >= end {
		return linkTail{}, false
	}
	tail := linkTail{
		end:       i + 1,
		reference: true,
		markers: []Span{
			{Start: open, End: open + 1},
			{Start: i, End: i + 1},
		},
	}
	if label := (Span{Start: open + 1, End: i}); !isBlank(spanSlice(s, label)) {
		tail.children = []*Inline{{kind: LinkLabelKind, span: label}}
	}
	return tail, true
}

type linkPart struct {
	node    *Inline
	markers []Span
}

// parseLinkDestination parses a [link destination] starting at s[i].
// An empty destination returns a nil node.
//
// [link destination]: https://spec.commonmark.org/0.30/#link-destination
func parseLinkDestination(s []byte, i, end int) (part linkPart, destEnd int, ok bool) {
	if i < end && s[i] == '<' {
		for j := i + 1; j < end; j++ {
			switch s[j] {
			case '\\':
				j++
			case '<', '\n', '\r':
				return linkPart{}, -1, false
			case '>':
				part.markers = []Span{
					{Start: i, End: i + 1},
					{Start: j, End: j + 1},
				}
				if j > i+1 {
					part.node = &Inline{kind: LinkDestinationKind, span: Span{Start: i + 1, End: j}}
				}
				return part, j + 1, true
			}
		}
		return linkPart{}, -1, false
	}

	depth := 0
	j := i
loop:
	for ; j < end; j++ {
		switch c := s[j]; {
		case c == '\\' && j+1 < end && isASCIIPunctuation(s[j+1]):
			j++
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				break loop
			}
			depth--
		case c <= ' ' || c == 0x7f:
			break loop
		}
	}
	if depth != 0 {
		return linkPart{}, -1, false
	}
	if j > i {
		part.node = &Inline{kind: LinkDestinationKind, span: Span{Start: i, End: j}}
	}
	return part, j, true
}

// parseLinkTitle parses a [link title] starting at s[i].
// The node covers the title without its quotes.
//
// [link title]: https://spec.commonmark.org/0.30/#link-title
func parseLinkTitle(s []byte, i, end int) (part linkPart, titleEnd int, ok bool) {
	closeChar := s[i]
	if closeChar == '(' {
		closeChar = ')'
	}
	for j := i + 1; j < end; j++ {
		switch c := s[j]; {
		case c == '\\':
			j++
		case c == closeChar:
			part.node = &Inline{kind: LinkTitleKind, span: Span{Start: i + 1, End: j}}
			part.markers = []Span{
				{Start: i, End: i + 1},
				{Start: j, End: j + 1},
			}
			return part, j + 1, true
		case closeChar == ')' && c == '(':
			return linkPart{}, -1, false
		}
	}
	return linkPart{}, -1, false
}

func skipSpaceTab(s []byte, i, end int) int {
	for i < end && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if !isSpaceTabOrLineEnding(c) {
			return false
		}
	}
	return true
}
