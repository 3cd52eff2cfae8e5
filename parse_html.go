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
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTMLTag parses an open tag, closing tag, comment,
// processing instruction, declaration, or CDATA section
// starting at s[start] == '<'.
// It returns the end of the construct or -1 if it is not well-formed
// or does not end before end.
func parseHTMLTag(s []byte, start, end int) int {
	const (
		cdataPrefix = "<![CDATA["
		cdataSuffix = "]]>"
	)

	if start+1 >= end || s[start] != '<' {
		return -1
	}
	rest := s[start:end]
	switch {
	case s[start+1] == '?':
		// Processing instructions.
		if i := bytes.Index(rest[2:], []byte("?>")); i >= 0 {
			return start + 2 + i + 2
		}
		return -1
	case hasBytePrefix(rest, "<!--"):
		return parseHTMLComment(s, start, end)
	case hasBytePrefix(rest, cdataPrefix):
		if i := bytes.Index(rest[len(cdataPrefix):], []byte(cdataSuffix)); i >= 0 {
			return start + len(cdataPrefix) + i + len(cdataSuffix)
		}
		return -1
	case s[start+1] == '!':
		// Declaration.
		if len(rest) < 3 || !isASCIILetter(rest[2]) {
			return -1
		}
		if i := bytes.IndexByte(rest, '>'); i >= 0 {
			return start + i + 1
		}
		return -1
	case s[start+1] == '/':
		return parseHTMLClosingTag(s, start+1, end)
	default:
		return parseHTMLOpenTag(s, start+1, end)
	}
}

// parseHTMLComment parses an HTML comment starting at s[start]
// and returns its end or -1.
func parseHTMLComment(s []byte, start, end int) int {
	rest := s[start:end]
	if !hasBytePrefix(rest, "<!--") {
		return -1
	}
	if text := rest[len("<!--"):]; hasBytePrefix(text, ">") || hasBytePrefix(text, "->") {
		return -1
	}
	if i := bytes.Index(rest[len("<!--"):], []byte("-->")); i >= 0 {
		return start + len("<!--") + i + len("-->")
	}
	return -1
}

// parseHTMLOpenTag parses an [open tag] sans the leading '<'.
//
// [open tag]: https://spec.commonmark.org/0.30/#open-tag
func parseHTMLOpenTag(s []byte, i, end int) int {
	i = parseHTMLTagName(s, i, end)
	if i < 0 {
		return -1
	}
	for {
		beforeSpace := i
		i = skipHTMLSpace(s, i, end)
		if i >= end {
			return -1
		}
		switch s[i] {
		case '/':
			if i+1 >= end || s[i+1] != '>' {
				return -1
			}
			return i + 2
		case '>':
			return i + 1
		}
		if i == beforeSpace {
			return -1
		}
		if i = parseHTMLAttribute(s, i, end); i < 0 {
			return -1
		}
	}
}

// parseHTMLClosingTag parses a [closing tag] sans the leading '<'.
//
// [closing tag]: https://spec.commonmark.org/0.30/#closing-tag
func parseHTMLClosingTag(s []byte, i, end int) int {
	if i >= end || s[i] != '/' {
		return -1
	}
	i = parseHTMLTagName(s, i+1, end)
	if i < 0 {
		return -1
	}
	i = skipHTMLSpace(s, i, end)
	if i >= end || s[i] != '>' {
		return -1
	}
	return i + 1
}

func parseHTMLTagName(s []byte, i, end int) int {
	if i >= end || !isASCIILetter(s[i]) {
		return -1
	}
	for i++; i < end && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || s[i] == '-'); i++ {
	}
	return i
}

func parseHTMLAttribute(s []byte, i, end int) int {
	// Attribute name.
	if c := s[i]; !isASCIILetter(c) && c != '_' && c != ':' {
		return -1
	}
	for i++; i < end && (isASCIILetter(s[i]) || isASCIIDigit(s[i]) || strings.IndexByte("_.:-", s[i]) >= 0); i++ {
	}

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since it will cause future attributes to fail.
	j := skipHTMLSpace(s, i, end)
	if j >= end || s[j] != '=' {
		return i
	}
	j = skipHTMLSpace(s, j+1, end)
	if j >= end {
		return -1
	}
	switch c := s[j]; {
	case c == '\'' || c == '"':
		k := bytes.IndexByte(s[j+1:end], c)
		if k < 0 {
			return -1
		}
		return j + 1 + k + 1
	case isUnquotedAttributeValueChar(c):
		for j < end && isUnquotedAttributeValueChar(s[j]) {
			j++
		}
		return j
	default:
		return -1
	}
}

func skipHTMLSpace(s []byte, i, end int) int {
	for i < end && isSpaceTabOrLineEnding(s[i]) {
		i++
	}
	return i
}

// parseCharacterReference parses an entity or numeric character reference
// starting at s[start] == '&'.
// Only references that decode to a character count.
func parseCharacterReference(s []byte, start, end int) int {
	const maxLen = 32
	if start >= end || s[start] != '&' {
		return -1
	}
	i := start + 1
	if i < end && s[i] == '#' {
		i++
		hex := i < end && (s[i] == 'x' || s[i] == 'X')
		if hex {
			i++
		}
		digitsStart := i
		for i < end && (isASCIIDigit(s[i]) || hex && isHexLetter(s[i])) {
			i++
		}
		if n := i - digitsStart; n == 0 || !hex && n > 7 || hex && n > 6 {
			return -1
		}
	} else {
		for i < end && i-start < maxLen && (isASCIILetter(s[i]) || isASCIIDigit(s[i])) {
			i++
		}
		if i == start+1 {
			return -1
		}
	}
	if i >= end || s[i] != ';' {
		return -1
	}
	ref := string(s[start : i+1])
	if html.UnescapeString(ref) == ref {
		return -1
	}
	return i + 1
}

func isHexLetter(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// htmlTag is an open or closing tag found while scanning runs of text.
type htmlTag struct {
	span        Span
	name        atom.Atom
	rawName     string
	closing     bool
	selfClosing bool
}

func (tag htmlTag) sameName(other htmlTag) bool {
	if tag.name != 0 || other.name != 0 {
		return tag.name == other.name
	}
	return tag.rawName == other.rawName
}

// scanHTMLTags returns the open and closing tags in the given runs of text,
// skipping over code spans.
func scanHTMLTags(source []byte, runs []Span) []htmlTag {
	var tags []htmlTag
	for _, run := range runs {
		for i := run.Start; i < run.End; {
			switch source[i] {
			case '`':
				cs, _ := parseCodeSpan(source, run.End, i)
				i = cs.end
				continue
			case '<':
			default:
				i++
				continue
			}
			end := parseHTMLTag(source, i, run.End)
			if end < 0 || i+1 >= run.End || !(isASCIILetter(source[i+1]) || source[i+1] == '/') {
				i++
				continue
			}
			tag := htmlTag{
				span:        Span{Start: i, End: end},
				closing:     source[i+1] == '/',
				selfClosing: source[end-2] == '/',
			}
			nameStart := i + 1
			if tag.closing {
				nameStart++
			}
			nameEnd := parseHTMLTagName(source, nameStart, end)
			lower := bytes.ToLower(source[nameStart:nameEnd])
			tag.name = atom.Lookup(lower)
			tag.rawName = string(lower)
			tags = append(tags, tag)
			i = end
		}
	}
	return tags
}

// htmlZones finds the regions of the given runs enclosed by
// a block-level HTML open tag and its matching closing tag.
// Markdown is not recognized inside these regions.
func htmlZones(source []byte, runs []Span) []Span {
	tags := scanHTMLTags(source, runs)
	var zones []Span
	for i := 0; i < len(tags); i++ {
		t := tags[i]
		if t.closing || t.selfClosing || inlineHTMLTags[t.name] {
			continue
		}
		depth := 0
		match := -1
		for j := i + 1; j < len(tags) && match < 0; j++ {
			switch {
			case !tags[j].sameName(t) || tags[j].selfClosing:
			case !tags[j].closing:
				depth++
			case depth == 0:
				match = j
			default:
				depth--
			}
		}
		if match < 0 {
			continue
		}
		zones = append(zones, Span{Start: t.span.Start, End: tags[match].span.End})
		i = match
	}
	return zones
}

// parseHTMLBlock parses an HTML block whose first line is lines[0]
// and whose block-level open tag starts off bytes into the line.
// The block ends on the line holding the matching closing tag,
// which may come after blank lines.
// It returns nil if the tag is not block-level or is never closed.
func (p *blockParser) parseHTMLBlock(lines []line, off int) (*Block, int) {
	start := lines[0].start + off
	first := scanHTMLTags(p.source, []Span{{Start: start, End: lines[0].end}})
	if len(first) == 0 {
		return nil, 0
	}
	if t := first[0]; t.span.Start != start || t.closing || t.selfClosing || inlineHTMLTags[t.name] {
		return nil, 0
	}
	runs := make([]Span, len(lines))
	for i, l := range lines {
		runs[i] = Span{Start: l.start, End: l.end}
	}
	zones := htmlZones(p.source, runs)
	if len(zones) == 0 || zones[0].Start != start {
		return nil, 0
	}
	zone := zones[0]
	n := 0
	for lines[n].end < zone.End {
		n++
	}

	b := newBlock(HTMLBlockKind, Span{Start: lines[0].start, End: lines[n].eol})
	var inlines []*Inline
	for _, l := range lines[:n+1] {
		inlines = append(inlines, parseHTMLZone(p.source, Span{Start: l.start, End: min(l.end, zone.End)})...)
	}
	if tail := (Span{Start: zone.End, End: lines[n].end}); !tail.IsEmpty() {
		inlines = append(inlines, resolveParagraph(p.source, []Span{tail})...)
	}
	b.children = inlineNodes(inlines)
	return b, n + 1
}

// parseHTMLZone splits a run inside an HTML zone into tags, comments, and text.
func parseHTMLZone(source []byte, span Span) []*Inline {
	var nodes []*Inline
	plainStart := span.Start
	for i := span.Start; i < span.End; {
		if source[i] != '<' {
			i++
			continue
		}
		kind := RawHTMLKind
		end := parseHTMLTag(source, i, span.End)
		if hasBytePrefix(source[i:span.End], "<!--") {
			kind = HTMLCommentKind
		}
		if end < 0 {
			i++
			continue
		}
		if plainStart < i {
			nodes = append(nodes, &Inline{kind: TextKind, span: Span{Start: plainStart, End: i}})
		}
		nodes = append(nodes, &Inline{kind: kind, span: Span{Start: i, End: end}})
		i = end
		plainStart = i
	}
	if plainStart < span.End {
		nodes = append(nodes, &Inline{kind: TextKind, span: Span{Start: plainStart, End: span.End}})
	}
	return nodes
}

// inlineHTMLTags is the set of tags that may appear inside a paragraph
// without switching off Markdown.
var inlineHTMLTags = map[atom.Atom]bool{
	atom.A:      true,
	atom.Abbr:   true,
	atom.B:      true,
	atom.Bdi:    true,
	atom.Bdo:    true,
	atom.Br:     true,
	atom.Button: true,
	atom.Cite:   true,
	atom.Code:   true,
	atom.Data:   true,
	atom.Del:    true,
	atom.Dfn:    true,
	atom.Em:     true,
	atom.Font:   true,
	atom.I:      true,
	atom.Img:    true,
	atom.Input:  true,
	atom.Ins:    true,
	atom.Kbd:    true,
	atom.Label:  true,
	atom.Mark:   true,
	atom.Q:      true,
	atom.S:      true,
	atom.Samp:   true,
	atom.Small:  true,
	atom.Span:   true,
	atom.Strike: true,
	atom.Strong: true,
	atom.Sub:    true,
	atom.Sup:    true,
	atom.Time:   true,
	atom.Tt:     true,
	atom.U:      true,
	atom.Var:    true,
	atom.Wbr:    true,
}

func hasBytePrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func hasCaseInsensitiveBytePrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i, bb := range b[:len(prefix)] {
		if toLowerASCII(prefix[i]) != toLowerASCII(bb) {
			return false
		}
	}
	return true
}

func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}

func isSpaceTabOrLineEnding(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
