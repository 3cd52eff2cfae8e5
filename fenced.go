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
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// A Tokenizer assigns scopes to the lines of a fenced code block.
// Implementations must be safe to call from multiple goroutines.
type Tokenizer interface {
	// Tokenize returns the tokens of a single line of code.
	// lang is the first word of the fence's info string, which may be empty.
	// Token spans are relative to the start of line.
	// A tokenizer that does not know lang should return no tokens.
	Tokenize(lang string, line []byte) ([]Token, error)
}

// A Token is a scoped span of a line of code.
type Token struct {
	Span Span
	Name string
}

// codeFence is a parsed opening [code fence].
// Offsets are relative to the start of the fence.
//
// [code fence]: https://spec.commonmark.org/0.30/#code-fence
type codeFence struct {
	char      byte
	n         int
	infoStart int
	infoEnd   int
}

// minCodeFenceLength is the minimum number of characters in a code fence.
const minCodeFenceLength = 3

// parseCodeFence attempts to parse an opening code fence
// from the beginning of the line.
// The info string of a backtick fence may not contain backticks.
// parseCodeFence assumes that the caller has stripped any leading indentation.
func parseCodeFence(line []byte) (codeFence, bool) {
	if len(line) == 0 || line[0] != '`' && line[0] != '~' {
		return codeFence{}, false
	}
	f := codeFence{char: line[0]}
	for f.n < len(line) && line[f.n] == f.char {
		f.n++
	}
	if f.n < minCodeFenceLength {
		return codeFence{}, false
	}
	if f.char == '`' && bytes.IndexByte(line[f.n:], '`') >= 0 {
		return codeFence{}, false
	}
	f.infoStart = f.n
	for f.infoStart < len(line) && (line[f.infoStart] == ' ' || line[f.infoStart] == '\t') {
		f.infoStart++
	}
	f.infoEnd = f.infoStart
	for f.infoEnd < len(line) && line[f.infoEnd] != ' ' && line[f.infoEnd] != '\t' {
		f.infoEnd++
	}
	return f, true
}

// closingFenceLength returns the length of the fence characters
// if line closes the fence f, or zero otherwise.
// line should have its leading indentation stripped.
func (f codeFence) closingFenceLength(line []byte) int {
	n := 0
	for n < len(line) && line[n] == f.char {
		n++
	}
	if n < f.n {
		return 0
	}
	for _, c := range line[n:] {
		if c != ' ' && c != '\t' {
			return 0
		}
	}
	return n
}

// parseFencedCodeBlock parses a fenced code block
// whose opening fence starts at offset off of lines[0].
// An unterminated block extends to the last line.
func (p *blockParser) parseFencedCodeBlock(lines []line, off int, f codeFence) (*Block, int) {
	first := lines[0]
	base := first.start + off
	b := newBlock(FencedCodeBlockKind, Span{Start: first.start, End: first.eol})
	b.markers = []Span{{Start: base, End: base + f.n}}
	lang := ""
	if f.infoStart < f.infoEnd {
		b.info = Span{Start: base + f.infoStart, End: base + f.infoEnd}
		lang = string(spanSlice(p.source, b.info))
	}

	n := 1
	for ; n < len(lines); n++ {
		l := lines[n]
		b.span.End = l.eol
		text := p.text(l)
		_, indentEnd := measureIndent(text)
		if closeLen := f.closingFenceLength(text[indentEnd:]); closeLen > 0 {
			start := l.start + indentEnd
			b.markers = append(b.markers, Span{Start: start, End: start + closeLen})
			n++
			break
		}
		for _, inline := range p.tokenizeLine(lang, l) {
			b.children = append(b.children, inline.AsNode())
		}
	}
	return b, n
}

// tokenizeLine runs the parser's tokenizer on a line of code.
// Tokenizer errors and panics are logged and produce no tokens.
func (p *blockParser) tokenizeLine(lang string, l line) (nodes []*Inline) {
	if p.tokenizer == nil || l.start == l.end {
		return nil
	}
	text := p.text(l)
	defer func() {
		if v := recover(); v != nil {
			p.logger.LogAttrs(context.Background(), slog.LevelWarn, "Tokenizer panicked",
				slog.String("lang", lang),
				slog.Int("offset", l.start),
				slog.String("panic", fmt.Sprint(v)))
			nodes = nil
		}
	}()
	tokens, err := p.tokenizer.Tokenize(lang, text)
	if err != nil {
		p.logger.LogAttrs(context.Background(), slog.LevelWarn, "Tokenizer failed",
			slog.String("lang", lang),
			slog.Int("offset", l.start),
			slog.String("error", err.Error()))
		return nil
	}
	return foreignInlines(l.start, len(text), tokens)
}

// foreignInlines converts tokens to [ForeignKind] nodes.
// Spans are clamped to the line.
// Empty and unnamed tokens are dropped,
// as are tokens that cross an earlier token.
func foreignInlines(offset, lineLen int, tokens []Token) []*Inline {
	clamped := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		tok.Span.Start = min(max(tok.Span.Start, 0), lineLen)
		tok.Span.End = min(max(tok.Span.End, tok.Span.Start), lineLen)
		if tok.Name == "" || tok.Span.IsEmpty() {
			continue
		}
		clamped = append(clamped, tok)
	}
	sort.SliceStable(clamped, func(i, j int) bool {
		if clamped[i].Span.Start != clamped[j].Span.Start {
			return clamped[i].Span.Start < clamped[j].Span.Start
		}
		return clamped[i].Span.End > clamped[j].Span.End
	})

	var nodes []*Inline
	var kept []Span
	for _, tok := range clamped {
		ok := true
		for _, prev := range kept {
			if prev.crosses(tok.Span) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		kept = append(kept, tok.Span)
		nodes = append(nodes, &Inline{
			kind:  ForeignKind,
			span:  Span{Start: offset + tok.Span.Start, End: offset + tok.Span.End},
			scope: tok.Name,
		})
	}
	return nodes
}
