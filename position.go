// Copyright 2024 Ross Light
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
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line and byte column in a document.
type Position struct {
	Line   int
	Column int
}

func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.Line+1, pos.Column+1)
}

// lineIndex records the byte offset at which each line begins.
type lineIndex []int

func newLineIndex(source []byte) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\n':
			idx = append(idx, i+1)
		case '\r':
			if i+1 < len(source) && source[i+1] == '\n' {
				i++
			}
			idx = append(idx, i+1)
		}
	}
	return idx
}

// line returns the zero-based line that contains offset.
func (idx lineIndex) line(offset int) int {
	return sort.Search(len(idx), func(i int) bool { return idx[i] > offset }) - 1
}

// Position converts a byte offset into a line and column.
// The offset may be equal to the length of the source.
func (doc *Document) Position(offset int) (Position, error) {
	if offset < 0 || offset > len(doc.source) {
		return Position{}, fmt.Errorf("position of offset %d: %w", offset, ErrOutOfRange)
	}
	line := doc.lines.line(offset)
	return Position{Line: line, Column: offset - doc.lines[line]}, nil
}

// Offset converts a line and column into a byte offset.
// The column may point at the line terminator,
// but not past it.
func (doc *Document) Offset(pos Position) (int, error) {
	if pos.Line < 0 || pos.Line >= len(doc.lines) || pos.Column < 0 {
		return -1, fmt.Errorf("offset of %v: %w", pos, ErrOutOfRange)
	}
	end := len(doc.source)
	if pos.Line+1 < len(doc.lines) {
		end = doc.lines[pos.Line+1]
		if doc.source[end-1] == '\n' {
			end--
		}
		if end > doc.lines[pos.Line] && doc.source[end-1] == '\r' {
			end--
		}
	}
	offset := doc.lines[pos.Line] + pos.Column
	if offset > end {
		return -1, fmt.Errorf("offset of %v: %w", pos, ErrOutOfRange)
	}
	return offset, nil
}

// UTF16Offset converts a byte offset into the number of UTF-16 code units
// that precede it, for hosts that address text in UTF-16.
// Invalid UTF-8 bytes count as one code unit each.
func (doc *Document) UTF16Offset(offset int) (int, error) {
	if offset < 0 || offset > len(doc.source) {
		return -1, fmt.Errorf("utf-16 offset of %d: %w", offset, ErrOutOfRange)
	}
	n := 0
	for i := 0; i < offset; {
		c, size := utf8.DecodeRune(doc.source[i:])
		if i+size > offset {
			return -1, fmt.Errorf("utf-16 offset of %d: inside a character: %w", offset, ErrOutOfRange)
		}
		if c >= 0x10000 {
			n += 2
		} else {
			n++
		}
		i += size
	}
	return n, nil
}

// OffsetFromUTF16 converts a count of UTF-16 code units into a byte offset.
// It is the inverse of [*Document.UTF16Offset].
func (doc *Document) OffsetFromUTF16(units int) (int, error) {
	if units < 0 {
		return -1, fmt.Errorf("byte offset of utf-16 offset %d: %w", units, ErrOutOfRange)
	}
	n := 0
	for i := 0; ; {
		if n == units {
			return i, nil
		}
		if n > units || i >= len(doc.source) {
			return -1, fmt.Errorf("byte offset of utf-16 offset %d: %w", units, ErrOutOfRange)
		}
		c, size := utf8.DecodeRune(doc.source[i:])
		if c >= 0x10000 {
			n += 2
		} else {
			n++
		}
		i += size
	}
}
