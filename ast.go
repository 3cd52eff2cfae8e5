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

import "fmt"

// A Block is a structural element in a Markdown document,
// such as a paragraph, heading, or list.
// Block spans cover whole lines, including the line terminator,
// except where noted on [BlockKind].
type Block struct {
	kind     BlockKind
	span     Span
	level    int
	info     Span
	markers  []Span
	regions  []Span
	children []Node
}

// Kind returns the type of block node
// or zero if the node is nil.
func (b *Block) Kind() BlockKind {
	if b == nil {
		return 0
	}
	return b.kind
}

// Span returns the span of the block
// or an invalid span if the block is nil.
func (b *Block) Span() Span {
	if b == nil {
		return NullSpan()
	}
	return b.span
}

// Level returns the level of a heading (1-6)
// or the zero-based nesting depth of a list.
// It returns zero for all other blocks.
func (b *Block) Level() int {
	if b == nil {
		return 0
	}
	return b.level
}

// Info returns the span of the title of an ATX heading
// or the language tag of a fenced code block.
// It returns an invalid span if the block has neither.
func (b *Block) Info() Span {
	if b == nil {
		return NullSpan()
	}
	return b.info
}

func newBlock(kind BlockKind, span Span) *Block {
	return &Block{
		kind: kind,
		span: span,
		info: NullSpan(),
	}
}

// Markers returns the spans of the block's structural punctuation:
// heading marks, quote marks, list markers, code fences,
// and the brackets and quotes of a link reference definition.
func (b *Block) Markers() []Span {
	if b == nil {
		return nil
	}
	return b.markers
}

// Regions returns the spans of the runs of consecutive non-blank lines
// in a top-level [ListKind] block.
func (b *Block) Regions() []Span {
	if b == nil {
		return nil
	}
	return b.regions
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (b *Block) ChildCount() int {
	if b == nil {
		return 0
	}
	return len(b.children)
}

// Child returns the i'th child of the node.
func (b *Block) Child(i int) Node {
	return b.children[i]
}

// BlockKind is an enumeration of values returned by [*Block.Kind].
type BlockKind uint16

const (
	// ParagraphKind is used for runs of plain text lines.
	// Its children are inline nodes.
	ParagraphKind BlockKind = 1 + iota
	// ThematicBreakKind is a horizontal rule.
	ThematicBreakKind
	// ATXHeadingKind is a heading introduced by '#' marks.
	// Its children are the inline nodes of the title.
	ATXHeadingKind
	// SetextHeadingKind is a heading underlined by '=' or '-' characters.
	// Its span covers the text and the underline,
	// and its only marker is the underline run.
	// Its children are the inline nodes of the text.
	SetextHeadingKind
	// IndentedCodeBlockKind is a run of lines indented by four or more columns.
	// Trailing blank lines are not included.
	IndentedCodeBlockKind
	// FencedCodeBlockKind is a block delimited by code fences.
	// Its children are the [ForeignKind] tokens of its content lines.
	FencedCodeBlockKind
	// LinkReferenceDefinitionKind is a link reference definition.
	// Its span starts at the opening bracket
	// and ends after the last non-space character of the line.
	LinkReferenceDefinitionKind
	// BlockQuoteKind is a block quote.
	// Its children are the blocks parsed from its content.
	BlockQuoteKind
	// ListItemKind is a single list item.
	// Its children are paragraphs and nested lists.
	ListItemKind
	// ListKind is a sequence of list items.
	ListKind
	// HTMLBlockKind is a run of lines that starts with a block-level HTML tag
	// and ends with the line holding its matching closing tag.
	// Its children are the tags and text between them.
	// Text after the closing tag is resolved as inlines.
	HTMLBlockKind

	documentKind
)

// String returns the name of the kind.
func (kind BlockKind) String() string {
	switch kind {
	case ParagraphKind:
		return "Paragraph"
	case ThematicBreakKind:
		return "ThematicBreak"
	case ATXHeadingKind:
		return "ATXHeading"
	case SetextHeadingKind:
		return "SetextHeading"
	case IndentedCodeBlockKind:
		return "IndentedCodeBlock"
	case FencedCodeBlockKind:
		return "FencedCodeBlock"
	case LinkReferenceDefinitionKind:
		return "LinkReferenceDefinition"
	case BlockQuoteKind:
		return "BlockQuote"
	case ListItemKind:
		return "ListItem"
	case ListKind:
		return "List"
	case HTMLBlockKind:
		return "HTMLBlock"
	case documentKind:
		return "Document"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint16(kind))
	}
}
