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

import "strconv"

// Scope names assigned to Markdown constructs.
const (
	scopeHeadingPrefix     = "markup.heading."
	scopeHeadingTitle      = "entity.name.section"
	scopeSeparator         = "meta.separator"
	scopeQuote             = "markup.quote"
	scopeList              = "meta.paragraph.list"
	scopeRawBlock          = "markup.raw.block"
	scopeFencedBlock       = "markup.raw.block.fenced"
	scopeFenceLanguage     = "fenced_code.block.language"
	scopeReferenceDef      = "meta.link.reference.def"
	scopeItalic            = "markup.italic"
	scopeBold              = "markup.bold"
	scopeStrikethrough     = "markup.strikethrough"
	scopeRawInline         = "markup.raw.inline.markdown"
	scopeRawInlineContent  = "markup.raw.inline.content"
	scopeInlineLink        = "meta.link.inline"
	scopeInlineImage       = "meta.image.inline"
	scopeReferenceLink     = "meta.link.reference"
	scopeReferenceImage    = "meta.image.reference"
	scopeLinkText          = "string.other.link.title"
	scopeLinkTitle         = "string.other.link.description.title"
	scopeReferenceLabel    = "constant.other.reference.link"
	scopeLinkURL           = "markup.underline.link"
	scopeURLAutolink       = "meta.link.inet"
	scopeEmailAutolink     = "meta.link.email"
	scopeTag               = "meta.tag"
	scopeComment           = "comment.block.html"
	scopeCharacterEntity   = "constant.character.entity.html"
	punctuationHeading     = "punctuation.definition.heading"
	punctuationQuote       = "punctuation.definition.blockquote"
	punctuationListItem    = "punctuation.definition.list_item"
	punctuationRaw         = "punctuation.definition.raw"
	punctuationItalic      = "punctuation.definition.italic"
	punctuationBold        = "punctuation.definition.bold"
	punctuationStrike      = "punctuation.definition.strikethrough"
	punctuationLink        = "punctuation.definition.link"
	punctuationString      = "punctuation.definition.string"
	punctuationConstant    = "punctuation.definition.constant"
	punctuationKeyValueSep = "punctuation.separator.key-value"
)

// scopeEmitter converts a block tree into a flat list of scopes.
type scopeEmitter struct {
	source []byte
	scopes []Scope
}

// emitScopes returns the scopes of the tree rooted at root,
// in pre-order: every scope comes after the scopes that contain it.
// The first scope is always the root scope.
func emitScopes(source []byte, root *Block) []Scope {
	e := &scopeEmitter{
		source: source,
		scopes: []Scope{{Name: RootScope, Span: Span{Start: 0, End: len(source)}}},
	}
	Walk(root.AsNode(), &WalkOptions{
		Pre: func(c *Cursor) bool {
			if b := c.Node().Block(); b != nil {
				e.block(b)
			} else {
				e.inline(c.Node().Inline(), c.Parent())
			}
			return true
		},
	})
	return e.scopes
}

func (e *scopeEmitter) add(name string, span Span) {
	if span.IsValid() && !span.IsEmpty() {
		e.scopes = append(e.scopes, Scope{Name: name, Span: span})
	}
}

func (e *scopeEmitter) addAll(name string, spans []Span) {
	for _, span := range spans {
		e.add(name, span)
	}
}

func (e *scopeEmitter) block(b *Block) {
	switch b.Kind() {
	case ThematicBreakKind:
		e.add(scopeSeparator, b.Span())
	case ATXHeadingKind:
		e.add(scopeHeadingPrefix+strconv.Itoa(b.Level()), b.Span())
		e.addAll(punctuationHeading, b.Markers())
		e.add(scopeHeadingTitle, b.Info())
	case SetextHeadingKind:
		e.addAll(scopeHeadingPrefix+strconv.Itoa(b.Level()), b.Markers())
	case IndentedCodeBlockKind:
		e.add(scopeRawBlock, b.Span())
	case FencedCodeBlockKind:
		e.add(scopeFencedBlock, b.Span())
		e.addAll(punctuationRaw, b.Markers())
		e.add(scopeFenceLanguage, b.Info())
	case LinkReferenceDefinitionKind:
		e.add(scopeReferenceDef, b.Span())
		for _, m := range b.Markers() {
			e.add(referencePunctuation(e.source[m.Start]), m)
		}
	case BlockQuoteKind:
		e.add(scopeQuote, b.Span())
		e.addAll(punctuationQuote, b.Markers())
	case ListKind:
		e.addAll(scopeList, b.Regions())
	case ListItemKind:
		e.addAll(punctuationListItem, b.Markers())
	}
}

func (e *scopeEmitter) inline(inline *Inline, parent Node) {
	switch inline.Kind() {
	case EmphasisKind:
		e.add(scopeItalic, inline.Span())
		e.addAll(punctuationItalic, inline.Markers())
	case StrongKind:
		e.add(scopeBold, inline.Span())
		e.addAll(punctuationBold, inline.Markers())
	case StrongEmphasisKind:
		e.add(scopeBold, inline.Span())
		e.add(scopeItalic, inline.Span())
		e.addAll(punctuationBold, inline.Markers())
	case StrikethroughKind:
		e.add(scopeStrikethrough, inline.Span())
		e.addAll(punctuationStrike, inline.Markers())
	case CodeSpanKind:
		e.add(scopeRawInline, inline.Span())
		e.addAll(punctuationRaw, inline.Markers())
	case CodeContentKind:
		e.add(scopeRawInlineContent, inline.Span())
	case InlineLinkKind, InlineImageKind, ReferenceLinkKind, ReferenceImageKind:
		e.add(linkScopes[inline.Kind()], inline.Span())
		for _, m := range inline.Markers() {
			e.add(linkPunctuation(e.source[m.Start]), m)
		}
	case LinkTextKind:
		if isImplicitReference(parent.Inline()) {
			e.add(scopeReferenceLabel, inline.Span())
		} else {
			e.add(scopeLinkText, inline.Span())
		}
	case LinkDestinationKind:
		e.add(scopeLinkURL, inline.Span())
	case LinkTitleKind:
		e.add(scopeLinkTitle, inline.Span())
	case LinkLabelKind:
		e.add(scopeReferenceLabel, inline.Span())
	case URLAutolinkKind:
		e.add(scopeURLAutolink, inline.Span())
		e.addAll(punctuationLink, inline.Markers())
	case EmailAutolinkKind:
		e.add(scopeEmailAutolink, inline.Span())
		e.addAll(punctuationLink, inline.Markers())
	case RawHTMLKind:
		e.add(scopeTag, inline.Span())
	case HTMLCommentKind:
		e.add(scopeComment, inline.Span())
	case CharacterReferenceKind:
		e.add(scopeCharacterEntity, inline.Span())
	case ForeignKind:
		e.add(inline.Scope(), inline.Span())
	}
}

var linkScopes = map[InlineKind]string{
	InlineLinkKind:     scopeInlineLink,
	InlineImageKind:    scopeInlineImage,
	ReferenceLinkKind:  scopeReferenceLink,
	ReferenceImageKind: scopeReferenceImage,
}

// isImplicitReference reports whether inline is a reference link or image
// of the form "[text][]", whose text doubles as its label.
func isImplicitReference(inline *Inline) bool {
	if k := inline.Kind(); k != ReferenceLinkKind && k != ReferenceImageKind {
		return false
	}
	for i := 0; i < inline.ChildCount(); i++ {
		if inline.Child(i).Kind() == LinkLabelKind {
			return false
		}
	}
	return true
}

func linkPunctuation(c byte) string {
	if c == '"' || c == '\'' {
		return punctuationString
	}
	return punctuationLink
}

func referencePunctuation(c byte) string {
	switch c {
	case '[', ']':
		return punctuationConstant
	case ':':
		return punctuationKeyValueSep
	case '<', '>':
		return punctuationLink
	default:
		return punctuationString
	}
}
