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

	"golang.org/x/text/cases"
)

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.30/#matches
type ReferenceMap map[string]LinkDefinition

// MatchReference reports whether the normalized label appears in the map.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

// Extract adds any link reference definitions contained in node to the map.
// In case of conflicts,
// Extract will not replace any existing definitions in the map
// and will use the first definition in source order.
func (m ReferenceMap) Extract(source []byte, node Node) {
	Walk(node, &WalkOptions{
		Pre: func(c *Cursor) bool {
			block := c.Node().Block()
			if block == nil {
				return false
			}
			if block.Kind() != LinkReferenceDefinitionKind {
				return true
			}
			var label string
			var def LinkDefinition
			for i := 0; i < block.ChildCount(); i++ {
				child := block.Child(i).Inline()
				switch child.Kind() {
				case LinkLabelKind:
					label = NormalizeLinkLabel(child.Text(source))
				case LinkDestinationKind:
					def.Destination = child.Text(source)
				case LinkTitleKind:
					def.Title = child.Text(source)
					def.TitlePresent = true
				}
			}
			if _, exists := m[label]; label != "" && !exists {
				m[label] = def
			}
			return false
		},
	})
}

var labelFolder = cases.Fold()

// NormalizeLinkLabel returns the canonical form of a link label:
// surrounding whitespace is trimmed, internal whitespace is collapsed,
// and case is folded.
func NormalizeLinkLabel(label string) string {
	return labelFolder.String(strings.Join(strings.Fields(label), " "))
}

// parseLinkReferenceDefinition attempts to parse a single-line
// [link reference definition] whose first non-space character
// is at offset off of l.
// It returns nil if the line is not a definition.
//
// [link reference definition]: https://spec.commonmark.org/0.30/#link-reference-definition
func (p *blockParser) parseLinkReferenceDefinition(l line, off int) *Block {
	s, end := p.source, l.end
	i := l.start + off
	if i >= end || s[i] != '[' {
		return nil
	}
	labelEnd := i + 1
	for ; labelEnd < end && s[labelEnd] != ']'; labelEnd++ {
		switch s[labelEnd] {
		case '[':
			return nil
		case '\\':
			if labelEnd+1 < end && isASCIIPunctuation(s[labelEnd+1]) {
				labelEnd++
			}
		}
	}
	if labelEnd+1 >= end || s[labelEnd+1] != ':' {
		return nil
	}
	label := Span{Start: i + 1, End: labelEnd}
	if isBlank(spanSlice(s, label)) {
		return nil
	}

	b := newBlock(LinkReferenceDefinitionKind, Span{Start: i, End: labelEnd + 2})
	b.markers = []Span{
		{Start: i, End: i + 1},
		{Start: labelEnd, End: labelEnd + 1},
		{Start: labelEnd + 1, End: labelEnd + 2},
	}
	b.children = append(b.children, (&Inline{kind: LinkLabelKind, span: label}).AsNode())

	j := skipSpaceTab(s, labelEnd+2, end)
	dest, destEnd, ok := parseLinkDestination(s, j, end)
	if !ok || dest.node == nil {
		return nil
	}
	b.children = append(b.children, dest.node.AsNode())
	b.markers = append(b.markers, dest.markers...)
	b.span.End = destEnd

	j = skipSpaceTab(s, destEnd, end)
	if j < end && j > destEnd && strings.IndexByte(`"'(`, s[j]) >= 0 {
		title, titleEnd, ok := parseLinkTitle(s, j, end)
		if !ok {
			return nil
		}
		b.children = append(b.children, title.node.AsNode())
		b.markers = append(b.markers, title.markers...)
		b.span.End = titleEnd
		j = skipSpaceTab(s, titleEnd, end)
	}
	if j < end {
		return nil
	}
	return b
}
