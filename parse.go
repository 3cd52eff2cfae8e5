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

// Package mdscope assigns semantic scopes to Markdown text
// for syntax highlighting.
//
// [Parse] splits a document into blocks, resolves the inline markup
// of each block, and records the result as a flat list of [Scope] values
// that nest without crossing.
// The resulting [Document] answers containment queries
// like [*Document.InScope] and [*Document.ScopesAt].
package mdscope

import (
	"bytes"
	"context"
	"io"
	"log/slog"
)

// Parser holds the configuration for parsing documents.
// The zero value parses with no embedded-language highlighting.
// A Parser may be used from multiple goroutines simultaneously.
type Parser struct {
	// Tokenizer assigns scopes to the content of fenced code blocks.
	// If nil, fenced code is left unscoped.
	Tokenizer Tokenizer
	// Logger receives warnings about tokenizer failures
	// and a debug summary of each parse.
	// If nil, nothing is logged.
	Logger *slog.Logger
}

// Parse parses source with the zero [Parser].
func Parse(source []byte) *Document {
	return new(Parser).Parse(source)
}

// Parse assigns scopes to source.
// Parsing never fails: any input produces a valid [Document].
func (p *Parser) Parse(source []byte) *Document {
	bp := p.newBlockParser(source)
	root := bp.parse()
	refs := make(ReferenceMap)
	refs.Extract(source, root.AsNode())
	doc := newDocument(source, emitScopes(source, root), refs)
	bp.logger.LogAttrs(context.Background(), slog.LevelDebug, "Parsed document",
		slog.Int("bytes", len(source)),
		slog.Int("lines", len(doc.lines)),
		slog.Int("blocks", root.ChildCount()),
		slog.Int("scopes", len(doc.scopes)),
		slog.Int("references", len(refs)))
	return doc
}

// ParseTree returns the block tree for source
// from which a [Document]'s scopes are derived.
func (p *Parser) ParseTree(source []byte) *Block {
	return p.newBlockParser(source).parse()
}

// ParseTree returns the block tree for source using the zero [Parser].
func ParseTree(source []byte) *Block {
	return new(Parser).ParseTree(source)
}

func (p *Parser) newBlockParser(source []byte) *blockParser {
	if bytes.IndexByte(source, 0) >= 0 {
		// Contains one or more NUL bytes.
		// Replace with spaces to keep offsets stable.
		source = bytes.ReplaceAll(source, []byte{0}, []byte{' '})
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &blockParser{
		source:    source,
		tokenizer: p.Tokenizer,
		logger:    logger,
	}
}
