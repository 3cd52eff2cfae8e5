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

// Package format writes human- and machine-readable dumps
// of scoped Markdown documents.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go4.org/bytereplacer"
	"zombiezen.com/go/mdscope"
)

// Scopes writes one line per scope in the document,
// indented by nesting depth.
// Each line has the scope's span, its name, and the quoted text it covers.
func Scopes(w io.Writer, doc *mdscope.Document) error {
	ww := &errWriter{w: w}
	source := doc.Source()
	var ends []int
	for _, s := range doc.Scopes() {
		for len(ends) > 0 && s.Span.Start >= ends[len(ends)-1] {
			ends = ends[:len(ends)-1]
		}
		ww.WriteString(strings.Repeat("  ", len(ends)))
		fmt.Fprintf(ww, "%v %s ", s.Span, s.Name)
		writeQuoted(ww, source[s.Span.Start:s.Span.End])
		ww.WriteString("\n")
		ends = append(ends, s.Span.End)
	}
	return ww.err
}

// Stack writes the names of the scopes covering each of the given offsets,
// one offset per line, in the form "line:column name name...".
func Stack(w io.Writer, doc *mdscope.Document, offsets []int) error {
	ww := &errWriter{w: w}
	for _, off := range offsets {
		pos, err := doc.Position(off)
		if err != nil {
			return err
		}
		name, err := doc.ScopeName(off)
		if err != nil {
			return err
		}
		fmt.Fprintf(ww, "%v %s\n", pos, name)
	}
	return ww.err
}

// jsonScope is the JSON representation of a [mdscope.Scope].
type jsonScope struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// JSON writes the document's scopes as a JSON array of objects
// with "name", "start", "end", and "text" fields.
func JSON(w io.Writer, doc *mdscope.Document) error {
	source := doc.Source()
	scopes := doc.Scopes()
	out := make([]jsonScope, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, jsonScope{
			Name:  s.Name,
			Start: s.Span.Start,
			End:   s.Span.End,
			Text:  string(source[s.Span.Start:s.Span.End]),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write scopes as json: %w", err)
	}
	return nil
}

// Tree writes the block and inline structure rooted at root,
// one node per line, indented by depth.
func Tree(w io.Writer, source []byte, root *mdscope.Block) error {
	ww := &errWriter{w: w}
	mdscope.Walk(root.AsNode(), &mdscope.WalkOptions{
		Pre: func(c *mdscope.Cursor) bool {
			ww.WriteString(strings.Repeat("  ", c.Depth()))
			n := c.Node()
			if b := n.Block(); b != nil {
				ww.WriteString(b.Kind().String())
				if lvl := b.Level(); lvl > 0 {
					fmt.Fprintf(ww, "(%d)", lvl)
				}
			} else {
				ww.WriteString(n.Inline().Kind().String())
			}
			fmt.Fprintf(ww, " %v", n.Span())
			if n.Block() == nil || n.ChildCount() == 0 {
				ww.WriteString(" ")
				writeQuoted(ww, source[n.Span().Start:n.Span().End])
			}
			ww.WriteString("\n")
			return ww.err == nil
		},
	})
	return ww.err
}

var quoteReplacer = bytereplacer.New(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// writeQuoted writes text in double quotes
// with control characters escaped so that each scope stays on one line.
func writeQuoted(w io.Writer, text []byte) {
	io.WriteString(w, `"`)
	w.Write(quoteReplacer.Replace(append([]byte(nil), text...)))
	io.WriteString(w, `"`)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = w.w.Write(p)
	return n, w.err
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	return n, w.err
}
