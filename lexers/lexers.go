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

// Package lexers provides data-driven keyword lexers
// for highlighting fenced code blocks.
package lexers

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"zombiezen.com/go/mdscope"
)

// Scope names assigned by every lexer.
const (
	ScopeNumber   = "constant.numeric"
	ScopeString   = "string.quoted"
	ScopeComment  = "comment.line"
	ScopeFunction = "entity.name.function"
)

// Definition describes a keyword lexer.
type Definition struct {
	// Name is the language tag that selects the lexer.
	Name string `yaml:"name"`
	// Aliases are other language tags that select the lexer.
	Aliases []string `yaml:"aliases"`
	// Keywords maps scope names to the words that receive them.
	Keywords map[string][]string `yaml:"keywords"`
	// Functions are the keywords that are followed by a function name.
	Functions []string `yaml:"functions"`
	// LineComment starts a comment that runs to the end of the line.
	LineComment string `yaml:"line_comment"`
	// Quotes is the set of characters that delimit strings.
	Quotes string `yaml:"quotes"`
}

type lexer struct {
	keywords    map[string]string
	functions   map[string]bool
	lineComment string
	quotes      string
}

//go:embed builtin.yaml
var builtinYAML string

// Registry maps language tags to lexers.
// It implements [mdscope.Tokenizer].
// The zero value is an empty registry.
// Methods are safe to call from multiple goroutines.
type Registry struct {
	mu     sync.RWMutex
	lexers map[string]*lexer
}

// Builtin returns a new registry with lexers for
// C, C++, Python, Go, JavaScript, and shell.
func Builtin() *Registry {
	r := new(Registry)
	if err := r.Load(strings.NewReader(builtinYAML)); err != nil {
		panic(err)
	}
	return r
}

// Load reads a YAML list of [Definition] values and adds them to the registry.
// Definitions replace any existing lexers with the same name or alias.
func (r *Registry) Load(rd io.Reader) error {
	var defs []Definition
	if err := yaml.NewDecoder(rd).Decode(&defs); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("load lexers: %w", err)
	}
	for _, def := range defs {
		if err := r.Add(def); err != nil {
			return fmt.Errorf("load lexers: %w", err)
		}
	}
	return nil
}

// Add adds a lexer to the registry.
func (r *Registry) Add(def Definition) error {
	if def.Name == "" {
		return errors.New("lexer definition missing name")
	}
	lx := &lexer{
		keywords:    make(map[string]string),
		functions:   make(map[string]bool),
		lineComment: def.LineComment,
		quotes:      def.Quotes,
	}
	for scope, words := range def.Keywords {
		if scope == "" {
			return fmt.Errorf("lexer %s: empty scope name", def.Name)
		}
		for _, w := range words {
			lx.keywords[w] = scope
		}
	}
	for _, w := range def.Functions {
		lx.functions[w] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lexers == nil {
		r.lexers = make(map[string]*lexer)
	}
	r.lexers[strings.ToLower(def.Name)] = lx
	for _, alias := range def.Aliases {
		r.lexers[strings.ToLower(alias)] = lx
	}
	return nil
}

// Languages returns the number of language tags the registry recognizes.
func (r *Registry) Languages() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lexers)
}

// Tokenize returns the tokens of a line of code in the given language.
// Unknown languages produce no tokens.
func (r *Registry) Tokenize(lang string, line []byte) ([]mdscope.Token, error) {
	r.mu.RLock()
	lx := r.lexers[strings.ToLower(lang)]
	r.mu.RUnlock()
	if lx == nil {
		return nil, nil
	}
	return lx.tokenize(line), nil
}

func (lx *lexer) tokenize(line []byte) []mdscope.Token {
	var tokens []mdscope.Token
	add := func(name string, start, end int) {
		tokens = append(tokens, mdscope.Token{
			Span: mdscope.Span{Start: start, End: end},
			Name: name,
		})
	}
	expectFunction := false
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case lx.lineComment != "" && strings.HasPrefix(string(line[i:]), lx.lineComment):
			add(ScopeComment, i, len(line))
			return tokens
		case strings.IndexByte(lx.quotes, c) >= 0:
			end := scanString(line, i)
			add(ScopeString, i, end)
			i = end
			expectFunction = false
		case isDigit(c):
			end := i + 1
			for end < len(line) && (isIdentByte(line[end]) || line[end] == '.') {
				end++
			}
			add(ScopeNumber, i, end)
			i = end
			expectFunction = false
		case isIdentStart(c):
			end := i + 1
			for end < len(line) && isIdentByte(line[end]) {
				end++
			}
			word := string(line[i:end])
			switch {
			case expectFunction:
				add(ScopeFunction, i, end)
				expectFunction = false
			case lx.keywords[word] != "":
				add(lx.keywords[word], i, end)
				expectFunction = lx.functions[word]
			}
			i = end
		case c == ' ' || c == '\t':
			i++
		default:
			i++
			expectFunction = false
		}
	}
	return tokens
}

// scanString returns the end of the string literal starting at line[start].
// Unterminated strings run to the end of the line.
func scanString(line []byte, start int) int {
	quote := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(line)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isIdentByte(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
