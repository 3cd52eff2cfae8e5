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

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(docPath, []byte("```lisp\n(defun f)\n```\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	lexersPath := filepath.Join(dir, "lexers.yaml")
	const lexersYAML = `
- name: lisp
  keywords:
    storage.type: [defun]
`
	if err := os.WriteFile(lexersPath, []byte(lexersYAML), 0o666); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		args       []string
		stdin      string
		wantCode   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "Stdin",
			stdin:      "*a*",
			wantStdout: []string{"[0,3) markup.italic \"*a*\""},
		},
		{
			name:       "JSON",
			args:       []string{"-format=json"},
			stdin:      "*a*",
			wantStdout: []string{`"name": "markup.italic"`, `"text": "*a*"`},
		},
		{
			name:       "Tree",
			args:       []string{"-format=tree"},
			stdin:      "*a*",
			wantStdout: []string{"Document [0,3)", "Emphasis [0,3)"},
		},
		{
			name:       "At",
			args:       []string{"-at=1"},
			stdin:      "*a*",
			wantStdout: []string{"1:2 text.html.markdown markup.italic\n"},
		},
		{
			name:       "Lexers",
			args:       []string{"-lexers=" + lexersPath, docPath},
			wantStdout: []string{"storage.type \"defun\""},
		},
		{
			name:       "LexersNotFound",
			args:       []string{"-lexers=" + filepath.Join(dir, "nope.yaml"), docPath},
			wantCode:   1,
			wantStderr: []string{"nope.yaml"},
		},
		{
			name:       "Verbose",
			args:       []string{"-v"},
			stdin:      "x",
			wantStderr: []string{"Parsed document"},
		},
		{
			name:       "UnknownFormat",
			args:       []string{"-format=xml"},
			stdin:      "x",
			wantCode:   1,
			wantStderr: []string{"unknown format"},
		},
		{
			name:       "MissingFile",
			args:       []string{filepath.Join(dir, "nope.md")},
			wantCode:   1,
			wantStderr: []string{"mdscope failed"},
		},
		{
			name:     "BadFlag",
			args:     []string{"-bork"},
			wantCode: 2,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			stdout := new(strings.Builder)
			stderr := new(strings.Builder)
			code := run(context.Background(), test.args, strings.NewReader(test.stdin), stdout, stderr)
			if code != test.wantCode {
				t.Errorf("exit code = %d; want %d\nstderr:\n%s", code, test.wantCode, stderr)
			}
			for _, want := range test.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout = %q; want to contain %q", stdout, want)
				}
			}
			for _, want := range test.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr = %q; want to contain %q", stderr, want)
				}
			}
		})
	}
}

func TestRunMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	var args []string
	for _, name := range []string{"a.md", "b.md"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("# "+name+"\n"), 0o666); err != nil {
			t.Fatal(err)
		}
		args = append(args, path)
	}
	stdout := new(strings.Builder)
	if code := run(context.Background(), args, strings.NewReader(""), stdout, new(strings.Builder)); code != 0 {
		t.Fatalf("exit code = %d; want 0", code)
	}
	for _, want := range []string{"==> " + args[0] + " <==", "==> " + args[1] + " <==", `entity.name.section "b.md"`} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout = %q; want to contain %q", stdout, want)
		}
	}
}
