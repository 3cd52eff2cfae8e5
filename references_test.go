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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeLinkLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"foo", "foo"},
		{"  Foo \t Bar\n", "foo bar"},
		{"ΑΓΩ", "αγω"},
		{"", ""},
	}
	for _, test := range tests {
		if got := NormalizeLinkLabel(test.label); got != test.want {
			t.Errorf("NormalizeLinkLabel(%q) = %q; want %q", test.label, got, test.want)
		}
	}
}

func TestExtractReferences(t *testing.T) {
	const source = "[A]: B \"C\"\n" +
		"[D]:<E> 'F'\n" +
		"  [K]: L (M)  \n" +
		"[a]: ignored\n" +
		"\n" +
		"> [N]: O\n"
	root := ParseTree([]byte(source))
	got := make(ReferenceMap)
	got.Extract([]byte(source), root.AsNode())
	want := ReferenceMap{
		"a": {Destination: "B", Title: "C", TitlePresent: true},
		"d": {Destination: "E", Title: "F", TitlePresent: true},
		"k": {Destination: "L", Title: "M", TitlePresent: true},
		"n": {Destination: "O"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("references (-want +got):\n%s", diff)
	}
	if !got.MatchReference("k") {
		t.Error(`MatchReference("k") = false; want true`)
	}
	if got.MatchReference("z") {
		t.Error(`MatchReference("z") = true; want false`)
	}
}

func TestLookupReference(t *testing.T) {
	doc := Parse([]byte("[Foo  Bar]: /url\n\n[foo bar][]\n"))
	def, ok := doc.LookupReference("FOO BAR")
	if !ok || def.Destination != "/url" || def.TitlePresent {
		t.Errorf("LookupReference(\"FOO BAR\") = %+v, %t; want {Destination:/url}, true", def, ok)
	}
	if _, ok := doc.LookupReference("baz"); ok {
		t.Error(`LookupReference("baz") found a definition`)
	}
}

func TestParseLinkReferenceDefinitionRejects(t *testing.T) {
	tests := []string{
		"[]: B",
		"[A] : B",
		"[A]:",
		"[A]: B C",
		"[A]: B \"C",
		"[A[B]: C",
	}
	for _, source := range tests {
		root := ParseTree([]byte(source))
		for i := 0; i < root.ChildCount(); i++ {
			if b := root.Child(i).Block(); b != nil && b.Kind() == LinkReferenceDefinitionKind {
				t.Errorf("ParseTree(%q) contains a link reference definition", source)
			}
		}
	}
}
