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

import "fmt"

// A Span is a half-open range of byte offsets into a document's source.
// The zero value is an empty span at the beginning of the document.
type Span struct {
	Start int
	End   int
}

// NullSpan returns an invalid span.
func NullSpan() Span {
	return Span{Start: -1, End: -1}
}

// IsValid reports whether the span has non-negative bounds
// and does not end before it starts.
func (span Span) IsValid() bool {
	return span.Start >= 0 && span.End >= span.Start
}

// Len returns the number of bytes covered by the span.
// Len returns 0 for invalid spans.
func (span Span) Len() int {
	if !span.IsValid() {
		return 0
	}
	return span.End - span.Start
}

// IsEmpty reports whether the span covers zero bytes.
func (span Span) IsEmpty() bool {
	return span.Start == span.End
}

// Contains reports whether other lies entirely within span.
// Invalid spans contain nothing and are contained by nothing.
func (span Span) Contains(other Span) bool {
	if !span.IsValid() || !other.IsValid() {
		return false
	}
	return span.Start <= other.Start && other.End <= span.End
}

// Intersects reports whether the two spans share at least one byte.
// An empty span is treated as the point at its start,
// so it intersects any span that covers the byte at that offset.
func (span Span) Intersects(other Span) bool {
	if !span.IsValid() || !other.IsValid() {
		return false
	}
	switch {
	case span.IsEmpty() && other.IsEmpty():
		return span.Start == other.Start
	case span.IsEmpty():
		return other.Start <= span.Start && span.Start < other.End
	case other.IsEmpty():
		return span.Start <= other.Start && other.Start < span.End
	default:
		return span.Start < other.End && other.Start < span.End
	}
}

// String formats the span as "[Start,End)".
func (span Span) String() string {
	return fmt.Sprintf("[%d,%d)", span.Start, span.End)
}

// crosses reports whether the spans partially overlap,
// that is, they intersect but neither contains the other.
func (span Span) crosses(other Span) bool {
	return span.Start < other.End && other.Start < span.End &&
		!span.Contains(other) && !other.Contains(span)
}

func spanSlice(b []byte, span Span) []byte {
	return b[span.Start:span.End]
}
