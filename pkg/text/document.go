// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoMatchFound is returned when a locator does not match the document.
	ErrNoMatchFound = errors.Base("no match found")

	// ErrUnterminatedRegion is returned when a start marker is found but no end marker follows it.
	ErrUnterminatedRegion = errors.Base("unterminated region")

	// ErrEmptyLocator is returned for a literal or marker with no text.
	ErrEmptyLocator = errors.Base("empty locator")
)

// 📄 Document is the full text of a file at a point in time.
// Every replacement returns a new Document; the receiver is never changed.
type Document string

// String returns the document text
func (d Document) String() string {
	return string(d)
}

// Len returns the document length in bytes
func (d Document) Len() int {
	return len(d)
}

// 📍 Region is a half-open byte span [Start, End) of a document
type Region struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the region
func (r Region) Len() int {
	return r.End - r.Start
}

// 🔍 Locator finds the region of a document to replace
type Locator interface {
	// Locate returns the first region matched in doc
	Locate(doc Document) (Region, error)

	// String describes the locator for log output
	String() string
}

// 🔤 Literal locates the first exact occurrence of Target
type Literal struct {
	Target string
}

var _ Locator = Literal{}

// Locate implements Locator.Locate
func (l Literal) Locate(doc Document) (Region, error) {
	if l.Target == "" {
		return Region{}, errors.Errorf("literal target: %w", ErrEmptyLocator)
	}

	idx := strings.Index(string(doc), l.Target)
	if idx < 0 {
		return Region{}, errors.Errorf("literal %s: %w", preview(l.Target), ErrNoMatchFound)
	}

	return Region{Start: idx, End: idx + len(l.Target)}, nil
}

func (l Literal) String() string {
	return "literal " + preview(l.Target)
}

// 🧱 Delimited locates the span from the first Start marker through the
// nearest End marker after it, both markers included. The End marker is
// searched only past the end of the Start marker, so the two never overlap.
type Delimited struct {
	Start string
	End   string
}

var _ Locator = Delimited{}

// Locate implements Locator.Locate
func (d Delimited) Locate(doc Document) (Region, error) {
	if d.Start == "" {
		return Region{}, errors.Errorf("start marker: %w", ErrEmptyLocator)
	}
	if d.End == "" {
		return Region{}, errors.Errorf("end marker: %w", ErrEmptyLocator)
	}

	text := string(doc)

	start := strings.Index(text, d.Start)
	if start < 0 {
		return Region{}, errors.Errorf("start marker %s: %w", preview(d.Start), ErrNoMatchFound)
	}

	body := start + len(d.Start)
	end := strings.Index(text[body:], d.End)
	if end < 0 {
		return Region{}, errors.Errorf("end marker %s after offset %d: %w", preview(d.End), body, ErrUnterminatedRegion)
	}

	return Region{Start: start, End: body + end + len(d.End)}, nil
}

func (d Delimited) String() string {
	return fmt.Sprintf("region %s..%s", preview(d.Start), preview(d.End))
}

// 🔄 Replace substitutes the region located by loc with replacement
func Replace(doc Document, loc Locator, replacement string) (Document, error) {
	region, err := loc.Locate(doc)
	if err != nil {
		return doc, err
	}

	return Splice(doc, region, replacement), nil
}

// Splice returns a copy of doc with region replaced by replacement.
// The region must lie within doc.
func Splice(doc Document, region Region, replacement string) Document {
	var b strings.Builder
	b.Grow(doc.Len() - region.Len() + len(replacement))
	b.WriteString(string(doc[:region.Start]))
	b.WriteString(replacement)
	b.WriteString(string(doc[region.End:]))
	return Document(b.String())
}

// ReplaceLiteral replaces the first occurrence of target in doc
func ReplaceLiteral(doc Document, target, replacement string) (Document, error) {
	return Replace(doc, Literal{Target: target}, replacement)
}

// ReplacePattern replaces the span from startMarker through the nearest following endMarker
func ReplacePattern(doc Document, startMarker, endMarker, replacement string) (Document, error) {
	return Replace(doc, Delimited{Start: startMarker, End: endMarker}, replacement)
}

// preview quotes s for messages, cut to its first line
func preview(s string) string {
	const maxLen = 40
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "…"
	}
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen]) + "…"
	}
	return fmt.Sprintf("%q", s)
}
