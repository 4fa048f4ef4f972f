// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package source provides the source file abstraction shared by every stage
// of the compiler: immutable file contents plus the book-keeping needed to
// turn byte offsets into user-facing line and column numbers.
package source

import (
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the number of columns a tab advances to when computing
// column numbers.
const TabstopWidth = 4

// File is a Banjo source file.
//
// Files are immutable once created. A nil *File behaves like an empty file
// with the path name "".
type File struct {
	path, text string

	once sync.Once
	// Offsets of the first byte of each line. Given a byte offset, the line
	// containing it is recovered by binary search.
	lineIndex []int
}

// NewFile constructs a new source file.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path.
//
// It doesn't need to be a real filesystem path; it is only used for
// diagnostics.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text returns this file's textual contents.
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Span is a shorthand for creating a new Span.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{File: f, Start: start, End: end}
}

// Location builds full Location information for the given byte offset.
//
// Columns are measured in terminal columns: grapheme clusters are measured
// with their display width and tabs advance to the next tabstop.
//
// This operation is O(log n) in the number of lines.
func (f *File) Location(offset int) Location {
	if f == nil || offset <= 0 {
		return Location{Offset: 0, Line: 1, Column: 1}
	}
	offset = min(offset, len(f.text))

	lines := f.lines()
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}

	return Location{
		Offset: offset,
		Line:   line + 1,
		Column: Width(f.text[lines[line]:offset]) + 1,
	}
}

// Line returns the text of the given 1-indexed line, without its trailing
// newline.
func (f *File) Line(line int) string {
	lines := f.lines()
	if line < 1 || line > len(lines) {
		return ""
	}
	start := lines[line-1]
	end := len(f.text)
	if line < len(lines) {
		end = lines[line]
	}
	return strings.TrimRight(f.text[start:end], "\r\n")
}

// EOF returns a Span pointing just past the last non-whitespace rune.
func (f *File) EOF() Span {
	if f == nil {
		return Span{}
	}

	eof := strings.LastIndexFunc(f.Text(), func(r rune) bool {
		return !unicode.In(r, unicode.Pattern_White_Space)
	})
	if eof == -1 {
		return f.Span(0, 0)
	}
	_, size := utf8.DecodeRuneInString(f.text[eof:])
	return f.Span(eof+size, eof+size)
}

func (f *File) lines() []int {
	if f == nil {
		return []int{0}
	}

	f.once.Do(func() {
		f.lineIndex = append(f.lineIndex, 0)
		for i := range len(f.text) {
			if f.text[i] == '\n' {
				f.lineIndex = append(f.lineIndex, i+1)
			}
		}
	})
	return f.lineIndex
}

// Width returns the number of terminal columns text occupies, treating tabs
// as advancing to the next multiple of [TabstopWidth].
func Width(text string) int {
	column := 0
	for text != "" {
		tab := strings.IndexByte(text, '\t')
		chunk := text
		if tab >= 0 {
			chunk = text[:tab]
		}

		column += uniseg.StringWidth(chunk)
		if tab < 0 {
			break
		}
		column += TabstopWidth - column%TabstopWidth
		text = text[tab+1:]
	}
	return column
}
