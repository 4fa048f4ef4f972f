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

package ast

import (
	"strings"

	"github.com/bufbuild/banjocompile/source"
)

// Node is implemented by every node in the parse tree.
type Node interface {
	Span() source.Span
}

// Spanned is embedded in every node to record where it appears in source.
type Spanned struct {
	Loc source.Span
}

// Span implements [Node].
func (s Spanned) Span() source.Span {
	return s.Loc
}

// File is the root of the parse tree for one source file.
type File struct {
	Spanned
	Source *source.File

	// Attributes and doc comments preceding the library clause.
	Attributes *AttributeList
	Doc        *DocComment

	// May be nil if the file has no library clause.
	Library *LibraryDecl
	Usings  []*Using
	Decls   []Decl
}

// LibraryDecl is a `library a.b.c;` clause.
type LibraryDecl struct {
	Spanned
	Name *CompoundIdent
}

// Using is a `using a.b.c;` import, optionally renamed with `as`.
type Using struct {
	Spanned
	Name *CompoundIdent
	As   *Ident
}

// Ident is a single identifier.
type Ident struct {
	Spanned
	Name string
}

// CompoundIdent is a dotted sequence of identifiers such as `pkg.a.Point`.
type CompoundIdent struct {
	Spanned
	Parts []*Ident
}

// String returns the dotted name.
func (c *CompoundIdent) String() string {
	if c == nil {
		return ""
	}
	names := make([]string, len(c.Parts))
	for i, part := range c.Parts {
		names[i] = part.Name
	}
	return strings.Join(names, ".")
}

// Split splits this name into everything before the last dot and the last
// component. For a single identifier, prefix is empty.
func (c *CompoundIdent) Split() (prefix, last string) {
	name := c.String()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// AttributeList is a bracketed `[A, B = "x"]` list.
type AttributeList struct {
	Spanned
	Attributes []*Attribute
}

// Attribute is a single attribute. Value is nil when the attribute has no
// `= "..."` part.
type Attribute struct {
	Spanned
	Name  *Ident
	Value *StringLit
}

// DocComment is a run of consecutive `///` lines.
type DocComment struct {
	Spanned
	Lines []string
}

// Text returns the comment lines joined with newlines.
func (d *DocComment) Text() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Lines, "\n")
}

// Annotations holds the attributes and doc comments that may precede a
// declaration or member.
type Annotations struct {
	Attributes *AttributeList
	Doc        *DocComment
}
