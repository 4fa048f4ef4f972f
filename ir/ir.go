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

// Package ir contains the intermediate representation shared by lowering,
// linking, and the backends.
//
// Lowering produces one [Unit] per file, whose type references are
// unresolved. The linker merges units into an [AST], which stores the
// declarations of each library in a flat arena and replaces every reference
// with a [DeclID] into it. Once linking completes the AST must not be
// modified, so any number of backends may read it concurrently.
package ir

import (
	"github.com/tidwall/btree"

	"github.com/bufbuild/banjocompile/source"
)

// Unit is the lowered form of one source file.
type Unit struct {
	Source *source.File
	// The library this file contributes to.
	Library     string
	LibrarySpan source.Span
	// Attributes on the library clause.
	Attributes Attributes
	Imports    []Import
	Decls      []*Decl
}

// Path returns the path of the file this unit was lowered from.
func (u *Unit) Path() string {
	return u.Source.Path()
}

// Import is a single `using` clause.
type Import struct {
	Library string
	// The local name given with `as`, if any.
	As   string
	Span source.Span
}

// LocalName returns the name this import is referred to by inside the
// importing file.
func (i Import) LocalName() string {
	if i.As != "" {
		return i.As
	}
	return i.Library
}

// DeclID identifies a declaration within an [AST]: the index of its library in
// AST.Libraries, and its index in that library's Decls.
type DeclID struct {
	Library, Index int
}

// AST is the fully resolved result of linking.
type AST struct {
	// Libraries in order of first appearance in the input.
	Libraries []*Library
	// Indices into Libraries, such that each library comes after the
	// libraries it imports.
	Order []int

	// Maps fully-qualified declaration names to declarations.
	symbols btree.Map[string, DeclID]
}

// NewAST returns an empty AST. Only the linker should construct ASTs.
func NewAST() *AST {
	return new(AST)
}

// Decl returns the declaration with the given ID.
func (a *AST) Decl(id DeclID) *Decl {
	return a.Libraries[id.Library].Decls[id.Index]
}

// Library returns the library with the given name, or nil.
func (a *AST) Library(name string) *Library {
	for _, lib := range a.Libraries {
		if lib.Name == name {
			return lib
		}
	}
	return nil
}

// Lookup finds a declaration by its fully-qualified name, such as
// "pkg.a.Point".
func (a *AST) Lookup(fqn string) (*Decl, bool) {
	id, ok := a.ID(fqn)
	if !ok {
		return nil, false
	}
	return a.Decl(id), true
}

// ID is like [AST.Lookup], but returns the declaration's ID.
func (a *AST) ID(fqn string) (DeclID, bool) {
	return a.symbols.Get(fqn)
}

// Define records a fully-qualified name. It returns the previous definition
// of that name, if there was one, without replacing it.
func (a *AST) Define(fqn string, id DeclID) (DeclID, bool) {
	if prev, ok := a.symbols.Get(fqn); ok {
		return prev, true
	}
	a.symbols.Set(fqn, id)
	return DeclID{}, false
}

// Symbols calls yield for every fully-qualified name in the AST, in
// lexicographic order.
func (a *AST) Symbols(yield func(fqn string, id DeclID) bool) {
	a.symbols.Scan(yield)
}

// InOrder calls yield for each library in dependency order.
func (a *AST) InOrder(yield func(*Library) bool) {
	for _, idx := range a.Order {
		if !yield(a.Libraries[idx]) {
			return
		}
	}
}

// Library is the merged contents of every file that declared the same
// library.
type Library struct {
	Name  string
	Index int
	// Attributes merged from every file's library clause.
	Attributes Attributes
	// The paths of the files that contributed to this library, in input
	// order.
	Files []string
	// Declarations in input order: file order, then source order.
	Decls []*Decl
	// Indices into Decls such that every declaration comes after the
	// declarations it depends on by value. Backends that emit C-like code
	// should emit declarations in this order.
	Order []int
	// Every library imported by at least one contributing file, sorted.
	Imports []string
}

// InOrder calls yield for each declaration in dependency order.
func (l *Library) InOrder(yield func(*Decl) bool) {
	for _, idx := range l.Order {
		if !yield(l.Decls[idx]) {
			return
		}
	}
}
