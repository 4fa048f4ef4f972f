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

package linker

import (
	"slices"
	"strings"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
)

// Link merges units into a single AST and resolves every reference in it.
//
// Units are processed in the order given, which determines the order of
// libraries and declarations in the result, and which error is reported
// first. Errors and warnings are reported to handler. If any error is
// reported, Link returns a nil AST: partial results are never returned.
//
// A nil handler fails at the first error.
func Link(units []*ir.Unit, handler *reporter.Handler) (*ir.AST, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	l := &linker{
		handler: handler,
		ast:     ir.NewAST(),
		libs:    make(map[string]*ir.Library),
	}

	stages := []func() error{
		func() error { return l.merge(units) },
		l.checkDependencies,
		l.resolve,
		l.checkAliasCycles,
		l.checkConstCycles,
		l.checkConstants,
		l.checkContainment,
		l.order,
	}
	for _, stage := range stages {
		if err := stage(); err != nil {
			return nil, err
		}
		// A reporter may swallow errors so that a stage can find more of
		// them, but later stages assume that earlier ones succeeded.
		if err := handler.Error(); err != nil {
			return nil, err
		}
	}

	l.warnUnusedImports()
	return l.ast, nil
}

type linker struct {
	handler *reporter.Handler
	ast     *ir.AST
	libs    map[string]*ir.Library

	// One scope per unit, in input order.
	scopes []*scope
}

// scope is the view of the AST from within one file.
type scope struct {
	unit *ir.Unit
	lib  *ir.Library
	// The declarations of unit that were merged into lib.
	decls []*ir.Decl

	// Maps the local name of each import to the library it names.
	imports map[string]string
	// Imported libraries that something in this file refers to.
	used map[string]bool
}

// library returns the library a qualified name's namespace refers to.
func (s *scope) library(namespace string) (string, bool) {
	if namespace == s.lib.Name {
		return namespace, true
	}
	lib, ok := s.imports[namespace]
	return lib, ok
}

func (l *linker) merge(units []*ir.Unit) error {
	for _, unit := range units {
		lib := l.libs[unit.Library]
		if lib == nil {
			lib = &ir.Library{Name: unit.Library, Index: len(l.ast.Libraries)}
			l.libs[lib.Name] = lib
			l.ast.Libraries = append(l.ast.Libraries, lib)
		}
		lib.Files = append(lib.Files, unit.Path())
		for _, attr := range unit.Attributes {
			// The first file to set a library attribute wins.
			if !lib.Attributes.Has(attr.Name) {
				lib.Attributes = append(lib.Attributes, attr)
			}
		}

		sc := &scope{
			unit:    unit,
			lib:     lib,
			imports: make(map[string]string, len(unit.Imports)),
			used:    make(map[string]bool),
		}
		for _, imp := range unit.Imports {
			sc.imports[imp.LocalName()] = imp.Library
			if !slices.Contains(lib.Imports, imp.Library) {
				lib.Imports = append(lib.Imports, imp.Library)
			}
		}
		l.scopes = append(l.scopes, sc)

		for _, decl := range unit.Decls {
			id := ir.DeclID{Library: lib.Index, Index: len(lib.Decls)}
			if prevID, dup := l.ast.Define(decl.FullName(), id); dup {
				prev := l.ast.Decl(prevID)
				dupErr := reporter.Errorf(reporter.DuplicateError, decl.Span,
					"%s is declared more than once in library %s", decl.Name, lib.Name).
					InDecl(decl.Name).
					Note(prev.Span, "previously declared here as %s %s", article(prev.Kind), prev.Kind)
				if err := l.handler.HandleError(dupErr); err != nil {
					return err
				}
				continue
			}
			lib.Decls = append(lib.Decls, decl)
			sc.decls = append(sc.decls, decl)
		}
	}

	for _, lib := range l.ast.Libraries {
		slices.Sort(lib.Imports)
	}
	return nil
}

// errorf reports an error about the given member of decl.
func (l *linker) errorf(kind reporter.Kind, at source.Spanner, decl *ir.Decl, member string, format string, args ...any) error {
	err := reporter.Errorf(kind, at, format, args...)
	if decl != nil {
		err.InDecl(decl.Name, member)
	}
	return l.handler.HandleError(err)
}

func describe(decl *ir.Decl, member string) string {
	if member == "" {
		return decl.Name
	}
	return decl.Name + "." + member
}

// splitName splits a dotted name at its last dot.
func splitName(name string) (prefix, last string) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

func article(kind ir.DeclKind) string {
	switch kind {
	case ir.DeclEnum, ir.DeclInterface, ir.DeclAlias:
		return "an"
	default:
		return "a"
	}
}
