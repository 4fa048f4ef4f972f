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

// Package lower turns the parse tree of one file into a list of unresolved
// declarations.
//
// Lowering checks everything that can be checked without looking at other
// files: reserved words, duplicate members and attributes, enum values, and
// literals that do not fit the type they are assigned to. References to other
// declarations are left for the linker.
package lower

import (
	"strings"

	"github.com/bufbuild/banjocompile/ast"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
	"github.com/bufbuild/banjocompile/token"
)

// Lower lowers a parsed file.
//
// The returned error, if any, is a *[reporter.Error] of kind
// [reporter.LoweringError], and is the first problem in source order.
func Lower(file *ast.File) (*ir.Unit, error) {
	l := &lowerer{file: file}
	unit, err := l.lowerFile()
	if err != nil {
		return nil, err
	}
	return unit, nil
}

type lowerer struct {
	file *ast.File

	// The declaration currently being lowered, for error context.
	decl string
}

// errorf builds a lowering error at the given node. member names the member
// of the current declaration the error is about, if any.
func (l *lowerer) errorf(at source.Spanner, member string, format string, args ...any) *reporter.Error {
	err := reporter.Errorf(reporter.LoweringError, at, format, args...).InFile(l.file.Source.Path())
	if l.decl != "" {
		err.InDecl(l.decl, member)
	}
	return err
}

func (l *lowerer) lowerFile() (*ir.Unit, error) {
	file := l.file
	if file.Library == nil {
		// Point at the first declaration if there is one, since that is
		// where the library clause is missing from.
		var at source.Spanner = file.Source.Span(0, 0)
		if len(file.Decls) > 0 {
			at = file.Decls[0]
		}
		return nil, l.errorf(at, "", "missing library declaration")
	}

	unit := &ir.Unit{
		Source:      file.Source,
		Library:     file.Library.Name.String(),
		LibrarySpan: file.Library.Name.Span(),
	}

	var err error
	unit.Attributes, err = l.lowerAnnotations(ast.Annotations{Attributes: file.Attributes, Doc: file.Doc}, "")
	if err != nil {
		return nil, err
	}

	if err := l.lowerImports(unit); err != nil {
		return nil, err
	}

	for _, decl := range file.Decls {
		lowered, err := l.lowerDecl(decl)
		if err != nil {
			return nil, err
		}
		lowered.Library = unit.Library
		unit.Decls = append(unit.Decls, lowered)
	}
	return unit, nil
}

func (l *lowerer) lowerImports(unit *ir.Unit) error {
	seen := make(map[string]*ast.Using)
	locals := make(map[string]*ast.Using)
	for _, using := range l.file.Usings {
		name := using.Name.String()
		if prev, ok := seen[name]; ok {
			return l.errorf(using, "", "library %s is imported more than once", name).
				Note(prev, "previously imported here")
		}
		seen[name] = using

		imp := ir.Import{Library: name, Span: using.Span()}
		if using.As != nil {
			if err := l.checkName(using.As, "", "import alias"); err != nil {
				return err
			}
			imp.As = using.As.Name
		}
		if prev, ok := locals[imp.LocalName()]; ok {
			return l.errorf(using, "", "%s refers to more than one imported library", imp.LocalName()).
				Note(prev, "previously imported here")
		}
		locals[imp.LocalName()] = using
		unit.Imports = append(unit.Imports, imp)
	}
	return nil
}

// checkName rejects reserved words used as names.
func (l *lowerer) checkName(name *ast.Ident, member, what string) error {
	if token.IsReserved(name.Name) {
		return l.errorf(name, member, "%s %q is a reserved keyword", what, name.Name)
	}
	return nil
}

// lowerAnnotations converts attributes and doc comments into ir.Attributes,
// rejecting duplicates.
func (l *lowerer) lowerAnnotations(annotations ast.Annotations, member string) (ir.Attributes, error) {
	var attrs ir.Attributes
	seen := make(map[string]source.Spanner)
	if doc := annotations.Doc; doc != nil {
		attrs = append(attrs, ir.Attribute{
			Name:  ir.DocAttribute,
			Value: doc.Text(),
			Span:  doc.Span(),
		})
		seen[ir.DocAttribute] = doc
	}

	if annotations.Attributes == nil {
		return attrs, nil
	}
	for _, attr := range annotations.Attributes.Attributes {
		name := attr.Name.Name
		if prev, ok := seen[name]; ok {
			err := l.errorf(attr, member, "duplicate attribute %s", name)
			if _, isDoc := prev.(*ast.DocComment); isDoc {
				err.Note(prev, "documentation is also provided by this doc comment")
			} else {
				err.Note(prev, "previously specified here")
			}
			return nil, err
		}
		seen[name] = attr

		var value string
		if attr.Value != nil {
			value = attr.Value.Value
		}
		attrs = append(attrs, ir.Attribute{Name: name, Value: value, Span: attr.Span()})
	}
	return attrs, nil
}

// memberSet detects duplicate member names within one declaration.
type memberSet map[string]*ast.Ident

func (l *lowerer) addMember(set memberSet, name *ast.Ident, what string) error {
	if prev, ok := set[name.Name]; ok {
		return l.errorf(name, name.Name, "duplicate %s %q in %s", what, name.Name, l.decl).
			Note(prev, "previously declared here")
	}
	set[name.Name] = name
	return nil
}

func joinMember(parts ...string) string {
	return strings.Join(parts, ".")
}
