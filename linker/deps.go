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
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// checkDependencies checks that every import names a library in this
// compilation, and that every qualified name refers to a library its file
// imports.
func (l *linker) checkDependencies() error {
	for _, sc := range l.scopes {
		for _, imp := range sc.unit.Imports {
			var err error
			switch {
			case imp.Library == sc.lib.Name:
				err = l.errorf(reporter.DependencyError, imp.Span, nil, "",
					"library %s imports itself", imp.Library)
			case l.libs[imp.Library] == nil:
				err = l.errorf(reporter.DependencyError, imp.Span, nil, "",
					"imported library %s is not declared by any input file", imp.Library)
			}
			if err != nil {
				return err
			}
		}

		for _, decl := range sc.decls {
			if err := l.checkDeclDependencies(sc, decl); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *linker) checkDeclDependencies(sc *scope, decl *ir.Decl) error {
	for member, ty := range decl.Members {
		for t := range ty.Walk {
			if t.Ref == nil || t.Ref.Namespace == "" {
				continue
			}
			if _, ok := sc.library(t.Ref.Namespace); !ok {
				return l.errorf(reporter.DependencyError, t.Ref.Span, decl, member,
					"%s refers to %s, but library %s is not imported", describe(decl, member), t.Ref, t.Ref.Namespace)
			}
		}
	}

	var err error
	decl.Constants(func(member string, _ *ir.Type, c *ir.Constant) bool {
		if c.Kind != ir.ConstRef || c.Ref.Namespace == "" {
			return true
		}
		// Either a const in the library named by the namespace, or a member
		// of an enum whose name ends the namespace.
		ns := c.Ref.Namespace
		prefix, _ := splitName(ns)
		if _, ok := sc.library(ns); ok {
			return true
		}
		if _, ok := sc.library(prefix); ok || prefix == "" {
			return true
		}

		missing := ns
		if l.libs[ns] == nil && l.libs[prefix] != nil {
			missing = prefix
		}
		err = l.errorf(reporter.DependencyError, c.Ref.Span, decl, member,
			"%s refers to %s, but library %s is not imported", describe(decl, member), c.Ref, missing)
		return err == nil
	})
	return err
}

// warnUnusedImports reports imports that nothing in their file refers to.
func (l *linker) warnUnusedImports() {
	for _, sc := range l.scopes {
		for _, imp := range sc.unit.Imports {
			if sc.used[imp.Library] {
				continue
			}
			l.handler.HandleWarning(reporter.Errorf(reporter.DependencyError, imp.Span,
				"library %s is imported but not used", imp.Library))
		}
	}
}
