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
	"errors"
	"iter"
	"strings"

	"github.com/bufbuild/banjocompile/internal/toposort"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

func identity[T any](v T) T { return v }

// declsOfKind returns the IDs of every declaration of the given kinds, in
// declaration order.
func (l *linker) declsOfKind(kinds ...ir.DeclKind) []ir.DeclID {
	var ids []ir.DeclID
	for _, lib := range l.ast.Libraries {
		for i, decl := range lib.Decls {
			for _, k := range kinds {
				if decl.Kind == k {
					ids = append(ids, ir.DeclID{Library: lib.Index, Index: i})
					break
				}
			}
		}
	}
	return ids
}

// name returns the name of id as seen from the library of from.
func (l *linker) name(from, id ir.DeclID) string {
	decl := l.ast.Decl(id)
	if from.Library == id.Library {
		return decl.Name
	}
	return decl.FullName()
}

func (l *linker) cyclePath(cycle []ir.DeclID) string {
	parts := make([]string, len(cycle))
	for i, id := range cycle {
		parts[i] = l.name(cycle[0], id)
	}
	return strings.Join(parts, " -> ")
}

// checkAliasCycles rejects aliases that expand to themselves.
func (l *linker) checkAliasCycles() error {
	_, err := toposort.Sort(l.declsOfKind(ir.DeclAlias), identity[ir.DeclID], func(id ir.DeclID) iter.Seq[ir.DeclID] {
		return func(yield func(ir.DeclID) bool) {
			for t := range l.ast.Decl(id).Alias.Target.Walk {
				if t.Kind == ir.TypeIdentifier && l.ast.Decl(t.Ref.Target).Kind == ir.DeclAlias {
					if !yield(t.Ref.Target) {
						return
					}
				}
			}
		}
	})
	var cycle *toposort.CycleError[ir.DeclID]
	if errors.As(err, &cycle) {
		first := l.ast.Decl(cycle.Cycle[0])
		return l.errorf(reporter.CycleError, first.Span, first, "",
			"alias %s expands to itself: %s", first.Name, l.cyclePath(cycle.Cycle))
	}
	return err
}

// checkConstCycles rejects constants whose value, or whose type's bound,
// depends on itself.
func (l *linker) checkConstCycles() error {
	_, err := toposort.Sort(l.declsOfKind(ir.DeclConst), identity[ir.DeclID], func(id ir.DeclID) iter.Seq[ir.DeclID] {
		return func(yield func(ir.DeclID) bool) {
			l.ast.Decl(id).Constants(func(_ string, _ *ir.Type, c *ir.Constant) bool {
				if c.Kind != ir.ConstRef || c.Ref.Member != "" {
					return true
				}
				return yield(c.Ref.Target)
			})
		}
	})
	var cycle *toposort.CycleError[ir.DeclID]
	if errors.As(err, &cycle) {
		first := l.ast.Decl(cycle.Cycle[0])
		return l.errorf(reporter.CycleError, first.Span, first, "",
			"constant %s depends on itself: %s", first.Name, l.cyclePath(cycle.Cycle))
	}
	return err
}

// byValue returns the declaration that a value of type ty contains inline,
// if any. Arrays contain their elements inline; vectors, strings, handles
// and nullable types are out of line.
func (l *linker) byValue(ty *ir.Type) (ir.DeclID, bool) {
	for {
		switch {
		case ty.Kind == ir.TypeArray:
			ty = ty.Elem
		case ty.Kind == ir.TypeIdentifier && !ty.Nullable:
			target := l.ast.Decl(ty.Ref.Target)
			if target.Kind == ir.DeclAlias {
				ty = target.Alias.Target
				continue
			}
			return ty.Ref.Target, true
		default:
			return ir.DeclID{}, false
		}
	}
}

// containment is an edge in the by-value containment graph: the member of
// the parent through which id is contained.
type containment struct {
	id  ir.DeclID
	via string
}

// checkContainment rejects structs and unions that contain themselves by
// value, which would have infinite size.
func (l *linker) checkContainment() error {
	var roots []containment
	for _, id := range l.declsOfKind(ir.DeclStruct, ir.DeclUnion) {
		roots = append(roots, containment{id: id})
	}

	sorter := toposort.Sorter[containment, ir.DeclID]{
		Key: func(c containment) ir.DeclID { return c.id },
	}
	_, err := sorter.Sort(roots, func(c containment) iter.Seq[containment] {
		return func(yield func(containment) bool) {
			for member, ty := range l.ast.Decl(c.id).Members {
				id, ok := l.byValue(ty)
				if !ok {
					continue
				}
				if kind := l.ast.Decl(id).Kind; kind != ir.DeclStruct && kind != ir.DeclUnion {
					continue
				}
				if !yield(containment{id: id, via: member}) {
					return
				}
			}
		}
	})

	var cycle *toposort.CycleError[containment]
	if !errors.As(err, &cycle) {
		return err
	}

	// Render A.b -> B.a -> A, where each member is the one leading to the
	// next declaration.
	path := cycle.Cycle
	from := path[0].id
	var buf strings.Builder
	for i, c := range path {
		if i > 0 {
			buf.WriteString(" -> ")
		}
		buf.WriteString(l.name(from, c.id))
		if i+1 < len(path) {
			buf.WriteString(".")
			buf.WriteString(path[i+1].via)
		}
	}
	first := l.ast.Decl(from)
	return l.errorf(reporter.CycleError, first.Span, first, path[1].via,
		"%s contains itself by value: %s", first.Name, buf.String())
}

// order computes the order in which backends should emit libraries and
// declarations.
func (l *linker) order() error {
	libs := make([]int, len(l.ast.Libraries))
	for i := range libs {
		libs[i] = i
	}
	order, err := toposort.Sort(libs, identity[int], func(i int) iter.Seq[int] {
		return func(yield func(int) bool) {
			for _, imp := range l.ast.Libraries[i].Imports {
				if !yield(l.libs[imp].Index) {
					return
				}
			}
		}
	})
	var cycle *toposort.CycleError[int]
	if errors.As(err, &cycle) {
		return l.importCycle(cycle.Cycle)
	} else if err != nil {
		return err
	}
	l.ast.Order = order

	for _, lib := range l.ast.Libraries {
		roots := make([]ir.DeclID, len(lib.Decls))
		for i := range roots {
			roots[i] = ir.DeclID{Library: lib.Index, Index: i}
		}
		ids, err := toposort.Sort(roots, identity[ir.DeclID], l.dependencies)
		if err != nil {
			// Every cycle the graph could contain has been rejected above.
			return l.handler.HandleError(reporter.Wrap(reporter.InternalError, err,
				"could not order declarations of library %s", lib.Name))
		}
		lib.Order = make([]int, len(ids))
		for i, id := range ids {
			lib.Order[i] = id.Index
		}
	}
	return nil
}

// dependencies yields the declarations in the same library that must be
// emitted before id.
//
// References to protocols never order declarations: backends declare
// protocol types before anything that could use them.
func (l *linker) dependencies(id ir.DeclID) iter.Seq[ir.DeclID] {
	return func(yield func(ir.DeclID) bool) {
		emit := func(dep ir.DeclID) bool {
			if dep.Library != id.Library || l.ast.Decl(dep).Kind == ir.DeclInterface {
				return true
			}
			return yield(dep)
		}

		decl := l.ast.Decl(id)
		for _, ty := range decl.Members {
			for t := range ty.Walk {
				if t.Kind == ir.TypeVector {
					// Out of line.
					break
				}
				if t.Kind == ir.TypeIdentifier && !t.Nullable && !emit(t.Ref.Target) {
					return
				}
			}
		}
		decl.Constants(func(_ string, _ *ir.Type, c *ir.Constant) bool {
			return c.Kind != ir.ConstRef || emit(c.Ref.Target)
		})
	}
}

func (l *linker) importCycle(cycle []int) error {
	names := make([]string, len(cycle))
	for i, idx := range cycle {
		names[i] = l.ast.Libraries[idx].Name
	}

	// Point at the import that starts the cycle.
	from, to := names[0], names[1]
	for _, sc := range l.scopes {
		if sc.lib.Name != from {
			continue
		}
		for _, imp := range sc.unit.Imports {
			if imp.Library == to {
				return l.errorf(reporter.CycleError, imp.Span, nil, "",
					"library %s imports itself: %s", from, strings.Join(names, " -> "))
			}
		}
	}
	return l.errorf(reporter.CycleError, nil, nil, "",
		"library %s imports itself: %s", from, strings.Join(names, " -> "))
}
