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

// resolve fills in the target of every type and constant reference.
func (l *linker) resolve() error {
	for _, sc := range l.scopes {
		for _, decl := range sc.decls {
			for member, ty := range decl.Members {
				for t := range ty.Walk {
					if t.Ref == nil {
						continue
					}
					if err := l.resolveType(sc, decl, member, t); err != nil {
						return err
					}
				}
			}

			var err error
			decl.Constants(func(member string, _ *ir.Type, c *ir.Constant) bool {
				if c.Kind == ir.ConstRef {
					err = l.resolveConstant(sc, decl, member, c.Ref)
				}
				return err == nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// find looks up a possibly-qualified name as seen from sc.
//
// Qualified names are looked up only in the library the namespace names.
// Unqualified names are looked up in the file's own library, and then in
// each import; more than one result means the name is ambiguous.
func (l *linker) find(sc *scope, namespace, name string) []ir.DeclID {
	if namespace != "" {
		lib, ok := sc.library(namespace)
		if !ok {
			return nil
		}
		id, ok := l.ast.ID(lib + "." + name)
		if !ok {
			return nil
		}
		sc.used[lib] = true
		return []ir.DeclID{id}
	}

	if id, ok := l.ast.ID(sc.lib.Name + "." + name); ok {
		return []ir.DeclID{id}
	}
	var found []ir.DeclID
	for _, imp := range sc.unit.Imports {
		if id, ok := l.ast.ID(imp.Library + "." + name); ok {
			found = append(found, id)
		}
	}
	if len(found) == 1 {
		sc.used[l.ast.Libraries[found[0].Library].Name] = true
	}
	return found
}

func (l *linker) ambiguous(ids []ir.DeclID) (string, string) {
	return l.ast.Decl(ids[0]).FullName(), l.ast.Decl(ids[1]).FullName()
}

func (l *linker) resolveType(sc *scope, decl *ir.Decl, member string, ty *ir.Type) error {
	ref := ty.Ref
	ids := l.find(sc, ref.Namespace, ref.Name)
	switch len(ids) {
	case 0:
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s refers to unknown type %s", describe(decl, member), ref)
	case 1:
	default:
		a, b := l.ambiguous(ids)
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s is ambiguous: it could refer to %s or %s", ref, a, b)
	}

	target := l.ast.Decl(ids[0])
	switch {
	case target.Kind == ir.DeclConst:
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s is a constant, not a type", ref)
	case ty.Kind == ir.TypeRequest && target.Kind != ir.DeclInterface:
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"request<%s> must name a protocol, but %s is %s %s", ref, ref, article(target.Kind), target.Kind)
	}

	ref.Target = ids[0]
	ref.Resolved = true
	return nil
}

func (l *linker) resolveConstant(sc *scope, decl *ir.Decl, member string, ref *ir.ConstantRef) error {
	ids := l.find(sc, ref.Namespace, ref.Name)
	if len(ids) == 0 && ref.Namespace != "" {
		prefix, enum := splitName(ref.Namespace)
		ids = l.find(sc, prefix, enum)
		if len(ids) == 1 {
			target := l.ast.Decl(ids[0])
			if target.Kind != ir.DeclEnum {
				return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
					"%s does not name a constant: %s is %s %s", ref, target.Name, article(target.Kind), target.Kind)
			}
			if target.Enum.Member(ref.Name) == nil {
				return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
					"enum %s has no member %s", target.Name, ref.Name)
			}
			ref.Target = ids[0]
			ref.Member = ref.Name
			ref.Resolved = true
			return nil
		}
	}

	switch len(ids) {
	case 0:
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s refers to unknown constant %s", describe(decl, member), ref)
	case 1:
	default:
		a, b := l.ambiguous(ids)
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s is ambiguous: it could refer to %s or %s", ref, a, b)
	}

	target := l.ast.Decl(ids[0])
	if target.Kind != ir.DeclConst {
		return l.errorf(reporter.ResolutionError, ref.Span, decl, member,
			"%s does not name a constant: it is %s %s", ref, article(target.Kind), target.Kind)
	}
	ref.Target = ids[0]
	ref.Resolved = true
	return nil
}

// underlying follows ty through any aliases.
func (l *linker) underlying(ty *ir.Type) *ir.Type {
	for ty.Kind == ir.TypeIdentifier {
		target := l.ast.Decl(ty.Ref.Target)
		if target.Kind != ir.DeclAlias {
			break
		}
		ty = target.Alias.Target
	}
	return ty
}

// checkConstants checks that every constant reference is compatible with
// the type it is assigned to, and that literals assigned to types that are
// only known after resolution are too.
func (l *linker) checkConstants() error {
	for _, sc := range l.scopes {
		for _, decl := range sc.decls {
			var err error
			decl.Constants(func(member string, target *ir.Type, c *ir.Constant) bool {
				err = l.checkConstant(decl, member, target, c)
				return err == nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *linker) checkConstant(decl *ir.Decl, member string, target *ir.Type, c *ir.Constant) error {
	if c.Kind != ir.ConstRef && (target == nil || target.Kind != ir.TypeIdentifier) {
		// Lowering has already checked these.
		return nil
	}

	what := "value"
	switch {
	case target == nil:
		what = "bound"
	case decl.Kind == ir.DeclStruct:
		what = "default value"
	}
	subject := describe(decl, member)

	value := c
	if c.Kind == ir.ConstRef {
		value = c.Ref.Value(l.ast)
		if value == nil {
			return l.errorf(reporter.InternalError, c.Span, decl, member, "unresolved constant %s", c)
		}
	}

	if target == nil {
		if value.Kind != ir.ConstInt || value.Negative || value.Uint == 0 || value.Uint > 1<<32-1 {
			return l.errorf(reporter.ResolutionError, c.Span, decl, member,
				"%s of %s must be a positive uint32, but %s is %s", what, subject, c, value)
		}
		return nil
	}

	under := l.underlying(target)
	enum, isEnum := l.enumOf(c)
	switch under.Kind {
	case ir.TypePrimitive, ir.TypeString:
		if isEnum {
			return l.errorf(reporter.ResolutionError, c.Span, decl, member,
				"%s of %s: expected %s, found member of enum %s",
				what, subject, target, l.ast.Decl(enum).Name)
		}
		if under.Kind == ir.TypeString && under.Size != nil && under.Size.Kind == ir.ConstRef {
			bounded := *under
			bounded.Size = under.Size.Ref.Value(l.ast)
			under = &bounded
		}
		if msg := ir.CheckLiteral(under, value); msg != "" {
			return l.errorf(reporter.ResolutionError, c.Span, decl, member, "%s of %s: %s", what, subject, msg)
		}
		return nil

	case ir.TypeIdentifier:
		want := l.ast.Decl(under.Ref.Target)
		if want.Kind != ir.DeclEnum {
			break
		}
		if !isEnum || enum != under.Ref.Target {
			return l.errorf(reporter.ResolutionError, c.Span, decl, member,
				"%s of %s: expected a member of enum %s, found %s", what, subject, want.Name, c)
		}
		return nil
	}

	return l.errorf(reporter.ResolutionError, c.Span, decl, member,
		"%s of %s: type %s cannot have a constant value", what, subject, target)
}

// enumOf returns the enum the value of c is a member of, if any.
func (l *linker) enumOf(c *ir.Constant) (ir.DeclID, bool) {
	if c.Kind != ir.ConstRef {
		return ir.DeclID{}, false
	}
	if c.Ref.Member != "" {
		return c.Ref.Target, true
	}
	ty := l.underlying(l.ast.Decl(c.Ref.Target).Const.Type)
	if ty.Kind == ir.TypeIdentifier && l.ast.Decl(ty.Ref.Target).Kind == ir.DeclEnum {
		return ty.Ref.Target, true
	}
	return ir.DeclID{}, false
}
