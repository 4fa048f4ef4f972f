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

package backend

import (
	"bytes"
	"strings"

	"github.com/bufbuild/banjocompile/ir"
)

// generateC writes a single C header declaring every library in the AST
// except zx, whose types come from <zircon/types.h>.
func generateC(ast *ir.AST, out *bytes.Buffer) error {
	g := &cgen{ast: ast, out: out, kind: C}
	libs := g.libraries()

	g.printf("%s\n#pragma once\n\n", generatedBanner)
	for _, inc := range []string{"stdbool.h", "stddef.h", "stdint.h", "zircon/compiler.h", "zircon/types.h"} {
		g.printf("#include <%s>\n", inc)
	}
	g.printf("\n__BEGIN_CDECLS\n")

	g.printf("\n// Forward declarations\n")
	for _, lib := range libs {
		for decl := range lib.InOrder {
			g.forward(decl)
		}
	}
	for _, lib := range libs {
		for decl := range lib.InOrder {
			if decl.Kind == ir.DeclInterface {
				tag := cTag(decl)
				g.printf("\nstruct %s {\n    %s_ops_t* ops;\n    void* ctx;\n};\n", tag, tag)
			}
		}
	}

	g.printf("\n// Declarations\n")
	for _, lib := range libs {
		for decl := range lib.InOrder {
			if err := g.decl(decl); err != nil {
				return err
			}
		}
	}

	g.printf("\n// Helpers\n")
	for _, lib := range libs {
		for decl := range lib.InOrder {
			if decl.Kind != ir.DeclInterface {
				continue
			}
			for _, m := range decl.Interface.Methods {
				if err := g.helper(decl, m); err != nil {
					return err
				}
			}
		}
	}

	g.printf("\n__END_CDECLS\n")
	return nil
}

func (g *cgen) forward(decl *ir.Decl) {
	switch decl.Kind {
	case ir.DeclStruct:
		g.printf("typedef struct %s %s;\n", cTag(decl), cTypeName(decl))
	case ir.DeclUnion:
		g.printf("typedef union %s %s;\n", cTag(decl), cTypeName(decl))
	case ir.DeclInterface:
		tag := cTag(decl)
		g.printf("typedef struct %s %s_t;\n", tag, tag)
		g.printf("typedef struct %s_ops %s_ops_t;\n", tag, tag)
	}
}

func (g *cgen) decl(decl *ir.Decl) error {
	switch decl.Kind {
	case ir.DeclConst:
		g.printf("\n")
		g.doc("", decl.Attributes)
		g.printf("#define %s %s\n", cConstName(decl), g.constant(decl.Const.Value, decl.Const.Type))

	case ir.DeclEnum:
		g.printf("\n")
		g.doc("", decl.Attributes)
		subtype := &ir.Type{Kind: ir.TypePrimitive, Primitive: decl.Enum.Subtype}
		g.printf("typedef %s %s;\n", g.typeName(subtype), cTypeName(decl))
		for _, m := range decl.Enum.Members {
			g.doc("", m.Attributes)
			g.printf("#define %s %s\n", cMemberName(decl, m.Name), g.constant(m.Value, subtype))
		}

	case ir.DeclAlias:
		if g.composite(decl.Alias.Target) {
			// Expanded wherever it is used.
			return nil
		}
		g.printf("\n")
		g.doc("", decl.Attributes)
		g.printf("typedef %s %s;\n", g.typeName(decl.Alias.Target), cTypeName(decl))

	case ir.DeclStruct, ir.DeclUnion:
		keyword := "struct"
		type field struct {
			name  string
			ty    *ir.Type
			attrs ir.Attributes
		}
		var fields []field
		if decl.Kind == ir.DeclStruct {
			for _, m := range decl.Struct.Members {
				fields = append(fields, field{m.Name, m.Type, m.Attributes})
			}
		} else {
			keyword = "union"
			for _, m := range decl.Union.Members {
				fields = append(fields, field{m.Name, m.Type, m.Attributes})
			}
		}

		g.printf("\n")
		g.doc("", decl.Attributes)
		g.printf("%s %s {\n", keyword, cTag(decl))
		for _, f := range fields {
			lines, err := g.field(decl, f.name, f.ty)
			if err != nil {
				return err
			}
			g.doc("    ", f.attrs)
			for _, line := range lines {
				g.printf("    %s;\n", line)
			}
		}
		g.printf("};\n")

	case ir.DeclInterface:
		tag := cTag(decl)
		g.printf("\n")
		g.doc("", decl.Attributes)
		g.printf("struct %s_ops {\n", tag)
		for _, m := range decl.Interface.Methods {
			sig, err := g.signature(decl, m)
			if err != nil {
				return err
			}
			params := append([]string{"void* ctx"}, sig.decls()...)
			g.printf("    %s (*%s)(%s);\n", sig.ret, snake(m.Name), strings.Join(params, ", "))
		}
		g.printf("};\n")
	}
	return nil
}

// helper writes the static inline function that calls m through a protocol.
func (g *cgen) helper(decl *ir.Decl, m *ir.Method) error {
	sig, err := g.signature(decl, m)
	if err != nil {
		return err
	}
	tag := cTag(decl)
	params := append([]string{"const " + tag + "_t* proto"}, sig.decls()...)
	args := append([]string{"proto->ctx"}, sig.args()...)

	ret := "return "
	if sig.ret == "void" {
		ret = ""
	}
	g.printf("\n")
	g.doc("", m.Attributes)
	g.printf("static inline %s %s(%s) {\n", sig.ret, snake(decl.Name, m.Name), strings.Join(params, ", "))
	g.printf("    %sproto->ops->%s(%s);\n}\n", ret, snake(m.Name), strings.Join(args, ", "))
	return nil
}
