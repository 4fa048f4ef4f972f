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

// generateCPPInternal writes the compile-time checks that every protocol
// mixin's subclass implements each method with the right signature.
func generateCPPInternal(ast *ir.AST, out *bytes.Buffer) error {
	g := &cgen{ast: ast, out: out, kind: CPPInternal}
	libs := g.libraries()

	g.printf("%s\n#pragma once\n\n", generatedBanner)
	for _, lib := range libs {
		g.printf("#include <%s>\n", cHeaderPath(lib, ""))
	}
	g.printf("#include <type_traits>\n\nnamespace ddk {\nnamespace internal {\n")

	for _, lib := range libs {
		for decl := range lib.InOrder {
			if decl.Kind != ir.DeclInterface {
				continue
			}
			methods, err := g.cppMethods(decl)
			if err != nil {
				return err
			}
			class := pascal(decl.Name, "Protocol")
			trait := func(m cppMethod) string {
				return snake("has", cTag(decl), m.Name)
			}

			for _, m := range methods {
				g.printf("\nDECLARE_HAS_MEMBER_FN_WITH_SIGNATURE(%s, %s,\n        %s (C::*)(%s));\n",
					trait(m), m.impl, m.sig.ret, strings.Join(m.sig.decls(), ", "))
			}

			g.printf("\ntemplate <typename D>\nconstexpr void Check%sSubclass() {\n", class)
			for i, m := range methods {
				if i > 0 {
					g.printf("\n")
				}
				g.printf("    static_assert(internal::%s<D>::value,\n", trait(m))
				g.printf("        \"%s subclasses must implement \"\n", class)
				g.printf("        \"%s %s(%s);\");\n", m.sig.ret, m.impl, strings.Join(m.sig.decls(), ", "))
			}
			g.printf("}\n")
		}
	}

	g.printf("\n} // namespace internal\n} // namespace ddk\n")
	return nil
}
