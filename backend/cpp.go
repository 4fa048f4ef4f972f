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

// generateCPP writes the C++ mixin and client classes for every protocol.
// The output includes the C header of each library and the internal header
// written by the cpp-internal backend.
func generateCPP(ast *ir.AST, out *bytes.Buffer) error {
	g := &cgen{ast: ast, out: out, kind: CPP}
	libs := g.libraries()

	g.printf("%s\n#pragma once\n\n", generatedBanner)
	for _, lib := range libs {
		g.printf("#include <%s>\n", cHeaderPath(lib, ""))
	}
	for _, inc := range []string{"ddktl/device-internal.h", "zircon/assert.h", "zircon/compiler.h", "zircon/types.h"} {
		g.printf("#include <%s>\n", inc)
	}
	g.printf("\n")
	for _, lib := range libs {
		g.printf("#include %q\n", cHeaderPath(lib, "-internal"))
	}

	g.printf("\nnamespace ddk {\n")
	for _, lib := range libs {
		for decl := range lib.InOrder {
			if decl.Kind != ir.DeclInterface {
				continue
			}
			if err := g.mixin(decl); err != nil {
				return err
			}
			if err := g.client(decl); err != nil {
				return err
			}
		}
	}
	g.printf("\n} // namespace ddk\n")
	return nil
}

// cppMethod is a protocol method as seen from C++.
type cppMethod struct {
	*ir.Method
	sig cSignature
	// The name of the method the mixin's subclass implements, such as
	// GpioConfig.
	impl string
}

func (g *cgen) cppMethods(decl *ir.Decl) ([]cppMethod, error) {
	methods := make([]cppMethod, 0, len(decl.Interface.Methods))
	for _, m := range decl.Interface.Methods {
		sig, err := g.signature(decl, m)
		if err != nil {
			return nil, err
		}
		methods = append(methods, cppMethod{
			Method: m,
			sig:    sig,
			impl:   pascal(decl.Name, m.Name),
		})
	}
	return methods, nil
}

func (g *cgen) mixin(decl *ir.Decl) error {
	methods, err := g.cppMethods(decl)
	if err != nil {
		return err
	}
	class := pascal(decl.Name, "Protocol")
	tag := cTag(decl)
	ops := tag + "_ops_"

	g.printf("\n")
	g.doc("", decl.Attributes)
	g.printf("template <typename D, typename Base = internal::base_mixin>\n")
	g.printf("class %s : public Base {\npublic:\n", class)
	g.printf("    %s() {\n", class)
	g.printf("        internal::Check%sSubclass<D>();\n", class)
	for _, m := range methods {
		g.printf("        %s.%s = %s;\n", ops, snake(m.Name), m.impl)
	}
	g.printf("    }\n\nprotected:\n")
	g.printf("    %s_ops_t %s = {};\n\nprivate:\n", tag, ops)
	for i, m := range methods {
		if i > 0 {
			g.printf("\n")
		}
		g.doc("    ", m.Attributes)
		params := append([]string{"void* ctx"}, m.sig.decls()...)
		g.printf("    static %s %s(%s) {\n", m.sig.ret, m.impl, strings.Join(params, ", "))
		g.printf("        %sstatic_cast<D*>(ctx)->%s(%s);\n    }\n", returns(m.sig), m.impl, strings.Join(m.sig.args(), ", "))
	}
	g.printf("};\n")
	return nil
}

func (g *cgen) client(decl *ir.Decl) error {
	methods, err := g.cppMethods(decl)
	if err != nil {
		return err
	}
	class := pascal(decl.Name, "ProtocolClient")
	tag := cTag(decl)

	g.printf("\nclass %s {\npublic:\n", class)
	g.printf("    %s()\n        : ops_(nullptr), ctx_(nullptr) {}\n", class)
	g.printf("    %s(const %s_t* proto)\n        : ops_(proto->ops), ctx_(proto->ctx) {}\n\n", class, tag)
	g.printf("    void GetProto(%s_t* proto) const {\n        proto->ctx = ctx_;\n        proto->ops = ops_;\n    }\n", tag)
	g.printf("    bool is_valid() const {\n        return ops_ != nullptr;\n    }\n")
	g.printf("    void clear() {\n        ctx_ = nullptr;\n        ops_ = nullptr;\n    }\n")
	for _, m := range methods {
		g.printf("\n")
		g.doc("    ", m.Attributes)
		args := append([]string{"ctx_"}, m.sig.args()...)
		g.printf("    %s %s(%s) const {\n", m.sig.ret, pascal(m.Name), strings.Join(m.sig.decls(), ", "))
		g.printf("        %sops_->%s(%s);\n    }\n", returns(m.sig), snake(m.Name), strings.Join(args, ", "))
	}
	g.printf("\nprivate:\n    %s_ops_t* ops_;\n    void* ctx_;\n};\n", tag)
	return nil
}

func returns(sig cSignature) string {
	if sig.ret == "void" {
		return ""
	}
	return "return "
}
