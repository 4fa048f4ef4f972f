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
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/banjocompile/internal/cases"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// The library whose declarations are provided by <zircon/types.h> rather
// than generated.
const zxLibrary = "zx"

const generatedBanner = "// WARNING: THIS FILE IS MACHINE GENERATED BY banjoc. DO NOT EDIT.\n"

var cPrimitives = [...]string{
	ir.Bool:    "bool",
	ir.Int8:    "int8_t",
	ir.Int16:   "int16_t",
	ir.Int32:   "int32_t",
	ir.Int64:   "int64_t",
	ir.Uint8:   "uint8_t",
	ir.Uint16:  "uint16_t",
	ir.Uint32:  "uint32_t",
	ir.Uint64:  "uint64_t",
	ir.Float32: "float",
	ir.Float64: "double",
	ir.Usize:   "size_t",
	ir.Voidptr: "void*",
}

var cIntMacros = [...]string{
	ir.Int8:   "INT8_C",
	ir.Int16:  "INT16_C",
	ir.Int32:  "INT32_C",
	ir.Int64:  "INT64_C",
	ir.Uint8:  "UINT8_C",
	ir.Uint16: "UINT16_C",
	ir.Uint32: "UINT32_C",
	ir.Uint64: "UINT64_C",
}

// cgen holds the state shared by the C-family backends.
type cgen struct {
	ast  *ir.AST
	out  *bytes.Buffer
	kind Kind
}

func (g *cgen) printf(format string, args ...any) {
	fmt.Fprintf(g.out, format, args...)
}

// doc writes attrs' documentation as line comments.
func (g *cgen) doc(indent string, attrs ir.Attributes) {
	doc, ok := attrs.Get(ir.DocAttribute)
	if !ok {
		return
	}
	for line := range strings.SplitSeq(doc, "\n") {
		g.printf("%s//%s\n", indent, line)
	}
}

// libraries returns the libraries to generate code for, in dependency order.
func (g *cgen) libraries() []*ir.Library {
	var libs []*ir.Library
	for lib := range g.ast.InOrder {
		if lib.Name != zxLibrary {
			libs = append(libs, lib)
		}
	}
	return libs
}

// snake, screaming and pascal convert the words of parts to one identifier.
func snake(parts ...string) string {
	return cases.Snake.Join(parts...)
}

func screaming(parts ...string) string {
	return cases.Enum.Join(parts...)
}

func pascal(parts ...string) string {
	return cases.Pascal.Join(parts...)
}

// cTag returns the struct or union tag of decl.
func cTag(decl *ir.Decl) string {
	if decl.Kind == ir.DeclInterface {
		return snake(decl.Name, "protocol")
	}
	return snake(decl.Name)
}

// cTypeName returns the typedef name of decl.
func cTypeName(decl *ir.Decl) string {
	if decl.Library == zxLibrary {
		return snake(zxLibrary, decl.Name, "t")
	}
	return cTag(decl) + "_t"
}

// cConstName returns the macro name of a const.
func cConstName(decl *ir.Decl) string {
	return screaming(decl.Name)
}

// cMemberName returns the macro name of an enum member.
func cMemberName(decl *ir.Decl, member string) string {
	return screaming(decl.Name, member)
}

// cHeaderPath returns the path of the C header generated for lib.
func cHeaderPath(lib *ir.Library, suffix string) string {
	return strings.ReplaceAll(lib.Name, ".", "/") + suffix + ".h"
}

// expand follows aliases of vectors, arrays and bounded strings, which have
// no C typedef.
func (g *cgen) expand(ty *ir.Type) *ir.Type {
	for ty.Kind == ir.TypeIdentifier {
		decl := g.ast.Decl(ty.Ref.Target)
		if decl.Kind != ir.DeclAlias || !g.composite(decl.Alias.Target) {
			break
		}
		ty = decl.Alias.Target
	}
	return ty
}

// composite returns whether ty cannot be named by a single C typedef.
func (g *cgen) composite(ty *ir.Type) bool {
	ty = g.expand(ty)
	switch ty.Kind {
	case ir.TypeVector, ir.TypeArray, ir.TypeRequest:
		return true
	case ir.TypeString:
		return ty.Size != nil
	default:
		return false
	}
}

// kindOf returns the kind of declaration ty refers to, through aliases, or
// zero if ty does not refer to a declaration.
func (g *cgen) kindOf(ty *ir.Type) ir.DeclKind {
	for ty.Kind == ir.TypeIdentifier {
		decl := g.ast.Decl(ty.Ref.Target)
		if decl.Kind != ir.DeclAlias {
			return decl.Kind
		}
		ty = decl.Alias.Target
	}
	return 0
}

// scalar returns whether values of ty are passed by value.
func (g *cgen) scalar(ty *ir.Type) bool {
	ty = g.expand(ty)
	switch ty.Kind {
	case ir.TypePrimitive, ir.TypeHandle:
		return true
	case ir.TypeIdentifier:
		switch g.kindOf(ty) {
		case ir.DeclStruct, ir.DeclUnion, ir.DeclInterface:
			return false
		default:
			return !g.nullablePointer(ty)
		}
	default:
		return false
	}
}

// nullablePointer returns whether ty is, or is an alias of, a nullable
// reference.
func (g *cgen) nullablePointer(ty *ir.Type) bool {
	for ty.Kind == ir.TypeIdentifier {
		if ty.Nullable {
			return true
		}
		decl := g.ast.Decl(ty.Ref.Target)
		if decl.Kind != ir.DeclAlias {
			return false
		}
		ty = decl.Alias.Target
	}
	return false
}

// typeName renders a type that has a single C name.
func (g *cgen) typeName(ty *ir.Type) string {
	switch ty.Kind {
	case ir.TypePrimitive:
		return cPrimitives[ty.Primitive]
	case ir.TypeString:
		return "const char*"
	case ir.TypeHandle:
		return "zx_handle_t"
	case ir.TypeIdentifier:
		decl := g.ast.Decl(ty.Ref.Target)
		name := cTypeName(decl)
		if ty.Nullable {
			name += "*"
		}
		return name
	default:
		return ""
	}
}

// baseName is like typeName, but never adds a pointer for nullability.
func (g *cgen) baseName(ty *ir.Type) string {
	if ty.Kind == ir.TypeIdentifier {
		return cTypeName(g.ast.Decl(ty.Ref.Target))
	}
	return g.typeName(ty)
}

func (g *cgen) unsupported(decl *ir.Decl, member string, ty *ir.Type) error {
	return reporter.Errorf(reporter.GenerationError, ty.Span,
		"%s has type %s, which the %s backend does not support", describeMember(decl, member), ty.Format(g.ast), g.kind).
		InDecl(decl.Name, member)
}

// elem renders the element type of a vector or array.
func (g *cgen) elem(decl *ir.Decl, member string, ty *ir.Type) (string, error) {
	elem := g.expand(ty.Elem)
	switch elem.Kind {
	case ir.TypeVector, ir.TypeArray, ir.TypeRequest:
		return "", g.unsupported(decl, member, ty)
	}
	return g.typeName(elem), nil
}

// size renders the bound of a string, vector or array.
func (g *cgen) size(c *ir.Constant) string {
	if c.Kind == ir.ConstRef {
		return g.constant(c, nil)
	}
	return strconv.FormatUint(c.Uint, 10)
}

// constant renders a constant. ty is the type it is assigned to, which
// selects the integer literal macro; it may be nil.
func (g *cgen) constant(c *ir.Constant, ty *ir.Type) string {
	switch c.Kind {
	case ir.ConstInt:
		digits := strconv.FormatUint(c.Uint, 10)
		if c.Negative {
			digits = "-" + digits
		}
		if ty != nil {
			if under := g.underlying(ty); under.Kind == ir.TypePrimitive && int(under.Primitive) < len(cIntMacros) {
				if macro := cIntMacros[under.Primitive]; macro != "" {
					return macro + "(" + digits + ")"
				}
			}
		}
		return digits
	case ir.ConstString:
		return strconv.Quote(c.Str)
	case ir.ConstBool:
		return strconv.FormatBool(c.Bool)
	case ir.ConstRef:
		target := g.ast.Decl(c.Ref.Target)
		if c.Ref.Member != "" {
			return cMemberName(target, c.Ref.Member)
		}
		return cConstName(target)
	default:
		return ""
	}
}

// underlying follows ty through every alias, and through enums to their
// integer type.
func (g *cgen) underlying(ty *ir.Type) *ir.Type {
	for ty.Kind == ir.TypeIdentifier {
		decl := g.ast.Decl(ty.Ref.Target)
		switch decl.Kind {
		case ir.DeclAlias:
			ty = decl.Alias.Target
		case ir.DeclEnum:
			return &ir.Type{Kind: ir.TypePrimitive, Primitive: decl.Enum.Subtype}
		default:
			return ty
		}
	}
	return ty
}

// field renders the C declarations for a struct or union member.
func (g *cgen) field(decl *ir.Decl, name string, ty *ir.Type) ([]string, error) {
	ty = g.expand(ty)
	switch ty.Kind {
	case ir.TypeRequest:
		return nil, g.unsupported(decl, name, ty)
	case ir.TypeVector:
		elem, err := g.elem(decl, name, ty)
		if err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf("const %s* %s_list", elem, name),
			fmt.Sprintf("size_t %s_count", name),
		}, nil
	case ir.TypeArray:
		elem, err := g.elem(decl, name, ty)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("%s %s[%s]", elem, name, g.size(ty.Size))}, nil
	case ir.TypeString:
		if ty.Size != nil {
			return []string{fmt.Sprintf("char %s[%s]", name, g.size(ty.Size))}, nil
		}
	}
	return []string{g.typeName(ty) + " " + name}, nil
}

// cParam is one Banjo parameter rendered as one or more C parameters.
type cParam struct {
	decls []string
	// The names to pass when forwarding the parameters.
	args []string
}

// cSignature is a method rendered as a C function, not including the
// context argument.
type cSignature struct {
	ret    string
	params []cParam
}

func (s cSignature) decls() []string {
	var out []string
	for _, p := range s.params {
		out = append(out, p.decls...)
	}
	return out
}

func (s cSignature) args() []string {
	var out []string
	for _, p := range s.params {
		out = append(out, p.args...)
	}
	return out
}

// signature renders a protocol method. If the first response parameter is
// a scalar, it becomes the return value; every other response parameter
// becomes an out parameter.
func (g *cgen) signature(decl *ir.Decl, m *ir.Method) (cSignature, error) {
	sig := cSignature{ret: "void"}
	for _, p := range m.Request {
		param, err := g.inParam(decl, m, p)
		if err != nil {
			return sig, err
		}
		sig.params = append(sig.params, param)
	}

	response := m.Response
	if len(response) > 0 && g.scalar(response[0].Type) {
		sig.ret = g.typeName(g.expand(response[0].Type))
		response = response[1:]
	}
	for _, p := range response {
		param, err := g.outParam(decl, m, p)
		if err != nil {
			return sig, err
		}
		sig.params = append(sig.params, param)
	}
	return sig, nil
}

func (g *cgen) inParam(decl *ir.Decl, m *ir.Method, p *ir.Param) (cParam, error) {
	member := m.Name + "." + p.Name
	name := p.Name
	ty := g.expand(p.Type)
	switch {
	case ty.Kind == ir.TypeRequest:
		return cParam{}, g.unsupported(decl, member, ty)
	case ty.Kind == ir.TypeVector:
		elem, err := g.elem(decl, member, ty)
		if err != nil {
			return cParam{}, err
		}
		return cParam{
			decls: []string{
				fmt.Sprintf("const %s* %s_list", elem, name),
				fmt.Sprintf("size_t %s_count", name),
			},
			args: []string{name + "_list", name + "_count"},
		}, nil
	case ty.Kind == ir.TypeArray:
		elem, err := g.elem(decl, member, ty)
		if err != nil {
			return cParam{}, err
		}
		return single(fmt.Sprintf("const %s %s[%s]", elem, name, g.size(ty.Size)), name), nil
	case g.scalar(ty) || ty.Kind == ir.TypeString:
		return single(g.typeName(ty)+" "+name, name), nil
	default:
		return single(fmt.Sprintf("const %s* %s", g.baseName(ty), name), name), nil
	}
}

func (g *cgen) outParam(decl *ir.Decl, m *ir.Method, p *ir.Param) (cParam, error) {
	member := m.Name + "." + p.Name
	name := p.Name
	ty := g.expand(p.Type)
	switch {
	case ty.Kind == ir.TypeRequest:
		return cParam{}, g.unsupported(decl, member, ty)
	case ty.Kind == ir.TypeVector:
		elem, err := g.elem(decl, member, ty)
		if err != nil {
			return cParam{}, err
		}
		return cParam{
			decls: []string{
				fmt.Sprintf("%s* out_%s_list", elem, name),
				fmt.Sprintf("size_t %s_count", name),
				fmt.Sprintf("size_t* out_%s_actual", name),
			},
			args: []string{"out_" + name + "_list", name + "_count", "out_" + name + "_actual"},
		}, nil
	case ty.Kind == ir.TypeArray:
		elem, err := g.elem(decl, member, ty)
		if err != nil {
			return cParam{}, err
		}
		return single(fmt.Sprintf("%s out_%s[%s]", elem, name, g.size(ty.Size)), "out_"+name), nil
	case ty.Kind == ir.TypeString:
		return cParam{
			decls: []string{
				fmt.Sprintf("char* out_%s", name),
				fmt.Sprintf("size_t %s_capacity", name),
			},
			args: []string{"out_" + name, name + "_capacity"},
		}, nil
	default:
		return single(fmt.Sprintf("%s* out_%s", g.typeName(ty), name), "out_"+name), nil
	}
}

func single(decl, arg string) cParam {
	return cParam{decls: []string{decl}, args: []string{arg}}
}

func describeMember(decl *ir.Decl, member string) string {
	if member == "" {
		return decl.Name
	}
	return decl.Name + "." + member
}
