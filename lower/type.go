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

package lower

import (
	"fmt"

	"github.com/bufbuild/banjocompile/ast"
	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/token"
)

func (l *lowerer) lowerType(ty *ast.Type, member string) (*ir.Type, error) {
	out := &ir.Type{Span: ty.Span(), Nullable: ty.Nullable}

	var err error
	switch ty.Kind {
	case ast.TypeNamed:
		name := ty.Name
		if len(name.Parts) == 1 {
			if prim, ok := ir.PrimitiveByName(name.Parts[0].Name); ok {
				if ty.Nullable {
					return nil, l.errorf(ty, member, "primitive type %s cannot be nullable", prim)
				}
				out.Kind = ir.TypePrimitive
				out.Primitive = prim
				return out, nil
			}
		}
		// Library names may contain keywords, as in ddk.protocol.gpio, but
		// the declaration name itself may not be one.
		if last := name.Parts[len(name.Parts)-1]; token.IsReserved(last.Name) {
			return nil, l.errorf(last, member, "reserved keyword %q cannot name a type", last.Name)
		}
		out.Kind = ir.TypeIdentifier
		out.Ref = typeRef(name)

	case ast.TypeString:
		out.Kind = ir.TypeString
		if out.Size, err = l.lowerBound(ty, member); err != nil {
			return nil, err
		}

	case ast.TypeVector, ast.TypeArray:
		out.Kind = ir.TypeVector
		if ty.Kind == ast.TypeArray {
			out.Kind = ir.TypeArray
			if ty.Size == nil {
				return nil, l.errorf(ty, member, "array type %s requires a length", ty)
			}
			if ty.Nullable {
				return nil, l.errorf(ty, member, "array type %s cannot be nullable", ty)
			}
		}
		if out.Elem, err = l.lowerType(ty.Elem, member); err != nil {
			return nil, err
		}
		if out.Size, err = l.lowerBound(ty, member); err != nil {
			return nil, err
		}

	case ast.TypeHandle:
		out.Kind = ir.TypeHandle
		if ty.Subtype != nil {
			out.Subtype = ty.Subtype.Name
		}

	case ast.TypeRequest:
		out.Kind = ir.TypeRequest
		out.Ref = typeRef(ty.Name)

	default:
		panic(fmt.Sprintf("banjocompile/lower: unexpected type kind %d", ty.Kind))
	}
	return out, nil
}

func typeRef(name *ast.CompoundIdent) *ir.TypeRef {
	namespace, last := name.Split()
	return &ir.TypeRef{
		Namespace: namespace,
		Name:      last,
		Span:      name.Span(),
	}
}

// lowerBound lowers the size of a string, vector or array, which must be a
// positive integer or a reference to a constant.
func (l *lowerer) lowerBound(ty *ast.Type, member string) (*ir.Constant, error) {
	switch size := ty.Size.(type) {
	case nil:
		return nil, nil
	case *ast.IntLit:
		if size.Negative || size.Uint == 0 {
			return nil, l.errorf(size, member, "bound of %s must be positive", ty)
		}
		if size.Uint > 1<<32-1 {
			return nil, l.errorf(size, member, "bound of %s does not fit in uint32", ty)
		}
		return intConstant(size), nil
	case *ast.CompoundIdent:
		return constantRef(size), nil
	default:
		return nil, l.errorf(size, member, "bound of %s must be an integer", ty)
	}
}

// lowerConstant lowers a constant that is assigned to a value of type ty.
//
// Literals are checked against ty when ty is a primitive or string; when ty
// names another declaration, the check waits until the linker has resolved
// it.
func (l *lowerer) lowerConstant(c ast.Constant, ty *ir.Type, member, what string) (*ir.Constant, error) {
	var out *ir.Constant
	switch c := c.(type) {
	case *ast.IntLit:
		out = intConstant(c)
	case *ast.StringLit:
		out = &ir.Constant{Kind: ir.ConstString, Span: c.Span(), Str: c.Value}
	case *ast.BoolLit:
		out = &ir.Constant{Kind: ir.ConstBool, Span: c.Span(), Bool: c.Value}
	case *ast.CompoundIdent:
		out = constantRef(c)
	default:
		panic(fmt.Sprintf("banjocompile/lower: unexpected constant type %T", c))
	}

	switch ty.Kind {
	case ir.TypePrimitive, ir.TypeString:
		if out.Kind == ir.ConstRef {
			return out, nil
		}
		if msg := ir.CheckLiteral(ty, out); msg != "" {
			return nil, l.errorf(c, member, "%s of %s: %s", what, describe(l.decl, member), msg)
		}
	case ir.TypeIdentifier:
	default:
		return nil, l.errorf(c, member, "%s of %s: type %s cannot have a constant value", what, describe(l.decl, member), ty)
	}
	return out, nil
}

func describe(decl, member string) string {
	if member == "" {
		return decl
	}
	return decl + "." + member
}

func intConstant(lit *ast.IntLit) *ir.Constant {
	return &ir.Constant{
		Kind:     ir.ConstInt,
		Span:     lit.Span(),
		Uint:     lit.Uint,
		Negative: lit.Negative,
		Text:     lit.Text,
	}
}

func constantRef(name *ast.CompoundIdent) *ir.Constant {
	namespace, last := name.Split()
	return &ir.Constant{
		Kind: ir.ConstRef,
		Span: name.Span(),
		Ref: &ir.ConstantRef{
			Namespace: namespace,
			Name:      last,
			Span:      name.Span(),
		},
	}
}
