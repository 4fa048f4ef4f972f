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
)

func (l *lowerer) lowerDecl(decl ast.Decl) (*ir.Decl, error) {
	name := decl.DeclName()
	l.decl = name.Name
	defer func() { l.decl = "" }()

	if err := l.checkName(name, "", decl.Keyword()+" name"); err != nil {
		return nil, err
	}
	attrs, err := l.lowerAnnotations(decl.Annotated(), "")
	if err != nil {
		return nil, err
	}

	out := &ir.Decl{
		Name:       name.Name,
		Span:       name.Span(),
		Attributes: attrs,
	}

	switch decl := decl.(type) {
	case *ast.Const:
		out.Kind = ir.DeclConst
		out.Const, err = l.lowerConst(decl)
	case *ast.Enum:
		out.Kind = ir.DeclEnum
		out.Enum, err = l.lowerEnum(decl)
	case *ast.Struct:
		out.Kind = ir.DeclStruct
		out.Struct, err = l.lowerStruct(decl)
	case *ast.Union:
		out.Kind = ir.DeclUnion
		out.Union, err = l.lowerUnion(decl)
	case *ast.Interface:
		out.Kind = ir.DeclInterface
		out.Interface, err = l.lowerInterface(decl)
	case *ast.Alias:
		out.Kind = ir.DeclAlias
		out.Alias, err = l.lowerAlias(decl)
	default:
		panic(fmt.Sprintf("banjocompile/lower: unexpected declaration type %T", decl))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *lowerer) lowerConst(decl *ast.Const) (*ir.Const, error) {
	ty, err := l.lowerType(decl.Type, "")
	if err != nil {
		return nil, err
	}
	value, err := l.lowerConstant(decl.Value, ty, "", "value")
	if err != nil {
		return nil, err
	}
	return &ir.Const{Type: ty, Value: value}, nil
}

func (l *lowerer) lowerAlias(decl *ast.Alias) (*ir.Alias, error) {
	ty, err := l.lowerType(decl.Target, "")
	if err != nil {
		return nil, err
	}
	return &ir.Alias{Target: ty}, nil
}

func (l *lowerer) lowerEnum(decl *ast.Enum) (*ir.Enum, error) {
	out := &ir.Enum{Subtype: ir.Uint32}
	if decl.Subtype != nil {
		sub := decl.Subtype
		prim, ok := ir.Primitive(0), false
		if sub.Kind == ast.TypeNamed && len(sub.Name.Parts) == 1 {
			prim, ok = ir.PrimitiveByName(sub.Name.Parts[0].Name)
		}
		if !ok || !prim.IsIntegral() || sub.Nullable {
			return nil, l.errorf(sub, "", "underlying type of enum %s must be an integral primitive, not %s", l.decl, sub)
		}
		out.Subtype = prim
	}

	names := make(memberSet)
	type intValue struct {
		magnitude uint64
		negative  bool
	}
	values := make(map[intValue]*ast.EnumMember)
	for _, member := range decl.Members {
		if err := l.checkName(member.Name, member.Name.Name, "enum member name"); err != nil {
			return nil, err
		}
		if err := l.addMember(names, member.Name, "member"); err != nil {
			return nil, err
		}
		attrs, err := l.lowerAnnotations(member.Annotations, member.Name.Name)
		if err != nil {
			return nil, err
		}

		value := intConstant(member.Value)
		if !out.Subtype.Fits(value.Uint, value.Negative) {
			return nil, l.errorf(member.Value, member.Name.Name,
				"value %s of %s.%s does not fit in %s", value.Text, l.decl, member.Name.Name, out.Subtype)
		}

		key := intValue{value.Uint, value.Negative}
		if prev, ok := values[key]; ok {
			return nil, l.errorf(member.Value, member.Name.Name,
				"value %s of %s.%s duplicates %s.%s", value.Text, l.decl, member.Name.Name, l.decl, prev.Name.Name).
				Note(prev.Value, "previous use of this value")
		}
		values[key] = member

		out.Members = append(out.Members, &ir.EnumMember{
			Name:       member.Name.Name,
			Span:       member.Name.Span(),
			Attributes: attrs,
			Value:      value,
		})
	}
	return out, nil
}

func (l *lowerer) lowerStruct(decl *ast.Struct) (*ir.Struct, error) {
	out := new(ir.Struct)
	names := make(memberSet)
	for _, member := range decl.Members {
		name := member.Name.Name
		if err := l.checkName(member.Name, name, "struct member name"); err != nil {
			return nil, err
		}
		if err := l.addMember(names, member.Name, "member"); err != nil {
			return nil, err
		}
		attrs, err := l.lowerAnnotations(member.Annotations, name)
		if err != nil {
			return nil, err
		}
		ty, err := l.lowerType(member.Type, name)
		if err != nil {
			return nil, err
		}

		lowered := &ir.StructMember{
			Name:       name,
			Span:       member.Name.Span(),
			Attributes: attrs,
			Type:       ty,
		}
		if member.Default != nil {
			if lowered.Default, err = l.lowerConstant(member.Default, ty, name, "default value"); err != nil {
				return nil, err
			}
		}
		out.Members = append(out.Members, lowered)
	}
	return out, nil
}

func (l *lowerer) lowerUnion(decl *ast.Union) (*ir.Union, error) {
	out := new(ir.Union)
	names := make(memberSet)
	for _, member := range decl.Members {
		name := member.Name.Name
		if err := l.checkName(member.Name, name, "union member name"); err != nil {
			return nil, err
		}
		if err := l.addMember(names, member.Name, "member"); err != nil {
			return nil, err
		}
		attrs, err := l.lowerAnnotations(member.Annotations, name)
		if err != nil {
			return nil, err
		}
		ty, err := l.lowerType(member.Type, name)
		if err != nil {
			return nil, err
		}

		out.Members = append(out.Members, &ir.UnionMember{
			Name:       name,
			Span:       member.Name.Span(),
			Attributes: attrs,
			Type:       ty,
		})
	}
	return out, nil
}

func (l *lowerer) lowerInterface(decl *ast.Interface) (*ir.Interface, error) {
	out := new(ir.Interface)
	names := make(memberSet)
	for _, method := range decl.Methods {
		name := method.Name.Name
		if err := l.checkName(method.Name, name, "method name"); err != nil {
			return nil, err
		}
		if err := l.addMember(names, method.Name, "method"); err != nil {
			return nil, err
		}
		attrs, err := l.lowerAnnotations(method.Annotations, name)
		if err != nil {
			return nil, err
		}

		lowered := &ir.Method{
			Name:        name,
			Span:        method.Name.Span(),
			Attributes:  attrs,
			HasResponse: method.HasResponse,
		}
		if lowered.Request, err = l.lowerParams(method, method.Request); err != nil {
			return nil, err
		}
		if lowered.Response, err = l.lowerParams(method, method.Response); err != nil {
			return nil, err
		}
		out.Methods = append(out.Methods, lowered)
	}
	return out, nil
}

// lowerParams lowers one parameter list. Request and response lists are
// separate scopes, so the same name may appear once in each.
func (l *lowerer) lowerParams(method *ast.Method, params []*ast.Param) ([]*ir.Param, error) {
	var out []*ir.Param
	names := make(memberSet)
	for _, param := range params {
		member := joinMember(method.Name.Name, param.Name.Name)
		if err := l.checkName(param.Name, member, "parameter name"); err != nil {
			return nil, err
		}
		if prev, ok := names[param.Name.Name]; ok {
			return nil, l.errorf(param.Name, member, "duplicate parameter %q in %s.%s",
				param.Name.Name, l.decl, method.Name.Name).
				Note(prev, "previously declared here")
		}
		names[param.Name.Name] = param.Name

		ty, err := l.lowerType(param.Type, member)
		if err != nil {
			return nil, err
		}
		out = append(out, &ir.Param{
			Name: param.Name.Name,
			Span: param.Name.Span(),
			Type: ty,
		})
	}
	return out, nil
}
