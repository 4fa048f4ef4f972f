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

package parser

import (
	"github.com/bufbuild/banjocompile/ast"
	"github.com/bufbuild/banjocompile/source"
	"github.com/bufbuild/banjocompile/token"
)

func (p *parser) parseDecl(annotations ast.Annotations) (ast.Decl, error) {
	tok := p.peek()
	switch {
	case tok.IsKeyword(token.Const):
		return p.parseConst(annotations)
	case tok.IsKeyword(token.Enum):
		return p.parseEnum(annotations)
	case tok.IsKeyword(token.Struct):
		return p.parseStruct(annotations)
	case tok.IsKeyword(token.Union):
		return p.parseUnion(annotations)
	case tok.IsKeyword(token.Interface), tok.IsKeyword(token.Protocol):
		return p.parseInterface(annotations)
	case tok.IsKeyword(token.Using):
		return p.parseAlias(annotations)
	default:
		return nil, p.errExpected("declaration")
	}
}

// declHead parses the keyword and name that start every declaration.
func (p *parser) declHead(annotations ast.Annotations) (token.Token, ast.DeclBase, error) {
	kw := p.next()
	name, err := p.ident(kw.Text + " name")
	if err != nil {
		return kw, ast.DeclBase{}, err
	}
	return kw, ast.DeclBase{Annotations: annotations, Name: name}, nil
}

// declTail parses the closing `;` of a declaration, and returns the span of
// the whole declaration.
func (p *parser) declTail(kw token.Token) (source.Span, error) {
	semi, err := p.punct(";")
	if err != nil {
		return source.Span{}, err
	}
	return source.Join(kw.Span, semi.Span), nil
}

func (p *parser) parseConst(annotations ast.Annotations) (*ast.Const, error) {
	kw := p.next()
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.ident("const name")
	if err != nil {
		return nil, err
	}
	if _, err := p.punct("="); err != nil {
		return nil, err
	}
	value, err := p.parseConstant()
	if err != nil {
		return nil, err
	}

	decl := &ast.Const{
		DeclBase: ast.DeclBase{Annotations: annotations, Name: name},
		Type:     ty,
		Value:    value,
	}
	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseAlias(annotations ast.Annotations) (*ast.Alias, error) {
	kw, base, err := p.declHead(annotations)
	if err != nil {
		return nil, err
	}
	if _, err := p.punct("="); err != nil {
		return nil, err
	}

	decl := &ast.Alias{DeclBase: base}
	if decl.Target, err = p.parseType(); err != nil {
		return nil, err
	}
	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseEnum(annotations ast.Annotations) (*ast.Enum, error) {
	kw, base, err := p.declHead(annotations)
	if err != nil {
		return nil, err
	}

	decl := &ast.Enum{DeclBase: base}
	if _, ok := p.accept(":"); ok {
		if decl.Subtype, err = p.parseType(); err != nil {
			return nil, err
		}
	}

	err = p.body(func(annotations ast.Annotations) error {
		name, err := p.ident("enum member name")
		if err != nil {
			return err
		}
		if _, err := p.punct("="); err != nil {
			return err
		}
		tok := p.peek()
		if tok.Kind != token.Int {
			return p.errExpected("integer literal")
		}
		p.next()
		semi, err := p.punct(";")
		if err != nil {
			return err
		}

		decl.Members = append(decl.Members, &ast.EnumMember{
			Spanned:     spanned(source.Join(name, semi.Span)),
			Annotations: annotations,
			Name:        name,
			Value:       intLit(tok),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseStruct(annotations ast.Annotations) (*ast.Struct, error) {
	kw, base, err := p.declHead(annotations)
	if err != nil {
		return nil, err
	}

	decl := &ast.Struct{DeclBase: base}
	err = p.body(func(annotations ast.Annotations) error {
		ty, err := p.parseType()
		if err != nil {
			return err
		}
		name, err := p.ident("struct member name")
		if err != nil {
			return err
		}

		member := &ast.StructMember{Annotations: annotations, Type: ty, Name: name}
		if _, ok := p.accept("="); ok {
			if member.Default, err = p.parseConstant(); err != nil {
				return err
			}
		}
		semi, err := p.punct(";")
		if err != nil {
			return err
		}

		member.Loc = source.Join(ty, semi.Span)
		decl.Members = append(decl.Members, member)
		return nil
	})
	if err != nil {
		return nil, err
	}

	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseUnion(annotations ast.Annotations) (*ast.Union, error) {
	kw, base, err := p.declHead(annotations)
	if err != nil {
		return nil, err
	}

	decl := &ast.Union{DeclBase: base}
	err = p.body(func(annotations ast.Annotations) error {
		ty, err := p.parseType()
		if err != nil {
			return err
		}
		name, err := p.ident("union member name")
		if err != nil {
			return err
		}
		semi, err := p.punct(";")
		if err != nil {
			return err
		}

		decl.Members = append(decl.Members, &ast.UnionMember{
			Spanned:     spanned(source.Join(ty, semi.Span)),
			Annotations: annotations,
			Type:        ty,
			Name:        name,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseInterface(annotations ast.Annotations) (*ast.Interface, error) {
	kw, base, err := p.declHead(annotations)
	if err != nil {
		return nil, err
	}

	decl := &ast.Interface{DeclBase: base, Kw: kw.Text}
	err = p.body(func(annotations ast.Annotations) error {
		method, err := p.parseMethod(annotations)
		if err != nil {
			return err
		}
		decl.Methods = append(decl.Methods, method)
		return nil
	})
	if err != nil {
		return nil, err
	}

	decl.Loc, err = p.declTail(kw)
	return decl, err
}

func (p *parser) parseMethod(annotations ast.Annotations) (*ast.Method, error) {
	name, err := p.ident("method name")
	if err != nil {
		return nil, err
	}

	method := &ast.Method{Annotations: annotations, Name: name}
	if method.Request, err = p.parseParams(); err != nil {
		return nil, err
	}
	if _, ok := p.accept("->"); ok {
		method.HasResponse = true
		if method.Response, err = p.parseParams(); err != nil {
			return nil, err
		}
	}

	semi, err := p.punct(";")
	if err != nil {
		return nil, err
	}
	method.Loc = source.Join(name, semi.Span)
	return method, nil
}

func (p *parser) parseParams() ([]*ast.Param, error) {
	if _, err := p.punct("("); err != nil {
		return nil, err
	}

	var params []*ast.Param
	if _, ok := p.accept(")"); ok {
		return params, nil
	}
	for {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.ident("parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{
			Spanned: spanned(source.Join(ty, name)),
			Type:    ty,
			Name:    name,
		})

		if _, ok := p.accept(","); ok {
			continue
		}
		if _, err := p.punct(")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// body parses a braced list of members, calling member once for each. Each
// member may be preceded by annotations.
func (p *parser) body(member func(ast.Annotations) error) error {
	if _, err := p.punct("{"); err != nil {
		return err
	}
	for {
		annotations, err := p.annotations()
		if err != nil {
			return err
		}
		if p.peek().Is("}") {
			if annotations.Attributes != nil {
				return p.errExpected("member")
			}
			p.next()
			return nil
		}
		if err := member(annotations); err != nil {
			return err
		}
	}
}
