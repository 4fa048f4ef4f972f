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
	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/token"
)

// maxTypeDepth bounds how deeply vector and array types may nest, so that
// parsing, lowering and walking a type never exhaust the stack.
const maxTypeDepth = 256

func (p *parser) parseType() (*ast.Type, error) {
	tok := p.peek()
	if tok.Kind != token.Ident {
		return nil, p.errExpected("type")
	}

	ty := new(ast.Type)
	var err error
	switch {
	case tok.IsKeyword(token.StringType):
		p.next()
		ty.Kind = ast.TypeString
		if _, ok := p.accept(":"); ok {
			if ty.Size, err = p.parseConstant(); err != nil {
				return nil, err
			}
		}

	case tok.IsKeyword(token.Vector), tok.IsKeyword(token.Array):
		p.next()
		ty.Kind = ast.TypeVector
		if tok.IsKeyword(token.Array) {
			ty.Kind = ast.TypeArray
		}
		if ty.Elem, err = p.typeArg(); err != nil {
			return nil, err
		}

		if _, ok := p.accept(":"); ok {
			if ty.Size, err = p.parseConstant(); err != nil {
				return nil, err
			}
		}

	case tok.IsKeyword(token.Handle):
		p.next()
		ty.Kind = ast.TypeHandle
		if _, ok := p.accept("<"); ok {
			if ty.Subtype, err = p.ident("handle subtype"); err != nil {
				return nil, err
			}
			if _, err := p.punct(">"); err != nil {
				return nil, err
			}
		}

	case tok.IsKeyword(token.Request):
		p.next()
		ty.Kind = ast.TypeRequest
		if _, err := p.punct("<"); err != nil {
			return nil, err
		}
		if ty.Name, err = p.compound("interface name"); err != nil {
			return nil, err
		}
		if _, err := p.punct(">"); err != nil {
			return nil, err
		}

	default:
		ty.Kind = ast.TypeNamed
		if ty.Name, err = p.compound("type"); err != nil {
			return nil, err
		}
	}

	if _, ok := p.accept("?"); ok {
		ty.Nullable = true
	}
	ty.Loc = p.file.Span(tok.Start, p.cursor.Prev().End)
	return ty, nil
}

// typeArg parses the `<T>` of a vector or array.
func (p *parser) typeArg() (*ast.Type, error) {
	if _, err := p.punct("<"); err != nil {
		return nil, err
	}
	if p.depth >= maxTypeDepth {
		return nil, reporter.Errorf(reporter.SyntaxError, p.peek().Span,
			"type nesting too deep: at most %d levels are allowed", maxTypeDepth)
	}
	p.depth++
	elem, err := p.parseType()
	p.depth--
	if err != nil {
		return nil, err
	}
	if _, err := p.punct(">"); err != nil {
		return nil, err
	}
	return elem, nil
}

func (p *parser) parseConstant() (ast.Constant, error) {
	tok := p.peek()
	switch {
	case tok.Kind == token.Int:
		p.next()
		return intLit(tok), nil
	case tok.Kind == token.String:
		p.next()
		return &ast.StringLit{Spanned: spanned(tok.Span), Value: tok.Value}, nil
	case tok.IsKeyword(token.True), tok.IsKeyword(token.False):
		p.next()
		return &ast.BoolLit{Spanned: spanned(tok.Span), Value: tok.IsKeyword(token.True)}, nil
	case tok.Kind == token.Ident:
		name, err := p.compound("constant")
		if err != nil {
			return nil, err
		}
		return name, nil
	default:
		return nil, p.errExpected("constant")
	}
}

func intLit(tok token.Token) *ast.IntLit {
	return &ast.IntLit{
		Spanned:  spanned(tok.Span),
		Text:     tok.Text,
		Uint:     tok.Uint,
		Negative: tok.Negative,
	}
}
