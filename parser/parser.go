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
	"fmt"

	"github.com/bufbuild/banjocompile/ast"
	"github.com/bufbuild/banjocompile/reporter"
	"github.com/bufbuild/banjocompile/source"
	"github.com/bufbuild/banjocompile/token"
)

// Parse parses a single Banjo source file.
//
// Parsing stops at the first error, which is always a *[reporter.Error] of
// kind [reporter.SyntaxError]. Parse has no side effects and may be called
// concurrently for different files.
func Parse(file *source.File) (*ast.File, error) {
	tokens, err := lex(file)
	if err != nil {
		return nil, err
	}

	p := &parser{file: file, cursor: token.NewCursor(tokens)}
	return p.parseFile()
}

// ParseString is a convenience wrapper around [Parse] for in-memory text.
func ParseString(path, text string) (*ast.File, error) {
	return Parse(source.NewFile(path, text))
}

type parser struct {
	file   *source.File
	cursor *token.Cursor

	// Nesting depth of the type being parsed.
	depth int
}

// peek returns the next significant token. Doc comments in positions where
// they cannot attach to anything are skipped like ordinary comments.
func (p *parser) peek() token.Token {
	for p.cursor.Peek().Kind == token.DocComment {
		p.cursor.Next()
	}
	return p.cursor.Peek()
}

func (p *parser) next() token.Token {
	p.peek()
	return p.cursor.Next()
}

// errExpected builds the "expected X, found Y" diagnostic for the next token.
func (p *parser) errExpected(what string) *reporter.Error {
	tok := p.peek()
	return reporter.Errorf(reporter.SyntaxError, tok.Span, "expected %s, found %s", what, tok.Describe())
}

// punct consumes the punctuation text, or fails.
func (p *parser) punct(text string) (token.Token, error) {
	tok := p.peek()
	if tok.Kind != token.Punct || tok.Text != text {
		return tok, p.errExpected(fmt.Sprintf("%q", text))
	}
	return p.next(), nil
}

// accept consumes the punctuation text if it is next.
func (p *parser) accept(text string) (token.Token, bool) {
	tok := p.peek()
	if tok.Kind != token.Punct || tok.Text != text {
		return tok, false
	}
	return p.next(), true
}

func (p *parser) ident(what string) (*ast.Ident, error) {
	tok := p.peek()
	if tok.Kind != token.Ident {
		return nil, p.errExpected(what)
	}
	p.next()
	return &ast.Ident{Spanned: spanned(tok.Span), Name: tok.Text}, nil
}

func (p *parser) compound(what string) (*ast.CompoundIdent, error) {
	first, err := p.ident(what)
	if err != nil {
		return nil, err
	}

	name := &ast.CompoundIdent{Parts: []*ast.Ident{first}}
	for p.peek().Is(".") && p.cursor.PeekAt(1).Kind == token.Ident {
		p.next()
		part, _ := p.ident(what)
		name.Parts = append(name.Parts, part)
	}
	name.Loc = source.Join(first, name.Parts[len(name.Parts)-1])
	return name, nil
}

func (p *parser) parseFile() (*ast.File, error) {
	file := &ast.File{Source: p.file}

	// A leading annotation block belongs to the library if one follows;
	// otherwise it belongs to the first declaration.
	annotations, err := p.annotations()
	if err != nil {
		return nil, err
	}

	if p.peek().IsKeyword(token.Library) {
		file.Attributes = annotations.Attributes
		file.Doc = annotations.Doc
		annotations = ast.Annotations{}

		kw := p.next()
		name, err := p.compound("library name")
		if err != nil {
			return nil, err
		}
		semi, err := p.punct(";")
		if err != nil {
			return nil, err
		}
		file.Library = &ast.LibraryDecl{
			Spanned: spanned(source.Join(kw.Span, semi.Span)),
			Name:    name,
		}
	}

	// Imports come before declarations; `using X = T;` is an alias and ends
	// the import section.
	for annotations == (ast.Annotations{}) && p.atImport() {
		using, err := p.parseUsing()
		if err != nil {
			return nil, err
		}
		file.Usings = append(file.Usings, using)
	}

	for {
		if annotations == (ast.Annotations{}) {
			annotations, err = p.annotations()
			if err != nil {
				return nil, err
			}
		}
		if p.peek().Kind == token.EOF {
			if annotations.Attributes != nil {
				return nil, p.errExpected("declaration")
			}
			break
		}

		decl, err := p.parseDecl(annotations)
		if err != nil {
			return nil, err
		}
		file.Decls = append(file.Decls, decl)
		annotations = ast.Annotations{}
	}

	file.Loc = p.file.Span(0, len(p.file.Text()))
	return file, nil
}

// atImport reports whether the next significant token starts an import
// rather than an alias. It does not consume doc comments, since those may
// belong to the declaration that follows the imports.
func (p *parser) atImport() bool {
	n := 0
	for p.cursor.PeekAt(n).Kind == token.DocComment {
		n++
	}
	if !p.cursor.PeekAt(n).IsKeyword(token.Using) {
		return false
	}
	isAlias := p.cursor.PeekAt(n+1).Kind == token.Ident && p.cursor.PeekAt(n+2).Is("=")
	return !isAlias
}

func (p *parser) parseUsing() (*ast.Using, error) {
	kw := p.next()
	name, err := p.compound("library name")
	if err != nil {
		return nil, err
	}

	using := &ast.Using{Name: name}
	if p.peek().IsKeyword(token.As) {
		p.next()
		if using.As, err = p.ident("identifier"); err != nil {
			return nil, err
		}
	}

	semi, err := p.punct(";")
	if err != nil {
		return nil, err
	}
	using.Loc = source.Join(kw.Span, semi.Span)
	return using, nil
}

// annotations parses any doc comments and attribute lists preceding a
// declaration or member.
func (p *parser) annotations() (ast.Annotations, error) {
	var out ast.Annotations
	for {
		switch tok := p.cursor.Peek(); {
		case tok.Kind == token.DocComment:
			p.cursor.Next()
			if out.Doc == nil {
				out.Doc = &ast.DocComment{Spanned: spanned(tok.Span)}
			}
			out.Doc.Lines = append(out.Doc.Lines, tok.Value)
			out.Doc.Loc = source.Join(out.Doc.Loc, tok.Span)

		case tok.Is("["):
			if out.Attributes != nil {
				return out, p.errExpected("declaration")
			}
			attrs, err := p.attributeList()
			if err != nil {
				return out, err
			}
			out.Attributes = attrs

		default:
			return out, nil
		}
	}
}

func (p *parser) attributeList() (*ast.AttributeList, error) {
	open := p.next()
	list := new(ast.AttributeList)
	for {
		name, err := p.ident("attribute name")
		if err != nil {
			return nil, err
		}
		attr := &ast.Attribute{Spanned: name.Spanned, Name: name}
		if _, ok := p.accept("="); ok {
			tok := p.peek()
			if tok.Kind != token.String {
				return nil, p.errExpected("string literal")
			}
			p.next()
			attr.Value = &ast.StringLit{Spanned: spanned(tok.Span), Value: tok.Value}
			attr.Loc = source.Join(name, tok.Span)
		}
		list.Attributes = append(list.Attributes, attr)

		if _, ok := p.accept(","); ok {
			continue
		}
		end, err := p.punct("]")
		if err != nil {
			return nil, err
		}
		list.Loc = source.Join(open.Span, end.Span)
		return list, nil
	}
}

func spanned(span source.Span) ast.Spanned {
	return ast.Spanned{Loc: span}
}
