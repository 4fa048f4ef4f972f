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
	"encoding/json"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// The JSON schema document. Field order here is output order.
type (
	jsonDocument struct {
		Libraries []jsonLibrary `json:"libraries"`
	}

	jsonLibrary struct {
		Name         string          `json:"name"`
		Files        []string        `json:"files"`
		Attributes   []jsonAttribute `json:"attributes,omitempty"`
		Imports      []string        `json:"imports,omitempty"`
		Declarations []jsonDecl      `json:"declarations"`
	}

	jsonAttribute struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}

	jsonDecl struct {
		Kind       string          `json:"kind"`
		Name       string          `json:"name"`
		Location   jsonLocation    `json:"location"`
		Attributes []jsonAttribute `json:"attributes,omitempty"`
		Type       *jsonType       `json:"type,omitempty"`
		Value      *jsonConstant   `json:"value,omitempty"`
		Members    []jsonMember    `json:"members,omitempty"`
		Methods    []jsonMethod    `json:"methods,omitempty"`
	}

	jsonLocation struct {
		File   string `json:"file"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}

	jsonMember struct {
		Name       string          `json:"name"`
		Attributes []jsonAttribute `json:"attributes,omitempty"`
		Type       *jsonType       `json:"type,omitempty"`
		Value      *jsonConstant   `json:"value,omitempty"`
	}

	jsonMethod struct {
		Name        string          `json:"name"`
		Attributes  []jsonAttribute `json:"attributes,omitempty"`
		Request     []jsonMember    `json:"request"`
		HasResponse bool            `json:"has_response"`
		Response    []jsonMember    `json:"response"`
	}

	jsonType struct {
		Kind       string        `json:"kind"`
		Primitive  string        `json:"primitive,omitempty"`
		Subtype    string        `json:"subtype,omitempty"`
		Identifier string        `json:"identifier,omitempty"`
		Element    *jsonType     `json:"element_type,omitempty"`
		Size       *jsonConstant `json:"size,omitempty"`
		Nullable   bool          `json:"nullable,omitempty"`
	}

	jsonConstant struct {
		Kind  string `json:"kind"`
		Value any    `json:"value"`
		// For references: the fully-qualified name of the const or enum
		// member.
		Ref string `json:"ref,omitempty"`
	}
)

var typeKindNames = [...]string{
	ir.TypePrimitive:  "primitive",
	ir.TypeString:     "string",
	ir.TypeVector:     "vector",
	ir.TypeArray:      "array",
	ir.TypeHandle:     "handle",
	ir.TypeRequest:    "request",
	ir.TypeIdentifier: "identifier",
}

// generateJSON writes the linked AST as an indented JSON document.
func generateJSON(ast *ir.AST, out *bytes.Buffer) error {
	doc := jsonDocument{Libraries: make([]jsonLibrary, 0, len(ast.Libraries))}
	for _, lib := range ast.Libraries {
		jl := jsonLibrary{
			Name:         lib.Name,
			Files:        lib.Files,
			Attributes:   jsonAttributes(lib.Attributes),
			Imports:      lib.Imports,
			Declarations: make([]jsonDecl, 0, len(lib.Decls)),
		}
		for _, decl := range lib.Decls {
			jl.Declarations = append(jl.Declarations, jsonDeclOf(ast, decl))
		}
		doc.Libraries = append(doc.Libraries, jl)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return reporter.Wrap(reporter.GenerationError, err, "encoding JSON")
	}
	return nil
}

// jsonAttributes keeps attributes in source order.
func jsonAttributes(attrs ir.Attributes) []jsonAttribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]jsonAttribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, jsonAttribute{Name: attr.Name, Value: attr.Value})
	}
	return out
}

func jsonDeclOf(ast *ir.AST, decl *ir.Decl) jsonDecl {
	loc := decl.Span.StartLoc()
	jd := jsonDecl{
		Kind:       decl.Kind.String(),
		Name:       decl.FullName(),
		Location:   jsonLocation{File: decl.File(), Line: loc.Line, Column: loc.Column},
		Attributes: jsonAttributes(decl.Attributes),
	}

	switch decl.Kind {
	case ir.DeclConst:
		jd.Type = jsonTypeOf(ast, decl.Const.Type)
		jd.Value = jsonConstantOf(ast, decl.Const.Value)
	case ir.DeclEnum:
		jd.Type = &jsonType{Kind: "primitive", Primitive: decl.Enum.Subtype.String()}
		for _, m := range decl.Enum.Members {
			jd.Members = append(jd.Members, jsonMember{
				Name:       m.Name,
				Attributes: jsonAttributes(m.Attributes),
				Value:      jsonConstantOf(ast, m.Value),
			})
		}
	case ir.DeclStruct:
		for _, m := range decl.Struct.Members {
			jm := jsonMember{
				Name:       m.Name,
				Attributes: jsonAttributes(m.Attributes),
				Type:       jsonTypeOf(ast, m.Type),
			}
			if m.Default != nil {
				jm.Value = jsonConstantOf(ast, m.Default)
			}
			jd.Members = append(jd.Members, jm)
		}
	case ir.DeclUnion:
		for _, m := range decl.Union.Members {
			jd.Members = append(jd.Members, jsonMember{
				Name:       m.Name,
				Attributes: jsonAttributes(m.Attributes),
				Type:       jsonTypeOf(ast, m.Type),
			})
		}
	case ir.DeclInterface:
		for _, m := range decl.Interface.Methods {
			jd.Methods = append(jd.Methods, jsonMethod{
				Name:        m.Name,
				Attributes:  jsonAttributes(m.Attributes),
				Request:     jsonParams(ast, m.Request),
				HasResponse: m.HasResponse,
				Response:    jsonParams(ast, m.Response),
			})
		}
	case ir.DeclAlias:
		jd.Type = jsonTypeOf(ast, decl.Alias.Target)
	}
	return jd
}

func jsonParams(ast *ir.AST, params []*ir.Param) []jsonMember {
	out := make([]jsonMember, 0, len(params))
	for _, p := range params {
		out = append(out, jsonMember{Name: p.Name, Type: jsonTypeOf(ast, p.Type)})
	}
	return out
}

func jsonTypeOf(ast *ir.AST, ty *ir.Type) *jsonType {
	jt := &jsonType{
		Kind:     typeKindNames[ty.Kind],
		Subtype:  ty.Subtype,
		Nullable: ty.Nullable,
	}
	switch ty.Kind {
	case ir.TypePrimitive:
		jt.Primitive = ty.Primitive.String()
	case ir.TypeVector, ir.TypeArray:
		jt.Element = jsonTypeOf(ast, ty.Elem)
	case ir.TypeIdentifier, ir.TypeRequest:
		jt.Identifier = ty.Ref.Format(ast)
	}
	if ty.Size != nil {
		jt.Size = jsonConstantOf(ast, ty.Size)
	}
	return jt
}

func jsonConstantOf(ast *ir.AST, c *ir.Constant) *jsonConstant {
	switch c.Kind {
	case ir.ConstInt:
		if v, ok := c.Int64(); ok {
			return &jsonConstant{Kind: "int", Value: v}
		}
		return &jsonConstant{Kind: "int", Value: c.Uint}
	case ir.ConstString:
		return &jsonConstant{Kind: "string", Value: c.Str}
	case ir.ConstBool:
		return &jsonConstant{Kind: "bool", Value: c.Bool}
	default:
		jc := &jsonConstant{Kind: "ref", Ref: c.Format(ast)}
		if value := c.Ref.Value(ast); value != nil {
			jc.Value = jsonConstantOf(ast, value).Value
		}
		return jc
	}
}
