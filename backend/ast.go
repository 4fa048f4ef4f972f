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

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// generateAST dumps the linked AST as a YAML document. Libraries appear in
// input order and declarations in declaration order, so the output is a
// function of the input alone.
func generateAST(ast *ir.AST, out *bytes.Buffer) error {
	d := &dumper{ast: ast}
	libs := seq()
	for _, lib := range ast.Libraries {
		libs.Content = append(libs.Content, d.library(lib))
	}
	root := mapping("libraries", libs)

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return reporter.Wrap(reporter.GenerationError, err, "encoding AST")
	}
	if err := enc.Close(); err != nil {
		return reporter.Wrap(reporter.GenerationError, err, "encoding AST")
	}
	return nil
}

type dumper struct {
	ast *ir.AST
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func seq(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}

// mapping builds a mapping node from alternating keys and values. Values
// may be strings or nodes; nil nodes are omitted.
func mapping(pairs ...any) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(pairs); i += 2 {
		var value *yaml.Node
		switch v := pairs[i+1].(type) {
		case string:
			value = scalar(v)
		case *yaml.Node:
			value = v
		default:
			panic(fmt.Sprintf("backend: unexpected YAML value %T", v))
		}
		if value == nil {
			continue
		}
		m.Content = append(m.Content, scalar(pairs[i].(string)), value)
	}
	return m
}

func (d *dumper) library(lib *ir.Library) *yaml.Node {
	files := seq()
	for _, f := range lib.Files {
		files.Content = append(files.Content, scalar(f))
	}
	var imports *yaml.Node
	if len(lib.Imports) > 0 {
		imports = seq()
		for _, imp := range lib.Imports {
			imports.Content = append(imports.Content, scalar(imp))
		}
	}
	decls := seq()
	for _, decl := range lib.Decls {
		decls.Content = append(decls.Content, d.decl(decl))
	}
	return mapping(
		"name", lib.Name,
		"files", files,
		"attributes", attributes(lib.Attributes),
		"imports", imports,
		"declarations", decls,
	)
}

func attributes(attrs ir.Attributes) *yaml.Node {
	if len(attrs) == 0 {
		return nil
	}
	m := mapping()
	for _, attr := range attrs {
		m.Content = append(m.Content, scalar(attr.Name), scalar(attr.Value))
	}
	return m
}

func (d *dumper) decl(decl *ir.Decl) *yaml.Node {
	m := mapping(
		"kind", decl.Kind.String(),
		"name", decl.Name,
		"fqn", decl.FullName(),
		"location", decl.Span.String(),
		"attributes", attributes(decl.Attributes),
	)
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, scalar(key), value)
	}

	switch decl.Kind {
	case ir.DeclConst:
		add("type", d.typ(decl.Const.Type))
		add("value", d.constant(decl.Const.Value))
	case ir.DeclEnum:
		add("type", scalar(decl.Enum.Subtype.String()))
		members := seq()
		for _, em := range decl.Enum.Members {
			members.Content = append(members.Content, mapping(
				"name", em.Name,
				"attributes", attributes(em.Attributes),
				"value", d.constant(em.Value),
			))
		}
		add("members", members)
	case ir.DeclStruct:
		members := seq()
		for _, sm := range decl.Struct.Members {
			var def *yaml.Node
			if sm.Default != nil {
				def = d.constant(sm.Default)
			}
			members.Content = append(members.Content, mapping(
				"name", sm.Name,
				"attributes", attributes(sm.Attributes),
				"type", d.typ(sm.Type),
				"default", def,
			))
		}
		add("members", members)
	case ir.DeclUnion:
		members := seq()
		for _, um := range decl.Union.Members {
			members.Content = append(members.Content, mapping(
				"name", um.Name,
				"attributes", attributes(um.Attributes),
				"type", d.typ(um.Type),
			))
		}
		add("members", members)
	case ir.DeclInterface:
		methods := seq()
		for _, method := range decl.Interface.Methods {
			var response *yaml.Node
			if method.HasResponse {
				response = d.params(method.Response)
			}
			methods.Content = append(methods.Content, mapping(
				"name", method.Name,
				"attributes", attributes(method.Attributes),
				"request", d.params(method.Request),
				"response", response,
			))
		}
		add("methods", methods)
	case ir.DeclAlias:
		add("target", d.typ(decl.Alias.Target))
	}
	return m
}

func (d *dumper) params(params []*ir.Param) *yaml.Node {
	out := seq()
	out.Style = yaml.FlowStyle
	for _, p := range params {
		out.Content = append(out.Content, mapping("name", p.Name, "type", d.typ(p.Type)))
	}
	return out
}

// typ renders a type with every reference fully qualified.
func (d *dumper) typ(ty *ir.Type) *yaml.Node {
	return scalar(ty.Format(d.ast))
}

func (d *dumper) constant(c *ir.Constant) *yaml.Node {
	switch c.Kind {
	case ir.ConstInt:
		v := strconv.FormatUint(c.Uint, 10)
		if c.Negative {
			v = "-" + v
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v}
	case ir.ConstBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(c.Bool)}
	case ir.ConstString:
		return scalar(c.Str)
	default:
		// References are written fully qualified, along with what they
		// evaluate to.
		m := mapping("ref", c.Format(d.ast))
		if value := c.Ref.Value(d.ast); value != nil {
			m.Content = append(m.Content, scalar("value"), d.constant(value))
		}
		m.Style = yaml.FlowStyle
		return m
	}
}
