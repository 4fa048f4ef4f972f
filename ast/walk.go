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

package ast

import "errors"

// SkipChildren may be returned by an enter function passed to
// [WalkEnterAndExit] to skip the children of the node just entered.
var SkipChildren = errors.New("skip children") //nolint:errname,revive // Mirrors fs.SkipDir.

// Walk visits every node of the tree rooted at root in source order, calling
// fn on each. If fn returns an error, the walk stops and returns it.
func Walk(root Node, fn func(Node) error) error {
	return WalkEnterAndExit(root, fn, nil)
}

// WalkEnterAndExit is like [Walk], but calls enter before visiting a node's
// children and exit after. Either function may be nil.
func WalkEnterAndExit(root Node, enter, exit func(Node) error) error {
	w := walker{enter: enter, exit: exit}
	return w.walk(root)
}

type walker struct {
	enter, exit func(Node) error
}

func (w *walker) walk(n Node) error {
	if isNil(n) {
		return nil
	}

	if w.enter != nil {
		switch err := w.enter(n); {
		case errors.Is(err, SkipChildren):
			return w.leave(n)
		case err != nil:
			return err
		}
	}

	for _, child := range children(n) {
		if err := w.walk(child); err != nil {
			return err
		}
	}
	return w.leave(n)
}

func (w *walker) leave(n Node) error {
	if w.exit == nil {
		return nil
	}
	return w.exit(n)
}

// children returns the direct children of n, in source order.
func children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if !isNil(n) {
				out = append(out, n)
			}
		}
	}
	annotations := func(a Annotations) {
		// Doc comments always precede attributes in practice, but either
		// order is accepted by the parser; sort by offset.
		if a.Doc != nil && a.Attributes != nil && a.Attributes.Span().Start < a.Doc.Span().Start {
			add(a.Attributes, a.Doc)
			return
		}
		add(a.Doc, a.Attributes)
	}

	switch n := n.(type) {
	case *File:
		annotations(Annotations{Attributes: n.Attributes, Doc: n.Doc})
		add(n.Library)
		for _, u := range n.Usings {
			add(u)
		}
		for _, d := range n.Decls {
			add(d)
		}
	case *LibraryDecl:
		add(n.Name)
	case *Using:
		add(n.Name, n.As)
	case *CompoundIdent:
		for _, part := range n.Parts {
			add(part)
		}
	case *AttributeList:
		for _, attr := range n.Attributes {
			add(attr)
		}
	case *Attribute:
		add(n.Name, n.Value)

	case *Const:
		annotations(n.Annotations)
		add(n.Type, n.Name, n.Value)
	case *Enum:
		annotations(n.Annotations)
		add(n.Name, n.Subtype)
		for _, m := range n.Members {
			add(m)
		}
	case *EnumMember:
		annotations(n.Annotations)
		add(n.Name, n.Value)
	case *Struct:
		annotations(n.Annotations)
		add(n.Name)
		for _, m := range n.Members {
			add(m)
		}
	case *StructMember:
		annotations(n.Annotations)
		add(n.Type, n.Name, n.Default)
	case *Union:
		annotations(n.Annotations)
		add(n.Name)
		for _, m := range n.Members {
			add(m)
		}
	case *UnionMember:
		annotations(n.Annotations)
		add(n.Type, n.Name)
	case *Interface:
		annotations(n.Annotations)
		add(n.Name)
		for _, m := range n.Methods {
			add(m)
		}
	case *Method:
		annotations(n.Annotations)
		add(n.Name)
		for _, p := range n.Request {
			add(p)
		}
		for _, p := range n.Response {
			add(p)
		}
	case *Param:
		add(n.Type, n.Name)
	case *Alias:
		annotations(n.Annotations)
		add(n.Name, n.Target)

	case *Type:
		add(n.Name, n.Elem, n.Subtype, n.Size)
	}
	return out
}

// isNil returns whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *File:
		return n == nil
	case *LibraryDecl:
		return n == nil
	case *Using:
		return n == nil
	case *Ident:
		return n == nil
	case *CompoundIdent:
		return n == nil
	case *AttributeList:
		return n == nil
	case *Attribute:
		return n == nil
	case *DocComment:
		return n == nil
	case *StringLit:
		return n == nil
	case *IntLit:
		return n == nil
	case *BoolLit:
		return n == nil
	case *Type:
		return n == nil
	case *Const, *Enum, *Struct, *Union, *Interface, *Alias:
		return false
	case *EnumMember:
		return n == nil
	case *StructMember:
		return n == nil
	case *UnionMember:
		return n == nil
	case *Method:
		return n == nil
	case *Param:
		return n == nil
	default:
		return false
	}
}
