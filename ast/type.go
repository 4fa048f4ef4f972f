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

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeKind identifies the syntactic form of a [Type].
type TypeKind int8

const (
	// A (possibly dotted) name. Primitive types are names too; lowering
	// tells them apart.
	TypeNamed TypeKind = iota
	// string or string:N.
	TypeString
	// vector<T> or vector<T>:N.
	TypeVector
	// array<T>:N.
	TypeArray
	// handle or handle<subtype>.
	TypeHandle
	// request<Interface>.
	TypeRequest
)

// Type is a type expression.
type Type struct {
	Spanned
	Kind TypeKind

	// Set for TypeNamed and TypeRequest.
	Name *CompoundIdent
	// Set for TypeVector and TypeArray.
	Elem *Type
	// The optional bound of a string or vector, or the length of an array.
	Size Constant
	// The optional subtype of a handle.
	Subtype *Ident
	// Whether the type is followed by a `?`.
	Nullable bool
}

// String renders this type in Banjo syntax.
func (t *Type) String() string {
	if t == nil {
		return ""
	}

	var buf strings.Builder
	switch t.Kind {
	case TypeNamed:
		buf.WriteString(t.Name.String())
	case TypeString:
		buf.WriteString("string")
	case TypeVector:
		fmt.Fprintf(&buf, "vector<%s>", t.Elem)
	case TypeArray:
		fmt.Fprintf(&buf, "array<%s>", t.Elem)
	case TypeHandle:
		buf.WriteString("handle")
		if t.Subtype != nil {
			fmt.Fprintf(&buf, "<%s>", t.Subtype.Name)
		}
	case TypeRequest:
		fmt.Fprintf(&buf, "request<%s>", t.Name)
	}
	if t.Size != nil {
		fmt.Fprintf(&buf, ":%s", ConstantString(t.Size))
	}
	if t.Nullable {
		buf.WriteByte('?')
	}
	return buf.String()
}

// Constant is a constant expression: a literal or a reference to a named
// constant.
//
// The set of implementations is closed: *IntLit, *StringLit, *BoolLit and
// *CompoundIdent.
type Constant interface {
	Node
	constantNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Spanned
	Text     string
	Uint     uint64
	Negative bool
}

// StringLit is a string literal; Value is the unescaped contents.
type StringLit struct {
	Spanned
	Value string
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Spanned
	Value bool
}

func (*IntLit) constantNode()        {}
func (*StringLit) constantNode()     {}
func (*BoolLit) constantNode()       {}
func (*CompoundIdent) constantNode() {}

// ConstantString renders a constant in Banjo syntax.
func ConstantString(c Constant) string {
	switch c := c.(type) {
	case *IntLit:
		return c.Text
	case *StringLit:
		return strconv.Quote(c.Value)
	case *BoolLit:
		return strconv.FormatBool(c.Value)
	case *CompoundIdent:
		return c.String()
	default:
		return ""
	}
}
