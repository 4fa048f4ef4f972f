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

package ir

import (
	"fmt"

	"github.com/bufbuild/banjocompile/source"
)

// DeclKind is the kind of a [Decl].
type DeclKind int8

const (
	DeclConst DeclKind = iota + 1
	DeclEnum
	DeclStruct
	DeclUnion
	DeclInterface
	DeclAlias
)

// String implements [fmt.Stringer].
func (k DeclKind) String() string {
	switch k {
	case DeclConst:
		return "const"
	case DeclEnum:
		return "enum"
	case DeclStruct:
		return "struct"
	case DeclUnion:
		return "union"
	case DeclInterface:
		return "interface"
	case DeclAlias:
		return "alias"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Decl is a top-level declaration.
//
// Exactly one of the payload pointers is set, matching Kind.
type Decl struct {
	Kind    DeclKind
	Name    string
	Library string
	// The span of the declaration's name.
	Span       source.Span
	Attributes Attributes

	Const     *Const
	Enum      *Enum
	Struct    *Struct
	Union     *Union
	Interface *Interface
	Alias     *Alias
}

// FullName returns the fully-qualified name of this declaration.
func (d *Decl) FullName() string {
	return d.Library + "." + d.Name
}

// File returns the path of the file this declaration appears in.
func (d *Decl) File() string {
	return d.Span.Path()
}

// Const is `const T NAME = value;`.
type Const struct {
	Type  *Type
	Value *Constant
}

// Enum is a set of named integer values.
type Enum struct {
	// The underlying integral type. Defaults to uint32.
	Subtype Primitive
	Members []*EnumMember
}

// Member returns the member with the given name, or nil.
func (e *Enum) Member(name string) *EnumMember {
	for _, m := range e.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// EnumMember is a single named value of an [Enum].
type EnumMember struct {
	Name       string
	Span       source.Span
	Attributes Attributes
	Value      *Constant
}

// Struct is a record of ordered fields.
type Struct struct {
	Members []*StructMember
}

// StructMember is a single field of a [Struct].
type StructMember struct {
	Name       string
	Span       source.Span
	Attributes Attributes
	Type       *Type
	// May be nil.
	Default *Constant
}

// Union is a tagged set of variants.
type Union struct {
	Members []*UnionMember
}

// UnionMember is a single variant of a [Union].
type UnionMember struct {
	Name       string
	Span       source.Span
	Attributes Attributes
	Type       *Type
}

// Interface is a set of methods; `protocol` declarations lower to this too.
type Interface struct {
	Methods []*Method
}

// Method is a single method of an [Interface].
type Method struct {
	Name       string
	Span       source.Span
	Attributes Attributes
	Request    []*Param
	// Whether the method was declared with `->`. A method with
	// HasResponse set may still have an empty Response.
	HasResponse bool
	Response    []*Param
}

// Param is a single parameter of a [Method].
type Param struct {
	Name string
	Span source.Span
	Type *Type
}

// Alias is `using Name = T;`.
type Alias struct {
	Target *Type
}

// Members calls yield with the name and type of every typed member of d:
// struct fields, union variants, method parameters, an alias target, and a
// const's type. Method parameters are named "Method.param".
//
// This is the single place that knows where types live inside a
// declaration; resolution and validation both walk it.
func (d *Decl) Members(yield func(member string, ty *Type) bool) {
	switch d.Kind {
	case DeclConst:
		yield("", d.Const.Type)
	case DeclAlias:
		yield("", d.Alias.Target)
	case DeclStruct:
		for _, m := range d.Struct.Members {
			if !yield(m.Name, m.Type) {
				return
			}
		}
	case DeclUnion:
		for _, m := range d.Union.Members {
			if !yield(m.Name, m.Type) {
				return
			}
		}
	case DeclInterface:
		for _, method := range d.Interface.Methods {
			for _, p := range method.Request {
				if !yield(method.Name+"."+p.Name, p.Type) {
					return
				}
			}
			for _, p := range method.Response {
				if !yield(method.Name+"."+p.Name, p.Type) {
					return
				}
			}
		}
	}
}

// Constants calls yield with every constant expression appearing in d:
// const values, struct defaults, enum values, and type bounds.
func (d *Decl) Constants(yield func(member string, target *Type, c *Constant) bool) {
	bounds := func(member string, ty *Type) bool {
		for t := range ty.Walk {
			if t.Size != nil && !yield(member, nil, t.Size) {
				return false
			}
		}
		return true
	}

	switch d.Kind {
	case DeclConst:
		_ = bounds("", d.Const.Type) && yield("", d.Const.Type, d.Const.Value)
		return
	case DeclEnum:
		for _, m := range d.Enum.Members {
			if !yield(m.Name, &Type{Kind: TypePrimitive, Primitive: d.Enum.Subtype}, m.Value) {
				return
			}
		}
		return
	case DeclStruct:
		for _, m := range d.Struct.Members {
			if !bounds(m.Name, m.Type) {
				return
			}
			if m.Default != nil && !yield(m.Name, m.Type, m.Default) {
				return
			}
		}
		return
	}

	for member, ty := range d.Members {
		if !bounds(member, ty) {
			return
		}
	}
}
