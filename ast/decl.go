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

// Decl is a top-level declaration.
//
// The set of implementations is closed: *Const, *Enum, *Struct, *Union,
// *Interface and *Alias.
type Decl interface {
	Node
	// DeclName returns the name being declared.
	DeclName() *Ident
	// Annotated returns the attributes and doc comment on this declaration.
	Annotated() Annotations
	// Keyword returns the keyword that introduced this declaration.
	Keyword() string

	declNode()
}

// DeclBase contains the parts common to every declaration.
type DeclBase struct {
	Spanned
	Annotations
	Name *Ident
}

// DeclName implements [Decl].
func (d *DeclBase) DeclName() *Ident { return d.Name }

// Annotated implements [Decl].
func (d *DeclBase) Annotated() Annotations { return d.Annotations }

func (*DeclBase) declNode() {}

// Const is `const T NAME = value;`.
type Const struct {
	DeclBase
	Type  *Type
	Value Constant
}

// Enum is `enum Name : T { A = 1; };`. Subtype may be nil.
type Enum struct {
	DeclBase
	Subtype *Type
	Members []*EnumMember
}

// EnumMember is one `NAME = 1;` line of an enum.
type EnumMember struct {
	Spanned
	Annotations
	Name  *Ident
	Value *IntLit
}

// Struct is `struct Name { T a; T b = default; };`.
type Struct struct {
	DeclBase
	Members []*StructMember
}

// StructMember is one field of a struct. Default may be nil.
type StructMember struct {
	Spanned
	Annotations
	Type    *Type
	Name    *Ident
	Default Constant
}

// Union is `union Name { T a; };`.
type Union struct {
	DeclBase
	Members []*UnionMember
}

// UnionMember is one variant of a union.
type UnionMember struct {
	Spanned
	Annotations
	Type *Type
	Name *Ident
}

// Interface is `interface Name { M(T a) -> (T b); };`. The `protocol`
// keyword is accepted as a synonym and recorded in Kw.
type Interface struct {
	DeclBase
	Kw      string
	Methods []*Method
}

// Method is a single method signature of an interface.
type Method struct {
	Spanned
	Annotations
	Name    *Ident
	Request []*Param
	// HasResponse distinguishes `M();` from `M() -> ();`.
	HasResponse bool
	Response    []*Param
}

// Param is a single `T name` parameter.
type Param struct {
	Spanned
	Type *Type
	Name *Ident
}

// Alias is `using Name = T;`.
type Alias struct {
	DeclBase
	Target *Type
}

// Keyword implements [Decl].
func (*Const) Keyword() string { return "const" }

// Keyword implements [Decl].
func (*Enum) Keyword() string { return "enum" }

// Keyword implements [Decl].
func (*Struct) Keyword() string { return "struct" }

// Keyword implements [Decl].
func (*Union) Keyword() string { return "union" }

// Keyword implements [Decl].
func (d *Interface) Keyword() string {
	if d.Kw == "" {
		return "interface"
	}
	return d.Kw
}

// Keyword implements [Decl].
func (*Alias) Keyword() string { return "using" }
