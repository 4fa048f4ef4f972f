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
	"strings"

	"github.com/bufbuild/banjocompile/source"
)

// TypeKind is the kind of a [Type].
type TypeKind int8

const (
	TypePrimitive TypeKind = iota + 1
	TypeString
	TypeVector
	TypeArray
	TypeHandle
	TypeRequest
	// A reference to a named declaration.
	TypeIdentifier
)

// Primitive is a built-in scalar type.
type Primitive int8

const (
	Bool Primitive = iota + 1
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Usize
	Voidptr
)

var primitiveNames = [...]string{
	Bool:    "bool",
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Usize:   "usize",
	Voidptr: "voidptr",
}

// PrimitiveByName returns the primitive with the given name.
func PrimitiveByName(name string) (Primitive, bool) {
	for p, n := range primitiveNames {
		if n != "" && n == name {
			return Primitive(p), true
		}
	}
	return 0, false
}

// String implements [fmt.Stringer].
func (p Primitive) String() string {
	if p <= 0 || int(p) >= len(primitiveNames) {
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
	return primitiveNames[p]
}

// IsIntegral returns whether p is an integer type.
func (p Primitive) IsIntegral() bool {
	return (p >= Int8 && p <= Uint64) || p == Usize
}

// IsSigned returns whether p is a signed integer type.
func (p Primitive) IsSigned() bool {
	return p >= Int8 && p <= Int64
}

// IsFloat returns whether p is a floating-point type.
func (p Primitive) IsFloat() bool {
	return p == Float32 || p == Float64
}

// Type is a lowered type expression.
type Type struct {
	Kind TypeKind
	Span source.Span

	// Set for TypePrimitive.
	Primitive Primitive
	// Set for TypeIdentifier and TypeRequest.
	Ref *TypeRef
	// Set for TypeVector and TypeArray.
	Elem *Type
	// The bound of a string or vector, or the length of an array; may be nil
	// except for arrays.
	Size *Constant
	// The handle subtype, such as "channel". Empty for a plain handle.
	Subtype  string
	Nullable bool
}

// String renders this type the way it was written in source.
func (t *Type) String() string {
	var buf strings.Builder
	t.write(&buf, nil)
	return buf.String()
}

// Format renders this type like [Type.String], but resolves references using
// ast so that they are written as fully-qualified names.
func (t *Type) Format(ast *AST) string {
	var buf strings.Builder
	t.write(&buf, ast)
	return buf.String()
}

func (t *Type) write(buf *strings.Builder, ast *AST) {
	switch t.Kind {
	case TypePrimitive:
		buf.WriteString(t.Primitive.String())
	case TypeString:
		buf.WriteString("string")
	case TypeVector, TypeArray:
		if t.Kind == TypeVector {
			buf.WriteString("vector<")
		} else {
			buf.WriteString("array<")
		}
		t.Elem.write(buf, ast)
		buf.WriteByte('>')
	case TypeHandle:
		buf.WriteString("handle")
		if t.Subtype != "" {
			fmt.Fprintf(buf, "<%s>", t.Subtype)
		}
	case TypeRequest:
		fmt.Fprintf(buf, "request<%s>", t.Ref.Format(ast))
	case TypeIdentifier:
		buf.WriteString(t.Ref.Format(ast))
	}
	if t.Size != nil {
		fmt.Fprintf(buf, ":%s", t.Size.Format(ast))
	}
	if t.Nullable {
		buf.WriteByte('?')
	}
}

// Walk calls yield with t and then each type nested within it.
func (t *Type) Walk(yield func(*Type) bool) {
	for ; t != nil; t = t.Elem {
		if !yield(t) {
			return
		}
	}
}

// TypeRef is a reference to a named declaration.
//
// Lowering fills in Namespace, Name and Span; linking fills in Target and
// sets Resolved.
type TypeRef struct {
	// Everything before the last dot, as written. Empty for unqualified
	// references.
	Namespace string
	Name      string
	Span      source.Span

	Target   DeclID
	Resolved bool
}

// String returns the name as written in source.
func (r *TypeRef) String() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}

// Format returns the fully-qualified name of the target if ast is non-nil
// and r is resolved; otherwise it returns the name as written.
func (r *TypeRef) Format(ast *AST) string {
	if ast == nil || !r.Resolved {
		return r.String()
	}
	return ast.Decl(r.Target).FullName()
}
