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
	"strconv"

	"github.com/bufbuild/banjocompile/source"
)

// ConstantKind is the kind of a [Constant].
type ConstantKind int8

const (
	ConstInt ConstantKind = iota + 1
	ConstString
	ConstBool
	// A reference to a const declaration or enum member.
	ConstRef
)

// Constant is a constant expression.
type Constant struct {
	Kind ConstantKind
	Span source.Span

	// For ConstInt: the magnitude, and whether the value is negative. Text is
	// the literal as written, such as "0x20".
	Uint     uint64
	Negative bool
	Text     string

	Str  string
	Bool bool
	Ref  *ConstantRef
}

// Int64 returns the value of an integer constant as an int64, and whether it
// fits.
func (c *Constant) Int64() (int64, bool) {
	switch {
	case c.Negative && c.Uint <= 1<<63:
		return -int64(c.Uint-1) - 1, true
	case !c.Negative && c.Uint <= 1<<63-1:
		return int64(c.Uint), true
	default:
		return 0, false
	}
}

// String renders this constant as it would appear in source.
func (c *Constant) String() string {
	return c.Format(nil)
}

// Format is like [Constant.String], but writes resolved references as
// fully-qualified names if ast is not nil.
func (c *Constant) Format(ast *AST) string {
	switch c.Kind {
	case ConstInt:
		if c.Text != "" {
			return c.Text
		}
		if c.Negative {
			return "-" + strconv.FormatUint(c.Uint, 10)
		}
		return strconv.FormatUint(c.Uint, 10)
	case ConstString:
		return strconv.Quote(c.Str)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstRef:
		return c.Ref.Format(ast)
	default:
		return ""
	}
}

// ConstantRef names a const declaration, or a member of an enum.
//
// A dotted reference like `a.b.C` is ambiguous until linking: it may be the
// const C in library a.b, or member C of enum b in library a. Lowering
// records Namespace "a.b" and Name "C"; linking decides.
type ConstantRef struct {
	Namespace string
	Name      string
	Span      source.Span

	// Set by the linker. Member is the enum member name if the reference
	// names an enum member, and empty if it names a const.
	Target   DeclID
	Member   string
	Resolved bool
}

// String returns the name as written in source.
func (r *ConstantRef) String() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}

// Format returns the fully-qualified name of the target if ast is non-nil
// and r is resolved; otherwise it returns the name as written.
func (r *ConstantRef) Format(ast *AST) string {
	if ast == nil || !r.Resolved {
		return r.String()
	}
	name := ast.Decl(r.Target).FullName()
	if r.Member != "" {
		name += "." + r.Member
	}
	return name
}

// Value follows r to the literal it names, through any chain of const
// declarations. It returns nil if r is unresolved.
func (r *ConstantRef) Value(ast *AST) *Constant {
	// The linker rejects cyclic consts, so a chain is at most as long as the
	// number of declarations.
	limit := 1
	for _, lib := range ast.Libraries {
		limit += len(lib.Decls)
	}
	for range limit {
		if !r.Resolved {
			return nil
		}
		decl := ast.Decl(r.Target)
		var c *Constant
		switch {
		case r.Member != "" && decl.Enum != nil:
			c = decl.Enum.Member(r.Member).Value
		case decl.Const != nil:
			c = decl.Const.Value
		default:
			return nil
		}
		if c.Kind != ConstRef {
			return c
		}
		r = c.Ref
	}
	return nil
}
