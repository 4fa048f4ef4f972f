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

// Package backend turns a linked [ir.AST] into output text.
//
// The set of backends is closed: [New] switches over every [Kind]. Backends
// only read the AST, so any number of them may run on the same AST
// concurrently.
package backend

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bufbuild/banjocompile/ir"
	"github.com/bufbuild/banjocompile/reporter"
)

// Kind selects a backend.
type Kind int

const (
	C Kind = iota + 1
	CPP
	// Compile-time checks used by the CPP output.
	CPPInternal
	// A YAML dump of the linked AST.
	AST
	JSON
	Rust
)

var kindNames = [...]string{
	C:           "c",
	CPP:         "cpp",
	CPPInternal: "cpp-internal",
	AST:         "ast",
	JSON:        "json",
	Rust:        "rust",
}

// Kinds returns every backend kind, in a fixed order.
func Kinds() []Kind {
	return []Kind{C, CPP, CPPInternal, AST, JSON, Rust}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the name of a backend, as printed by [Kind.String].
// "cpp_i" is accepted as another name for [CPPInternal].
func ParseKind(name string) (Kind, error) {
	if name == "cpp_i" {
		return CPPInternal, nil
	}
	for _, k := range Kinds() {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, reporter.Errorf(reporter.GenerationError, nil, "unknown backend %q", name)
}

// Backend generates output for a linked AST.
type Backend interface {
	// Generate writes output for ast to w.
	//
	// Errors are *[reporter.Error] values of kind [reporter.GenerationError].
	Generate(ast *ir.AST, w io.Writer) error
}

// New returns the backend for kind.
func New(kind Kind) (Backend, error) {
	switch kind {
	case C:
		return buffered{kind, generateC}, nil
	case CPP:
		return buffered{kind, generateCPP}, nil
	case CPPInternal:
		return buffered{kind, generateCPPInternal}, nil
	case AST:
		return buffered{kind, generateAST}, nil
	case JSON:
		return buffered{kind, generateJSON}, nil
	case Rust:
		return unimplemented{kind}, nil
	default:
		return nil, reporter.Errorf(reporter.GenerationError, nil, "unknown backend %v", kind)
	}
}

// Generate is a shorthand for calling Generate on the backend for kind.
func Generate(ast *ir.AST, kind Kind, w io.Writer) error {
	b, err := New(kind)
	if err != nil {
		return err
	}
	return b.Generate(ast, w)
}

// buffered renders all of its output before writing any of it, so that a
// failed generation never produces partial output.
type buffered struct {
	kind     Kind
	generate func(*ir.AST, *bytes.Buffer) error
}

func (b buffered) Generate(ast *ir.AST, w io.Writer) error {
	var buf bytes.Buffer
	if err := b.generate(ast, &buf); err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return reporter.Wrap(reporter.GenerationError, err, "writing %s output", b.kind)
	}
	return nil
}

type unimplemented struct {
	kind Kind
}

func (u unimplemented) Generate(*ir.AST, io.Writer) error {
	return reporter.Errorf(reporter.GenerationError, nil, "%s backend not yet implemented", u.kind)
}
