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

package reporter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bufbuild/banjocompile/source"
)

// ErrInvalidSource is a sentinel error that is returned by compilation
// entry points in the event that errors were encountered but the configured
// Reporter swallowed every one of them.
var ErrInvalidSource = errors.New("compilation failed: invalid banjo source")

// Kind classifies an [Error].
type Kind int8

const (
	// A grammar violation while parsing one file.
	SyntaxError Kind = 1 + iota
	// A declaration that parsed, but is structurally invalid within its file.
	LoweringError
	// A file refers to a library it did not import, or imports a library that
	// does not exist.
	DependencyError
	// A name that does not resolve to exactly one declaration.
	ResolutionError
	// Two declarations with the same name in one library.
	DuplicateError
	// A declaration that contains itself by value, or a cycle of aliases or
	// library imports.
	CycleError
	// A backend failure.
	GenerationError
	// A bug in the compiler.
	InternalError
)

var kindNames = [...]string{
	SyntaxError:     "syntax error",
	LoweringError:   "lowering error",
	DependencyError: "dependency error",
	ResolutionError: "resolution error",
	DuplicateError:  "duplicate error",
	CycleError:      "cycle error",
	GenerationError: "generation error",
	InternalError:   "internal error",
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if k <= 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Stage returns the compilation stage errors of this kind come from.
func (k Kind) Stage() Stage {
	switch k {
	case SyntaxError:
		return StageSyntax
	case LoweringError:
		return StageLowering
	case DependencyError, ResolutionError, DuplicateError, CycleError:
		return StageAssembly
	case GenerationError:
		return StageGeneration
	default:
		return StageUnknown
	}
}

// Stage is a phase of the compilation pipeline.
type Stage int8

const (
	StageUnknown Stage = iota
	StageSyntax
	StageLowering
	StageAssembly
	StageGeneration
)

// String implements [fmt.Stringer].
func (s Stage) String() string {
	switch s {
	case StageSyntax:
		return "syntax"
	case StageLowering:
		return "lowering"
	case StageAssembly:
		return "assembly"
	case StageGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// Error is the structured error produced by every stage of the compiler.
//
// Errors are plain values; callers should use [errors.As] to recover one
// from an error chain.
type Error struct {
	Kind Kind

	// Where the error occurred. Span may be zero for errors that have no
	// source location, such as most generation errors.
	Span         source.Span
	File         string
	Line, Column int

	// The declaration, and optionally the member of that declaration, that
	// the error is about.
	Decl, Member string

	Message string

	// Secondary locations that help explain the error, such as the previous
	// definition of a duplicate name.
	Notes []Note

	// The underlying error, if this error wraps one.
	Err error
}

// Note is a secondary annotation on an [Error].
type Note struct {
	Span    source.Span
	Message string
}

// Errorf constructs a new error of the given kind, located at the given span.
func Errorf(kind Kind, at source.Spanner, format string, args ...any) *Error {
	err := &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
	if at != nil {
		err.setSpan(at.Span())
	}
	return err
}

// Wrap constructs a new error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...) + ": " + err.Error(),
		Err:     err,
	}
}

// InDecl records the declaration (and optionally the member) this error
// refers to. It returns e for chaining.
func (e *Error) InDecl(decl string, member ...string) *Error {
	e.Decl = decl
	if len(member) > 0 {
		e.Member = strings.Join(member, ".")
	}
	return e
}

// InFile records the file this error refers to, for errors without a span.
func (e *Error) InFile(path string) *Error {
	if e.File == "" {
		e.File = path
	}
	return e
}

// Note appends a secondary annotation. It returns e for chaining.
func (e *Error) Note(at source.Spanner, format string, args ...any) *Error {
	note := Note{Message: fmt.Sprintf(format, args...)}
	if at != nil {
		note.Span = at.Span()
	}
	e.Notes = append(e.Notes, note)
	return e
}

// Stage returns the stage this error came from.
func (e *Error) Stage() Stage {
	return e.Kind.Stage()
}

// Error implements [error].
func (e *Error) Error() string {
	var buf strings.Builder
	switch {
	case e.File != "" && e.Line > 0:
		fmt.Fprintf(&buf, "%s:%d:%d: ", e.File, e.Line, e.Column)
	case e.File != "":
		fmt.Fprintf(&buf, "%s: ", e.File)
	}
	buf.WriteString(e.Message)
	return buf.String()
}

// Unwrap implements the interface used by [errors.Unwrap].
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) setSpan(span source.Span) {
	if span.IsZero() {
		return
	}
	loc := span.StartLoc()
	e.Span = span
	e.File = span.Path()
	e.Line = loc.Line
	e.Column = loc.Column
}
