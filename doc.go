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

// Package banjocompile provides the entry point for a Banjo compiler
// front end, capable of turning Banjo interface definitions into generated
// C and C++ headers, or into structured dumps of the linked AST.
//
// A Banjo source file declares a library, may import other libraries, and
// contains constants, enums, structs, unions, protocols and aliases. A
// library may be spread across several files, and files of every library in
// a compilation are compiled together.
//
// # Compilation
//
// The compilation process has four phases:
//  1. Parse each file into a parse tree.
//     Also see: parser.Parse
//  2. Lower each parse tree into unresolved declarations.
//     Also see: lower.Lower
//  3. Link the declarations of every file into one AST, resolving every
//     reference and rejecting cycles and undeclared dependencies.
//     Also see: linker.Link
//  4. Generate code for the AST.
//     Also see: backend.Generate
//
// This package provides an easy-to-use interface that does all of the
// phases, based on the inputs given. Parsing and lowering take advantage of
// multiple CPU cores.
//
// Every phase reports failures as a *reporter.Error, which carries the
// stage, location, and declaration the error is about. A compilation either
// produces a fully linked AST or fails; partial results are never returned.
//
// # Resolvers
//
// A Resolver is how [Compiler.Load] finds the text of files named on a
// command line. A [SourceResolver] reads files relative to a list of import
// paths, and [WithWellKnown] adds the embedded zx library.
//
// # Compiler
//
// A Compiler's zero value is ready to use:
//
//	var compiler banjocompile.Compiler
//	ast, err := compiler.Compile(ctx, banjocompile.Input{Path: "gpio.banjo", Text: text})
//	if err != nil {
//	    return err
//	}
//	return compiler.Generate(ctx, ast, backend.C, os.Stdout)
//
// It fails fast at the first error; set Reporter to see more than one.
package banjocompile
