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

// Package linker assembles lowered files into a single resolved [ir.AST].
//
// Linking runs in stages, each of which assumes the previous ones found no
// errors:
//
//  1. Declarations are grouped by library, rejecting duplicate names.
//  2. Every import must name a library that is part of the compilation, and
//     every qualified name must use a library its file imports.
//  3. Every type and constant reference is resolved to a declaration.
//     Qualified names are looked up in the library they name; unqualified
//     names in the file's own library first, then in each import.
//  4. Aliases and constants may not refer to themselves, constants must be
//     compatible with the types they are assigned to, and no struct or union
//     may contain itself by value.
//  5. Libraries and declarations are put in dependency order for backends.
//
// Unused imports are reported as warnings once linking succeeds.
package linker
