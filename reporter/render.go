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
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/banjocompile/source"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[1;91m"
	colorYellow = "\033[1;93m"
	colorBlue   = "\033[1;94m"
	colorBold   = "\033[1m"
)

// Renderer renders errors as human-readable diagnostics with annotated
// source snippets.
type Renderer struct {
	// If set, ANSI color codes are emitted.
	Colorize bool
}

// Render writes err to w. Errors that are not *Error are rendered as a
// single line.
func (r Renderer) Render(w io.Writer, err error) error {
	_, werr := io.WriteString(w, r.RenderString(err, "error"))
	return werr
}

// RenderWarning is like Render, but labels the diagnostic as a warning.
func (r Renderer) RenderWarning(w io.Writer, warning *Error) error {
	_, werr := io.WriteString(w, r.RenderString(warning, "warning"))
	return werr
}

// RenderString renders err into a string, using level as the diagnostic's
// leading label.
func (r Renderer) RenderString(err error, level string) string {
	var buf strings.Builder

	color := colorRed
	if level == "warning" {
		color = colorYellow
	}

	var e *Error
	if !errors.As(err, &e) {
		fmt.Fprintf(&buf, "%s: %s\n", r.paint(color, level), r.paint(colorBold, err.Error()))
		return buf.String()
	}

	label := level
	if level == "error" {
		label = fmt.Sprintf("error[%s]", e.Kind)
	}
	fmt.Fprintf(&buf, "%s: %s\n", r.paint(color, label), r.paint(colorBold, e.Message))

	switch {
	case !e.Span.IsZero():
		r.snippet(&buf, e.Span, "", color)
	case e.File != "":
		fmt.Fprintf(&buf, "  %s %s\n", r.paint(colorBlue, "-->"), e.File)
	}

	for _, note := range e.Notes {
		if note.Span.IsZero() {
			fmt.Fprintf(&buf, "  %s %s\n", r.paint(colorBlue, "= note:"), note.Message)
			continue
		}
		r.snippet(&buf, note.Span, note.Message, colorBlue)
	}
	return buf.String()
}

func (r Renderer) snippet(buf *strings.Builder, span source.Span, message, color string) {
	start := span.StartLoc()
	end := span.EndLoc()

	gutter := strconv.Itoa(start.Line)
	pad := strings.Repeat(" ", len(gutter))

	fmt.Fprintf(buf, "%s%s %s:%d:%d\n", pad, r.paint(colorBlue, "-->"), span.Path(), start.Line, start.Column)
	fmt.Fprintf(buf, "%s %s\n", pad, r.paint(colorBlue, "|"))

	line := span.Line(start.Line)
	fmt.Fprintf(buf, "%s %s %s\n", r.paint(colorBlue, gutter), r.paint(colorBlue, "|"), expandTabs(line))

	width := 1
	if end.Line == start.Line && end.Column > start.Column {
		width = end.Column - start.Column
	}
	underline := strings.Repeat(" ", start.Column-1) + strings.Repeat("^", width)
	if message != "" {
		underline += " " + message
	}
	fmt.Fprintf(buf, "%s %s %s\n", pad, r.paint(colorBlue, "|"), r.paint(color, underline))
}

func (r Renderer) paint(color, text string) string {
	if !r.Colorize {
		return text
	}
	return color + text + colorReset
}

// expandTabs replaces tabs with spaces so that the caret line computed from
// terminal columns lines up with the rendered source line.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}

	var buf strings.Builder
	for i, chunk := range strings.Split(line, "\t") {
		if i > 0 {
			column := source.Width(buf.String())
			buf.WriteString(strings.Repeat(" ", source.TabstopWidth-column%source.TabstopWidth))
		}
		buf.WriteString(chunk)
	}
	return buf.String()
}
