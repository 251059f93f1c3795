// Package diag defines source positions and the diagnostics reported while
// compiling a Quark source file.
package diag

import (
	"fmt"
	"io"
)

// Position identifies a byte in the source buffer
type Position struct {
	Offset int // byte offset, counting from 0
	Line   int // line number, counting from 1
	Column int // column number, counting from 1
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Severity distinguishes errors from warnings
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// ANSI colors used for the severity when color output is enabled
const (
	colorRed    = "\033[91m"
	colorYellow = "\033[93m"
	colorReset  = "\033[0m"
)

// Diagnostic is a single error or warning attached to a source position
type Diagnostic struct {
	Pos      Position
	Severity Severity
	Message  string
}

// Error implements the error interface using the "line:column: kind: message" form.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Reporter receives diagnostics as they are discovered. Reporting never halts
// compilation; callers decide whether to abort based on their own results.
type Reporter interface {
	Errorf(pos Position, format string, args ...any) *Diagnostic
	Warningf(pos Position, format string, args ...any) *Diagnostic
}

// Handler is a Reporter that records every diagnostic and, when Out is set,
// streams them as they arrive.
type Handler struct {
	Out   io.Writer
	Color bool

	Diagnostics []*Diagnostic
	errors      int
	warnings    int
}

// NewHandler creates a handler streaming to out (which may be nil)
func NewHandler(out io.Writer, color bool) *Handler {
	return &Handler{Out: out, Color: color}
}

// Errorf records an error
func (h *Handler) Errorf(pos Position, format string, args ...any) *Diagnostic {
	h.errors++
	return h.add(pos, Error, format, args...)
}

// Warningf records a warning
func (h *Handler) Warningf(pos Position, format string, args ...any) *Diagnostic {
	h.warnings++
	return h.add(pos, Warning, format, args...)
}

func (h *Handler) add(pos Position, sev Severity, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Pos: pos, Severity: sev, Message: fmt.Sprintf(format, args...)}
	h.Diagnostics = append(h.Diagnostics, d)
	if h.Out != nil {
		h.print(d)
	}
	return d
}

func (h *Handler) print(d *Diagnostic) {
	if !h.Color {
		fmt.Fprintln(h.Out, d.Error())
		return
	}
	color := colorRed
	if d.Severity == Warning {
		color = colorYellow
	}
	fmt.Fprintf(h.Out, "%s: %s%s%s: %s\n", d.Pos, color, d.Severity, colorReset, d.Message)
}

// ErrorCount returns the number of errors reported so far
func (h *Handler) ErrorCount() int {
	return h.errors
}

// WarningCount returns the number of warnings reported so far
func (h *Handler) WarningCount() int {
	return h.warnings
}

// Errors returns only the error diagnostics, in report order
func (h *Handler) Errors() []*Diagnostic {
	var result []*Diagnostic
	for _, d := range h.Diagnostics {
		if d.Severity == Error {
			result = append(result, d)
		}
	}
	return result
}

// Warnings returns only the warning diagnostics, in report order
func (h *Handler) Warnings() []*Diagnostic {
	var result []*Diagnostic
	for _, d := range h.Diagnostics {
		if d.Severity == Warning {
			result = append(result, d)
		}
	}
	return result
}
