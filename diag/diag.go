// Package diag defines the diagnostic model: stable keyed types with fixed
// severities, and a collecting reporter shared by the passes of one
// compilation.
package diag

import (
	"fmt"
	"strings"

	"github.com/rubiojr/modflat/ast"
)

// Severity is the fixed severity of a diagnostic type.
type Severity int

const (
	// Error halts later phases of the compilation.
	Error Severity = iota
	// Warning is reported but does not halt anything.
	Warning
	// Off marks a type that is recorded but hidden by default.
	Off
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "off"
	}
}

// Type identifies one kind of diagnostic by a stable key. Format is a
// message template with {0}, {1}, ... placeholders.
type Type struct {
	Key      string
	Severity Severity
	Format   string
}

// NewError declares an error-severity diagnostic type.
func NewError(key, format string) *Type {
	return &Type{Key: key, Severity: Error, Format: format}
}

// NewWarning declares a warning-severity diagnostic type.
func NewWarning(key, format string) *Type {
	return &Type{Key: key, Severity: Warning, Format: format}
}

// NewDisabled declares a diagnostic type that is off by default.
func NewDisabled(key, format string) *Type {
	return &Type{Key: key, Severity: Off, Format: format}
}

// Diagnostic is one reported problem, located at a node.
type Diagnostic struct {
	Type *Type
	File string
	Pos  int
	Args []string
}

// Message renders the type's format with the diagnostic's arguments.
func (d Diagnostic) Message() string {
	msg := d.Type.Format
	for i, arg := range d.Args {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%d}", i), arg)
	}
	return msg
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", d.File, d.Pos, d.Type.Severity, d.Message(), d.Type.Key)
}

// Reporter collects diagnostics for one compilation.
type Reporter struct {
	diags []Diagnostic
}

// NewReporter returns an empty reporter.
func NewReporter() *Reporter { return &Reporter{} }

// Report records a diagnostic of the given type at node n.
func (r *Reporter) Report(t *Type, n *ast.Node, args ...string) {
	d := Diagnostic{Type: t, Args: args}
	if n != nil {
		d.File = n.SourceFile()
		d.Pos = n.Pos
	}
	r.diags = append(r.diags, d)
}

// Diagnostics returns everything reported so far, in order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// HasHaltingErrors reports whether any error-severity diagnostic has been
// recorded.
func (r *Reporter) HasHaltingErrors() bool {
	for _, d := range r.diags {
		if d.Type.Severity == Error {
			return true
		}
	}
	return false
}

// CountOf returns how many diagnostics of the given type were reported.
func (r *Reporter) CountOf(t *Type) int {
	count := 0
	for _, d := range r.diags {
		if d.Type == t {
			count++
		}
	}
	return count
}
