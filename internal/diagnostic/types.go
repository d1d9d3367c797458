package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"xmlbind/internal/common"
)

// Diagnostics holds every finding of one check run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Pos is the source position as file:line:column (if any).
	Pos string
	// Type identifies the annotated type (if any).
	Type string
	// Field identifies the Go field or binding entry (if any).
	Field string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends d to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, typ, field string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Type: typ, Field: field})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, typ, field string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Type: typ, Field: field})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, typ, field string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Type: typ, Field: field})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// All returns every diagnostic, errors first, each group ordered by position.
func (d *Diagnostics) All() []Diagnostic {
	out := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))

	for _, group := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		sorted := append([]Diagnostic(nil), group...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Pos < sorted[j].Pos })
		out = append(out, sorted...)
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// Location returns the type and field the diagnostic refers to, e.g.
// "calendar.Date.Year".
func (d Diagnostic) Location() string {
	switch {
	case d.Type != "" && d.Field != "":
		return d.Type + "." + d.Field
	case d.Type != "":
		return d.Type
	default:
		return d.Field
	}
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var b strings.Builder
	for _, part := range []string{d.Pos, d.Location()} {
		if part != "" {
			b.WriteString(part)
			b.WriteString(": ")
		}
	}

	if d.Code != "" {
		fmt.Fprintf(&b, "[%s] ", d.Code)
	}

	b.WriteString(d.Message)

	if len(d.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", strings.Join(d.Suggestions, ", "))
	}

	return b.String()
}
