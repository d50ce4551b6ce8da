// Package diagnostics defines the diagnostic types reported for decode and
// runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rinha-lang/rinha-go/pkg/ast"
)

// Diagnostic code constants.
const (
	EUnboundVariable   = "E_UNBOUND_VARIABLE"
	EInvalidCall       = "E_INVALID_CALL"
	EInvalidCondition  = "E_INVALID_CONDITION"
	EInvalidProjection = "E_INVALID_PROJECTION"
	EInvalidOperand    = "E_INVALID_OPERAND"
	EDivisionByZero    = "E_DIVISION_BY_ZERO"
	EDecode            = "E_DECODE"
	EIO                = "E_IO"
)

// Diagnostic is one reported failure: a machine-checkable code, a short
// message, an optional longer explanation, and the offending node's location.
// Rendering the location against source text is the caller's concern; only
// the structured location is carried here.
type Diagnostic struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	FullText string        `json:"fullText,omitempty"`
	Location *ast.Location `json:"location,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message, fullText string, loc *ast.Location) Diagnostic {
	return Diagnostic{
		Code:     code,
		Message:  message,
		FullText: fullText,
		Location: loc,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Location != nil {
		loc = fmt.Sprintf("%s:%d..%d", d.Location.Filename, d.Location.Start, d.Location.End)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.FullText != "" {
		out += fmt.Sprintf("\n  note: %s", d.FullText)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
