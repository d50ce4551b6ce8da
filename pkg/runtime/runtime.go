// Package runtime wires decoding and evaluation into one program run.
package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rinha-lang/rinha-go/pkg/ast"
	"github.com/rinha-lang/rinha-go/pkg/capabilities"
	"github.com/rinha-lang/rinha-go/pkg/diagnostics"
	"github.com/rinha-lang/rinha-go/pkg/evaluator"
)

// Result holds the outcome of a program run.
type Result struct {
	Value evaluator.Value
}

// Runtime executes serialized programs. Every run gets a fresh environment
// and cache; only the printer is shared configuration.
type Runtime struct {
	printer evaluator.Printer
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithPrinter sets the printer capability used for Print effects.
func WithPrinter(p evaluator.Printer) Option {
	return func(rt *Runtime) {
		rt.printer = p
	}
}

// WithOutput directs print output to the given writer.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.printer = capabilities.NewStream(w)
	}
}

// New creates a Runtime. Print output goes to stdout unless overridden.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		printer: capabilities.NewStream(os.Stdout),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run decodes a serialized program unit and evaluates it.
func (rt *Runtime) Run(data []byte) (*Result, error) {
	file, err := ast.DecodeFile(data)
	if err != nil {
		return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{
			diagnostics.MakeDiag(diagnostics.EDecode, err.Error(), "", nil),
		}}
	}
	return rt.RunProgram(file)
}

// RunProgram evaluates an already-decoded program unit against a fresh
// environment and cache.
func (rt *Runtime) RunProgram(file *ast.File) (*Result, error) {
	val, err := evaluator.Eval(file.Expression, evaluator.NewEnv(), evaluator.NewCache(), rt.printer)
	if err != nil {
		return nil, err
	}
	return &Result{Value: val}, nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
