// Package capabilities provides the printer capabilities a program run may
// be granted: a stream printer for real output and a recorder for tests.
package capabilities

import (
	"fmt"
	"io"

	"github.com/rinha-lang/rinha-go/pkg/evaluator"
)

// Stream prints each value's display form as one line on a writer.
type Stream struct {
	w io.Writer
}

// NewStream creates a printer writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{w: w}
}

// Print writes the value's display form followed by a newline and returns
// the value unchanged.
func (s *Stream) Print(v evaluator.Value) evaluator.Value {
	fmt.Fprintln(s.w, evaluator.Display(v))
	return v
}

// Recorder captures printed values in call order without emitting anything.
// It stands in for Stream in tests that assert on the output sequence.
type Recorder struct {
	Values []evaluator.Value
}

// Print records the value and returns it unchanged.
func (r *Recorder) Print(v evaluator.Value) evaluator.Value {
	r.Values = append(r.Values, v)
	return v
}

// Lines returns the display form of every recorded value, in print order.
func (r *Recorder) Lines() []string {
	lines := make([]string, len(r.Values))
	for i, v := range r.Values {
		lines[i] = evaluator.Display(v)
	}
	return lines
}
