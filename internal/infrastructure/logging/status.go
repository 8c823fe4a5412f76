// Package logging holds the two outputs of a run: zap diagnostics for
// developers and short colored status lines for the operator.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Status prints operator-facing progress lines. Format arguments are
// highlighted in yellow.
type Status struct {
	out io.Writer

	arg     *color.Color
	red     *color.Color
	green   *color.Color
	success *color.Color
}

func NewStatus(out io.Writer) *Status {
	if out == nil {
		out = os.Stdout
	}
	return &Status{
		out:     out,
		arg:     color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		green:   color.New(color.FgGreen),
		success: color.New(color.FgGreen, color.Bold),
	}
}

func (s *Status) highlight(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = s.arg.Sprint(a)
	}
	return out
}

// Printf prints one line.
func (s *Status) Printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", s.highlight(args)...)
}

// Partf prints without a line break so a result can follow on the same
// line.
func (s *Status) Partf(format string, args ...any) {
	fmt.Fprintf(s.out, format+" ", s.highlight(args)...)
}

func (s *Status) Fail(msg string) {
	fmt.Fprintln(s.out, s.red.Sprint(msg))
}

func (s *Status) OK(msg string) {
	fmt.Fprintln(s.out, s.green.Sprint(msg))
}

// Booked is the final success banner.
func (s *Status) Booked() {
	fmt.Fprintf(s.out, "\n💉 %s Congratulations.\n", s.success.Sprint("Booked!"))
}

// Error prints "Error: msg" with the label in red.
func (s *Status) Error(format string, args ...any) {
	fmt.Fprintf(s.out, "\n%s: %s\n", s.red.Sprint("Error"), fmt.Sprintf(format, s.highlight(args)...))
}
