// Package terminal implements the interactive side of a run: reading
// answers from stdin, asking for the password without echo and ringing
// the terminal bell.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the descriptor behind in, or -1 when in is not a file.
	fd int
}

// New reads answers from in. When in is a file (os.Stdin in practice) its
// descriptor is used to read passwords without echo.
func New(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if f, ok := in.(interface{ Fd() uintptr }); ok {
		fd = int(f.Fd())
	}
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// ReadLine prints prompt followed by a space and returns the next line
// without its trailing newline.
func (p *Prompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt+" ")
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Choose lists options as "* [i] option" and asks until a valid index is
// given.
func (p *Prompter) Choose(ctx context.Context, title, question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("terminal: nothing to choose from")
	}
	fmt.Fprintln(p.out, title)
	for i, o := range options {
		fmt.Fprintf(p.out, "* [%d] %s\n", i, o)
	}
	for {
		line, err := p.ReadLine(ctx, question)
		if err != nil {
			return 0, err
		}
		i, err := strconv.Atoi(line)
		if err == nil && i >= 0 && i < len(options) {
			return i, nil
		}
	}
}

// Password reads a password without echo when the input is a terminal and
// falls back to a plain line otherwise.
func (p *Prompter) Password(ctx context.Context) (string, error) {
	if p.fd < 0 || !term.IsTerminal(p.fd) {
		return p.ReadLine(ctx, "Password:")
	}
	fmt.Fprint(p.out, "Password: ")
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bell rings the terminal bell.
type Bell struct {
	Out io.Writer
}

func (b Bell) Notify() {
	if b.Out == nil {
		return
	}
	_, _ = io.WriteString(b.Out, "\a")
}
