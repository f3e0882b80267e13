// Package prompt reads answers and secrets from the user. Secrets are read
// without echo when the input is a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	fd       int
	terminal bool
}

// New creates a prompter. Hidden input is used when in is a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.terminal = true
	}
	return p
}

// Line prints label and returns the trimmed answer. io.EOF is returned only
// when the input ended before anything was typed.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(line)), nil
}

// Default is Line with a value used for a blank answer
func (p *Prompter) Default(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s[%s] ", label, def)
	}
	answer, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Choice is Default restricted to options; the first option is the default
func (p *Prompter) Choice(label string, options []string) (string, error) {
	def := ""
	if len(options) > 0 {
		def = options[0]
	}
	for {
		answer, err := p.Default(fmt.Sprintf("%s(%s) ", label, strings.Join(options, "/")), def)
		if err != nil {
			return "", err
		}
		for _, o := range options {
			if strings.EqualFold(o, answer) {
				return o, nil
			}
		}
		fmt.Fprintf(p.out, "Please choose one of: %s\n", strings.Join(options, ", "))
	}
}

// Confirm asks a yes/no question; anything but y or yes is a no
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Line(label + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Secret reads a value without echo. Surrounding whitespace is kept and the
// read buffer is wiped before returning.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprint(p.out, label)

	var raw []byte
	var err error
	if p.terminal {
		raw, err = term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
	} else {
		raw, err = p.readLine()
	}
	defer wipe(raw)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// readLine returns one line without its terminator. The returned slice is
// owned by the caller.
func (p *Prompter) readLine() ([]byte, error) {
	line, err := p.in.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		wipe(line)
		return nil, err
	}
	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}
	return line[:n], nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
