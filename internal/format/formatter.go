package format

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Formatter renders data in one output format
type Formatter interface {
	Format(data interface{}) error
}

// Formats lists the accepted --output values
var Formats = []string{"table", "json", "json-compact", "yaml", "text"}

// GetFormatter returns a formatter writing to w
func GetFormatter(format string, w io.Writer, useColors bool) (Formatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(w, useColors), nil
	case "json":
		return NewJSONFormatter(w, true), nil
	case "json-compact":
		return NewJSONFormatter(w, false), nil
	case "yaml":
		return NewYAMLFormatter(w), nil
	case "text":
		return NewTextFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Printer writes command output and status messages
type Printer struct {
	Out       io.Writer
	Err       io.Writer
	Format    string
	UseColors bool
}

// Print formats data using the printer's output format
func (p *Printer) Print(data interface{}) error {
	formatter, err := GetFormatter(p.Format, p.Out, p.UseColors)
	if err != nil {
		return err
	}
	return formatter.Format(data)
}

// Structured reports whether the output format is meant for machines, in
// which case status messages stay off stdout
func (p *Printer) Structured() bool {
	switch p.Format {
	case "json", "json-compact", "yaml":
		return true
	default:
		return false
	}
}

// Line writes a plain line to the output
func (p *Printer) Line(message string, args ...interface{}) {
	fmt.Fprintf(p.Out, message+"\n", args...)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string, args ...interface{}) {
	p.status(p.Out, color.FgGreen, "", message, args...)
}

// PrintError prints an error message
func (p *Printer) PrintError(message string, args ...interface{}) {
	p.status(p.Err, color.FgRed, "Error: ", message, args...)
}

// PrintErrors prints one error line per message
func (p *Printer) PrintErrors(messages []string) {
	for _, m := range messages {
		p.PrintError("%s", m)
	}
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(message string, args ...interface{}) {
	p.status(p.Err, color.FgYellow, "Warning: ", message, args...)
}

// PrintInfo prints an info message
func (p *Printer) PrintInfo(message string, args ...interface{}) {
	p.status(p.Out, color.FgBlue, "", message, args...)
}

func (p *Printer) status(w io.Writer, attr color.Attribute, prefix, message string, args ...interface{}) {
	if w == p.Out && p.Structured() {
		w = p.Err
	}
	if p.UseColors {
		c := color.New(attr)
		c.Fprintf(w, message+"\n", args...)
		return
	}
	fmt.Fprintf(w, prefix+message+"\n", args...)
}
