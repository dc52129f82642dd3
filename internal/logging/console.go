package logging

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	headerColor   = color.New(color.FgCyan, color.Bold).SprintFunc()
	dimColor      = color.New(color.Faint).SprintFunc()
)

// Console prints user-facing lines for the non-TUI subcommands
type Console struct {
	Out io.Writer
	Err io.Writer
}

func (c Console) Info(format string, args ...any) {
	fmt.Fprintln(c.Out, infoPrefix("[INFO]")+" "+fmt.Sprintf(format, args...))
}

func (c Console) Success(format string, args ...any) {
	fmt.Fprintln(c.Out, successPrefix("[DONE]")+" "+fmt.Sprintf(format, args...))
}

func (c Console) Warn(format string, args ...any) {
	fmt.Fprintln(c.Out, warnPrefix("[WARN]")+" "+fmt.Sprintf(format, args...))
}

func (c Console) Error(format string, args ...any) {
	fmt.Fprintln(c.Err, errorPrefix("[ERROR]")+" "+fmt.Sprintf(format, args...))
}

// Header prints a bold section title
func (c Console) Header(format string, args ...any) {
	fmt.Fprintln(c.Out, headerColor(fmt.Sprintf(format, args...)))
}

// Line prints an indented detail line
func (c Console) Line(indent int, format string, args ...any) {
	fmt.Fprintf(c.Out, "%*s%s\n", indent*2, "", fmt.Sprintf(format, args...))
}

// Dim prints an indented, faint detail line
func (c Console) Dim(indent int, format string, args ...any) {
	fmt.Fprintf(c.Out, "%*s%s\n", indent*2, "", dimColor(fmt.Sprintf(format, args...)))
}
