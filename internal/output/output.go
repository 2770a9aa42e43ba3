// Package output prints forge's user-facing messages.
//
// Progress and results go to stdout. Errors and warnings go to stderr so
// that a dry-run preview piped as JSON or YAML stays parseable.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	verboseMode bool
)

// SetVerbose turns Verbose messages on or off. SetupLogging calls it for
// --verbose.
func SetVerbose(v bool) {
	verboseMode = v
}

// IsVerbose reports whether verbose output is enabled.
func IsVerbose() bool {
	return verboseMode
}

// Printer writes styled messages. The zero value is not usable; use
// NewPrinter.
type Printer struct {
	out io.Writer
	err io.Writer
}

// NewPrinter returns a Printer writing results to out and problems to errOut.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{out: out, err: errOut}
}

func (p *Printer) Success(msg string) { fmt.Fprintln(p.out, successStyle.Render("🔥 "+msg)) }
func (p *Printer) Error(msg string)   { fmt.Fprintln(p.err, errorStyle.Render("❌ "+msg)) }
func (p *Printer) Warn(msg string)    { fmt.Fprintln(p.err, warnStyle.Render("⚠️  "+msg)) }
func (p *Printer) Info(msg string)    { fmt.Fprintln(p.out, infoStyle.Render("ℹ️  "+msg)) }
func (p *Printer) Step(msg string)    { fmt.Fprintln(p.out, stepStyle.Render("   "+msg)) }

// Verbose prints msg only when verbose mode is on.
func (p *Printer) Verbose(msg string) {
	if verboseMode {
		fmt.Fprintln(p.out, stepStyle.Render("🔍 "+msg))
	}
}

// NextSteps prints the commands to run after generating a project.
func (p *Printer) NextSteps(steps ...string) {
	if len(steps) == 0 {
		return
	}
	p.Info("Next steps:")
	for _, s := range steps {
		p.Step(s)
	}
}

// std resolves the process streams on every call so tests can swap them.
func std() *Printer {
	return NewPrinter(os.Stdout, os.Stderr)
}

// Success reports a completed operation, e.g. "Created library project: kit".
func Success(msg string) { std().Success(msg) }

// Error reports a failure that stopped the command.
func Error(msg string) { std().Error(msg) }

// Warn reports a problem that did not stop the command, such as a failed
// git init after the project was written.
func Warn(msg string) { std().Warn(msg) }

func Info(msg string) { std().Info(msg) }

func Step(msg string) { std().Step(msg) }

func Verbose(msg string) { std().Verbose(msg) }

func NextSteps(steps ...string) { std().NextSteps(steps...) }
