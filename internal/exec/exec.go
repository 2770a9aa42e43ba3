// Package exec runs external commands for the forge CLI, optionally behind
// a bubbletea spinner. Generation itself never shells out; commands only run
// after a project has been committed to disk.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ferrors "github.com/simonhull/forge/internal/errors"
)

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
	dir    string

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Options configures command execution
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string // Additional environment variables
	Dir    string   // Working directory
}

// NewExecutor creates an executor. Nil opts or nil writers default to the
// process streams.
func NewExecutor(opts *Options) *Executor {
	if opts == nil {
		opts = &Options{}
	}
	e := &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		dir:         opts.Dir,
		commandFunc: exec.CommandContext,
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	return e
}

// CommandError reports an external command that could not start or
// exited unsuccessfully.
type CommandError struct {
	Command  string
	NotFound bool
	Err      error
}

func (e *CommandError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s: command not found, please install it and try again", e.Command)
	}
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is matches the environment error class.
func (e *CommandError) Is(target error) bool {
	return target == ferrors.ErrEnvironment
}

// Run executes a command, streaming its output to the executor's writers.
// Cancelling ctx kills the process.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.commandFunc(ctx, name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	if len(e.env) > 0 {
		cmd.Env = append(cmd.Environ(), e.env...)
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	line := strings.Join(append([]string{name}, args...), " ")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s cancelled: %w", line, ctxErr)
		}
		return &CommandError{Command: line, NotFound: isCommandNotFound(err), Err: err}
	}
	return nil
}

// RunWithSpinner runs a command behind a spinner on stderr. The command's
// own output is captured and printed only if it fails.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	var captured strings.Builder
	quiet := &Executor{
		stdout:      &captured,
		stderr:      &captured,
		env:         e.env,
		dir:         e.dir,
		commandFunc: e.commandFunc,
	}

	m := newSpinnerModel(message)
	p := tea.NewProgram(m, tea.WithOutput(e.stderr), tea.WithInput(nil))

	go func() {
		err := quiet.Run(ctx, name, args...)
		p.Send(spinnerDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running spinner: %w", err)
	}

	result := final.(*spinnerModel)
	if result.err != nil && captured.Len() > 0 {
		fmt.Fprint(e.stderr, captured.String())
	}
	return result.err
}

// spinnerDoneMsg signals command completion
type spinnerDoneMsg struct {
	err error
}

// spinnerModel is the BubbleTea model for the spinner
type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{
		spinner: s,
		message: message,
	}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}

// isCommandNotFound checks if an error indicates a command was not found
func isCommandNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 127 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") || strings.Contains(msg, "command not found")
}
