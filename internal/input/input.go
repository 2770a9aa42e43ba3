// Package input provides interactive terminal input for the forge CLI:
// line prompts, yes/no confirmation, and bubbletea pickers for the project
// type and features.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Prompter reads answers from a line-oriented input stream.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter reading from r and writing prompts to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(r), out: w}
}

var std = NewPrompter(os.Stdin, os.Stdout)

// Prompt asks the user for text input with an optional default value.
// If the user presses Enter without typing anything, the default is returned.
//
// Example:
//
//	author := input.Prompt("Author", "The myapp authors")
//	// Displays: Author (The myapp authors): _
func Prompt(message, defaultValue string) string {
	return std.Prompt(message, defaultValue)
}

// Confirm asks the user a yes/no question. See Prompter.Confirm.
func Confirm(message string, defaultYes bool) bool {
	return std.Confirm(message, defaultYes)
}

// Prompt asks for text input. See the package-level Prompt.
func (p *Prompter) Prompt(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprint(p.out, promptStyle.Render(message)+" "+
			hintStyle.Render(fmt.Sprintf("(%s)", defaultValue))+": ")
	} else {
		fmt.Fprint(p.out, promptStyle.Render(message)+": ")
	}

	answer, err := p.readLine()
	if err != nil || answer == "" {
		return defaultValue
	}
	return answer
}

// Confirm asks a yes/no question and returns true for y/yes in any case.
// If defaultYes is true, pressing Enter returns true. Otherwise, returns false.
//
// Example:
//
//	if input.Confirm("Initialize a git repository?", true) {
//	    // User said yes (or pressed Enter)
//	}
//	// Displays: Initialize a git repository? [Y/n]: _
func (p *Prompter) Confirm(message string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprint(p.out, promptStyle.Render(message)+" "+hintStyle.Render(hint)+": ")

	answer, err := p.readLine()
	if err != nil || answer == "" {
		return defaultYes
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// readLine returns the next trimmed line. A final line without a newline
// is still returned; io.EOF is reported only when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
