package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user quits a picker.
var ErrCancelled = errors.New("selection cancelled")

// Choice is one entry of a picker.
type Choice struct {
	Name        string
	Description string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Confirm key.Binding
	Quit    key.Binding

	multi bool
}

func newKeyMap(multi bool) keyMap {
	k := keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q", "esc"), key.WithHelp("q", "cancel")),
		multi:   multi,
	}
	// Toggling only means something in a checklist.
	k.Toggle.SetEnabled(multi)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.multi {
		return []key.Binding{k.Up, k.Down, k.Toggle, k.Confirm, k.Quit}
	}
	return []key.Binding{k.Up, k.Down, k.Confirm, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// pickerModel is the bubbletea model behind Select and MultiSelect.
type pickerModel struct {
	title    string
	choices  []Choice
	cursor   int
	multi    bool
	selected map[int]bool

	keys keyMap
	help help.Model

	done      bool
	cancelled bool
}

func newPickerModel(title string, choices []Choice, multi bool) pickerModel {
	return pickerModel{
		title:    title,
		choices:  choices,
		multi:    multi,
		selected: make(map[int]bool),
		keys:     newKeyMap(multi),
		help:     help.New(),
	}
}

// Init initializes the picker model
func (m pickerModel) Init() tea.Cmd {
	return nil
}

// Update handles keyboard input
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.cancelled = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keys.Toggle):
		m.selected[m.cursor] = !m.selected[m.cursor]

	case key.Matches(keyMsg, m.keys.Confirm):
		if !m.multi {
			m.selected = map[int]bool{m.cursor: true}
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the picker
func (m pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")

	for i, c := range m.choices {
		cursor := "  "
		if m.cursor == i {
			cursor = "> "
		}
		box := ""
		if m.multi {
			box = "[ ] "
			if m.selected[i] {
				box = "[x] "
			}
		}

		line := cursor + box + c.Name
		if m.cursor == i {
			line = selectedStyle.Render(line)
		}
		if c.Description != "" {
			line += mutedStyle.Render("  " + c.Description)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

// names returns the selected choice names in choice order.
func (m pickerModel) names() []string {
	var out []string
	for i, c := range m.choices {
		if m.selected[i] {
			out = append(out, c.Name)
		}
	}
	return out
}

func (m *pickerModel) preselect(names []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	first := true
	for i, c := range m.choices {
		if !want[c.Name] {
			continue
		}
		if m.multi {
			m.selected[i] = true
		}
		if first {
			m.cursor = i
			first = false
		}
	}
}

func runPicker(m pickerModel) (pickerModel, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return m, fmt.Errorf("running picker: %w", err)
	}
	result := final.(pickerModel)
	if result.cancelled || !result.done {
		return result, ErrCancelled
	}
	return result, nil
}

// Select shows a single-choice picker with the cursor on defaultName and
// returns the chosen name.
func Select(title string, choices []Choice, defaultName string) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("nothing to select")
	}
	m := newPickerModel(title, choices, false)
	m.preselect([]string{defaultName})

	result, err := runPicker(m)
	if err != nil {
		return "", err
	}
	return result.names()[0], nil
}

// MultiSelect shows a checklist with preselected entries ticked and
// returns the ticked names in choice order.
func MultiSelect(title string, choices []Choice, preselected []string) ([]string, error) {
	m := newPickerModel(title, choices, true)
	m.preselect(preselected)

	result, err := runPicker(m)
	if err != nil {
		return nil, err
	}
	return result.names(), nil
}
