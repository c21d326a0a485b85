// Package username renders the registration prompt.
package username

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reaction-game/tui/internal/theme"
)

// SubmitMsg is emitted when the user presses enter.
type SubmitMsg struct {
	Name string
}

// Model wraps a text input with an inline validation error.
type Model struct {
	input textinput.Model
	Err   error
	Width int
}

// New returns a focused prompt limited to maxLen characters.
func New(initial string, maxLen int) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Enter your username"
	in.CharLimit = maxLen
	in.SetValue(initial)
	in.Focus()
	return Model{input: in}
}

// Value returns the current text.
func (m Model) Value() string { return m.input.Value() }

// Focused reports whether keys go to the input.
func (m Model) Focused() bool { return m.input.Focused() }

// Focus gives the input keyboard focus.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur releases keyboard focus.
func (m *Model) Blur() {
	m.input.Blur()
}

// Update handles a key. Enter emits SubmitMsg; any other key clears the
// previous error.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEnter {
		name := m.input.Value()
		return m, func() tea.Msg { return SubmitMsg{Name: name} }
	}
	if _, ok := msg.(tea.KeyMsg); ok {
		m.Err = nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt box.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Reaction Game"))
	b.WriteString("\n\n")
	b.WriteString("Choose a username to join.\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(theme.StyleError.Render(m.Err.Error()))
	} else {
		b.WriteString(theme.StyleDimmed.Render("enter: join  ctrl+c: quit"))
	}

	box := theme.StyleBorder.Padding(1, 3).Render(b.String())
	if m.Width > 0 {
		return lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, box)
	}
	return box
}
