// Package waiting renders the waiting room between rounds.
package waiting

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/theme"
	"github.com/reaction-game/tui/internal/views/leaderboard"
)

// Model is the waiting room: last result, player count and leaderboard.
type Model struct {
	Spinner     spinner.Model
	Board       leaderboard.Model
	Result      *client.RoundResult
	PlayerCount int
	Width       int
}

// New creates a waiting room.
func New() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorArmedBox)
	return Model{Spinner: sp, Board: leaderboard.New()}
}

// Tick starts the spinner.
func (m Model) Tick() tea.Cmd {
	return m.Spinner.Tick
}

// Update advances the spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.Spinner, cmd = m.Spinner.Update(msg)
	return m, cmd
}

// View renders the waiting room.
func (m Model) View() string {
	lines := []string{theme.StyleHeader.Render("Waiting Room"), ""}

	if r := m.Result; r != nil {
		style := theme.StyleSuccess
		if !r.Success {
			style = theme.StyleError
		}
		lines = append(lines, theme.StyleHeader.Render("Your result"), style.Render(r.Message))
		if r.ReactionTime > 0 {
			lines = append(lines, fmt.Sprintf("Reaction time: %.3fs", r.ReactionTime))
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		fmt.Sprintf("Players online: %d", m.PlayerCount),
		"",
		m.Spinner.View()+" The next round will start automatically when all players are ready.",
		"",
	)

	m.Board.Width = m.Width
	lines = append(lines, m.Board.View(), "", theme.StyleDimmed.Render("r: ready for next round"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
