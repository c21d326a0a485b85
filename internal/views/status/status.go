package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Connected   bool
	Phase       string
	Username    string
	PlayerCount int
	Server      *client.ServerStatus
	Width       int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + m.Phase

	if m.Username != "" {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorMe).Render(m.Username)
	}
	content += sep + fmt.Sprintf("%d online", m.PlayerCount)

	if m.Server != nil {
		color := theme.ColorHealthy
		if m.Server.Status != "running" && m.Server.Status != "ok" {
			color = theme.ColorWarning
		}
		content += sep + lipgloss.NewStyle().Foreground(color).Render("server: "+m.Server.Status)
	}

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)

	return bar
}
