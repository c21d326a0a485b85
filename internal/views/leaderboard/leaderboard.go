// Package leaderboard renders the ranked player table with spring-animated
// average-time bars.
package leaderboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/theme"
)

const (
	fps       = 60
	settleEps = 0.002
)

// FrameMsg advances the bar animation by one frame.
type FrameMsg struct{}

// Frame schedules the next animation frame.
func Frame() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

type bar struct {
	pos, vel, target float64
}

// Model holds the leaderboard state.
type Model struct {
	Width   int
	Current string // username to highlight

	entries []client.LeaderboardEntry
	bars    map[string]*bar // by player id, or username when the id is absent
	spring  harmonica.Spring
}

// New creates a leaderboard model.
func New() Model {
	return Model{
		bars:   make(map[string]*bar),
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.6),
	}
}

func entryKey(e client.LeaderboardEntry) string {
	if e.PlayerID != "" {
		return e.PlayerID
	}
	return e.Username
}

// SetEntries replaces the table. Bars for players already shown animate
// from their current length to the new one; new players grow from zero.
func (m *Model) SetEntries(entries []client.LeaderboardEntry) {
	m.entries = entries
	if m.bars == nil {
		m.bars = make(map[string]*bar)
	}

	slowest := 0.0
	for _, e := range entries {
		slowest = math.Max(slowest, e.AvgTime)
	}

	next := make(map[string]*bar, len(entries))
	for _, e := range entries {
		k := entryKey(e)
		b, ok := m.bars[k]
		if !ok {
			b = &bar{}
		}
		b.target = 0
		if slowest > 0 {
			b.target = e.AvgTime / slowest
		}
		next[k] = b
	}
	m.bars = next
}

// Entries returns the current table.
func (m Model) Entries() []client.LeaderboardEntry { return m.entries }

// Step advances every bar by one frame and reports whether any is still
// moving.
func (m *Model) Step() bool {
	moving := false
	for _, b := range m.bars {
		b.pos, b.vel = m.spring.Update(b.pos, b.vel, b.target)
		if math.Abs(b.pos-b.target) < settleEps && math.Abs(b.vel) < settleEps {
			b.pos, b.vel = b.target, 0
			continue
		}
		moving = true
	}
	return moving
}

// Animating reports whether any bar has not reached its target.
func (m Model) Animating() bool {
	for _, b := range m.bars {
		if b.pos != b.target || b.vel != 0 {
			return true
		}
	}
	return false
}

// Rank returns the 1-based position of username, or 0.
func (m Model) Rank(username string) int {
	for i, e := range m.entries {
		if e.Username == username {
			return i + 1
		}
	}
	return 0
}

// View renders the table.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright).
		Render("  Leaderboard")

	if len(m.entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			header,
			theme.StyleDimmed.Render("  No rounds played yet"),
		)
	}

	colRank := 5
	colName := 20
	colTime := 9
	colRounds := 7
	colBar := max(8, min(30, width-colRank-colName-colTime-colRounds-10))

	dimStyle := lipgloss.NewStyle().Foreground(theme.ColorDimmed)
	brightStyle := lipgloss.NewStyle().Foreground(theme.ColorBright).Bold(true)

	tableHeader := fmt.Sprintf("  %-*s %-*s %*s %*s  %s",
		colRank, "Rank",
		colName, "Player",
		colTime, "Avg",
		colRounds, "Rounds",
		"",
	)
	lines := []string{
		header,
		dimStyle.Render(tableHeader),
		dimStyle.Render("  " + strings.Repeat("─", min(width-4, colRank+colName+colTime+colRounds+colBar+5))),
	}

	for i, e := range m.entries {
		rank := lipgloss.NewStyle().Foreground(theme.RankColor(i + 1)).
			Width(colRank).Render(fmt.Sprintf("%d", i+1))

		name := e.Username
		if len([]rune(name)) > colName-1 {
			name = string([]rune(name)[:colName-2]) + "…"
		}
		nameStyle := lipgloss.NewStyle().Width(colName)
		if e.Username == m.Current && m.Current != "" {
			nameStyle = nameStyle.Foreground(theme.ColorMe).Bold(true)
		}
		nameStr := nameStyle.Render(name)

		timeStr := brightStyle.Width(colTime).Align(lipgloss.Right).
			Render(fmt.Sprintf("%.3fs", e.AvgTime))
		roundsStr := brightStyle.Width(colRounds).Align(lipgloss.Right).
			Render(fmt.Sprintf("%d", e.RoundsPlayed))

		var frac float64
		if b, ok := m.bars[entryKey(e)]; ok {
			frac = b.pos
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s %s  %s",
			rank, nameStr, timeStr, roundsStr, renderBar(frac, colBar)))
	}

	if m.Current != "" && m.Rank(m.Current) == 0 {
		lines = append(lines, "", theme.StyleDimmed.Render("  Play a round to appear on the leaderboard!"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderBar draws a bar filled to frac of width. Shorter is faster.
func renderBar(frac float64, width int) string {
	filled := max(0, min(int(math.Round(frac*float64(width))), width))
	color := theme.ColorHealthy
	switch {
	case frac > 0.8:
		color = theme.ColorDanger
	case frac > 0.5:
		color = theme.ColorWarning
	}
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Repeat("░", width-filled))
}
