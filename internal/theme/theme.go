// Package theme provides the Lip Gloss color palette and reusable styles
// for the reaction game TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Arena colors.
var (
	ColorIdleBox    = lipgloss.Color("#e0e0e0") // before the color change
	ColorArmedBox   = lipgloss.Color("#4a90e2")
	ColorErrorBox   = lipgloss.Color("#e74c3c")
	ColorTarget     = lipgloss.Color("#3498db")
	ColorClicked    = lipgloss.Color("#2ecc71")
	ColorSurface    = lipgloss.Color("#f5f5f5")
	ColorGoodBox    = lipgloss.Color("#4CAF50")
	ColorBadBox     = lipgloss.Color("#F44336")
	ColorBoardMark  = lipgloss.Color("#111827")
	ColorCursor     = lipgloss.Color("#f59e0b")
	ColorBrightness = lipgloss.Color("#fde047")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorMe      = lipgloss.Color("#a855f7")
)

// Rank colors for the top of the leaderboard.
var (
	ColorGold   = lipgloss.Color("#f59e0b")
	ColorSilver = lipgloss.Color("#9ca3af")
	ColorBronze = lipgloss.Color("#d97706")
)

// RankColor returns the color for a 1-based leaderboard rank.
func RankColor(rank int) lipgloss.Color {
	switch rank {
	case 1:
		return ColorGold
	case 2:
		return ColorSilver
	case 3:
		return ColorBronze
	default:
		return ColorDimmed
	}
}

// Gray returns a neutral gray at level 0 (black) to 100 (white).
func Gray(level int) lipgloss.Color {
	level = max(0, min(level, 100))
	v := level * 255 / 100
	const hex = "0123456789abcdef"
	b := []byte{'#', hex[v>>4], hex[v&0xf], hex[v>>4], hex[v&0xf], hex[v>>4], hex[v&0xf]}
	return lipgloss.Color(string(b))
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleSuccess = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorHealthy)

	StyleError = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorDanger)
)

// Notice renders a status line in the success or error style.
func Notice(text string, isErr bool) string {
	if text == "" {
		return ""
	}
	if isErr {
		return StyleError.Render(text)
	}
	return StyleSuccess.Render(text)
}
