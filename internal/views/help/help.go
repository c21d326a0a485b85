// Package help renders the key and round reference overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/reaction-game/tui/internal/theme"
)

const text = `# How to play

Each round shows a challenge in the arena. React as fast as you can; the
server ranks players by average reaction time.

| Round | What to do |
|---|---|
| Color Change | Click once the box changes color. Clicking early ends your round. |
| Brightness | Click when the area matches the target brightness. |
| Click Box | Click inside the small box when it appears. |
| Double Trouble | Click the box in the announced color, not the other one. |
| Tic-Tac-Toe | Click the winning move for X. |

## Keys

| Key | Action |
|---|---|
| mouse click | click at the pointer |
| arrows / hjkl | move the keyboard cursor |
| space / enter | click at the cursor |
| r | ready for the next round |
| d | toggle the debug log |
| ? | toggle this help |
| q / ctrl+c | quit |
`

// Model caches the rendered markdown for one width.
type Model struct {
	Width int
	Style string // glamour standard style; "dark" when empty

	rendered string
	width    int
}

// New creates a help overlay.
func New() Model {
	return Model{}
}

// View renders the help text, re-rendering only when the width changes.
func (m *Model) View() string {
	w := max(m.Width-4, 40)
	if m.rendered == "" || m.width != w {
		m.rendered = render(w, m.Style)
		m.width = w
	}
	return theme.StyleBorder.Render(strings.TrimRight(m.rendered, "\n"))
}

func render(width int, style string) string {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Warn().Err(err).Msg("help renderer unavailable")
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		log.Warn().Err(err).Msg("help render failed")
		return text
	}
	return out
}
