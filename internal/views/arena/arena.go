// Package arena draws the active round and maps terminal cells back to
// surface coordinates.
package arena

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reaction-game/tui/internal/round"
	"github.com/reaction-game/tui/internal/theme"
)

// Layout is the arena's content area in screen cells, excluding its border.
type Layout struct {
	X, Y int
	W, H int
}

// Contains reports whether screen cell (x, y) is inside the arena.
func (l Layout) Contains(x, y int) bool {
	return x >= l.X && x < l.X+l.W && y >= l.Y && y < l.Y+l.H
}

// PointAt maps screen cell (x, y) to the surface point at the cell's
// center. Cells outside the arena map outside [0,1].
func (l Layout) PointAt(x, y int) round.Point {
	if l.W <= 0 || l.H <= 0 {
		return round.Point{X: -1, Y: -1}
	}
	return round.Point{
		X: (float64(x-l.X) + 0.5) / float64(l.W),
		Y: (float64(y-l.Y) + 0.5) / float64(l.H),
	}
}

// CellAt maps screen cell (x, y) to a board cell.
func (l Layout) CellAt(x, y int) (round.Cell, bool) {
	if !l.Contains(x, y) {
		return round.Cell{}, false
	}
	return round.Cell{Row: (y - l.Y) * 3 / l.H, Col: (x - l.X) * 3 / l.W}, true
}

// Model holds the arena geometry and the keyboard cursor.
type Model struct {
	Layout Layout

	// Cursor is relative to the arena origin.
	CursorX, CursorY int
	ShowCursor       bool
}

// New creates an arena model.
func New() Model {
	return Model{}
}

// SetLayout resizes the arena and keeps the cursor inside it.
func (m *Model) SetLayout(l Layout) {
	m.Layout = l
	m.clampCursor()
}

// CenterCursor moves the cursor to the middle of the arena.
func (m *Model) CenterCursor() {
	m.CursorX, m.CursorY = m.Layout.W/2, m.Layout.H/2
}

// MoveCursor moves the keyboard cursor. On boards it steps a whole cell.
func (m *Model) MoveCursor(dx, dy int, board bool) {
	m.ShowCursor = true
	if board {
		c, ok := m.Layout.CellAt(m.Layout.X+m.CursorX, m.Layout.Y+m.CursorY)
		if !ok {
			c = round.Cell{Row: 1, Col: 1}
		}
		c.Col = max(0, min(c.Col+dx, 2))
		c.Row = max(0, min(c.Row+dy, 2))
		m.CursorX = (2*c.Col + 1) * m.Layout.W / 6
		m.CursorY = (2*c.Row + 1) * m.Layout.H / 6
		m.clampCursor()
		return
	}
	m.CursorX += dx
	m.CursorY += dy
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.CursorX = max(0, min(m.CursorX, m.Layout.W-1))
	m.CursorY = max(0, min(m.CursorY, m.Layout.H-1))
}

// InteractionAt builds the click for screen cell (x, y). Boards get a
// cell, or none when the click misses the board; surfaces get a point.
func (m Model) InteractionAt(e round.Engine, x, y int) round.Interaction {
	if _, ok := e.(*round.TicTacToe); ok {
		if c, ok := m.Layout.CellAt(x, y); ok {
			return round.Interaction{Cell: &c}
		}
		return round.Interaction{}
	}
	p := m.Layout.PointAt(x, y)
	return round.Interaction{Point: &p}
}

// CursorInteraction builds the click at the keyboard cursor.
func (m Model) CursorInteraction(e round.Engine) round.Interaction {
	return m.InteractionAt(e, m.Layout.X+m.CursorX, m.Layout.Y+m.CursorY)
}

// View renders e inside a bordered box.
func (m Model) View(e round.Engine) string {
	w, h := max(m.Layout.W, 1), max(m.Layout.H, 1)
	var c *canvas

	switch e := e.(type) {
	case *round.ColorChange:
		c = m.colorChange(e, w, h)
	case *round.Brightness:
		c = m.brightness(e, w, h)
	case *round.ClickBox:
		c = m.clickBox(e, w, h)
	case *round.DoubleTrouble:
		c = m.doubleTrouble(e, w, h)
	case *round.TicTacToe:
		c = m.ticTacToe(e, w, h)
	default:
		c = newCanvas(w, h, theme.ColorBg)
		c.text(h/2, "Waiting for next round...", theme.ColorDimmed)
	}

	if m.ShowCursor {
		c.set(m.CursorX, m.CursorY, '+', theme.ColorCursor)
	}
	return theme.StyleBorder.Render(c.render())
}

func (m Model) colorChange(e *round.ColorChange, w, h int) *canvas {
	st := e.State()
	bg := theme.ColorIdleBox
	switch {
	case st.Phase == round.PhaseResolved && st.Outcome == round.OutcomeEarly:
		bg = theme.ColorErrorBox
	case st.Phase == round.PhaseResolved:
		bg = theme.ColorClicked
	case st.Phase == round.PhaseArmed:
		bg = theme.ColorArmedBox
	}
	c := newCanvas(w, h, bg)
	c.text(h/2, st.Message, theme.ColorBoardMark)
	return c
}

func (m Model) brightness(e *round.Brightness, w, h int) *canvas {
	c := newCanvas(w, h, theme.ColorBg)
	split := round.Rect{MinX: 0, MinY: 0, MaxX: 0.66, MaxY: 1}
	swatch := round.Rect{MinX: 0.72, MinY: 0.3, MaxX: 0.98, MaxY: 0.7}

	c.fillRect(split, theme.Gray(e.Value()))
	c.fillRect(swatch, theme.Gray(e.Target()))
	c.textAt(int(0.85*float64(w)), int(0.2*float64(h)), fmt.Sprintf("Target %d%%", e.Target()), theme.ColorBright)
	if st := e.State(); st.Phase == round.PhaseResolved {
		c.textAt(int(0.33*float64(w)), h/2, fmt.Sprintf("%d%%", e.Value()), theme.ColorCursor)
	}
	return c
}

func (m Model) clickBox(e *round.ClickBox, w, h int) *canvas {
	c := newCanvas(w, h, theme.ColorSurface)
	st := e.State()
	switch st.Phase {
	case round.PhaseArmed:
		c.fillRect(e.Target(), theme.ColorTarget)
	case round.PhaseResolved:
		c.fillRect(e.Target(), theme.ColorClicked)
	}
	c.text(0, st.Message, theme.ColorBoardMark)
	return c
}

func (m Model) doubleTrouble(e *round.DoubleTrouble, w, h int) *canvas {
	c := newCanvas(w, h, theme.ColorSurface)
	st := e.State()
	if st.Phase != round.PhasePending {
		good, bad := e.Targets()
		goodColor, badColor := e.Colors()
		c.fillRect(good, lipgloss.Color(goodColor))
		c.fillRect(bad, lipgloss.Color(badColor))
	}
	c.text(0, st.Message, theme.ColorBoardMark)
	return c
}

func (m Model) ticTacToe(e *round.TicTacToe, w, h int) *canvas {
	c := newCanvas(w, h, theme.ColorSurface)
	st := e.State()
	if st.Phase == round.PhasePending {
		c.text(h/2, st.Message, theme.ColorBoardMark)
		return c
	}

	clicked, hasClick := e.Clicked()
	board := e.Board()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			row, col := y*3/h, x*3/w
			if hasClick && clicked == (round.Cell{Row: row, Col: col}) {
				c.at(x, y).bg = theme.ColorClicked
			}
			switch {
			case x > 0 && (x*3/w) != ((x-1)*3/w):
				c.set(x, y, '│', theme.ColorBorder)
			case y > 0 && (y*3/h) != ((y-1)*3/h):
				c.set(x, y, '─', theme.ColorBorder)
			}
		}
	}
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			if mark := board[r][col]; mark != "" {
				c.textAt((2*col+1)*w/6, (2*r+1)*h/6, mark, theme.ColorBoardMark)
			}
		}
	}
	return c
}

// --- canvas ---

type cell struct {
	r      rune
	fg, bg lipgloss.Color
}

type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int, bg lipgloss.Color) *canvas {
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', fg: theme.ColorBright, bg: bg}
	}
	return c
}

func (c *canvas) at(x, y int) *cell {
	return &c.cells[y*c.w+x]
}

func (c *canvas) set(x, y int, r rune, fg lipgloss.Color) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	cl := c.at(x, y)
	cl.r, cl.fg = r, fg
}

// fillRect paints every cell whose center lies strictly inside r, so the
// painted area matches what a click there would hit.
func (c *canvas) fillRect(r round.Rect, bg lipgloss.Color) {
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			p := round.Point{X: (float64(x) + 0.5) / float64(c.w), Y: (float64(y) + 0.5) / float64(c.h)}
			if r.Contains(p) {
				c.at(x, y).bg = bg
			}
		}
	}
}

// text writes s centered on row y.
func (c *canvas) text(y int, s string, fg lipgloss.Color) {
	c.textAt(c.w/2, y, s, fg)
}

// textAt writes s centered on column cx.
func (c *canvas) textAt(cx, y int, s string, fg lipgloss.Color) {
	runes := []rune(s)
	x0 := cx - len(runes)/2
	for i, r := range runes {
		c.set(x0+i, y, r, fg)
	}
}

func (c *canvas) render() string {
	lines := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var b strings.Builder
		row := c.cells[y*c.w : (y+1)*c.w]
		for start := 0; start < len(row); {
			end := start
			var run []rune
			for end < len(row) && row[end].fg == row[start].fg && row[end].bg == row[start].bg {
				run = append(run, row[end].r)
				end++
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(row[start].fg).
				Background(row[start].bg).
				Render(string(run)))
			start = end
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
