// Package app is the root Bubble Tea model. It owns the event loop and
// feeds channel events, timer deliveries and user input to the session
// controller.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/round"
	"github.com/reaction-game/tui/internal/session"
	"github.com/reaction-game/tui/internal/theme"
	"github.com/reaction-game/tui/internal/views/arena"
	"github.com/reaction-game/tui/internal/views/debug"
	"github.com/reaction-game/tui/internal/views/help"
	"github.com/reaction-game/tui/internal/views/leaderboard"
	"github.com/reaction-game/tui/internal/views/status"
	"github.com/reaction-game/tui/internal/views/username"
	"github.com/reaction-game/tui/internal/views/waiting"
)

const statusTimeout = 5 * time.Second

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayHelp
)

// TimerMsg carries a fired round timer into the event loop.
type TimerMsg struct{ Event round.TimerFired }

// ServerStatusMsg is the result of the /api/status probe.
type ServerStatusMsg struct {
	Status *client.ServerStatus
	Err    error
}

// Options wires the root model. HTTP and Timers may be nil.
type Options struct {
	WS         *client.WSClient
	HTTP       *client.HTTPClient
	Controller *session.Controller
	Timers     <-chan round.TimerFired
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     *client.WSClient
	http   *client.HTTPClient
	ctrl   *session.Controller
	timers <-chan round.TimerFired
	ctx    context.Context
	cancel context.CancelFunc

	keys    KeyMap
	width   int
	height  int
	overlay Overlay

	// Sub-views.
	statusBar status.Model
	prompt    username.Model
	waiting   waiting.Model
	arena     arena.Model
	debug     debug.Model
	help      *help.Model

	engine    round.Engine // engine the arena cursor was last centered for
	animating bool
}

// New creates the root model.
func New(o Options) Model {
	ctx, cancel := context.WithCancel(context.Background())
	hm := help.New()
	m := Model{
		ws:        o.WS,
		http:      o.HTTP,
		ctrl:      o.Controller,
		timers:    o.Timers,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		prompt:    username.New(o.Controller.Username(), session.MaxUsernameLen),
		waiting:   waiting.New(),
		arena:     arena.New(),
		debug:     debug.New(),
		help:      &hm,
	}
	if o.Controller.Username() != "" {
		m.prompt.Blur()
	}
	m.sync()
	return m
}

// Init starts the channel, the timer pump, the status probe and the
// spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.ws.Listen(m.ctx),
		m.waitTimer(),
		m.probeStatus(),
		m.waiting.Tick(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.sync()
	if !m.animating && m.waiting.Board.Animating() {
		m.animating = true
		cmd = tea.Batch(cmd, leaderboard.Frame())
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case username.SubmitMsg:
		if err := m.ctrl.SubmitUsername(msg.Name); err != nil {
			m.prompt.Err = err
			return m, nil
		}
		m.prompt.Blur()
		if m.ctrl.Connected() {
			m.debug.Addf(debug.KindOut, "register_player %s", m.ctrl.Username())
		}
		return m, nil

	case TimerMsg:
		reported := m.ctrl.Reported()
		m.ctrl.OnTimer(msg.Event)
		m.noteReport(reported)
		return m, m.waitTimer()

	case ServerStatusMsg:
		if msg.Err != nil {
			m.debug.Addf(debug.KindErr, "status probe: %v", msg.Err)
			return m, nil
		}
		m.statusBar.Server = msg.Status
		return m, nil

	case leaderboard.FrameMsg:
		if m.waiting.Board.Step() {
			return m, leaderboard.Frame()
		}
		m.animating = false
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.waiting, cmd = m.waiting.Update(msg)
		return m, cmd

	case client.WSConnectedMsg:
		m.debug.Add(debug.KindIn, "connected")
		m.ctrl.OnConnected()
		if m.ctrl.Username() != "" && !m.prompt.Focused() {
			m.debug.Addf(debug.KindOut, "register_player %s", m.ctrl.Username())
		}
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSDisconnectedMsg:
		if msg.Err != nil {
			m.debug.Addf(debug.KindErr, "disconnected: %v", msg.Err)
		} else {
			m.debug.Add(debug.KindIn, "disconnected")
		}
		m.ctrl.OnDisconnected(msg.Err)
		return m, m.ws.Listen(m.ctx)

	case client.WSRegistrationMsg:
		m.debug.Addf(debug.KindIn, "registration_status success=%t player=%s", msg.Payload.Success, msg.Payload.PlayerID)
		m.ctrl.OnRegistration(msg.Payload)
		if !msg.Payload.Success {
			m.prompt.Err = errors.New("registration failed, try another username")
			cmd := m.prompt.Focus()
			return m, tea.Batch(cmd, m.ws.ReadLoop(m.ctx))
		}
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSPlayerCountMsg:
		m.debug.Addf(debug.KindIn, "player_count %d", msg.Payload.Count)
		m.ctrl.OnPlayerCount(msg.Payload.Count)
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSRoundStartMsg:
		m.debug.Addf(debug.KindRound, "round_start %s", msg.Payload.RoundType)
		m.ctrl.OnRoundStart(msg.Payload)
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSRoundEndMsg:
		m.debug.Addf(debug.KindRound, "round_end %d results", len(msg.Payload.Results))
		m.ctrl.OnRoundEnd(msg.Payload)
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSClickResultMsg:
		m.debug.Addf(debug.KindIn, "click_result success=%t %s", msg.Payload.Success, msg.Payload.Message)
		m.ctrl.OnClickResult(msg.Payload)
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSErrorMsg:
		m.debug.Addf(debug.KindErr, "server error: %s", string(msg.Raw))
		return m, m.ws.ReadLoop(m.ctx)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape),
			m.overlay == OverlayDebug && key.Matches(msg, m.keys.Debug),
			m.overlay == OverlayHelp && key.Matches(msg, m.keys.Help):
			m.overlay = OverlayNone
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case m.overlay == OverlayDebug && key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil
	}

	if m.showPrompt() {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	inRound := m.ctrl.Phase() == session.PhaseInRound
	board := m.onBoard()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp

	case key.Matches(msg, m.keys.Ready):
		if m.ctrl.Phase() != session.PhaseWaiting {
			return m, nil
		}
		if err := m.ctrl.RequestNextRound(); err != nil {
			log.Warn().Err(err).Msg("ready request failed")
			m.debug.Addf(debug.KindErr, "%v", err)
			return m, nil
		}
		m.debug.Add(debug.KindOut, "join_waiting_room")

	case inRound && key.Matches(msg, m.keys.Click):
		m.interact(m.arena.CursorInteraction(m.ctrl.Engine()))
	case inRound && key.Matches(msg, m.keys.Up):
		m.arena.MoveCursor(0, -1, board)
	case inRound && key.Matches(msg, m.keys.Down):
		m.arena.MoveCursor(0, 1, board)
	case inRound && key.Matches(msg, m.keys.Left):
		m.arena.MoveCursor(-1, 0, board)
	case inRound && key.Matches(msg, m.keys.Right):
		m.arena.MoveCursor(1, 0, board)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.overlay != OverlayNone || m.ctrl.Phase() != session.PhaseInRound {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if !m.arena.Layout.Contains(msg.X, msg.Y) {
		return m, nil
	}
	m.interact(m.arena.InteractionAt(m.ctrl.Engine(), msg.X, msg.Y))
	return m, nil
}

func (m *Model) interact(in round.Interaction) {
	reported := m.ctrl.Reported()
	m.ctrl.Interact(in)
	m.noteReport(reported)
}

// noteReport logs a click report that went out during the last call.
func (m *Model) noteReport(before bool) {
	if before || !m.ctrl.Reported() {
		return
	}
	if d, ok := m.ctrl.Descriptor(); ok {
		m.debug.Addf(debug.KindOut, "player_click %s", d.Tag)
	}
}

func (m Model) quit() (Model, tea.Cmd) {
	m.ctrl.Close()
	m.cancel()
	return m, tea.Quit
}

func (m Model) waitTimer() tea.Cmd {
	if m.timers == nil {
		return nil
	}
	ch := m.timers
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return TimerMsg{Event: ev}
	}
}

func (m Model) probeStatus() tea.Cmd {
	if m.http == nil {
		return nil
	}
	hc, parent := m.http, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, statusTimeout)
		defer cancel()
		st, err := hc.GetStatus(ctx)
		return ServerStatusMsg{Status: st, Err: err}
	}
}

func (m Model) showPrompt() bool {
	return m.ctrl.Phase() == session.PhaseUnregistered && m.prompt.Focused()
}

func (m Model) onBoard() bool {
	_, ok := m.ctrl.Engine().(*round.TicTacToe)
	return ok
}

// sync copies controller state into the sub-views and recomputes the
// arena geometry.
func (m *Model) sync() {
	m.statusBar.Width = m.width
	m.statusBar.Connected = m.ctrl.Connected()
	m.statusBar.Phase = m.ctrl.Phase().String()
	m.statusBar.Username = m.ctrl.Username()
	m.statusBar.PlayerCount = m.ctrl.PlayerCount()

	m.prompt.Width = m.width
	m.help.Width = m.width

	m.waiting.Width = m.width
	m.waiting.PlayerCount = m.ctrl.PlayerCount()
	m.waiting.Result = nil
	if r, ok := m.ctrl.MyResult(); ok {
		m.waiting.Result = &r
	}
	m.waiting.Board.Current = m.ctrl.Username()
	if !sameBoard(m.waiting.Board.Entries(), m.ctrl.Leaderboard()) {
		m.waiting.Board.SetEntries(m.ctrl.Leaderboard())
	}

	top := lipgloss.Height(m.header())
	m.arena.SetLayout(arena.Layout{
		X: 1,
		Y: top + 1,
		W: max(m.width-2, 1),
		H: max(m.height-top-lipgloss.Height(m.footer())-2, 1),
	})

	if e := m.ctrl.Engine(); e != m.engine {
		m.engine = e
		m.arena.CenterCursor()
		m.arena.ShowCursor = false
	}
}

func sameBoard(a, b []client.LeaderboardEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayDebug:
		return m.debug.View(m.width, m.height)
	case OverlayHelp:
		return m.help.View()
	}

	var body string
	switch {
	case m.ctrl.Phase() == session.PhaseInRound && m.ctrl.Engine() != nil:
		body = m.arena.View(m.ctrl.Engine())
	case m.ctrl.Phase() == session.PhaseWaiting:
		body = m.waiting.View()
	case m.showPrompt():
		body = m.prompt.View()
	default:
		body = m.connectingView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.footer())
}

// header is the status bar plus one instruction line and one notice line.
func (m Model) header() string {
	instr := ""
	if e := m.ctrl.Engine(); e != nil && m.ctrl.Phase() == session.PhaseInRound {
		instr = e.Instructions()
		if cr := m.ctrl.ClickResult(); cr != nil && cr.ReactionTime > 0 {
			instr += theme.StyleDimmed.Render(" (server: " + formatSeconds(cr.ReactionTime) + ")")
		}
	}
	n := m.ctrl.Notice()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar.View(),
		oneLine(theme.StyleHeader.Render(instr), m.width),
		oneLine(theme.Notice(n.Text, n.Error), m.width),
	)
}

func (m Model) footer() string {
	var hint string
	switch m.ctrl.Phase() {
	case session.PhaseInRound:
		hint = "  click/space:react  arrows:cursor  d:debug  ?:help  q:quit"
	case session.PhaseWaiting:
		hint = "  r:ready  d:debug  ?:help  q:quit"
	default:
		hint = "  enter:join  ctrl+c:quit"
	}
	return theme.StyleDimmed.Render(hint)
}

func (m Model) connectingView() string {
	msg := "Connecting to server..."
	if m.ctrl.Connected() {
		msg = "Registering as " + m.ctrl.Username() + "..."
	}
	return theme.StyleBorder.Padding(1, 3).Render(theme.StyleDimmed.Render(msg))
}

// oneLine keeps a header row to a single terminal line.
func oneLine(s string, width int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if width > 0 {
		s = lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	if s == "" {
		return " "
	}
	return s
}

func formatSeconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Millisecond).String()
}
