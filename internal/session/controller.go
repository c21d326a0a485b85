// Package session tracks the client's connection, registration and round
// phase, and routes round events to the active engine.
//
// All methods must be called from one goroutine (the UI event loop).
package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reaction-game/tui/internal/audio"
	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/round"
)

// Phase is the session's position in the game.
type Phase int

const (
	PhaseUnregistered Phase = iota
	PhaseWaiting
	PhaseInRound
)

func (p Phase) String() string {
	switch p {
	case PhaseUnregistered:
		return "unregistered"
	case PhaseWaiting:
		return "waiting"
	case PhaseInRound:
		return "in round"
	default:
		return "unknown"
	}
}

// Username bounds, counted in characters after trimming.
const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

var (
	ErrUsernameEmpty    = errors.New("username is required")
	ErrUsernameTooShort = fmt.Errorf("username must be at least %d characters", MinUsernameLen)
	ErrUsernameTooLong  = fmt.Errorf("username must be at most %d characters", MaxUsernameLen)
)

// Outbound is the request side of the game channel.
type Outbound interface {
	RegisterPlayer(username string) error
	JoinWaitingRoom() error
}

// Reporter delivers a resolved round's click.
type Reporter interface {
	Report(round.ClickReport) error
}

// IdentityStore persists the username.
type IdentityStore interface {
	Username() (string, error)
	SetUsername(string) error
}

// Sounder plays feedback tones.
type Sounder interface {
	Play(audio.Tone)
}

// Notice is a user-facing status line.
type Notice struct {
	Text  string
	Error bool
}

// Deps wires a Controller to its collaborators. Sound and Identity may be nil.
type Deps struct {
	Outbound   Outbound
	Reporter   Reporter
	Identity   IdentityStore
	Sound      Sounder
	Dispatcher *round.Dispatcher
	Clock      clockwork.Clock
}

// Controller owns the session state machine.
type Controller struct {
	out      Outbound
	reporter Reporter
	ids      IdentityStore
	sound    Sounder
	disp     *round.Dispatcher
	clock    clockwork.Clock

	phase     Phase
	connected bool
	username  string
	playerID  string

	descriptor *round.Descriptor
	engine     round.Engine
	reported   bool

	results     map[string]client.RoundResult
	leaderboard []client.LeaderboardEntry
	clickResult *client.ClickResultPayload
	playerCount int
	notice      Notice
}

// New returns a Controller in PhaseUnregistered. The stored username, if
// any, is read once here.
func New(d Deps) *Controller {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	c := &Controller{
		out:      d.Outbound,
		reporter: d.Reporter,
		ids:      d.Identity,
		sound:    d.Sound,
		disp:     d.Dispatcher,
		clock:    d.Clock,
	}
	if c.ids != nil {
		name, err := c.ids.Username()
		if err != nil {
			log.Warn().Err(err).Msg("could not read stored username")
		}
		c.username = name
	}
	return c
}

// --- channel events ---

// OnConnected marks the channel live and registers the stored identity.
func (c *Controller) OnConnected() {
	c.connected = true
	if c.username != "" {
		c.register()
	}
}

// OnDisconnected abandons everything in flight and returns to
// PhaseUnregistered.
func (c *Controller) OnDisconnected(err error) {
	c.connected = false
	if c.engine != nil && !c.reported {
		log.Info().Str("round_type", string(c.engine.Tag())).Msg("round abandoned on disconnect")
	}
	c.dropRound()
	c.playerID = ""
	c.setPhase(PhaseUnregistered)
	if err != nil {
		c.notice = Notice{Text: "Disconnected from server. Reconnecting...", Error: true}
	} else {
		c.notice = Notice{Text: "Disconnected from server."}
	}
}

// OnRegistration applies the server's answer to register_player.
func (c *Controller) OnRegistration(p client.RegistrationStatusPayload) {
	if !p.Success {
		c.dropRound()
		c.playerID = ""
		c.setPhase(PhaseUnregistered)
		c.notice = Notice{Text: "Registration failed. Please try another username.", Error: true}
		log.Warn().Str("username", c.username).Msg("registration rejected")
		return
	}

	c.playerID = p.PlayerID
	if p.Username != "" {
		c.username = p.Username
	}
	c.notice = Notice{Text: "Registered as " + c.username}
	log.Info().Str("player_id", p.PlayerID).Bool("round_in_progress", p.RoundInProgress).Msg("registered")

	if p.GameState != nil && p.GameState.Leaderboard != nil {
		c.leaderboard = p.GameState.Leaderboard
	}
	if rs, ok := p.GameState.Round(); ok && p.RoundInProgress {
		c.startRound(rs)
		return
	}
	c.setPhase(PhaseWaiting)
}

// OnPlayerCount records the number of players online.
func (c *Controller) OnPlayerCount(n int) {
	c.playerCount = n
}

// OnRoundStart replaces any current round with a fresh engine.
func (c *Controller) OnRoundStart(p client.RoundStartPayload) {
	if c.playerID == "" {
		log.Debug().Str("round_type", p.RoundType).Msg("round_start ignored while unregistered")
		return
	}
	c.startRound(p)
}

// OnRoundEnd stores the results and returns to PhaseWaiting.
func (c *Controller) OnRoundEnd(p client.RoundEndPayload) {
	if c.playerID == "" {
		log.Debug().Msg("round_end ignored while unregistered")
		return
	}
	c.dropRound()
	c.results = p.Results
	c.leaderboard = p.Leaderboard
	c.setPhase(PhaseWaiting)
	if r, ok := c.MyResult(); ok {
		c.notice = Notice{Text: r.Message, Error: !r.Success}
	}
}

// OnClickResult records the server's verdict on the reported click.
func (c *Controller) OnClickResult(p client.ClickResultPayload) {
	c.clickResult = &p
	c.notice = Notice{Text: p.Message, Error: !p.Success}
}

// --- user actions ---

// ValidateUsername trims name and checks its length.
func ValidateUsername(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	switch {
	case n == 0:
		return "", ErrUsernameEmpty
	case n < MinUsernameLen:
		return "", ErrUsernameTooShort
	case n > MaxUsernameLen:
		return "", ErrUsernameTooLong
	}
	return name, nil
}

// SubmitUsername validates, persists and, when connected, registers name.
// A validation error leaves all state untouched.
func (c *Controller) SubmitUsername(name string) error {
	name, err := ValidateUsername(name)
	if err != nil {
		return err
	}
	c.username = name
	if c.ids != nil {
		if err := c.ids.SetUsername(name); err != nil {
			log.Warn().Err(err).Msg("could not persist username")
		}
	}
	if c.connected {
		c.register()
	} else {
		c.notice = Notice{Text: "Waiting for connection..."}
	}
	return nil
}

// RequestNextRound tells the server we are ready. The phase is unchanged.
func (c *Controller) RequestNextRound() error {
	if err := c.out.JoinWaitingRoom(); err != nil {
		c.notice = Notice{Text: "Could not reach server.", Error: true}
		return fmt.Errorf("join waiting room: %w", err)
	}
	c.notice = Notice{Text: "Ready for the next round."}
	return nil
}

// Interact forwards a click to the active engine. At is stamped from the
// controller's clock when unset.
func (c *Controller) Interact(in round.Interaction) {
	if c.phase != PhaseInRound || c.engine == nil {
		return
	}
	if in.At.IsZero() {
		in.At = c.clock.Now()
	}
	c.apply(c.engine.Interact(in))
}

// OnTimer routes a fired timer to the active engine, which drops it if it
// belongs elsewhere.
func (c *Controller) OnTimer(ev round.TimerFired) {
	if c.engine == nil {
		log.Debug().Str("key", string(ev.Key)).Msg("timer with no active round")
		return
	}
	c.apply(c.engine.Fire(ev))
}

// Close cancels the active engine.
func (c *Controller) Close() {
	c.dropRound()
}

// --- accessors ---

func (c *Controller) Phase() Phase                            { return c.phase }
func (c *Controller) Connected() bool                         { return c.connected }
func (c *Controller) Username() string                        { return c.username }
func (c *Controller) PlayerID() string                        { return c.playerID }
func (c *Controller) Engine() round.Engine                    { return c.engine }
func (c *Controller) Reported() bool                          { return c.reported }
func (c *Controller) Results() map[string]client.RoundResult  { return c.results }
func (c *Controller) Leaderboard() []client.LeaderboardEntry  { return c.leaderboard }
func (c *Controller) ClickResult() *client.ClickResultPayload { return c.clickResult }
func (c *Controller) PlayerCount() int                        { return c.playerCount }
func (c *Controller) Notice() Notice                          { return c.notice }

// Descriptor returns the active round descriptor, if any.
func (c *Controller) Descriptor() (round.Descriptor, bool) {
	if c.descriptor == nil {
		return round.Descriptor{}, false
	}
	return *c.descriptor, true
}

// MyResult returns this player's result from the last round_end.
func (c *Controller) MyResult() (client.RoundResult, bool) {
	if c.playerID == "" || c.results == nil {
		return client.RoundResult{}, false
	}
	r, ok := c.results[c.playerID]
	return r, ok
}

// --- internals ---

func (c *Controller) register() {
	if err := c.out.RegisterPlayer(c.username); err != nil {
		log.Warn().Err(err).Msg("register_player failed")
		c.notice = Notice{Text: "Could not reach server.", Error: true}
		return
	}
	c.notice = Notice{Text: "Registering as " + c.username + "..."}
}

// startRound cancels the previous engine before building the next one.
func (c *Controller) startRound(p client.RoundStartPayload) {
	c.dropRound()
	c.results = nil
	c.clickResult = nil

	desc := round.Descriptor{Tag: round.Tag(p.RoundType), Payload: p.RoundData}
	c.descriptor = &desc
	c.engine = c.disp.New(desc)
	c.reported = false
	c.setPhase(PhaseInRound)
	c.notice = Notice{}
	log.Info().Str("round_type", p.RoundType).Str("engine", c.engine.ID().String()).Msg("round started")

	c.play(round.CueNotify)
	c.apply(c.engine.Start())
}

func (c *Controller) dropRound() {
	if c.engine != nil {
		c.engine.Cancel()
	}
	c.engine = nil
	c.descriptor = nil
}

func (c *Controller) apply(eff round.Effect) {
	c.play(eff.Cue)
	if eff.Report == nil {
		return
	}
	if c.reported {
		log.Warn().Str("round_type", string(eff.Report.Tag)).Msg("duplicate click report dropped")
		return
	}
	c.reported = true
	if err := c.reporter.Report(*eff.Report); err != nil {
		log.Warn().Err(err).Msg("click report not delivered")
		c.notice = Notice{Text: "Could not send your click.", Error: true}
	}
}

func (c *Controller) play(cue round.Cue) {
	if c.sound == nil {
		return
	}
	switch cue {
	case round.CueNotify:
		c.sound.Play(audio.ToneNotify)
	case round.CueSuccess:
		c.sound.Play(audio.ToneSuccess)
	case round.CueFailure:
		c.sound.Play(audio.ToneFailure)
	}
}

func (c *Controller) setPhase(p Phase) {
	if c.phase == p {
		return
	}
	log.Debug().Stringer("from", c.phase).Stringer("to", p).Msg("session phase")
	c.phase = p
}
