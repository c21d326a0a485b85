// Package audio plays short feedback cues. The output device is opened on
// first use and shared for the life of the Player.
package audio

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Tone names a feedback cue.
type Tone int

const (
	ToneNotify Tone = iota
	ToneSuccess
	ToneFailure
)

func (t Tone) String() string {
	switch t {
	case ToneNotify:
		return "notify"
	case ToneSuccess:
		return "success"
	case ToneFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Beep is one note of a tone.
type Beep struct {
	Freq     float64 // Hz
	Duration time.Duration
	Volume   float64 // 0..1
	Offset   time.Duration
}

// Patterns holds the notes for each tone. Success rises, failure falls.
var Patterns = map[Tone][]Beep{
	ToneSuccess: {
		{Freq: 880, Duration: 100 * time.Millisecond, Volume: 0.3},
		{Freq: 1318.5, Duration: 200 * time.Millisecond, Volume: 0.3, Offset: 100 * time.Millisecond},
	},
	ToneFailure: {
		{Freq: 440, Duration: 100 * time.Millisecond, Volume: 0.3},
		{Freq: 220, Duration: 300 * time.Millisecond, Volume: 0.3, Offset: 100 * time.Millisecond},
	},
	ToneNotify: {
		{Freq: 660, Duration: 100 * time.Millisecond, Volume: 0.2},
	},
}

// Output renders a single beep.
type Output interface {
	Beep(Beep) error
}

// Opener opens the output device.
type Opener func() (Output, error)

// Settings configures a Player.
type Settings struct {
	Enabled bool
	Volume  float64 // master volume, 0..1
}

// Player plays tones. Its methods are safe for concurrent use.
type Player struct {
	settings Settings
	clock    clockwork.Clock
	open     Opener

	mu     sync.Mutex
	out    Output
	openEr error
	opened bool
}

// NewPlayer returns a Player. A nil opener uses the terminal bell; a nil
// clock uses the real clock.
func NewPlayer(s Settings, clock clockwork.Clock, open Opener) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if open == nil {
		open = TerminalBell
	}
	return &Player{settings: s, clock: clock, open: open}
}

// Play starts tone t and returns without waiting for it to finish.
func (p *Player) Play(t Tone) {
	if p == nil || !p.settings.Enabled || p.settings.Volume <= 0 {
		return
	}
	out, err := p.output()
	if err != nil {
		return
	}
	for _, b := range Patterns[t] {
		b.Volume = min(b.Volume*p.settings.Volume, 1)
		if b.Offset <= 0 {
			p.beep(out, t, b)
			continue
		}
		p.clock.AfterFunc(b.Offset, func() { p.beep(out, t, b) })
	}
}

func (p *Player) beep(out Output, t Tone, b Beep) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := out.Beep(b); err != nil {
		log.Debug().Err(err).Stringer("tone", t).Msg("audio beep failed")
	}
}

// output opens the device once. A failed open is not retried.
func (p *Player) output() (Output, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.opened {
		p.opened = true
		p.out, p.openEr = p.open()
		if p.openEr != nil {
			log.Warn().Err(p.openEr).Msg("audio output unavailable")
		}
	}
	return p.out, p.openEr
}

// Close releases the output device if it was opened.
func (p *Player) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// bell writes BEL to a terminal. Pitch and length are not representable.
type bell struct {
	w io.WriteCloser
}

func (b *bell) Beep(Beep) error {
	_, err := b.w.Write([]byte{'\a'})
	return err
}

func (b *bell) Close() error { return b.w.Close() }

// TerminalBell opens the controlling terminal.
func TerminalBell() (Output, error) {
	f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening terminal: %w", err)
	}
	return &bell{w: f}, nil
}
