// Package report turns a round's ClickReport into the outbound player_click
// message.
package report

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/reaction-game/tui/internal/client"
	"github.com/reaction-game/tui/internal/round"
)

// Sender delivers a player_click. *client.WSClient implements it.
type Sender interface {
	SendClick(client.PlayerClickPayload) error
}

// Adapter stamps and sends click reports. It does not retry or buffer.
type Adapter struct {
	sender Sender
	clock  clockwork.Clock
}

// New returns an Adapter. A nil clock uses the real clock.
func New(sender Sender, clock clockwork.Clock) *Adapter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Adapter{sender: sender, clock: clock}
}

// Report sends r once with client_now taken at send time.
func (a *Adapter) Report(r round.ClickReport) error {
	p := Payload(r, a.clock.Now())
	if err := a.sender.SendClick(p); err != nil {
		return fmt.Errorf("reporting %s click: %w", r.Tag, err)
	}
	log.Info().
		Str("round_type", string(r.Tag)).
		Str("outcome", string(r.Outcome)).
		Float64("client_click", p.ClientClick).
		Msg("click reported")
	return nil
}

// Payload builds the wire form of r.
func Payload(r round.ClickReport, now time.Time) client.PlayerClickPayload {
	p := client.PlayerClickPayload{
		RoundType:   string(r.Tag),
		ClientClick: client.EpochSeconds(r.ClickTime),
		ClientNow:   client.EpochSeconds(now),
		Outcome:     string(r.Outcome),
		Region:      string(r.Region),
		Brightness:  r.Brightness,
	}
	switch {
	case r.Cell != nil:
		p.Position = client.CellPosition{Row: r.Cell.Row, Col: r.Cell.Col}
	case r.Point != nil:
		p.Position = client.Position{X: r.Point.X, Y: r.Point.Y}
	}
	return p
}
