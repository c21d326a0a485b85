package round

import (
	"encoding/json"
	"time"
)

const defaultClickBoxDelay = 3 * time.Second

type clickBoxConfig struct {
	Instructions string   `json:"instructions"`
	Delay        *float64 `json:"delay"`
	Position     *Point   `json:"position"`
	MaxDuration  *float64 `json:"max_duration"`
}

// ClickBox shows a small target after a fixed delay. Only a click strictly
// inside the target resolves; misses get local feedback.
type ClickBox struct {
	lifecycle
	delay  time.Duration
	target Rect
}

func newClickBox(env Env, payload json.RawMessage) (Engine, error) {
	var cfg clickBoxConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	center := Point{X: 0.5, Y: 0.5}
	if cfg.Position != nil {
		center = *cfg.Position
	}
	size := env.Options.ClickBoxSize
	return &ClickBox{
		lifecycle: newLifecycle(env, TagClickBox, cfg.Instructions, "Wait for the box to appear..."),
		delay:     seconds(cfg.Delay, defaultClickBoxDelay),
		target:    CenteredRect(center, size.W, size.H),
	}, nil
}

// Target returns the clickable region.
func (c *ClickBox) Target() Rect { return c.target }

func (c *ClickBox) Start() Effect {
	c.schedule(timerArm, c.delay)
	return Effect{}
}

func (c *ClickBox) Fire(ev TimerFired) Effect {
	if !c.accept(ev) || ev.Key != timerArm || c.phase != PhasePending {
		return Effect{}
	}
	c.arm(c.clock.Now(), "Click the box now!")
	return Effect{Cue: CueSuccess}
}

func (c *ClickBox) Interact(in Interaction) Effect {
	switch c.phase {
	case PhasePending:
		return c.feedback("Wait for the box to appear first!", CueFailure)
	case PhaseArmed:
		if in.Point == nil || !c.target.Contains(*in.Point) {
			return c.feedback("Try to click the small box!", CueFailure)
		}
		p := *in.Point
		return c.resolve(ClickReport{ClickTime: in.At, Outcome: OutcomeHit, Point: &p}, "Good job!", CueSuccess)
	}
	return Effect{}
}
