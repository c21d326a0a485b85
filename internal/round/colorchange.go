package round

import (
	"encoding/json"
	"time"
)

type colorChangeConfig struct {
	Instructions string   `json:"instructions"`
	MaxDuration  *float64 `json:"max_duration"`
	MinDelay     *float64 `json:"min_delay"`
	MaxDelay     *float64 `json:"max_delay"`
}

// ColorChange arms after a random delay. Clicking before the color flips
// still resolves the round, as an early failure.
type ColorChange struct {
	lifecycle
	delay time.Duration
}

func newColorChange(env Env, payload json.RawMessage) (Engine, error) {
	var cfg colorChangeConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	lo := seconds(cfg.MinDelay, env.Options.ColorChangeMinDelay)
	hi := seconds(cfg.MaxDelay, env.Options.ColorChangeMaxDelay)
	if hi < lo {
		lo, hi = hi, lo
	}
	delay := lo
	if span := hi - lo; span > 0 {
		delay += time.Duration(env.Rand.Int64N(int64(span) + 1))
	}
	return &ColorChange{
		lifecycle: newLifecycle(env, TagColorChange, cfg.Instructions, "Wait for color change..."),
		delay:     delay,
	}, nil
}

// Delay returns the drawn arming delay.
func (c *ColorChange) Delay() time.Duration { return c.delay }

func (c *ColorChange) Start() Effect {
	c.schedule(timerArm, c.delay)
	return Effect{}
}

func (c *ColorChange) Fire(ev TimerFired) Effect {
	if !c.accept(ev) || ev.Key != timerArm || c.phase != PhasePending {
		return Effect{}
	}
	c.arm(c.clock.Now(), "Click now!")
	return Effect{Cue: CueSuccess}
}

func (c *ColorChange) Interact(in Interaction) Effect {
	switch c.phase {
	case PhasePending:
		return c.resolve(ClickReport{ClickTime: in.At, Outcome: OutcomeEarly}, "Too Early!", CueFailure)
	case PhaseArmed:
		return c.resolve(ClickReport{ClickTime: in.At, Outcome: OutcomeHit}, "Good!", CueSuccess)
	}
	return Effect{}
}
