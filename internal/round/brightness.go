package round

import (
	"encoding/json"
	"time"
)

const (
	defaultInitialPause       = 2 * time.Second
	defaultBrightnessDuration = 5 * time.Second
	defaultTargetBrightness   = 75

	// brightnessTolerance is how close a click must land to the target for
	// the success cue.
	brightnessTolerance = 10
)

type brightnessConfig struct {
	Instructions       string   `json:"instructions"`
	TargetBrightness   *int     `json:"target_brightness"`
	InitialPause       *float64 `json:"initial_pause"`
	BrightnessDuration *float64 `json:"brightness_duration"`
	MaxDuration        *float64 `json:"max_duration"`
}

// RampValue is the brightness shown elapsed into a ramp of the given
// duration: floor(100*elapsed/duration) clamped to [0,100].
func RampValue(elapsed, duration time.Duration) int {
	if duration <= 0 {
		return 100
	}
	if elapsed <= 0 {
		return 0
	}
	num, den := elapsed.Milliseconds(), duration.Milliseconds()
	if den == 0 {
		num, den = int64(elapsed), int64(duration)
	}
	return int(max(0, min(100*num/den, 100)))
}

// Brightness pauses, then ramps from 0 to 100. The click samples the ramp
// from the elapsed time at the click instant.
type Brightness struct {
	lifecycle
	target   int
	pause    time.Duration
	duration time.Duration
	tick     time.Duration

	value    int
	rampDone bool
}

func newBrightness(env Env, payload json.RawMessage) (Engine, error) {
	var cfg brightnessConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	target := defaultTargetBrightness
	if cfg.TargetBrightness != nil {
		target = max(0, min(*cfg.TargetBrightness, 100))
	}
	tick := env.Options.BrightnessTick
	if tick <= 0 {
		tick = DefaultOptions().BrightnessTick
	}
	return &Brightness{
		lifecycle: newLifecycle(env, TagBrightness, cfg.Instructions, "Get ready..."),
		target:    target,
		pause:     seconds(cfg.InitialPause, defaultInitialPause),
		duration:  seconds(cfg.BrightnessDuration, defaultBrightnessDuration),
		tick:      tick,
	}, nil
}

// Target returns the brightness the player is aiming for.
func (b *Brightness) Target() int { return b.target }

// Value returns the brightness currently displayed. It is frozen once the
// round resolves.
func (b *Brightness) Value() int { return b.value }

// Running reports whether the ramp is advancing.
func (b *Brightness) Running() bool {
	return b.phase == PhaseArmed && !b.rampDone && !b.cancelled
}

func (b *Brightness) Start() Effect {
	b.schedule(timerArm, b.pause)
	return Effect{}
}

func (b *Brightness) Fire(ev TimerFired) Effect {
	if !b.accept(ev) {
		return Effect{}
	}
	now := b.clock.Now()
	switch ev.Key {
	case timerArm:
		if b.phase != PhasePending {
			return Effect{}
		}
		b.arm(now, "Click when brightness matches target!")
		b.value = 0
		b.schedule(timerTick, b.tick)
		return Effect{Cue: CueNotify}
	case timerTick:
		if !b.Running() {
			return Effect{}
		}
		b.value = RampValue(now.Sub(b.armedAt), b.duration)
		if b.value >= 100 {
			b.rampDone = true
			b.message = "Too slow!"
			return Effect{}
		}
		b.schedule(timerTick, b.tick)
	}
	return Effect{}
}

func (b *Brightness) Interact(in Interaction) Effect {
	if !b.Running() {
		return Effect{}
	}
	elapsed := in.At.Sub(b.armedAt)
	if elapsed >= b.duration {
		// The ramp finished before the click; the tick just hasn't caught up.
		b.value = 100
		b.rampDone = true
		return Effect{}
	}
	v := RampValue(elapsed, b.duration)
	b.value = v
	cue := CueFailure
	if abs(v-b.target) < brightnessTolerance {
		cue = CueSuccess
	}
	return b.resolve(ClickReport{ClickTime: in.At, Outcome: OutcomeHit, Brightness: &v}, "Clicked!", cue)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
