package round

import (
	"encoding/json"
	"time"
)

const (
	defaultDoubleTroubleDelay = 3 * time.Second
	defaultGoodColor          = "#4CAF50"
	defaultBadColor           = "#F44336"
)

type doubleTroubleConfig struct {
	Instructions string   `json:"instructions"`
	Delay        *float64 `json:"delay"`
	GoodPosition *Point   `json:"good_position"`
	BadPosition  *Point   `json:"bad_position"`
	GoodColor    string   `json:"good_color"`
	BadColor     string   `json:"bad_color"`
	MaxDuration  *float64 `json:"max_duration"`
}

// DoubleTrouble shows a good and a bad target together. Once armed, any
// click on the surface is final: good, bad, or a miss.
type DoubleTrouble struct {
	lifecycle
	delay     time.Duration
	good, bad Rect
	goodColor string
	badColor  string
	region    Region
}

func newDoubleTrouble(env Env, payload json.RawMessage) (Engine, error) {
	var cfg doubleTroubleConfig
	if err := decodePayload(payload, &cfg); err != nil {
		return nil, err
	}
	good, bad := Point{X: 0.3, Y: 0.5}, Point{X: 0.7, Y: 0.5}
	if cfg.GoodPosition != nil {
		good = *cfg.GoodPosition
	}
	if cfg.BadPosition != nil {
		bad = *cfg.BadPosition
	}
	if cfg.GoodColor == "" {
		cfg.GoodColor = defaultGoodColor
	}
	if cfg.BadColor == "" {
		cfg.BadColor = defaultBadColor
	}
	size := env.Options.DoubleTroubleSize
	return &DoubleTrouble{
		lifecycle: newLifecycle(env, TagDoubleTrouble, cfg.Instructions, "Wait for the boxes to appear..."),
		delay:     seconds(cfg.Delay, defaultDoubleTroubleDelay),
		good:      CenteredRect(good, size.W, size.H),
		bad:       CenteredRect(bad, size.W, size.H),
		goodColor: cfg.GoodColor,
		badColor:  cfg.BadColor,
		region:    RegionNone,
	}, nil
}

// Targets returns the good and bad regions.
func (d *DoubleTrouble) Targets() (good, bad Rect) { return d.good, d.bad }

// Colors returns the good and bad target colors.
func (d *DoubleTrouble) Colors() (good, bad string) { return d.goodColor, d.badColor }

// Region returns the region hit by the resolving click.
func (d *DoubleTrouble) Region() Region { return d.region }

// Classify returns the region p falls in. The bad target is drawn on top,
// so it wins where the two overlap.
func (d *DoubleTrouble) Classify(p Point) Region {
	switch {
	case d.bad.Contains(p):
		return RegionBad
	case d.good.Contains(p):
		return RegionGood
	default:
		return RegionNone
	}
}

func (d *DoubleTrouble) Start() Effect {
	d.schedule(timerArm, d.delay)
	return Effect{}
}

func (d *DoubleTrouble) Fire(ev TimerFired) Effect {
	if !d.accept(ev) || ev.Key != timerArm || d.phase != PhasePending {
		return Effect{}
	}
	d.arm(d.clock.Now(), "Click the GREEN box! Avoid the RED box!")
	return Effect{Cue: CueSuccess}
}

func (d *DoubleTrouble) Interact(in Interaction) Effect {
	switch d.phase {
	case PhasePending:
		return d.feedback("Wait for the boxes to appear first!", CueFailure)
	case PhaseArmed:
		if in.Point == nil || !in.Point.InSurface() {
			return Effect{}
		}
		p := *in.Point
		region := d.Classify(p)
		r := ClickReport{ClickTime: in.At, Point: &p, Region: region}
		var (
			message string
			cue     = CueFailure
		)
		switch region {
		case RegionGood:
			r.Outcome, message, cue = OutcomeGood, "Good job! You clicked the correct box!", CueSuccess
		case RegionBad:
			r.Outcome, message = OutcomeBad, "Oops! You clicked the wrong box!"
		default:
			r.Outcome, message = OutcomeMiss, "You missed both boxes!"
		}
		eff := d.resolve(r, message, cue)
		if eff.Report != nil {
			d.region = region
		}
		return eff
	}
	return Effect{}
}
