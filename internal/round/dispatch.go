package round

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Options carries the client-side tunables for the round types.
type Options struct {
	ColorChangeMinDelay time.Duration
	ColorChangeMaxDelay time.Duration
	BrightnessTick      time.Duration
	ClickBoxSize        Size
	DoubleTroubleSize   Size
}

// Size is a width/height pair in surface units.
type Size struct {
	W, H float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		ColorChangeMinDelay: 2 * time.Second,
		ColorChangeMaxDelay: 7 * time.Second,
		BrightnessTick:      50 * time.Millisecond,
		ClickBoxSize:        Size{W: 0.1, H: 0.2},
		DoubleTroubleSize:   Size{W: 0.1, H: 0.2},
	}
}

// Env is what every engine is built with.
type Env struct {
	Clock     clockwork.Clock
	Scheduler Scheduler
	Rand      *rand.Rand
	Options   Options
}

// Factory builds an engine from a round_data payload.
type Factory func(env Env, payload json.RawMessage) (Engine, error)

// factories lists every known round type.
var factories = map[Tag]Factory{
	TagColorChange:   newColorChange,
	TagBrightness:    newBrightness,
	TagClickBox:      newClickBox,
	TagDoubleTrouble: newDoubleTrouble,
	TagTicTacToe:     newTicTacToe,
}

// Known reports whether tag has an engine.
func Known(tag Tag) bool {
	_, ok := factories[tag]
	return ok
}

// Dispatcher builds engines for round descriptors.
type Dispatcher struct {
	env Env
}

// NewDispatcher returns a dispatcher sharing env across the engines it
// builds. A nil Rand is replaced with a time-seeded source.
func NewDispatcher(env Env) *Dispatcher {
	if env.Clock == nil {
		env.Clock = clockwork.NewRealClock()
	}
	if env.Rand == nil {
		seed := uint64(env.Clock.Now().UnixNano())
		env.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Dispatcher{env: env}
}

// New returns a fresh engine for d. Unknown tags and undecodable payloads
// yield a placeholder that never arms or reports.
func (d *Dispatcher) New(desc Descriptor) Engine {
	factory, ok := factories[desc.Tag]
	if !ok {
		log.Warn().Str("round_type", string(desc.Tag)).Msg("unknown round type")
		return newPlaceholder(d.env, desc.Tag)
	}
	e, err := factory(d.env, desc.Payload)
	if err != nil {
		log.Warn().Err(err).Str("round_type", string(desc.Tag)).Msg("bad round payload")
		return newPlaceholder(d.env, desc.Tag)
	}
	return e
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decoding round_data: %w", err)
	}
	return nil
}

// Placeholder stands in for a round type this client cannot play.
type Placeholder struct {
	lifecycle
}

func newPlaceholder(env Env, tag Tag) *Placeholder {
	return &Placeholder{lifecycle: newLifecycle(env, tag, "", "Waiting for next round...")}
}

func (p *Placeholder) Start() Effect               { return Effect{} }
func (p *Placeholder) Fire(TimerFired) Effect      { return Effect{} }
func (p *Placeholder) Interact(Interaction) Effect { return Effect{} }
