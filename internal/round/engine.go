// Package round implements the per-round reaction engines. Each round type
// is an independent Pending → Armed → Resolved state machine behind the
// Engine interface; the Dispatcher picks the implementation from the tag
// carried by a round_start event.
//
// Engines never block and never run off the caller's goroutine. Waiting is
// expressed as timers requested from a Scheduler; a fired timer comes back
// to the engine as a TimerFired value through Engine.Fire.
package round

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// Tag identifies a round type on the wire.
type Tag string

const (
	TagColorChange   Tag = "ColorChangeRound"
	TagBrightness    Tag = "BrightnessRound"
	TagClickBox      Tag = "ClickBoxRound"
	TagDoubleTrouble Tag = "DoubleTroubleRound"
	TagTicTacToe     Tag = "TicTacToeRound"
)

// Descriptor is the round_start payload: a tag plus the round-specific
// configuration, left undecoded until an engine is built for it.
type Descriptor struct {
	Tag     Tag             `json:"round_type"`
	Payload json.RawMessage `json:"round_data"`
}

// Phase is the engine-local lifecycle state.
type Phase int

const (
	PhasePending Phase = iota
	PhaseArmed
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseArmed:
		return "armed"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Outcome is the local classification of the interaction that resolved a
// round. The server remains authoritative on scoring.
type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeEarly Outcome = "early"
	OutcomeGood  Outcome = "good"
	OutcomeBad   Outcome = "bad"
	OutcomeMiss  Outcome = "miss"
)

// Region names the DoubleTrouble target that was hit.
type Region string

const (
	RegionNone Region = "none"
	RegionGood Region = "good"
	RegionBad  Region = "bad"
)

// Cue is an audio hint emitted alongside a transition.
type Cue int

const (
	CueNone Cue = iota
	CueNotify
	CueSuccess
	CueFailure
)

// Point is a position normalized to the interaction surface, both axes in
// [0,1] with the origin at the top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InSurface reports whether p lies on the unit surface.
func (p Point) InSurface() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1 &&
		!math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// Cell addresses a board square.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Rect is an axis-aligned region in surface coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// CenteredRect returns a w×h rect centered on c.
func CenteredRect(c Point, w, h float64) Rect {
	return Rect{MinX: c.X - w/2, MinY: c.Y - h/2, MaxX: c.X + w/2, MaxY: c.Y + h/2}
}

// Contains reports whether p is strictly inside r. Points on the border
// do not count.
func (r Rect) Contains(p Point) bool {
	return p.X > r.MinX && p.X < r.MaxX && p.Y > r.MinY && p.Y < r.MaxY
}

// Interaction is a single user click (or its keyboard equivalent).
// Point is set for surface rounds, Cell for board rounds.
type Interaction struct {
	At    time.Time
	Point *Point
	Cell  *Cell
}

// ClickReport is the normalized record of the interaction that resolved a
// round. The reporting adapter stamps the send time when it goes out.
type ClickReport struct {
	Tag        Tag
	ClickTime  time.Time
	Outcome    Outcome
	Point      *Point
	Cell       *Cell
	Region     Region
	Brightness *int
}

// Effect is what a transition asks the host to do: emit a report, play a
// cue, or both. The zero Effect means nothing happened.
type Effect struct {
	Report *ClickReport
	Cue    Cue
}

// State is a read-only snapshot of the common engine fields.
type State struct {
	Phase      Phase
	ArmedAt    time.Time
	ResolvedAt time.Time
	Outcome    Outcome
	Message    string
	Cancelled  bool
}

// Engine is the capability shared by every round type.
type Engine interface {
	ID() uuid.UUID
	Tag() Tag
	Instructions() string

	// Start schedules the arming timers. It is called once, right after
	// the engine is built.
	Start() Effect

	// Fire delivers a timer previously requested by this engine. Deliveries
	// for other engines, stale schedules, or after Cancel are ignored.
	Fire(ev TimerFired) Effect

	// Interact handles a click. Only the first qualifying interaction
	// produces a report.
	Interact(in Interaction) Effect

	State() State
	Resolved() bool

	// Cancel stops every outstanding timer. A cancelled engine never
	// reports.
	Cancel()
}
