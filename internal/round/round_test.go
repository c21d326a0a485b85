package round

import (
	"testing"
	"time"
)

func TestDispatcherUnknownTagIsPlaceholder(t *testing.T) {
	h := newHarness()
	e := h.build(t, Tag("MysteryRound"), map[string]any{})

	if _, ok := e.(*Placeholder); !ok {
		t.Fatalf("New() = %T, want *Placeholder", e)
	}
	if eff := h.clickAt(e, pt(0.5, 0.5), nil); eff.Report != nil {
		t.Error("placeholder must never report")
	}
	if e.State().Phase != PhasePending {
		t.Errorf("placeholder phase = %v, want pending", e.State().Phase)
	}
	if len(h.sched.scheduled) != 0 {
		t.Errorf("placeholder scheduled %d timers, want 0", len(h.sched.scheduled))
	}
}

func TestDispatcherBadPayloadIsPlaceholder(t *testing.T) {
	h := newHarness()
	e := h.disp.New(Descriptor{Tag: TagTicTacToe, Payload: []byte(`{"board": [[null]]}`)})
	if _, ok := e.(*Placeholder); !ok {
		t.Fatalf("New() with short board = %T, want *Placeholder", e)
	}
}

func TestDispatcherBuildsFreshEngines(t *testing.T) {
	h := newHarness()
	tags := []Tag{TagColorChange, TagBrightness, TagClickBox, TagDoubleTrouble, TagTicTacToe}
	for _, tag := range tags {
		a := h.disp.New(Descriptor{Tag: tag})
		b := h.disp.New(Descriptor{Tag: tag})
		if a == b || a.ID() == b.ID() {
			t.Errorf("%s: dispatcher reused an engine", tag)
		}
		if a.Tag() != tag {
			t.Errorf("Tag() = %q, want %q", a.Tag(), tag)
		}
		if !Known(tag) {
			t.Errorf("Known(%q) = false", tag)
		}
	}
}

// Every variant must emit exactly one report no matter how often it is
// clicked after the first qualifying interaction.
func TestExactlyOneReportPerRound(t *testing.T) {
	board := [][]*string{{nil, nil, nil}, {nil, nil, nil}, {nil, nil, nil}}
	tests := []struct {
		tag     Tag
		payload map[string]any
		point   *Point
		cell    *Cell
	}{
		{TagColorChange, map[string]any{}, nil, nil},
		{TagBrightness, map[string]any{"initial_pause": 1, "brightness_duration": 5}, nil, nil},
		{TagClickBox, map[string]any{"delay": 1, "position": map[string]float64{"x": 0.5, "y": 0.5}}, pt(0.5, 0.5), nil},
		{TagDoubleTrouble, map[string]any{"delay": 1}, pt(0.3, 0.5), nil},
		{TagTicTacToe, map[string]any{"delay": 1, "board": board}, nil, &Cell{Row: 1, Col: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			h := newHarness()
			e := h.build(t, tt.tag, tt.payload)
			h.arm(t, e)
			h.clock.Advance(100 * time.Millisecond)

			reports := 0
			for i := 0; i < 25; i++ {
				if eff := h.clickAt(e, tt.point, tt.cell); eff.Report != nil {
					reports++
				}
			}
			if reports != 1 {
				t.Errorf("got %d reports, want 1", reports)
			}
			if !e.Resolved() {
				t.Error("engine should be resolved")
			}
			if h.sched.active() != 0 {
				t.Errorf("%d timers still active after resolve", h.sched.active())
			}
		})
	}
}

func TestCancelledEngineIgnoresStaleTimers(t *testing.T) {
	tags := []Tag{TagColorChange, TagBrightness, TagClickBox, TagDoubleTrouble, TagTicTacToe}
	for _, tag := range tags {
		t.Run(string(tag), func(t *testing.T) {
			h := newHarness()
			e := h.build(t, tag, map[string]any{})
			timer := h.sched.last(t, timerArm)

			e.Cancel()
			if !timer.stopped {
				t.Error("Cancel() must stop the arming timer")
			}

			h.clock.Advance(timer.after)
			eff := h.deliver(e, timer)
			if eff != (Effect{}) {
				t.Errorf("stale timer produced %+v", eff)
			}
			if e.State().Phase != PhasePending {
				t.Errorf("phase = %v after stale timer, want pending", e.State().Phase)
			}
			if eff := h.clickAt(e, pt(0.5, 0.5), &Cell{}); eff.Report != nil {
				t.Error("cancelled engine reported")
			}
		})
	}
}

func TestTimerFromOtherEngineIgnored(t *testing.T) {
	h := newHarness()
	old := h.build(t, TagClickBox, map[string]any{"delay": 1})
	oldTimer := h.sched.last(t, timerArm)
	cur := h.build(t, TagClickBox, map[string]any{"delay": 1})

	if eff := cur.Fire(oldTimer.ev); eff != (Effect{}) {
		t.Errorf("foreign timer produced %+v", eff)
	}
	if cur.State().Phase != PhasePending {
		t.Error("foreign timer armed the current engine")
	}
	_ = old
}

func TestRescheduleInvalidatesOldToken(t *testing.T) {
	h := newHarness()
	e := h.build(t, TagColorChange, map[string]any{}).(*ColorChange)
	first := h.sched.last(t, timerArm)
	e.schedule(timerArm, time.Second)
	if !first.stopped {
		t.Error("rescheduling must stop the previous timer")
	}
	if eff := e.Fire(first.ev); eff != (Effect{}) {
		t.Error("superseded token was accepted")
	}
}

func TestRectContainsIsStrict(t *testing.T) {
	r := Rect{MinX: 0.2, MinY: 0.2, MaxX: 0.4, MaxY: 0.4}
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0.3, 0.3}, true},
		{Point{0.2, 0.3}, false},
		{Point{0.4, 0.3}, false},
		{Point{0.3, 0.4}, false},
		{Point{0.1, 0.1}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
