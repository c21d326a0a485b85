package round

import (
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// manualScheduler records schedules; tests deliver them by hand.
type manualScheduler struct {
	scheduled []*manualTimer
}

type manualTimer struct {
	ev      TimerFired
	after   time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *manualScheduler) Schedule(ev TimerFired, d time.Duration) Timer {
	t := &manualTimer{ev: ev, after: d}
	s.scheduled = append(s.scheduled, t)
	return t
}

// last returns the most recent schedule for key.
func (s *manualScheduler) last(t *testing.T, key TimerKey) *manualTimer {
	t.Helper()
	for i := len(s.scheduled) - 1; i >= 0; i-- {
		if s.scheduled[i].ev.Key == key {
			return s.scheduled[i]
		}
	}
	t.Fatalf("no timer scheduled for %q", key)
	return nil
}

func (s *manualScheduler) active() int {
	n := 0
	for _, t := range s.scheduled {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeClock is the subset of clockwork's fake clock the tests drive.
type fakeClock interface {
	clockwork.Clock
	Advance(d time.Duration)
}

type harness struct {
	clock fakeClock
	sched *manualScheduler
	disp  *Dispatcher
}

func newHarness() *harness {
	var clock fakeClock = clockwork.NewFakeClockAt(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC))
	sched := &manualScheduler{}
	return &harness{
		clock: clock,
		sched: sched,
		disp: NewDispatcher(Env{
			Clock:     clock,
			Scheduler: sched,
			Rand:      rand.New(rand.NewPCG(1, 2)),
			Options:   DefaultOptions(),
		}),
	}
}

func (h *harness) build(t *testing.T, tag Tag, payload any) Engine {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	e := h.disp.New(Descriptor{Tag: tag, Payload: raw})
	e.Start()
	return e
}

// arm advances the clock to the arming timer and delivers it.
func (h *harness) arm(t *testing.T, e Engine) Effect {
	t.Helper()
	timer := h.sched.last(t, timerArm)
	h.clock.Advance(timer.after)
	return h.deliver(e, timer)
}

func (h *harness) deliver(e Engine, timer *manualTimer) Effect {
	timer.fired = true
	return e.Fire(timer.ev)
}

func (h *harness) clickAt(e Engine, p *Point, c *Cell) Effect {
	return e.Interact(Interaction{At: h.clock.Now(), Point: p, Cell: c})
}

func pt(x, y float64) *Point { return &Point{X: x, Y: y} }
