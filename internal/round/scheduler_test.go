package round

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func TestClockSchedulerDelivers(t *testing.T) {
	var clock fakeClock = clockwork.NewFakeClock()
	s := NewClockScheduler(clock, 4)
	ev := TimerFired{Owner: uuid.New(), Key: timerArm, Token: 7}

	s.Schedule(ev, 3*time.Second)
	clock.Advance(2 * time.Second)
	select {
	case got := <-s.Events():
		t.Fatalf("timer fired early: %+v", got)
	case <-time.After(20 * time.Millisecond):
	}

	clock.Advance(time.Second)
	select {
	case got := <-s.Events():
		if got != ev {
			t.Errorf("got %+v, want %+v", got, ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestClockSchedulerStop(t *testing.T) {
	var clock fakeClock = clockwork.NewFakeClock()
	s := NewClockScheduler(clock, 4)
	timer := s.Schedule(TimerFired{Owner: uuid.New(), Key: timerArm}, time.Second)

	if !timer.Stop() {
		t.Fatal("Stop() on a pending timer should return true")
	}
	clock.Advance(2 * time.Second)
	select {
	case got := <-s.Events():
		t.Fatalf("stopped timer fired: %+v", got)
	case <-time.After(20 * time.Millisecond):
	}
}
