package round

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TimerKey names a timer within one engine ("arm", "tick").
type TimerKey string

const (
	timerArm  TimerKey = "arm"
	timerTick TimerKey = "tick"
)

// TimerFired is posted back to the event loop when a scheduled timer
// expires. Owner and Token let the receiving engine reject deliveries that
// no longer belong to it.
type TimerFired struct {
	Owner uuid.UUID
	Key   TimerKey
	Token uint64
}

// Timer is a handle to a scheduled delivery.
type Timer interface {
	Stop() bool
}

// Scheduler arranges for ev to be delivered after d.
type Scheduler interface {
	Schedule(ev TimerFired, d time.Duration) Timer
}

// ClockScheduler schedules deliveries with clockwork timers and posts fired
// events to a channel. The event loop drains Events(); nothing else touches
// engine state from the timer goroutine.
type ClockScheduler struct {
	clock  clockwork.Clock
	events chan TimerFired
}

// NewClockScheduler returns a scheduler whose channel holds up to buffer
// undelivered events.
func NewClockScheduler(clock clockwork.Clock, buffer int) *ClockScheduler {
	if buffer <= 0 {
		buffer = 16
	}
	return &ClockScheduler{clock: clock, events: make(chan TimerFired, buffer)}
}

// Events returns the channel fired timers are posted to.
func (s *ClockScheduler) Events() <-chan TimerFired {
	return s.events
}

// Schedule implements Scheduler.
func (s *ClockScheduler) Schedule(ev TimerFired, d time.Duration) Timer {
	return s.clock.AfterFunc(d, func() {
		select {
		case s.events <- ev:
		default:
			// Loop is behind. Ramps resample from elapsed time on the next
			// tick; a lost arm leaves the round pending until round_end.
			log.Warn().
				Str("owner", ev.Owner.String()).
				Str("key", string(ev.Key)).
				Msg("timer event channel full, dropping")
		}
	})
}
