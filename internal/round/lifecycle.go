package round

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type pendingTimer struct {
	token uint64
	timer Timer
}

// lifecycle holds the state every engine shares: identity, phase, arming
// and resolution instants, and the outstanding timers. Engines embed it and
// route all phase changes through arm and resolve.
type lifecycle struct {
	id           uuid.UUID
	tag          Tag
	instructions string
	clock        clockwork.Clock
	sched        Scheduler

	phase      Phase
	armedAt    time.Time
	resolvedAt time.Time
	outcome    Outcome
	message    string
	cancelled  bool

	nextToken uint64
	timers    map[TimerKey]pendingTimer
}

func newLifecycle(env Env, tag Tag, instructions, message string) lifecycle {
	return lifecycle{
		id:           uuid.New(),
		tag:          tag,
		instructions: instructions,
		clock:        env.Clock,
		sched:        env.Scheduler,
		message:      message,
		timers:       make(map[TimerKey]pendingTimer),
	}
}

func (l *lifecycle) ID() uuid.UUID        { return l.id }
func (l *lifecycle) Tag() Tag             { return l.tag }
func (l *lifecycle) Instructions() string { return l.instructions }
func (l *lifecycle) Resolved() bool       { return l.phase == PhaseResolved }

func (l *lifecycle) State() State {
	return State{
		Phase:      l.phase,
		ArmedAt:    l.armedAt,
		ResolvedAt: l.resolvedAt,
		Outcome:    l.outcome,
		Message:    l.message,
		Cancelled:  l.cancelled,
	}
}

// live reports whether the engine may still change state.
func (l *lifecycle) live() bool {
	return !l.cancelled && l.phase != PhaseResolved
}

// schedule requests a delivery of key after d, replacing any pending timer
// with the same key.
func (l *lifecycle) schedule(key TimerKey, d time.Duration) {
	if !l.live() {
		return
	}
	if prev, ok := l.timers[key]; ok {
		prev.timer.Stop()
	}
	l.nextToken++
	ev := TimerFired{Owner: l.id, Key: key, Token: l.nextToken}
	l.timers[key] = pendingTimer{token: ev.Token, timer: l.sched.Schedule(ev, d)}
	log.Debug().
		Str("engine", l.id.String()).
		Str("round_type", string(l.tag)).
		Str("key", string(key)).
		Dur("after", d).
		Msg("timer scheduled")
}

// accept consumes ev if it is the delivery this engine is currently
// waiting for. Everything else is a stale callback and is dropped.
func (l *lifecycle) accept(ev TimerFired) bool {
	if ev.Owner != l.id || !l.live() {
		log.Debug().
			Str("engine", l.id.String()).
			Str("owner", ev.Owner.String()).
			Str("key", string(ev.Key)).
			Msg("ignoring stale timer")
		return false
	}
	pt, ok := l.timers[ev.Key]
	if !ok || pt.token != ev.Token {
		return false
	}
	delete(l.timers, ev.Key)
	return true
}

func (l *lifecycle) arm(now time.Time, message string) {
	l.phase = PhaseArmed
	l.armedAt = now
	l.message = message
	log.Debug().
		Str("engine", l.id.String()).
		Str("round_type", string(l.tag)).
		Time("armed_at", now).
		Msg("round armed")
}

// resolve moves the engine to Resolved exactly once and stops its timers.
// A second call, or a call on a cancelled engine, yields the zero Effect.
func (l *lifecycle) resolve(r ClickReport, message string, cue Cue) Effect {
	if !l.live() {
		return Effect{}
	}
	l.phase = PhaseResolved
	l.resolvedAt = r.ClickTime
	l.outcome = r.Outcome
	l.message = message
	l.stopTimers()
	r.Tag = l.tag
	log.Debug().
		Str("engine", l.id.String()).
		Str("round_type", string(l.tag)).
		Str("outcome", string(r.Outcome)).
		Msg("round resolved")
	return Effect{Report: &r, Cue: cue}
}

// Cancel implements Engine.
func (l *lifecycle) Cancel() {
	if l.cancelled {
		return
	}
	l.cancelled = true
	l.stopTimers()
}

func (l *lifecycle) stopTimers() {
	for key, pt := range l.timers {
		pt.timer.Stop()
		delete(l.timers, key)
	}
}

// feedback updates the status message without a transition.
func (l *lifecycle) feedback(message string, cue Cue) Effect {
	if !l.live() {
		return Effect{}
	}
	l.message = message
	return Effect{Cue: cue}
}

// seconds converts a payload value in seconds to a duration, using def when
// the value is missing or negative.
func seconds(v *float64, def time.Duration) time.Duration {
	if v == nil || *v < 0 {
		return def
	}
	return time.Duration(*v * float64(time.Second))
}
