// internal/timeline/timeline.go

// Package timeline holds the scripted mission schedule and the
// per-attempt progress through it. The schedule itself is immutable;
// all mutable bookkeeping (cursor position, outcomes) lives in a Run so
// a restart just allocates a fresh Run over the same Schedule.
package timeline

import (
	"github.com/liftoff-sim/simcore/internal/util"
	"github.com/liftoff-sim/simcore/pkg/core"
)

// Schedule is an ordered, read-only list of mission events.
type Schedule struct {
	events []core.GameEvent
}

// NewSchedule copies the given events into a Schedule. Events must be
// ordered by trigger time.
func NewSchedule(events []core.GameEvent) Schedule {
	cp := make([]core.GameEvent, len(events))
	copy(cp, events)
	return Schedule{events: cp}
}

// Default is the stock ascent profile.
func Default() Schedule {
	return NewSchedule([]core.GameEvent{
		{
			ID:          core.EventMaxQ,
			Label:       "Max-Q",
			TriggerTime: 72,
			Phase:       core.PhaseMaxQ,
			NextPhase:   core.PhaseFlying,
		},
		{
			ID:          core.EventMECO,
			Label:       "MECO",
			TriggerTime: 145,
			Phase:       core.PhaseFlying,
			NextPhase:   core.PhaseFlying,
		},
		{
			ID:            core.EventStageSep,
			Label:         "Stage Separation",
			TriggerTime:   153,
			WindowSize:    4,
			Phase:         core.PhaseStageSep,
			NextPhase:     core.PhaseStage2Flight,
			RequiresInput: true,
		},
		{
			ID:          core.EventStage2Ignition,
			Label:       "Stage 2 Ignition",
			TriggerTime: 158,
			Phase:       core.PhaseStage2Flight,
			NextPhase:   core.PhaseStage2Flight,
		},
		{
			ID:            core.EventBoostback,
			Label:         "Boostback Burn",
			TriggerTime:   200,
			WindowSize:    10,
			Phase:         core.PhaseBoostback,
			NextPhase:     core.PhaseStage2Flight,
			RequiresInput: true,
			Optional:      true,
		},
		{
			ID:            core.EventSECO,
			Label:         "SECO-1",
			TriggerTime:   480,
			WindowSize:    5,
			Phase:         core.PhaseSECO,
			NextPhase:     core.PhaseOrbit,
			RequiresInput: true,
		},
	})
}

// Len is the number of scheduled events.
func (s Schedule) Len() int {
	return len(s.events)
}

// At returns the i-th event.
func (s Schedule) At(i int) core.GameEvent {
	return s.events[i]
}

// Find returns the event with the given id.
func (s Schedule) Find(id core.EventID) (core.GameEvent, bool) {
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return core.GameEvent{}, false
}

// Run is the mutable progress of one attempt through a Schedule. The
// cursor only moves forward; each event resolves exactly once.
type Run struct {
	schedule Schedule
	cursor   int
	outcomes []core.EventOutcome
}

// NewRun starts a fresh attempt over the schedule.
func NewRun(s Schedule) *Run {
	return &Run{schedule: s}
}

// Current returns the event under the cursor, or false when the
// schedule is exhausted.
func (r *Run) Current() (core.GameEvent, bool) {
	if r.cursor >= r.schedule.Len() {
		return core.GameEvent{}, false
	}
	return r.schedule.At(r.cursor), true
}

// Done reports whether every event has resolved.
func (r *Run) Done() bool {
	return r.cursor >= r.schedule.Len()
}

// Commit resolves the current event as satisfied at mission time t and
// advances the cursor. Points are the caller's scoring for the event.
func (r *Run) Commit(t float64, accuracy float64, points int) {
	e, ok := r.Current()
	if !ok {
		return
	}
	r.outcomes = append(r.outcomes, core.EventOutcome{
		ID:         e.ID,
		ActionTime: t,
		Accuracy:   accuracy,
		Points:     points,
	})
	r.cursor++
}

// Miss resolves the current event as missed and advances the cursor.
func (r *Run) Miss() {
	e, ok := r.Current()
	if !ok {
		return
	}
	r.outcomes = append(r.outcomes, core.EventOutcome{ID: e.ID, Missed: true})
	r.cursor++
}

// Skip advances past the current event without recording an outcome.
// Used when a player action subsumes a following autonomous event.
func (r *Run) Skip() {
	if r.cursor < r.schedule.Len() {
		r.cursor++
	}
}

// Outcomes returns a copy of the resolved outcomes so far.
func (r *Run) Outcomes() []core.EventOutcome {
	cp := make([]core.EventOutcome, len(r.outcomes))
	copy(cp, r.outcomes)
	return cp
}

// Accuracy is the timing score for acting at mission time t on event e:
// 1 at the trigger time, falling linearly to 0 at the window edge.
// Autonomous events have no window and score 0.
func Accuracy(e core.GameEvent, t float64) float64 {
	if e.WindowSize <= 0 {
		return 0
	}
	d := t - e.TriggerTime
	if d < 0 {
		d = -d
	}
	return util.Clamp01(1 - d/e.WindowSize)
}
