// internal/game/phase.go
package game

import "github.com/liftoff-sim/simcore/pkg/core"

// phaseState is the machine's internal phase. Implementations are a
// closed set; per-tick dispatch switches on the concrete type, and any
// timer tied to a phase travels inside its value instead of living as
// a free field on the state.
type phaseState interface {
	display() core.Phase
}

type preLaunch struct{}
type flying struct{}

// maxQ is the transient max-Q callout; the display reverts to flying
// once mission time passes until.
type maxQ struct {
	until float64
}

// awaitingEvent is any open player-input window; the event's own Phase
// field supplies the display value.
type awaitingEvent struct {
	event core.GameEvent
}

type stage2Flight struct{}
type orbit struct{}
type failed struct{}

func (preLaunch) display() core.Phase       { return core.PhasePreLaunch }
func (flying) display() core.Phase          { return core.PhaseFlying }
func (maxQ) display() core.Phase            { return core.PhaseMaxQ }
func (p awaitingEvent) display() core.Phase { return p.event.Phase }
func (stage2Flight) display() core.Phase    { return core.PhaseStage2Flight }
func (orbit) display() core.Phase           { return core.PhaseOrbit }
func (failed) display() core.Phase          { return core.PhaseFailed }

func terminal(p phaseState) bool {
	switch p.(type) {
	case orbit, failed:
		return true
	}
	return false
}
