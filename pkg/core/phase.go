// pkg/core/phase.go
package core

// Phase is the display phase of a mission attempt. Values are stable
// strings so they can be bound directly by UI clients.
type Phase string

const (
	PhasePreLaunch    Phase = "pre-launch"
	PhaseFlying       Phase = "flying"
	PhaseMaxQ         Phase = "max-q"
	PhaseStageSep     Phase = "stage-sep"
	PhaseStage2Flight Phase = "stage2-flight"
	PhaseBoostback    Phase = "boostback"
	PhaseSECO         Phase = "seco"
	PhaseOrbit        Phase = "orbit"
	PhaseFailed       Phase = "failed"
)

// Terminal reports whether the phase ends the attempt. No further
// mission events fire once a terminal phase is reached, though a
// separated booster keeps flying until it touches down.
func (p Phase) Terminal() bool {
	return p == PhaseOrbit || p == PhaseFailed
}
