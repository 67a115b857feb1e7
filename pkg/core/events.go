// pkg/core/events.go
package core

// EventID names a scripted mission event.
type EventID string

const (
	EventMaxQ           EventID = "MAX_Q"
	EventMECO           EventID = "MECO"
	EventStageSep       EventID = "STAGE_SEP"
	EventStage2Ignition EventID = "STAGE2_IGNITION"
	EventBoostback      EventID = "BOOSTBACK"
	EventSECO           EventID = "SECO_1"
)

// GameEvent is one entry of the scripted mission schedule. Autonomous
// events (RequiresInput=false) fire exactly at TriggerTime. Player
// events open an input window [TriggerTime-WindowSize,
// TriggerTime+WindowSize]; acting inside the window commits the event,
// letting the window close misses it.
type GameEvent struct {
	ID            EventID `json:"id"`
	Label         string  `json:"label"`       // human readable, used in prompts and fail reasons
	TriggerTime   float64 `json:"triggerTime"` // s mission time
	WindowSize    float64 `json:"windowSize"`  // s, half-width; 0 for autonomous events
	Phase         Phase   `json:"phase"`       // display phase while the window is open
	NextPhase     Phase   `json:"nextPhase"`   // display phase after the event resolves
	RequiresInput bool    `json:"requiresInput"`
	Optional      bool    `json:"optional"` // a missed optional event does not fail the mission
}

// Deadline is the last mission time at which the event can still be
// satisfied.
func (e GameEvent) Deadline() float64 {
	return e.TriggerTime + e.WindowSize
}

// Opens is the mission time at which a player event's window opens.
func (e GameEvent) Opens() float64 {
	return e.TriggerTime - e.WindowSize
}

// EventOutcome records how one scheduled event resolved.
type EventOutcome struct {
	ID         EventID `json:"id"`
	ActionTime float64 `json:"actionTime"` // s mission time, 0 for misses
	Accuracy   float64 `json:"accuracy"`   // 0..1, player events only
	Points     int     `json:"points"`
	Missed     bool    `json:"missed"`
}

// LandingResult classifies a booster touchdown.
type LandingResult struct {
	TouchdownVelocity float64 `json:"touchdownVelocity"` // m/s, magnitude
	Landed            bool    `json:"landed"`
	Accuracy          float64 `json:"accuracy"` // 0..1
	Stars             int     `json:"stars"`    // 0 on crash, else 3..5
	Bonus             int     `json:"bonus"`    // score bonus, 0 on crash
}
