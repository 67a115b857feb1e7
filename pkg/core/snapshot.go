// pkg/core/snapshot.go
package core

// Snapshot is the full view of a mission attempt at one tick. The host
// serializes one of these per tick for UI binding; everything a client
// renders comes from here.
type Snapshot struct {
	Phase   Phase       `json:"phase"`
	Rocket  FlightData  `json:"rocket"`
	Booster *FlightData `json:"booster,omitempty"` // nil before separation

	Countdown float64 `json:"countdown"` // s remaining, pre-launch only

	ActiveEvent        *GameEvent `json:"activeEvent,omitempty"` // open player window, if any
	EventTimeRemaining float64    `json:"eventTimeRemaining"`    // s until the open window closes

	Score         int            `json:"score"`
	Outcomes      []EventOutcome `json:"outcomes"`
	FailReason    string         `json:"failReason,omitempty"`
	OrbitAchieved bool           `json:"orbitAchieved"`

	SeparationTime float64 `json:"separationTime"` // mission time of stage sep, 0 if not yet

	MaxAltitude float64 `json:"maxAltitude"` // high-water marks over the attempt
	MaxVelocity float64 `json:"maxVelocity"`
	MaxQ        float64 `json:"maxQ"`

	BoosterPrompt      bool           `json:"boosterPrompt"` // landing burn prompt is showing
	BoosterUnavailable bool           `json:"boosterUnavailable"`
	Landing            *LandingResult `json:"landing,omitempty"` // set once the booster is down
}
