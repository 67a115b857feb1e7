// pkg/core/flight.go
package core

// Stage identifies which stage of the launch vehicle a flight record
// describes. Transitions are one-way: Stage1 -> Stage2.
type Stage uint8

const (
	Stage1 Stage = 1
	Stage2 Stage = 2
)

// FlightData is the state of a vehicle at one instant. A fresh value is
// produced every tick; it is never mutated in place by the integrator.
//
// Fuel is a fraction (0..1) of the current stage's propellant load.
// Drag is the magnitude of drag deceleration; its direction always
// opposes the sign of Velocity. Retrograde is only ever true on the
// separated booster, during reversed-thrust burns.
type FlightData struct {
	Altitude        float64 `json:"altitude"`        // m, clamped >= 0
	Velocity        float64 `json:"velocity"`        // m/s, signed (positive up)
	Acceleration    float64 `json:"acceleration"`    // m/s^2, net
	MissionTime     float64 `json:"missionTime"`     // s since liftoff
	Mass            float64 `json:"mass"`            // kg
	Fuel            float64 `json:"fuel"`            // fraction 0..1
	Stage           Stage   `json:"stage"`           // 1 or 2
	Throttle        float64 `json:"throttle"`        // fraction 0..1
	DynamicPressure float64 `json:"dynamicPressure"` // Pa, >= 0
	Gravity         float64 `json:"gravity"`         // m/s^2 at current altitude
	Drag            float64 `json:"drag"`            // m/s^2, magnitude
	Retrograde      bool    `json:"retrograde"`      // booster-only
}
