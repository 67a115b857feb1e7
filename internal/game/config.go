// internal/game/config.go
package game

import (
	"github.com/liftoff-sim/simcore/internal/booster"
	"github.com/liftoff-sim/simcore/internal/sim"
	"github.com/liftoff-sim/simcore/internal/timeline"
)

// Config assembles everything a mission attempt needs.
type Config struct {
	Countdown    float64 `json:"countdown" mapstructure:"countdown"`       // s of pre-launch countdown
	LaunchWindow float64 `json:"launchWindow" mapstructure:"launchWindow"` // s after zero to ignite
	MaxQDisplay  float64 `json:"maxQDisplay" mapstructure:"maxQDisplay"`   // s the max-q callout stays up

	Vehicle sim.VehicleParams `json:"vehicle" mapstructure:"vehicle"`
	Booster booster.Config    `json:"booster" mapstructure:"booster"`

	Schedule timeline.Schedule `json:"-" mapstructure:"-"`
}

// DefaultConfig is the stock mission.
func DefaultConfig() Config {
	return Config{
		Countdown:    10,
		LaunchWindow: 8,
		MaxQDisplay:  4,
		Vehicle:      sim.Default(),
		Booster:      booster.DefaultConfig(),
		Schedule:     timeline.Default(),
	}
}
