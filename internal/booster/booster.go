// internal/booster/booster.go

// Package booster runs the recovery sequence of the separated first
// stage: a timed boostback burn, an autonomous entry burn, and a
// player-lit landing burn with automatic cutoff. The booster flies
// through the same integrator as the primary vehicle; its outcome
// never fails the primary mission.
package booster

import (
	"github.com/liftoff-sim/simcore/internal/sim"
	"github.com/liftoff-sim/simcore/internal/util"
	"github.com/liftoff-sim/simcore/pkg/core"
)

// Config tunes the recovery sequence. Times are absolute mission time.
type Config struct {
	BoostbackThrust   float64 `json:"boostbackThrust" mapstructure:"boostbackThrust"`     // N
	BoostbackDuration float64 `json:"boostbackDuration" mapstructure:"boostbackDuration"` // s

	EntryBurnStart float64 `json:"entryBurnStart" mapstructure:"entryBurnStart"` // s
	EntryBurnEnd   float64 `json:"entryBurnEnd" mapstructure:"entryBurnEnd"`     // s
	EntryThrottle  float64 `json:"entryThrottle" mapstructure:"entryThrottle"`

	LandingThrust  float64 `json:"landingThrust" mapstructure:"landingThrust"`   // N
	PromptAltitude float64 `json:"promptAltitude" mapstructure:"promptAltitude"` // m
	CutoffVelocity float64 `json:"cutoffVelocity" mapstructure:"cutoffVelocity"` // m/s, small negative

	LandedVelocity   float64 `json:"landedVelocity" mapstructure:"landedVelocity"` // m/s, at or below is a landing
	FiveStarVelocity float64 `json:"fiveStarVelocity" mapstructure:"fiveStarVelocity"`
	FourStarVelocity float64 `json:"fourStarVelocity" mapstructure:"fourStarVelocity"`
}

// DefaultConfig matches the stock vehicle.
func DefaultConfig() Config {
	return Config{
		BoostbackThrust:   2535000,
		BoostbackDuration: 12,
		EntryBurnStart:    300,
		EntryBurnEnd:      318,
		EntryThrottle:     0.33,
		LandingThrust:     845000,
		PromptAltitude:    4000,
		CutoffVelocity:    -2,
		LandedVelocity:    6,
		FiveStarVelocity:  1.5,
		FourStarVelocity:  3,
	}
}

// Landing bonuses per star tier.
const (
	FiveStarBonus  = 500
	FourStarBonus  = 400
	ThreeStarBonus = 300
)

// Status is the mutable recovery state of one booster.
type Status struct {
	Flight core.FlightData

	// BoostbackEnd is the mission time at which an armed boostback burn
	// cuts off; zero means the burn was never armed.
	BoostbackEnd float64

	PromptShown bool // landing burn prompt is currently visible
	BurnIgnited bool // player lit the landing burn at least once
	EngineOn    bool // landing burn currently firing
	Unavailable bool // boostback window missed, recovery abandoned

	Result *core.LandingResult // set exactly once, at touchdown
}

// Down reports whether the booster has touched down.
func (s *Status) Down() bool {
	return s.Result != nil
}

// Model drives booster Status values through the flight integrator.
type Model struct {
	cfg Config
	sim *sim.Model
}

// New returns a Model sharing the primary vehicle's integrator.
func New(cfg Config, s *sim.Model) *Model {
	return &Model{cfg: cfg, sim: s}
}

// Config returns the recovery tuning.
func (m *Model) Config() Config {
	return m.cfg
}

// NewStatus snapshots the separated stage from the primary vehicle's
// state at separation.
func (m *Model) NewStatus(primary core.FlightData) *Status {
	return &Status{Flight: m.sim.NewStage1CoastingFlight(primary)}
}

// ArmBoostback starts the timed boostback burn. Called from the
// boostback player action; arming twice is a no-op.
func (m *Model) ArmBoostback(s *Status) {
	if s.BoostbackEnd > 0 || s.Unavailable || s.Down() {
		return
	}
	s.BoostbackEnd = s.Flight.MissionTime + m.cfg.BoostbackDuration
}

// IgniteLandingBurn lights the landing engine. Only valid while the
// prompt is showing; the burn can be lit once.
func (m *Model) IgniteLandingBurn(s *Status) bool {
	if !s.PromptShown || s.BurnIgnited || s.Down() {
		return false
	}
	s.BurnIgnited = true
	s.EngineOn = true
	s.PromptShown = false
	return true
}

// Update advances the booster by dt seconds. It picks the active burn,
// integrates, refreshes the prompt, and classifies the touchdown.
func (m *Model) Update(s *Status, dt float64) {
	if s.Down() {
		return
	}

	f := s.Flight
	t := f.MissionTime

	var force float64
	throttle, retro := 0.0, false
	switch {
	case s.BoostbackEnd > 0 && t < s.BoostbackEnd:
		// retrograde: oppose whatever direction the stage is moving
		force = m.cfg.BoostbackThrust
		if f.Velocity > 0 {
			force = -force
		}
		throttle, retro = 1, true
	case s.EngineOn:
		if f.Velocity >= m.cfg.CutoffVelocity {
			// auto-cut just above touchdown speed, the engine stays off
			s.EngineOn = false
		} else {
			force = m.cfg.LandingThrust
			throttle, retro = 1, true
		}
	case t >= m.cfg.EntryBurnStart && t < m.cfg.EntryBurnEnd && f.Velocity < 0:
		force = m.cfg.LandingThrust * m.cfg.EntryThrottle
		throttle, retro = m.cfg.EntryThrottle, true
	}
	f.Throttle = throttle
	f.Retrograde = retro

	prev := f
	f = m.sim.UpdateBooster(f, force, dt)
	s.Flight = f

	if f.Altitude <= 0 && prev.Altitude > 0 {
		v := prev.Velocity
		if v < 0 {
			v = -v
		}
		s.Result = m.classify(v)
		s.Flight.Throttle = 0
		s.Flight.Retrograde = false
		s.PromptShown = false
		s.EngineOn = false
		return
	}

	// the prompt only shows while coasting; an active burn keeps it down
	s.PromptShown = !s.BurnIgnited && !s.Unavailable && throttle == 0 &&
		f.Altitude < m.cfg.PromptAltitude && f.Velocity < 0
}

func (m *Model) classify(v float64) *core.LandingResult {
	res := &core.LandingResult{TouchdownVelocity: v, Accuracy: util.Clamp01(1 - v/10)}
	switch {
	case v < m.cfg.FiveStarVelocity:
		res.Landed, res.Stars, res.Bonus = true, 5, FiveStarBonus
	case v < m.cfg.FourStarVelocity:
		res.Landed, res.Stars, res.Bonus = true, 4, FourStarBonus
	case v <= m.cfg.LandedVelocity:
		res.Landed, res.Stars, res.Bonus = true, 3, ThreeStarBonus
	}
	return res
}
