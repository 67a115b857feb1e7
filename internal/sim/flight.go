// internal/sim/flight.go
package sim

import (
	"math"

	"github.com/liftoff-sim/simcore/pkg/core"
)

// Model integrates one-dimensional vertical flight. It is pure: Update
// takes a FlightData by value and returns the advanced copy, so a
// single Model serves both the primary vehicle and the separated
// booster without shared state.
type Model struct {
	p VehicleParams
}

// New returns a Model for the given vehicle.
func New(p VehicleParams) *Model {
	return &Model{p: p}
}

// Params returns the vehicle tuning the model was built with.
func (m *Model) Params() VehicleParams {
	return m.p
}

// InitialFlight is the fully fueled vehicle sitting on the pad with
// engines off. Derived fields are populated so that Update(f, 0) == f.
func (m *Model) InitialFlight() core.FlightData {
	return m.Update(core.FlightData{
		Mass:  m.p.LiftoffMass(),
		Fuel:  1,
		Stage: core.Stage1,
	}, 0)
}

// effectiveIsp is the stage-1 specific impulse at altitude h. It rises
// linearly from the sea-level value and saturates at the vacuum value
// from IspSaturationAltitude upward.
func (m *Model) effectiveIsp(h float64) float64 {
	if h >= IspSaturationAltitude {
		return m.p.Stage1IspVac
	}
	if h < 0 {
		h = 0
	}
	return m.p.Stage1IspSea + (m.p.Stage1IspVac-m.p.Stage1IspSea)*h/IspSaturationAltitude
}

// engineThrust is the commanded engine force (N, positive up) and the
// propellant mass flow (kg/s) for the current state. Both are zero
// with the throttle closed or the tanks dry.
func (m *Model) engineThrust(f core.FlightData) (thrust, massFlow float64) {
	if f.Throttle <= 0 || f.Fuel <= 0 {
		return 0, 0
	}
	switch f.Stage {
	case core.Stage1:
		// Constant mass flow; thrust grows with altitude through the
		// effective Isp.
		massFlow = m.p.Stage1MassFlow * f.Throttle
		thrust = massFlow * m.effectiveIsp(f.Altitude) * G0
	case core.Stage2:
		// Constant thrust; mass flow follows from the vacuum Isp.
		thrust = m.p.Stage2Thrust * f.Throttle
		massFlow = thrust / (m.p.Stage2Isp * G0)
	}
	return thrust, massFlow
}

func (m *Model) propLoad(s core.Stage) float64 {
	if s == core.Stage2 {
		return m.p.Stage2PropMass
	}
	return m.p.Stage1PropMass
}

// Update advances the vehicle by dt seconds under its own engine.
// dt <= 0 only refreshes the derived fields.
func (m *Model) Update(f core.FlightData, dt float64) core.FlightData {
	thrust, flow := m.engineThrust(f)
	return m.step(f, thrust, flow, dt)
}

// UpdateBooster advances a separated booster under an externally
// commanded engine force (N, signed, positive up). The booster
// snapshot carries fuel=0, so its burns draw no tracked propellant and
// its mass stays constant.
func (m *Model) UpdateBooster(f core.FlightData, force, dt float64) core.FlightData {
	return m.step(f, force, 0, dt)
}

// step is the shared semi-implicit Euler integrator: acceleration is
// evaluated on the incoming state, velocity is advanced first, and the
// updated velocity moves the altitude.
func (m *Model) step(f core.FlightData, thrust, massFlow, dt float64) core.FlightData {
	f.Gravity = GravityAt(f.Altitude)
	f.DynamicPressure = DynamicPressure(f.Altitude, f.Velocity)
	if f.Mass > 0 {
		f.Drag = f.DynamicPressure * m.p.DragCoefficient * m.p.CrossSection / f.Mass
	} else {
		f.Drag = 0
	}

	accel := -f.Gravity
	if f.Mass > 0 {
		accel += thrust / f.Mass
	}
	if f.Velocity > 0 {
		accel -= f.Drag
	} else if f.Velocity < 0 {
		accel += f.Drag
	}
	f.Acceleration = accel

	if dt <= 0 {
		return f
	}

	f.Velocity += accel * dt
	f.Altitude += f.Velocity * dt
	f.MissionTime += dt

	if massFlow > 0 {
		prop := m.propLoad(f.Stage)
		remaining := f.Fuel * prop
		burned := math.Min(massFlow*dt, remaining)
		f.Mass -= burned
		if prop > 0 {
			f.Fuel = (remaining - burned) / prop
		}
		if f.Fuel < 1e-12 {
			f.Fuel = 0
		}
	}

	// Ground clamp. The pad holds the vehicle; nothing descends below
	// sea level.
	if f.Altitude <= 0 {
		f.Altitude = 0
		if f.Velocity < 0 {
			f.Velocity = 0
		}
	}
	return f
}

// PerformStageSeparation drops the spent first stage. The returned
// state is the upper stage alone, fully fueled, engine off; ignition
// is a separate throttle command.
func (m *Model) PerformStageSeparation(f core.FlightData) core.FlightData {
	f.Mass -= m.p.Stage1DryMass + f.Fuel*m.p.Stage1PropMass
	f.Stage = core.Stage2
	f.Fuel = 1
	f.Throttle = 0
	return m.Update(f, 0)
}

// NewStage1CoastingFlight is the booster snapshot taken at separation:
// same altitude, velocity and clock as the primary, the stage-1 dry
// mass, and empty tracked tanks. Residual stage-1 propellant vents at
// separation and is not carried by either vehicle.
func (m *Model) NewStage1CoastingFlight(f core.FlightData) core.FlightData {
	return m.Update(core.FlightData{
		Altitude:    f.Altitude,
		Velocity:    f.Velocity,
		MissionTime: f.MissionTime,
		Mass:        m.p.Stage1DryMass,
		Stage:       core.Stage1,
	}, 0)
}
