// internal/sim/params.go
package sim

// Physical constants. Altitudes are measured from sea level.
const (
	G0          = 9.80665 // m/s^2, standard gravity, also the Isp conversion factor
	EarthRadius = 6371000 // m

	SeaLevelDensity  = 1.225  // kg/m^3
	ScaleHeight      = 8500.0 // m, exponential atmosphere
	AtmosphereCutoff = 200000 // m, density is exactly zero above this

	// IspSaturationAltitude is where stage-1 effective Isp reaches its
	// vacuum value; it stays there for any higher altitude.
	IspSaturationAltitude = 40000.0 // m
)

// VehicleParams is the full tuning set for a two-stage vehicle. All
// values are overridable from config; Default() matches a Falcon-9
// class stack.
type VehicleParams struct {
	// Stage 1 burns at constant mass flow; thrust varies with altitude
	// through the effective Isp.
	Stage1DryMass  float64 `json:"stage1DryMass" mapstructure:"stage1DryMass"`   // kg
	Stage1PropMass float64 `json:"stage1PropMass" mapstructure:"stage1PropMass"` // kg
	Stage1MassFlow float64 `json:"stage1MassFlow" mapstructure:"stage1MassFlow"` // kg/s at full throttle
	Stage1IspSea   float64 `json:"stage1IspSea" mapstructure:"stage1IspSea"`     // s
	Stage1IspVac   float64 `json:"stage1IspVac" mapstructure:"stage1IspVac"`     // s

	// Stage 2 burns at constant thrust; mass flow follows from its Isp.
	Stage2DryMass  float64 `json:"stage2DryMass" mapstructure:"stage2DryMass"`   // kg
	Stage2PropMass float64 `json:"stage2PropMass" mapstructure:"stage2PropMass"` // kg
	Stage2Thrust   float64 `json:"stage2Thrust" mapstructure:"stage2Thrust"`     // N
	Stage2Isp      float64 `json:"stage2Isp" mapstructure:"stage2Isp"`           // s

	DragCoefficient float64 `json:"dragCoefficient" mapstructure:"dragCoefficient"`
	CrossSection    float64 `json:"crossSection" mapstructure:"crossSection"` // m^2
}

// Default returns the stock vehicle.
func Default() VehicleParams {
	return VehicleParams{
		Stage1DryMass:  25600,
		Stage1PropMass: 411000,
		Stage1MassFlow: 2750,
		Stage1IspSea:   282,
		Stage1IspVac:   311,

		Stage2DryMass:  7300,
		Stage2PropMass: 107670,
		Stage2Thrust:   981000,
		Stage2Isp:      348,

		DragCoefficient: 0.5,
		CrossSection:    10,
	}
}

// LiftoffMass is the fully fueled stacked mass.
func (p VehicleParams) LiftoffMass() float64 {
	return p.Stage1DryMass + p.Stage1PropMass + p.Stage2DryMass + p.Stage2PropMass
}

// Stage2IgnitionMass is the mass of the upper stage alone, fully fueled.
func (p VehicleParams) Stage2IgnitionMass() float64 {
	return p.Stage2DryMass + p.Stage2PropMass
}

// Stage2MassFlow is the upper stage's propellant consumption at full
// throttle, derived from its constant thrust and Isp.
func (p VehicleParams) Stage2MassFlow() float64 {
	return p.Stage2Thrust / (p.Stage2Isp * G0)
}
